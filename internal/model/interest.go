package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InterestSettings holds the percentages applied by the interest job. The
// most recently updated row wins.
type InterestSettings struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InterestOwner  decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	InterestRenter decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time `gorm:"index"`
}

func (InterestSettings) TableName() string { return "interest_settings" }

// InterestCustomer accumulates the interest charged to one customer.
type InterestCustomer struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	Interest      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	LastAppliedOn *time.Time      `gorm:"type:date"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
