package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer types.
const (
	CustomerOwner   = "OWNER"
	CustomerRenter  = "RENTER"
	CustomerPrivate = "PRIVATE"
)

// Customer is a monthly client of the garage. Rows are soft-deleted.
type Customer struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FirstName      string    `gorm:"not null"`
	LastName       string    `gorm:"not null"`
	Email          *string
	Phone          *string
	DocumentNumber *string   `gorm:"type:varchar(20);index"`
	CustomerType   string    `gorm:"type:varchar(10);not null;index"`
	StartDate      time.Time `gorm:"type:date;not null"`
	HasDebt        bool      `gorm:"not null;default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`

	Vehicles []Vehicle `gorm:"foreignKey:CustomerID"`
	Receipts []Receipt `gorm:"foreignKey:CustomerID"`
}

// Vehicle is a car parked by a customer; Amount is its monthly fee.
type Vehicle struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Plate      string          `gorm:"type:varchar(15);uniqueIndex;not null"`
	Brand      *string
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CustomerID uuid.UUID       `gorm:"type:uuid;index;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FirstDayOfNextMonth returns 00:00 of the first day of the month after t,
// in t's location.
func FirstDayOfNextMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 1, 0, 0, 0, 0, t.Location())
}
