package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receipt statuses.
const (
	ReceiptPending = "PENDING"
	ReceiptPaid    = "PAID"
)

// Receipt is a monthly charge to a customer. A customer has at most one
// PENDING receipt (partial unique index receipts_one_pending).
type Receipt struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReceiptNumber int       `gorm:"autoIncrement;not null"`
	CustomerID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Customer      *Customer `gorm:"foreignKey:CustomerID"`
	BoxListID     *uuid.UUID `gorm:"type:uuid;index"`
	Status        string     `gorm:"type:varchar(10);not null;default:'PENDING'"`
	// StartAmount is the month's base fee; Price grows with accrued interest.
	StartAmount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Price              decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	InterestPercentage decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	DateNow            time.Time       `gorm:"type:date;not null"`
	PaymentDate        *time.Time      `gorm:"type:date"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
