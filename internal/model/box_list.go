package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Other payment types. EGRESOS subtract from the daily total.
const (
	PaymentIngresos = "INGRESOS"
	PaymentEgresos  = "EGRESOS"
)

// BoxList is the cash ledger of a single calendar day. TotalPrice is the
// signed sum of every priced record linked to it.
type BoxList struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Date       time.Time       `gorm:"type:date;uniqueIndex;not null"`
	BoxNumber  int             `gorm:"autoIncrement;not null"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Registrations       []TicketRegistration       `gorm:"foreignKey:BoxListID"`
	RegistrationsForDay []TicketRegistrationForDay `gorm:"foreignKey:BoxListID"`
	OtherPayments       []OtherPayment             `gorm:"foreignKey:BoxListID"`
	Receipts            []Receipt                  `gorm:"foreignKey:BoxListID"`
}

// OtherPayment is a manual income or expense recorded in the day's box.
type OtherPayment struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Description string          `gorm:"not null"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Type        string          `gorm:"type:varchar(10);not null"`
	DateNow     time.Time       `gorm:"type:date;not null"`
	BoxListID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	CreatedAt   time.Time
}

// Signed returns the contribution of the payment to its day's total.
func (p OtherPayment) Signed() decimal.Decimal {
	if p.Type == PaymentEgresos {
		return p.Price.Neg()
	}
	return p.Price
}
