package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Vehicle types priced by the pricing table.
const (
	VehicleAuto      = "AUTO"
	VehicleCamioneta = "CAMIONETA"
	VehicleMoto      = "MOTO"
)

// Ticket is the physical card handed to a driver. Its barcode is scanned on
// entry and again on exit.
type Ticket struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Barcode     string          `gorm:"type:varchar(64);uniqueIndex;not null"`
	VehicleType string          `gorm:"type:varchar(20);not null"`
	DayPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	NightPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Active      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TicketRegistration is one vehicle stay, from entry scan to exit scan.
// While open it points at its Ticket; on close the reference is cleared so
// the ticket can be handed to the next vehicle.
type TicketRegistration struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TicketID  *uuid.UUID `gorm:"type:uuid;index"`
	Ticket    *Ticket    `gorm:"foreignKey:TicketID"`
	EntryDay  time.Time  `gorm:"type:date;not null"`
	EntryTime string     `gorm:"type:varchar(8);not null"` // HH:MM:SS
	// DepartureDay / DepartureTime are nil while the registration is open.
	DepartureDay  *time.Time      `gorm:"type:date"`
	DepartureTime *string         `gorm:"type:varchar(8)"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Description   *string
	VehicleType   string     `gorm:"type:varchar(20);not null"`
	BoxListID     *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Open reports whether the stay still has no departure.
func (r *TicketRegistration) Open() bool { return r.DepartureDay == nil }

// TicketRegistrationForDay is a pre-priced stay sold by days and weeks.
type TicketRegistrationForDay struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Description string          `gorm:"not null"`
	VehicleType string          `gorm:"type:varchar(20);not null"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Days        int             `gorm:"not null;default:0"`
	Weeks       int             `gorm:"not null;default:0"`
	Paid        bool            `gorm:"not null;default:false"`
	Retired     bool            `gorm:"not null;default:false"`
	DateNow     time.Time       `gorm:"type:date;not null"`
	BoxListID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (TicketRegistrationForDay) TableName() string { return "ticket_registrations_for_day" }
