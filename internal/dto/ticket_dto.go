package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateTicketRequest struct {
	Barcode     string          `json:"barcode"      validate:"required,min=3,max=64"`
	VehicleType string          `json:"vehicle_type" validate:"required,oneof=AUTO CAMIONETA MOTO"`
	DayPrice    decimal.Decimal `json:"day_price"    validate:"required,gt=0"`
	NightPrice  decimal.Decimal `json:"night_price"  validate:"required,gt=0"`
}

type UpdateTicketRequest struct {
	VehicleType string           `json:"vehicle_type" validate:"omitempty,oneof=AUTO CAMIONETA MOTO"`
	DayPrice    *decimal.Decimal `json:"day_price"`
	NightPrice  *decimal.Decimal `json:"night_price"`
	Active      *bool            `json:"active"`
}

type TicketFilter struct {
	PageQuery
	Barcode     string `form:"barcode"`
	VehicleType string `form:"vehicle_type"`
}

type ScanRequest struct {
	Barcode string `json:"barcode" validate:"required"`
}

// ManualEntryRequest opens a registration without a scanner. At defaults to now.
type ManualEntryRequest struct {
	At          string  `json:"at" validate:"omitempty,datetime=2006-01-02T15:04:05"`
	Description *string `json:"description"`
}

// ManualCloseRequest closes a registration without a scanner. At defaults to now.
type ManualCloseRequest struct {
	At string `json:"at" validate:"omitempty,datetime=2006-01-02T15:04:05"`
}

type RegistrationFilter struct {
	PageQuery
	Date string `form:"date" validate:"omitempty,datetime=2006-01-02"`
	Open string `form:"open" validate:"omitempty,oneof=true false"`
}

type CreateRegistrationForDayRequest struct {
	Description string           `json:"description"  validate:"required,min=3"`
	VehicleType string           `json:"vehicle_type" validate:"required,oneof=AUTO CAMIONETA MOTO"`
	Days        int              `json:"days"         validate:"min=0"`
	Weeks       int              `json:"weeks"        validate:"min=0"`
	Price       *decimal.Decimal `json:"price"`
	Paid        bool             `json:"paid"`
}

type UpdateRegistrationForDayRequest struct {
	Paid    *bool `json:"paid"`
	Retired *bool `json:"retired"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TicketResponse struct {
	ID          string          `json:"id"`
	Barcode     string          `json:"barcode"`
	VehicleType string          `json:"vehicle_type"`
	DayPrice    decimal.Decimal `json:"day_price"`
	NightPrice  decimal.Decimal `json:"night_price"`
	Active      bool            `json:"active"`
}

type TicketRegistrationResponse struct {
	ID            string          `json:"id"`
	TicketID      *string         `json:"ticket_id"`
	VehicleType   string          `json:"vehicle_type"`
	EntryDay      string          `json:"entry_day"`
	EntryTime     string          `json:"entry_time"`
	DepartureDay  *string         `json:"departure_day"`
	DepartureTime *string         `json:"departure_time"`
	Price         decimal.Decimal `json:"price"`
	Description   *string         `json:"description"`
	BoxListID     *string         `json:"box_list_id"`
	State         string          `json:"state"` // OPEN | CLOSED
}

type TicketRegistrationForDayResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	VehicleType string          `json:"vehicle_type"`
	Price       decimal.Decimal `json:"price"`
	Days        int             `json:"days"`
	Weeks       int             `json:"weeks"`
	Paid        bool            `json:"paid"`
	Retired     bool            `json:"retired"`
	DateNow     string          `json:"date_now"`
	BoxListID   string          `json:"box_list_id"`
}

// ScanResponse tells the operator which transition a scan produced.
type ScanResponse struct {
	Action       string                     `json:"action"` // ENTRY | EXIT
	Registration TicketRegistrationResponse `json:"registration"`
}
