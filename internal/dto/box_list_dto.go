package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type BoxListFilter struct {
	PageQuery
	From string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `form:"to"   validate:"omitempty,datetime=2006-01-02"`
}

type CreateOtherPaymentRequest struct {
	Description string          `json:"description" validate:"required,min=3"`
	Price       decimal.Decimal `json:"price"       validate:"required,gt=0"`
	Type        string          `json:"type"        validate:"required,oneof=INGRESOS EGRESOS"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type BoxListResponse struct {
	ID         string          `json:"id"`
	Date       string          `json:"date"`
	BoxNumber  int             `json:"box_number"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type BoxListDetailResponse struct {
	BoxListResponse
	Registrations       []TicketRegistrationResponse       `json:"ticket_registrations"`
	RegistrationsForDay []TicketRegistrationForDayResponse `json:"ticket_registrations_for_day"`
	OtherPayments       []OtherPaymentResponse             `json:"other_payments"`
	Receipts            []ReceiptResponse                  `json:"receipts"`
}

type OtherPaymentResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Type        string          `json:"type"`
	DateNow     string          `json:"date_now"`
	BoxListID   string          `json:"box_list_id"`
}

// ReconcileResponse compares the stored running total with the sum of the
// records linked to the box list.
type ReconcileResponse struct {
	BoxListID     string          `json:"box_list_id"`
	Stored        decimal.Decimal `json:"stored"`
	Computed      decimal.Decimal `json:"computed"`
	Registrations decimal.Decimal `json:"registrations"`
	ForDay        decimal.Decimal `json:"registrations_for_day"`
	Receipts      decimal.Decimal `json:"receipts"`
	Ingresos      decimal.Decimal `json:"ingresos"`
	Egresos       decimal.Decimal `json:"egresos"`
	Balanced      bool            `json:"balanced"`
	Fixed         bool            `json:"fixed"`
}
