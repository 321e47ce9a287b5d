package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type VehicleRequest struct {
	Plate  string          `json:"plate"  validate:"required,min=5,max=15"`
	Brand  *string         `json:"brand"`
	Amount decimal.Decimal `json:"amount" validate:"min=0"`
}

type CreateCustomerRequest struct {
	FirstName      string           `json:"first_name"      validate:"required,min=2,max=80"`
	LastName       string           `json:"last_name"       validate:"required,min=2,max=80"`
	Email          *string          `json:"email"           validate:"omitempty,email"`
	Phone          *string          `json:"phone"           validate:"omitempty,max=30"`
	DocumentNumber *string          `json:"document_number" validate:"omitempty,max=20"`
	CustomerType   string           `json:"customer_type"   validate:"required,oneof=OWNER RENTER PRIVATE"`
	Vehicles       []VehicleRequest `json:"vehicles"        validate:"dive"`
}

type UpdateCustomerRequest struct {
	FirstName      string  `json:"first_name"      validate:"omitempty,min=2,max=80"`
	LastName       string  `json:"last_name"       validate:"omitempty,min=2,max=80"`
	Email          *string `json:"email"           validate:"omitempty,email"`
	Phone          *string `json:"phone"           validate:"omitempty,max=30"`
	DocumentNumber *string `json:"document_number" validate:"omitempty,max=20"`
}

type CustomerFilter struct {
	PageQuery
	Type    string `form:"type"     validate:"omitempty,oneof=OWNER RENTER PRIVATE"`
	Search  string `form:"search"`
	HasDebt string `form:"has_debt" validate:"omitempty,oneof=true false"`
}

type InterestSettingsRequest struct {
	InterestOwner  decimal.Decimal `json:"interest_owner"  validate:"min=0"`
	InterestRenter decimal.Decimal `json:"interest_renter" validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VehicleResponse struct {
	ID     string          `json:"id"`
	Plate  string          `json:"plate"`
	Brand  *string         `json:"brand"`
	Amount decimal.Decimal `json:"amount"`
}

type CustomerResponse struct {
	ID             string            `json:"id"`
	FirstName      string            `json:"first_name"`
	LastName       string            `json:"last_name"`
	Email          *string           `json:"email"`
	Phone          *string           `json:"phone"`
	DocumentNumber *string           `json:"document_number"`
	CustomerType   string            `json:"customer_type"`
	StartDate      string            `json:"start_date"`
	HasDebt        bool              `json:"has_debt"`
	Vehicles       []VehicleResponse `json:"vehicles"`
}

type InterestSettingsResponse struct {
	ID             string          `json:"id"`
	InterestOwner  decimal.Decimal `json:"interest_owner"`
	InterestRenter decimal.Decimal `json:"interest_renter"`
	UpdatedAt      string          `json:"updated_at"`
}

type InterestCustomerResponse struct {
	CustomerID    string          `json:"customer_id"`
	Interest      decimal.Decimal `json:"interest"`
	LastAppliedOn *string         `json:"last_applied_on"`
}

// AccrualItem is the outcome of the interest job for one customer.
type AccrualItem struct {
	CustomerID string          `json:"customer_id"`
	Status     string          `json:"status"` // applied | skipped | failed
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason,omitempty"`
}

type AccrualSummary struct {
	Date    string        `json:"date"`
	Applied int           `json:"applied"`
	Skipped int           `json:"skipped"`
	Failed  int           `json:"failed"`
	Items   []AccrualItem `json:"items"`
}
