package dto

import "github.com/shopspring/decimal"

type ReceiptFilter struct {
	PageQuery
	CustomerID string `form:"customer_id" validate:"omitempty,uuid"`
	Status     string `form:"status"      validate:"omitempty,oneof=PENDING PAID"`
}

type ReceiptResponse struct {
	ID                 string          `json:"id"`
	ReceiptNumber      int             `json:"receipt_number"`
	CustomerID         string          `json:"customer_id"`
	BoxListID          *string         `json:"box_list_id"`
	Status             string          `json:"status"`
	StartAmount        decimal.Decimal `json:"start_amount"`
	Price              decimal.Decimal `json:"price"`
	InterestPercentage decimal.Decimal `json:"interest_percentage"`
	DateNow            string          `json:"date_now"`
	PaymentDate        *string         `json:"payment_date"`
}
