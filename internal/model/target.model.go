package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type StoreRevenueTarget struct {
	ID        int64           `json:"id"`
	StoreID   int64           `json:"store_id"`
	Month     int             `json:"month"`
	Year      int             `json:"year"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedBy *int64          `json:"created_by,omitempty"`
	UpdatedBy *int64          `json:"updated_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (t StoreRevenueTarget) Validate() error {
	if t.StoreID == 0 {
		return NewValidationError("store_id", "store_id is required")
	}
	if t.Month < 1 || t.Month > 12 {
		return NewValidationError("month", "month must be between 1 and 12")
	}
	if t.Year < 1900 || t.Year > 9999 {
		return NewValidationError("year", "year is out of range")
	}
	return ValidateAmount("amount", t.Amount)
}
