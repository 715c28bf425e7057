package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RevenueCategory decides the sign an item contributes to a net total.
type RevenueCategory string

const (
	RevenueCategoryAddition  RevenueCategory = "Addition"
	RevenueCategoryDeduction RevenueCategory = "Deduction"
)

func (c RevenueCategory) Valid() bool {
	return c == RevenueCategoryAddition || c == RevenueCategoryDeduction
}

type RevenueType struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Category  RevenueCategory `json:"category"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (t RevenueType) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return NewValidationError("name", "revenue type name is required")
	}
	if !t.Category.Valid() {
		return NewValidationError("category", "category must be Addition or Deduction")
	}
	return nil
}

type Revenue struct {
	ID        int64     `json:"id"`
	StoreID   int64     `json:"store_id"`
	Date      time.Time `json:"date"`
	Guests    *int      `json:"guests,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedBy *int64    `json:"created_by,omitempty"`
	UpdatedBy *int64    `json:"updated_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r Revenue) Validate() error {
	if r.StoreID == 0 {
		return NewValidationError("store_id", "store_id is required")
	}
	if r.Date.IsZero() {
		return NewValidationError("date", "date is required")
	}
	if r.Guests != nil && *r.Guests < 0 {
		return NewValidationError("guests", "guests cannot be negative")
	}
	return nil
}

type RevenueItem struct {
	ID            int64           `json:"id"`
	RevenueID     int64           `json:"revenue_id"`
	RevenueTypeID int64           `json:"revenue_type_id"`
	TypeName      string          `json:"type_name,omitempty"`
	Category      RevenueCategory `json:"category,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Signed returns the amount as it contributes to a net total.
func (i RevenueItem) Signed() decimal.Decimal {
	if i.Category == RevenueCategoryDeduction {
		return i.Amount.Neg()
	}
	return i.Amount
}

type RevenueItemRequest struct {
	RevenueTypeID int64
	Amount        decimal.Decimal
}

func (p RevenueItemRequest) Validate() error {
	if p.RevenueTypeID == 0 {
		return NewValidationError("revenue_type_id", "revenue_type_id is required")
	}
	return ValidateAmount("amount", p.Amount)
}

// MaxAmount is the first value a DECIMAL(15,2) money column cannot hold.
var MaxAmount = decimal.New(1, 13)

// ValidateAmount accepts non-negative money with at most two decimal places
// that fits the money columns.
func ValidateAmount(field string, amount decimal.Decimal) error {
	switch {
	case amount.IsNegative():
		return NewValidationError(field, field+" cannot be negative")
	case !amount.Equal(amount.Truncate(2)):
		return NewValidationError(field, field+" cannot have more than 2 decimal places")
	case amount.GreaterThanOrEqual(MaxAmount):
		return NewValidationError(field, field+" is too large")
	}
	return nil
}

type RevenueCompliment struct {
	ID          int64     `json:"id"`
	RevenueID   int64     `json:"revenue_id"`
	Description string    `json:"description"`
	For         string    `json:"for,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c RevenueCompliment) Validate() error {
	if strings.TrimSpace(c.Description) == "" {
		return NewValidationError("description", "description is required")
	}
	return nil
}

type RevenueTotals struct {
	Additions  decimal.Decimal `json:"additions"`
	Deductions decimal.Decimal `json:"deductions"`
	Net        decimal.Decimal `json:"net"`
}

// SumItems folds items into totals. Compliments never take part.
func SumItems(items []*RevenueItem) RevenueTotals {
	t := RevenueTotals{Additions: decimal.Zero, Deductions: decimal.Zero}
	for _, it := range items {
		switch it.Category {
		case RevenueCategoryAddition:
			t.Additions = t.Additions.Add(it.Amount)
		case RevenueCategoryDeduction:
			t.Deductions = t.Deductions.Add(it.Amount)
		}
	}
	t.Net = t.Additions.Sub(t.Deductions)
	return t
}

type RevenueDetail struct {
	Revenue
	StoreName   string               `json:"store_name"`
	Items       []*RevenueItem       `json:"items"`
	Compliments []*RevenueCompliment `json:"compliments"`
	Totals      RevenueTotals        `json:"totals"`
}

type RevenueFilter struct {
	StoreIDs []int64
	From     *time.Time
	To       *time.Time
	Limit    int
}
