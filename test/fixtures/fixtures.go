package fixtures

import (
	"time"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/shopspring/decimal"
)

var (
	StoreWhatsApp = "6281234567890"

	TestFoodType = model.RevenueType{
		Name:     "Food",
		Category: model.RevenueCategoryAddition,
	}

	TestDiscountType = model.RevenueType{
		Name:     "Discount",
		Category: model.RevenueCategoryDeduction,
	}
)

func NewReservationRequest(customerID, storeID int64, at time.Time, guests int) model.ReservationCreateRequest {
	return model.ReservationCreateRequest{
		CustomerID: customerID,
		StoreID:    storeID,
		Datetime:   at,
		Guests:     &guests,
		Notify:     true,
	}
}

func NewPublicReservationRequest(storeID int64, name, phone string, at time.Time) model.PublicReservationRequest {
	return model.PublicReservationRequest{
		StoreID:  storeID,
		Name:     name,
		Phone:    phone,
		Datetime: at,
		Notify:   true,
	}
}

func NewRevenue(storeID int64, date time.Time) model.Revenue {
	return model.Revenue{
		StoreID: storeID,
		Date:    date,
	}
}

func NewRevenueItem(typeID int64, amount int64) model.RevenueItemRequest {
	return model.RevenueItemRequest{
		RevenueTypeID: typeID,
		Amount:        decimal.NewFromInt(amount),
	}
}

func NewTarget(storeID int64, month time.Month, year int, amount int64) model.StoreRevenueTarget {
	return model.StoreRevenueTarget{
		StoreID: storeID,
		Month:   int(month),
		Year:    year,
		Amount:  decimal.NewFromInt(amount),
	}
}

// NextMonthAt returns a time on the 10th of next month, so reservations are
// never in the past.
func NextMonthAt(hour, minute int) time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month()+1, 10, hour, minute, 0, 0, time.UTC)
}
