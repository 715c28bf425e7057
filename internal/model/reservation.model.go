package model

import (
	"strings"
	"time"
)

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "Pending"
	ReservationStatusConfirmed ReservationStatus = "Confirmed"
	ReservationStatusCancelled ReservationStatus = "Cancelled"
	ReservationStatusCompleted ReservationStatus = "Completed"
	ReservationStatusNoShow    ReservationStatus = "NoShow"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusCancelled,
		ReservationStatusCompleted, ReservationStatusNoShow:
		return true
	}
	return false
}

const DefaultUpcomingLimit = 30

type Reservation struct {
	ID         int64             `json:"id"`
	CustomerID int64             `json:"customer_id"`
	StoreID    int64             `json:"store_id"`
	Datetime   time.Time         `json:"datetime"`
	Status     ReservationStatus `json:"status"`
	Code       string            `json:"code"`
	Notes      *string           `json:"notes,omitempty"`
	Event      *string           `json:"event,omitempty"`
	Room       *string           `json:"room,omitempty"`
	Guests     *int              `json:"guests,omitempty"`
	CreatedBy  *int64            `json:"created_by,omitempty"`
	UpdatedBy  *int64            `json:"updated_by,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// ReservationDetail is a reservation joined with the customer it belongs to.
type ReservationDetail struct {
	Reservation
	CustomerName      string `json:"customer_name"`
	CustomerTelephone string `json:"customer_telephone,omitempty"`
	StoreName         string `json:"store_name"`
}

type ReservationCreateRequest struct {
	CustomerID int64
	StoreID    int64
	Datetime   time.Time
	Guests     *int
	Notes      *string
	Event      *string
	Room       *string
	Notify     bool
}

func (p ReservationCreateRequest) Validate() error {
	if p.CustomerID == 0 {
		return NewValidationError("customer_id", "customer_id is required")
	}
	if p.StoreID == 0 {
		return NewValidationError("store_id", "store_id is required")
	}
	if p.Datetime.IsZero() {
		return NewValidationError("datetime", "datetime is required")
	}
	if p.Guests != nil && *p.Guests < 0 {
		return NewValidationError("guests", "guests cannot be negative")
	}
	return nil
}

// ReservationPatch carries a partial update, nil fields are left untouched.
type ReservationPatch struct {
	CustomerID *int64
	StoreID    *int64
	Datetime   *time.Time
	Status     *ReservationStatus
	Guests     *int
	Notes      *string
	Event      *string
	Room       *string
	Notify     bool
}

func (p ReservationPatch) Validate() error {
	if p.Status != nil && !p.Status.Valid() {
		return NewValidationError("status", "unknown status "+string(*p.Status))
	}
	if p.Guests != nil && *p.Guests < 0 {
		return NewValidationError("guests", "guests cannot be negative")
	}
	if p.Datetime != nil && p.Datetime.IsZero() {
		return NewValidationError("datetime", "datetime cannot be empty")
	}
	return nil
}

type ReservationFilter struct {
	StoreID *int64
	From    *time.Time
	To      *time.Time
	Limit   int
}

type PublicReservationRequest struct {
	StoreID  int64
	Name     string
	Phone    string
	Email    string
	Datetime time.Time
	Guests   *int
	Notes    *string
	Event    *string
	Notify   bool
}

func (p PublicReservationRequest) Validate() error {
	if p.StoreID == 0 {
		return NewValidationError("store_id", "store_id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("name", "name is required")
	}
	if NormalizePhone(p.Phone) == "" {
		return NewValidationError("phone", "phone is required")
	}
	if p.Datetime.IsZero() {
		return NewValidationError("datetime", "datetime is required")
	}
	if p.Guests != nil && *p.Guests < 0 {
		return NewValidationError("guests", "guests cannot be negative")
	}
	return nil
}

// PublicReservationReceipt is what an anonymous caller needs for a later lookup.
type PublicReservationReceipt struct {
	Code  string `json:"code"`
	Phone string `json:"phone"`
}

// PublicReservationView is the restricted projection returned by a public lookup.
type PublicReservationView struct {
	Code      string            `json:"code"`
	StoreName string            `json:"store_name"`
	Name      string            `json:"name"`
	Datetime  time.Time         `json:"datetime"`
	Status    ReservationStatus `json:"status"`
	Guests    *int              `json:"guests,omitempty"`
	Notes     *string           `json:"notes,omitempty"`
	Event     *string           `json:"event,omitempty"`
}
