package model

import (
	"strings"
	"time"
)

type Store struct {
	ID                        int64     `json:"id"`
	Name                      string    `json:"name"`
	Telephone                 string    `json:"telephone,omitempty"`
	Email                     string    `json:"email,omitempty"`
	Address                   string    `json:"address,omitempty"`
	WhatsApp                  *string   `json:"whatsapp,omitempty"`
	AcceptsPublicReservations bool      `json:"accepts_public_reservations"`
	CreatedBy                 *int64    `json:"created_by,omitempty"`
	UpdatedBy                 *int64    `json:"updated_by,omitempty"`
	CreatedAt                 time.Time `json:"created_at"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

// HasWhatsApp reports whether notifications can be delivered to the store.
func (s *Store) HasWhatsApp() bool {
	return s != nil && s.WhatsApp != nil && strings.TrimSpace(*s.WhatsApp) != ""
}

func (s Store) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return NewValidationError("name", "store name is required")
	}
	return nil
}

type StoreCustomer struct {
	StoreID    int64     `json:"store_id"`
	CustomerID int64     `json:"customer_id"`
	CreatedAt  time.Time `json:"created_at"`
}
