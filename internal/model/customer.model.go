package model

import (
	"strings"
	"time"
)

type Customer struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	IsMember     bool      `json:"is_member"`
	Organization string    `json:"organization,omitempty"`
	Telephone    string    `json:"telephone,omitempty"`
	Email        string    `json:"email,omitempty"`
	Address      string    `json:"address,omitempty"`
	WhatsApp     string    `json:"whatsapp,omitempty"`
	CreatedBy    *int64    `json:"created_by,omitempty"`
	UpdatedBy    *int64    `json:"updated_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return NewValidationError("name", "customer name is required")
	}
	if strings.TrimSpace(c.Code) == "" {
		return NewValidationError("code", "customer code is required")
	}
	return nil
}

// NormalizePhone keeps digits only and rewrites a local 0-prefix to the 62
// country code, so "0812-345" and "+62 812 345" compare equal.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "0") {
		digits = "62" + digits[1:]
	}
	return digits
}
