package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin       Role = "Admin"
	RoleOperator    Role = "Operator"
	RoleContributor Role = "Contributor"
	RoleGuest       Role = "Guest"
)

const MinPasswordLength = 6

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOperator, RoleContributor, RoleGuest:
		return true
	}
	return false
}

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserCreateRequest struct {
	Username string
	Email    string
	Password string
	Role     Role
}

func (p UserCreateRequest) Validate() error {
	if strings.TrimSpace(p.Username) == "" {
		return NewValidationError("username", "username is required")
	}
	if !strings.Contains(p.Email, "@") {
		return NewValidationError("email", "a valid email is required")
	}
	if len(p.Password) < MinPasswordLength {
		return NewValidationError("password", "password must be at least 6 characters")
	}
	if p.Role != "" && !p.Role.Valid() {
		return NewValidationError("role", "unknown role "+string(p.Role))
	}
	return nil
}

type PasswordChangeRequest struct {
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

func (p PasswordChangeRequest) Validate() error {
	if p.NewPassword == "" || p.ConfirmPassword == "" {
		return NewValidationError("new_password", "new password is required")
	}
	if p.NewPassword != p.ConfirmPassword {
		return NewValidationError("confirm_password", "passwords do not match")
	}
	if len(p.NewPassword) < MinPasswordLength {
		return NewValidationError("new_password", "password must be at least 6 characters")
	}
	return nil
}
