package services

import (
	"errors"

	"github.com/nimasrn/reservation-hub/internal/repository"
)

// Storage facts surface under service names so handlers never import the
// repository package.
var (
	ErrUserNotFound        = repository.ErrUserNotFound
	ErrUserExists          = repository.ErrUserExists
	ErrStoreNotFound       = repository.ErrStoreNotFound
	ErrCustomerNotFound    = repository.ErrCustomerNotFound
	ErrCustomerCodeTaken   = repository.ErrCustomerCodeTaken
	ErrReservationNotFound = repository.ErrReservationNotFound
	ErrDuplicateCode       = repository.ErrDuplicateCode
	ErrRevenueNotFound     = repository.ErrRevenueNotFound
	ErrRevenueTypeNotFound = repository.ErrRevenueTypeNotFound
	ErrRevenueTypeExists   = repository.ErrRevenueTypeExists
	ErrRevenueTypeInUse    = repository.ErrRevenueTypeInUse
	ErrItemNotFound        = repository.ErrItemNotFound
	ErrComplimentNotFound  = repository.ErrComplimentNotFound
	ErrTargetNotFound      = repository.ErrTargetNotFound
	ErrTargetExists        = repository.ErrTargetExists
	ErrReferenceNotFound   = repository.ErrReferenceNotFound
)

var (
	ErrCodeGenerationExhausted = errors.New("could not generate a unique reservation code, try again")
	ErrStatusTransition        = errors.New("reservation status transition not allowed")
	ErrPublicLookupNotFound    = errors.New("reservation not found")
	ErrInvalidCredentials      = errors.New("invalid username or password")
	ErrForbidden               = errors.New("insufficient role")
)
