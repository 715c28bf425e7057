package repository

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user already exists")
	ErrStoreNotFound       = errors.New("store not found")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrCustomerCodeTaken   = errors.New("customer code already exists")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrDuplicateCode       = errors.New("reservation code already exists")
	ErrRevenueNotFound     = errors.New("revenue not found")
	ErrRevenueTypeNotFound = errors.New("revenue type not found")
	ErrRevenueTypeExists   = errors.New("revenue type already exists")
	ErrRevenueTypeInUse    = errors.New("revenue type is referenced by revenue items")
	ErrItemNotFound        = errors.New("revenue item not found")
	ErrComplimentNotFound  = errors.New("revenue compliment not found")
	ErrTargetNotFound      = errors.New("revenue target not found")
	ErrTargetExists        = errors.New("revenue target already exists for this period")
	ErrSettingNotFound     = errors.New("setting not found")
	ErrReferenceNotFound   = errors.New("referenced row does not exist")
)
