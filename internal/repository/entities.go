package repository

// Entities lists every table owned by this package in creation order.
func Entities() []any {
	return []any{
		&UserEntity{},
		&StoreEntity{},
		&CustomerEntity{},
		&StoreCustomerEntity{},
		&ReservationEntity{},
		&RevenueTypeEntity{},
		&RevenueEntity{},
		&RevenueItemEntity{},
		&RevenueComplimentEntity{},
		&StoreRevenueTargetEntity{},
		&SettingEntity{},
	}
}
