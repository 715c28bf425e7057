package model

type DashboardSummary struct {
	TotalCustomers     int64                `json:"total_customers"`
	TotalStores        int64                `json:"total_stores"`
	TotalReservations  int64                `json:"total_reservations"`
	TotalRevenues      int64                `json:"total_revenues"`
	RecentCustomers    []*Customer          `json:"recent_customers"`
	RecentStores       []*Store             `json:"recent_stores"`
	RecentReservations []*ReservationDetail `json:"recent_reservations"`
	RecentRevenues     []*Revenue           `json:"recent_revenues"`
}
