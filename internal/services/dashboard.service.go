package services

import (
	"context"
	"fmt"

	"github.com/nimasrn/reservation-hub/internal/model"
)

const dashboardRecentLimit = 5

type customerStats interface {
	Count(ctx context.Context) (int64, error)
	Recent(ctx context.Context, limit int) ([]*model.Customer, error)
}

type storeStats interface {
	Count(ctx context.Context) (int64, error)
	Recent(ctx context.Context, limit int) ([]*model.Store, error)
}

type reservationStats interface {
	Count(ctx context.Context) (int64, error)
	Recent(ctx context.Context, limit int) ([]*model.ReservationDetail, error)
}

type revenueStats interface {
	Count(ctx context.Context) (int64, error)
	Recent(ctx context.Context, limit int) ([]*model.Revenue, error)
}

type DashboardService struct {
	customers    customerStats
	stores       storeStats
	reservations reservationStats
	revenues     revenueStats
}

func NewDashboardService(customers customerStats, stores storeStats, reservations reservationStats, revenues revenueStats) *DashboardService {
	return &DashboardService{
		customers:    customers,
		stores:       stores,
		reservations: reservations,
		revenues:     revenues,
	}
}

func (s *DashboardService) Summary(ctx context.Context) (*model.DashboardSummary, error) {
	var (
		out model.DashboardSummary
		err error
	)

	if out.TotalCustomers, err = s.customers.Count(ctx); err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	if out.TotalStores, err = s.stores.Count(ctx); err != nil {
		return nil, fmt.Errorf("count stores: %w", err)
	}
	if out.TotalReservations, err = s.reservations.Count(ctx); err != nil {
		return nil, fmt.Errorf("count reservations: %w", err)
	}
	if out.TotalRevenues, err = s.revenues.Count(ctx); err != nil {
		return nil, fmt.Errorf("count revenues: %w", err)
	}

	if out.RecentCustomers, err = s.customers.Recent(ctx, dashboardRecentLimit); err != nil {
		return nil, fmt.Errorf("recent customers: %w", err)
	}
	if out.RecentStores, err = s.stores.Recent(ctx, dashboardRecentLimit); err != nil {
		return nil, fmt.Errorf("recent stores: %w", err)
	}
	if out.RecentReservations, err = s.reservations.Recent(ctx, dashboardRecentLimit); err != nil {
		return nil, fmt.Errorf("recent reservations: %w", err)
	}
	if out.RecentRevenues, err = s.revenues.Recent(ctx, dashboardRecentLimit); err != nil {
		return nil, fmt.Errorf("recent revenues: %w", err)
	}
	return &out, nil
}
