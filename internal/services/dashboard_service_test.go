package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Summary(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	reservations := repository.NewReservationRepository(db)

	store := seedStore(t, db, "Main", false)
	for i := range 7 {
		c := seedCustomer(t, db, fmt.Sprintf("guest%d", i), "")
		_, err := reservations.Create(ctx, &model.Reservation{
			StoreID:    store.ID,
			CustomerID: c.ID,
			Datetime:   time.Date(2025, 8, 1+i, 19, 0, 0, 0, time.UTC),
			Status:     model.ReservationStatusPending,
			Code:       fmt.Sprintf("DASH%02d0825", i),
		})
		require.NoError(t, err)
	}

	svc := NewDashboardService(
		repository.NewCustomerRepository(db),
		repository.NewStoreRepository(db),
		reservations,
		repository.NewRevenueRepository(db),
	)
	summary, err := svc.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(7), summary.TotalCustomers)
	assert.Equal(t, int64(1), summary.TotalStores)
	assert.Equal(t, int64(7), summary.TotalReservations)
	assert.Zero(t, summary.TotalRevenues)
	assert.Len(t, summary.RecentCustomers, dashboardRecentLimit)
	assert.Len(t, summary.RecentReservations, dashboardRecentLimit)
	assert.Len(t, summary.RecentStores, 1)
	assert.Empty(t, summary.RecentRevenues)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthService_Get(t *testing.T) {
	assert.NoError(t, NewHealthService(stubPinger{}, stubPinger{}).Get())
	assert.NoError(t, NewHealthService(nil, nil).Get())

	err := NewHealthService(stubPinger{}, stubPinger{err: errors.New("refused")}).Get()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")

	err = NewHealthService(stubPinger{err: errors.New("gone")}, stubPinger{}).Get()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database")
}
