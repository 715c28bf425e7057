package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/pkg/pg"
	"github.com/nimasrn/reservation-hub/pkg/pg/sqlitetest"
	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T, db *pg.DB, name string) *model.Store {
	t.Helper()
	s, err := NewStoreRepository(db).Create(context.Background(), &model.Store{
		Name:                      name,
		AcceptsPublicReservations: true,
	})
	require.NoError(t, err)
	return s
}

func seedCustomer(t *testing.T, db *pg.DB, name, phone string) *model.Customer {
	t.Helper()
	c, err := NewCustomerRepository(db).Create(context.Background(), &model.Customer{
		Name:      name,
		Code:      fmt.Sprintf("C-%s-%d", name, time.Now().UnixNano()),
		Telephone: phone,
	})
	require.NoError(t, err)
	return c
}

func seedReservation(t *testing.T, db *pg.DB, storeID, customerID int64, code string, at time.Time) *model.Reservation {
	t.Helper()
	r, err := NewReservationRepository(db).Create(context.Background(), &model.Reservation{
		StoreID:    storeID,
		CustomerID: customerID,
		Datetime:   at,
		Status:     model.ReservationStatusPending,
		Code:       code,
	})
	require.NoError(t, err)
	return r
}

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func newTestDB(t testing.TB) *pg.DB {
	return sqlitetest.Open(t, Entities()...)
}
