package repository

import (
	"context"
	"testing"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/pkg/pg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationRepository_Create(t *testing.T) {
	db := newTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	store := seedStore(t, db, "Central")
	customer := seedCustomer(t, db, "Budi", "0812345")

	t.Run("assigns id and keeps code", func(t *testing.T) {
		res := seedReservation(t, db, store.ID, customer.ID, "ABCD150825", day(2025, 8, 15, 19))
		assert.NotZero(t, res.ID)
		assert.Equal(t, "ABCD150825", res.Code)

		exists, err := repo.CodeExists(ctx, "ABCD150825")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("duplicate code", func(t *testing.T) {
		_, err := repo.Create(ctx, &model.Reservation{
			StoreID:    store.ID,
			CustomerID: customer.ID,
			Datetime:   day(2025, 8, 16, 19),
			Status:     model.ReservationStatusPending,
			Code:       "ABCD150825",
		})
		assert.ErrorIs(t, err, ErrDuplicateCode)
	})

	t.Run("unknown store", func(t *testing.T) {
		_, err := repo.Create(ctx, &model.Reservation{
			StoreID:    999,
			CustomerID: customer.ID,
			Datetime:   day(2025, 8, 16, 19),
			Status:     model.ReservationStatusPending,
			Code:       "ZZZZ160825",
		})
		assert.ErrorIs(t, err, ErrReferenceNotFound)
	})

	t.Run("records actor", func(t *testing.T) {
		users := NewUserRepository(db)
		u, err := users.Create(ctx, &model.User{Username: "op", Email: "op@example.com", Role: model.RoleOperator}, "hash")
		require.NoError(t, err)

		res, err := repo.Create(pg.WithActor(ctx, u.ID), &model.Reservation{
			StoreID:    store.ID,
			CustomerID: customer.ID,
			Datetime:   day(2025, 8, 17, 12),
			Status:     model.ReservationStatusPending,
			Code:       "QWER170825",
		})
		require.NoError(t, err)
		require.NotNil(t, res.CreatedBy)
		assert.Equal(t, u.ID, *res.CreatedBy)
	})
}

func TestReservationRepository_GetByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	store := seedStore(t, db, "Central")
	customer := seedCustomer(t, db, "Budi", "0812345")
	res := seedReservation(t, db, store.ID, customer.ID, "ABCD150825", day(2025, 8, 15, 19))

	detail, err := repo.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "Budi", detail.CustomerName)
	assert.Equal(t, "62812345", detail.CustomerTelephone)
	assert.Equal(t, "Central", detail.StoreName)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestReservationRepository_UpdateKeepsCode(t *testing.T) {
	db := newTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	store := seedStore(t, db, "Central")
	customer := seedCustomer(t, db, "Budi", "0812345")
	res := seedReservation(t, db, store.ID, customer.ID, "ABCD150825", day(2025, 8, 15, 19))

	err := repo.Update(ctx, res.ID, map[string]any{
		"status": string(model.ReservationStatusConfirmed),
		"code":   "HACK000000",
	})
	require.NoError(t, err)

	detail, err := repo.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusConfirmed, detail.Status)
	assert.Equal(t, "ABCD150825", detail.Code)

	err = repo.Update(ctx, 999, map[string]any{"status": "Completed"})
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestReservationRepository_Between(t *testing.T) {
	db := newTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	store := seedStore(t, db, "Central")
	other := seedStore(t, db, "North")
	customer := seedCustomer(t, db, "Budi", "0812345")

	seedReservation(t, db, store.ID, customer.ID, "AAAA200825", day(2025, 8, 20, 10))
	seedReservation(t, db, store.ID, customer.ID, "BBBB150825", day(2025, 8, 15, 10))
	seedReservation(t, db, store.ID, customer.ID, "CCCC010925", day(2025, 9, 1, 0))
	seedReservation(t, db, store.ID, customer.ID, "DDDD050825", day(2025, 8, 5, 10))
	seedReservation(t, db, other.ID, customer.ID, "EEEE160825", day(2025, 8, 16, 10))

	got, err := repo.Between(ctx, store.ID, day(2025, 8, 10, 0), day(2025, 9, 1, 0), 30)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "BBBB150825", got[0].Code)
	assert.Equal(t, "AAAA200825", got[1].Code)

	got, err = repo.Between(ctx, store.ID, day(2025, 8, 1, 0), day(2025, 9, 1, 0), 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "DDDD050825", got[0].Code)
}

func TestReservationRepository_CascadeOnStoreDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	store := seedStore(t, db, "Central")
	customer := seedCustomer(t, db, "Budi", "0812345")
	res := seedReservation(t, db, store.ID, customer.ID, "ABCD150825", day(2025, 8, 15, 19))

	require.NoError(t, NewStoreRepository(db).Delete(ctx, store.ID))

	_, err := repo.GetByID(ctx, res.ID)
	assert.ErrorIs(t, err, ErrReservationNotFound)

	exists, err := repo.CodeExists(ctx, "ABCD150825")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestReservationRepository_List(t *testing.T) {
	db := newTestDB(t)
	repo := NewReservationRepository(db)
	ctx := context.Background()

	store := seedStore(t, db, "Central")
	other := seedStore(t, db, "North")
	customer := seedCustomer(t, db, "Budi", "0812345")
	seedReservation(t, db, store.ID, customer.ID, "AAAA150825", day(2025, 8, 15, 10))
	seedReservation(t, db, other.ID, customer.ID, "BBBB160825", day(2025, 8, 16, 10))

	all, err := repo.List(ctx, model.ReservationFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "BBBB160825", all[0].Code)

	onlyStore, err := repo.List(ctx, model.ReservationFilter{StoreID: &store.ID})
	require.NoError(t, err)
	require.Len(t, onlyStore, 1)
	assert.Equal(t, "AAAA150825", onlyStore[0].Code)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
