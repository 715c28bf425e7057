package repository

import (
	"context"
	"testing"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRepository_CRUD(t *testing.T) {
	db := newTestDB(t)
	repo := NewStoreRepository(db)
	ctx := context.Background()

	wa := "628111"
	created, err := repo.Create(ctx, &model.Store{Name: "Central", WhatsApp: &wa})
	require.NoError(t, err)
	assert.False(t, created.AcceptsPublicReservations)
	assert.True(t, created.HasWhatsApp())

	created.Name = "Central Park"
	created.AcceptsPublicReservations = true
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "Central Park", updated.Name)
	assert.True(t, updated.AcceptsPublicReservations)

	_, err = repo.Update(ctx, &model.Store{ID: 999, Name: "ghost"})
	assert.ErrorIs(t, err, ErrStoreNotFound)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrStoreNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), ErrStoreNotFound)
}

func TestStoreRepository_LinkCustomer(t *testing.T) {
	db := newTestDB(t)
	repo := NewStoreRepository(db)
	ctx := context.Background()

	store := seedStore(t, db, "Central")
	customer := seedCustomer(t, db, "Budi", "0812345")

	require.NoError(t, repo.LinkCustomer(ctx, store.ID, customer.ID))
	require.NoError(t, repo.LinkCustomer(ctx, store.ID, customer.ID))

	customers, err := repo.Customers(ctx, store.ID)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, customer.ID, customers[0].ID)

	require.NoError(t, repo.UnlinkCustomer(ctx, store.ID, customer.ID))
	customers, err = repo.Customers(ctx, store.ID)
	require.NoError(t, err)
	assert.Empty(t, customers)
}

func TestStoreRepository_LinkCascadesWithCustomer(t *testing.T) {
	db := newTestDB(t)
	repo := NewStoreRepository(db)
	ctx := context.Background()

	store := seedStore(t, db, "Central")
	customer := seedCustomer(t, db, "Budi", "0812345")
	require.NoError(t, repo.LinkCustomer(ctx, store.ID, customer.ID))

	require.NoError(t, NewCustomerRepository(db).Delete(ctx, customer.ID))

	var links int64
	require.NoError(t, db.Read(ctx).Model(&StoreCustomerEntity{}).Count(&links).Error)
	assert.Zero(t, links)
}
