package repository

import (
	"context"
	"testing"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerRepository_Create(t *testing.T) {
	db := newTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	t.Run("normalises telephone", func(t *testing.T) {
		c, err := repo.Create(ctx, &model.Customer{Name: "Budi", Code: "CUST-1", Telephone: "0812-3456"})
		require.NoError(t, err)
		assert.Equal(t, "628123456", c.Telephone)
	})

	t.Run("duplicate code", func(t *testing.T) {
		_, err := repo.Create(ctx, &model.Customer{Name: "Sari", Code: "CUST-1"})
		assert.ErrorIs(t, err, ErrCustomerCodeTaken)
	})
}

func TestCustomerRepository_FindByPhone(t *testing.T) {
	db := newTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	first := seedCustomer(t, db, "Budi", "+62 812 345")
	seedCustomer(t, db, "Budi Again", "0812345")

	found, err := repo.FindByPhone(ctx, "0812-345")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	_, err = repo.FindByPhone(ctx, "0899")
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	_, err = repo.FindByPhone(ctx, "   ")
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestCustomerRepository_UpdateAndRecent(t *testing.T) {
	db := newTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	c := seedCustomer(t, db, "Budi", "0812345")
	seedCustomer(t, db, "Sari", "0812999")

	c.IsMember = true
	c.Organization = "ACME"
	updated, err := repo.Update(ctx, c)
	require.NoError(t, err)
	assert.True(t, updated.IsMember)
	assert.Equal(t, "ACME", updated.Organization)

	recent, err := repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Sari", recent[0].Name)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
