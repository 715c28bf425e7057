package repository

import (
	"context"
	"testing"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingRepository_Upsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewSettingRepository(db)
	ctx := context.Background()

	_, err := repo.Get(ctx, model.SettingWhatsAppAPIToken)
	assert.ErrorIs(t, err, ErrSettingNotFound)

	require.NoError(t, repo.Upsert(ctx, model.SettingWhatsAppAPIToken, "first"))
	require.NoError(t, repo.Upsert(ctx, model.SettingWhatsAppAPIToken, "second"))

	s, err := repo.Get(ctx, model.SettingWhatsAppAPIToken)
	require.NoError(t, err)
	assert.Equal(t, "second", s.Value)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
