package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/internal/repository"
	"github.com/nimasrn/reservation-hub/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) redis.RedisAdapter {
	t.Helper()
	mr := miniredis.RunT(t)

	connName := t.Name() + "-" + mr.Addr()
	adapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = redis.Close(connName) })
	return adapter
}

func TestSettingsService_SetAndGet(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(repository.NewSettingRepository(db), nil)
	ctx := context.Background()

	require.NoError(t, svc.Load(ctx))
	assert.Empty(t, svc.WhatsAppToken())

	require.NoError(t, svc.Set(ctx, model.SettingWhatsAppAPIToken, "  tok-1 "))
	assert.Equal(t, "tok-1", svc.WhatsAppToken())

	require.NoError(t, svc.Set(ctx, model.SettingWhatsAppAPIToken, "tok-2"))
	v, ok := svc.Get(model.SettingWhatsAppAPIToken)
	assert.True(t, ok)
	assert.Equal(t, "tok-2", v)
	assert.Len(t, svc.All(), 1)

	var verr *model.ValidationError
	assert.ErrorAs(t, svc.Set(ctx, " ", "x"), &verr)
}

func TestSettingsService_WatchReloadsOnBroadcast(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewSettingRepository(db)
	adapter := setupTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// two processes sharing a database and a redis
	writer := NewSettingsService(repo, adapter)
	watcher := NewSettingsService(repo, adapter)
	require.NoError(t, watcher.Load(ctx))

	done := make(chan error, 1)
	go func() { done <- watcher.Watch(ctx) }()

	require.Eventually(t, func() bool {
		require.NoError(t, writer.Set(ctx, model.SettingWhatsAppAPIToken, "fresh"))
		return watcher.WhatsAppToken() == "fresh"
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}
