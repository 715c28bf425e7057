package processor

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	t.Helper()
	mr := miniredis.RunT(t)

	connName := t.Name() + "-" + mr.Addr()
	adapter, err := redis.NewRedisAdapter(connName, "test:", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = redis.Close(connName) })

	return mr, adapter
}

func TestIdempotencyService_AcquireProcessingLock(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	service := NewIdempotencyService(adapter, DefaultIdempotencyConfig())
	ctx := context.Background()

	pc, err := service.AcquireProcessingLock(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", pc.JobID)
	assert.True(t, pc.lockAcquired)
	assert.True(t, mr.Exists("test:notify:lock:job-1"))

	// a second consumer is kept out while the lock is held
	_, err = service.AcquireProcessingLock(ctx, "job-1")
	assert.ErrorIs(t, err, ErrLockAcquireFailed)
}

func TestIdempotencyService_MarkDone(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	service := NewIdempotencyService(adapter, DefaultIdempotencyConfig())
	ctx := context.Background()

	pc, err := service.AcquireProcessingLock(ctx, "job-2")
	require.NoError(t, err)
	require.NoError(t, service.MarkDone(ctx, pc, model.NotificationFailed))

	assert.False(t, pc.lockAcquired)
	assert.False(t, mr.Exists("test:notify:lock:job-2"))
	assert.Equal(t, 24*time.Hour, mr.TTL("test:notify:done:job-2"))

	outcome, err := service.Outcome(ctx, "job-2")
	require.NoError(t, err)
	assert.Equal(t, model.NotificationFailed, outcome)

	// a failed job is still done, it is never sent again
	_, err = service.AcquireProcessingLock(ctx, "job-2")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestIdempotencyService_LockExpires(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	cfg := DefaultIdempotencyConfig()
	cfg.LockTTL = time.Second
	service := NewIdempotencyService(adapter, cfg)
	ctx := context.Background()

	_, err := service.AcquireProcessingLock(ctx, "job-3")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = service.AcquireProcessingLock(ctx, "job-3")
	assert.NoError(t, err)
}

func TestIdempotencyService_ReleaseLock(t *testing.T) {
	_, adapter := setupTestRedis(t)
	service := NewIdempotencyService(adapter, DefaultIdempotencyConfig())
	ctx := context.Background()

	pc, err := service.AcquireProcessingLock(ctx, "job-4")
	require.NoError(t, err)
	require.NoError(t, service.ReleaseLock(ctx, pc))
	// released twice is fine
	require.NoError(t, service.ReleaseLock(ctx, pc))
	require.NoError(t, service.ReleaseLock(ctx, nil))

	_, err = service.AcquireProcessingLock(ctx, "job-4")
	assert.NoError(t, err)

	outcome, err := service.Outcome(ctx, "job-4")
	require.NoError(t, err)
	assert.Empty(t, outcome)
}
