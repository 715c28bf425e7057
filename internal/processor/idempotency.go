package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/pkg/logger"
	"github.com/nimasrn/reservation-hub/pkg/redis"
)

var (
	ErrAlreadyProcessed  = errors.New("job already processed")
	ErrLockAcquireFailed = errors.New("failed to acquire processing lock")
)

type IdempotencyConfig struct {
	// LockTTL bounds how long a crashed worker keeps others off a job.
	LockTTL time.Duration

	// DoneTTL is how long a finished job stays remembered.
	DoneTTL time.Duration

	LockKeyPrefix string
	DoneKeyPrefix string
}

func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		LockTTL:       30 * time.Second,
		DoneTTL:       24 * time.Hour,
		LockKeyPrefix: "notify:lock:",
		DoneKeyPrefix: "notify:done:",
	}
}

// IdempotencyService makes sure one notification job is sent at most once
// even when the stream redelivers it. A job is done whatever its outcome.
type IdempotencyService struct {
	redis  redis.RedisAdapter
	config IdempotencyConfig
}

func NewIdempotencyService(redisAdapter redis.RedisAdapter, config IdempotencyConfig) *IdempotencyService {
	return &IdempotencyService{
		redis:  redisAdapter,
		config: config,
	}
}

type ProcessingContext struct {
	JobID        string
	lockAcquired bool
}

func (s *IdempotencyService) AcquireProcessingLock(ctx context.Context, jobID string) (*ProcessingContext, error) {
	done, err := s.redis.Exists(ctx, s.config.DoneKeyPrefix+jobID)
	if err != nil {
		// a duplicate send is better than a lost one
		logger.Warn("failed to check done marker", "job_id", jobID, "error", err)
	} else if done {
		return nil, ErrAlreadyProcessed
	}

	lockValue := []byte(fmt.Sprintf("%d", time.Now().UnixNano()))
	acquired, err := s.redis.SetNX(ctx, s.config.LockKeyPrefix+jobID, lockValue, s.config.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}
	if !acquired {
		return nil, ErrLockAcquireFailed
	}

	logger.Debug("processing lock acquired", "job_id", jobID, "lock_ttl", s.config.LockTTL)
	return &ProcessingContext{JobID: jobID, lockAcquired: true}, nil
}

// MarkDone records the outcome and drops the lock.
func (s *IdempotencyService) MarkDone(ctx context.Context, pc *ProcessingContext, outcome model.NotificationOutcome) error {
	if err := s.redis.Set(ctx, s.config.DoneKeyPrefix+pc.JobID, []byte(outcome), s.config.DoneTTL); err != nil {
		logger.Error("failed to mark job done", "job_id", pc.JobID, "error", err)
		return fmt.Errorf("failed to mark as done: %w", err)
	}
	return s.ReleaseLock(ctx, pc)
}

func (s *IdempotencyService) ReleaseLock(ctx context.Context, pc *ProcessingContext) error {
	if pc == nil || !pc.lockAcquired {
		return nil
	}
	if err := s.redis.Del(ctx, s.config.LockKeyPrefix+pc.JobID); err != nil {
		logger.Warn("failed to release lock", "job_id", pc.JobID, "error", err)
		return err
	}
	pc.lockAcquired = false
	return nil
}

// Outcome returns the recorded outcome of a finished job, or "" when the job
// has not finished.
func (s *IdempotencyService) Outcome(ctx context.Context, jobID string) (model.NotificationOutcome, error) {
	b, err := s.redis.Get(ctx, s.config.DoneKeyPrefix+jobID)
	if err != nil {
		if errors.Is(err, redis.NilError) {
			return "", nil
		}
		return "", err
	}
	return model.NotificationOutcome(b), nil
}
