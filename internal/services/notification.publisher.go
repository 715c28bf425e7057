package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nimasrn/reservation-hub/internal/model"
)

type jobQueue interface {
	PublishJob(ctx context.Context, job model.NotificationJob) (string, error)
}

// QueuePublisher turns notification requests into stream jobs.
type QueuePublisher struct {
	queue jobQueue
}

func NewQueuePublisher(q jobQueue) *QueuePublisher {
	return &QueuePublisher{queue: q}
}

func (p *QueuePublisher) Publish(ctx context.Context, kind model.NotificationKind, entityID int64) error {
	_, err := p.queue.PublishJob(ctx, model.NotificationJob{
		ID:         uuid.NewString(),
		Kind:       kind,
		EntityID:   entityID,
		EnqueuedAt: time.Now().UTC(),
	})
	return err
}
