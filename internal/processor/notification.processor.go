package processor

import (
	"context"
	"errors"

	gateway "github.com/nimasrn/reservation-hub/internal/gateways"
	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/internal/notify"
	"github.com/nimasrn/reservation-hub/internal/queue"
	"github.com/nimasrn/reservation-hub/pkg/logger"
	"github.com/nimasrn/reservation-hub/pkg/prom"
)

type Composer interface {
	Compose(ctx context.Context, job model.NotificationJob) (*notify.Message, error)
}

type Sender interface {
	Send(ctx context.Context, destination, text, token string) (*gateway.Result, error)
}

type TokenSource interface {
	WhatsAppToken() string
}

// NotificationProcessor turns a queued job into one WhatsApp message. It
// never asks for redelivery: every job ends as sent, skipped or failed.
type NotificationProcessor struct {
	composer    Composer
	sender      Sender
	tokens      TokenSource
	idempotency *IdempotencyService
}

func NewNotificationProcessor(composer Composer, sender Sender, tokens TokenSource, idempotency *IdempotencyService) *NotificationProcessor {
	return &NotificationProcessor{
		composer:    composer,
		sender:      sender,
		tokens:      tokens,
		idempotency: idempotency,
	}
}

func (p *NotificationProcessor) GetType() string {
	return "notification"
}

func (p *NotificationProcessor) Process(ctx context.Context, msg *queue.Message) error {
	job, err := msg.Job()
	if err != nil {
		logger.Error("dropping undecodable job", "stream_id", msg.ID, "error", err)
		prom.IncNotification("unknown", string(model.NotificationFailed))
		return nil
	}

	pc, err := p.idempotency.AcquireProcessingLock(ctx, job.ID)
	if err != nil {
		if errors.Is(err, ErrAlreadyProcessed) || errors.Is(err, ErrLockAcquireFailed) {
			logger.Info("job handled elsewhere, skipping", "job_id", job.ID, "reason", err)
			return nil
		}
		return err
	}

	outcome, err := p.deliver(ctx, job)
	if markErr := p.idempotency.MarkDone(ctx, pc, outcome); markErr != nil {
		_ = p.idempotency.ReleaseLock(ctx, pc)
	}
	prom.IncNotification(string(job.Kind), string(outcome))
	return err
}

func (p *NotificationProcessor) deliver(ctx context.Context, job model.NotificationJob) (model.NotificationOutcome, error) {
	log := logger.With("job_id", job.ID, "kind", job.Kind, "entity_id", job.EntityID)

	message, err := p.composer.Compose(ctx, job)
	if err != nil {
		log.Error("failed to compose notification", "error", err)
		return model.NotificationFailed, err
	}

	if message.Destination == "" {
		log.Info("store has no whatsapp number, notification skipped")
		return model.NotificationSkipped, nil
	}
	token := p.tokens.WhatsAppToken()
	if token == "" {
		log.Info("whatsapp api token not configured, notification skipped")
		return model.NotificationSkipped, nil
	}

	res, err := p.sender.Send(ctx, message.Destination, message.Text, token)
	if err != nil {
		log.Error("failed to send notification", "error", err)
		return model.NotificationFailed, err
	}

	log.Info("notification sent", "provider", res.Provider, "message_ids", res.IDs)
	return model.NotificationSent, nil
}
