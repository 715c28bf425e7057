package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/pkg/logger"
	"github.com/nimasrn/reservation-hub/pkg/redis"
)

type Message struct {
	ID        string
	Data      []byte
	Metadata  map[string]string
	Timestamp time.Time
	// Reclaimed is set when the entry was taken over from a consumer that
	// never acked it.
	Reclaimed bool
}

// Job decodes the notification job carried by the message.
func (m *Message) Job() (model.NotificationJob, error) {
	var job model.NotificationJob
	if err := json.Unmarshal(m.Data, &job); err != nil {
		return job, fmt.Errorf("failed to decode job %s: %w", m.ID, err)
	}
	return job, nil
}

// MessageHandler processes one entry. Whatever it returns the entry is
// acked: notifications are best effort and never redelivered on failure.
type MessageHandler func(ctx context.Context, msg *Message) error

type QueueConfig struct {
	Name              string
	ConsumerGroup     string
	ConsumerName      string
	VisibilityTimeout time.Duration
	PollInterval      time.Duration
	BatchSize         int64
	MaxLen            int64
}

type Queue struct {
	adapter redis.RedisAdapter
	config  QueueConfig
	handler MessageHandler
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

type QueueStats struct {
	TotalMessages   int64
	PendingMessages int64
	ConsumerCount   int64
}

// NewQueue creates a new queue instance
func NewQueue(adapter redis.RedisAdapter, config QueueConfig) (*Queue, error) {
	if config.Name == "" {
		return nil, fmt.Errorf("queue name is required")
	}
	if config.ConsumerGroup == "" {
		config.ConsumerGroup = "notifications"
	}
	if config.ConsumerName == "" {
		config.ConsumerName = fmt.Sprintf("consumer-%d", time.Now().UnixNano())
	}
	if config.VisibilityTimeout == 0 {
		config.VisibilityTimeout = 30 * time.Second
	}
	if config.PollInterval == 0 {
		config.PollInterval = time.Second
	}
	if config.BatchSize == 0 {
		config.BatchSize = 10
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		adapter: adapter,
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
	}

	if err := q.initConsumerGroup(); err != nil {
		cancel()
		return nil, err
	}
	return q, nil
}

func (q *Queue) initConsumerGroup() error {
	err := q.adapter.XGroupCreateMkStream(q.ctx, q.config.Name, q.config.ConsumerGroup, "0")
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group %s: %w", q.config.ConsumerGroup, err)
	}
	return nil
}

// Publish adds a message to the queue
func (q *Queue) Publish(ctx context.Context, data []byte, metadata map[string]string) (string, error) {
	values := map[string]interface{}{
		"data":      string(data),
		"timestamp": time.Now().Unix(),
	}
	for k, v := range metadata {
		values["meta_"+k] = v
	}

	id, err := q.adapter.XAdd(ctx, q.config.Name, q.config.MaxLen, values)
	if err != nil {
		return "", fmt.Errorf("failed to publish message: %w", err)
	}
	return id, nil
}

// PublishJob enqueues a notification job.
func (q *Queue) PublishJob(ctx context.Context, job model.NotificationJob) (string, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job: %w", err)
	}
	return q.Publish(ctx, data, map[string]string{
		"kind":   string(job.Kind),
		"job_id": job.ID,
	})
}

// Consume starts the polling loop. It may be called once.
func (q *Queue) Consume(handler MessageHandler) error {
	if handler == nil {
		return fmt.Errorf("message handler is required")
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return fmt.Errorf("queue %s is already consuming", q.config.ConsumerName)
	}
	q.started = true
	q.handler = handler

	q.wg.Add(1)
	go q.consumeLoop()
	return nil
}

func (q *Queue) consumeLoop() {
	defer q.wg.Done()

	ticker := time.NewTicker(q.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.Poll(q.ctx)
		}
	}
}

// Poll runs one read-and-reclaim round and returns how many entries were
// handled.
func (q *Queue) Poll(ctx context.Context) int {
	return q.processMessages(ctx) + q.claimStuckMessages(ctx)
}

func (q *Queue) processMessages(ctx context.Context) int {
	messages, err := q.adapter.XReadGroup(ctx, q.config.ConsumerGroup, q.config.ConsumerName, q.config.Name, q.config.BatchSize, 0)
	if err != nil {
		if ctx.Err() == nil {
			logger.Error("failed to read notification stream", "queue", q.config.Name, "error", err)
		}
		return 0
	}

	for _, streamMsg := range messages {
		q.handleMessage(ctx, toMessage(streamMsg))
	}
	return len(messages)
}

// claimStuckMessages takes over entries that a crashed consumer read but
// never acked.
func (q *Queue) claimStuckMessages(ctx context.Context) int {
	pending, err := q.adapter.XPendingIdle(ctx, q.config.Name, q.config.ConsumerGroup, q.config.VisibilityTimeout, 100)
	if err != nil || len(pending) == 0 {
		return 0
	}

	ids := make([]string, 0, len(pending))
	for _, p := range pending {
		ids = append(ids, p.ID)
	}

	messages, err := q.adapter.XClaim(ctx, q.config.Name, q.config.ConsumerGroup, q.config.ConsumerName, q.config.VisibilityTimeout, ids...)
	if err != nil {
		logger.Warn("failed to claim idle notifications", "queue", q.config.Name, "error", err)
		return 0
	}

	for _, streamMsg := range messages {
		msg := toMessage(streamMsg)
		msg.Reclaimed = true
		q.handleMessage(ctx, msg)
	}
	return len(messages)
}

func (q *Queue) handleMessage(ctx context.Context, msg *Message) {
	hctx, cancel := context.WithTimeout(ctx, q.config.VisibilityTimeout)
	defer cancel()

	if err := q.handler(hctx, msg); err != nil {
		logger.Error("notification handler failed", "queue", q.config.Name, "message_id", msg.ID, "error", err)
	}
	if err := q.adapter.XAck(ctx, q.config.Name, q.config.ConsumerGroup, msg.ID); err != nil {
		logger.Error("failed to ack notification", "queue", q.config.Name, "message_id", msg.ID, "error", err)
	}
}

func toMessage(streamMsg redis.StreamMessage) *Message {
	msg := &Message{
		ID:       streamMsg.ID,
		Metadata: make(map[string]string),
	}

	for k, v := range streamMsg.Values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		switch {
		case k == "data":
			msg.Data = []byte(s)
		case k == "timestamp":
			if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
				msg.Timestamp = time.Unix(unix, 0)
			}
		case strings.HasPrefix(k, "meta_"):
			msg.Metadata[strings.TrimPrefix(k, "meta_")] = s
		}
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	return msg
}

func (q *Queue) Stop(timeout time.Duration) error {
	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for queue to stop")
	}
}

func (q *Queue) GetStats(ctx context.Context) (*QueueStats, error) {
	total, err := q.adapter.XLen(ctx, q.config.Name)
	if err != nil {
		return nil, err
	}

	stats := &QueueStats{TotalMessages: total}
	if pending, err := q.adapter.XPending(ctx, q.config.Name, q.config.ConsumerGroup); err == nil && pending != nil {
		stats.PendingMessages = pending.Count
		stats.ConsumerCount = int64(len(pending.Consumers))
	}
	return stats, nil
}
