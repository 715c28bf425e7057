package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nimasrn/reservation-hub/internal/queue"
	"github.com/nimasrn/reservation-hub/pkg/logger"
	"github.com/nimasrn/reservation-hub/pkg/prom"
	"github.com/nimasrn/reservation-hub/pkg/redis"
	"github.com/nimasrn/reservation-hub/pkg/worker"
)

const ProcessingTimeout = 15 * time.Second
const HealthInterval = 30 * time.Second
const MetricsInterval = 30 * time.Second
const ShutdownTimeout = time.Minute

// Processor handles one queue message.
type Processor interface {
	Process(ctx context.Context, message *queue.Message) error
	GetType() string
}

type ServiceConfig struct {
	Queue      queue.QueueConfig
	Consumers  int
	Workers    int
	BufferSize int
}

// ProcessorService reads the notification stream with several consumers
// and hands every message to a fixed worker pool.
type ProcessorService struct {
	adapter   redis.RedisAdapter
	config    ServiceConfig
	queues    []*queue.Queue
	processor Processor
	metrics   *ServiceMetrics
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	worker    *worker.WorkerManager
}

func NewProcessorService(adapter redis.RedisAdapter, config ServiceConfig) *ProcessorService {
	if config.Consumers <= 0 {
		config.Consumers = 1
	}
	if config.Workers <= 0 {
		config.Workers = 4
	}
	if config.BufferSize <= 0 {
		config.BufferSize = config.Workers * 4
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ProcessorService{
		adapter: adapter,
		config:  config,
		metrics: NewServiceMetrics(),
		ctx:     ctx,
		cancel:  cancel,
		worker:  worker.NewWorkerManager(config.BufferSize, config.Workers),
	}
}

func (s *ProcessorService) RegisterProcessor(processor Processor) {
	s.processor = processor
	logger.Info("registered processor", "type", processor.GetType())
}

func (s *ProcessorService) Metrics() *ServiceMetrics {
	return s.metrics
}

func (s *ProcessorService) Start() error {
	if s.processor == nil {
		return fmt.Errorf("no processor registered")
	}
	logger.Info("starting processor service...")

	s.worker.SetWorker(s.workerHandler)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.worker.Start(); err != nil && err != worker.ErrStopped {
			logger.Error("worker manager stopped", "error", err)
		}
	}()

	for i := 0; i < s.config.Consumers; i++ {
		qc := s.config.Queue
		qc.ConsumerName = fmt.Sprintf("%s-%d", qc.ConsumerName, i)

		q, err := queue.NewQueue(s.adapter, qc)
		if err != nil {
			return fmt.Errorf("failed to create queue %d: %w", i, err)
		}
		if err := q.Consume(s.messageHandler); err != nil {
			return fmt.Errorf("failed to start consumer %d: %w", i, err)
		}
		s.queues = append(s.queues, q)
	}

	s.wg.Add(2)
	go s.metricsReporter()
	go s.healthChecker()

	logger.Info("processor service started", "consumers", len(s.queues), "workers", s.config.Workers)
	return nil
}

func (s *ProcessorService) metricsReporter() {
	defer s.wg.Done()

	ticker := time.NewTicker(MetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reportMetrics()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *ProcessorService) reportMetrics() {
	stats := s.metrics.GetStats()
	logger.Info("processor metrics",
		"total_processed", stats.Processed,
		"total_failed", stats.Failed,
		"rate_per_second", stats.RatePerSecond,
		"avg_duration_ms", stats.AvgDuration.Milliseconds(),
		"worker_backlog", s.worker.GetUnreadCount())

	// consumers share one stream and group, the first one speaks for all
	if len(s.queues) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if qs, err := s.queues[0].GetStats(ctx); err == nil {
		prom.SetQueuePending(s.config.Queue.Name, qs.PendingMessages)
		logger.Info("queue stats", "queue", s.config.Queue.Name, "total", qs.TotalMessages, "pending", qs.PendingMessages)
	}
}

func (s *ProcessorService) healthChecker() {
	defer s.wg.Done()

	ticker := time.NewTicker(HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.performHealthCheck()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *ProcessorService) performHealthCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.adapter.Ping(ctx); err != nil {
		logger.Error("health check failed: redis unreachable", "error", err)
		return
	}
	if len(s.queues) > 0 {
		if qs, err := s.queues[0].GetStats(ctx); err == nil && qs.PendingMessages > 1000 {
			logger.Warn("health check: notification backlog is high", "pending_messages", qs.PendingMessages)
		}
	}
	logger.Debug("health check ok")
}

// Stop drains the consumers, then the workers.
func (s *ProcessorService) Stop() {
	logger.Info("shutting down processor service...")

	var stopWg sync.WaitGroup
	for i, q := range s.queues {
		stopWg.Add(1)
		go func(index int, q *queue.Queue) {
			defer stopWg.Done()
			if err := q.Stop(ShutdownTimeout); err != nil {
				logger.Error("error stopping queue", "consumer", index, "error", err)
			}
		}(i, q)
	}
	stopWg.Wait()

	s.cancel()
	s.worker.Exit()
	s.wg.Wait()

	s.reportMetrics()
	logger.Info("processor service stopped")
}

type jobResult struct {
	msg        *queue.Message
	resultChan chan error
	ctx        context.Context
}

// messageHandler hands the message to the worker pool and waits for it, so
// the consumer acks only after processing.
func (s *ProcessorService) messageHandler(ctx context.Context, msg *queue.Message) error {
	msgCtx, cancel := context.WithTimeout(ctx, ProcessingTimeout)
	defer cancel()

	job := &jobResult{
		msg:        msg,
		resultChan: make(chan error, 1),
		ctx:        msgCtx,
	}
	if err := s.worker.Enqueue(msgCtx, job); err != nil {
		return fmt.Errorf("failed to enqueue message %s: %w", msg.ID, err)
	}

	select {
	case err := <-job.resultChan:
		return err
	case <-msgCtx.Done():
		return fmt.Errorf("timeout waiting for worker to process message: %w", msgCtx.Err())
	}
}

func (s *ProcessorService) workerHandler(workerIndex int, job interface{}) {
	jr, ok := job.(*jobResult)
	if !ok {
		logger.Error("invalid job type in worker", "worker", workerIndex)
		return
	}

	if jr.ctx.Err() != nil {
		logger.Warn("job context ended before processing started", "worker", workerIndex, "stream_id", jr.msg.ID)
		return
	}

	start := time.Now()
	err := s.processor.Process(jr.ctx, jr.msg)
	if err != nil {
		s.metrics.RecordFailure()
	} else {
		s.metrics.RecordSuccess(time.Since(start))
	}

	// buffered, never blocks
	jr.resultChan <- err
}
