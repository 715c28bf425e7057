package processor

import (
	"sync/atomic"
	"time"
)

// ServiceMetrics are in-process counters logged by the reporter. Prometheus
// carries the per-kind breakdown.
type ServiceMetrics struct {
	totalProcessed  atomic.Int64
	totalFailed     atomic.Int64
	totalDurationNs atomic.Int64
	lastResetNs     atomic.Int64
}

type ServiceStats struct {
	Processed     int64
	Failed        int64
	RatePerSecond float64
	AvgDuration   time.Duration
	Uptime        time.Duration
}

func NewServiceMetrics() *ServiceMetrics {
	m := &ServiceMetrics{}
	m.lastResetNs.Store(time.Now().UnixNano())
	return m
}

func (m *ServiceMetrics) RecordSuccess(duration time.Duration) {
	m.totalProcessed.Add(1)
	m.totalDurationNs.Add(int64(duration))
}

func (m *ServiceMetrics) RecordFailure() {
	m.totalFailed.Add(1)
}

func (m *ServiceMetrics) GetStats() ServiceStats {
	processed := m.totalProcessed.Load()
	elapsed := time.Since(time.Unix(0, m.lastResetNs.Load()))

	stats := ServiceStats{
		Processed: processed,
		Failed:    m.totalFailed.Load(),
		Uptime:    elapsed,
	}
	if elapsed > 0 {
		stats.RatePerSecond = float64(processed) / elapsed.Seconds()
	}
	if processed > 0 {
		stats.AvgDuration = time.Duration(m.totalDurationNs.Load() / processed)
	}
	return stats
}

func (m *ServiceMetrics) Reset() {
	m.totalProcessed.Store(0)
	m.totalFailed.Store(0)
	m.totalDurationNs.Store(0)
	m.lastResetNs.Store(time.Now().UnixNano())
}
