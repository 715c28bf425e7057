package prom

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	// disabled until Create runs
	IncNotification("reservation", "sent")

	require.NoError(t, Create("test-host", "test", "reservation_hub"))

	IncNotification("reservation", "sent")
	IncNotification("reservation", "sent")
	IncNotification("revenue", "skipped")
	IncReservationCreated("public")
	IncReservationCodeRetry()
	SetQueuePending("notifications", 7)
	AddGatewayRequestDuration(0.25, "primary", "ok")

	jobs := MetricCollectionCounterVec[SystemNotifications+MetricNotificationJobs]
	assert.Equal(t, 2.0, testutil.ToFloat64(jobs.WithLabelValues("reservation", "sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(jobs.WithLabelValues("revenue", "skipped")))

	created := MetricCollectionCounterVec[SystemReservations+MetricReservationsCreated]
	assert.Equal(t, 1.0, testutil.ToFloat64(created.WithLabelValues("public")))
	assert.Equal(t, 1.0, testutil.ToFloat64(MetricCollectionCounters[SystemReservations+MetricReservationCodeRetries]))

	pending := MetricCollectionGaugeVec[SystemNotifications+MetricQueuePending]
	assert.Equal(t, 7.0, testutil.ToFloat64(pending.WithLabelValues("notifications")))

	assert.Equal(t, 1, testutil.CollectAndCount(MetricCollectionHistogramVec[SystemGateway+MetricGatewayRequestDuration]))

	// unknown metrics are logged, not fatal
	IncCounter("missing", "metric")
}
