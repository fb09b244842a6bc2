package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		webhookEventsTotal,
		webhookDuration,
		webhookEventsPrunedTotal,
	)
}

var (
	// result: applied|duplicate|ignored|unmatched|unauthorized|invalid|in_flight|error
	webhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Payment gateway deliveries by event type and result.",
		},
		[]string{"event", "result"},
	)

	webhookEventsPrunedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_events_pruned_total",
			Help: "Dedup records removed after the retention period.",
		},
	)

	webhookDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_duration_seconds",
			Help:    "Duration of the payment webhook handler in seconds.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"result"},
	)
)

func ObserveWebhook(event, result string, elapsed time.Duration) {
	if event == "" {
		event = "unknown"
	}
	webhookEventsTotal.WithLabelValues(event, norm(result)).Inc()
	webhookDuration.WithLabelValues(norm(result)).Observe(elapsed.Seconds())
}

func AddWebhookEventsPruned(n int64) {
	if n > 0 {
		webhookEventsPrunedTotal.Add(float64(n))
	}
}
