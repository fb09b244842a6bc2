// File: internal/infra/metrics/metrics.go
package metrics

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/domain/ports/adapter"
	"consulting-portal/internal/infra/logging"
)

func init() {
	register(
		checkoutDecisionsTotal,
		checkoutThrottleTotal,
	)
}

var (
	checkoutDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_decisions_total",
			Help: "Payment routing decisions by plan and payment type.",
		},
		[]string{"plan", "payment_type"}, // payment_type: cash|installments|corporate
	)

	checkoutThrottleTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_throttle_total",
			Help: "Checkout attempts seen by the throttle.",
		},
		[]string{"result"}, // allowed|throttled
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncCheckoutThrottle(allowed bool) {
	result := "allowed"
	if !allowed {
		result = "throttled"
	}
	checkoutThrottleTotal.WithLabelValues(result).Inc()
}

// Tracker records payment routing decisions as metrics and log lines.
type Tracker struct {
	log *zerolog.Logger
}

var _ adapter.Tracker = (*Tracker)(nil)

func NewTracker(logger *zerolog.Logger) *Tracker { return &Tracker{log: logger} }

func (t *Tracker) Track(ctx context.Context, ev model.TrackingEvent) {
	kind := string(ev.PaymentType)
	if ev.Category != "" {
		kind = ev.Category
	}
	checkoutDecisionsTotal.WithLabelValues(norm(ev.PlanID), norm(kind)).Inc()
	logging.With(ctx, t.log).Info().
		Str("plan", ev.PlanID).
		Str("kind", kind).
		Time("at", ev.At).
		Msg("checkout decision")
}
