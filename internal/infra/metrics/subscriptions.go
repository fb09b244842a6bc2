package metrics

import (
	"consulting-portal/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(subscriptionTransitionsTotal) }

var subscriptionTransitionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "subscription_transitions_total",
		Help: "Subscription status changes applied from gateway events.",
	},
	[]string{"status"},
)

func IncSubscriptionTransition(status model.SubscriptionStatus) {
	subscriptionTransitionsTotal.WithLabelValues(string(status)).Inc()
}
