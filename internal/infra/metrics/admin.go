package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		adminActionsTotal,
		storageProvisionTotal,
		whatsappMessagesTotal,
		httpRateLimitedTotal,
	)
}

var (
	adminActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admin_actions_total",
			Help: "Admin user-management calls by action and result.",
		},
		[]string{"action", "result"}, // result: ok|unauthorized|forbidden|invalid|error
	)

	storageProvisionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_provision_total",
			Help: "Storage provisioning calls by result.",
		},
		[]string{"result"},
	)

	whatsappMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whatsapp_messages_total",
			Help: "Outbound WhatsApp messages by status.",
		},
		[]string{"status"}, // sent|invalid|gateway_error|error
	)

	httpRateLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the per-route rate limiter.",
		},
		[]string{"route"},
	)
)

func IncAdminAction(action, result string) {
	if action == "" {
		action = "none"
	}
	adminActionsTotal.WithLabelValues(norm(action), norm(result)).Inc()
}

func IncStorageProvision(result string) {
	storageProvisionTotal.WithLabelValues(norm(result)).Inc()
}

func IncWhatsAppMessage(status string) {
	whatsappMessagesTotal.WithLabelValues(norm(status)).Inc()
}

func IncRateLimited(route string) {
	httpRateLimitedTotal.WithLabelValues(route).Inc()
}
