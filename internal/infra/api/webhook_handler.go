package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"consulting-portal/internal/domain"
	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/infra/logging"
	"consulting-portal/internal/infra/metrics"
	"consulting-portal/internal/infra/payment"
	"consulting-portal/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// WebhookHandler receives payment gateway notifications.
type WebhookHandler struct {
	uc       usecase.WebhookUseCase
	verifier payment.WebhookVerifier
	log      *zerolog.Logger
}

func NewWebhookHandler(uc usecase.WebhookUseCase, verifier payment.WebhookVerifier, logger *zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{uc: uc, verifier: verifier, log: logger}
}

func (h *WebhookHandler) Register(r chi.Router) {
	r.Post("/webhooks/payments", h.receive)
}

type webhookResponse struct {
	Received bool `json:"received"`
	*model.WebhookOutcome
}

func (h *WebhookHandler) receive(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := logging.With(r.Context(), h.log)

	body, err := readBody(r)
	if err != nil {
		metrics.ObserveWebhook("", "invalid", time.Since(start))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.verifier == nil || !h.verifier.Verify(r, body) {
		log.Warn().Msg("webhook: rejected unauthenticated delivery")
		metrics.ObserveWebhook("", "unauthorized", time.Since(start))
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var ev model.GatewayEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		metrics.ObserveWebhook("", "invalid", time.Since(start))
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(string(ev.Event)) == "" {
		metrics.ObserveWebhook("", "invalid", time.Since(start))
		writeError(w, http.StatusBadRequest, "event is required")
		return
	}

	out, err := h.uc.Handle(r.Context(), &ev)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidArgument):
		metrics.ObserveWebhook(string(ev.Event), "invalid", time.Since(start))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, domain.ErrEventInFlight):
		metrics.ObserveWebhook(string(ev.Event), "in_flight", time.Since(start))
		w.Header().Set("Retry-After", "5")
		writeError(w, http.StatusServiceUnavailable, "event is being processed")
		return
	default:
		metrics.ObserveWebhook(string(ev.Event), "error", time.Since(start))
		writeError(w, http.StatusInternalServerError, "failed to process event")
		return
	}

	result := "applied"
	switch {
	case out.Ignored:
		result = "ignored"
	case out.Duplicate:
		result = "duplicate"
	case out.SubscriptionNotFound:
		result = "unmatched"
	}
	if out.SubscriptionChanged {
		metrics.IncSubscriptionTransition(ev.Event.SubscriptionStatus())
	}
	metrics.ObserveWebhook(string(ev.Event), result, time.Since(start))
	writeJSON(w, http.StatusOK, webhookResponse{Received: true, WebhookOutcome: out})
}
