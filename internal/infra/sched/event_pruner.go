package sched

import (
	"context"
	"time"

	"consulting-portal/internal/domain/ports/repository"
	"consulting-portal/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// EventPruner periodically drops webhook dedup records older than the
// retention period. Gateways stop redelivering long before that.
type EventPruner struct {
	interval  time.Duration
	retention time.Duration
	events    repository.WebhookEventRepository
	log       *zerolog.Logger
	now       func() time.Time
}

func NewEventPruner(interval, retention time.Duration, events repository.WebhookEventRepository, logger *zerolog.Logger) *EventPruner {
	if interval <= 0 {
		interval = time.Hour
	}
	l := logger.With().Str("component", "EventPruner").Logger()
	return &EventPruner{
		interval:  interval,
		retention: retention,
		events:    events,
		log:       &l,
		now:       time.Now,
	}
}

func (w *EventPruner) Run(ctx context.Context) error {
	w.log.Info().Dur("retention", w.retention).Msg("Starting event pruner")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping event pruner")
			return ctx.Err()
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce prunes once and returns the number of removed records.
func (w *EventPruner) RunOnce(ctx context.Context) int64 {
	if w.retention <= 0 {
		return 0
	}
	n, err := w.events.PruneBefore(ctx, repository.NoTX, w.now().Add(-w.retention))
	if err != nil {
		w.log.Error().Err(err).Msg("event pruner error")
		return 0
	}
	if n > 0 {
		metrics.AddWebhookEventsPruned(n)
		w.log.Info().Int64("count", n).Msg("webhook events pruned")
	}
	return n
}
