package telegram

import (
	"context"

	"consulting-portal/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

var _ adapter.OpsNotifier = (*NoopNotifier)(nil)

// NoopNotifier implements adapter.OpsNotifier for local/dev runs.
// It logs alerts instead of sending them.
type NoopNotifier struct {
	log *zerolog.Logger
}

func NewNoopNotifier(logger *zerolog.Logger) *NoopNotifier {
	return &NoopNotifier{log: logger}
}

func (n *NoopNotifier) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.log.Info().Str("notifier", "noop").Str("text", text).Msg("ops alert")
	return nil
}
