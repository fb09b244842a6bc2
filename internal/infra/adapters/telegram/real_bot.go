package telegram

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"consulting-portal/internal/config"
	"consulting-portal/internal/domain/ports/adapter"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var _ adapter.OpsNotifier = (*BotNotifier)(nil)

// telegram rejects longer message texts
const maxMessageRunes = 4096

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// BotNotifier posts ops alerts to one staff chat through the Bot API.
type BotNotifier struct {
	bot    sender
	chatID int64
}

func NewBotNotifier(cfg config.NotifyConfig) (*BotNotifier, error) {
	if cfg.TelegramToken == "" {
		return nil, errors.New("telegram token empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat id empty")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &BotNotifier{bot: bot, chatID: cfg.ChatID}, nil
}

func (n *BotNotifier) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if utf8.RuneCountInString(text) > maxMessageRunes {
		text = string([]rune(text)[:maxMessageRunes-1]) + "…"
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// NewNotifier picks the Bot API notifier when a token is configured and the
// no-op one otherwise.
func NewNotifier(cfg config.NotifyConfig, noop *NoopNotifier) (adapter.OpsNotifier, error) {
	if cfg.TelegramToken == "" {
		return noop, nil
	}
	return NewBotNotifier(cfg)
}
