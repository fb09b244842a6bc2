package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"consulting-portal/internal/domain"
	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/domain/ports/adapter"
	"consulting-portal/internal/domain/ports/repository"
	"consulting-portal/internal/format"
	"consulting-portal/internal/infra/logging"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ MessagingUseCase = (*messagingUC)(nil)

type MessagingUseCase interface {
	// Send delivers one outbound WhatsApp message and records it in the
	// owning conversation. Validation problems wrap domain.ErrInvalidArgument.
	Send(ctx context.Context, msg model.OutboundMessage) (*model.SendResult, error)
}

type messagingUC struct {
	gateway  adapter.WhatsAppGateway
	tm       repository.TransactionManager
	convs    repository.ConversationRepository
	messages repository.MessageRepository
	validate *validator.Validate
	log      *zerolog.Logger
	now      func() time.Time
}

func NewMessagingUseCase(gateway adapter.WhatsAppGateway, tm repository.TransactionManager, convs repository.ConversationRepository, messages repository.MessageRepository, logger *zerolog.Logger) *messagingUC {
	return &messagingUC{
		gateway:  gateway,
		tm:       tm,
		convs:    convs,
		messages: messages,
		validate: validator.New(),
		log:      logger,
		now:      time.Now,
	}
}

func (u *messagingUC) Send(ctx context.Context, msg model.OutboundMessage) (*model.SendResult, error) {
	msg.To = strings.TrimSpace(msg.To)
	msg.Message = strings.TrimSpace(msg.Message)
	if err := u.validate.Struct(msg); err != nil {
		return nil, fmt.Errorf("%w: to and message are required", domain.ErrInvalidArgument)
	}
	number := format.NormalizeWhatsAppNumber(msg.To)
	if number == "" {
		return nil, fmt.Errorf("%w: to has no digits", domain.ErrInvalidArgument)
	}
	if msg.Type == "" {
		msg.Type = "text"
	}

	log := logging.With(ctx, u.log).With().Str("to", logging.Redact(number, false)).Str("gateway", u.gateway.Name()).Logger()

	gatewayID, err := u.gateway.SendText(ctx, number, msg.Message)
	if err != nil {
		log.Error().Err(err).Msg("whatsapp: send failed")
		return nil, fmt.Errorf("send whatsapp message: %w", err)
	}

	var convID string
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		conv, err := u.resolveConversation(ctx, tx, msg.ConversationID, number)
		if err != nil {
			return err
		}
		convID = conv.ID

		m := &model.WhatsAppMessage{
			ID:               uuid.NewString(),
			ConversationID:   conv.ID,
			GatewayMessageID: gatewayID,
			Direction:        model.MessageDirectionOutbound,
			Type:             msg.Type,
			Body:             msg.Message,
			Status:           "sent",
			CreatedAt:        u.now(),
		}
		if err := u.messages.Save(ctx, tx, m); err != nil {
			return fmt.Errorf("save message: %w", err)
		}
		if err := u.convs.TouchLastMessage(ctx, tx, conv.ID); err != nil {
			return fmt.Errorf("touch conversation: %w", err)
		}
		return nil
	})
	if err != nil {
		// the message already left; keep its id in the logs for reconciliation
		log.Error().Err(err).Str("message_id", gatewayID).Msg("whatsapp: sent but not recorded")
		return nil, fmt.Errorf("%w: %v", domain.ErrOperationFailed, err)
	}

	log.Info().Str("message_id", gatewayID).Str("conversation_id", convID).Msg("whatsapp: message sent")
	return &model.SendResult{Success: true, MessageID: gatewayID, ConversationID: convID}, nil
}

// resolveConversation prefers the caller's conversation id and falls back to
// the thread of the destination number.
func (u *messagingUC) resolveConversation(ctx context.Context, tx repository.Tx, id, phone string) (*model.WhatsAppConversation, error) {
	if id != "" {
		c, err := u.convs.FindByID(ctx, tx, id)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("find conversation: %w", err)
		}
	}
	now := u.now()
	c, err := u.convs.UpsertByPhone(ctx, tx, &model.WhatsAppConversation{
		ID:            uuid.NewString(),
		Phone:         phone,
		LastMessageAt: now,
		CreatedAt:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert conversation: %w", err)
	}
	return c, nil
}
