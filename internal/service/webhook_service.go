package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wellspring/internal/events"
	"wellspring/internal/model"
	"wellspring/internal/payment"
	"wellspring/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// webhookService implements WebhookService.
type webhookService struct {
	verifier  payment.EventVerifier
	orders    repository.OrderRepository
	events    repository.WebhookEventRepository
	publisher events.Publisher
	now       func() time.Time
	logger    zerolog.Logger
}

// NewWebhookService creates a new webhook service.
func NewWebhookService(
	verifier payment.EventVerifier,
	orders repository.OrderRepository,
	webhookEvents repository.WebhookEventRepository,
	publisher events.Publisher,
	logger zerolog.Logger,
) WebhookService {
	return &webhookService{
		verifier:  verifier,
		orders:    orders,
		events:    webhookEvents,
		publisher: publisher,
		now:       time.Now,
		logger:    logger.With().Str("service", "webhook").Logger(),
	}
}

// HandleDelivery verifies and processes one raw delivery.
func (s *webhookService) HandleDelivery(ctx context.Context, payload []byte, signature string) error {
	event, err := s.verifier.Verify(payload, signature)
	if err != nil {
		s.logger.Warn().Err(err).Int("payload_bytes", len(payload)).Msg("rejected webhook delivery")
		return model.ErrInvalidSignature
	}
	return s.process(ctx, event)
}

func (s *webhookService) process(ctx context.Context, event payment.Event) error {
	log := s.logger.With().Str("event_id", event.ID).Str("event_type", event.Type).Logger()

	if event.Kind == payment.Unknown {
		log.Debug().Msg("ignoring unhandled event type")
		return nil
	}

	seen, err := s.events.Exists(ctx, event.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to check event record")
		return fmt.Errorf("failed to check event record: %w", err)
	}
	if seen {
		log.Info().Msg("duplicate delivery, already processed")
		return nil
	}

	order, err := s.findOrder(ctx, event)
	if err != nil {
		log.Error().Err(err).Msg("failed to find order")
		return fmt.Errorf("failed to find order: %w", err)
	}
	if order == nil {
		log.Warn().
			Str("session_id", event.SessionID).
			Str("payment_intent_id", event.PaymentIntentID).
			Msg("no order for event")
		return nil
	}

	t := payment.Reduce(*order, event)
	if t.IsNoOp() {
		log.Info().
			Str("order_id", order.ID.String()).
			Str("status", string(order.Status)).
			Str("reason", t.Reason).
			Msg("event does not change order")
		return nil
	}

	applied, err := s.apply(ctx, event, t)
	if err != nil {
		log.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to apply transition")
		return err
	}
	if !applied {
		return nil
	}

	log.Info().
		Str("order_id", order.ID.String()).
		Str("from", string(t.From)).
		Str("to", string(t.To)).
		Int("item_count", len(t.Items)).
		Msg("order status updated")

	if t.To == model.OrderStatusPaid {
		s.publishPaid(ctx, *order, t)
	}
	return nil
}

// apply writes the event record and the transition in one transaction.
// It returns false when another delivery got there first.
func (s *webhookService) apply(ctx context.Context, event payment.Event, t payment.Transition) (bool, error) {
	tx, err := s.orders.BeginTx(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to apply transition: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	recorded, err := s.events.Record(ctx, tx, model.WebhookEvent{
		ID:          event.ID,
		Type:        event.Type,
		ProcessedAt: s.now(),
	})
	if err != nil {
		return false, fmt.Errorf("failed to record event: %w", err)
	}
	if !recorded {
		s.logger.Info().Str("event_id", event.ID).Msg("event recorded concurrently")
		return false, nil
	}

	updated, err := s.orders.ApplyTransition(ctx, tx, t)
	if err != nil {
		return false, fmt.Errorf("failed to update order: %w", err)
	}
	if !updated {
		s.logger.Info().
			Str("event_id", event.ID).
			Str("order_id", t.OrderID.String()).
			Msg("order changed concurrently")
		return false, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit transition: %w", err)
	}
	committed = true

	return true, nil
}

func (s *webhookService) findOrder(ctx context.Context, event payment.Event) (*model.Order, error) {
	var (
		order *model.Order
		err   error
	)

	switch payment.Lookup(event.Kind) {
	case payment.LookupBySession:
		if event.SessionID != "" {
			order, err = s.orders.FindBySessionID(ctx, event.SessionID)
		}
	case payment.LookupByPaymentIntent:
		if event.PaymentIntentID != "" {
			order, err = s.orders.FindByPaymentIntentID(ctx, event.PaymentIntentID)
		}
	}
	if err != nil || order != nil {
		return order, err
	}

	// Payment intent events can arrive before the session completes, so fall
	// back to the order id stamped into the gateway metadata.
	id, parseErr := uuid.Parse(event.OrderID)
	if parseErr != nil {
		return nil, nil
	}
	order, _, err = s.orders.GetByID(ctx, id)
	return order, err
}

func (s *webhookService) publishPaid(ctx context.Context, order model.Order, t payment.Transition) {
	event := events.OrderPaidEvent{
		OrderID:       order.ID,
		CustomerEmail: order.CustomerEmail,
		Total:         order.Total,
		Currency:      order.Currency,
		Items:         t.Items,
		PaidAt:        s.now(),
	}

	if err := s.publisher.PublishOrderPaid(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to publish order.paid")
	}
}
