package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// AMQPPublisher publishes persistent JSON messages to a durable RabbitMQ queue.
type AMQPPublisher struct {
	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	queue  string
	logger zerolog.Logger
}

// NewAMQPPublisher dials the broker and declares queue.
func NewAMQPPublisher(url, queue string, logger zerolog.Logger) (*AMQPPublisher, error) {
	logger = logger.With().Str("component", "amqp-publisher").Logger()

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	logger.Info().Str("queue", queue).Msg("AMQP publisher initialised")

	return &AMQPPublisher{conn: conn, ch: ch, queue: queue, logger: logger}, nil
}

func (p *AMQPPublisher) PublishOrderPaid(ctx context.Context, event OrderPaidEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    event.OrderID.String(),
		Type:         TopicOrderPaid,
		Body:         body,
	})
	if err != nil {
		p.logger.Error().Err(err).Str("order_id", event.OrderID.String()).Msg("failed to publish event")
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		p.logger.Warn().Err(err).Msg("failed to close channel")
	}
	return p.conn.Close()
}

// RunAMQPConsumer consumes queue until ctx is cancelled, reconnecting with
// exponential backoff when the broker goes away. A message the handler still
// rejects after maxHandleAttempts is moved to queue+DeadLetterSuffix.
func RunAMQPConsumer(ctx context.Context, url, queue string, handler Handler, logger zerolog.Logger) {
	logger = logger.With().Str("component", "amqp-consumer").Str("queue", queue).Logger()

	backoff := time.Second
	for ctx.Err() == nil {
		conn, err := amqp.Dial(url)
		if err != nil {
			logger.Warn().Err(err).Dur("retry_in", backoff).Msg("failed to dial broker")
			if !sleep(ctx, backoff) {
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeAMQP(ctx, conn, queue, handler, logger)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		logger.Warn().Err(err).Msg("consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return
		}
	}
}

func consumeAMQP(ctx context.Context, conn *amqp.Connection, queue string, handler Handler, logger zerolog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		logger.Warn().Err(err).Msg("failed to set QoS")
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	deadLetters := queue + DeadLetterSuffix
	if _, err := ch.QueueDeclare(deadLetters, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead-letter queue: %w", err)
	}

	deliveries, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume queue: %w", err)
	}

	logger.Info().Msg("consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			err := handleWithRetry(ctx, handler, d.Body, logger)
			if err == nil {
				_ = d.Ack(false)
				continue
			}
			if ctx.Err() != nil {
				_ = d.Nack(false, true)
				return ctx.Err()
			}
			deadLetterAMQP(ctx, ch, deadLetters, d, err, logger)
		}
	}
}

// deadLetterAMQP parks d on queue and acknowledges it. When the broker refuses
// the copy the message is dropped and the loss is logged.
func deadLetterAMQP(ctx context.Context, ch *amqp.Channel, queue string, d amqp.Delivery, cause error, logger zerolog.Logger) {
	err := ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  d.ContentType,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    d.MessageId,
		Type:         d.Type,
		Headers:      amqp.Table{"x-error": cause.Error()},
		Body:         d.Body,
	})
	if err != nil {
		logger.Error().
			Err(err).
			AnErr("cause", cause).
			Str("message_id", d.MessageId).
			Bytes("body", d.Body).
			Msg("failed to dead-letter message, message lost")
		_ = d.Nack(false, false)
		return
	}

	logger.Error().
		Err(cause).
		Str("message_id", d.MessageId).
		Str("dead_letter_queue", queue).
		Msg("message moved to dead-letter queue")
	_ = d.Ack(false)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
