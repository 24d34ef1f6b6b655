package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes events to a Kafka topic keyed by order id so events of
// one order stay ordered.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// NewKafkaPublisher creates a writer for topic on brokers.
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		logger: logger.With().Str("component", "kafka-publisher").Str("topic", topic).Logger(),
	}
}

func (p *KafkaPublisher) PublishOrderPaid(ctx context.Context, event OrderPaidEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID.String()),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(TopicOrderPaid)},
		},
	})
	if err != nil {
		p.logger.Error().Err(err).Str("order_id", event.OrderID.String()).Msg("failed to publish event")
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// KafkaConsumer reads a topic as part of a consumer group. Messages the
// handler keeps rejecting are written to topic+DeadLetterSuffix.
type KafkaConsumer struct {
	reader     *kafka.Reader
	deadLetter *kafka.Writer
	handler    Handler
	logger     zerolog.Logger
}

// NewKafkaConsumer creates a consumer for topic in group.
func NewKafkaConsumer(brokers []string, topic, group string, handler Handler, logger zerolog.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  group,
			MaxBytes: 10e6,
		}),
		deadLetter: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic + DeadLetterSuffix,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		handler: handler,
		logger:  logger.With().Str("component", "kafka-consumer").Str("topic", topic).Logger(),
	}
}

// Run consumes until ctx is cancelled. A message is committed once it was
// handled or dead-lettered; a message interrupted by shutdown is left
// uncommitted so the group redelivers it.
func (c *KafkaConsumer) Run(ctx context.Context) {
	for ctx.Err() == nil {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			c.logger.Error().Err(err).Msg("failed to read message")
			if !sleep(ctx, backoffOnError) {
				return
			}
			continue
		}

		if err := handleWithRetry(ctx, c.handler, m.Value, c.logger); err != nil {
			if ctx.Err() != nil {
				return
			}
			c.deadLetterMessage(ctx, m, err)
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.logger.Error().Err(err).Int64("offset", m.Offset).Msg("failed to commit message")
		}
	}
}

func (c *KafkaConsumer) deadLetterMessage(ctx context.Context, m kafka.Message, cause error) {
	headers := append([]kafka.Header{}, m.Headers...)
	headers = append(headers, kafka.Header{Key: "error", Value: []byte(cause.Error())})

	err := c.deadLetter.WriteMessages(ctx, kafka.Message{
		Key:     m.Key,
		Value:   m.Value,
		Headers: headers,
	})
	if err != nil {
		c.logger.Error().
			Err(err).
			AnErr("cause", cause).
			Int64("offset", m.Offset).
			Bytes("body", m.Value).
			Msg("failed to dead-letter message, message lost")
		return
	}

	c.logger.Error().
		Err(cause).
		Int64("offset", m.Offset).
		Str("dead_letter_topic", c.deadLetter.Topic).
		Msg("message moved to dead-letter topic")
}

func (c *KafkaConsumer) Close() error {
	if err := c.deadLetter.Close(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to close dead-letter writer")
	}
	return c.reader.Close()
}
