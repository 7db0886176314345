// Package producers publishes declaration lifecycle events to Kafka for
// downstream consumers (selectivity processing, reporting). Publishing is
// best-effort: the workflow never blocks or fails on the event stream.
package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/duca-customs-backend/internal/config"
	"github.com/duca-customs-backend/internal/domain/declaration"
)

// Event kinds carried on the declaration topic.
const (
	EventDeclarationCreated = "declaration.created"
	EventDeclarationDecided = "declaration.decided"
)

// DeclarationEvent is the message shape written to the declaration topic.
type DeclarationEvent struct {
	Kind            string             `json:"kind"`
	DeclarationID   uuid.UUID          `json:"declaration_id"`
	NumeroDocumento string             `json:"numero_documento"`
	Estado          declaration.Status `json:"estado"`
	ActorID         uuid.UUID          `json:"actor_id"`
	Timestamp       time.Time          `json:"timestamp"`
}

// DeclarationEventProducer publishes declaration lifecycle events.
type DeclarationEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewDeclarationEventProducer creates the producer and ensures the topic exists.
func NewDeclarationEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*DeclarationEventProducer, error) {
	if cfg.DeclarationTopic == "" {
		return nil, fmt.Errorf("kafka declaration topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for declaration event producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.DeclarationTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure declaration topic %s exists: %w", cfg.DeclarationTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.DeclarationTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Event delivery is best-effort, the workflow never waits
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write declaration events asynchronously", "topic", cfg.DeclarationTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote declaration events asynchronously", "topic", cfg.DeclarationTopic, "count", len(messages))
			}
		},
	}

	return &DeclarationEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.DeclarationTopic,
	}, nil
}

// Publish writes one event to the declaration topic, keyed so that all
// events of the same declaration land in the same partition.
func (p *DeclarationEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal declaration event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish declaration event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish declaration event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published declaration event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *DeclarationEventProducer) Close() error {
	p.logger.Info("Closing declaration event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
