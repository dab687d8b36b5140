package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/events"
	pkgkafka "github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/kafka"
)

// MessagePublisher is the subset of pkg/kafka.Producer the publisher needs.
type MessagePublisher interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// KafkaPublisher implements port.EventPublisher on Kafka. Each event is
// sent as a JSON envelope keyed by its aggregate id.
type KafkaPublisher struct {
	producer MessagePublisher
	logger   *slog.Logger
	topic    string
}

// NewKafkaPublisher creates a new Kafka event publisher.
func NewKafkaPublisher(producer MessagePublisher, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish sends domain events to Kafka in one batch.
func (p *KafkaPublisher) Publish(ctx context.Context, domainEvents ...events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	messages := make([]pkgkafka.Message, 0, len(domainEvents))
	for _, evt := range domainEvents {
		body, err := events.MarshalEnvelope(evt)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", evt.EventType(), err)
		}

		p.logger.DebugContext(ctx, "publishing event",
			slog.String("event_type", evt.EventType()),
			slog.String("topic", p.topic),
			slog.Int("payload_size", len(body)),
		)

		messages = append(messages, envelopeMessage(evt.AggregateID().String(), evt.EventType(), evt.AggregateType(), body))
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", p.topic, err)
	}
	return nil
}

func envelopeMessage(key, eventType, aggregateType string, body []byte) pkgkafka.Message {
	return pkgkafka.Message{
		Key:   []byte(key),
		Value: body,
		Headers: map[string]string{
			"event_type":     eventType,
			"aggregate_type": aggregateType,
		},
	}
}
