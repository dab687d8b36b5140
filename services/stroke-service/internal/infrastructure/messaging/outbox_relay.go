package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/events"
	pkgkafka "github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/kafka"
)

const defaultRelayBatchSize = 100

// OutboxRelay moves staged events from the outbox to Kafka. Entries are
// marked published only after the broker acknowledged them, so a crash
// between the two steps re-sends rather than loses an event.
type OutboxRelay struct {
	outbox    events.OutboxRepository
	producer  MessagePublisher
	logger    *slog.Logger
	topic     string
	batchSize int
}

// NewOutboxRelay creates a relay. A non-positive batchSize uses 100.
func NewOutboxRelay(outbox events.OutboxRepository, producer MessagePublisher, topic string, batchSize int, logger *slog.Logger) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = defaultRelayBatchSize
	}
	return &OutboxRelay{
		outbox:    outbox,
		producer:  producer,
		topic:     topic,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Flush relays every pending entry and returns how many were sent.
func (r *OutboxRelay) Flush(ctx context.Context) (int, error) {
	sent := 0
	for {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		entries, err := r.outbox.FetchUnpublished(ctx, r.batchSize)
		if err != nil {
			return sent, fmt.Errorf("failed to fetch outbox: %w", err)
		}
		if len(entries) == 0 {
			return sent, nil
		}

		messages := make([]pkgkafka.Message, len(entries))
		ids := make([]uuid.UUID, len(entries))
		for i, e := range entries {
			messages[i] = envelopeMessage(e.AggregateID.String(), e.EventType, e.AggregateType, e.Envelope)
			ids[i] = e.ID
		}

		if err := r.producer.Publish(ctx, r.topic, messages...); err != nil {
			return sent, fmt.Errorf("failed to relay outbox to topic %s: %w", r.topic, err)
		}
		if err := r.outbox.MarkPublished(ctx, ids); err != nil {
			return sent, fmt.Errorf("failed to mark outbox published: %w", err)
		}

		sent += len(entries)
		r.logger.DebugContext(ctx, "outbox batch relayed",
			slog.Int("count", len(entries)),
			slog.String("topic", r.topic),
		)

		if len(entries) < r.batchSize {
			return sent, nil
		}
	}
}

// Publish implements port.EventPublisher for repositories that stage their
// events in the outbox: the arguments are already persisted, so Publish
// relays whatever is pending.
func (r *OutboxRelay) Publish(ctx context.Context, _ ...events.DomainEvent) error {
	n, err := r.Flush(ctx)
	if err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "outbox flushed", slog.Int("events", n))
	return nil
}
