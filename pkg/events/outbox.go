package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OutboxEntry is a domain event staged in the outbox table, waiting to be
// relayed to the broker.
type OutboxEntry struct {
	CreatedAt     time.Time
	PublishedAt   *time.Time
	AggregateType string
	EventType     string
	// Envelope is the MarshalEnvelope encoding, sent to the broker as is.
	Envelope    []byte
	ID          uuid.UUID
	AggregateID uuid.UUID
}

// NewOutboxEntry stages e.
func NewOutboxEntry(e DomainEvent) (OutboxEntry, error) {
	body, err := MarshalEnvelope(e)
	if err != nil {
		return OutboxEntry{}, err
	}
	return OutboxEntry{
		ID:            e.EventID(),
		AggregateID:   e.AggregateID(),
		AggregateType: e.AggregateType(),
		EventType:     e.EventType(),
		Envelope:      body,
		CreatedAt:     e.OccurredAt(),
	}, nil
}

// OutboxRepository is the port for outbox persistence.
type OutboxRepository interface {
	Store(ctx context.Context, entries []OutboxEntry) error
	FetchUnpublished(ctx context.Context, batchSize int) ([]OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}
