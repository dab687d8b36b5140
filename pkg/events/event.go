package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the interface all domain events must implement.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	AggregateType() string
	OccurredAt() time.Time
	Payload() []byte
}

// BaseEvent provides a default implementation of DomainEvent.
type BaseEvent struct {
	occurredAt    time.Time
	eventType     string
	aggregateType string
	payload       []byte
	id            uuid.UUID
	aggregateID   uuid.UUID
}

// NewBaseEvent creates a BaseEvent with a fresh ID stamped with the current time.
func NewBaseEvent(eventType string, aggregateID uuid.UUID, aggregateType string, payload []byte) BaseEvent {
	return BaseEvent{
		id:            uuid.New(),
		eventType:     eventType,
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		occurredAt:    time.Now().UTC(),
		payload:       payload,
	}
}

func (e BaseEvent) EventID() uuid.UUID     { return e.id }
func (e BaseEvent) EventType() string      { return e.eventType }
func (e BaseEvent) AggregateID() uuid.UUID { return e.aggregateID }
func (e BaseEvent) AggregateType() string  { return e.aggregateType }
func (e BaseEvent) OccurredAt() time.Time  { return e.occurredAt }
func (e BaseEvent) Payload() []byte        { return e.payload }

// Envelope is the broker representation of a DomainEvent.
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// MarshalEnvelope serializes e for publishing. The payload must be JSON.
func MarshalEnvelope(e DomainEvent) ([]byte, error) {
	payload := e.Payload()
	if len(payload) > 0 && !json.Valid(payload) {
		return nil, fmt.Errorf("event %s: payload is not valid JSON", e.EventType())
	}
	return json.Marshal(Envelope{
		ID:            e.EventID(),
		Type:          e.EventType(),
		AggregateID:   e.AggregateID(),
		AggregateType: e.AggregateType(),
		OccurredAt:    e.OccurredAt(),
		Payload:       payload,
	})
}

// UnmarshalEnvelope parses a message produced by MarshalEnvelope.
func UnmarshalEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode event envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("decode event envelope: missing type")
	}
	return env, nil
}
