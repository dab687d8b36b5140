package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEvent(t *testing.T) {
	aggregateID := uuid.New()

	before := time.Now().UTC()
	event := NewBaseEvent("stroke.model.trained", aggregateID, "ModelArtifact", []byte(`{"mean_auc":0.84}`))
	after := time.Now().UTC()

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, "stroke.model.trained", event.EventType())
	assert.Equal(t, aggregateID, event.AggregateID())
	assert.Equal(t, "ModelArtifact", event.AggregateType())
	assert.JSONEq(t, `{"mean_auc":0.84}`, string(event.Payload()))
	assert.False(t, event.OccurredAt().Before(before))
	assert.False(t, event.OccurredAt().After(after))
}

func TestNewBaseEvent_UniqueIDs(t *testing.T) {
	a := NewBaseEvent("e", uuid.Nil, "A", nil)
	b := NewBaseEvent("e", uuid.Nil, "A", nil)
	assert.NotEqual(t, a.EventID(), b.EventID())
}

func TestBaseEventImplementsDomainEvent(t *testing.T) {
	var _ DomainEvent = BaseEvent{}
}

func TestEventCollectorRecord(t *testing.T) {
	collector := &EventCollector{}
	aggregateID := uuid.New()

	collector.Record(NewBaseEvent("Event1", aggregateID, "Aggregate", nil))
	collector.Record(NewBaseEvent("Event2", aggregateID, "Aggregate", nil))

	events := collector.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "Event1", events[0].EventType())
	assert.Equal(t, "Event2", events[1].EventType())
}

func TestEventCollectorEventsDoesNotClear(t *testing.T) {
	collector := &EventCollector{}
	collector.Record(NewBaseEvent("Event1", uuid.New(), "Aggregate", nil))

	_ = collector.Events()

	assert.Len(t, collector.Events(), 1)
}

func TestEventCollectorClearEvents(t *testing.T) {
	collector := &EventCollector{}
	aggregateID := uuid.New()

	collector.Record(NewBaseEvent("Event1", aggregateID, "Aggregate", nil))
	collector.Record(NewBaseEvent("Event2", aggregateID, "Aggregate", nil))

	cleared := collector.ClearEvents()

	assert.Len(t, cleared, 2)
	assert.Empty(t, collector.Events())
}

func TestEventCollectorClearEventsOnEmpty(t *testing.T) {
	collector := &EventCollector{}

	assert.Nil(t, collector.ClearEvents())
}

func TestEnvelopeRoundTrip(t *testing.T) {
	event := NewBaseEvent("stroke.model.trained", uuid.New(), "ModelArtifact", []byte(`{"checksum":"abc"}`))

	data, err := MarshalEnvelope(event)
	require.NoError(t, err)

	env, err := UnmarshalEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, event.EventID(), env.ID)
	assert.Equal(t, event.EventType(), env.Type)
	assert.Equal(t, event.AggregateID(), env.AggregateID)
	assert.Equal(t, event.AggregateType(), env.AggregateType)
	assert.True(t, event.OccurredAt().Equal(env.OccurredAt))
	assert.JSONEq(t, `{"checksum":"abc"}`, string(env.Payload))
}

func TestMarshalEnvelope_InvalidPayload(t *testing.T) {
	_, err := MarshalEnvelope(NewBaseEvent("e", uuid.New(), "A", []byte("not json")))
	assert.Error(t, err)
}

func TestUnmarshalEnvelope_Invalid(t *testing.T) {
	_, err := UnmarshalEnvelope([]byte("{"))
	assert.Error(t, err)

	_, err = UnmarshalEnvelope([]byte(`{"id":"00000000-0000-0000-0000-000000000001"}`))
	assert.Error(t, err)
}
