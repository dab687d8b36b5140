package event_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/events"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/event"
)

func TestNewModelTrained(t *testing.T) {
	payload := event.ModelTrainedPayload{
		ArtifactID:   uuid.New(),
		Checksum:     "abc123",
		MeanAUC:      0.84,
		StdAUC:       0.03,
		Folds:        30,
		TrainingRows: 5110,
		PositiveRows: 249,
		TrainedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	evt := event.NewModelTrained(payload)

	var _ events.DomainEvent = evt
	assert.Equal(t, event.EventTypeModelTrained, evt.EventType())
	assert.Equal(t, payload.ArtifactID, evt.AggregateID())
	assert.Equal(t, event.AggregateTypeModelArtifact, evt.AggregateType())
	assert.NotEqual(t, uuid.Nil, evt.EventID())

	decoded, err := event.DecodeModelTrained(evt.Payload())
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestDecodeModelTrained_Invalid(t *testing.T) {
	_, err := event.DecodeModelTrained([]byte("{"))
	assert.Error(t, err)
}
