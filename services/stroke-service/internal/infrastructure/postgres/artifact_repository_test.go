package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/event"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/model"
)

func TestNewArtifactRepository(t *testing.T) {
	t.Run("creates repository with nil pool", func(t *testing.T) {
		repo := NewArtifactRepository(nil)
		assert.NotNil(t, repo)
		assert.Nil(t, repo.pool)
	})
}

func TestNewOutboxRepository(t *testing.T) {
	repo := NewOutboxRepository(nil)
	assert.NotNil(t, repo)

	// Empty input never touches the pool.
	assert.NoError(t, repo.Store(context.Background(), nil))
	assert.NoError(t, repo.MarkPublished(context.Background(), nil))
}

func TestModelArtifactStagesTrainedEvent(t *testing.T) {
	a, err := model.NewModelArtifact([]byte("p"), []float64{0.7}, 0.7, 0, 10, 2)
	require.NoError(t, err)

	entries, err := a.OutboxEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, a.ID(), entries[0].AggregateID)
	assert.Equal(t, event.AggregateTypeModelArtifact, entries[0].AggregateType)
	assert.Equal(t, event.EventTypeModelTrained, entries[0].EventType)
	assert.NotEmpty(t, entries[0].Envelope)
}
