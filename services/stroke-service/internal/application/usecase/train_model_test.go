package usecase_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/events"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/application/dto"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/application/usecase"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/event"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/model"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/service"
)

func trainRequest() dto.TrainModelRequest {
	return dto.TrainModelRequest{
		Pipeline:   service.DefaultPipelineConfig(),
		Evaluation: service.CrossValidationConfig{Folds: 3, Repeats: 2, Seed: 42, Workers: 2},
	}
}

func TestTrainModel_Execute(t *testing.T) {
	t.Run("successfully trains, persists and publishes", func(t *testing.T) {
		source := &mockDatasetSource{dataset: strokeDataset(t, 600, 60)}
		store := &mockArtifactStore{}
		registry := &mockArtifactRepository{}
		publisher := &mockEventPublisher{}
		metrics := &mockMetrics{}

		uc := usecase.NewTrainModel(source, store, registry, publisher, metrics, nil)
		resp, err := uc.Execute(context.Background(), trainRequest())

		require.NoError(t, err)
		assert.Len(t, resp.FoldScores, 6)
		assert.Len(t, metrics.foldAUCs, 6)
		assert.Greater(t, resp.MeanAUC, 0.5)
		assert.Equal(t, 600, resp.TrainingRows)
		assert.Equal(t, 60, resp.PositiveRows)
		assert.True(t, resp.Registered)
		assert.Equal(t, "memory://model.gob", resp.Location)

		require.NotNil(t, store.written)
		assert.Equal(t, resp.ArtifactID, store.written.ID())
		assert.Equal(t, resp.Checksum, model.PipelineChecksum(store.written.Pipeline()))
		assert.Same(t, store.written, registry.saved)

		require.Len(t, publisher.publishedEvents, 1)
		assert.Equal(t, event.EventTypeModelTrained, publisher.publishedEvents[0].EventType())
		assert.Equal(t, resp.ArtifactID, publisher.publishedEvents[0].AggregateID())
	})

	t.Run("stored pipeline decodes and predicts", func(t *testing.T) {
		ds := strokeDataset(t, 600, 60)
		store := &mockArtifactStore{}
		uc := usecase.NewTrainModel(&mockDatasetSource{dataset: ds}, store, nil, nil, nil, nil)

		resp, err := uc.Execute(context.Background(), trainRequest())
		require.NoError(t, err)
		assert.False(t, resp.Registered)

		blob, err := store.Read(context.Background())
		require.NoError(t, err)
		p, err := service.DecodePipeline(bytes.NewReader(blob))
		require.NoError(t, err)
		_, err = p.PredictOne(ds.Records()[0])
		assert.NoError(t, err)
	})

	t.Run("writes nothing when evaluation fails", func(t *testing.T) {
		source := &mockDatasetSource{dataset: strokeDataset(t, 300, 1)}
		store := &mockArtifactStore{}
		registry := &mockArtifactRepository{}
		publisher := &mockEventPublisher{}

		uc := usecase.NewTrainModel(source, store, registry, publisher, nil, nil)
		_, err := uc.Execute(context.Background(), trainRequest())

		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrInsufficientMinorityClass)
		assert.Contains(t, err.Error(), "evaluation failed")
		assert.Nil(t, store.written)
		assert.Nil(t, registry.saved)
		assert.Empty(t, publisher.publishedEvents)
	})

	t.Run("fails when dataset cannot be loaded", func(t *testing.T) {
		source := &mockDatasetSource{
			loadFunc: func(context.Context, model.Schema) (*model.Dataset, error) {
				return nil, fmt.Errorf("row 4: %w", service.ErrLabelMissing)
			},
		}
		store := &mockArtifactStore{}

		uc := usecase.NewTrainModel(source, store, nil, nil, nil, nil)
		_, err := uc.Execute(context.Background(), trainRequest())

		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrLabelMissing)
		assert.Contains(t, err.Error(), "failed to load dataset")
		assert.Nil(t, store.written)
	})

	t.Run("rejects invalid configuration before loading", func(t *testing.T) {
		source := &mockDatasetSource{
			loadFunc: func(context.Context, model.Schema) (*model.Dataset, error) {
				t.Fatal("dataset must not be loaded")
				return nil, nil
			},
		}
		req := trainRequest()
		req.Evaluation.Folds = 1

		uc := usecase.NewTrainModel(source, &mockArtifactStore{}, nil, nil, nil, nil)
		_, err := uc.Execute(context.Background(), req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid evaluation config")
	})

	t.Run("fails when artifact write fails", func(t *testing.T) {
		store := &mockArtifactStore{
			writeFunc: func(context.Context, *model.ModelArtifact) error {
				return fmt.Errorf("disk full")
			},
		}
		registry := &mockArtifactRepository{}
		publisher := &mockEventPublisher{}

		uc := usecase.NewTrainModel(&mockDatasetSource{dataset: strokeDataset(t, 600, 60)}, store, registry, publisher, nil, nil)
		_, err := uc.Execute(context.Background(), trainRequest())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to write artifact")
		assert.NotNil(t, registry.saved)
		assert.Empty(t, publisher.publishedEvents)
	})

	t.Run("fails when registry save fails", func(t *testing.T) {
		registry := &mockArtifactRepository{
			saveFunc: func(context.Context, *model.ModelArtifact) error {
				return fmt.Errorf("database unavailable")
			},
		}
		store := &mockArtifactStore{}
		publisher := &mockEventPublisher{}

		uc := usecase.NewTrainModel(&mockDatasetSource{dataset: strokeDataset(t, 600, 60)}, store, registry, publisher, nil, nil)
		_, err := uc.Execute(context.Background(), trainRequest())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to register artifact")
		assert.Nil(t, store.written, "no model file may appear for an unregistered artifact")
		assert.Empty(t, publisher.publishedEvents)
	})

	t.Run("fails when event publishing fails", func(t *testing.T) {
		publisher := &mockEventPublisher{
			publishFunc: func(context.Context, ...events.DomainEvent) error {
				return fmt.Errorf("kafka unavailable")
			},
		}

		uc := usecase.NewTrainModel(&mockDatasetSource{dataset: strokeDataset(t, 600, 60)}, &mockArtifactStore{}, nil, publisher, nil, nil)
		_, err := uc.Execute(context.Background(), trainRequest())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to publish events")
	})
}
