package port

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/events"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/model"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/service"
)

// ErrArtifactNotFound is returned by artifact ports when nothing matches.
var ErrArtifactNotFound = errors.New("model artifact not found")

// ArtifactRepository defines the persistence port for the model registry.
type ArtifactRepository interface {
	// Save persists an artifact together with its fold scores.
	Save(ctx context.Context, artifact *model.ModelArtifact) error

	// FindByID retrieves an artifact by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*model.ModelArtifact, error)

	// FindLatest retrieves the most recently registered artifact.
	FindLatest(ctx context.Context) (*model.ModelArtifact, error)
}

// ArtifactStore writes and reads the encoded pipeline that the inference
// service loads.
type ArtifactStore interface {
	Write(ctx context.Context, artifact *model.ModelArtifact) error
	Read(ctx context.Context) ([]byte, error)
	Location() string
}

// DatasetSource yields a labelled training dataset.
type DatasetSource interface {
	Load(ctx context.Context, schema model.Schema) (*model.Dataset, error)
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	// Publish sends one or more domain events to the messaging infrastructure.
	Publish(ctx context.Context, events ...events.DomainEvent) error
}

// PipelineProvider hands out the pipeline currently serving predictions.
type PipelineProvider interface {
	// Current returns the serving pipeline together with its checksum, read
	// as one snapshot. It returns service.ErrNotFitted when no model is loaded.
	Current() (*service.TrainingPipeline, string, error)

	// Checksum identifies the serving artifact; empty before the first load.
	Checksum() string

	// Reload replaces the serving pipeline and returns its checksum.
	Reload(ctx context.Context) (string, error)
}

// MetricsRecorder receives training and inference outcomes.
type MetricsRecorder interface {
	RecordPrediction(ctx context.Context, class int)
	RecordPredictionError(ctx context.Context, reason string)
	RecordReload(ctx context.Context, success bool)
	RecordFoldAUC(ctx context.Context, auc float64)
}
