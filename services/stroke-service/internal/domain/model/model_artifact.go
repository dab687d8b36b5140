package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/events"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/event"
)

// ModelArtifact is the aggregate root for a trained, evaluated pipeline.
// The encoded pipeline is immutable; a retrain produces a new artifact.
type ModelArtifact struct {
	events.EventCollector

	createdAt    time.Time
	checksum     string
	pipeline     []byte
	foldScores   []float64
	meanAUC      float64
	stdAUC       float64
	trainingRows int
	positiveRows int
	id           uuid.UUID
}

// NewModelArtifact packages an encoded pipeline with its evaluation and
// records a ModelTrained event.
func NewModelArtifact(
	pipeline []byte,
	foldScores []float64,
	meanAUC, stdAUC float64,
	trainingRows, positiveRows int,
) (*ModelArtifact, error) {
	if len(pipeline) == 0 {
		return nil, fmt.Errorf("encoded pipeline is required")
	}
	if len(foldScores) == 0 {
		return nil, fmt.Errorf("at least one fold score is required")
	}
	if trainingRows <= 0 {
		return nil, fmt.Errorf("training rows must be positive, got %d", trainingRows)
	}
	if positiveRows < 0 || positiveRows > trainingRows {
		return nil, fmt.Errorf("positive rows %d out of range [0, %d]", positiveRows, trainingRows)
	}
	if meanAUC < 0 || meanAUC > 1 {
		return nil, fmt.Errorf("mean AUC must be between 0 and 1, got %f", meanAUC)
	}

	a := &ModelArtifact{
		id:           uuid.New(),
		checksum:     PipelineChecksum(pipeline),
		pipeline:     append([]byte(nil), pipeline...),
		foldScores:   append([]float64(nil), foldScores...),
		meanAUC:      meanAUC,
		stdAUC:       stdAUC,
		trainingRows: trainingRows,
		positiveRows: positiveRows,
		createdAt:    time.Now().UTC(),
	}

	a.Record(event.NewModelTrained(event.ModelTrainedPayload{
		ArtifactID:   a.id,
		Checksum:     a.checksum,
		MeanAUC:      a.meanAUC,
		StdAUC:       a.stdAUC,
		Folds:        len(a.foldScores),
		TrainingRows: a.trainingRows,
		PositiveRows: a.positiveRows,
		TrainedAt:    a.createdAt,
	}))

	return a, nil
}

// ReconstructModelArtifact rebuilds an artifact from persisted data (no
// validation, no events).
func ReconstructModelArtifact(
	id uuid.UUID,
	checksum string,
	pipeline []byte,
	foldScores []float64,
	meanAUC, stdAUC float64,
	trainingRows, positiveRows int,
	createdAt time.Time,
) *ModelArtifact {
	return &ModelArtifact{
		id:           id,
		checksum:     checksum,
		pipeline:     pipeline,
		foldScores:   foldScores,
		meanAUC:      meanAUC,
		stdAUC:       stdAUC,
		trainingRows: trainingRows,
		positiveRows: positiveRows,
		createdAt:    createdAt,
	}
}

// Verify checks that the stored checksum matches the encoded pipeline.
func (a *ModelArtifact) Verify() error {
	if got := PipelineChecksum(a.pipeline); got != a.checksum {
		return fmt.Errorf("artifact %s: checksum mismatch: stored %s, computed %s", a.id, a.checksum, got)
	}
	return nil
}

// PipelineChecksum returns the hex SHA-256 digest of an encoded pipeline.
func PipelineChecksum(pipeline []byte) string {
	sum := sha256.Sum256(pipeline)
	return hex.EncodeToString(sum[:])
}

// --- Accessors ---

func (a *ModelArtifact) ID() uuid.UUID         { return a.id }
func (a *ModelArtifact) Checksum() string      { return a.checksum }
func (a *ModelArtifact) Pipeline() []byte      { return a.pipeline }
func (a *ModelArtifact) FoldScores() []float64 { return append([]float64(nil), a.foldScores...) }
func (a *ModelArtifact) MeanAUC() float64      { return a.meanAUC }
func (a *ModelArtifact) StdAUC() float64       { return a.stdAUC }
func (a *ModelArtifact) TrainingRows() int     { return a.trainingRows }
func (a *ModelArtifact) PositiveRows() int     { return a.positiveRows }
func (a *ModelArtifact) CreatedAt() time.Time  { return a.createdAt }

