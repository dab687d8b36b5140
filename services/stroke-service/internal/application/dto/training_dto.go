package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/model"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/service"
)

// TrainModelRequest is the input DTO for the TrainModel use case.
type TrainModelRequest struct {
	Pipeline   service.PipelineConfig
	Evaluation service.CrossValidationConfig
}

// TrainModelResponse summarises a trained and persisted artifact.
type TrainModelResponse struct {
	CreatedAt    time.Time `json:"created_at"`
	FoldScores   []float64 `json:"fold_scores"`
	Checksum     string    `json:"checksum"`
	Location     string    `json:"location"`
	MeanAUC      float64   `json:"mean_auc"`
	StdAUC       float64   `json:"std_auc"`
	TrainingRows int       `json:"training_rows"`
	PositiveRows int       `json:"positive_rows"`
	ArtifactID   uuid.UUID `json:"artifact_id"`
	Registered   bool      `json:"registered"`
}

// FromArtifact maps a domain artifact to the response DTO.
func FromArtifact(a *model.ModelArtifact, location string, registered bool) TrainModelResponse {
	return TrainModelResponse{
		ArtifactID:   a.ID(),
		Checksum:     a.Checksum(),
		Location:     location,
		FoldScores:   a.FoldScores(),
		MeanAUC:      a.MeanAUC(),
		StdAUC:       a.StdAUC(),
		TrainingRows: a.TrainingRows(),
		PositiveRows: a.PositiveRows(),
		CreatedAt:    a.CreatedAt(),
		Registered:   registered,
	}
}
