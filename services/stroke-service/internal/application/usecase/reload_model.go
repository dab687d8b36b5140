package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/application/dto"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/port"
)

// ReloadModel is the use case for swapping in the latest artifact.
type ReloadModel struct {
	models  port.PipelineProvider
	metrics port.MetricsRecorder
}

// NewReloadModel creates a new ReloadModel use case. metrics may be nil.
func NewReloadModel(models port.PipelineProvider, metrics port.MetricsRecorder) *ReloadModel {
	return &ReloadModel{models: models, metrics: metrics}
}

// Execute reloads the serving pipeline. On failure the previous pipeline
// keeps serving.
func (uc *ReloadModel) Execute(ctx context.Context) (dto.ReloadResponse, error) {
	ctx, span := tracer.Start(ctx, "ReloadModel")
	checksum, err := uc.models.Reload(ctx)
	endSpan(span, err)
	if uc.metrics != nil {
		uc.metrics.RecordReload(ctx, err == nil)
	}
	if err != nil {
		return dto.ReloadResponse{}, fmt.Errorf("failed to reload model: %w", err)
	}
	return dto.ReloadResponse{Checksum: checksum, ReloadedAt: time.Now().UTC()}, nil
}
