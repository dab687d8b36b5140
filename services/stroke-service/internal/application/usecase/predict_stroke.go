package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/application/dto"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/port"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/service"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/valueobject"
)

// PredictStroke is the use case for scoring a single patient record.
type PredictStroke struct {
	models  port.PipelineProvider
	metrics port.MetricsRecorder
}

// NewPredictStroke creates a new PredictStroke use case. metrics may be nil.
func NewPredictStroke(models port.PipelineProvider, metrics port.MetricsRecorder) *PredictStroke {
	return &PredictStroke{models: models, metrics: metrics}
}

// Execute scores req with the pipeline currently being served. A failing
// record only fails this call.
func (uc *PredictStroke) Execute(ctx context.Context, req dto.PredictionRequest) (dto.PredictionResponse, error) {
	ctx, span := tracer.Start(ctx, "PredictStroke")
	resp, err := uc.predict(req)
	if err == nil {
		span.SetAttributes(
			attribute.Int("stroke.prediction", resp.Prediction),
			attribute.String("stroke.model_checksum", resp.ModelChecksum),
		)
	}
	endSpan(span, err)

	if uc.metrics != nil {
		if err != nil {
			uc.metrics.RecordPredictionError(ctx, errorReason(err))
		} else {
			uc.metrics.RecordPrediction(ctx, resp.Prediction)
		}
	}
	return resp, err
}

func (uc *PredictStroke) predict(req dto.PredictionRequest) (dto.PredictionResponse, error) {
	pipeline, checksum, err := uc.models.Current()
	if err != nil {
		return dto.PredictionResponse{}, fmt.Errorf("no model loaded: %w", err)
	}

	record, err := req.Record()
	if err != nil {
		return dto.PredictionResponse{}, err
	}
	// The identifier is carried through from CSV exports but is not a feature.
	delete(record, pipeline.Config().Schema.Identifier())

	prediction, err := pipeline.PredictOne(record)
	if err != nil {
		return dto.PredictionResponse{}, fmt.Errorf("failed to score record: %w", err)
	}

	level, err := valueobject.RiskLevelFromProbability(prediction.Probability)
	if err != nil {
		return dto.PredictionResponse{}, fmt.Errorf("failed to band probability: %w", err)
	}

	return dto.PredictionResponse{
		Prediction:    prediction.Class,
		Probability:   prediction.Probability,
		RiskLevel:     level.String(),
		ModelChecksum: checksum,
	}, nil
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, service.ErrSchemaMismatch):
		return "schema_mismatch"
	case errors.Is(err, service.ErrNotFitted):
		return "not_fitted"
	case errors.Is(err, service.ErrNumericInstability):
		return "numeric_instability"
	default:
		return "internal"
	}
}
