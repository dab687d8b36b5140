package metrics

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName scopes the stroke service instruments.
const MeterName = "github.com/VeyronShark/Stroke-Predictor-using-ML/stroke-service"

// StrokeMetrics implements port.MetricsRecorder with OpenTelemetry instruments.
type StrokeMetrics struct {
	predictions      metric.Int64Counter
	predictionErrors metric.Int64Counter
	reloads          metric.Int64Counter
	foldAUC          metric.Float64Histogram
}

// New registers the stroke instruments on provider.
func New(provider metric.MeterProvider) (*StrokeMetrics, error) {
	meter := provider.Meter(MeterName)

	predictions, err := meter.Int64Counter("stroke_predictions_total",
		metric.WithDescription("Predictions served, by predicted class."))
	if err != nil {
		return nil, fmt.Errorf("metrics: predictions counter: %w", err)
	}
	predictionErrors, err := meter.Int64Counter("stroke_prediction_errors_total",
		metric.WithDescription("Prediction requests that failed, by reason."))
	if err != nil {
		return nil, fmt.Errorf("metrics: prediction errors counter: %w", err)
	}
	reloads, err := meter.Int64Counter("stroke_model_reloads_total",
		metric.WithDescription("Model reload attempts, by outcome."))
	if err != nil {
		return nil, fmt.Errorf("metrics: reloads counter: %w", err)
	}
	foldAUC, err := meter.Float64Histogram("stroke_training_fold_auc",
		metric.WithDescription("ROC AUC of each cross-validation fold."),
		metric.WithExplicitBucketBoundaries(0.5, 0.6, 0.7, 0.75, 0.8, 0.85, 0.9, 0.95, 1))
	if err != nil {
		return nil, fmt.Errorf("metrics: fold auc histogram: %w", err)
	}

	return &StrokeMetrics{
		predictions:      predictions,
		predictionErrors: predictionErrors,
		reloads:          reloads,
		foldAUC:          foldAUC,
	}, nil
}

func (m *StrokeMetrics) RecordPrediction(ctx context.Context, class int) {
	m.predictions.Add(ctx, 1, metric.WithAttributes(attribute.String("class", strconv.Itoa(class))))
}

func (m *StrokeMetrics) RecordPredictionError(ctx context.Context, reason string) {
	m.predictionErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *StrokeMetrics) RecordReload(ctx context.Context, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.reloads.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *StrokeMetrics) RecordFoldAUC(ctx context.Context, auc float64) {
	m.foldAUC.Record(ctx, auc)
}
