package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/application/dto"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/model"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/port"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/service"
)

// TrainModel is the use case for evaluating, fitting and persisting a
// stroke-risk pipeline.
type TrainModel struct {
	source    port.DatasetSource
	store     port.ArtifactStore
	registry  port.ArtifactRepository
	publisher port.EventPublisher
	metrics   port.MetricsRecorder
	logger    *slog.Logger
}

// NewTrainModel creates a new TrainModel use case. registry, publisher and
// metrics may be nil.
func NewTrainModel(
	source port.DatasetSource,
	store port.ArtifactStore,
	registry port.ArtifactRepository,
	publisher port.EventPublisher,
	metrics port.MetricsRecorder,
	logger *slog.Logger,
) *TrainModel {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrainModel{
		source:    source,
		store:     store,
		registry:  registry,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute cross-validates the pipeline, fits it on the full dataset and
// persists the result. Nothing is written unless every stage succeeds.
func (uc *TrainModel) Execute(ctx context.Context, req dto.TrainModelRequest) (resp dto.TrainModelResponse, err error) {
	ctx, span := tracer.Start(ctx, "TrainModel")
	defer func() { endSpan(span, err) }()

	// 1. Validate configuration before touching any data.
	template, err := service.NewTrainingPipeline(req.Pipeline)
	if err != nil {
		return dto.TrainModelResponse{}, fmt.Errorf("invalid pipeline config: %w", err)
	}
	cv, err := service.NewCrossValidator(req.Evaluation, uc.observeFold(ctx))
	if err != nil {
		return dto.TrainModelResponse{}, fmt.Errorf("invalid evaluation config: %w", err)
	}

	// 2. Load the labelled dataset.
	ds, err := uc.source.Load(ctx, template.Config().Schema)
	if err != nil {
		return dto.TrainModelResponse{}, fmt.Errorf("failed to load dataset: %w", err)
	}
	_, positives := ds.ClassCounts()
	uc.logger.Info("dataset loaded", "rows", ds.Len(), "positives", positives)
	span.AddEvent("dataset loaded", trace.WithAttributes(
		attribute.Int("rows", ds.Len()),
		attribute.Int("positives", positives),
	))

	// 3. Repeated stratified cross-validation.
	report, err := cv.Evaluate(ctx, template, ds)
	if err != nil {
		return dto.TrainModelResponse{}, fmt.Errorf("evaluation failed: %w", err)
	}
	uc.logger.Info("cross-validation complete",
		"folds", len(report.Scores),
		"mean_auc", report.Mean,
		"std_auc", report.Std,
	)
	span.AddEvent("cross-validation complete", trace.WithAttributes(
		attribute.Int("folds", len(report.Scores)),
		attribute.Float64("mean_auc", report.Mean),
		attribute.Float64("std_auc", report.Std),
	))

	// 4. Fit the final pipeline on all rows.
	final := template.Clone()
	if err := final.Fit(ds); err != nil {
		return dto.TrainModelResponse{}, fmt.Errorf("failed to fit final pipeline: %w", err)
	}
	var buf bytes.Buffer
	if err := final.Encode(&buf); err != nil {
		return dto.TrainModelResponse{}, fmt.Errorf("failed to encode pipeline: %w", err)
	}

	artifact, err := model.NewModelArtifact(buf.Bytes(), report.Scores, report.Mean, report.Std, ds.Len(), positives)
	if err != nil {
		return dto.TrainModelResponse{}, fmt.Errorf("failed to create artifact: %w", err)
	}

	span.SetAttributes(attribute.String("stroke.artifact_id", artifact.ID().String()))

	// 5. Persist. The file is written last: a watching daemon loads it as
	// soon as it appears.
	registered := false
	if uc.registry != nil {
		if err := uc.registry.Save(ctx, artifact); err != nil {
			return dto.TrainModelResponse{}, fmt.Errorf("failed to register artifact: %w", err)
		}
		registered = true
	}
	if err := uc.store.Write(ctx, artifact); err != nil {
		return dto.TrainModelResponse{}, fmt.Errorf("failed to write artifact: %w", err)
	}

	// 6. Publish domain events.
	events := artifact.ClearEvents()
	if uc.publisher != nil && len(events) > 0 {
		if err := uc.publisher.Publish(ctx, events...); err != nil {
			return dto.TrainModelResponse{}, fmt.Errorf("failed to publish events: %w", err)
		}
	}

	uc.logger.Info("model artifact saved",
		"artifact_id", artifact.ID(),
		"checksum", artifact.Checksum(),
		"location", uc.store.Location(),
		"registered", registered,
	)

	return dto.FromArtifact(artifact, uc.store.Location(), registered), nil
}

func (uc *TrainModel) observeFold(ctx context.Context) service.FoldObserver {
	return func(f service.Fold, auc float64) {
		uc.logger.Debug("fold scored", "repeat", f.Repeat, "fold", f.Index, "auc", auc)
		if uc.metrics != nil {
			uc.metrics.RecordFoldAUC(ctx, auc)
		}
	}
}
