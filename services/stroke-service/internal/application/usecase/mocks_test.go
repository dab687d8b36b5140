package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/events"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/testutil"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/model"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/service"
)

// --- Mock implementations ---

type mockDatasetSource struct {
	dataset  *model.Dataset
	loadFunc func(ctx context.Context, schema model.Schema) (*model.Dataset, error)
}

func (m *mockDatasetSource) Load(ctx context.Context, schema model.Schema) (*model.Dataset, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, schema)
	}
	return m.dataset, nil
}

type mockArtifactStore struct {
	written   *model.ModelArtifact
	writeFunc func(ctx context.Context, artifact *model.ModelArtifact) error
}

func (m *mockArtifactStore) Write(ctx context.Context, artifact *model.ModelArtifact) error {
	if m.writeFunc != nil {
		return m.writeFunc(ctx, artifact)
	}
	m.written = artifact
	return nil
}

func (m *mockArtifactStore) Read(_ context.Context) ([]byte, error) {
	if m.written == nil {
		return nil, fmt.Errorf("nothing written")
	}
	return m.written.Pipeline(), nil
}

func (m *mockArtifactStore) Location() string { return "memory://model.gob" }

type mockArtifactRepository struct {
	saved    *model.ModelArtifact
	saveFunc func(ctx context.Context, artifact *model.ModelArtifact) error
}

func (m *mockArtifactRepository) Save(ctx context.Context, artifact *model.ModelArtifact) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, artifact)
	}
	m.saved = artifact
	return nil
}

func (m *mockArtifactRepository) FindByID(_ context.Context, _ uuid.UUID) (*model.ModelArtifact, error) {
	return m.saved, nil
}

func (m *mockArtifactRepository) FindLatest(_ context.Context) (*model.ModelArtifact, error) {
	return m.saved, nil
}

type mockEventPublisher struct {
	publishedEvents []events.DomainEvent
	publishFunc     func(ctx context.Context, evts ...events.DomainEvent) error
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

type mockPipelineProvider struct {
	pipeline   *service.TrainingPipeline
	checksum   string
	reloadFunc func(ctx context.Context) (string, error)
}

func (m *mockPipelineProvider) Current() (*service.TrainingPipeline, string, error) {
	if m.pipeline == nil {
		return nil, "", service.ErrNotFitted
	}
	return m.pipeline, m.checksum, nil
}

func (m *mockPipelineProvider) Checksum() string { return m.checksum }

func (m *mockPipelineProvider) Reload(ctx context.Context) (string, error) {
	if m.reloadFunc != nil {
		return m.reloadFunc(ctx)
	}
	return m.checksum, nil
}

type mockMetrics struct {
	mu          sync.Mutex
	predictions []int
	errors      []string
	reloads     []bool
	foldAUCs    []float64
}

func (m *mockMetrics) RecordPrediction(_ context.Context, class int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions = append(m.predictions, class)
}

func (m *mockMetrics) RecordPredictionError(_ context.Context, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, reason)
}

func (m *mockMetrics) RecordReload(_ context.Context, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reloads = append(m.reloads, success)
}

func (m *mockMetrics) RecordFoldAUC(_ context.Context, auc float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.foldAUCs = append(m.foldAUCs, auc)
}

// --- Helpers ---

func strokeDataset(t *testing.T, n, positives int) *model.Dataset {
	t.Helper()

	rows, labels := testutil.StrokeRows(n, positives, 7)
	records := make([]model.Record, len(rows))
	for i, r := range rows {
		records[i] = model.Record(r)
	}
	ds, err := model.NewDataset(records, labels)
	require.NoError(t, err)
	return ds
}

func fittedPipeline(t *testing.T) (*service.TrainingPipeline, *model.Dataset) {
	t.Helper()

	ds := strokeDataset(t, 400, 40)
	p, err := service.NewTrainingPipeline(service.DefaultPipelineConfig())
	require.NoError(t, err)
	require.NoError(t, p.Fit(ds))
	return p, ds
}
