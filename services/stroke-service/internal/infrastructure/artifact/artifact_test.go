package artifact_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/testutil"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/model"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/service"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/infrastructure/artifact"
)

var discard = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

func trainedArtifact(t *testing.T, seed uint64) *model.ModelArtifact {
	t.Helper()

	rows, labels := testutil.StrokeRows(300, 30, seed)
	records := make([]model.Record, len(rows))
	for i, r := range rows {
		records[i] = model.Record(r)
	}
	ds, err := model.NewDataset(records, labels)
	require.NoError(t, err)

	p, err := service.NewTrainingPipeline(service.DefaultPipelineConfig())
	require.NoError(t, err)
	require.NoError(t, p.Fit(ds))

	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf))
	a, err := model.NewModelArtifact(buf.Bytes(), []float64{0.8}, 0.8, 0, ds.Len(), 30)
	require.NoError(t, err)
	return a
}

func TestFileStore_WriteRead(t *testing.T) {
	dir := t.TempDir()
	store := artifact.NewFileStore(filepath.Join(dir, "models", "model.gob"))
	a := trainedArtifact(t, 1)

	require.NoError(t, store.Write(context.Background(), a))

	data, err := store.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a.Pipeline(), data)

	entries, err := os.ReadDir(filepath.Join(dir, "models"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files must not be left behind")
	assert.Equal(t, "model.gob", entries[0].Name())
}

func TestFileStore_ReadMissing(t *testing.T) {
	store := artifact.NewFileStore(filepath.Join(t.TempDir(), "model.gob"))
	_, err := store.Read(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecoder_CachesByChecksum(t *testing.T) {
	d, err := artifact.NewDecoder(2)
	require.NoError(t, err)
	a := trainedArtifact(t, 1)

	first, sum, err := d.Decode(a.Pipeline())
	require.NoError(t, err)
	assert.Equal(t, a.Checksum(), sum)

	second, _, err := d.Decode(append([]byte(nil), a.Pipeline()...))
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, d.Len())

	_, _, err = d.Decode([]byte("garbage"))
	assert.Error(t, err)
	assert.Equal(t, 1, d.Len())
}

type memorySource struct {
	data atomic.Pointer[[]byte]
	err  error
}

func (s *memorySource) Read(context.Context) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	if p := s.data.Load(); p != nil {
		return *p, nil
	}
	return nil, fmt.Errorf("empty")
}

func (s *memorySource) Location() string { return "memory" }

func (s *memorySource) set(b []byte) { s.data.Store(&b) }

func TestModelHolder(t *testing.T) {
	d, err := artifact.NewDecoder(0)
	require.NoError(t, err)
	src := &memorySource{}
	h := artifact.NewModelHolder(src, d, discard)
	var loads []string
	h.OnLoad(func(checksum string) { loads = append(loads, checksum) })

	t.Run("empty holder is not fitted", func(t *testing.T) {
		_, sum, err := h.Current()
		assert.ErrorIs(t, err, service.ErrNotFitted)
		assert.Empty(t, sum)
		assert.False(t, h.Ready())
		assert.Empty(t, h.Checksum())
	})

	a := trainedArtifact(t, 1)
	src.set(a.Pipeline())

	t.Run("reload installs the pipeline", func(t *testing.T) {
		sum, err := h.Reload(context.Background())
		require.NoError(t, err)
		assert.Equal(t, a.Checksum(), sum)
		assert.Equal(t, a.Checksum(), h.Checksum())
		assert.True(t, h.Ready())
		assert.False(t, h.LoadedAt().IsZero())

		p, current, err := h.Current()
		require.NoError(t, err)
		assert.True(t, p.IsFitted())
		assert.Equal(t, a.Checksum(), current)
	})

	t.Run("failed reload keeps serving the previous model", func(t *testing.T) {
		src.set([]byte("corrupt"))
		_, err := h.Reload(context.Background())
		require.Error(t, err)
		assert.Equal(t, a.Checksum(), h.Checksum())
		assert.Equal(t, []string{a.Checksum()}, loads)

		_, current, err := h.Current()
		assert.NoError(t, err)
		assert.Equal(t, a.Checksum(), current)
	})

	t.Run("reload swaps to a new model", func(t *testing.T) {
		b := trainedArtifact(t, 2)
		src.set(b.Pipeline())
		sum, err := h.Reload(context.Background())
		require.NoError(t, err)
		assert.Equal(t, b.Checksum(), sum)
		assert.NotEqual(t, a.Checksum(), sum)
		assert.Equal(t, []string{a.Checksum(), b.Checksum()}, loads)

		_, current, err := h.Current()
		require.NoError(t, err)
		assert.Equal(t, b.Checksum(), current)
	})
}

type stubRepository struct {
	latest *model.ModelArtifact
	err    error
}

func (r *stubRepository) Save(context.Context, *model.ModelArtifact) error { return nil }

func (r *stubRepository) FindByID(context.Context, uuid.UUID) (*model.ModelArtifact, error) {
	return r.latest, r.err
}

func (r *stubRepository) FindLatest(context.Context) (*model.ModelArtifact, error) {
	return r.latest, r.err
}

func TestRegistrySource(t *testing.T) {
	a := trainedArtifact(t, 1)

	data, err := artifact.NewRegistrySource(&stubRepository{latest: a}).Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a.Pipeline(), data)

	tampered := model.ReconstructModelArtifact(a.ID(), "0000", a.Pipeline(), a.FoldScores(), 0.8, 0, 300, 30, a.CreatedAt())
	_, err = artifact.NewRegistrySource(&stubRepository{latest: tampered}).Read(context.Background())
	testutil.AssertErrorContains(t, err, "checksum mismatch")

	_, err = artifact.NewRegistrySource(&stubRepository{err: fmt.Errorf("db down")}).Read(context.Background())
	testutil.AssertErrorContains(t, err, "find latest artifact")
}

func TestWatcher_ReloadsOnRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.gob")
	store := artifact.NewFileStore(path)
	require.NoError(t, store.Write(context.Background(), trainedArtifact(t, 1)))

	var reloads atomic.Int32
	w := artifact.NewWatcher(path, 50*time.Millisecond, func(context.Context) error {
		reloads.Add(1)
		return nil
	}, discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	// Unrelated files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), reloads.Load())

	require.NoError(t, store.Write(context.Background(), trainedArtifact(t, 2)))
	require.Eventually(t, func() bool { return reloads.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := artifact.NewWatcher(filepath.Join(t.TempDir(), "absent", "model.gob"), 0, func(context.Context) error { return nil }, discard)
	assert.Error(t, w.Run(context.Background()))
}
