package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/service"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/infrastructure/config"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"MODEL_SOURCE", "MODEL_PATH", "WATCH_MODEL", "DATABASE_URL", "KAFKA_BROKER", "HTTP_PORT", "TLS_CERT_FILE", "TLS_KEY_FILE", "OTEL_EXPORTER_OTLP_ENDPOINT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.ModelSourceFile, cfg.ModelSource)
	assert.Equal(t, "model.gob", cfg.ModelPath)
	assert.Equal(t, ":9090", cfg.HTTPAddress())
	assert.Equal(t, ":8090", cfg.GRPCAddress())
	assert.Equal(t, 500*time.Millisecond, cfg.WatchDebounce)
	assert.False(t, cfg.WatchModel)
	assert.False(t, cfg.RegistryEnabled())
	assert.False(t, cfg.EventsEnabled())
	assert.False(t, cfg.TLSEnabled())
	assert.False(t, cfg.TracingEnabled())
	assert.NotEmpty(t, cfg.KafkaGroup)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MODEL_SOURCE", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://stroke:stroke@db:5432/stroke")
	t.Setenv("KAFKA_BROKER", "kafka:9092")
	t.Setenv("CLIENT_URL", "https://stroke.example.com")
	t.Setenv("WATCH_MODEL", "false")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel-collector:4317")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.ModelSourcePostgres, cfg.ModelSource)
	assert.True(t, cfg.TracingEnabled())
	assert.True(t, cfg.RegistryEnabled())
	assert.True(t, cfg.EventsEnabled())
	assert.Equal(t, "https://stroke.example.com", cfg.ClientURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad bool", map[string]string{"WATCH_MODEL": "sometimes"}},
		{"bad duration", map[string]string{"WATCH_DEBOUNCE": "soon"}},
		{"unknown source", map[string]string{"MODEL_SOURCE": "s3"}},
		{"postgres without url", map[string]string{"MODEL_SOURCE": "postgres", "DATABASE_URL": ""}},
		{"watch with postgres", map[string]string{"MODEL_SOURCE": "postgres", "DATABASE_URL": "postgres://x", "WATCH_MODEL": "true"}},
		{"empty model path", map[string]string{"MODEL_SOURCE": "file", "MODEL_PATH": ""}},
		{"cert without key", map[string]string{"TLS_CERT_FILE": "server.pem", "TLS_KEY_FILE": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadTraining_Defaults(t *testing.T) {
	cfg, err := config.LoadTraining("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultTraining(), cfg)

	cfg, err = config.LoadTraining(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Evaluation.Folds)
	assert.Equal(t, 3, cfg.Evaluation.Repeats)

	req, err := cfg.Request()
	require.NoError(t, err)
	assert.Equal(t, "stroke", req.Pipeline.Schema.Label())
	assert.Equal(t, service.SolverSVD, req.Pipeline.Solver)
	assert.Equal(t, uint64(42), req.Pipeline.Seed)
	assert.Equal(t, 5, req.Pipeline.Neighbors)
}

func TestLoadTraining_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "training.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
schema:
  numerical: [age, bmi]
  categorical: [gender]
pipeline:
  solver: inverse
  seed: 7
evaluation:
  folds: 5
  repeats: 1
`), 0o600))

	cfg, err := config.LoadTraining(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "bmi"}, cfg.Schema.Numerical)
	assert.Equal(t, "stroke", cfg.Schema.Label, "unset fields keep defaults")
	assert.Equal(t, 5, cfg.Pipeline.Neighbors)

	req, err := cfg.Request()
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "bmi", "gender"}, req.Pipeline.Schema.FeatureColumns())
	assert.Equal(t, service.SolverInverse, req.Pipeline.Solver)
	assert.Equal(t, uint64(7), req.Pipeline.Seed)
	assert.Equal(t, 5, req.Evaluation.Folds)
	assert.Equal(t, 1, req.Evaluation.Repeats)
}

func TestLoadTraining_Invalid(t *testing.T) {
	dir := t.TempDir()

	malformed := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(malformed, []byte("evaluation: [folds"), 0o600))
	_, err := config.LoadTraining(malformed)
	assert.Error(t, err)

	badSolver := filepath.Join(dir, "solver.yaml")
	require.NoError(t, os.WriteFile(badSolver, []byte("pipeline:\n  solver: eigen\n"), 0o600))
	cfg, err := config.LoadTraining(badSolver)
	require.NoError(t, err)
	_, err = cfg.Request()
	assert.Error(t, err)

	overlap := filepath.Join(dir, "overlap.yaml")
	require.NoError(t, os.WriteFile(overlap, []byte("schema:\n  numerical: [age]\n  categorical: [age]\n"), 0o600))
	cfg, err = config.LoadTraining(overlap)
	require.NoError(t, err)
	_, err = cfg.Request()
	assert.Error(t, err)
}
