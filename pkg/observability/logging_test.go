package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"Info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"xyzzy", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestInitLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{Level: "info", Format: "json", Service: "stroked", Output: &buf})

	logger.Debug("dropped")
	logger.Info("cross-validation complete", "mean_auc", 0.84)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "cross-validation complete", entry["msg"])
	assert.Equal(t, "stroked", entry["service"])
	assert.InDelta(t, 0.84, entry["mean_auc"], 1e-12)
}

func TestInitLoggerTextIsDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LogConfig{Level: "warn", Output: &buf})

	logger.Info("dropped")
	logger.Warn("reload failed", "error", "boom")

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "msg=\"reload failed\"")
	assert.NotContains(t, buf.String(), "dropped")
}

func TestInitLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stroke.log")
	var buf bytes.Buffer

	logger := InitLogger(LogConfig{Format: "json", File: path, Output: &buf})
	logger.Info("model loaded", "checksum", "abc")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "model loaded")
	assert.Equal(t, buf.String(), string(data))
}

func TestInitLoggerSetsDefault(t *testing.T) {
	logger := InitLogger(LogConfig{Format: "json", Output: &bytes.Buffer{}})
	assert.Equal(t, logger.Handler(), slog.Default().Handler())
}
