package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/service"
)

// Source yields the encoded artifact a ModelHolder serves.
type Source interface {
	Read(ctx context.Context) ([]byte, error)
	Location() string
}

type loaded struct {
	loadedAt time.Time
	pipeline *service.TrainingPipeline
	checksum string
}

// ModelHolder implements port.PipelineProvider. Readers never block: the
// serving pipeline is swapped atomically and a failed reload leaves the
// previous one in place.
type ModelHolder struct {
	source  Source
	decoder *Decoder
	logger  *slog.Logger
	current atomic.Pointer[loaded]
	mu      sync.Mutex // serialises Reload
	onLoad  func(checksum string)
}

// NewModelHolder creates an empty holder. Call Reload to load the first model.
func NewModelHolder(source Source, decoder *Decoder, logger *slog.Logger) *ModelHolder {
	return &ModelHolder{source: source, decoder: decoder, logger: logger}
}

// OnLoad registers fn to run after every successful Reload. It must be
// called before the holder is shared.
func (h *ModelHolder) OnLoad(fn func(checksum string)) { h.onLoad = fn }

// Current returns the serving pipeline and the checksum of the artifact it
// was decoded from, or service.ErrNotFitted.
func (h *ModelHolder) Current() (*service.TrainingPipeline, string, error) {
	l := h.current.Load()
	if l == nil {
		return nil, "", fmt.Errorf("model holder: %w", service.ErrNotFitted)
	}
	return l.pipeline, l.checksum, nil
}

// Checksum returns the serving artifact's checksum, or "" before the first load.
func (h *ModelHolder) Checksum() string {
	if l := h.current.Load(); l != nil {
		return l.checksum
	}
	return ""
}

// LoadedAt returns when the serving pipeline was installed.
func (h *ModelHolder) LoadedAt() time.Time {
	if l := h.current.Load(); l != nil {
		return l.loadedAt
	}
	return time.Time{}
}

// Ready reports whether a pipeline is being served.
func (h *ModelHolder) Ready() bool { return h.current.Load() != nil }

// Reload reads the source, decodes it and installs the result.
func (h *ModelHolder) Reload(ctx context.Context) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	blob, err := h.source.Read(ctx)
	if err != nil {
		return "", err
	}
	pipeline, checksum, err := h.decoder.Decode(blob)
	if err != nil {
		return "", fmt.Errorf("decode artifact from %s: %w", h.source.Location(), err)
	}

	prev := h.current.Swap(&loaded{pipeline: pipeline, checksum: checksum, loadedAt: time.Now().UTC()})
	if prev != nil && prev.checksum == checksum {
		h.logger.DebugContext(ctx, "model unchanged", "checksum", checksum)
	} else {
		h.logger.InfoContext(ctx, "model loaded",
			"checksum", checksum,
			"source", h.source.Location(),
			"features", len(pipeline.FeatureNames()),
		)
	}
	if h.onLoad != nil {
		h.onLoad(checksum)
	}
	return checksum, nil
}
