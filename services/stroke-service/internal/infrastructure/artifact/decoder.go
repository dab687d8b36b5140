package artifact

import (
	"bytes"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/model"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/service"
)

// DefaultCacheSize bounds how many decoded pipelines a Decoder keeps.
const DefaultCacheSize = 4

// Decoder turns encoded artifacts into pipelines, reusing earlier results
// for identical bytes. Decoded pipelines are only read after construction,
// so one instance may serve several holders.
type Decoder struct {
	cache *lru.Cache[string, *service.TrainingPipeline]
}

// NewDecoder creates a Decoder remembering up to size pipelines.
func NewDecoder(size int) (*Decoder, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *service.TrainingPipeline](size)
	if err != nil {
		return nil, fmt.Errorf("artifact decoder cache: %w", err)
	}
	return &Decoder{cache: cache}, nil
}

// Decode returns the pipeline encoded in blob and the blob's checksum.
func (d *Decoder) Decode(blob []byte) (*service.TrainingPipeline, string, error) {
	checksum := model.PipelineChecksum(blob)
	if p, ok := d.cache.Get(checksum); ok {
		return p, checksum, nil
	}

	p, err := service.DecodePipeline(bytes.NewReader(blob))
	if err != nil {
		return nil, "", err
	}
	d.cache.Add(checksum, p)
	return p, checksum, nil
}

// Len reports how many pipelines are cached.
func (d *Decoder) Len() int { return d.cache.Len() }
