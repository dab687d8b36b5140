package artifact

import (
	"context"
	"fmt"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/port"
)

// RegistrySource serves the most recently registered artifact from the
// model registry.
type RegistrySource struct {
	repo port.ArtifactRepository
}

// NewRegistrySource creates a source backed by repo.
func NewRegistrySource(repo port.ArtifactRepository) *RegistrySource {
	return &RegistrySource{repo: repo}
}

// Read fetches the latest artifact and checks its checksum.
func (s *RegistrySource) Read(ctx context.Context) ([]byte, error) {
	a, err := s.repo.FindLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("find latest artifact: %w", err)
	}
	if err := a.Verify(); err != nil {
		return nil, err
	}
	return a.Pipeline(), nil
}

// Location describes the source for logs.
func (s *RegistrySource) Location() string { return "postgres:model_artifacts" }
