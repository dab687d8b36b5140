package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/model"
)

// FileStore implements port.ArtifactStore on the local filesystem. Writes go
// to a temporary file in the same directory and are renamed into place, so
// a reader never sees a partial artifact.
type FileStore struct {
	path string
}

// NewFileStore creates a store for the artifact at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Write replaces the artifact file with a's encoded pipeline.
func (s *FileStore) Write(_ context.Context, a *model.ModelArtifact) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(a.Pipeline()); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("install artifact: %w", err)
	}
	return nil
}

// Read returns the encoded pipeline currently on disk.
func (s *FileStore) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}

// Location returns the artifact path.
func (s *FileStore) Location() string { return s.path }
