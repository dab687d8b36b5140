package usecase_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/application/usecase"
)

func TestReloadModel_Execute(t *testing.T) {
	t.Run("successfully reloads", func(t *testing.T) {
		metrics := &mockMetrics{}
		provider := &mockPipelineProvider{checksum: "deadbeef"}

		uc := usecase.NewReloadModel(provider, metrics)
		resp, err := uc.Execute(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "deadbeef", resp.Checksum)
		assert.False(t, resp.ReloadedAt.IsZero())
		assert.Equal(t, []bool{true}, metrics.reloads)
	})

	t.Run("fails when the source is unavailable", func(t *testing.T) {
		metrics := &mockMetrics{}
		provider := &mockPipelineProvider{
			reloadFunc: func(context.Context) (string, error) {
				return "", fmt.Errorf("open model.gob: no such file")
			},
		}

		uc := usecase.NewReloadModel(provider, metrics)
		_, err := uc.Execute(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to reload model")
		assert.Equal(t, []bool{false}, metrics.reloads)
	})
}
