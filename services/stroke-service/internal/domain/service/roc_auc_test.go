package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/service"
)

func TestROCAUC(t *testing.T) {
	tests := []struct {
		name     string
		labels   []int
		scores   []float64
		expected float64
	}{
		{"perfect ranking", []int{0, 0, 1, 1}, []float64{0.1, 0.2, 0.8, 0.9}, 1},
		{"reversed ranking", []int{1, 1, 0, 0}, []float64{0.1, 0.2, 0.8, 0.9}, 0},
		{"all tied", []int{0, 1, 0, 1}, []float64{0.5, 0.5, 0.5, 0.5}, 0.5},
		{"partial order", []int{0, 0, 1, 1}, []float64{0.1, 0.4, 0.35, 0.8}, 0.75},
		{"tie across classes", []int{0, 1, 1}, []float64{0.3, 0.3, 0.9}, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auc, err := service.ROCAUC(tt.labels, tt.scores)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, auc, 1e-12)
		})
	}
}

func TestROCAUC_Errors(t *testing.T) {
	_, err := service.ROCAUC([]int{1, 1}, []float64{0.2, 0.3})
	assert.ErrorIs(t, err, service.ErrInsufficientMinorityClass)

	_, err = service.ROCAUC([]int{0, 1}, []float64{0.2})
	assert.Error(t, err)

	_, err = service.ROCAUC([]int{0, 2}, []float64{0.2, 0.3})
	assert.Error(t, err)
}
