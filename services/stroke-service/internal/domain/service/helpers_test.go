package service_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/testutil"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/model"
)

// strokeDataset builds a synthetic dataset restricted to the given columns.
// A nil cols keeps every stroke feature column.
func strokeDataset(t *testing.T, n, positives int, seed uint64, cols []string) *model.Dataset {
	t.Helper()

	rows, labels := testutil.StrokeRows(n, positives, seed)
	if cols != nil {
		rows = testutil.SelectColumns(rows, cols)
	}
	records := make([]model.Record, len(rows))
	for i, r := range rows {
		records[i] = model.Record(r)
	}
	ds, err := model.NewDataset(records, labels)
	require.NoError(t, err)
	return ds
}

// compactSchema has three numerical and three categorical columns.
func compactSchema(t *testing.T) (model.Schema, []string) {
	t.Helper()

	numerical := []string{"age", "avg_glucose_level", "bmi"}
	categorical := []string{"gender", "hypertension", "smoking_status"}
	schema, err := model.NewSchema(numerical, categorical, "stroke", "id")
	require.NoError(t, err)
	return schema, append(append([]string(nil), numerical...), categorical...)
}
