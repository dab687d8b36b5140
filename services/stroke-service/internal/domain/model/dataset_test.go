package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/model"
)

func TestNewDataset(t *testing.T) {
	records := []model.Record{{"age": "1"}, {"age": "2"}, {"age": "3"}}

	ds, err := model.NewDataset(records, []int{0, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())

	neg, pos := ds.ClassCounts()
	assert.Equal(t, 2, neg)
	assert.Equal(t, 1, pos)

	sub := ds.Subset([]int{2, 1})
	assert.Equal(t, []int{0, 1}, sub.Labels())
	assert.Equal(t, "3", sub.Records()[0]["age"])
}

func TestNewDataset_Invalid(t *testing.T) {
	_, err := model.NewDataset([]model.Record{{}}, []int{0, 1})
	assert.Error(t, err)

	_, err = model.NewDataset([]model.Record{{}}, []int{2})
	assert.Error(t, err)
}

func TestRecord_Clone(t *testing.T) {
	r := model.Record{"age": "1"}
	c := r.Clone()
	c["age"] = "2"
	assert.Equal(t, "1", r["age"])
}
