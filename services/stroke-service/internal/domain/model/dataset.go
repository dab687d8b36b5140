package model

import "fmt"

// Record is one subject's raw feature values keyed by column name.
// Values are kept as text until the feature transformer parses them.
type Record map[string]string

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dataset is an ordered collection of records with binary labels.
type Dataset struct {
	records []Record
	labels  []int
}

// NewDataset pairs records with labels. Labels must be 0 or 1.
func NewDataset(records []Record, labels []int) (*Dataset, error) {
	if len(records) != len(labels) {
		return nil, fmt.Errorf("dataset has %d records but %d labels", len(records), len(labels))
	}
	for i, y := range labels {
		if y != 0 && y != 1 {
			return nil, fmt.Errorf("row %d: label %d is not 0 or 1", i, y)
		}
	}
	return &Dataset{records: records, labels: labels}, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.records) }

// Records returns the rows in order.
func (d *Dataset) Records() []Record { return d.records }

// Labels returns the labels in row order.
func (d *Dataset) Labels() []int { return d.labels }

// ClassCounts returns the number of negative and positive rows.
func (d *Dataset) ClassCounts() (negatives, positives int) {
	for _, y := range d.labels {
		if y == 1 {
			positives++
		} else {
			negatives++
		}
	}
	return negatives, positives
}

// Subset returns a dataset holding the rows at idx, in that order.
// Records are shared, not copied.
func (d *Dataset) Subset(idx []int) *Dataset {
	records := make([]Record, len(idx))
	labels := make([]int, len(idx))
	for i, j := range idx {
		records[i] = d.records[j]
		labels[i] = d.labels[j]
	}
	return &Dataset{records: records, labels: labels}
}

// Prediction is the outcome of scoring one record.
type Prediction struct {
	Class       int
	Probability float64
}
