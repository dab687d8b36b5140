package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/model"
	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/service"
)

// CSVSource implements port.DatasetSource over a CSV file with a header row.
type CSVSource struct {
	path string
}

// NewCSVSource creates a source reading path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Load reads the file and builds a labelled dataset for schema.
func (s *CSVSource) Load(ctx context.Context, schema model.Schema) (*model.Dataset, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	return Read(ctx, f, schema)
}

// Read parses CSV from r. The identifier column and any column outside the
// schema are dropped; the label column must hold 0 or 1 on every row.
// Row numbers in errors count the header as row 1.
func Read(ctx context.Context, r io.Reader, schema model.Schema) (*model.Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("dataset is empty: %w", service.ErrSchemaMismatch)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	positions := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))
		if _, dup := positions[col]; dup {
			return nil, fmt.Errorf("duplicate column %q: %w", col, service.ErrSchemaMismatch)
		}
		positions[col] = i
	}

	labelAt, ok := positions[schema.Label()]
	if !ok {
		return nil, fmt.Errorf("label column %q not in header: %w", schema.Label(), service.ErrLabelMissing)
	}

	features := schema.FeatureColumns()
	featureAt := make([]int, len(features))
	var missing []string
	for i, col := range features {
		pos, ok := positions[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		featureAt[i] = pos
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("columns %s not in header: %w", strings.Join(missing, ", "), service.ErrSchemaMismatch)
	}

	var (
		records []model.Record
		labels  []int
	)
	for row := 2; ; row++ {
		if row%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		label, err := parseLabel(fields[labelAt])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		rec := make(model.Record, len(features))
		for i, col := range features {
			rec[col] = strings.TrimSpace(fields[featureAt[i]])
		}
		records = append(records, rec)
		labels = append(labels, label)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("dataset has a header but no rows")
	}
	return model.NewDataset(records, labels)
}

func parseLabel(s string) (int, error) {
	switch strings.TrimSpace(s) {
	case "0":
		return 0, nil
	case "1":
		return 1, nil
	case "":
		return 0, fmt.Errorf("empty label: %w", service.ErrLabelMissing)
	default:
		return 0, fmt.Errorf("label %q is not 0 or 1: %w", s, service.ErrLabelMissing)
	}
}
