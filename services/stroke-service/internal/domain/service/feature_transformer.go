package service

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/services/stroke-service/internal/domain/model"
)

// UnknownCategoryPolicy decides how a categorical value that was not seen
// during fit is encoded.
type UnknownCategoryPolicy string

// UnknownAsZeros encodes an unseen or empty category as an all-zero
// indicator block for that column. Other columns are unaffected.
const UnknownAsZeros UnknownCategoryPolicy = "ignore"

// ParseUnknownCategoryPolicy maps a configuration value to a policy.
func ParseUnknownCategoryPolicy(s string) (UnknownCategoryPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ignore", "zeros":
		return UnknownAsZeros, nil
	default:
		return "", fmt.Errorf("unsupported unknown category policy %q", s)
	}
}

// missingTokens are cell values read as "no value".
var missingTokens = map[string]struct{}{
	"":    {},
	"N/A": {},
	"NA":  {},
	"NaN": {},
	"nan": {},
}

func isMissing(v string) bool {
	_, ok := missingTokens[strings.TrimSpace(v)]
	return ok
}

// FeatureTransformer imputes numerical columns with their training median and
// one-hot encodes categorical columns against the training vocabulary.
// Output columns are the numerical columns in schema order followed by one
// indicator block per categorical column.
type FeatureTransformer struct {
	schema  model.Schema
	policy  UnknownCategoryPolicy
	medians []float64
	vocab   [][]string
	index   []map[string]int
	fitted  bool
}

// NewFeatureTransformer creates an unfitted transformer for schema.
func NewFeatureTransformer(schema model.Schema, policy UnknownCategoryPolicy) (*FeatureTransformer, error) {
	if schema.IsZero() {
		return nil, fmt.Errorf("feature transformer: empty schema")
	}
	if policy != UnknownAsZeros {
		return nil, fmt.Errorf("feature transformer: unsupported unknown category policy %q", policy)
	}
	return &FeatureTransformer{schema: schema, policy: policy}, nil
}

// Name identifies the stage.
func (t *FeatureTransformer) Name() string { return "feature_transformer" }

// Fit learns medians and per-column vocabularies from records.
func (t *FeatureTransformer) Fit(records []model.Record) error {
	if len(records) == 0 {
		return fmt.Errorf("feature transformer: no records to fit")
	}
	for i, r := range records {
		if err := t.checkColumns(r); err != nil {
			return fmt.Errorf("feature transformer: row %d: %w", i, err)
		}
	}

	numerical := t.schema.Numerical()
	medians := make([]float64, len(numerical))
	for j, col := range numerical {
		observed := make([]float64, 0, len(records))
		for i, r := range records {
			v, ok, err := parseNumeric(col, r[col])
			if err != nil {
				return fmt.Errorf("feature transformer: row %d: %w", i, err)
			}
			if ok {
				observed = append(observed, v)
			}
		}
		if len(observed) == 0 {
			return fmt.Errorf("feature transformer: column %s has no observed values: %w", col, ErrNumericInstability)
		}
		medians[j] = median(observed)
	}

	categorical := t.schema.Categorical()
	vocab := make([][]string, len(categorical))
	for j, col := range categorical {
		levels := make(map[string]struct{})
		for _, r := range records {
			v := strings.TrimSpace(r[col])
			if isMissing(v) {
				continue
			}
			levels[v] = struct{}{}
		}
		sorted := make([]string, 0, len(levels))
		for v := range levels {
			sorted = append(sorted, v)
		}
		sort.Strings(sorted)
		vocab[j] = sorted
	}

	t.medians = medians
	t.vocab = vocab
	t.index = buildIndex(vocab)
	t.fitted = true
	return nil
}

// Transform encodes records into a dense feature matrix.
func (t *FeatureTransformer) Transform(records []model.Record) (*mat.Dense, error) {
	if !t.fitted {
		return nil, fmt.Errorf("feature transformer: %w", ErrNotFitted)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("feature transformer: no records to transform")
	}

	width := t.Width()
	data := make([]float64, len(records)*width)
	numerical := t.schema.Numerical()
	categorical := t.schema.Categorical()

	for i, r := range records {
		if err := t.checkColumns(r); err != nil {
			return nil, fmt.Errorf("feature transformer: row %d: %w", i, err)
		}
		row := data[i*width : (i+1)*width]

		for j, col := range numerical {
			v, ok, err := parseNumeric(col, r[col])
			if err != nil {
				return nil, fmt.Errorf("feature transformer: row %d: %w", i, err)
			}
			if !ok {
				v = t.medians[j]
			}
			row[j] = v
		}

		offset := len(numerical)
		for j, col := range categorical {
			if pos, ok := t.index[j][strings.TrimSpace(r[col])]; ok {
				row[offset+pos] = 1
			}
			offset += len(t.vocab[j])
		}
	}

	return mat.NewDense(len(records), width, data), nil
}

// Width returns the number of output columns. Zero before Fit.
func (t *FeatureTransformer) Width() int {
	w := len(t.medians)
	for _, levels := range t.vocab {
		w += len(levels)
	}
	return w
}

// FeatureNames returns the output column names in order, with indicator
// columns named "column=level".
func (t *FeatureTransformer) FeatureNames() []string {
	names := make([]string, 0, t.Width())
	names = append(names, t.schema.Numerical()...)
	for j, col := range t.schema.Categorical() {
		if j >= len(t.vocab) {
			break
		}
		for _, level := range t.vocab[j] {
			names = append(names, col+"="+level)
		}
	}
	return names
}

// Medians returns the learned imputation values in numerical column order.
func (t *FeatureTransformer) Medians() []float64 { return append([]float64(nil), t.medians...) }

// Vocabulary returns the sorted levels learned for a categorical column.
func (t *FeatureTransformer) Vocabulary(col string) []string {
	for j, c := range t.schema.Categorical() {
		if c == col && j < len(t.vocab) {
			return append([]string(nil), t.vocab[j]...)
		}
	}
	return nil
}

// checkColumns verifies r holds exactly the schema's feature columns.
func (t *FeatureTransformer) checkColumns(r model.Record) error {
	for _, col := range t.schema.FeatureColumns() {
		if _, ok := r[col]; !ok {
			return fmt.Errorf("missing column %q: %w", col, ErrSchemaMismatch)
		}
	}
	if len(r) != len(t.schema.FeatureColumns()) {
		for col := range r {
			if !t.schema.IsFeature(col) {
				return fmt.Errorf("unexpected column %q: %w", col, ErrSchemaMismatch)
			}
		}
	}
	return nil
}

func buildIndex(vocab [][]string) []map[string]int {
	index := make([]map[string]int, len(vocab))
	for j, levels := range vocab {
		index[j] = make(map[string]int, len(levels))
		for pos, level := range levels {
			index[j][level] = pos
		}
	}
	return index
}

// parseNumeric returns (value, true) for a finite number and (0, false) for a
// missing cell.
func parseNumeric(col, raw string) (float64, bool, error) {
	if isMissing(raw) {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, false, fmt.Errorf("column %s: value %q is not numeric: %w", col, raw, ErrSchemaMismatch)
	}
	if math.IsNaN(v) {
		return 0, false, nil
	}
	return v, true, nil
}

// median sorts values in place and returns the middle value, or the mean of
// the two middle values for an even count.
func median(values []float64) float64 {
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}
