package service

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultNeighbors is the neighbourhood size used by SMOTE.
const DefaultNeighbors = 5

// SMOTE oversamples the minority class with synthetic points interpolated
// between a minority sample and one of its nearest minority neighbours.
// It only participates in fitting.
type SMOTE struct {
	neighbors int
	seed      uint64
}

// NewSMOTE creates a balancer. neighbors <= 0 selects DefaultNeighbors.
func NewSMOTE(neighbors int, seed uint64) *SMOTE {
	if neighbors <= 0 {
		neighbors = DefaultNeighbors
	}
	return &SMOTE{neighbors: neighbors, seed: seed}
}

// Name identifies the stage.
func (s *SMOTE) Name() string { return "smote" }

// FitResample returns x and y extended with synthetic minority rows so that
// both classes have the majority count. Original rows keep their positions.
func (s *SMOTE) FitResample(x *mat.Dense, y []int) (*mat.Dense, []int, error) {
	rows, cols := x.Dims()
	if rows != len(y) {
		return nil, nil, fmt.Errorf("smote: %d rows but %d labels", rows, len(y))
	}

	var byClass [2][]int
	for i, label := range y {
		if label != 0 && label != 1 {
			return nil, nil, fmt.Errorf("smote: row %d has label %d: %w", i, label, ErrLabelMissing)
		}
		byClass[label] = append(byClass[label], i)
	}

	minorityLabel := 1
	if len(byClass[0]) < len(byClass[1]) {
		minorityLabel = 0
	}
	minority := byClass[minorityLabel]
	majorityCount := len(byClass[1-minorityLabel])

	if len(minority) <= 1 {
		return nil, nil, fmt.Errorf("smote: minority class %d has %d samples: %w",
			minorityLabel, len(minority), ErrInsufficientMinorityClass)
	}

	needed := majorityCount - len(minority)
	if needed == 0 {
		return mat.DenseCopyOf(x), append([]int(nil), y...), nil
	}

	k := s.neighbors
	if len(minority) < k+1 {
		k = len(minority) - 1
	}

	points := make([][]float64, len(minority))
	for i, idx := range minority {
		points[i] = x.RawRowView(idx)
	}
	neighbors := nearestNeighbors(points, k)

	rng := rand.New(rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15))

	out := mat.NewDense(rows+needed, cols, nil)
	out.Slice(0, rows, 0, cols).(*mat.Dense).Copy(x)
	labels := make([]int, rows+needed)
	copy(labels, y)

	diff := make([]float64, cols)
	for n := 0; n < needed; n++ {
		flat := rng.IntN(len(points) * k)
		base := points[flat/k]
		other := points[neighbors[flat/k][flat%k]]
		step := rng.Float64()

		dst := out.RawRowView(rows + n)
		floats.SubTo(diff, other, base)
		floats.AddScaledTo(dst, base, step, diff)
		labels[rows+n] = minorityLabel
	}

	return out, labels, nil
}

// nearestNeighbors returns, for every point, the indices of its k nearest
// other points by Euclidean distance. Ties resolve to the lower index.
func nearestNeighbors(points [][]float64, k int) [][]int {
	type candidate struct {
		idx  int
		dist float64
	}

	result := make([][]int, len(points))
	cands := make([]candidate, 0, len(points)-1)
	for i, p := range points {
		cands = cands[:0]
		for j, q := range points {
			if i == j {
				continue
			}
			cands = append(cands, candidate{idx: j, dist: floats.Distance(p, q, 2)})
		}
		sort.Slice(cands, func(a, b int) bool {
			if cands[a].dist != cands[b].dist {
				return cands[a].dist < cands[b].dist
			}
			return cands[a].idx < cands[b].idx
		})
		nn := make([]int, k)
		for n := 0; n < k; n++ {
			nn[n] = cands[n].idx
		}
		result[i] = nn
	}
	return result
}
