package service

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Solver selects how the classifier handles the within-class covariance.
type Solver string

const (
	// SolverSVD whitens the within-class data with a rank-revealing SVD and
	// drops directions with negligible variance, so collinear inputs such as
	// one-hot blocks are accepted.
	SolverSVD Solver = "svd"

	// SolverInverse factors the pooled covariance with Cholesky and rejects
	// matrices that are not positive definite or are badly conditioned.
	SolverInverse Solver = "inverse"
)

const (
	svdTolerance       = 1e-4
	minColumnScale     = 1e-10
	maxConditionNumber = 1e12
)

// ParseSolver maps a configuration value to a Solver.
func ParseSolver(s string) (Solver, error) {
	switch Solver(strings.ToLower(strings.TrimSpace(s))) {
	case "", SolverSVD:
		return SolverSVD, nil
	case SolverInverse:
		return SolverInverse, nil
	default:
		return "", fmt.Errorf("unsupported solver %q", s)
	}
}

// LinearDiscriminant is a two-class linear discriminant analysis classifier
// with Gaussian class-conditional densities sharing one covariance matrix.
// After fitting it reduces to a weight vector and an intercept; the
// discriminant d(x) = w·x + b is the log posterior odds of class 1.
type LinearDiscriminant struct {
	solver    Solver
	coef      []float64
	intercept float64
	priors    [2]float64
}

// NewLinearDiscriminant creates an unfitted classifier.
func NewLinearDiscriminant(solver Solver) *LinearDiscriminant {
	if solver == "" {
		solver = SolverSVD
	}
	return &LinearDiscriminant{solver: solver}
}

// Name identifies the stage.
func (l *LinearDiscriminant) Name() string { return "linear_discriminant" }

// Fit estimates class means, priors and the shared covariance from x and y.
func (l *LinearDiscriminant) Fit(x *mat.Dense, y []int) error {
	rows, cols := x.Dims()
	if rows != len(y) {
		return fmt.Errorf("linear discriminant: %d rows but %d labels", rows, len(y))
	}

	var counts [2]int
	for i, label := range y {
		if label != 0 && label != 1 {
			return fmt.Errorf("linear discriminant: row %d has label %d: %w", i, label, ErrLabelMissing)
		}
		counts[label]++
	}
	if counts[0] == 0 || counts[1] == 0 {
		return fmt.Errorf("linear discriminant: both classes required, got %d and %d: %w",
			counts[0], counts[1], ErrInsufficientMinorityClass)
	}
	if rows <= 2 {
		return fmt.Errorf("linear discriminant: need more than 2 rows, got %d: %w", rows, ErrSingularCovariance)
	}

	means := mat.NewDense(2, cols, nil)
	for i, label := range y {
		row := means.RawRowView(label)
		for j, v := range x.RawRowView(i) {
			row[j] += v
		}
	}
	var priors [2]float64
	for k := 0; k < 2; k++ {
		row := means.RawRowView(k)
		for j := range row {
			row[j] /= float64(counts[k])
		}
		priors[k] = float64(counts[k]) / float64(rows)
	}

	// Within-class centered data.
	centered := mat.NewDense(rows, cols, nil)
	for i, label := range y {
		src := x.RawRowView(i)
		mu := means.RawRowView(label)
		dst := centered.RawRowView(i)
		for j := range dst {
			dst[j] = src[j] - mu[j]
		}
	}

	var (
		coef      []float64
		intercept float64
		err       error
	)
	switch l.solver {
	case SolverSVD:
		coef, intercept, err = solveSVD(centered, means, priors)
	case SolverInverse:
		coef, intercept, err = solveInverse(centered, means, priors)
	default:
		err = fmt.Errorf("unsupported solver %q", l.solver)
	}
	if err != nil {
		return fmt.Errorf("linear discriminant: %w", err)
	}

	for _, c := range coef {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("linear discriminant: non-finite coefficient: %w", ErrNumericInstability)
		}
	}

	l.coef = coef
	l.intercept = intercept
	l.priors = priors
	return nil
}

// DecisionFunction returns the log posterior odds of class 1 for each row.
func (l *LinearDiscriminant) DecisionFunction(x *mat.Dense) ([]float64, error) {
	if l.coef == nil {
		return nil, fmt.Errorf("linear discriminant: %w", ErrNotFitted)
	}
	rows, cols := x.Dims()
	if cols != len(l.coef) {
		return nil, fmt.Errorf("linear discriminant: got %d columns, fitted on %d: %w", cols, len(l.coef), ErrSchemaMismatch)
	}
	out := make([]float64, rows)
	w := mat.NewVecDense(cols, l.coef)
	dst := mat.NewVecDense(rows, out)
	dst.MulVec(x, w)
	for i := range out {
		out[i] += l.intercept
	}
	return out, nil
}

// Predict returns the class label per row.
func (l *LinearDiscriminant) Predict(x *mat.Dense) ([]int, error) {
	scores, err := l.DecisionFunction(x)
	if err != nil {
		return nil, err
	}
	labels := make([]int, len(scores))
	for i, s := range scores {
		if s > 0 {
			labels[i] = 1
		}
	}
	return labels, nil
}

// PredictProba returns an n x 2 matrix of class posteriors. Column 1 is the
// positive class. Each row sums to one.
func (l *LinearDiscriminant) PredictProba(x *mat.Dense) (*mat.Dense, error) {
	scores, err := l.DecisionFunction(x)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(len(scores), 2, nil)
	for i, s := range scores {
		p := sigmoid(s)
		out.Set(i, 0, 1-p)
		out.Set(i, 1, p)
	}
	return out, nil
}

// Coefficients returns the discriminant weights.
func (l *LinearDiscriminant) Coefficients() []float64 { return append([]float64(nil), l.coef...) }

// Intercept returns the discriminant bias.
func (l *LinearDiscriminant) Intercept() float64 { return l.intercept }

// Priors returns the class priors observed during fit.
func (l *LinearDiscriminant) Priors() [2]float64 { return l.priors }

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// solveSVD whitens the within-class scatter through its singular value
// decomposition, projects the class means into the whitened space, and maps
// the resulting discriminant back to input coordinates.
func solveSVD(centered, means *mat.Dense, priors [2]float64) ([]float64, float64, error) {
	rows, cols := centered.Dims()
	const classes = 2

	// Overall mean weighted by priors.
	xbar := make([]float64, cols)
	for k := 0; k < classes; k++ {
		for j, v := range means.RawRowView(k) {
			xbar[j] += priors[k] * v
		}
	}

	// Per-column scale of the centered data; vanishing scales become 1.
	std := make([]float64, cols)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, centered)
		std[j] = stat.PopStdDev(col, nil)
		if !(std[j] > minColumnScale) {
			std[j] = 1
		}
	}

	fac := math.Sqrt(1 / float64(rows-classes))
	scaled := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		src := centered.RawRowView(i)
		dst := scaled.RawRowView(i)
		for j := range dst {
			dst[j] = fac * src[j] / std[j]
		}
	}

	var within mat.SVD
	if ok := within.Factorize(scaled, mat.SVDThin); !ok {
		return nil, 0, fmt.Errorf("within-class SVD did not converge: %w", ErrSingularCovariance)
	}
	sv := within.Values(nil)
	rank := 0
	for _, s := range sv {
		if s > svdTolerance {
			rank++
		}
	}
	if rank == 0 {
		return nil, 0, fmt.Errorf("within-class scatter has rank 0: %w", ErrSingularCovariance)
	}

	var v mat.Dense
	within.VTo(&v)
	// scalings is cols x rank: V[:, r] / std / S[r].
	scalings := mat.NewDense(cols, rank, nil)
	for j := 0; j < cols; j++ {
		for r := 0; r < rank; r++ {
			scalings.Set(j, r, v.At(j, r)/std[j]/sv[r])
		}
	}

	// Between-class structure in the whitened space.
	between := mat.NewDense(classes, cols, nil)
	for k := 0; k < classes; k++ {
		w := math.Sqrt(float64(rows) * priors[k] / float64(classes-1))
		src := means.RawRowView(k)
		dst := between.RawRowView(k)
		for j := range dst {
			dst[j] = w * (src[j] - xbar[j])
		}
	}
	var projected mat.Dense
	projected.Mul(between, scalings)

	var outer mat.SVD
	if ok := outer.Factorize(&projected, mat.SVDThin); !ok {
		return nil, 0, fmt.Errorf("between-class SVD did not converge: %w", ErrSingularCovariance)
	}
	bsv := outer.Values(nil)
	brank := 0
	for _, s := range bsv {
		if s > svdTolerance*bsv[0] {
			brank++
		}
	}

	// Directions spanning the between-class subspace, in input coordinates.
	var final *mat.Dense
	if brank > 0 {
		var bv mat.Dense
		outer.VTo(&bv)
		final = mat.NewDense(cols, brank, nil)
		final.Mul(scalings, bv.Slice(0, rank, 0, brank))
	}

	// Per-class coefficients and intercepts, then the binary difference.
	var coefs [classes][]float64
	var intercepts [classes]float64
	for k := 0; k < classes; k++ {
		coefs[k] = make([]float64, cols)
		intercepts[k] = math.Log(priors[k])
		if final == nil {
			continue
		}
		diff := make([]float64, cols)
		for j, m := range means.RawRowView(k) {
			diff[j] = m - xbar[j]
		}
		proj := make([]float64, brank)
		for r := 0; r < brank; r++ {
			for j := 0; j < cols; j++ {
				proj[r] += diff[j] * final.At(j, r)
			}
		}
		for r := 0; r < brank; r++ {
			intercepts[k] -= 0.5 * proj[r] * proj[r]
		}
		for j := 0; j < cols; j++ {
			var c float64
			for r := 0; r < brank; r++ {
				c += proj[r] * final.At(j, r)
			}
			coefs[k][j] = c
		}
	}
	for k := 0; k < classes; k++ {
		var shift float64
		for j, c := range coefs[k] {
			shift += xbar[j] * c
		}
		intercepts[k] -= shift
	}

	coef := make([]float64, cols)
	for j := range coef {
		coef[j] = coefs[1][j] - coefs[0][j]
	}
	return coef, intercepts[1] - intercepts[0], nil
}

// solveInverse computes w = Σ⁻¹(μ₁ - μ₀) with Σ the prior-weighted average of
// the per-class covariances.
func solveInverse(centered, means *mat.Dense, priors [2]float64) ([]float64, float64, error) {
	rows, cols := centered.Dims()

	sigma := mat.NewSymDense(cols, nil)
	sigma.SymOuterK(1/float64(rows), centered.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(sigma); !ok {
		return nil, 0, fmt.Errorf("pooled covariance is not positive definite: %w", ErrSingularCovariance)
	}
	if cond := chol.Cond(); cond > maxConditionNumber || math.IsInf(cond, 0) || math.IsNaN(cond) {
		return nil, 0, fmt.Errorf("pooled covariance condition number %.3g exceeds %.0g: %w",
			cond, maxConditionNumber, ErrSingularCovariance)
	}

	mu0 := mat.NewVecDense(cols, append([]float64(nil), means.RawRowView(0)...))
	mu1 := mat.NewVecDense(cols, append([]float64(nil), means.RawRowView(1)...))

	var w0, w1 mat.VecDense
	if err := chol.SolveVecTo(&w0, mu0); err != nil {
		return nil, 0, fmt.Errorf("solve class 0: %v: %w", err, ErrSingularCovariance)
	}
	if err := chol.SolveVecTo(&w1, mu1); err != nil {
		return nil, 0, fmt.Errorf("solve class 1: %v: %w", err, ErrSingularCovariance)
	}

	b0 := -0.5*mat.Dot(mu0, &w0) + math.Log(priors[0])
	b1 := -0.5*mat.Dot(mu1, &w1) + math.Log(priors[1])

	coef := make([]float64, cols)
	for j := range coef {
		coef[j] = w1.AtVec(j) - w0.AtVec(j)
	}
	return coef, b1 - b0, nil
}
