package service

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	// Bracket searched for each column's Yeo-Johnson lambda.
	lambdaLower = -2.0
	lambdaUpper = 2.0

	lambdaTolerance = 1e-8
	lambdaMaxIter   = 200

	machineEpsilon = 2.220446049250313e-16
)

// PowerTransformer applies a per-column Yeo-Johnson transform with a maximum
// likelihood lambda, then standardizes each column to zero mean and unit
// variance.
type PowerTransformer struct {
	lambdas []float64
	means   []float64
	scales  []float64
}

// NewPowerTransformer returns an unfitted transformer.
func NewPowerTransformer() *PowerTransformer {
	return &PowerTransformer{}
}

// Name identifies the stage.
func (p *PowerTransformer) Name() string { return "power_transformer" }

// Fit estimates lambda, mean and scale for every column of x.
func (p *PowerTransformer) Fit(x *mat.Dense) error {
	rows, cols := x.Dims()
	if rows < 2 {
		return fmt.Errorf("power transformer: need at least 2 rows, got %d: %w", rows, ErrNumericInstability)
	}

	lambdas := make([]float64, cols)
	means := make([]float64, cols)
	scales := make([]float64, cols)
	col := make([]float64, rows)
	buf := make([]float64, rows)

	for j := 0; j < cols; j++ {
		mat.Col(col, j, x)
		if floats.Max(col) == floats.Min(col) {
			return fmt.Errorf("power transformer: column %d is constant: %w", j, ErrNumericInstability)
		}

		lambda := optimizeLambda(col, buf)
		for i, v := range col {
			buf[i] = yeoJohnson(v, lambda)
		}
		mean := stat.Mean(buf, nil)
		scale := stat.PopStdDev(buf, nil)
		if scale == 0 || math.IsNaN(scale) || math.IsInf(scale, 0) || math.IsNaN(mean) || math.IsInf(mean, 0) {
			return fmt.Errorf("power transformer: column %d has degenerate variance after transform (lambda %.4f): %w",
				j, lambda, ErrNumericInstability)
		}

		lambdas[j] = lambda
		means[j] = mean
		scales[j] = scale
	}

	p.lambdas = lambdas
	p.means = means
	p.scales = scales
	return nil
}

// Transform returns a new matrix with every column transformed and
// standardized using the fitted parameters.
func (p *PowerTransformer) Transform(x *mat.Dense) (*mat.Dense, error) {
	if p.lambdas == nil {
		return nil, fmt.Errorf("power transformer: %w", ErrNotFitted)
	}
	rows, cols := x.Dims()
	if cols != len(p.lambdas) {
		return nil, fmt.Errorf("power transformer: got %d columns, fitted on %d: %w", cols, len(p.lambdas), ErrSchemaMismatch)
	}

	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		src := x.RawRowView(i)
		dst := out.RawRowView(i)
		for j, v := range src {
			t := (yeoJohnson(v, p.lambdas[j]) - p.means[j]) / p.scales[j]
			if math.IsNaN(t) || math.IsInf(t, 0) {
				return nil, fmt.Errorf("power transformer: row %d column %d is not finite: %w", i, j, ErrNumericInstability)
			}
			dst[j] = t
		}
	}
	return out, nil
}

// Lambdas returns the fitted lambda per column.
func (p *PowerTransformer) Lambdas() []float64 { return append([]float64(nil), p.lambdas...) }

func yeoJohnson(x, lambda float64) float64 {
	if x >= 0 {
		if math.Abs(lambda) < machineEpsilon {
			return math.Log1p(x)
		}
		return (math.Pow(x+1, lambda) - 1) / lambda
	}
	if math.Abs(lambda-2) < machineEpsilon {
		return -math.Log1p(-x)
	}
	return -(math.Pow(1-x, 2-lambda) - 1) / (2 - lambda)
}

// negLogLikelihood is the negated Yeo-Johnson profile log-likelihood of x at
// lambda. buf receives the transformed values.
func negLogLikelihood(x, buf []float64, lambda float64) float64 {
	var jacobian float64
	for i, v := range x {
		buf[i] = yeoJohnson(v, lambda)
		if v >= 0 {
			jacobian += math.Log1p(v)
		} else {
			jacobian -= math.Log1p(-v)
		}
	}
	variance := stat.PopVariance(buf, nil)
	if !(variance > 1e-300) || math.IsInf(variance, 0) {
		return math.Inf(1)
	}
	n := float64(len(x))
	return n/2*math.Log(variance) - (lambda-1)*jacobian
}

// optimizeLambda minimizes the negative log-likelihood over the lambda
// bracket with a golden-section search.
func optimizeLambda(x, buf []float64) float64 {
	invPhi := (math.Sqrt(5) - 1) / 2

	a, b := lambdaLower, lambdaUpper
	c := b - invPhi*(b-a)
	d := a + invPhi*(b-a)
	fc := negLogLikelihood(x, buf, c)
	fd := negLogLikelihood(x, buf, d)

	for iter := 0; iter < lambdaMaxIter && b-a > lambdaTolerance; iter++ {
		if fc < fd {
			b, d, fd = d, c, fc
			c = b - invPhi*(b-a)
			fc = negLogLikelihood(x, buf, c)
		} else {
			a, c, fc = c, d, fd
			d = a + invPhi*(b-a)
			fd = negLogLikelihood(x, buf, d)
		}
	}
	return (a + b) / 2
}
