package testutil

import (
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// TestArtifactID1 is a fixed id that no generated artifact will collide with.
var TestArtifactID1 = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// StrokeColumns lists the feature columns produced by StrokeRows.
var StrokeColumns = []string{
	"age", "avg_glucose_level", "bmi",
	"gender", "hypertension", "heart_disease", "ever_married",
	"work_type", "Residence_type", "smoking_status",
}

// StrokeRows generates n synthetic patient rows of which positives have a
// stroke label of 1. Positive rows are older, have higher glucose and more
// hypertension, so a linear model separates the classes better than chance.
// About 4% of bmi cells are "N/A". Output is fully determined by seed.
func StrokeRows(n, positives int, seed uint64) ([]map[string]string, []int) {
	rng := rand.New(rand.NewPCG(seed, seed+1))

	rows := make([]map[string]string, n)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		sick := i < positives
		if sick {
			labels[i] = 1
		}

		age := 1 + rng.Float64()*80
		glucose := 95 + rng.NormFloat64()*20
		hypertension := rng.Float64() < 0.08
		if sick {
			age = 55 + rng.Float64()*27
			glucose = 140 + rng.NormFloat64()*45
			hypertension = rng.Float64() < 0.3
		}
		glucose = math.Max(glucose, 55)

		bmi := "N/A"
		if rng.Float64() >= 0.04 {
			bmi = format(math.Max(12, 28+rng.NormFloat64()*6))
		}

		rows[i] = map[string]string{
			"age":               format(age),
			"avg_glucose_level": format(glucose),
			"bmi":               bmi,
			"gender":            pick(rng, []string{"Female", "Male"}, []float64{0.58, 0.42}),
			"hypertension":      flag(hypertension),
			"heart_disease":     flag(rng.Float64() < 0.06),
			"ever_married":      pick(rng, []string{"Yes", "No"}, []float64{0.65, 0.35}),
			"work_type": pick(rng,
				[]string{"Private", "Self-employed", "Govt_job", "children", "Never_worked"},
				[]float64{0.55, 0.16, 0.13, 0.12, 0.04}),
			"Residence_type": pick(rng, []string{"Urban", "Rural"}, []float64{0.5, 0.5}),
			"smoking_status": pick(rng,
				[]string{"never smoked", "Unknown", "formerly smoked", "smokes"},
				[]float64{0.37, 0.30, 0.18, 0.15}),
		}
	}

	rng.Shuffle(n, func(a, b int) {
		rows[a], rows[b] = rows[b], rows[a]
		labels[a], labels[b] = labels[b], labels[a]
	})
	return rows, labels
}

// SelectColumns returns copies of rows restricted to cols.
func SelectColumns(rows []map[string]string, cols []string) []map[string]string {
	out := make([]map[string]string, len(rows))
	for i, r := range rows {
		m := make(map[string]string, len(cols))
		for _, c := range cols {
			m[c] = r[c]
		}
		out[i] = m
	}
	return out
}

// StrokeCSV renders rows as CSV text with an id column first and the label
// column last.
func StrokeCSV(rows []map[string]string, labels []int) string {
	var b strings.Builder
	b.WriteString("id," + strings.Join(StrokeColumns, ",") + ",stroke\n")
	for i, r := range rows {
		b.WriteString(strconv.Itoa(9000 + i))
		for _, c := range StrokeColumns {
			b.WriteString("," + r[c])
		}
		b.WriteString("," + strconv.Itoa(labels[i]) + "\n")
	}
	return b.String()
}

func pick(rng *rand.Rand, values []string, weights []float64) string {
	u := rng.Float64()
	for i, w := range weights {
		if u < w {
			return values[i]
		}
		u -= w
	}
	return values[len(values)-1]
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
