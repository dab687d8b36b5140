package service

import (
	"fmt"
	"sort"
)

// ROCAUC returns the area under the ROC curve of scores against binary
// labels. It uses the rank-sum form of the statistic; tied scores receive
// their average rank.
func ROCAUC(labels []int, scores []float64) (float64, error) {
	if len(labels) != len(scores) {
		return 0, fmt.Errorf("roc auc: %d labels but %d scores", len(labels), len(scores))
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	ranks := make([]float64, len(scores))
	for i := 0; i < len(order); {
		j := i
		for j+1 < len(order) && scores[order[j+1]] == scores[order[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		i = j + 1
	}

	var positives, negatives int
	var rankSum float64
	for i, y := range labels {
		switch y {
		case 1:
			positives++
			rankSum += ranks[i]
		case 0:
			negatives++
		default:
			return 0, fmt.Errorf("roc auc: label %d at %d is not 0 or 1", y, i)
		}
	}
	if positives == 0 || negatives == 0 {
		return 0, fmt.Errorf("roc auc: need both classes, got %d positive and %d negative: %w",
			positives, negatives, ErrInsufficientMinorityClass)
	}

	p := float64(positives)
	u := rankSum - p*(p+1)/2
	return u / (p * float64(negatives)), nil
}
