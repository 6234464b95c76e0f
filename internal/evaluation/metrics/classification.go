package metrics

import (
	"math"
	"sort"
)

// AUROC computes the area under the ROC curve from binary ground truth and
// continuous scores, using the rank-sum formulation with average ranks for
// tied scores. Returns NaN when only one class is present.
func AUROC(yTrue []bool, scores []float64) float64 {
	n := len(scores)
	if n == 0 || n != len(yTrue) {
		return math.NaN()
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	// Average ranks over tie groups.
	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && scores[order[j]] == scores[order[i]] {
			j++
		}
		avg := float64(i+j+1) / 2.0 // ranks are 1-based
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		i = j
	}

	var nPos, nNeg int
	var rankSum float64
	for i, pos := range yTrue {
		if pos {
			nPos++
			rankSum += ranks[i]
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return math.NaN()
	}

	return (rankSum - float64(nPos)*float64(nPos+1)/2.0) / (float64(nPos) * float64(nNeg))
}

// AveragePrecision computes the average precision score (PR-AUC estimate):
// the sum over score thresholds of precision weighted by recall increments.
// Tied scores are collapsed into a single threshold. Returns NaN when no
// positives exist.
func AveragePrecision(yTrue []bool, scores []float64) float64 {
	n := len(scores)
	if n == 0 || n != len(yTrue) {
		return math.NaN()
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	totalPos := 0
	for _, pos := range yTrue {
		if pos {
			totalPos++
		}
	}
	if totalPos == 0 {
		return math.NaN()
	}

	ap := 0.0
	tp, fp := 0, 0
	prevRecall := 0.0
	for i := 0; i < n; {
		j := i
		for j < n && scores[order[j]] == scores[order[i]] {
			if yTrue[order[j]] {
				tp++
			} else {
				fp++
			}
			j++
		}
		precision := float64(tp) / float64(tp+fp)
		recall := float64(tp) / float64(totalPos)
		ap += (recall - prevRecall) * precision
		prevRecall = recall
		i = j
	}

	return ap
}

// F1Score computes the binary F1 score of predictions against ground truth.
// Returns 0 when there are no true or predicted positives.
func F1Score(yTrue, yPred []bool) float64 {
	var tp, fp, fn int
	for i := range yTrue {
		switch {
		case yTrue[i] && yPred[i]:
			tp++
		case !yTrue[i] && yPred[i]:
			fp++
		case yTrue[i] && !yPred[i]:
			fn++
		}
	}
	denom := 2*tp + fp + fn
	if denom == 0 {
		return 0
	}
	return 2 * float64(tp) / float64(denom)
}

// MacroF1 computes the unweighted mean of per-class binary F1 scores over
// the union of classes observed in either slice.
func MacroF1(yTrue, yPred []string) float64 {
	classes := make(map[string]bool)
	for _, c := range yTrue {
		classes[c] = true
	}
	for _, c := range yPred {
		classes[c] = true
	}
	if len(classes) == 0 {
		return math.NaN()
	}

	labels := make([]string, 0, len(classes))
	for c := range classes {
		labels = append(labels, c)
	}
	sort.Strings(labels)

	sum := 0.0
	for _, label := range labels {
		trueBin := make([]bool, len(yTrue))
		predBin := make([]bool, len(yPred))
		for i := range yTrue {
			trueBin[i] = yTrue[i] == label
			predBin[i] = yPred[i] == label
		}
		sum += F1Score(trueBin, predBin)
	}
	return sum / float64(len(labels))
}
