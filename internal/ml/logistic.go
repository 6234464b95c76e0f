package ml

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/optimize"

	"github.com/inferloop/tabcert/pkg/constants"
	"github.com/inferloop/tabcert/pkg/errors"
)

// Config holds the logistic regression hyperparameters.
type Config struct {
	L2            float64 `json:"l2"`
	MaxIterations int     `json:"max_iterations"`
}

// DefaultConfig returns the regularized, bounded-iteration defaults.
func DefaultConfig() *Config {
	return &Config{
		L2:            constants.LogisticRegularization,
		MaxIterations: constants.LogisticMaxIterations,
	}
}

// Model is a fitted binary logistic classifier. The parameter vector holds
// the feature weights followed by the intercept.
type Model struct {
	weights []float64
	dim     int
}

// TrainBinary fits a class-balanced, L2-regularized logistic model on a
// dense feature matrix and boolean labels. Class weights follow the
// balanced heuristic n / (2 * classCount). Training is deterministic: the
// parameters start at zero and the solver has no stochastic component.
// A single-class label vector is a degenerate input and fails.
func TrainBinary(x [][]float64, y []bool, cfg *Config) (*Model, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if len(x) == 0 || len(x) != len(y) {
		return nil, errors.NewEvaluationError(errors.CodeInsufficientData, "empty or mismatched training data")
	}

	n := len(y)
	nPos := 0
	for _, v := range y {
		if v {
			nPos++
		}
	}
	nNeg := n - nPos
	if nPos == 0 || nNeg == 0 {
		return nil, errors.NewEvaluationError(errors.CodeDegenerateTraining,
			"training partition contains a single class")
	}

	wPos := float64(n) / (2 * float64(nPos))
	wNeg := float64(n) / (2 * float64(nNeg))
	sampleW := make([]float64, n)
	for i, v := range y {
		if v {
			sampleW[i] = wPos
		} else {
			sampleW[i] = wNeg
		}
	}

	dim := len(x[0])
	problem := optimize.Problem{
		Func: func(w []float64) float64 {
			loss := 0.0
			for i, row := range x {
				z := decision(w, row)
				// log(1 + exp(z)) - y*z, computed stably
				loss += sampleW[i] * (math.Max(z, 0) + math.Log1p(math.Exp(-math.Abs(z))) - b2f(y[i])*z)
			}
			for _, wj := range w[:dim] {
				loss += 0.5 * cfg.L2 * wj * wj
			}
			return loss
		},
		Grad: func(grad, w []float64) {
			for j := range grad {
				grad[j] = 0
			}
			for i, row := range x {
				z := decision(w, row)
				g := sampleW[i] * (sigmoid(z) - b2f(y[i]))
				for j, xj := range row {
					grad[j] += g * xj
				}
				grad[dim] += g
			}
			for j := 0; j < dim; j++ {
				grad[j] += cfg.L2 * w[j]
			}
		},
	}

	init := make([]float64, dim+1)
	settings := &optimize.Settings{
		MajorIterations:   cfg.MaxIterations,
		GradientThreshold: 1e-6,
	}

	result, err := optimize.Minimize(problem, init, settings, &optimize.LBFGS{})
	if err != nil && result == nil {
		return nil, errors.WrapError(err, errors.ErrorTypeEvaluation, errors.CodeTrainingFailed,
			"logistic regression solver failed")
	}

	return &Model{weights: result.X, dim: dim}, nil
}

// Proba returns the predicted probability of the positive class for one row.
func (m *Model) Proba(row []float64) float64 {
	return sigmoid(decision(m.weights, row))
}

// ProbaAll returns positive-class probabilities for a feature matrix.
func (m *Model) ProbaAll(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = m.Proba(row)
	}
	return out
}

// OneVsRest is a multiclass classifier built from one binary logistic model
// per class, predicting the class with the highest probability.
type OneVsRest struct {
	Classes []string
	models  []*Model
}

// TrainOneVsRest fits a one-vs-rest ensemble over the distinct labels.
func TrainOneVsRest(x [][]float64, labels []string, cfg *Config) (*OneVsRest, error) {
	seen := make(map[string]bool)
	for _, l := range labels {
		seen[l] = true
	}
	classes := make([]string, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	if len(classes) < 2 {
		return nil, errors.NewEvaluationError(errors.CodeDegenerateTraining,
			"training partition contains a single class")
	}

	ovr := &OneVsRest{Classes: classes, models: make([]*Model, len(classes))}
	y := make([]bool, len(labels))
	for ci, class := range classes {
		for i, l := range labels {
			y[i] = l == class
		}
		model, err := TrainBinary(x, y, cfg)
		if err != nil {
			return nil, err
		}
		ovr.models[ci] = model
	}
	return ovr, nil
}

// Predict returns the highest-probability class for one row.
func (m *OneVsRest) Predict(row []float64) string {
	best, bestProba := m.Classes[0], math.Inf(-1)
	for ci, model := range m.models {
		if p := model.Proba(row); p > bestProba {
			best, bestProba = m.Classes[ci], p
		}
	}
	return best
}

// PredictAll returns predicted classes for a feature matrix.
func (m *OneVsRest) PredictAll(x [][]float64) []string {
	out := make([]string, len(x))
	for i, row := range x {
		out[i] = m.Predict(row)
	}
	return out
}

func decision(w, row []float64) float64 {
	z := w[len(w)-1]
	for j, xj := range row {
		z += w[j] * xj
	}
	return z
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func b2f(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
