package generators

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/inferloop/tabcert/pkg/constants"
	"github.com/inferloop/tabcert/pkg/errors"
	"github.com/inferloop/tabcert/pkg/interfaces"
	"github.com/inferloop/tabcert/pkg/models"
)

// CopulaGenerator implements Gaussian copula based synthetic tabular data
// generation. Marginal distributions are kept empirical; the dependence
// structure between columns is captured by the correlation matrix of the
// normal scores.
type CopulaGenerator struct {
	logger     *logrus.Logger
	config     *CopulaConfig
	fitted     bool
	columns    []copulaMarginal
	chol       *mat.Cholesky
	dim        int
	randSource *rand.Rand
}

// CopulaConfig contains configuration for the copula generator
type CopulaConfig struct {
	EnforceMinMax   bool  `json:"enforce_min_max"`  // Clamp sampled numerics to the observed range
	EnforceRounding bool  `json:"enforce_rounding"` // Round columns whose observed values are all integral
	Seed            int64 `json:"seed"`             // Random seed for reproducibility
}

// copulaMarginal holds the fitted empirical marginal for one column.
type copulaMarginal struct {
	name       string
	kind       models.ColumnKind
	sorted     []float64 // numeric: sorted non-missing values
	integral   bool      // numeric: every observed value is a whole number
	categories []string  // categorical: sorted category labels
	cumProb    []float64 // categorical: cumulative probability per category
}

// NewCopulaGenerator creates a new Gaussian copula generator
func NewCopulaGenerator(config *CopulaConfig, logger *logrus.Logger) *CopulaGenerator {
	if config == nil {
		config = getDefaultCopulaConfig()
	}

	if logger == nil {
		logger = logrus.New()
	}

	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}

	return &CopulaGenerator{
		logger:     logger,
		config:     config,
		fitted:     false,
		randSource: rand.New(rand.NewSource(config.Seed)),
	}
}

// GetType returns the generator type
func (g *CopulaGenerator) GetType() string {
	return constants.GeneratorTypeCopula
}

// GetName returns a human-readable name for the generator
func (g *CopulaGenerator) GetName() string {
	return "Gaussian Copula Generator"
}

// GetDescription returns a description of the generator
func (g *CopulaGenerator) GetDescription() string {
	return "Generates synthetic tabular data by sampling a Gaussian copula fitted to the empirical marginals and rank correlations of the reference data"
}

// Fit trains the copula on a real reference frame
func (g *CopulaGenerator) Fit(ctx context.Context, real *models.Frame) error {
	if real == nil || real.Rows() == 0 {
		return errors.NewValidationError(errors.CodeInvalidInput, "Reference frame with at least one row is required")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	g.logger.WithFields(logrus.Fields{
		"generator": g.GetType(),
		"rows":      real.Rows(),
		"columns":   real.Cols(),
	}).Info("Fitting copula generator")

	n := real.Rows()
	d := real.Cols()
	marginals := make([]copulaMarginal, d)
	scores := mat.NewDense(n, d, nil)

	for j := 0; j < d; j++ {
		col := real.ColumnAt(j)
		m := copulaMarginal{name: col.Name, kind: col.Kind}

		if col.Kind == models.KindNumeric {
			m.sorted = col.NonMissing()
			sort.Float64s(m.sorted)
			if len(m.sorted) == 0 {
				return errors.NewGenerationError(errors.CodeInsufficientData, "Numeric column has no observed values").
					WithContext("column", col.Name)
			}
			m.integral = allIntegral(m.sorted)

			// Normal scores from mid-ranks so ties land on the same score.
			ranks := midRanks(col)
			for i := 0; i < n; i++ {
				if col.Missing[i] {
					scores.Set(i, j, 0)
					continue
				}
				u := (ranks[i] + 0.5) / float64(len(m.sorted))
				scores.Set(i, j, distuv.UnitNormal.Quantile(clampUnit(u)))
			}
		} else {
			m.categories = col.Categories()
			if len(m.categories) == 0 {
				return errors.NewGenerationError(errors.CodeInsufficientData, "Categorical column has no observed values").
					WithContext("column", col.Name)
			}
			freqs := col.Frequencies()
			m.cumProb = make([]float64, len(m.categories))
			cum := 0.0
			mid := make(map[string]float64, len(m.categories))
			for k, cat := range m.categories {
				p := freqs[cat]
				mid[cat] = cum + p/2
				cum += p
				m.cumProb[k] = cum
			}
			m.cumProb[len(m.cumProb)-1] = 1.0

			// Each category maps to the midpoint of its probability interval.
			for i := 0; i < n; i++ {
				if col.Missing[i] {
					scores.Set(i, j, 0)
					continue
				}
				scores.Set(i, j, distuv.UnitNormal.Quantile(clampUnit(mid[col.Raw[i]])))
			}
		}

		marginals[j] = m
	}

	corr := mat.NewSymDense(d, nil)
	stat.CorrelationMatrix(corr, scores, nil)
	sanitizeCorrelation(corr)

	chol, err := factorize(corr)
	if err != nil {
		return err
	}

	g.columns = marginals
	g.chol = chol
	g.dim = d
	g.fitted = true

	g.logger.WithFields(logrus.Fields{
		"generator": g.GetType(),
		"columns":   d,
	}).Info("Copula generator fitted")

	return nil
}

// Sample draws n synthetic rows from the fitted model
func (g *CopulaGenerator) Sample(ctx context.Context, n int) (*models.Frame, error) {
	if !g.fitted {
		return nil, errors.NewGenerationError(errors.CodeModelNotFitted, "Generator must be fitted before sampling")
	}
	if n <= 0 {
		return nil, errors.NewValidationError(errors.CodeInvalidInput, "Sample size must be positive")
	}

	g.logger.WithFields(logrus.Fields{
		"generator": g.GetType(),
		"rows":      n,
	}).Info("Sampling synthetic rows")

	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: g.randSource}
	uniforms := make([][]float64, g.dim)
	for j := range uniforms {
		uniforms[j] = make([]float64, n)
	}

	eps := make([]float64, g.dim)
	z := mat.NewVecDense(g.dim, nil)
	var l mat.TriDense
	g.chol.LTo(&l)

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for j := range eps {
			eps[j] = normal.Rand()
		}
		z.MulVec(&l, mat.NewVecDense(g.dim, eps))
		for j := 0; j < g.dim; j++ {
			uniforms[j][i] = distuv.UnitNormal.CDF(z.AtVec(j))
		}
	}

	columns := make([]models.Column, g.dim)
	for j, m := range g.columns {
		if m.kind == models.KindNumeric {
			values := make([]float64, n)
			for i := 0; i < n; i++ {
				values[i] = g.inverseNumeric(m, uniforms[j][i])
			}
			columns[j] = models.NumericColumn(m.name, values)
		} else {
			values := make([]string, n)
			for i := 0; i < n; i++ {
				values[i] = inverseCategorical(m, uniforms[j][i])
			}
			columns[j] = models.CategoricalColumn(m.name, values)
		}
	}

	return models.NewFrame(columns)
}

// IsFitted returns true once Fit has completed successfully
func (g *CopulaGenerator) IsFitted() bool {
	return g.fitted
}

// Close cleans up resources
func (g *CopulaGenerator) Close() error {
	g.columns = nil
	g.chol = nil
	g.fitted = false
	return nil
}

// inverseNumeric maps a uniform draw back through the empirical quantile
// function with linear interpolation between order statistics.
func (g *CopulaGenerator) inverseNumeric(m copulaMarginal, u float64) float64 {
	s := m.sorted
	if len(s) == 1 {
		return s[0]
	}

	pos := u * float64(len(s)-1)
	lo := int(math.Floor(pos))
	if lo >= len(s)-1 {
		lo = len(s) - 2
	}
	frac := pos - float64(lo)
	v := s[lo] + frac*(s[lo+1]-s[lo])

	if g.config.EnforceMinMax {
		if v < s[0] {
			v = s[0]
		}
		if v > s[len(s)-1] {
			v = s[len(s)-1]
		}
	}
	if g.config.EnforceRounding && m.integral {
		v = math.Round(v)
	}
	return v
}

func inverseCategorical(m copulaMarginal, u float64) string {
	idx := sort.SearchFloat64s(m.cumProb, u)
	if idx >= len(m.categories) {
		idx = len(m.categories) - 1
	}
	return m.categories[idx]
}

func getDefaultCopulaConfig() *CopulaConfig {
	return &CopulaConfig{
		EnforceMinMax:   true,
		EnforceRounding: true,
		Seed:            time.Now().UnixNano(),
	}
}

// midRanks returns the average rank of each non-missing cell among the
// column's non-missing values.
func midRanks(col *models.Column) []float64 {
	type cell struct {
		value float64
		row   int
	}
	cells := make([]cell, 0, len(col.Values))
	for i, v := range col.Values {
		if col.Missing[i] {
			continue
		}
		cells = append(cells, cell{value: v, row: i})
	}
	sort.Slice(cells, func(a, b int) bool { return cells[a].value < cells[b].value })

	ranks := make([]float64, len(col.Values))
	for i := 0; i < len(cells); {
		j := i
		for j < len(cells) && cells[j].value == cells[i].value {
			j++
		}
		avg := float64(i+j-1) / 2
		for k := i; k < j; k++ {
			ranks[cells[k].row] = avg
		}
		i = j
	}
	return ranks
}

func allIntegral(values []float64) bool {
	for _, v := range values {
		if v != math.Trunc(v) {
			return false
		}
	}
	return true
}

func clampUnit(u float64) float64 {
	const eps = 1e-9
	if u < eps {
		return eps
	}
	if u > 1-eps {
		return 1 - eps
	}
	return u
}

// sanitizeCorrelation replaces NaN entries (constant columns) with zero and
// restores the unit diagonal.
func sanitizeCorrelation(corr *mat.SymDense) {
	d := corr.SymmetricDim()
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			if math.IsNaN(corr.At(i, j)) {
				if i == j {
					corr.SetSym(i, j, 1)
				} else {
					corr.SetSym(i, j, 0)
				}
			}
		}
	}
}

// factorize attempts a Cholesky decomposition, shrinking the matrix toward
// the identity until it is positive definite.
func factorize(corr *mat.SymDense) (*mat.Cholesky, error) {
	d := corr.SymmetricDim()
	for _, shrink := range []float64{0, 1e-8, 1e-4, 1e-2, 0.1, 0.5, 1} {
		adjusted := mat.NewSymDense(d, nil)
		for i := 0; i < d; i++ {
			for j := i; j < d; j++ {
				v := corr.At(i, j) * (1 - shrink)
				if i == j {
					v = corr.At(i, j)*(1-shrink) + shrink
				}
				adjusted.SetSym(i, j, v)
			}
		}
		var chol mat.Cholesky
		if chol.Factorize(adjusted) {
			return &chol, nil
		}
	}
	return nil, errors.NewGenerationError(errors.CodeTrainingFailed, "Correlation matrix could not be factorized")
}

var _ interfaces.Generator = (*CopulaGenerator)(nil)
