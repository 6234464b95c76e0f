package evaluation

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inferloop/tabcert/internal/evaluation/metrics"
	"github.com/inferloop/tabcert/pkg/constants"
	"github.com/inferloop/tabcert/pkg/interfaces"
	"github.com/inferloop/tabcert/pkg/models"
)

// FidelityAnalyzer compares per-column distributions and pairwise numeric
// correlations between a real and a synthetic frame.
type FidelityAnalyzer struct {
	logger *logrus.Logger
	config *FidelityAnalyzerConfig
}

// FidelityAnalyzerConfig contains configuration for fidelity analysis
type FidelityAnalyzerConfig struct {
	TopPairs    int     `json:"top_pairs"`
	OkThreshold float64 `json:"ok_threshold"`
}

// NewFidelityAnalyzer creates a new fidelity analyzer
func NewFidelityAnalyzer(config *FidelityAnalyzerConfig, logger *logrus.Logger) interfaces.FidelityAnalyzer {
	if config == nil {
		config = getDefaultFidelityAnalyzerConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &FidelityAnalyzer{
		logger: logger,
		config: config,
	}
}

// GetType returns the analyzer type
func (a *FidelityAnalyzer) GetType() string {
	return constants.AnalyzerTypeFidelity
}

// GetName returns a human-readable name for the analyzer
func (a *FidelityAnalyzer) GetName() string {
	return "Fidelity Analyzer"
}

// GetDescription returns a description of the analyzer
func (a *FidelityAnalyzer) GetDescription() string {
	return "Compares per-column distributions and pairwise correlations of synthetic data against a real reference"
}

// UnivariateSimilarity scores every common column: the two-sample
// Kolmogorov-Smirnov statistic for columns numeric on both sides, total
// variation distance over normalized category frequencies otherwise. Scores
// are ordered ascending (best similarity first); undefined scores sort last.
func (a *FidelityAnalyzer) UnivariateSimilarity(ctx context.Context, real, synth *models.Frame) ([]models.ColumnProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	common := real.CommonColumns(synth)
	profiles := make([]models.ColumnProfile, 0, len(common))

	for _, name := range common {
		rc, _ := real.Column(name)
		sc, _ := synth.Column(name)

		if rc.Kind == models.KindNumeric {
			profile := models.ColumnProfile{Column: name, Metric: constants.MetricKS}
			if sc.Kind == models.KindNumeric {
				stat, err := metrics.TwoSampleKS(rc.NonMissing(), sc.NonMissing())
				if err == nil {
					profile.Value = models.Float64Ptr(stat)
				}
			}
			// Kind disagreement leaves the score undefined.
			profiles = append(profiles, profile)
			continue
		}

		tvd := metrics.TotalVariation(rc.Frequencies(), sc.Frequencies())
		profiles = append(profiles, models.ColumnProfile{
			Column: name,
			Metric: constants.MetricTVD,
			Value:  models.Float64Ptr(tvd),
		})
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		vi, vj := profiles[i].Value, profiles[j].Value
		if vi == nil {
			return false
		}
		if vj == nil {
			return true
		}
		return *vi < *vj
	})

	return profiles, nil
}

// CorrelationDelta compares the Pearson correlation matrices of the columns
// numeric in the real frame and present in the synthetic frame. Fewer than
// two qualifying columns yield an empty sequence. An undefined correlation
// is treated as 0 before the delta is taken.
func (a *FidelityAnalyzer) CorrelationDelta(ctx context.Context, real, synth *models.Frame) ([]models.CorrelationPair, error) {
	var numCols []string
	for _, name := range real.Names() {
		rc, _ := real.Column(name)
		if rc.Kind == models.KindNumeric && synth.Has(name) {
			numCols = append(numCols, name)
		}
	}
	if len(numCols) < 2 {
		return []models.CorrelationPair{}, nil
	}

	pairs := make([]models.CorrelationPair, 0, len(numCols)*(len(numCols)-1)/2)
	for i := 0; i < len(numCols); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for j := i + 1; j < len(numCols); j++ {
			ri, _ := real.Column(numCols[i])
			rj, _ := real.Column(numCols[j])
			si, _ := synth.Column(numCols[i])
			sj, _ := synth.Column(numCols[j])

			rCorr := zeroIfNaN(metrics.Pearson(ri.Values, rj.Values))
			sCorr := zeroIfNaN(metrics.Pearson(si.Values, sj.Values))

			pairs = append(pairs, models.CorrelationPair{
				ColI:     numCols[i],
				ColJ:     numCols[j],
				AbsDelta: math.Abs(rCorr - sCorr),
			})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].AbsDelta < pairs[j].AbsDelta
	})

	return pairs, nil
}

// Report composes the headline numbers with the full univariate table and
// the best/worst correlation pairs.
func (a *FidelityAnalyzer) Report(ctx context.Context, real, synth *models.Frame) (*models.FidelityReport, error) {
	a.logger.WithFields(logrus.Fields{
		"real_rows":  real.Rows(),
		"synth_rows": synth.Rows(),
		"real_cols":  real.Cols(),
		"synth_cols": synth.Cols(),
	}).Info("Starting fidelity analysis")

	start := time.Now()

	univariate, err := a.UnivariateSimilarity(ctx, real, synth)
	if err != nil {
		return nil, err
	}
	pairs, err := a.CorrelationDelta(ctx, real, synth)
	if err != nil {
		return nil, err
	}

	okCount := 0
	var defined []float64
	for _, p := range univariate {
		if p.Value == nil {
			continue
		}
		defined = append(defined, *p.Value)
		if *p.Value <= a.config.OkThreshold {
			okCount++
		}
	}

	headline := models.FidelityHeadline{}
	if len(univariate) > 0 {
		headline.UnivariateOkPercent = float64(okCount) / float64(len(univariate)) * 100.0
	}
	if len(defined) > 0 {
		headline.MedianScore = models.Float64Ptr(metrics.Median(defined))
	}
	if len(pairs) > 0 {
		deltas := make([]float64, len(pairs))
		for i, p := range pairs {
			deltas[i] = p.AbsDelta
		}
		headline.MedianCorrDelta = models.Float64Ptr(metrics.Median(deltas))
	}

	report := &models.FidelityReport{
		Headline:   headline,
		Univariate: univariate,
		CorrTop:    headSlice(pairs, a.config.TopPairs),
		CorrWorst:  tailSlice(pairs, a.config.TopPairs),
	}

	a.logger.WithFields(logrus.Fields{
		"columns":    len(univariate),
		"pairs":      len(pairs),
		"ok_percent": headline.UnivariateOkPercent,
		"duration":   time.Since(start),
	}).Info("Fidelity analysis completed")

	return report, nil
}

func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// headSlice returns the first n pairs; tailSlice the last n, both keeping
// ascending order.
func headSlice(pairs []models.CorrelationPair, n int) []models.CorrelationPair {
	if n > len(pairs) {
		n = len(pairs)
	}
	out := make([]models.CorrelationPair, n)
	copy(out, pairs[:n])
	return out
}

func tailSlice(pairs []models.CorrelationPair, n int) []models.CorrelationPair {
	if n > len(pairs) {
		n = len(pairs)
	}
	out := make([]models.CorrelationPair, n)
	copy(out, pairs[len(pairs)-n:])
	return out
}

func getDefaultFidelityAnalyzerConfig() *FidelityAnalyzerConfig {
	return &FidelityAnalyzerConfig{
		TopPairs:    constants.DefaultTopPairs,
		OkThreshold: constants.UnivariateOkThreshold,
	}
}
