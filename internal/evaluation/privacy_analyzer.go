package evaluation

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inferloop/tabcert/internal/evaluation/metrics"
	"github.com/inferloop/tabcert/pkg/constants"
	"github.com/inferloop/tabcert/pkg/interfaces"
	"github.com/inferloop/tabcert/pkg/models"
)

// PrivacyAnalyzer measures record-level replication and proximity risk of
// synthetic data against the real reference. Its checks are heuristic
// distance and match tests, not certified privacy bounds.
type PrivacyAnalyzer struct {
	logger *logrus.Logger
	config *PrivacyAnalyzerConfig
}

// PrivacyAnalyzerConfig contains configuration for privacy analysis
type PrivacyAnalyzerConfig struct {
	KNeighbors int `json:"k_neighbors"`
}

// NewPrivacyAnalyzer creates a new privacy analyzer
func NewPrivacyAnalyzer(config *PrivacyAnalyzerConfig, logger *logrus.Logger) interfaces.PrivacyAnalyzer {
	if config == nil {
		config = getDefaultPrivacyAnalyzerConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &PrivacyAnalyzer{
		logger: logger,
		config: config,
	}
}

// GetType returns the analyzer type
func (a *PrivacyAnalyzer) GetType() string {
	return constants.AnalyzerTypePrivacy
}

// GetName returns a human-readable name for the analyzer
func (a *PrivacyAnalyzer) GetName() string {
	return "Privacy Analyzer"
}

// GetDescription returns a description of the analyzer
func (a *PrivacyAnalyzer) GetDescription() string {
	return "Measures record-level replication and proximity risk of synthetic data"
}

// ExactMatchRate is the fraction of synthetic rows whose canonical key,
// built over the common columns in real-frame order, appears among the real
// rows' keys.
func (a *PrivacyAnalyzer) ExactMatchRate(real, synth *models.Frame) float64 {
	if synth.Rows() == 0 {
		return 0
	}

	common := real.CommonColumns(synth)
	realKeys := make(map[string]bool, real.Rows())
	for i := 0; i < real.Rows(); i++ {
		realKeys[real.RowKey(i, common)] = true
	}

	matches := 0
	for i := 0; i < synth.Rows(); i++ {
		if realKeys[synth.RowKey(i, common)] {
			matches++
		}
	}
	return float64(matches) / float64(synth.Rows())
}

// UniquenessRate is the fraction of rows whose canonical key occurs exactly
// once within the frame. An empty frame yields 0.
func (a *PrivacyAnalyzer) UniquenessRate(frame *models.Frame) float64 {
	if frame.Rows() == 0 {
		return 0
	}

	cols := frame.Names()
	counts := make(map[string]int, frame.Rows())
	for i := 0; i < frame.Rows(); i++ {
		counts[frame.RowKey(i, cols)]++
	}

	unique := 0
	for i := 0; i < frame.Rows(); i++ {
		if counts[frame.RowKey(i, cols)] == 1 {
			unique++
		}
	}
	return float64(unique) / float64(frame.Rows())
}

// KNNMinDistance summarizes the distribution of Euclidean distances from
// every synthetic row to its k-th nearest real row, over the columns numeric
// in the real frame and present in the synthetic frame. Missing values on
// both sides are imputed with the real column medians so imputation is
// consistent. With no qualifying columns all three summary values are
// undefined.
func (a *PrivacyAnalyzer) KNNMinDistance(real, synth *models.Frame, k int) models.KNNDistanceSummary {
	var numCols []string
	for _, name := range real.Names() {
		rc, _ := real.Column(name)
		if rc.Kind == models.KindNumeric && synth.Has(name) {
			numCols = append(numCols, name)
		}
	}
	if len(numCols) == 0 || real.Rows() == 0 || synth.Rows() == 0 {
		return models.KNNDistanceSummary{}
	}

	medians := make([]float64, len(numCols))
	for j, name := range numCols {
		rc, _ := real.Column(name)
		medians[j] = rc.Median()
	}

	realMat := imputedMatrix(real, numCols, medians)
	synthMat := imputedMatrix(synth, numCols, medians)

	dists := metrics.KthNearestDistances(realMat, synthMat, k)
	if len(dists) == 0 {
		return models.KNNDistanceSummary{}
	}

	return models.KNNDistanceSummary{
		Median: models.Float64Ptr(metrics.Median(dists)),
		P05:    models.Float64Ptr(metrics.Percentile(dists, 5)),
		P95:    models.Float64Ptr(metrics.Percentile(dists, 95)),
	}
}

// Report composes the three privacy metrics with their pass/fail flags:
// ExactMatchOk iff the exact-match rate is precisely zero, KNNMinOk iff the
// p05 distance is defined and strictly positive.
func (a *PrivacyAnalyzer) Report(ctx context.Context, real, synth *models.Frame) (*models.PrivacyReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.logger.WithFields(logrus.Fields{
		"real_rows":  real.Rows(),
		"synth_rows": synth.Rows(),
	}).Info("Starting privacy analysis")

	start := time.Now()

	emr := a.ExactMatchRate(real, synth)
	uniq := a.UniquenessRate(synth)
	knn := a.KNNMinDistance(real, synth, a.config.KNeighbors)

	report := &models.PrivacyReport{
		ExactMatchRate:          emr,
		SyntheticUniquenessRate: uniq,
		KNNMinDistance:          knn,
		Flags: models.PrivacyFlags{
			ExactMatchOk: emr == 0,
			KNNMinOk:     knn.P05 != nil && *knn.P05 > 0,
		},
	}

	a.logger.WithFields(logrus.Fields{
		"exact_match_rate": emr,
		"uniqueness_rate":  uniq,
		"duration":         time.Since(start),
	}).Info("Privacy analysis completed")

	return report, nil
}

// imputedMatrix extracts the named numeric columns as rows, substituting the
// provided per-column medians for missing values.
func imputedMatrix(frame *models.Frame, cols []string, medians []float64) [][]float64 {
	mat := make([][]float64, frame.Rows())
	for i := 0; i < frame.Rows(); i++ {
		row := make([]float64, len(cols))
		for j, name := range cols {
			col, _ := frame.Column(name)
			v := col.Values[i]
			if math.IsNaN(v) {
				v = medians[j]
			}
			row[j] = v
		}
		mat[i] = row
	}
	return mat
}

func getDefaultPrivacyAnalyzerConfig() *PrivacyAnalyzerConfig {
	return &PrivacyAnalyzerConfig{
		KNeighbors: constants.DefaultKNeighbors,
	}
}
