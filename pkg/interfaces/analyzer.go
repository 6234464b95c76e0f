package interfaces

import (
	"context"

	"github.com/inferloop/tabcert/pkg/models"
)

// Analyzer is the common surface of the three report analyzers.
type Analyzer interface {
	// GetType returns the analyzer type
	GetType() string

	// GetName returns a human-readable name for the analyzer
	GetName() string

	// GetDescription returns a description of the analyzer
	GetDescription() string
}

// FidelityAnalyzer compares per-column distributions and pairwise numeric
// correlations between a real and a synthetic frame.
type FidelityAnalyzer interface {
	Analyzer

	// UnivariateSimilarity scores every common column, ordered ascending
	// (best similarity first, undefined scores last)
	UnivariateSimilarity(ctx context.Context, real, synth *models.Frame) ([]models.ColumnProfile, error)

	// CorrelationDelta scores every unordered pair of common numeric
	// columns, ordered ascending
	CorrelationDelta(ctx context.Context, real, synth *models.Frame) ([]models.CorrelationPair, error)

	// Report composes the headline numbers with the full tables
	Report(ctx context.Context, real, synth *models.Frame) (*models.FidelityReport, error)
}

// PrivacyAnalyzer measures record-level replication and proximity risk.
type PrivacyAnalyzer interface {
	Analyzer

	// ExactMatchRate is the fraction of synthetic rows whose canonical key
	// appears among the real rows
	ExactMatchRate(real, synth *models.Frame) float64

	// UniquenessRate is the fraction of rows unique within the frame
	UniquenessRate(frame *models.Frame) float64

	// KNNMinDistance summarizes the k-th-nearest-neighbor distances of
	// synthetic rows to the real frame
	KNNMinDistance(real, synth *models.Frame, k int) models.KNNDistanceSummary

	// Report composes the metrics with their pass/fail flags
	Report(ctx context.Context, real, synth *models.Frame) (*models.PrivacyReport, error)
}

// UtilityEvaluator trains twin classifiers on synthetic and real data and
// compares their downstream performance on a held-out real test set.
type UtilityEvaluator interface {
	Analyzer

	// Report evaluates utility transfer for the given target column
	Report(ctx context.Context, real, synth *models.Frame, target string) (*models.UtilityReport, error)
}
