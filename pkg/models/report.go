package models

import (
	"math"
	"time"
)

// Float64Ptr returns a pointer to v. Undefined metric values are carried as
// nil pointers so reports stay JSON-serializable (NaN is not valid JSON).
func Float64Ptr(v float64) *float64 { return &v }

// DefinedPtr returns a pointer to v, or nil when v is NaN.
func DefinedPtr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

// ColumnProfile is the comparison result for one common column. A nil Value
// means the score is undefined (insufficient data or mismatched kinds).
type ColumnProfile struct {
	Column string   `json:"column"`
	Metric string   `json:"metric"`
	Value  *float64 `json:"value"`
}

// CorrelationPair holds the absolute difference between the real and
// synthetic Pearson correlations of an unordered numeric column pair.
type CorrelationPair struct {
	ColI     string  `json:"col_i"`
	ColJ     string  `json:"col_j"`
	AbsDelta float64 `json:"abs_delta"`
}

// FidelityHeadline summarizes a fidelity report.
type FidelityHeadline struct {
	UnivariateOkPercent float64  `json:"univariate_ok_percent"`
	MedianScore         *float64 `json:"median_score"`
	MedianCorrDelta     *float64 `json:"median_corr_delta"`
}

// FidelityReport is the output of the fidelity analyzer.
type FidelityReport struct {
	Headline   FidelityHeadline  `json:"headline"`
	Univariate []ColumnProfile   `json:"univariate"`
	CorrTop    []CorrelationPair `json:"corr_top"`
	CorrWorst  []CorrelationPair `json:"corr_worst"`
}

// KNNDistanceSummary summarizes the k-th-nearest-neighbor distance
// distribution of synthetic rows against the real frame. Nil fields mean no
// common numeric columns exist.
type KNNDistanceSummary struct {
	Median *float64 `json:"median"`
	P05    *float64 `json:"p05"`
	P95    *float64 `json:"p95"`
}

// PrivacyFlags are the pass/fail outcomes derived from the privacy metrics.
type PrivacyFlags struct {
	ExactMatchOk bool `json:"exact_match_ok"`
	KNNMinOk     bool `json:"knn_min_ok"`
}

// PrivacyReport is the output of the privacy analyzer.
type PrivacyReport struct {
	ExactMatchRate          float64            `json:"exact_match_rate"`
	SyntheticUniquenessRate float64            `json:"synthetic_uniqueness_rate"`
	KNNMinDistance          KNNDistanceSummary `json:"knn_min_distance"`
	Flags                   PrivacyFlags       `json:"flags"`
}

// UtilityReport is the output of the utility transfer evaluator. Binary
// targets populate the AUROC/PR-AUC/F1@tuned fields; multiclass targets
// populate the macro-F1 fields. Deltas are real-trained minus
// synthetic-trained.
type UtilityReport struct {
	Binary        bool     `json:"binary"`
	PositiveLabel string   `json:"positive_label,omitempty"`
	ThresholdUsed *float64 `json:"threshold_used,omitempty"`

	SynthAUROC *float64 `json:"synth_to_real_auroc,omitempty"`
	RealAUROC  *float64 `json:"real_to_real_auroc,omitempty"`
	DeltaAUROC *float64 `json:"delta_auroc,omitempty"`

	SynthPRAUC *float64 `json:"synth_to_real_prauc,omitempty"`
	RealPRAUC  *float64 `json:"real_to_real_prauc,omitempty"`
	DeltaPRAUC *float64 `json:"delta_prauc,omitempty"`

	SynthF1Tuned *float64 `json:"synth_to_real_f1_tuned,omitempty"`
	RealF1Tuned  *float64 `json:"real_to_real_f1_tuned,omitempty"`
	DeltaF1Tuned *float64 `json:"delta_f1_tuned,omitempty"`

	SynthMacroF1 *float64 `json:"synth_to_real_f1_macro,omitempty"`
	RealMacroF1  *float64 `json:"real_to_real_f1_macro,omitempty"`
	DeltaMacroF1 *float64 `json:"delta_f1_macro,omitempty"`
}

// CertificationSummary aggregates the three analyzer reports for one
// certification run. Analyzer failures are recorded per analyzer type rather
// than aborting the run.
type CertificationSummary struct {
	ID            string            `json:"id"`
	Fidelity      *FidelityReport   `json:"fidelity,omitempty"`
	Privacy       *PrivacyReport    `json:"privacy,omitempty"`
	Utility       *UtilityReport    `json:"utility,omitempty"`
	Errors        map[string]string `json:"errors,omitempty"`
	ExecutionTime time.Duration     `json:"execution_time"`
	CreatedAt     time.Time         `json:"created_at"`
}
