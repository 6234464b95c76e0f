package constants

import "time"

// Application constants
const (
	AppName    = "tabcert"
	AppVersion = "0.1.0"
)

// Analyzer types
const (
	AnalyzerTypeFidelity = "fidelity"
	AnalyzerTypePrivacy  = "privacy"
	AnalyzerTypeUtility  = "utility"
)

// Generator types
const (
	GeneratorTypeCopula = "copula"
)

// Univariate similarity metrics
const (
	MetricKS  = "KS"
	MetricTVD = "TVD"
)

// Fidelity analysis defaults
const (
	// MinKSSamples is the minimum non-missing sample count on each side;
	// the KS statistic is undefined at or below this count.
	MinKSSamples = 5

	// UnivariateOkThreshold is the headline pass threshold for a
	// per-column distance score.
	UnivariateOkThreshold = 0.1

	// DefaultTopPairs is the number of best/worst correlation pairs
	// included in a fidelity report.
	DefaultTopPairs = 10
)

// Privacy analysis defaults
const (
	// RowKeySeparator joins a row's textual cells into its canonical key.
	RowKeySeparator = "||"

	// DefaultKNeighbors is the neighbor rank used for the kNN distance
	// distribution.
	DefaultKNeighbors = 1
)

// Utility evaluation defaults
const (
	// SplitSeed fixes the real-frame partitioning for reproducibility.
	SplitSeed = 42

	// TrainFraction is the share of the real frame used for training;
	// the remainder is halved into validation and test partitions.
	TrainFraction = 0.65

	// Threshold grid searched on the validation partition.
	ThresholdMin   = 0.05
	ThresholdMax   = 0.95
	ThresholdSteps = 19

	// LogisticMaxIterations bounds the solver inside logistic regression.
	LogisticMaxIterations = 3000

	// LogisticRegularization is the L2 penalty strength.
	LogisticRegularization = 1.0
)

// PositiveTokens is the fixed priority list of conventional "positive"
// class labels checked, in order, against the observed binary classes.
var PositiveTokens = []string{">50K", "yes", "true", "1", "Y", "Positive", "pos", "True"}

// Report formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatHTML = "html"
)

// Engine defaults
const (
	DefaultEngineTimeout  = 5 * time.Minute
	DefaultMaxConcurrency = 3
)

// Artifact layout
const (
	DefaultArtifactsDir = "artifacts"

	RunDirPrefix      = "run-"
	RunDirTimeFormat  = "20060102-150405"
	SyntheticFileName = "synthetic.csv"
	ReportJSONName    = "report.json"
	ReportHTMLName    = "report.html"
)
