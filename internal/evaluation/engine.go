package evaluation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/inferloop/tabcert/pkg/constants"
	"github.com/inferloop/tabcert/pkg/errors"
	"github.com/inferloop/tabcert/pkg/interfaces"
	"github.com/inferloop/tabcert/pkg/models"
)

// EngineConfig contains configuration for the certification engine
type EngineConfig struct {
	TopPairs             int           `json:"top_pairs"`
	KNeighbors           int           `json:"k_neighbors"`
	Seed                 int64         `json:"seed"`
	ConcurrentEvaluation bool          `json:"concurrent_evaluation"`
	Timeout              time.Duration `json:"timeout"`
}

// Engine runs the three analyzers over one (real, synthetic) frame pair and
// aggregates their reports. The analyzers are independent; a failure in one
// is recorded in the summary without aborting the others.
type Engine struct {
	config   *EngineConfig
	logger   *logrus.Logger
	fidelity interfaces.FidelityAnalyzer
	privacy  interfaces.PrivacyAnalyzer
	utility  interfaces.UtilityEvaluator
}

// NewEngine creates a certification engine with default analyzers.
func NewEngine(config *EngineConfig, logger *logrus.Logger) *Engine {
	if config == nil {
		config = getDefaultEngineConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Engine{
		config: config,
		logger: logger,
		fidelity: NewFidelityAnalyzer(&FidelityAnalyzerConfig{
			TopPairs:    config.TopPairs,
			OkThreshold: constants.UnivariateOkThreshold,
		}, logger),
		privacy: NewPrivacyAnalyzer(&PrivacyAnalyzerConfig{
			KNeighbors: config.KNeighbors,
		}, logger),
		utility: NewUtilityEvaluator(&UtilityEvaluatorConfig{
			Seed:          config.Seed,
			TrainFraction: constants.TrainFraction,
		}, logger),
	}
}

// Certify runs fidelity and privacy analysis, plus utility transfer
// evaluation when a target column is given, and aggregates the reports.
func (e *Engine) Certify(ctx context.Context, real, synth *models.Frame, target string) (*models.CertificationSummary, error) {
	if real == nil || synth == nil {
		return nil, errors.NewValidationError(errors.CodeInvalidInput, "both real and synthetic frames are required")
	}

	e.logger.WithFields(logrus.Fields{
		"real_rows":  real.Rows(),
		"synth_rows": synth.Rows(),
		"target":     target,
		"concurrent": e.config.ConcurrentEvaluation,
	}).Info("Starting certification run")

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	summary := &models.CertificationSummary{
		ID:        uuid.NewString(),
		Errors:    make(map[string]string),
		CreatedAt: start,
	}

	var mu sync.Mutex
	run := func(name string, fn func() (func(), error)) func() error {
		return func() error {
			apply, err := fn()
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				e.logger.WithFields(logrus.Fields{
					"analyzer": name,
					"error":    err.Error(),
				}).Warn("Analyzer failed")
				summary.Errors[name] = err.Error()
				return nil
			}
			apply()
			return nil
		}
	}

	tasks := []func() error{
		run(constants.AnalyzerTypeFidelity, func() (func(), error) {
			report, err := e.fidelity.Report(ctx, real, synth)
			if err != nil {
				return nil, err
			}
			return func() { summary.Fidelity = report }, nil
		}),
		run(constants.AnalyzerTypePrivacy, func() (func(), error) {
			report, err := e.privacy.Report(ctx, real, synth)
			if err != nil {
				return nil, err
			}
			return func() { summary.Privacy = report }, nil
		}),
	}
	if target != "" {
		tasks = append(tasks, run(constants.AnalyzerTypeUtility, func() (func(), error) {
			report, err := e.utility.Report(ctx, real, synth, target)
			if err != nil {
				return nil, err
			}
			return func() { summary.Utility = report }, nil
		}))
	}

	if e.config.ConcurrentEvaluation {
		grp, _ := errgroup.WithContext(ctx)
		grp.SetLimit(constants.DefaultMaxConcurrency)
		for _, task := range tasks {
			grp.Go(task)
		}
		grp.Wait()
	} else {
		for _, task := range tasks {
			task()
		}
	}

	summary.ExecutionTime = time.Since(start)

	e.logger.WithFields(logrus.Fields{
		"id":             summary.ID,
		"failed":         len(summary.Errors),
		"execution_time": summary.ExecutionTime,
	}).Info("Certification run completed")

	return summary, nil
}

func getDefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		TopPairs:             constants.DefaultTopPairs,
		KNeighbors:           constants.DefaultKNeighbors,
		Seed:                 constants.SplitSeed,
		ConcurrentEvaluation: true,
		Timeout:              constants.DefaultEngineTimeout,
	}
}
