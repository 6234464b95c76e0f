package evaluation

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/inferloop/tabcert/internal/evaluation/metrics"
	"github.com/inferloop/tabcert/internal/ml"
	"github.com/inferloop/tabcert/internal/preprocess"
	"github.com/inferloop/tabcert/pkg/constants"
	"github.com/inferloop/tabcert/pkg/errors"
	"github.com/inferloop/tabcert/pkg/interfaces"
	"github.com/inferloop/tabcert/pkg/models"
)

// UtilityEvaluator trains a classifier on synthetic data and a twin on real
// data, through one shared preprocessing transformer, and compares their
// downstream performance on a held-out real test partition.
type UtilityEvaluator struct {
	logger *logrus.Logger
	config *UtilityEvaluatorConfig
}

// UtilityEvaluatorConfig contains configuration for utility evaluation
type UtilityEvaluatorConfig struct {
	Seed          int64      `json:"seed"`
	TrainFraction float64    `json:"train_fraction"`
	Logistic      *ml.Config `json:"logistic"`
}

// NewUtilityEvaluator creates a new utility transfer evaluator
func NewUtilityEvaluator(config *UtilityEvaluatorConfig, logger *logrus.Logger) interfaces.UtilityEvaluator {
	if config == nil {
		config = getDefaultUtilityEvaluatorConfig()
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &UtilityEvaluator{
		logger: logger,
		config: config,
	}
}

// GetType returns the analyzer type
func (e *UtilityEvaluator) GetType() string {
	return constants.AnalyzerTypeUtility
}

// GetName returns a human-readable name for the analyzer
func (e *UtilityEvaluator) GetName() string {
	return "Utility Transfer Evaluator"
}

// GetDescription returns a description of the analyzer
func (e *UtilityEvaluator) GetDescription() string {
	return "Compares downstream predictive performance of synthetic-trained and real-trained classifiers"
}

// Report evaluates utility transfer for the given target column. The target
// must be present in both frames; a missing target is a contract violation
// reported as a typed error, never a silent skip.
func (e *UtilityEvaluator) Report(ctx context.Context, real, synth *models.Frame, target string) (*models.UtilityReport, error) {
	if !real.Has(target) || !synth.Has(target) {
		return nil, errors.NewEvaluationError(errors.CodeMissingTarget,
			"target column must be present in both frames").WithContext("target", target)
	}

	e.logger.WithFields(logrus.Fields{
		"target":     target,
		"real_rows":  real.Rows(),
		"synth_rows": synth.Rows(),
	}).Info("Starting utility transfer evaluation")

	start := time.Now()

	realTarget, _ := real.Column(target)
	realLabels := labelVector(realTarget)
	binary := distinctCount(realTarget) == 2

	// Split real 65/35, then the 35% remainder 50/50, with the same seed;
	// stratify on the target when it is binary.
	splitter := preprocess.NewSplitter(e.config.Seed)
	var strat []string
	if binary {
		strat = realLabels
	}
	trainIdx, tempIdx := splitter.Split(real.Rows(), strat, 1-e.config.TrainFraction)
	tempLabels := subset(realLabels, tempIdx)
	var tempStrat []string
	if binary {
		tempStrat = tempLabels
	}
	valRel, testRel := splitter.Split(len(tempIdx), tempStrat, 0.5)

	realTrain := real.SelectRows(trainIdx)
	realVal := real.SelectRows(mapIndices(tempIdx, valRel))
	realTest := real.SelectRows(mapIndices(tempIdx, testRel))

	// One transformer, fit over the union of real-train rows and the full
	// synthetic frame, reused for every model fit and prediction.
	var features []string
	kinds := make(map[string]models.ColumnKind)
	for _, name := range real.Names() {
		if name == target {
			continue
		}
		col, _ := real.Column(name)
		features = append(features, name)
		kinds[name] = col.Kind
	}
	transformer := preprocess.FitTransformer([]*models.Frame{realTrain, synth}, features, kinds)

	xSynth := transformer.Transform(synth)
	xTrain := transformer.Transform(realTrain)
	xVal := transformer.Transform(realVal)
	xTest := transformer.Transform(realTest)

	synthTarget, _ := synth.Column(target)
	synthLabels := labelVector(synthTarget)
	trainLabels := subset(realLabels, trainIdx)
	valLabels := frameLabels(realVal, target)
	testLabels := frameLabels(realTest, target)

	var report *models.UtilityReport
	var err error
	if binary {
		report, err = e.binaryReport(ctx, realTarget, xSynth, synthLabels, xTrain, trainLabels, xVal, valLabels, xTest, testLabels)
	} else {
		report, err = e.multiclassReport(ctx, xSynth, synthLabels, xTrain, trainLabels, xTest, testLabels)
	}
	if err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"target":   target,
		"binary":   binary,
		"duration": time.Since(start),
	}).Info("Utility transfer evaluation completed")

	return report, nil
}

func (e *UtilityEvaluator) binaryReport(ctx context.Context, realTarget *models.Column,
	xSynth [][]float64, synthLabels []string,
	xTrain [][]float64, trainLabels []string,
	xVal [][]float64, valLabels []string,
	xTest [][]float64, testLabels []string) (*models.UtilityReport, error) {

	pos := positiveLabel(realTarget)

	ySynth := binarize(synthLabels, pos)
	yTrain := binarize(trainLabels, pos)
	yVal := binarize(valLabels, pos)
	yTest := binarize(testLabels, pos)

	// The two fits are independent; only the transformer fit (already done)
	// orders before them.
	var synthModel, realModel *ml.Model
	grp, _ := errgroup.WithContext(ctx)
	grp.Go(func() error {
		m, err := ml.TrainBinary(xSynth, ySynth, e.config.Logistic)
		if err != nil {
			return errors.WrapError(err, errors.ErrorTypeEvaluation, errors.CodeTrainingFailed,
				"synthetic-trained model fit failed")
		}
		synthModel = m
		return nil
	})
	grp.Go(func() error {
		m, err := ml.TrainBinary(xTrain, yTrain, e.config.Logistic)
		if err != nil {
			return errors.WrapError(err, errors.ErrorTypeEvaluation, errors.CodeTrainingFailed,
				"real-trained model fit failed")
		}
		realModel = m
		return nil
	})
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	synthThr := bestThreshold(yVal, synthModel.ProbaAll(xVal))
	realThr := bestThreshold(yVal, realModel.ProbaAll(xVal))

	synthProba := synthModel.ProbaAll(xTest)
	realProba := realModel.ProbaAll(xTest)

	// A single-class test partition leaves rank metrics undefined; those
	// carry through as nil, never as NaN.
	synthAUROC := models.DefinedPtr(metrics.AUROC(yTest, synthProba))
	realAUROC := models.DefinedPtr(metrics.AUROC(yTest, realProba))
	synthPRAUC := models.DefinedPtr(metrics.AveragePrecision(yTest, synthProba))
	realPRAUC := models.DefinedPtr(metrics.AveragePrecision(yTest, realProba))
	synthF1 := models.DefinedPtr(metrics.F1Score(yTest, atThreshold(synthProba, synthThr)))
	realF1 := models.DefinedPtr(metrics.F1Score(yTest, atThreshold(realProba, realThr)))

	return &models.UtilityReport{
		Binary:        true,
		PositiveLabel: pos,
		ThresholdUsed: models.Float64Ptr(synthThr),
		SynthAUROC:    synthAUROC,
		RealAUROC:     realAUROC,
		DeltaAUROC:    deltaPtr(realAUROC, synthAUROC),
		SynthPRAUC:    synthPRAUC,
		RealPRAUC:     realPRAUC,
		DeltaPRAUC:    deltaPtr(realPRAUC, synthPRAUC),
		SynthF1Tuned:  synthF1,
		RealF1Tuned:   realF1,
		DeltaF1Tuned:  deltaPtr(realF1, synthF1),
	}, nil
}

func (e *UtilityEvaluator) multiclassReport(ctx context.Context,
	xSynth [][]float64, synthLabels []string,
	xTrain [][]float64, trainLabels []string,
	xTest [][]float64, testLabels []string) (*models.UtilityReport, error) {

	var synthModel, realModel *ml.OneVsRest
	grp, _ := errgroup.WithContext(ctx)
	grp.Go(func() error {
		m, err := ml.TrainOneVsRest(xSynth, synthLabels, e.config.Logistic)
		if err != nil {
			return errors.WrapError(err, errors.ErrorTypeEvaluation, errors.CodeTrainingFailed,
				"synthetic-trained model fit failed")
		}
		synthModel = m
		return nil
	})
	grp.Go(func() error {
		m, err := ml.TrainOneVsRest(xTrain, trainLabels, e.config.Logistic)
		if err != nil {
			return errors.WrapError(err, errors.ErrorTypeEvaluation, errors.CodeTrainingFailed,
				"real-trained model fit failed")
		}
		realModel = m
		return nil
	})
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	synthF1 := models.DefinedPtr(metrics.MacroF1(testLabels, synthModel.PredictAll(xTest)))
	realF1 := models.DefinedPtr(metrics.MacroF1(testLabels, realModel.PredictAll(xTest)))

	return &models.UtilityReport{
		Binary:       false,
		SynthMacroF1: synthF1,
		RealMacroF1:  realF1,
		DeltaMacroF1: deltaPtr(realF1, synthF1),
	}, nil
}

// positiveLabel picks the positive class from a binary target: the first
// token of the fixed priority list found among the observed classes, else
// the minority class.
func positiveLabel(target *models.Column) string {
	classes := target.Categories()
	observed := make(map[string]bool, len(classes))
	for _, c := range classes {
		observed[c] = true
	}
	for _, token := range constants.PositiveTokens {
		if observed[token] {
			return token
		}
	}

	counts := target.Frequencies()
	minority, minorityFreq := "", 2.0
	for _, c := range classes {
		if counts[c] < minorityFreq {
			minority, minorityFreq = c, counts[c]
		}
	}
	return minority
}

// bestThreshold scans 19 evenly spaced thresholds in [0.05, 0.95] and keeps
// the one maximizing F1 on the validation labels. Only a strict improvement
// replaces the current best, so ties favor the lowest threshold.
func bestThreshold(yTrue []bool, proba []float64) float64 {
	bestT, bestF1 := 0.5, -1.0
	step := (constants.ThresholdMax - constants.ThresholdMin) / float64(constants.ThresholdSteps-1)
	for i := 0; i < constants.ThresholdSteps; i++ {
		t := constants.ThresholdMin + float64(i)*step
		f1 := metrics.F1Score(yTrue, atThreshold(proba, t))
		if f1 > bestF1 {
			bestF1, bestT = f1, t
		}
	}
	return bestT
}

// deltaPtr subtracts b from a; the delta is undefined when either side is.
func deltaPtr(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	return models.Float64Ptr(*a - *b)
}

func atThreshold(proba []float64, t float64) []bool {
	out := make([]bool, len(proba))
	for i, p := range proba {
		out[i] = p >= t
	}
	return out
}

func binarize(labels []string, pos string) []bool {
	out := make([]bool, len(labels))
	for i, l := range labels {
		out[i] = l == pos
	}
	return out
}

func labelVector(col *models.Column) []string {
	out := make([]string, len(col.Raw))
	copy(out, col.Raw)
	return out
}

func frameLabels(frame *models.Frame, target string) []string {
	col, _ := frame.Column(target)
	return labelVector(col)
}

func subset(labels []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = labels[j]
	}
	return out
}

func mapIndices(base, rel []int) []int {
	out := make([]int, len(rel))
	for i, r := range rel {
		out[i] = base[r]
	}
	return out
}

func distinctCount(col *models.Column) int {
	return len(col.Categories())
}

func getDefaultUtilityEvaluatorConfig() *UtilityEvaluatorConfig {
	return &UtilityEvaluatorConfig{
		Seed:          constants.SplitSeed,
		TrainFraction: constants.TrainFraction,
		Logistic:      ml.DefaultConfig(),
	}
}
