package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inferloop/tabcert/cmd/cli/config"
	"github.com/inferloop/tabcert/internal/artifacts"
	"github.com/inferloop/tabcert/internal/dataset"
	"github.com/inferloop/tabcert/internal/evaluation"
	"github.com/inferloop/tabcert/pkg/constants"
	"github.com/inferloop/tabcert/pkg/models"
)

type EvaluateOptions struct {
	RealFile      string
	SyntheticFile string
	Target        string
	TopPairs      int
	KNeighbors    int
	Seed          int64
	ReportFormat  string
	OutputFile    string
	ArtifactsDir  string
	SaveArtifacts bool
}

func NewEvaluateCmd() *cobra.Command {
	opts := &EvaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Certify synthetic tabular data against real reference data",
		Long: `Evaluate synthetic tabular data by comparing it with the real data it
was derived from: distributional fidelity per column, privacy leakage
indicators, and utility transfer via twin classifiers.`,
		Example: `  # Full certification with a prediction target
  tabcert evaluate --real real.csv --synthetic synth.csv --target income

  # Fidelity and privacy only
  tabcert evaluate --real real.csv --synthetic synth.csv

  # Write an HTML report and save run artifacts
  tabcert evaluate --real real.csv --synthetic synth.csv --target income \
    --report-format html --output report.html --save-artifacts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyEvaluateDefaults(cmd, opts)
			return runEvaluate(opts)
		},
	}

	// Add flags
	cmd.Flags().StringVarP(&opts.RealFile, "real", "r", "", "Real reference CSV file (required)")
	cmd.Flags().StringVarP(&opts.SyntheticFile, "synthetic", "s", "", "Synthetic CSV file (required)")
	cmd.Flags().StringVarP(&opts.Target, "target", "t", "", "Target column for utility transfer (omit to skip)")
	cmd.Flags().IntVar(&opts.TopPairs, "top-pairs", constants.DefaultTopPairs, "Number of best/worst correlation pairs to report")
	cmd.Flags().IntVar(&opts.KNeighbors, "k-neighbors", constants.DefaultKNeighbors, "Neighbor count for the privacy distance metric")
	cmd.Flags().Int64Var(&opts.Seed, "seed", constants.SplitSeed, "Random seed for the utility split")
	cmd.Flags().StringVar(&opts.ReportFormat, "report-format", constants.FormatText, "Report format (text, json, html)")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "-", "Output file for report (- for stdout)")
	cmd.Flags().StringVar(&opts.ArtifactsDir, "artifacts-dir", constants.DefaultArtifactsDir, "Base directory for run artifacts")
	cmd.Flags().BoolVar(&opts.SaveArtifacts, "save-artifacts", false, "Save the JSON and HTML reports into a run directory")

	cmd.MarkFlagRequired("real")
	cmd.MarkFlagRequired("synthetic")

	return cmd
}

// applyEvaluateDefaults fills flags the user did not set from the CLI config
// file, when one can be loaded.
func applyEvaluateDefaults(cmd *cobra.Command, opts *EvaluateOptions) {
	cfg, err := config.LoadConfig(cmd.Flag("config").Value.String())
	if err != nil {
		return
	}
	if !cmd.Flags().Changed("top-pairs") {
		opts.TopPairs = cfg.Evaluation.TopPairs
	}
	if !cmd.Flags().Changed("k-neighbors") {
		opts.KNeighbors = cfg.Evaluation.KNeighbors
	}
	if !cmd.Flags().Changed("seed") {
		opts.Seed = cfg.Evaluation.Seed
	}
	if !cmd.Flags().Changed("report-format") {
		opts.ReportFormat = cfg.DefaultFormat
	}
	if !cmd.Flags().Changed("output") {
		opts.OutputFile = cfg.DefaultOutput
	}
	if !cmd.Flags().Changed("artifacts-dir") {
		opts.ArtifactsDir = cfg.ArtifactsDir
	}
}

func runEvaluate(opts *EvaluateOptions) error {
	fmt.Printf("Certifying synthetic data...\n")
	fmt.Printf("Real File: %s\n", opts.RealFile)
	fmt.Printf("Synthetic File: %s\n", opts.SyntheticFile)
	if opts.Target != "" {
		fmt.Printf("Target: %s\n", opts.Target)
	}

	logger := logrus.New()
	if !verboseLogging() {
		logger.SetLevel(logrus.WarnLevel)
	}

	loader := dataset.NewLoader(logger)
	real, err := loader.Load(opts.RealFile)
	if err != nil {
		return fmt.Errorf("failed to load real data: %w", err)
	}
	synth, err := loader.Load(opts.SyntheticFile)
	if err != nil {
		return fmt.Errorf("failed to load synthetic data: %w", err)
	}

	engine := evaluation.NewEngine(&evaluation.EngineConfig{
		TopPairs:             opts.TopPairs,
		KNeighbors:           opts.KNeighbors,
		Seed:                 opts.Seed,
		ConcurrentEvaluation: true,
		Timeout:              constants.DefaultEngineTimeout,
	}, logger)

	summary, err := engine.Certify(context.Background(), real, synth, opts.Target)
	if err != nil {
		return fmt.Errorf("certification failed: %w", err)
	}

	if err := outputSummary(summary, opts); err != nil {
		return fmt.Errorf("failed to output results: %w", err)
	}

	if opts.SaveArtifacts {
		writer := artifacts.NewWriter(opts.ArtifactsDir, logger)
		paths, err := writer.SaveRun(nil, summary)
		if err != nil {
			return fmt.Errorf("failed to save artifacts: %w", err)
		}
		fmt.Printf("\nArtifacts saved to %s\n", paths.RunDir)
	}

	return nil
}

func outputSummary(summary *models.CertificationSummary, opts *EvaluateOptions) error {
	switch strings.ToLower(opts.ReportFormat) {
	case constants.FormatJSON:
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		return writeOutput(string(data)+"\n", opts.OutputFile)
	case constants.FormatHTML:
		html, err := artifacts.RenderHTML(summary)
		if err != nil {
			return err
		}
		return writeOutput(html, opts.OutputFile)
	default:
		return writeOutput(formatSummaryText(summary), opts.OutputFile)
	}
}

func formatSummaryText(summary *models.CertificationSummary) string {
	output := "\nCertification Results:\n"
	output += "======================\n\n"
	output += fmt.Sprintf("Run ID: %s\n", summary.ID)
	output += fmt.Sprintf("Execution Time: %s\n", summary.ExecutionTime.String())
	output += "\n"

	if summary.Fidelity != nil {
		output += "Fidelity:\n"
		output += fmt.Sprintf("- Univariate OK: %.1f%%\n", summary.Fidelity.Headline.UnivariateOkPercent)
		output += fmt.Sprintf("- Median Score: %s\n", formatValue(summary.Fidelity.Headline.MedianScore))
		output += fmt.Sprintf("- Median Corr Delta: %s\n", formatValue(summary.Fidelity.Headline.MedianCorrDelta))
		if len(summary.Fidelity.CorrWorst) > 0 {
			output += "- Worst Correlation Deltas:\n"
			for _, pair := range summary.Fidelity.CorrWorst {
				output += fmt.Sprintf("    %s / %s: %.4f\n", pair.ColI, pair.ColJ, pair.AbsDelta)
			}
		}
		output += "\n"
	}

	if summary.Privacy != nil {
		output += "Privacy:\n"
		output += fmt.Sprintf("- Exact Match Rate: %.4f\n", summary.Privacy.ExactMatchRate)
		output += fmt.Sprintf("- Synthetic Uniqueness Rate: %.4f\n", summary.Privacy.SyntheticUniquenessRate)
		output += fmt.Sprintf("- kNN Distance (p05/median/p95): %s / %s / %s\n",
			formatValue(summary.Privacy.KNNMinDistance.P05),
			formatValue(summary.Privacy.KNNMinDistance.Median),
			formatValue(summary.Privacy.KNNMinDistance.P95))
		output += fmt.Sprintf("- Exact Match OK: %s\n", passFail(summary.Privacy.Flags.ExactMatchOk))
		output += fmt.Sprintf("- kNN Min Distance OK: %s\n", passFail(summary.Privacy.Flags.KNNMinOk))
		output += "\n"
	}

	if summary.Utility != nil {
		output += "Utility Transfer:\n"
		if summary.Utility.Binary {
			output += fmt.Sprintf("- Positive Label: %s\n", summary.Utility.PositiveLabel)
			output += fmt.Sprintf("- Tuned Threshold: %s\n", formatValue(summary.Utility.ThresholdUsed))
			output += fmt.Sprintf("- AUROC (synth->real / real->real / delta): %s / %s / %s\n",
				formatValue(summary.Utility.SynthAUROC), formatValue(summary.Utility.RealAUROC), formatValue(summary.Utility.DeltaAUROC))
			output += fmt.Sprintf("- PR-AUC (synth->real / real->real / delta): %s / %s / %s\n",
				formatValue(summary.Utility.SynthPRAUC), formatValue(summary.Utility.RealPRAUC), formatValue(summary.Utility.DeltaPRAUC))
			output += fmt.Sprintf("- F1 tuned (synth->real / real->real / delta): %s / %s / %s\n",
				formatValue(summary.Utility.SynthF1Tuned), formatValue(summary.Utility.RealF1Tuned), formatValue(summary.Utility.DeltaF1Tuned))
		} else {
			output += fmt.Sprintf("- Macro F1 (synth->real / real->real / delta): %s / %s / %s\n",
				formatValue(summary.Utility.SynthMacroF1), formatValue(summary.Utility.RealMacroF1), formatValue(summary.Utility.DeltaMacroF1))
		}
		output += "\n"
	}

	if len(summary.Errors) > 0 {
		output += "Errors:\n"
		for name, msg := range summary.Errors {
			output += fmt.Sprintf("- %s: %s\n", name, msg)
		}
	}

	return output
}

func formatValue(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", *v)
}

func passFail(ok bool) string {
	if ok {
		return "PASSED"
	}
	return "FAILED"
}

func writeOutput(content, outputFile string) error {
	if outputFile == "" || outputFile == "-" {
		fmt.Print(content)
		return nil
	}
	if err := os.WriteFile(outputFile, []byte(content), 0o644); err != nil {
		return err
	}
	fmt.Printf("Report written to %s\n", outputFile)
	return nil
}
