package commands

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inferloop/tabcert/cmd/cli/config"
	"github.com/inferloop/tabcert/internal/dataset"
	"github.com/inferloop/tabcert/internal/generators"
)

type GenerateOptions struct {
	InputFile  string
	OutputFile string
	Rows       int
	Seed       int64
	RawMinMax  bool
}

func NewGenerateCmd() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate synthetic tabular data",
		Long: `Generate synthetic tabular data by fitting a Gaussian copula to a real
CSV dataset and sampling new rows from it.`,
		Example: `  # Generate as many rows as the input has
  tabcert generate --input real.csv --output synth.csv

  # Generate 5000 rows with a fixed seed
  tabcert generate --input real.csv --rows 5000 --seed 7 --output synth.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				if cfg, err := config.LoadConfig(cmd.Flag("config").Value.String()); err == nil {
					opts.Seed = cfg.Generator.Seed
				}
			}
			return runGenerate(opts)
		},
	}

	// Add flags
	cmd.Flags().StringVarP(&opts.InputFile, "input", "i", "", "Real reference CSV file (required)")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "synthetic.csv", "Output CSV file")
	cmd.Flags().IntVarP(&opts.Rows, "rows", "n", 0, "Number of rows to sample (0 = same as input)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "Random seed (0 = time-based)")
	cmd.Flags().BoolVar(&opts.RawMinMax, "raw-min-max", false, "Allow sampled numerics outside the observed range")

	cmd.MarkFlagRequired("input")

	return cmd
}

func runGenerate(opts *GenerateOptions) error {
	logger := logrus.New()
	if !verboseLogging() {
		logger.SetLevel(logrus.WarnLevel)
	}

	loader := dataset.NewLoader(logger)
	real, err := loader.Load(opts.InputFile)
	if err != nil {
		return fmt.Errorf("failed to load input data: %w", err)
	}
	fmt.Printf("Loaded real data: %s (%d rows, %d columns)\n", opts.InputFile, real.Rows(), real.Cols())

	generator := generators.NewCopulaGenerator(&generators.CopulaConfig{
		EnforceMinMax:   !opts.RawMinMax,
		EnforceRounding: true,
		Seed:            opts.Seed,
	}, logger)
	defer generator.Close()

	ctx := context.Background()
	if err := generator.Fit(ctx, real); err != nil {
		return fmt.Errorf("failed to fit generator: %w", err)
	}

	rows := opts.Rows
	if rows <= 0 {
		rows = real.Rows()
	}
	synth, err := generator.Sample(ctx, rows)
	if err != nil {
		return fmt.Errorf("failed to sample synthetic data: %w", err)
	}

	if err := loader.Write(opts.OutputFile, synth); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Printf("Generated %d synthetic rows to %s\n", synth.Rows(), opts.OutputFile)

	return nil
}
