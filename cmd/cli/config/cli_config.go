package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/inferloop/tabcert/pkg/constants"
)

type CLIConfig struct {
	DefaultOutput string           `mapstructure:"default_output"`
	DefaultFormat string           `mapstructure:"default_format"`
	ArtifactsDir  string           `mapstructure:"artifacts_dir"`
	Evaluation    EvaluationConfig `mapstructure:"evaluation"`
	Generator     GeneratorConfig  `mapstructure:"generator"`
}

type EvaluationConfig struct {
	TopPairs   int   `mapstructure:"top_pairs"`
	KNeighbors int   `mapstructure:"k_neighbors"`
	Seed       int64 `mapstructure:"seed"`
}

type GeneratorConfig struct {
	Seed            int64 `mapstructure:"seed"`
	EnforceMinMax   bool  `mapstructure:"enforce_min_max"`
	EnforceRounding bool  `mapstructure:"enforce_rounding"`
}

func LoadConfig(cfgFile string) (*CLIConfig, error) {
	config := &CLIConfig{
		DefaultOutput: "-",
		DefaultFormat: constants.FormatText,
		ArtifactsDir:  constants.DefaultArtifactsDir,
		Evaluation: EvaluationConfig{
			TopPairs:   constants.DefaultTopPairs,
			KNeighbors: constants.DefaultKNeighbors,
			Seed:       constants.SplitSeed,
		},
		Generator: GeneratorConfig{
			EnforceMinMax:   true,
			EnforceRounding: true,
		},
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}

		configPath := filepath.Join(home, ".tabcert")
		viper.AddConfigPath(configPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("TABCERT")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("default_output", config.DefaultOutput)
	viper.SetDefault("default_format", config.DefaultFormat)
	viper.SetDefault("artifacts_dir", config.ArtifactsDir)
	viper.SetDefault("evaluation.top_pairs", config.Evaluation.TopPairs)
	viper.SetDefault("evaluation.k_neighbors", config.Evaluation.KNeighbors)
	viper.SetDefault("evaluation.seed", config.Evaluation.Seed)
	viper.SetDefault("generator.seed", config.Generator.Seed)
	viper.SetDefault("generator.enforce_min_max", config.Generator.EnforceMinMax)
	viper.SetDefault("generator.enforce_rounding", config.Generator.EnforceRounding)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}
