package main

import (
	"fmt"

	"github.com/caarlos0/env/v7"
	"github.com/spf13/cobra"
)

type config struct {
	LogLevel logLevel `env:"GSMDECODE_LOG_LEVEL" envDefault:"info"`
	// Raw selects compact JSON output without colors.
	Raw bool `env:"GSMDECODE_RAW" envDefault:"false"`
	// Tolerant accepts PDUs that are shorter than their declared length.
	Tolerant bool `env:"GSMDECODE_TOLERANT" envDefault:"false"`
}

func loadConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

const (
	logLevelFlag = "log-level"
	rawFlag      = "raw"
	tolerantFlag = "tolerant"
)

func addConfigFlags(cmd *cobra.Command, cfg *config) {
	cmd.PersistentFlags().String(logLevelFlag, cfg.LogLevel.String(), "log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&cfg.Raw, rawFlag, cfg.Raw, "compact JSON output without colors")
	cmd.PersistentFlags().BoolVar(&cfg.Tolerant, tolerantFlag, cfg.Tolerant, "accept PDUs that are shorter than their declared length")
}

// applyConfigFlags lets flags that were given explicitly override the environment.
func applyConfigFlags(cmd *cobra.Command, cfg *config) error {
	flag := cmd.Flags().Lookup(logLevelFlag)
	if flag == nil || !flag.Changed {
		return nil
	}
	return cfg.LogLevel.UnmarshalText([]byte(flag.Value.String()))
}
