package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/janhq/trading-agents/internal/configs"
	"github.com/janhq/trading-agents/internal/infrastructure/logger"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "agentctl",
		Short: "Operator CLI for the trading agents model catalog and cache",
		Long: `agentctl inspects the model catalog and agent routing built from the
environment, and reads or invalidates entries in the shared cache.

Examples:
  agentctl models list --provider openai
  agentctl models route bullish_researcher
  agentctl models cost gpt-4o 2500
  agentctl cache ttl market_data:price:AAPL
  agentctl cache invalidate AAPL`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("env-file", ".env", "Environment file loaded before reading configuration")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(newModelsCmd())
	rootCmd.AddCommand(newCacheCmd())
	return rootCmd
}

// loadConfig reads the env file named by --env-file, when present, then the environment.
func loadConfig(cmd *cobra.Command) (*configs.Config, error) {
	if path, _ := cmd.Flags().GetString("env-file"); path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}
	return configs.Load()
}

// cliLogger writes diagnostics to stderr so command output stays parseable.
func cliLogger(cmd *cobra.Command) zerolog.Logger {
	level := "warn"
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	log, _, err := logger.New(logger.Options{Level: level, Format: "console"})
	if err != nil {
		return zerolog.Nop()
	}
	return log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()})
}
