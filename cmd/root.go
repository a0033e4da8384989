// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"urlembed/internal/config"
	"urlembed/internal/provider"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagBatch       bool
	flagJSON        bool
	flagMaxWidth    int
	flagMaxHeight   int
	flagTimeout     int
	flagReferrer    string
	flagConcurrency int
	flagDebug       bool
	flagNoHistory   bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

// logger is built in loadConfig; a no-op logger until then.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "urlembed [url...]",
	Short: "Resolve URLs into embeddable markup",
	Long: `urlembed turns links to videos, posts, photos and tracks into embed markup
by asking the first matching oEmbed provider. URLs are read from the arguments,
or one per line from stdin when none are given.`,
	Args:              cobra.ArbitraryArgs,
	PersistentPreRunE: loadConfig,
	RunE:              resolveRun,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")
	rootCmd.PersistentFlags().BoolVar(&flagNoHistory, "no-history", false, "Do not read or write the resolution history")

	rootCmd.Flags().BoolVarP(&flagBatch, "batch", "b", false, "Resolve all URLs concurrently")
	rootCmd.Flags().BoolVarP(&flagJSON, "json", "j", false, "Output results as JSON")
	rootCmd.Flags().IntVar(&flagMaxWidth, "max-width", 0, "Maximum embed width passed to providers")
	rootCmd.Flags().IntVar(&flagMaxHeight, "max-height", 0, "Maximum embed height passed to providers")
	rootCmd.Flags().IntVar(&flagTimeout, "timeout", 0, "Upstream timeout in milliseconds (default: 2000)")
	rootCmd.Flags().StringVar(&flagReferrer, "referrer", "", "Referrer host sent to providers that need one")
	rootCmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "Maximum concurrent resolutions in batch mode (0: unlimited)")

	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagTimeout > 0 {
		cfg.TimeoutMs = flagTimeout
	}
	if flagReferrer != "" {
		cfg.Referrer = flagReferrer
	}
	if flagConcurrency > 0 {
		cfg.Concurrency = flagConcurrency
	}
	if flagNoHistory {
		cfg.History = false
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	provider.Version = Version
	logger, err = newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	return nil
}

// newLogger returns a development logger on stderr when debugging and a
// warnings-only production logger otherwise.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		zc := zap.NewDevelopmentConfig()
		zc.OutputPaths = []string{"stderr"}
		return zc.Build()
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	zc.Encoding = "console"
	zc.OutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true
	return zc.Build()
}

// debugf logs a message if debug mode is enabled.
func debugf(format string, args ...interface{}) {
	if cfg != nil && cfg.Debug {
		logger.Sugar().Debugf(format, args...)
	}
}
