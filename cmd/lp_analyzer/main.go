// Package main provides the entry point for the landing-page analyzer CLI and HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ynumao/ai-creative-director2/internal/config"
	"github.com/ynumao/ai-creative-director2/internal/logging"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "lp_analyzer",
	Short: "Landing page analyzer",
	Long: "lp_analyzer captures a landing page in a headless browser and asks a multimodal model " +
		"for a scored checklist, a copywriting framework and improvement proposals.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (JSON or YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
}

// setup loads configuration and builds the logger shared by every subcommand.
func setup(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.LogLevel = logLevel
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	l, err := logging.New(loaded.LogLevel, loaded.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	cfg, logger = loaded, l
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
