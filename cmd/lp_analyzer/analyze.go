package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ynumao/ai-creative-director2/internal/analysis"
	"github.com/ynumao/ai-creative-director2/internal/observability"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one landing page",
	Long:  "Captures the page, runs the model cascade and prints the resulting report.",
	RunE:  runAnalyze,
}

var (
	analyzeURL    string
	analyzeModel  string
	analyzeAPIKey string
	analyzeJSON   bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeURL, "url", "u", "", "Landing page URL (required)")
	analyzeCmd.Flags().StringVarP(&analyzeModel, "model", "m", "", "Preferred model, tried before the configured candidates")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Gemini API key (defaults to GEMINI_API_KEY)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the report as JSON")

	if err := analyzeCmd.MarkFlagRequired("url"); err != nil {
		panic(fmt.Sprintf("failed to mark url flag as required: %v", err))
	}

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	analyzer, err := newAnalyzer(cfg, nil, nil, logger)
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}

	rep, err := analyzer.Run(cmd.Context(), analysis.Request{
		URL:    analyzeURL,
		APIKey: analyzeAPIKey,
		Model:  analyzeModel,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(rep)
	}
	observability.NewPrinter(out).PrintReport(rep)
	return nil
}
