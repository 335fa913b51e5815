package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ynumao/ai-creative-director2/internal/artifacts"
	"github.com/ynumao/ai-creative-director2/internal/metrics"
	"github.com/ynumao/ai-creative-director2/internal/server"
	"github.com/ynumao/ai-creative-director2/internal/server/ratelimit"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server that exposes POST /analyze, GET /screenshot, GET /health and GET /metrics.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to PORT or 5001)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	port := cfg.Port
	if servePort > 0 {
		port = servePort
	}

	store := artifacts.NewStore()
	collector := metrics.NewCollector(metrics.DefaultNamespace, logger)

	analyzer, err := newAnalyzer(cfg, store, collector, logger)
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}

	srv := server.New(server.Config{
		Port:              port,
		MaxConcurrentRuns: cfg.MaxConcurrentRuns,
		RateLimit:         ratelimit.NewConfig(cfg.RateLimitEnabled, cfg.RateLimitPerMin, cfg.RateLimitBurst),
	}, analyzer, store, collector, logger)

	return srv.Start(cmd.Context())
}
