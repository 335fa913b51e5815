package main

import (
	"go.uber.org/zap"

	"github.com/ynumao/ai-creative-director2/internal/analysis"
	"github.com/ynumao/ai-creative-director2/internal/browser"
	"github.com/ynumao/ai-creative-director2/internal/capture"
	"github.com/ynumao/ai-creative-director2/internal/config"
	"github.com/ynumao/ai-creative-director2/internal/llm"
	"github.com/ynumao/ai-creative-director2/internal/media"
	"github.com/ynumao/ai-creative-director2/internal/metrics"
)

// newAnalyzer wires the browser, capture, normalization and model layers into
// one pipeline. sink and m may be nil.
func newAnalyzer(cfg *config.Config, sink analysis.ArtifactSink, m *metrics.Collector, logger *zap.Logger) (*analysis.Analyzer, error) {
	provider := browser.NewChromeProvider(browser.ChromeConfig{
		RemoteURL:  cfg.RemoteBrowserURL,
		AllowLocal: !cfg.Serverless,
		ExecPath:   cfg.ChromePath,
	}, logger)

	capturer := capture.New(provider, browser.NewLazyLoader(logger), capture.Options{
		Viewport:          browser.MobileViewport,
		NavigationTimeout: cfg.NavigationTimeout,
		SettleDelay:       cfg.SettleDelay,
	}, logger)

	return analysis.NewAnalyzer(analysis.Options{
		DefaultCandidateModels: cfg.CandidateModels(),
		CredentialResolver:     analysis.StaticCredentials{FallbackKey: cfg.GeminiAPIKey},
		ClientFactory:          llm.NewFactory(llm.DefaultConfig()),
		Capturer:               capturer,
		Normalizer:             media.NewNormalizer(logger),
		Artifacts:              sink,
		Metrics:                m,
		ModelTimeout:           cfg.ModelTimeout,
		TextExcerptLimit:       cfg.TextExcerptLimit,
		Language:               cfg.ReportLanguage,
	}, logger)
}
