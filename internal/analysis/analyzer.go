// Package analysis runs the capture-and-analyze pipeline: it captures a page,
// normalizes the screenshot, builds the prompt and drives the model cascade.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ynumao/ai-creative-director2/internal/capture"
	"github.com/ynumao/ai-creative-director2/internal/llm"
	"github.com/ynumao/ai-creative-director2/internal/media"
	"github.com/ynumao/ai-creative-director2/internal/metrics"
	"github.com/ynumao/ai-creative-director2/internal/report"
)

// Request is one caller-facing analysis request.
type Request struct {
	URL    string `json:"url" validate:"required,url"`
	APIKey string `json:"api_key,omitempty"`
	Model  string `json:"model,omitempty"`
}

// Capturer produces a screenshot and text for a URL.
type Capturer interface {
	Capture(ctx context.Context, url string) (*capture.Result, error)
}

// Normalizer bounds a screenshot for upload.
type Normalizer interface {
	Normalize(raw []byte) media.Image
}

// ArtifactSink receives the image each run sends to the model.
type ArtifactSink interface {
	Set(sourceURL string, data []byte, mimeType string)
}

// Options configures an Analyzer. There is no package-level state; everything
// a run needs comes from here.
type Options struct {
	DefaultCandidateModels []string
	CredentialResolver     CredentialResolver
	ClientFactory          llm.Factory
	Capturer               Capturer
	Normalizer             Normalizer
	Artifacts              ArtifactSink
	Metrics                *metrics.Collector
	ModelTimeout           time.Duration
	TextExcerptLimit       int
	Language               string
}

// Analyzer runs the full pipeline. Concurrent calls share nothing but the
// artifact sink and metrics; each capture owns its own browser session.
type Analyzer struct {
	opts    Options
	prompts *PromptBuilder
	logger  *zap.Logger
}

// NewAnalyzer validates opts and creates an Analyzer.
func NewAnalyzer(opts Options, logger *zap.Logger) (*Analyzer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Capturer == nil {
		return nil, &ConfigurationError{Message: "capturer is required"}
	}
	if opts.ClientFactory == nil {
		return nil, &ConfigurationError{Message: "model client factory is required"}
	}
	if opts.CredentialResolver == nil {
		opts.CredentialResolver = StaticCredentials{}
	}
	if opts.Normalizer == nil {
		opts.Normalizer = media.NewNormalizer(logger)
	}
	if len(opts.DefaultCandidateModels) == 0 {
		opts.DefaultCandidateModels = DefaultCandidateModels
	}
	return &Analyzer{
		opts:    opts,
		prompts: NewPromptBuilder(opts.TextExcerptLimit, opts.Language),
		logger:  logger.With(zap.String("component", "analyzer")),
	}, nil
}

// Run analyzes req.URL and returns the report. Errors keep their type so the
// caller can map them: *ConfigurationError, *browser.ConnectionError,
// *capture.Error, *FatalInvocationError, *report.ParseError or
// *AllModelsExhaustedError.
func (a *Analyzer) Run(ctx context.Context, req Request) (*report.Report, error) {
	runID := uuid.NewString()
	log := a.logger.With(zap.String("run_id", runID), zap.String("url", req.URL))
	start := time.Now()

	r, err := a.run(ctx, req, log)
	a.opts.Metrics.RecordRun(runResult(err))
	if err != nil {
		log.Error("analysis failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, err
	}

	log.Info("analysis complete",
		zap.String("used_model", r.UsedModel),
		zap.Bool("is_fallback", r.IsFallback),
		zap.Duration("elapsed", time.Since(start)))
	return r, nil
}

func (a *Analyzer) run(ctx context.Context, req Request, log *zap.Logger) (*report.Report, error) {
	apiKey, err := a.opts.CredentialResolver.Resolve(req.APIKey)
	if err != nil {
		return nil, err
	}

	client, err := a.opts.ClientFactory(ctx, apiKey)
	if err != nil {
		return nil, &ConfigurationError{Message: "failed to initialize model client", Cause: err}
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			log.Warn("failed to close model client", zap.Error(cerr))
		}
	}()

	captureStart := time.Now()
	captured, err := a.opts.Capturer.Capture(ctx, req.URL)
	a.opts.Metrics.ObserveCapture(time.Since(captureStart))
	if err != nil {
		return nil, err
	}

	img := a.opts.Normalizer.Normalize(captured.Screenshot)
	if a.opts.Artifacts != nil {
		a.opts.Artifacts.Set(req.URL, img.Data, img.MIMEType)
	}
	log.Debug("screenshot prepared",
		zap.String("mime_type", img.MIMEType),
		zap.Int("bytes", len(img.Data)))

	prompt, err := a.prompts.Build(req.URL, captured.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	candidates := CandidateList(req.Model, a.opts.DefaultCandidateModels)
	invoker := NewModelInvoker(client, a.opts.ModelTimeout, a.opts.Metrics, log)
	cascade := NewCascade(invoker, a.opts.Metrics, log)

	return cascade.Run(ctx, candidates, prompt, &llm.Image{Data: img.Data, MIMEType: img.MIMEType})
}

func runResult(err error) string {
	if err == nil {
		return metrics.RunSuccess
	}
	var exhausted *AllModelsExhaustedError
	if errors.As(err, &exhausted) {
		return metrics.RunQuotaExhausted
	}
	return metrics.RunError
}
