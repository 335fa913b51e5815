package analysis

import (
	"context"

	"go.uber.org/zap"

	"github.com/ynumao/ai-creative-director2/internal/llm"
	"github.com/ynumao/ai-creative-director2/internal/metrics"
	"github.com/ynumao/ai-creative-director2/internal/report"
)

// Cascade tries candidate models in order. Only quota failures advance it.
type Cascade struct {
	invoker Invoker
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewCascade creates a Cascade over invoker.
func NewCascade(invoker Invoker, m *metrics.Collector, logger *zap.Logger) *Cascade {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cascade{
		invoker: invoker,
		metrics: m,
		logger:  logger.With(zap.String("component", "cascade")),
	}
}

// Run invokes candidates sequentially and returns the first report, stamped
// with the model that produced it. A fatal outcome is returned at once. When
// every candidate hit quota the result is *AllModelsExhaustedError.
func (c *Cascade) Run(ctx context.Context, candidates []string, prompt Prompt, image *llm.Image) (*report.Report, error) {
	if len(candidates) == 0 {
		return nil, &ConfigurationError{Message: "no candidate models configured"}
	}

	var last error
	for i, model := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c.logger.Info("attempting analysis",
			zap.String("model", model),
			zap.Int("attempt", i+1),
			zap.Int("candidates", len(candidates)))

		out := c.invoker.Invoke(ctx, model, prompt, image)
		switch out.Kind {
		case OutcomeSuccess:
			r := out.Report
			r.UsedModel = model
			r.IsFallback = i > 0
			if r.IsFallback {
				c.metrics.RecordFallback()
			}
			return r, nil
		case OutcomeRetryable:
			c.logger.Warn("quota exceeded, trying next candidate",
				zap.String("model", model),
				zap.String("class", string(out.Class)))
			last = out.Err
		default:
			c.logger.Error("model invocation failed", zap.String("model", model), zap.Error(out.Err))
			return nil, out.Err
		}
	}

	return nil, &AllModelsExhaustedError{Attempted: candidates, Last: last}
}
