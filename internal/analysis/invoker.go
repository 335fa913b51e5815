package analysis

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ynumao/ai-creative-director2/internal/llm"
	"github.com/ynumao/ai-creative-director2/internal/logging"
	"github.com/ynumao/ai-creative-director2/internal/metrics"
	"github.com/ynumao/ai-creative-director2/internal/report"
	"github.com/ynumao/ai-creative-director2/internal/schemas"
)

// DefaultModelTimeout bounds a single model invocation.
const DefaultModelTimeout = 120 * time.Second

// Invoker runs one model against the prompt and image.
type Invoker interface {
	Invoke(ctx context.Context, model string, prompt Prompt, image *llm.Image) Outcome
}

// ModelInvoker calls the model client and classifies the result.
type ModelInvoker struct {
	client  llm.Client
	timeout time.Duration
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewModelInvoker creates a ModelInvoker. timeout applies per call.
func NewModelInvoker(client llm.Client, timeout time.Duration, m *metrics.Collector, logger *zap.Logger) *ModelInvoker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultModelTimeout
	}
	return &ModelInvoker{
		client:  client,
		timeout: timeout,
		metrics: m,
		logger:  logger.With(zap.String("component", "invoker")),
	}
}

// Invoke sends the request and maps the result to an Outcome. A response is a
// success only once a report was recovered from it.
func (m *ModelInvoker) Invoke(ctx context.Context, model string, prompt Prompt, image *llm.Image) Outcome {
	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	text, err := m.client.GenerateJSON(callCtx, llm.Request{
		Model:  model,
		Prompt: prompt.Instruction,
		Image:  image,
	})
	elapsed := time.Since(start)

	if err != nil {
		if llm.IsQuotaError(err) {
			m.metrics.RecordAttempt(model, metrics.AttemptQuota, elapsed)
			return Retryable(FailureQuota, &QuotaFailure{Model: model, Cause: err})
		}
		m.metrics.RecordAttempt(model, metrics.AttemptFatal, elapsed)
		msg := "model invocation failed"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "model invocation timed out"
		}
		return Fatal(&FatalInvocationError{Model: model, Message: msg, Cause: err})
	}

	r, err := report.Parse(text)
	if err != nil {
		m.metrics.RecordAttempt(model, metrics.AttemptFatal, elapsed)
		m.logger.Warn("unparseable model response",
			zap.String("model", model),
			zap.String("response", logging.Truncate(text, 500)))
		return Fatal(err)
	}

	m.metrics.RecordAttempt(model, metrics.AttemptSuccess, elapsed)
	m.checkSchema(model, text)
	return Success(r)
}

// checkSchema logs schema violations without affecting the outcome.
func (m *ModelInvoker) checkSchema(model, text string) {
	payload, err := report.ExtractPayload(text)
	if err != nil {
		return
	}
	if err := schemas.ValidateReport(payload); err != nil {
		var ve *schemas.ValidationError
		if errors.As(err, &ve) {
			m.logger.Warn("report does not match schema",
				zap.String("model", model),
				zap.Strings("violations", ve.Fields()))
			return
		}
		m.logger.Warn("schema check failed", zap.String("model", model), zap.Error(err))
	}
}
