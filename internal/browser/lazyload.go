package browser

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultScrollStep is how far each scroll step moves the viewport, in CSS pixels.
	DefaultScrollStep = 300
	// DefaultScrollInterval is the pause between scroll steps.
	DefaultScrollInterval = 100 * time.Millisecond
	// DefaultResetDelay is the pause after jumping back to the top.
	DefaultResetDelay = time.Second
	// DefaultMaxScrollSteps bounds infinite-scroll pages (about 600k px at the default step).
	DefaultMaxScrollSteps = 2000
)

// LazyLoader scrolls a page to the bottom in fixed increments so that
// viewport-triggered content loads before a capture, then returns to the top.
type LazyLoader struct {
	Step       int
	Interval   time.Duration
	ResetDelay time.Duration
	MaxSteps   int

	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewLazyLoader returns a loader with the default step, interval and guard.
func NewLazyLoader(logger *zap.Logger) *LazyLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LazyLoader{
		Step:       DefaultScrollStep,
		Interval:   DefaultScrollInterval,
		ResetDelay: DefaultResetDelay,
		MaxSteps:   DefaultMaxScrollSteps,
		logger:     logger.With(zap.String("component", "lazyload")),
		sleep:      Sleep,
	}
}

// scrollScript scrolls by the given distance and reports the current scrollable height.
const scrollScript = `(() => { const h = document.body ? document.body.scrollHeight : 0; window.scrollBy(0, %d); return h; })()`

// Run scrolls until the accumulated distance reaches the page height, which is
// re-measured every step because lazy content can grow it.
func (l *LazyLoader) Run(ctx context.Context, page Evaluator) error {
	script := fmt.Sprintf(scrollScript, l.Step)

	total := 0
	steps := 0
	for {
		var height int
		if err := page.Evaluate(ctx, script, &height); err != nil {
			return fmt.Errorf("scroll step %d failed: %w", steps, err)
		}
		total += l.Step
		steps++

		if total >= height {
			break
		}
		if steps >= l.MaxSteps {
			l.logger.Warn("scroll step limit reached before page end",
				zap.Int("steps", steps), zap.Int("height", height))
			break
		}
		if err := l.sleep(ctx, l.Interval); err != nil {
			return err
		}
	}

	l.logger.Debug("lazy content triggered", zap.Int("steps", steps), zap.Int("distance", total))

	if err := page.Evaluate(ctx, `window.scrollTo(0, 0)`, nil); err != nil {
		return fmt.Errorf("failed to scroll back to top: %w", err)
	}
	return l.sleep(ctx, l.ResetDelay)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
