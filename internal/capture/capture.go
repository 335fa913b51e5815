// Package capture renders a landing page in a browser session and returns its
// full-page screenshot together with the visible text.
package capture

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ynumao/ai-creative-director2/internal/browser"
)

// DefaultNavigationTimeout is the page-load budget, including network quiescence.
const DefaultNavigationTimeout = 90 * time.Second

// DefaultSettleDelay lets images decode and layout finish after lazy loading.
// This is a fixed heuristic wait, not an event-based guarantee.
const DefaultSettleDelay = 2 * time.Second

// Request is the immutable input of a capture.
type Request struct {
	URL      string
	Viewport browser.Viewport
}

// Result holds what the browser produced. Screenshot is PNG-encoded.
type Result struct {
	Screenshot []byte
	Text       string
}

// Error reports a capture failure after a session was acquired.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("capture error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("capture error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options tunes a Capturer. Zero values fall back to the defaults.
type Options struct {
	Viewport          browser.Viewport
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
}

// Capturer orchestrates navigation, lazy-load triggering, screenshot and text
// extraction on a session it owns for the duration of one call.
type Capturer struct {
	provider browser.Provider
	lazy     *browser.LazyLoader
	opts     Options
	logger   *zap.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// New creates a Capturer.
func New(provider browser.Provider, lazy *browser.LazyLoader, opts Options, logger *zap.Logger) *Capturer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lazy == nil {
		lazy = browser.NewLazyLoader(logger)
	}
	if opts.Viewport == (browser.Viewport{}) {
		opts.Viewport = browser.MobileViewport
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = DefaultNavigationTimeout
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	return &Capturer{
		provider: provider,
		lazy:     lazy,
		opts:     opts,
		logger:   logger.With(zap.String("component", "capture")),
		sleep:    browser.Sleep,
	}
}

// Capture loads url and returns its screenshot and text. Session acquisition
// errors are returned untranslated; everything after that is an *Error. The
// session is closed exactly once on every path.
func (c *Capturer) Capture(ctx context.Context, url string) (*Result, error) {
	req := Request{URL: url, Viewport: c.opts.Viewport}

	sess, err := c.provider.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			c.logger.Warn("failed to close browser session", zap.Error(cerr))
		}
	}()

	if err := sess.NewContext(ctx, req.Viewport); err != nil {
		return nil, &Error{URL: req.URL, Message: "failed to configure viewport", Cause: err}
	}

	c.logger.Info("navigating", zap.String("url", req.URL))
	if err := sess.Navigate(ctx, req.URL, c.opts.NavigationTimeout); err != nil {
		c.logger.Warn("page load failed", zap.String("url", req.URL), zap.Error(err))
		return nil, &Error{URL: req.URL, Message: "page load failed", Cause: err}
	}

	c.logger.Debug("scrolling to load content")
	if err := c.lazy.Run(ctx, sess); err != nil {
		return nil, &Error{URL: req.URL, Message: "failed to trigger lazy-loaded content", Cause: err}
	}
	if err := c.sleep(ctx, c.opts.SettleDelay); err != nil {
		return nil, &Error{URL: req.URL, Message: "capture interrupted", Cause: err}
	}

	shot, err := sess.Screenshot(ctx, true)
	if err != nil {
		return nil, &Error{URL: req.URL, Message: "failed to take screenshot", Cause: err}
	}

	text, err := sess.VisibleText(ctx)
	if err != nil {
		return nil, &Error{URL: req.URL, Message: "failed to extract page text", Cause: err}
	}

	c.logger.Info("page captured",
		zap.String("url", req.URL),
		zap.Int("screenshot_bytes", len(shot)),
		zap.Int("text_chars", len([]rune(text))))

	return &Result{Screenshot: shot, Text: text}, nil
}
