// Package browser acquires controllable headless Chrome sessions and exposes the
// page primitives the capture pipeline needs.
package browser

import (
	"context"
	"time"
)

// Viewport describes the emulated device used for a capture.
type Viewport struct {
	Width       int64
	Height      int64
	ScaleFactor float64
}

// MobileViewport is the phone-sized viewport landing pages are judged on.
var MobileViewport = Viewport{Width: 375, Height: 812, ScaleFactor: 2}

// Evaluator runs JavaScript in the page and decodes the result into res.
// res may be nil when the result is not needed.
type Evaluator interface {
	Evaluate(ctx context.Context, script string, res any) error
}

// Session is one page in one browser instance. It is owned by a single capture
// and is never used after Close.
type Session interface {
	Evaluator

	// NewContext applies the viewport and device scale to the page.
	NewContext(ctx context.Context, vp Viewport) error
	// Navigate loads url and waits until network activity quiesces.
	// Failures are reported as *NavigationError.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// Screenshot returns PNG bytes; fullPage captures the entire scrollable height.
	Screenshot(ctx context.Context, fullPage bool) ([]byte, error)
	// VisibleText returns the rendered text of the page body.
	VisibleText(ctx context.Context) (string, error)
	// Close releases the page and the browser connection. Safe to call more than once.
	Close() error
}

// Provider hands out sessions. Acquire failures are reported as *ConnectionError.
type Provider interface {
	Acquire(ctx context.Context) (Session, error)
}
