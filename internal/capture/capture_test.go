package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ynumao/ai-creative-director2/internal/browser"
)

type fakeSession struct {
	navErr    error
	shotErr   error
	textErr   error
	viewport  browser.Viewport
	navURL    string
	navBudget time.Duration
	fullPage  bool
	closes    int
	calls     []string
}

func (s *fakeSession) NewContext(_ context.Context, vp browser.Viewport) error {
	s.calls = append(s.calls, "context")
	s.viewport = vp
	return nil
}

func (s *fakeSession) Navigate(_ context.Context, url string, timeout time.Duration) error {
	s.calls = append(s.calls, "navigate")
	s.navURL = url
	s.navBudget = timeout
	return s.navErr
}

func (s *fakeSession) Evaluate(_ context.Context, _ string, res any) error {
	if p, ok := res.(*int); ok {
		*p = 100
		s.calls = append(s.calls, "scroll")
	}
	return nil
}

func (s *fakeSession) Screenshot(_ context.Context, fullPage bool) ([]byte, error) {
	s.calls = append(s.calls, "screenshot")
	s.fullPage = fullPage
	if s.shotErr != nil {
		return nil, s.shotErr
	}
	return []byte("png"), nil
}

func (s *fakeSession) VisibleText(context.Context) (string, error) {
	s.calls = append(s.calls, "text")
	if s.textErr != nil {
		return "", s.textErr
	}
	return "Buy now", nil
}

func (s *fakeSession) Close() error {
	s.closes++
	return nil
}

type fakeProvider struct {
	session *fakeSession
	err     error
}

func (p *fakeProvider) Acquire(context.Context) (browser.Session, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.session, nil
}

func newTestCapturer(p browser.Provider) *Capturer {
	noSleep := func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	lazy := browser.NewLazyLoader(zap.NewNop())
	lazy.Interval = 0
	lazy.ResetDelay = 0
	c := New(p, lazy, Options{}, zap.NewNop())
	c.sleep = noSleep
	return c
}

func TestCapture_Success(t *testing.T) {
	sess := &fakeSession{}
	c := newTestCapturer(&fakeProvider{session: sess})

	res, err := c.Capture(context.Background(), "https://example.com/lp")
	require.NoError(t, err)

	assert.Equal(t, []byte("png"), res.Screenshot)
	assert.Equal(t, "Buy now", res.Text)
	assert.Equal(t, browser.MobileViewport, sess.viewport)
	assert.Equal(t, "https://example.com/lp", sess.navURL)
	assert.Equal(t, DefaultNavigationTimeout, sess.navBudget)
	assert.True(t, sess.fullPage)
	assert.Equal(t, []string{"context", "navigate", "scroll", "screenshot", "text"}, sess.calls)
	assert.Equal(t, 1, sess.closes)
}

func TestCapture_NavigationFailure(t *testing.T) {
	navErr := &browser.NavigationError{URL: "https://slow.example", Timeout: true, Message: "timed out", Cause: context.DeadlineExceeded}
	sess := &fakeSession{navErr: navErr}
	c := newTestCapturer(&fakeProvider{session: sess})

	res, err := c.Capture(context.Background(), "https://slow.example")
	require.Error(t, err)
	assert.Nil(t, res)

	var capErr *Error
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, "page load failed", capErr.Message)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotContains(t, sess.calls, "screenshot")
	assert.Equal(t, 1, sess.closes)
}

func TestCapture_ScreenshotAndTextFailuresCloseSession(t *testing.T) {
	for name, sess := range map[string]*fakeSession{
		"screenshot": {shotErr: errors.New("gpu lost")},
		"text":       {textErr: errors.New("detached")},
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestCapturer(&fakeProvider{session: sess})

			_, err := c.Capture(context.Background(), "https://example.com")
			var capErr *Error
			require.True(t, errors.As(err, &capErr))
			assert.Equal(t, 1, sess.closes)
		})
	}
}

func TestCapture_ConnectionErrorPassesThrough(t *testing.T) {
	connErr := &browser.ConnectionError{Endpoint: "wss://remote", Message: "unreachable"}
	c := newTestCapturer(&fakeProvider{err: connErr})

	_, err := c.Capture(context.Background(), "https://example.com")
	require.Error(t, err)

	var got *browser.ConnectionError
	require.True(t, errors.As(err, &got))
	var capErr *Error
	assert.False(t, errors.As(err, &capErr))
}

func TestCapture_CancelledDuringSettle(t *testing.T) {
	sess := &fakeSession{}
	c := newTestCapturer(&fakeProvider{session: sess})
	c.sleep = func(context.Context, time.Duration) error { return context.Canceled }

	_, err := c.Capture(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, sess.closes)
}

func TestNew_Defaults(t *testing.T) {
	c := New(&fakeProvider{}, nil, Options{}, nil)
	assert.Equal(t, browser.MobileViewport, c.opts.Viewport)
	assert.Equal(t, DefaultNavigationTimeout, c.opts.NavigationTimeout)
	assert.Equal(t, DefaultSettleDelay, c.opts.SettleDelay)
}
