package browser

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/ynumao/ai-creative-director2/internal/logging"
)

// ChromeConfig configures how Chrome sessions are acquired.
type ChromeConfig struct {
	// RemoteURL is the CDP websocket endpoint of an already running browser.
	// When set, the provider only ever connects to it.
	RemoteURL string
	// AllowLocal permits launching a local headless Chrome when RemoteURL is empty.
	AllowLocal bool
	// ExecPath overrides the Chrome binary used for local launches.
	ExecPath string
}

// ChromeProvider acquires sessions backed by chromedp. Every Acquire creates a
// fresh allocator so concurrent runs never share a browser.
type ChromeProvider struct {
	cfg    ChromeConfig
	logger *zap.Logger
}

// NewChromeProvider creates a provider for the given configuration.
func NewChromeProvider(cfg ChromeConfig, logger *zap.Logger) *ChromeProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChromeProvider{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "browser")),
	}
}

// Acquire connects to the remote browser or launches a local one and opens a tab.
// Cancelling ctx tears the browser down.
func (p *ChromeProvider) Acquire(ctx context.Context) (Session, error) {
	remote := strings.TrimSpace(p.cfg.RemoteURL)

	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)
	switch {
	case remote != "":
		p.logger.Info("connecting to remote browser", zap.String("endpoint", logging.Truncate(remote, 15)))
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, remote)
	case !p.cfg.AllowLocal:
		p.logger.Error("remote browser endpoint is not configured and local launch is disabled")
		return nil, &ConnectionError{
			Message: "no remote browser endpoint configured and launching a local browser is not permitted in this deployment",
		}
	default:
		p.logger.Info("launching local headless browser")
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
		if p.cfg.ExecPath != "" {
			opts = append(opts, chromedp.ExecPath(p.cfg.ExecPath))
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, opts...)
	}

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	s := &chromeSession{
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
		remote:      remote != "",
		watcher:     &idleWatcher{},
	}

	// The first Run on a fresh context performs the launch or the connect.
	if err := chromedp.Run(tabCtx); err != nil {
		_ = s.Close()
		if remote != "" {
			return nil, &ConnectionError{
				Endpoint: logging.Truncate(remote, 15),
				Message:  "remote browser endpoint unreachable; check the URL and token",
				Cause:    err,
			}
		}
		return nil, &ConnectionError{Message: "failed to launch local browser", Cause: err}
	}

	chromedp.ListenTarget(tabCtx, s.watcher.handle)
	err := chromedp.Run(tabCtx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			if tree != nil && tree.Frame != nil {
				s.watcher.setFrame(tree.Frame.ID)
			}
			return nil
		}),
	)
	if err != nil {
		_ = s.Close()
		return nil, &ConnectionError{Message: "failed to prepare browser tab", Cause: err}
	}

	return s, nil
}

type chromeSession struct {
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	remote      bool
	watcher     *idleWatcher
	closeOnce   sync.Once
}

// run executes actions on the tab, bounded by timeout (if positive) and by ctx.
func (s *chromeSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := s.runContext(ctx, timeout)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

func (s *chromeSession) runContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.tabCtx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(s.tabCtx)
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (s *chromeSession) NewContext(ctx context.Context, vp Viewport) error {
	return s.run(ctx, 0, chromedp.EmulateViewport(vp.Width, vp.Height, chromedp.EmulateScale(vp.ScaleFactor)))
}

func (s *chromeSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	navCtx, cancel := s.runContext(ctx, timeout)
	defer cancel()

	idle := s.watcher.arm()
	err := chromedp.Run(navCtx, chromedp.Navigate(url))
	if err == nil {
		select {
		case <-idle:
		case <-navCtx.Done():
			err = navCtx.Err()
		}
	}
	if err == nil {
		return nil
	}

	timedOut := errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
	msg := "page failed to load"
	if timedOut {
		msg = "page did not finish loading within " + timeout.String()
	}
	return &NavigationError{URL: url, Timeout: timedOut, Message: msg, Cause: err}
}

func (s *chromeSession) Evaluate(ctx context.Context, script string, res any) error {
	return s.run(ctx, 0, chromedp.Evaluate(script, res))
}

func (s *chromeSession) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	var buf []byte
	var action chromedp.Action = chromedp.CaptureScreenshot(&buf)
	if fullPage {
		// Quality 100 makes chromedp encode PNG.
		action = chromedp.FullScreenshot(&buf, 100)
	}
	if err := s.run(ctx, 0, action); err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *chromeSession) VisibleText(ctx context.Context) (string, error) {
	var text string
	if err := s.Evaluate(ctx, `document.body ? document.body.innerText : ""`, &text); err != nil {
		return "", err
	}
	if strings.TrimSpace(text) != "" {
		return text, nil
	}

	var html string
	if err := s.Evaluate(ctx, `document.documentElement.outerHTML`, &html); err != nil {
		return "", err
	}
	return ExtractText(html)
}

// Close closes the tab. Local browsers are shut down gracefully; for remote
// browsers only our tab and the websocket are released.
func (s *chromeSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if !s.remote {
			err = chromedp.Cancel(s.tabCtx)
		}
		s.tabCancel()
		s.allocCancel()
	})
	return err
}

// idleWatcher turns Chrome lifecycle events into a "network idle" signal for the
// main frame's current document.
type idleWatcher struct {
	mu       sync.Mutex
	frameID  cdp.FrameID
	loaderID cdp.LoaderID
	idle     chan struct{}
	fired    bool
}

func (w *idleWatcher) setFrame(id cdp.FrameID) {
	w.mu.Lock()
	w.frameID = id
	w.mu.Unlock()
}

// arm resets the watcher before a navigation and returns the channel closed once
// the new document reaches network idle.
func (w *idleWatcher) arm() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.loaderID = ""
	w.fired = false
	w.idle = make(chan struct{})
	return w.idle
}

func (w *idleWatcher) handle(ev any) {
	e, ok := ev.(*page.EventLifecycleEvent)
	if !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.frameID != "" && e.FrameID != w.frameID {
		return
	}
	switch e.Name {
	case "init":
		w.loaderID = e.LoaderID
	case "networkIdle":
		if w.idle != nil && !w.fired && w.loaderID != "" && e.LoaderID == w.loaderID {
			w.fired = true
			close(w.idle)
		}
	}
}
