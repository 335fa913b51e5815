package analysis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/ynumao/ai-creative-director2/internal/browser"
	"github.com/ynumao/ai-creative-director2/internal/llm"
	"github.com/ynumao/ai-creative-director2/internal/report"
)

// fullReportJSON is a model response covering every checklist dimension.
func fullReportJSON() string {
	items := make([]string, len(report.ChecklistDimensions))
	for i, name := range report.ChecklistDimensions {
		items[i] = fmt.Sprintf(`{"item": %q, "score": 4, "rationale": "ok"}`, name)
	}
	return `{"checklist": [` + strings.Join(items, ",") + `],
		"framework": "PASONA",
		"framework_rationale": "problem led",
		"sections": [{"title": "Hero", "description": "promise"}],
		"improvements": ["add reviews"],
		"competitors": [{"name": "Rival", "url": "https://rival.example"}]}`
}

func mustParse(t *testing.T, payload string) *report.Report {
	t.Helper()
	r, err := report.Parse(payload)
	require.NoError(t, err)
	return r
}

var errQuota = &googleapi.Error{Code: http.StatusTooManyRequests, Message: "Resource has been exhausted"}

type reply struct {
	text string
	err  error
}

// scriptedClient answers per model; unknown models fail fatally.
type scriptedClient struct {
	replies map[string]reply
	calls   []string
	reqs    []llm.Request
	closed  int
}

func (c *scriptedClient) GenerateJSON(ctx context.Context, req llm.Request) (string, error) {
	c.calls = append(c.calls, req.Model)
	c.reqs = append(c.reqs, req)
	r, ok := c.replies[req.Model]
	if !ok {
		return "", errors.New("model not found")
	}
	if r.err == context.DeadlineExceeded {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return r.text, r.err
}

func (c *scriptedClient) Close() error {
	c.closed++
	return nil
}

func factoryFor(c *scriptedClient) llm.Factory {
	return func(context.Context, string) (llm.Client, error) { return c, nil }
}

// fakeInvoker returns outcomes in model order.
type fakeInvoker struct {
	outcomes map[string]Outcome
	calls    []string
}

func (f *fakeInvoker) Invoke(_ context.Context, model string, _ Prompt, _ *llm.Image) Outcome {
	f.calls = append(f.calls, model)
	out, ok := f.outcomes[model]
	if !ok {
		return Fatal(errors.New("unexpected model " + model))
	}
	if out.Kind == OutcomeSuccess {
		// each call gets its own report value
		r := *out.Report
		out.Report = &r
	}
	return out
}

// fakeSession is a browser session that never touches a real browser.
type fakeSession struct {
	navErr error
	closes int
}

func (s *fakeSession) NewContext(context.Context, browser.Viewport) error { return nil }

func (s *fakeSession) Navigate(_ context.Context, url string, timeout time.Duration) error {
	return s.navErr
}

func (s *fakeSession) Evaluate(_ context.Context, _ string, res any) error {
	if p, ok := res.(*int); ok {
		*p = 10
	}
	return nil
}

func (s *fakeSession) Screenshot(context.Context, bool) ([]byte, error) {
	return []byte("not really a png"), nil
}

func (s *fakeSession) VisibleText(context.Context) (string, error) {
	return "Limited offer. Buy now.", nil
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

type recordingSink struct {
	url  string
	data []byte
	mime string
}

func (s *recordingSink) Set(url string, data []byte, mime string) {
	s.url, s.data, s.mime = url, data, mime
}
