package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ynumao/ai-creative-director2/internal/llm"
	"github.com/ynumao/ai-creative-director2/internal/report"
)

func TestModelInvoker_Success(t *testing.T) {
	client := &scriptedClient{replies: map[string]reply{
		"m": {text: "Sure! " + fullReportJSON() + " Done."},
	}}
	img := &llm.Image{Data: []byte{1, 2}, MIMEType: "image/jpeg"}

	out := NewModelInvoker(client, time.Second, nil, zap.NewNop()).
		Invoke(context.Background(), "m", Prompt{Instruction: "analyze"}, img)

	require.Equal(t, OutcomeSuccess, out.Kind)
	assert.Len(t, out.Report.Checklist(), 7)
	assert.Equal(t, "analyze", client.reqs[0].Prompt)
	assert.Equal(t, img, client.reqs[0].Image)
}

func TestModelInvoker_QuotaIsRetryable(t *testing.T) {
	for name, err := range map[string]error{
		"status code": errQuota,
		"message":     errors.New("You exceeded your current quota, please check your plan"),
	} {
		t.Run(name, func(t *testing.T) {
			client := &scriptedClient{replies: map[string]reply{"m": {err: err}}}

			out := NewModelInvoker(client, time.Second, nil, nil).Invoke(context.Background(), "m", Prompt{}, nil)

			assert.Equal(t, OutcomeRetryable, out.Kind)
			assert.Equal(t, FailureQuota, out.Class)
			var qf *QuotaFailure
			require.True(t, errors.As(out.Err, &qf))
			assert.Equal(t, "m", qf.Model)
		})
	}
}

func TestModelInvoker_OtherErrorsAreFatal(t *testing.T) {
	client := &scriptedClient{replies: map[string]reply{"m": {err: errors.New("401 API key not valid")}}}

	out := NewModelInvoker(client, time.Second, nil, nil).Invoke(context.Background(), "m", Prompt{}, nil)

	assert.Equal(t, OutcomeFatal, out.Kind)
	var fe *FatalInvocationError
	require.True(t, errors.As(out.Err, &fe))
	assert.Equal(t, "model invocation failed", fe.Message)
}

func TestModelInvoker_TimeoutIsFatal(t *testing.T) {
	client := &scriptedClient{replies: map[string]reply{"m": {err: context.DeadlineExceeded}}}

	out := NewModelInvoker(client, 10*time.Millisecond, nil, nil).Invoke(context.Background(), "m", Prompt{}, nil)

	assert.Equal(t, OutcomeFatal, out.Kind)
	var fe *FatalInvocationError
	require.True(t, errors.As(out.Err, &fe))
	assert.Equal(t, "model invocation timed out", fe.Message)
	assert.ErrorIs(t, out.Err, context.DeadlineExceeded)
}

func TestModelInvoker_UnparseableResponseIsFatal(t *testing.T) {
	client := &scriptedClient{replies: map[string]reply{"m": {text: "I cannot help with that."}}}

	out := NewModelInvoker(client, time.Second, nil, nil).Invoke(context.Background(), "m", Prompt{}, nil)

	assert.Equal(t, OutcomeFatal, out.Kind)
	var pe *report.ParseError
	require.True(t, errors.As(out.Err, &pe))
	assert.Equal(t, "I cannot help with that.", pe.Raw)
}

func TestModelInvoker_SchemaMismatchStillSucceeds(t *testing.T) {
	client := &scriptedClient{replies: map[string]reply{"m": {text: `{"framework": "AIDA"}`}}}

	out := NewModelInvoker(client, time.Second, nil, nil).Invoke(context.Background(), "m", Prompt{}, nil)

	require.Equal(t, OutcomeSuccess, out.Kind)
	assert.Equal(t, "AIDA", out.Report.Framework())
}

func TestModelInvoker_UnexpectedValueShapesStillSucceed(t *testing.T) {
	client := &scriptedClient{replies: map[string]reply{"m": {
		text: `{"checklist": [{"item": "CTA design", "score": "4/5"}], "improvements": [{"title": "Add reviews"}], "notes": "extra"}`,
	}}}

	out := NewModelInvoker(client, time.Second, nil, nil).Invoke(context.Background(), "m", Prompt{}, nil)

	require.Equal(t, OutcomeSuccess, out.Kind)
	raw, ok := out.Report.Get("notes")
	require.True(t, ok)
	assert.JSONEq(t, `"extra"`, string(raw))
	assert.Equal(t, "4/5", out.Report.Checklist()[0].Score.Text)
}
