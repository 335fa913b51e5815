package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewCollector(t *testing.T) {
	c := NewCollector("", zap.NewNop())

	require.NotNil(t, c)
	assert.NotNil(t, c.Registry())
	assert.NotNil(t, c.runsTotal)
	assert.NotNil(t, c.attemptsTotal)
}

func TestCollector_RecordRun(t *testing.T) {
	c := NewCollector("test", zap.NewNop())

	c.RecordRun(RunSuccess)
	c.RecordRun(RunSuccess)
	c.RecordRun(RunQuotaExhausted)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.runsTotal.WithLabelValues(RunSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runsTotal.WithLabelValues(RunQuotaExhausted)))
}

func TestCollector_RecordAttemptAndFallback(t *testing.T) {
	c := NewCollector("test", zap.NewNop())

	c.RecordAttempt("gemini-2.0-flash", AttemptQuota, 200*time.Millisecond)
	c.RecordAttempt("gemini-flash-latest", AttemptSuccess, time.Second)
	c.RecordFallback()
	c.ObserveCapture(3 * time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.attemptsTotal.WithLabelValues("gemini-2.0-flash", AttemptQuota)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.fallbacksTotal))
	assert.Equal(t, 2, testutil.CollectAndCount(c.modelDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(c.captureDuration))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("test", zap.NewNop())
	c.RecordHTTPRequest(http.MethodPost, "/analyze", http.StatusOK, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_http_requests_total{method="POST",path="/analyze",status="200"} 1`)
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.RecordRun(RunError)
		c.RecordAttempt("m", AttemptFatal, time.Second)
		c.RecordFallback()
		c.ObserveCapture(time.Second)
		c.RecordHTTPRequest(http.MethodGet, "/health", http.StatusOK, time.Millisecond)
	})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
