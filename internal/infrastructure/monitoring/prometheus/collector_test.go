package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "cgi"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrape(t *testing.T, c MetricsCollector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestNewMetricsCollector_RequiresNamespace(t *testing.T) {
	t.Parallel()
	_, err := NewMetricsCollector(CollectorConfig{}, logging.NewNopLogger())
	require.Error(t, err)
}

func TestRegisterCounter(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)

	counter := c.RegisterCounter("events_total", "Test events", "kind")
	counter.WithLabelValues("a").Inc()
	counter.WithLabelValues("a").Add(2)
	counter.WithLabelValues("b").Inc()

	body := scrape(t, c)
	assert.Contains(t, body, `cgi_events_total{kind="a"} 3`)
	assert.Contains(t, body, `cgi_events_total{kind="b"} 1`)
}

func TestRegisterGauge(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)

	gauge := c.RegisterGauge("queue_depth", "Test depth", "queue")
	gauge.WithLabelValues("main").Set(5)
	gauge.WithLabelValues("main").Dec()

	assert.Contains(t, scrape(t, c), `cgi_queue_depth{queue="main"} 4`)
}

func TestRegisterHistogram(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)

	hist := c.RegisterHistogram("latency_seconds", "Test latency", []float64{0.1, 1}, "op")
	hist.WithLabelValues("read").Observe(0.05)
	hist.WithLabelValues("read").Observe(0.5)

	body := scrape(t, c)
	assert.Contains(t, body, `cgi_latency_seconds_count{op="read"} 2`)
	assert.Contains(t, body, `cgi_latency_seconds_bucket{op="read",le="0.1"} 1`)
}

func TestRegisterCounter_Idempotent(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)

	first := c.RegisterCounter("dup_total", "dup", "k")
	second := c.RegisterCounter("dup_total", "dup", "k")
	first.WithLabelValues("x").Inc()
	second.WithLabelValues("x").Inc()

	// Both handles feed the same underlying family.
	assert.Contains(t, scrape(t, c), `cgi_dup_total{k="x"} 2`)
}

func TestRegisterCounter_TypeConflictReturnsNoop(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)

	c.RegisterGauge("conflict_metric", "gauge first")
	counter := c.RegisterCounter("conflict_metric", "counter second")

	// Must not panic and must not corrupt the gauge.
	counter.WithLabelValues().Inc()
	assert.False(t, strings.Contains(scrape(t, c), "conflict_metric counter"))
}

func TestTimer(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)
	hist := c.RegisterHistogram("timed_seconds", "Timed", nil, "op")

	timer := NewTimer(hist.WithLabelValues("work"))
	time.Sleep(5 * time.Millisecond)
	timer.ObserveDuration()

	assert.Contains(t, scrape(t, c), `cgi_timed_seconds_count{op="work"} 1`)
}

func TestTimer_NilHistogram(t *testing.T) {
	t.Parallel()
	timer := NewTimer(nil)
	timer.ObserveDuration()
}
