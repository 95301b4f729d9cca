package prometheus

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAppMetrics(t *testing.T) (*AppMetrics, MetricsCollector) {
	t.Helper()
	c := newTestCollector(t)
	return NewAppMetrics(c), c
}

func TestNewAppMetrics_RegistersAllFamilies(t *testing.T) {
	t.Parallel()
	m, _ := newAppMetrics(t)

	require.NotNil(t, m.HTTPRequestsTotal)
	require.NotNil(t, m.DocumentsProcessedTotal)
	require.NotNil(t, m.DecisionsTotal)
	require.NotNil(t, m.EdgeOperationsTotal)
	require.NotNil(t, m.VerifierRequestsTotal)
	require.NotNil(t, m.ErrorsTotal)
}

func TestRecordHTTPRequest(t *testing.T) {
	t.Parallel()
	m, c := newAppMetrics(t)

	RecordHTTPRequest(m, http.MethodPost, "/api/v1/resolve", http.StatusOK, 120*time.Millisecond)
	RecordHTTPRequest(m, http.MethodPost, "/api/v1/resolve", http.StatusOK, 80*time.Millisecond)

	body := scrape(t, c)
	assert.Contains(t, body, `cgi_http_requests_total{method="POST",path="/api/v1/resolve",status="200"} 2`)
	assert.Contains(t, body, `cgi_http_request_duration_seconds_count{method="POST",path="/api/v1/resolve"} 2`)
}

func TestRecordDecision(t *testing.T) {
	t.Parallel()
	m, c := newAppMetrics(t)

	RecordDecision(m, "tier1_rules", "REJECT", 0)
	RecordDecision(m, "tier4_llm", "ACCEPT", 0.01)
	RecordDecision(m, "tier4_llm", "ACCEPT", 0.01)

	body := scrape(t, c)
	assert.Contains(t, body, `cgi_decisions_total{outcome="REJECT",tier="tier1_rules"} 1`)
	assert.Contains(t, body, `cgi_decisions_total{outcome="ACCEPT",tier="tier4_llm"} 2`)
	assert.Contains(t, body, `cgi_decision_cost_dollars_total{tier="tier4_llm"} 0.02`)
}

func TestRecordDecision_ZeroCostSkipsCostCounter(t *testing.T) {
	t.Parallel()
	m, c := newAppMetrics(t)

	RecordDecision(m, "tier2_context", "REJECT", 0)

	assert.NotContains(t, scrape(t, c), `cgi_decision_cost_dollars_total{tier="tier2_context"}`)
}

func TestRecordEdgeOperation(t *testing.T) {
	t.Parallel()
	m, c := newAppMetrics(t)

	RecordEdgeOperation(m, "upsert", "HAS_SUPPLIER")
	RecordEdgeOperation(m, "delete", "HAS_COMPETITOR")

	body := scrape(t, c)
	assert.Contains(t, body, `cgi_edge_operations_total{operation="upsert",relationship_type="HAS_SUPPLIER"} 1`)
	assert.Contains(t, body, `cgi_edge_operations_total{operation="delete",relationship_type="HAS_COMPETITOR"} 1`)
}

func TestRecordEmbeddingCache(t *testing.T) {
	t.Parallel()
	m, c := newAppMetrics(t)

	RecordEmbeddingCache(m, true)
	RecordEmbeddingCache(m, true)
	RecordEmbeddingCache(m, false)

	body := scrape(t, c)
	assert.Contains(t, body, `cgi_embedding_cache_total{result="hit"} 2`)
	assert.Contains(t, body, `cgi_embedding_cache_total{result="miss"} 1`)
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	t.Parallel()
	RecordHTTPRequest(nil, http.MethodGet, "/", 200, time.Second)
	RecordDecision(nil, "tier1_rules", "ACCEPT", 1)
	RecordEdgeOperation(nil, "upsert", "HAS_PARTNER")
	RecordEmbeddingCache(nil, true)
	RecordError(nil, "graph", "INFRA_001")
}
