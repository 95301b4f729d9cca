package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric family the platform exports.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Entity resolution
	DocumentsProcessedTotal  CounterVec
	CandidatesExtractedTotal CounterVec
	CandidatesFilteredTotal  CounterVec
	EntitiesResolvedTotal    CounterVec
	ResolutionDuration       HistogramVec

	// Tiered decisions
	DecisionsTotal   CounterVec
	DecisionCost     CounterVec
	DecisionDuration HistogramVec

	// Graph writes
	EdgeOperationsTotal CounterVec
	GraphQueryDuration  HistogramVec

	// Embeddings and verification
	EmbeddingRequestsTotal CounterVec
	EmbeddingCacheTotal    CounterVec
	VerifierRequestsTotal  CounterVec
	VerifierDuration       HistogramVec

	// System health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

var (
	DefaultHTTPDurationBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultBatchDurationBuckets = []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300}
	DefaultLLMDurationBuckets   = []float64{.5, 1, 2, 5, 10, 30, 60}
	DefaultDBDurationBuckets    = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewAppMetrics registers the full metric set on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests", "method")

	m.DocumentsProcessedTotal = collector.RegisterCounter("documents_processed_total", "Filing documents run through extraction", "status")
	m.CandidatesExtractedTotal = collector.RegisterCounter("candidates_extracted_total", "Mention candidates extracted", "strategy")
	m.CandidatesFilteredTotal = collector.RegisterCounter("candidates_filtered_total", "Candidates rejected before matching", "reason")
	m.EntitiesResolvedTotal = collector.RegisterCounter("entities_resolved_total", "Candidates resolved to companies", "match_type")
	m.ResolutionDuration = collector.RegisterHistogram("resolution_duration_seconds", "End-to-end resolution duration per document", DefaultBatchDurationBuckets)

	m.DecisionsTotal = collector.RegisterCounter("decisions_total", "Tiered decisions made", "tier", "outcome")
	m.DecisionCost = collector.RegisterCounter("decision_cost_dollars_total", "Cumulative decision spend in dollars", "tier")
	m.DecisionDuration = collector.RegisterHistogram("decision_duration_seconds", "Decision latency", DefaultLLMDurationBuckets, "tier")

	m.EdgeOperationsTotal = collector.RegisterCounter("edge_operations_total", "Relationship edge writes", "operation", "relationship_type")
	m.GraphQueryDuration = collector.RegisterHistogram("graph_query_duration_seconds", "Graph query duration", DefaultDBDurationBuckets, "operation")

	m.EmbeddingRequestsTotal = collector.RegisterCounter("embedding_requests_total", "Embedding API calls", "status")
	m.EmbeddingCacheTotal = collector.RegisterCounter("embedding_cache_total", "Embedding cache lookups", "result")
	m.VerifierRequestsTotal = collector.RegisterCounter("verifier_requests_total", "LLM verification calls", "status")
	m.VerifierDuration = collector.RegisterHistogram("verifier_duration_seconds", "LLM verification latency", DefaultLLMDurationBuckets)

	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Component health (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Errors by component", "component", "code")

	return m
}

// RecordHTTPRequest updates the HTTP request counter and latency histogram.
func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordDecision updates the per-tier decision counters.
func RecordDecision(m *AppMetrics, tier, outcome string, cost float64) {
	if m == nil {
		return
	}
	m.DecisionsTotal.WithLabelValues(tier, outcome).Inc()
	if cost > 0 {
		m.DecisionCost.WithLabelValues(tier).Add(cost)
	}
}

// RecordEdgeOperation counts one graph write.
func RecordEdgeOperation(m *AppMetrics, operation, relationshipType string) {
	if m == nil {
		return
	}
	m.EdgeOperationsTotal.WithLabelValues(operation, relationshipType).Inc()
}

// RecordEmbeddingCache counts a cache hit or miss.
func RecordEmbeddingCache(m *AppMetrics, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.EmbeddingCacheTotal.WithLabelValues(result).Inc()
}

// RecordError counts one error against a component.
func RecordError(m *AppMetrics, component, code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}
