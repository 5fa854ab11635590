package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Default buckets.
var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultPipelineDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2, 5, 10}
	DefaultConfidenceBuckets       = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	DefaultCandidateCountBuckets   = []float64{1, 2, 5, 10, 15, 25, 50}
)

// AppMetrics holds every application metric.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Classification pipeline
	ClassificationsTotal     *prometheus.CounterVec
	ClassificationDuration   *prometheus.HistogramVec
	ClassificationConfidence *prometheus.HistogramVec
	RetrievalCandidates      *prometheus.HistogramVec
	SemanticSearchFailures   *prometheus.CounterVec

	// Duty calculator
	DutyCalculationsTotal *prometheus.CounterVec

	// Collaborators
	LLMRequestsTotal *prometheus.CounterVec
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
}

// NewAppMetrics registers every metric on the collector.
func NewAppMetrics(c *Collector) *AppMetrics {
	return &AppMetrics{
		HTTPRequestsTotal: c.RegisterCounter("http_requests_total",
			"Total HTTP requests", "method", "path", "status"),
		HTTPRequestDuration: c.RegisterHistogram("http_request_duration_seconds",
			"HTTP request duration", DefaultHTTPDurationBuckets, "method", "path"),

		ClassificationsTotal: c.RegisterCounter("classifications_total",
			"Classification requests by outcome", "outcome"),
		ClassificationDuration: c.RegisterHistogram("classification_duration_seconds",
			"End-to-end classification pipeline duration", DefaultPipelineDurationBuckets),
		ClassificationConfidence: c.RegisterHistogram("classification_confidence",
			"Primary match confidence", DefaultConfidenceBuckets),
		RetrievalCandidates: c.RegisterHistogram("retrieval_candidates",
			"Candidates surviving retrieval by path", DefaultCandidateCountBuckets, "path"),
		SemanticSearchFailures: c.RegisterCounter("semantic_search_failures_total",
			"Semantic searches that degraded to the keyword path"),

		DutyCalculationsTotal: c.RegisterCounter("duty_calculations_total",
			"Duty calculations by origin country", "country"),

		LLMRequestsTotal: c.RegisterCounter("llm_requests_total",
			"LLM collaborator calls by operation and result", "operation", "result"),
		CacheHitsTotal: c.RegisterCounter("cache_hits_total",
			"Catalog cache hits", "kind"),
		CacheMissesTotal: c.RegisterCounter("cache_misses_total",
			"Catalog cache misses", "kind"),
	}
}

// The methods below satisfy the metrics ports the application and
// infrastructure packages declare, so none of them import this package.

// ClassificationObserved records one finished classification request.
// Confidence is observed only when positive, keeping no-candidate and error
// outcomes out of the distribution.
func (m *AppMetrics) ClassificationObserved(outcome string, elapsed time.Duration, confidence float64) {
	m.ClassificationsTotal.WithLabelValues(outcome).Inc()
	m.ClassificationDuration.WithLabelValues().Observe(elapsed.Seconds())
	if confidence > 0 {
		m.ClassificationConfidence.WithLabelValues().Observe(confidence)
	}
}

// CandidatesRetrieved records the candidate set size for one retrieval path.
func (m *AppMetrics) CandidatesRetrieved(path string, count int) {
	m.RetrievalCandidates.WithLabelValues(path).Observe(float64(count))
}

// SemanticSearchDegraded counts one semantic search that fell back to
// keyword retrieval.
func (m *AppMetrics) SemanticSearchDegraded() {
	m.SemanticSearchFailures.WithLabelValues().Inc()
}

// DutyCalculated counts one finished duty calculation by origin country.
func (m *AppMetrics) DutyCalculated(country string) {
	if country == "" {
		country = "none"
	}
	m.DutyCalculationsTotal.WithLabelValues(country).Inc()
}

// LLMRequestObserved counts one model call by operation and result.
func (m *AppMetrics) LLMRequestObserved(operation, result string) {
	m.LLMRequestsTotal.WithLabelValues(operation, result).Inc()
}

// CacheHit counts a catalog cache hit by lookup kind.
func (m *AppMetrics) CacheHit(kind string) {
	m.CacheHitsTotal.WithLabelValues(kind).Inc()
}

// CacheMiss counts a catalog cache miss by lookup kind.
func (m *AppMetrics) CacheMiss(kind string) {
	m.CacheMissesTotal.WithLabelValues(kind).Inc()
}
