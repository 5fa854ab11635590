package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	recorder := httptest.NewRecorder()
	c.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, recorder.Code)
	return recorder.Body.String()
}

func TestCollectorRegistersAndServes(t *testing.T) {
	c := NewCollector("tariffscope")
	m := NewAppMetrics(c)

	m.ClassificationsTotal.WithLabelValues("classified").Inc()
	m.ClassificationConfidence.WithLabelValues().Observe(82.5)
	m.DutyCalculationsTotal.WithLabelValues("CN").Add(3)

	body := scrape(t, c)
	assert.Contains(t, body, `tariffscope_classifications_total{outcome="classified"} 1`)
	assert.Contains(t, body, `tariffscope_duty_calculations_total{country="CN"} 3`)
	assert.True(t, strings.Contains(body, "tariffscope_classification_confidence_bucket"))
}

func TestAppMetricsAdapterMethods(t *testing.T) {
	c := NewCollector("tariffscope")
	m := NewAppMetrics(c)

	m.ClassificationObserved("classified", 120*time.Millisecond, 87.5)
	m.ClassificationObserved("no_candidates", 10*time.Millisecond, 0)
	m.CandidatesRetrieved("semantic", 12)
	m.SemanticSearchDegraded()
	m.DutyCalculated("CN")
	m.DutyCalculated("")
	m.LLMRequestObserved("interpret", "ok")
	m.CacheHit("entry")
	m.CacheMiss("children")

	body := scrape(t, c)
	assert.Contains(t, body, `tariffscope_classifications_total{outcome="classified"} 1`)
	assert.Contains(t, body, `tariffscope_classifications_total{outcome="no_candidates"} 1`)
	// Zero-confidence outcomes stay out of the confidence histogram.
	assert.Contains(t, body, `tariffscope_classification_confidence_count 1`)
	assert.Contains(t, body, `tariffscope_retrieval_candidates_count{path="semantic"} 1`)
	assert.Contains(t, body, `tariffscope_semantic_search_failures_total 1`)
	assert.Contains(t, body, `tariffscope_duty_calculations_total{country="CN"} 1`)
	assert.Contains(t, body, `tariffscope_duty_calculations_total{country="none"} 1`)
	assert.Contains(t, body, `tariffscope_llm_requests_total{operation="interpret",result="ok"} 1`)
	assert.Contains(t, body, `tariffscope_cache_hits_total{kind="entry"} 1`)
	assert.Contains(t, body, `tariffscope_cache_misses_total{kind="children"} 1`)
}

func TestCollectorIsolatedRegistry(t *testing.T) {
	a := NewCollector("a")
	b := NewCollector("b")

	// Same metric name on both registries must not collide.
	assert.NotPanics(t, func() {
		a.RegisterCounter("requests_total", "requests", "status")
		b.RegisterCounter("requests_total", "requests", "status")
	})
}
