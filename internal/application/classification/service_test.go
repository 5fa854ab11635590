package classification

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appduty "github.com/clearfreight/tariffscope/internal/application/duty"
	"github.com/clearfreight/tariffscope/internal/config"
	"github.com/clearfreight/tariffscope/internal/domain/tariff"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
)

func newTestPipeline(repo *fakeCatalog, semantic SemanticSearcher, enricher Enricher) Service {
	dutySvc := appduty.NewService(tariff.NewDefaultRegistry(), tariff.NewDefaultProgramCatalog(),
		config.DutyConfig{BaselineRate: 10, DataVersion: "test", Disclaimer: "advisory"},
		logging.NewNopLogger(), nil)
	cfg := testConfig()
	if enricher != nil {
		cfg.EnableLLMEnrichment = true
	}
	return NewService(Deps{
		Catalog:  repo,
		Semantic: semantic,
		Enricher: enricher,
		Duty:     dutySvc,
		Config:   cfg,
		Logger:   logging.NewNopLogger(),
	})
}

func TestClassifyCottonTShirtEndToEnd(t *testing.T) {
	svc := newTestPipeline(apparelCatalog(), nil, nil)

	result, err := svc.Classify(context.Background(), &Input{
		Description:     "cotton t-shirt for boys",
		CountryOfOrigin: "CN",
		UnitValue:       4,
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.NotNil(t, result.Primary)

	assert.Equal(t, "6109", result.Primary.Code[:4],
		"t-shirt must land in heading 6109, not 6205")
	assert.Equal(t, "6109.10.00", result.Primary.DisplayCode)
	assert.Contains(t, result.Primary.FullDescription, "T-shirts")
	assert.GreaterOrEqual(t, result.Primary.Confidence, 40.0)

	// China origin: base 16.5 + fentanyl 10 + reciprocal 10.
	b := result.Primary.DutyBreakdown
	require.NotNil(t, b)
	assert.InDelta(t, 36.5, b.TotalRate, 1e-9)
	assert.InDelta(t, 4*36.5/100, b.EstimatedDutyPerUnit, 1e-9)

	require.NotNil(t, result.Trace)
	assert.NotEmpty(t, result.Trace.Steps)
	assert.Equal(t, "keyword", result.Trace.RetrievalPath)
}

func TestClassifyNoCandidatesIsSuccessFalse(t *testing.T) {
	svc := newTestPipeline(apparelCatalog(), nil, nil)

	result, err := svc.Classify(context.Background(), &Input{Description: "quantum flux capacitor"})
	require.NoError(t, err, "no candidates is a reported outcome, not an error")
	assert.False(t, result.Success)
	assert.Nil(t, result.Primary)
	assert.NotNil(t, result.Alternatives)
	assert.Empty(t, result.Alternatives)
}

func TestClassifyEmptyDescriptionRejected(t *testing.T) {
	svc := newTestPipeline(apparelCatalog(), nil, nil)
	_, err := svc.Classify(context.Background(), &Input{Description: "   "})
	require.Error(t, err)
	_, err = svc.Classify(context.Background(), nil)
	require.Error(t, err)
}

func TestClassifyLowConfidenceAttachesClarification(t *testing.T) {
	svc := newTestPipeline(apparelCatalog(), nil, nil)

	// "garment" hits descriptions weakly: no leading term, no material, no
	// product type, so the best score stays under the threshold.
	result, err := svc.Classify(context.Background(), &Input{Description: "knitted garment"})
	require.NoError(t, err)
	if !result.Success {
		t.Skip("retrieval found nothing for the vague query")
	}
	require.NotNil(t, result.Primary)
	if result.Primary.Confidence < 40 {
		require.NotNil(t, result.NeedsClarification)
		assert.NotEmpty(t, result.NeedsClarification.Options)
	}
}

func TestClassifyAnswerPinsCode(t *testing.T) {
	svc := newTestPipeline(apparelCatalog(), nil, nil)

	result, err := svc.Classify(context.Background(), &Input{
		Answers:         map[string]string{"which": "6109.10.00.12"},
		CountryOfOrigin: "SG",
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.NotNil(t, result.Primary)
	assert.Equal(t, "6109100012", result.Primary.Code)
	assert.InDelta(t, 100.0, result.Primary.Confidence, 1e-9)

	// Statistical suffix carries no rate of its own; the tariff line's
	// 16.5% applies, plus the Singapore baseline.
	require.NotNil(t, result.Primary.DutyBreakdown)
	assert.InDelta(t, 26.5, result.Primary.DutyBreakdown.TotalRate, 1e-9)
}

func TestClassifySemanticPathInTrace(t *testing.T) {
	semantic := &fakeSemantic{hits: []SemanticHit{
		{Code: "61091000", Similarity: 0.93},
	}}
	svc := newTestPipeline(apparelCatalog(), semantic, nil)

	result, err := svc.Classify(context.Background(), &Input{Description: "cotton t-shirt"})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "semantic", result.Trace.RetrievalPath)
}

// recordingEnricher counts calls and returns canned enrichment.
type recordingEnricher struct {
	mu           sync.Mutex
	translations int
}

func (r *recordingEnricher) Interpret(_ context.Context, _ string) (*InterpretedQuery, error) {
	return &InterpretedQuery{}, nil
}

func (r *recordingEnricher) Translate(_ context.Context, _, _ string) (string, error) {
	r.mu.Lock()
	r.translations++
	r.mu.Unlock()
	return "a plain-language description", nil
}

func (r *recordingEnricher) Justify(_ context.Context, _, _, _ string) (string, error) {
	return "because it is a knitted cotton t-shirt", nil
}

func TestClassifyEnrichmentDecoratesResult(t *testing.T) {
	enricher := &recordingEnricher{}
	svc := newTestPipeline(apparelCatalog(), nil, enricher)

	result, err := svc.Classify(context.Background(), &Input{Description: "cotton t-shirt for boys"})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "a plain-language description", result.Primary.PlainLanguage)
	assert.NotEmpty(t, result.Primary.Justification)
	assert.LessOrEqual(t, enricher.translations, config.DefaultMaxEnrichment,
		"enrichment fan-out must stay within the cap")
}

func TestClassifyAlternativesExcludePrimary(t *testing.T) {
	svc := newTestPipeline(apparelCatalog(), nil, nil)
	result, err := svc.Classify(context.Background(), &Input{Description: "cotton t-shirt"})
	require.NoError(t, err)
	require.True(t, result.Success)
	for _, alt := range result.Alternatives {
		assert.NotEqual(t, result.Primary.Code, alt.Code)
	}
}

func newMeteredPipeline(repo *fakeCatalog, metrics Metrics) Service {
	dutySvc := appduty.NewService(tariff.NewDefaultRegistry(), tariff.NewDefaultProgramCatalog(),
		config.DutyConfig{BaselineRate: 10, DataVersion: "test", Disclaimer: "advisory"},
		logging.NewNopLogger(), nil)
	return NewService(Deps{
		Catalog: repo,
		Duty:    dutySvc,
		Metrics: metrics,
		Config:  testConfig(),
		Logger:  logging.NewNopLogger(),
	})
}

func TestClassifyRecordsOutcomeAndRetrieval(t *testing.T) {
	metrics := newRecordingMetrics()
	svc := newMeteredPipeline(apparelCatalog(), metrics)

	result, err := svc.Classify(context.Background(), &Input{Description: "cotton t-shirt for boys"})
	require.NoError(t, err)
	require.True(t, result.Success)

	require.Len(t, metrics.outcomes, 1)
	assert.Equal(t, "classified", metrics.outcomes[0])
	assert.Equal(t, result.Primary.Confidence, metrics.confidences[0])
	assert.Positive(t, metrics.retrievals["keyword"])
}

func TestClassifyRecordsNoCandidatesOutcome(t *testing.T) {
	metrics := newRecordingMetrics()
	svc := newMeteredPipeline(apparelCatalog(), metrics)

	result, err := svc.Classify(context.Background(), &Input{Description: "quantum flux capacitor"})
	require.NoError(t, err)
	require.False(t, result.Success)

	require.Len(t, metrics.outcomes, 1)
	assert.Equal(t, "no_candidates", metrics.outcomes[0])
	assert.Zero(t, metrics.confidences[0])
}

func TestClassifyRecordsErrorOutcome(t *testing.T) {
	metrics := newRecordingMetrics()
	svc := newMeteredPipeline(apparelCatalog(), metrics)

	_, err := svc.Classify(context.Background(), &Input{Description: "   "})
	require.Error(t, err)

	require.Len(t, metrics.outcomes, 1)
	assert.Equal(t, "error", metrics.outcomes[0])
}
