package milvus

import (
	"context"
	"testing"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearfreight/tariffscope/internal/config"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/pkg/errors"
)

// mockMilvusClient overrides Search; the embedded interface panics on any
// other call, which is what we want in these tests.
type mockMilvusClient struct {
	client.Client
	searchFunc func(topK int) ([]client.SearchResult, error)
}

func (m *mockMilvusClient) Search(_ context.Context, _ string, _ []string, _ string, _ []string,
	_ []entity.Vector, _ string, _ entity.MetricType, topK int, _ entity.SearchParam,
	_ ...client.SearchQueryOptionFunc) ([]client.SearchResult, error) {
	return m.searchFunc(topK)
}

type staticEmbedder struct {
	vector []float32
	err    error
}

func (s *staticEmbedder) Embed(context.Context, string) ([]float32, error) {
	return s.vector, s.err
}

func newTestSearcher(mock client.Client, embedder Embedder) *Searcher {
	c := &Client{
		milvus: mock,
		cfg:    config.MilvusConfig{Collection: "test", DefaultTopK: 10, Timeout: time.Second},
		logger: logging.NewNopLogger(),
	}
	return NewSearcher(c, embedder, logging.NewNopLogger())
}

func searchResult(codes []string, scores []float32) client.SearchResult {
	rs := client.ResultSet{entity.NewColumnVarChar(fieldCode, codes)}
	return client.SearchResult{
		ResultCount: len(codes),
		Fields:      rs,
		Scores:      scores,
	}
}

func TestSimilaritySearchMapsHits(t *testing.T) {
	mock := &mockMilvusClient{searchFunc: func(topK int) ([]client.SearchResult, error) {
		assert.Equal(t, 5, topK)
		return []client.SearchResult{
			searchResult([]string{"61091000", "62052020"}, []float32{0.91, 0.62}),
		}, nil
	}}

	searcher := newTestSearcher(mock, &staticEmbedder{vector: []float32{0.1, 0.2}})
	hits, err := searcher.SimilaritySearch(context.Background(), "cotton t-shirt", 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "61091000", hits[0].Code)
	assert.InDelta(t, 0.91, hits[0].Similarity, 1e-6)
}

func TestSimilaritySearchDefaultsTopK(t *testing.T) {
	mock := &mockMilvusClient{searchFunc: func(topK int) ([]client.SearchResult, error) {
		assert.Equal(t, 10, topK)
		return nil, nil
	}}

	searcher := newTestSearcher(mock, &staticEmbedder{vector: []float32{0.1}})
	hits, err := searcher.SimilaritySearch(context.Background(), "anything", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSimilaritySearchEmbeddingFailure(t *testing.T) {
	mock := &mockMilvusClient{searchFunc: func(int) ([]client.SearchResult, error) {
		t.Fatal("search should not run when embedding fails")
		return nil, nil
	}}

	searcher := newTestSearcher(mock, &staticEmbedder{err: assert.AnError})
	_, err := searcher.SimilaritySearch(context.Background(), "anything", 5)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmbeddingFailed))
}

func TestSimilaritySearchSearchFailure(t *testing.T) {
	mock := &mockMilvusClient{searchFunc: func(int) ([]client.SearchResult, error) {
		return nil, assert.AnError
	}}

	searcher := newTestSearcher(mock, &staticEmbedder{vector: []float32{0.1}})
	_, err := searcher.SimilaritySearch(context.Background(), "anything", 5)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSemanticSearchUnavailable))
}
