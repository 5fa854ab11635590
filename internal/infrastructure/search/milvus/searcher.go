package milvus

import (
	"context"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/clearfreight/tariffscope/internal/application/classification"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/pkg/errors"
)

const (
	defaultTopK          = 25
	defaultSearchTimeout = 3 * time.Second
)

// Embedder turns text into the vector space the collection was built with.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher implements classification.SemanticSearcher: embed the query,
// search the collection, return codes with cosine similarities.
type Searcher struct {
	client   *Client
	embedder Embedder
	logger   logging.Logger
}

var _ classification.SemanticSearcher = (*Searcher)(nil)

// NewSearcher constructs a semantic searcher.
func NewSearcher(client *Client, embedder Embedder, logger logging.Logger) *Searcher {
	return &Searcher{client: client, embedder: embedder, logger: logger.Named("semantic-searcher")}
}

// SimilaritySearch embeds the text and returns the closest catalog entries.
func (s *Searcher) SimilaritySearch(ctx context.Context, text string, limit int) ([]classification.SemanticHit, error) {
	if limit <= 0 {
		limit = s.client.cfg.DefaultTopK
	}
	if limit <= 0 {
		limit = defaultTopK
	}

	timeout := s.client.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSearchTimeout
	}
	searchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	vector, err := s.embedder.Embed(searchCtx, text)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "query embedding failed")
	}

	sp, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSemanticSearchUnavailable, "search param construction failed")
	}

	results, err := s.client.milvus.Search(
		searchCtx,
		s.client.collectionName(),
		nil,
		"",
		[]string{fieldCode},
		[]entity.Vector{entity.FloatVector(vector)},
		fieldEmbedding,
		entity.COSINE,
		limit,
		sp,
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSemanticSearchUnavailable, "similarity search failed")
	}

	var hits []classification.SemanticHit
	for _, result := range results {
		codes, ok := result.Fields.GetColumn(fieldCode).(*entity.ColumnVarChar)
		if !ok {
			continue
		}
		for i, code := range codes.Data() {
			if i >= len(result.Scores) {
				break
			}
			hits = append(hits, classification.SemanticHit{
				Code:       code,
				Similarity: float64(result.Scores[i]),
			})
		}
	}

	s.logger.Debug("Similarity search complete",
		logging.Int("hits", len(hits)),
		logging.Int("limit", limit),
	)
	return hits, nil
}
