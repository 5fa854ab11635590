package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/clearfreight/tariffscope/internal/domain/catalog"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/pkg/errors"
)

const defaultSearchSize = 50

// KeywordSearcher decorates a catalog repository, serving keyword queries
// from the full-text index.  Index failures fall back to the repository so
// classification keeps working when the cluster is down.
type KeywordSearcher struct {
	inner  catalog.Repository
	client *Client
	logger logging.Logger
}

var _ catalog.Repository = (*KeywordSearcher)(nil)

// NewKeywordSearcher wraps a catalog repository with index-backed search.
func NewKeywordSearcher(inner catalog.Repository, client *Client, logger logging.Logger) *KeywordSearcher {
	return &KeywordSearcher{inner: inner, client: client, logger: logger.Named("keyword-searcher")}
}

func (s *KeywordSearcher) GetByCode(ctx context.Context, code string) (*catalog.CodeEntry, error) {
	return s.inner.GetByCode(ctx, code)
}

func (s *KeywordSearcher) GetChildren(ctx context.Context, parentCode string) ([]*catalog.CodeEntry, error) {
	return s.inner.GetChildren(ctx, parentCode)
}

func (s *KeywordSearcher) GetByPrefix(ctx context.Context, prefix string) ([]*catalog.CodeEntry, error) {
	return s.inner.GetByPrefix(ctx, prefix)
}

func (s *KeywordSearcher) GetAncestors(ctx context.Context, code string) ([]*catalog.CodeEntry, error) {
	return s.inner.GetAncestors(ctx, code)
}

func (s *KeywordSearcher) SearchByKeyword(ctx context.Context, tokens []string, filter catalog.SearchFilter) ([]*catalog.CodeEntry, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	entries, err := s.searchIndex(ctx, tokens, filter)
	if err != nil {
		s.logger.Warn("Index search failed, falling back to catalog store", logging.Err(err))
		return s.inner.SearchByKeyword(ctx, tokens, filter)
	}
	return entries, nil
}

func (s *KeywordSearcher) searchIndex(ctx context.Context, tokens []string, filter catalog.SearchFilter) ([]*catalog.CodeEntry, error) {
	body, err := json.Marshal(buildQuery(tokens, filter))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode search query")
	}

	req := opensearchapi.SearchRequest{
		Index: []string{s.client.Index()},
		Body:  bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, s.client.os)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "index search failed")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return nil, errors.Newf(errors.ErrCodeExternalService, "index search returned %s", resp.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode search response")
	}

	entries := make([]*catalog.CodeEntry, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		entries = append(entries, hit.Source.toEntry())
	}
	return entries, nil
}

// buildQuery renders tokens and the search filter as an OpenSearch bool
// query.  Tokens must match either the keyword list or the description;
// level and prefix restrictions apply as filters.
func buildQuery(tokens []string, filter catalog.SearchFilter) map[string]interface{} {
	size := filter.Limit
	if size <= 0 {
		size = defaultSearchSize
	}

	levels := filter.Levels
	if len(levels) == 0 {
		levels = []catalog.Level{catalog.LevelTariffLine, catalog.LevelStatistical}
	}
	levelNames := make([]string, 0, len(levels))
	for _, l := range levels {
		levelNames = append(levelNames, string(l))
	}

	filters := []map[string]interface{}{
		{"terms": map[string]interface{}{"level": levelNames}},
	}

	prefixes := filter.Headings
	if len(prefixes) == 0 {
		prefixes = filter.Chapters
	}
	if len(prefixes) > 0 {
		should := make([]map[string]interface{}, 0, len(prefixes))
		for _, p := range prefixes {
			if normalized := catalog.Normalize(p); normalized != "" {
				should = append(should, map[string]interface{}{
					"prefix": map[string]interface{}{"code": normalized},
				})
			}
		}
		filters = append(filters, map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		})
	}

	return map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{
						"bool": map[string]interface{}{
							"should": []map[string]interface{}{
								{"terms": map[string]interface{}{"keywords": tokens}},
								{"match": map[string]interface{}{
									"description": map[string]interface{}{
										"query": strings.Join(tokens, " "),
									},
								}},
							},
							"minimum_should_match": 1,
						},
					},
				},
				"filter": filters,
			},
		},
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source codeDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// codeDocument is the indexed form of a catalog entry.
type codeDocument struct {
	Code            string   `json:"code"`
	Level           string   `json:"level"`
	Description     string   `json:"description"`
	ParentCode      string   `json:"parent_code"`
	ParentGroupings []string `json:"parent_groupings,omitempty"`
	BaseRate        string   `json:"base_rate,omitempty"`
	UnitOfQuantity  []string `json:"unit_of_quantity,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
}

func (d codeDocument) toEntry() *catalog.CodeEntry {
	return &catalog.CodeEntry{
		Code:            d.Code,
		Level:           catalog.Level(d.Level),
		Description:     d.Description,
		ParentCode:      d.ParentCode,
		ParentGroupings: d.ParentGroupings,
		BaseRate:        d.BaseRate,
		UnitOfQuantity:  d.UnitOfQuantity,
		Keywords:        d.Keywords,
	}
}

func documentFromEntry(e *catalog.CodeEntry) codeDocument {
	return codeDocument{
		Code:            e.Code,
		Level:           string(e.Level),
		Description:     e.Description,
		ParentCode:      e.ParentCode,
		ParentGroupings: e.ParentGroupings,
		BaseRate:        e.BaseRate,
		UnitOfQuantity:  e.UnitOfQuantity,
		Keywords:        e.Keywords,
	}
}
