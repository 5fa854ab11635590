package classification

import (
	"context"
	"strings"

	"github.com/clearfreight/tariffscope/internal/config"
	"github.com/clearfreight/tariffscope/internal/domain/catalog"
	"github.com/clearfreight/tariffscope/internal/domain/classify"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
)

// searcher produces the deduplicated candidate set for one request.  The
// semantic path runs first when available; any failure there degrades
// silently to keyword retrieval.
type searcher struct {
	catalog  catalog.Repository
	semantic SemanticSearcher
	cfg      config.ClassificationConfig
	logger   logging.Logger
	metrics  Metrics
}

func newSearcher(repo catalog.Repository, semantic SemanticSearcher, cfg config.ClassificationConfig, logger logging.Logger, metrics Metrics) *searcher {
	return &searcher{catalog: repo, semantic: semantic, cfg: cfg, logger: logger.Named("search"), metrics: metrics}
}

// search runs both retrieval paths in order and returns candidates with no
// two sharing an 8-digit prefix.  An empty result is the no-candidates
// signal, not an error.
func (s *searcher) search(ctx context.Context, description string, attrs classify.Attributes) ([]*classify.Candidate, error) {
	if len(attrs.Tokens) == 0 {
		return nil, nil
	}

	if cands := s.semanticSearch(ctx, description, attrs); len(cands) > 0 {
		return classify.DedupeByTariffLine(cands), nil
	}

	cands, err := s.keywordSearch(ctx, attrs)
	if err != nil {
		return nil, err
	}
	return classify.DedupeByTariffLine(cands), nil
}

// semanticSearch queries the similarity collaborator with the enriched query
// and applies the primary and per-chapter diversity thresholds.  Errors and
// timeouts return nil so the caller falls through to keyword retrieval.
func (s *searcher) semanticSearch(ctx context.Context, description string, attrs classify.Attributes) []*classify.Candidate {
	if s.semantic == nil || !s.cfg.EnableSemanticSearch {
		return nil
	}

	query := description
	if attrs.ProductType != "" && !strings.Contains(strings.ToLower(description), attrs.ProductType) {
		query += " " + attrs.ProductType
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.SearchTimeout)
	defer cancel()

	limit := s.cfg.MaxCandidates * 3
	hits, err := s.semantic.SimilaritySearch(callCtx, query, limit)
	if err != nil {
		s.logger.Warn("semantic search unavailable, falling back to keyword retrieval",
			logging.Err(err))
		s.metrics.SemanticSearchDegraded()
		return nil
	}

	keep := s.applyThresholds(hits)
	if len(keep) == 0 {
		return nil
	}

	cands := make([]*classify.Candidate, 0, len(keep))
	for _, hit := range keep {
		entry, err := s.catalog.GetByCode(ctx, hit.Code)
		if err != nil {
			// Index and catalog can briefly disagree after a refresh.
			s.logger.Debug("semantic hit not in catalog", logging.String("code", hit.Code))
			continue
		}
		cands = append(cands, &classify.Candidate{
			Entry:          entry,
			Source:         classify.SourceSemantic,
			RetrievalScore: hit.Similarity,
		})
	}
	return cands
}

// applyThresholds keeps hits at or above the primary threshold plus the best
// hit per chapter at or above the diversity threshold, so near-duplicates of
// one interpretation cannot crowd out the set.
func (s *searcher) applyThresholds(hits []SemanticHit) []SemanticHit {
	var keep []SemanticHit
	bestPerChapter := make(map[string]SemanticHit)
	kept := make(map[string]bool)

	for _, hit := range hits {
		code := catalog.Normalize(hit.Code)
		if len(code) < 2 {
			continue
		}
		if hit.Similarity >= s.cfg.SemanticPrimaryThreshold {
			keep = append(keep, hit)
			kept[code] = true
			continue
		}
		if hit.Similarity < s.cfg.SemanticDiversityThreshold {
			continue
		}
		chapter := code[:2]
		if best, ok := bestPerChapter[chapter]; !ok || hit.Similarity > best.Similarity {
			bestPerChapter[chapter] = hit
		}
	}

	primaryChapters := make(map[string]bool, len(keep))
	for _, hit := range keep {
		primaryChapters[catalog.Normalize(hit.Code)[:2]] = true
	}
	for chapter, hit := range bestPerChapter {
		if !primaryChapters[chapter] && !kept[catalog.Normalize(hit.Code)] {
			keep = append(keep, hit)
		}
	}
	return keep
}

// keywordSearch accumulates candidates over three passes of decreasing
// selectivity: expected headings narrowed by material chapters, material
// chapters alone, then unrestricted token match.  It stops as soon as the
// candidate limit is reached.
func (s *searcher) keywordSearch(ctx context.Context, attrs classify.Attributes) ([]*classify.Candidate, error) {
	var (
		cands []*classify.Candidate
		seen  = make(map[string]bool)
	)

	add := func(entries []*catalog.CodeEntry, tier float64) {
		for _, e := range entries {
			key := catalog.Normalize(e.Code)
			if len(key) > 8 {
				key = key[:8]
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			cands = append(cands, &classify.Candidate{
				Entry:          e,
				Source:         classify.SourceKeyword,
				RetrievalScore: tier,
			})
		}
	}

	for _, p := range s.keywordPasses(attrs) {
		if len(cands) >= s.cfg.MaxCandidates {
			break
		}
		entries, err := s.catalog.SearchByKeyword(ctx, attrs.Tokens, catalog.SearchFilter{
			Chapters: p.chapters,
			Headings: p.headings,
			Limit:    s.cfg.MaxCandidates - len(cands),
		})
		if err != nil {
			return nil, err
		}
		add(entries, p.tier)
	}
	return cands, nil
}

type keywordPass struct {
	headings []string
	chapters []string
	tier     float64
}

// keywordPasses orders the fallback passes by selectivity.  The heading pass
// intersects expected headings with material-implied chapters when both
// exist; an empty intersection falls back to the full heading set rather
// than dropping the product-type signal.
func (s *searcher) keywordPasses(attrs classify.Attributes) []keywordPass {
	var passes []keywordPass
	if len(attrs.ExpectedHeadings) > 0 {
		headings := attrs.ExpectedHeadings
		if len(attrs.MaterialChapters) > 0 {
			if narrowed := intersectByChapter(attrs.ExpectedHeadings, attrs.MaterialChapters); len(narrowed) > 0 {
				headings = narrowed
			}
		}
		passes = append(passes, keywordPass{headings: headings, tier: 3})
	}
	if len(attrs.MaterialChapters) > 0 {
		passes = append(passes, keywordPass{chapters: attrs.MaterialChapters, tier: 2})
	}
	passes = append(passes, keywordPass{tier: 1})
	return passes
}

// intersectByChapter keeps headings whose chapter prefix is in the chapter
// set.
func intersectByChapter(headings, chapters []string) []string {
	set := make(map[string]bool, len(chapters))
	for _, c := range chapters {
		set[c] = true
	}
	var out []string
	for _, h := range headings {
		if len(h) >= 2 && set[h[:2]] {
			out = append(out, h)
		}
	}
	return out
}
