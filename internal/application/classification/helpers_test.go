package classification

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/clearfreight/tariffscope/internal/config"
	"github.com/clearfreight/tariffscope/internal/domain/catalog"
	"github.com/clearfreight/tariffscope/internal/domain/classify"
	"github.com/clearfreight/tariffscope/pkg/errors"
)

// fakeCatalog is an in-memory catalog.Repository seeded per test.
type fakeCatalog struct {
	entries map[string]*catalog.CodeEntry

	// searchErr forces SearchByKeyword to fail.
	searchErr error
}

func newFakeCatalog(entries ...*catalog.CodeEntry) *fakeCatalog {
	f := &fakeCatalog{entries: make(map[string]*catalog.CodeEntry, len(entries))}
	for _, e := range entries {
		e.Code = catalog.Normalize(e.Code)
		if e.Level == "" {
			e.Level = catalog.LevelForCode(e.Code)
		}
		if e.ParentCode == "" {
			e.ParentCode = catalog.ParentCode(e.Code)
		}
		f.entries[e.Code] = e
	}
	return f
}

func (f *fakeCatalog) GetByCode(_ context.Context, code string) (*catalog.CodeEntry, error) {
	if e, ok := f.entries[catalog.Normalize(code)]; ok {
		return e, nil
	}
	return nil, errors.New(errors.ErrCodeHTSCodeNotFound, "code not found")
}

func (f *fakeCatalog) GetChildren(_ context.Context, parentCode string) ([]*catalog.CodeEntry, error) {
	parent := catalog.Normalize(parentCode)
	var out []*catalog.CodeEntry
	for _, e := range f.entries {
		if e.ParentCode == parent {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out, nil
}

func (f *fakeCatalog) GetByPrefix(_ context.Context, prefix string) ([]*catalog.CodeEntry, error) {
	p := catalog.Normalize(prefix)
	var out []*catalog.CodeEntry
	for _, e := range f.entries {
		if strings.HasPrefix(e.Code, p) {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out, nil
}

func (f *fakeCatalog) SearchByKeyword(_ context.Context, tokens []string, filter catalog.SearchFilter) ([]*catalog.CodeEntry, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []*catalog.CodeEntry
	for _, e := range f.entries {
		if !e.IsLeaf() || !matchesFilter(e, filter) || !matchesTokens(e, tokens) {
			continue
		}
		out = append(out, e)
	}
	sortEntries(out)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeCatalog) GetAncestors(_ context.Context, code string) ([]*catalog.CodeEntry, error) {
	var out []*catalog.CodeEntry
	for _, ancestor := range catalog.AncestorCodes(code) {
		if e, ok := f.entries[ancestor]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func matchesFilter(e *catalog.CodeEntry, filter catalog.SearchFilter) bool {
	if len(filter.Headings) > 0 {
		for _, h := range filter.Headings {
			if e.Heading() == h {
				return true
			}
		}
		return false
	}
	if len(filter.Chapters) > 0 {
		for _, c := range filter.Chapters {
			if e.Chapter() == c {
				return true
			}
		}
		return false
	}
	return true
}

func matchesTokens(e *catalog.CodeEntry, tokens []string) bool {
	desc := strings.ToLower(e.Description)
	for _, t := range tokens {
		for _, kw := range e.Keywords {
			if classify.Singularize(strings.ToLower(kw)) == t {
				return true
			}
		}
		if len(t) >= 3 && strings.Contains(desc, t) {
			return true
		}
	}
	return false
}

func sortEntries(entries []*catalog.CodeEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })
}

// fakeSemantic returns canned hits or a forced error.
type fakeSemantic struct {
	hits []SemanticHit
	err  error
}

func (f *fakeSemantic) SimilaritySearch(_ context.Context, _ string, _ int) ([]SemanticHit, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

// recordingMetrics captures pipeline observations for assertions.
type recordingMetrics struct {
	outcomes    []string
	confidences []float64
	retrievals  map[string]int
	degraded    int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{retrievals: make(map[string]int)}
}

func (m *recordingMetrics) ClassificationObserved(outcome string, _ time.Duration, confidence float64) {
	m.outcomes = append(m.outcomes, outcome)
	m.confidences = append(m.confidences, confidence)
}

func (m *recordingMetrics) CandidatesRetrieved(path string, count int) {
	m.retrievals[path] += count
}

func (m *recordingMetrics) SemanticSearchDegraded() {
	m.degraded++
}

// apparelCatalog seeds the tree used across the pipeline tests.
func apparelCatalog() *fakeCatalog {
	return newFakeCatalog(
		&catalog.CodeEntry{Code: "61", Description: "Articles of apparel and clothing accessories, knitted or crocheted"},
		&catalog.CodeEntry{Code: "6109", Description: "T-shirts, singlets, tank tops and similar garments, knitted or crocheted:", Keywords: []string{"t-shirt", "singlet", "tank top"}},
		&catalog.CodeEntry{Code: "610910", Description: "Of cotton:"},
		&catalog.CodeEntry{Code: "61091000", Description: "Of cotton", BaseRate: "16.5%", Keywords: []string{"t-shirt", "cotton"}},
		&catalog.CodeEntry{Code: "6109100012", Description: "Boys'", ParentGroupings: []string{"Men's or boys':"}, Keywords: []string{"t-shirt", "boys"}},
		&catalog.CodeEntry{Code: "610990", Description: "Of other textile materials:"},
		&catalog.CodeEntry{Code: "61099010", Description: "Of man-made fibers", BaseRate: "32%", Keywords: []string{"t-shirt"}},
		&catalog.CodeEntry{Code: "62", Description: "Articles of apparel and clothing accessories, not knitted or crocheted"},
		&catalog.CodeEntry{Code: "6205", Description: "Men's or boys' shirts:", Keywords: []string{"shirt"}},
		&catalog.CodeEntry{Code: "620520", Description: "Of cotton:"},
		&catalog.CodeEntry{Code: "62052020", Description: "Dress shirts", BaseRate: "19.7%", Keywords: []string{"shirt", "dress shirt"}},
	)
}

func testConfig() config.ClassificationConfig {
	cfg := config.ClassificationConfig{
		ConfidenceThreshold:        config.DefaultConfidenceThreshold,
		ConfidenceFloor:            config.DefaultConfidenceFloor,
		MaxCandidates:              20,
		MaxAlternatives:            5,
		MaxEnrichment:              config.DefaultMaxEnrichment,
		SemanticPrimaryThreshold:   config.DefaultSemanticPrimaryThreshold,
		SemanticDiversityThreshold: config.DefaultSemanticDiversityThreshold,
		SearchTimeout:              config.DefaultSearchTimeout,
		EnableSemanticSearch:       true,
		Weights:                    config.DefaultScoringWeights(),
	}
	return cfg
}
