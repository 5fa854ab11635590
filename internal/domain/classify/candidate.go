package classify

import (
	"sort"

	"github.com/clearfreight/tariffscope/internal/domain/catalog"
)

// ─────────────────────────────────────────────────────────────────────────────
// Candidate value object
// ─────────────────────────────────────────────────────────────────────────────

// Source identifies which retrieval path produced a candidate.  Semantic
// candidates outrank keyword candidates on score ties.
type Source string

const (
	SourceSemantic Source = "semantic"
	SourceKeyword  Source = "keyword"
)

// priority returns the tie-break rank of a source, lower winning.
func (s Source) priority() int {
	if s == SourceSemantic {
		return 0
	}
	return 1
}

// ScoringFactors is the explainable per-factor breakdown behind a candidate's
// total.  Each factor is bounded on its own; only the sum is clamped.
type ScoringFactors struct {
	// KeywordMatch rewards overlap between search tokens and the entry's
	// leading term, keyword list and description text.
	KeywordMatch float64 `json:"keywordMatch"`

	// MaterialMatch rewards chapter agreement with the detected material and
	// penalizes conflicts, including conflicts found in the ancestor chain.
	MaterialMatch float64 `json:"materialMatch"`

	// Specificity rewards specific carve-outs the query actually matches and
	// reflects catch-all status.
	Specificity float64 `json:"specificity"`

	// HierarchyCoherence rewards agreement between the detected product type
	// and the candidate's heading; a mismatch here is a gating penalty.
	HierarchyCoherence float64 `json:"hierarchyCoherence"`

	// Penalties accumulates the negative adjustments: unmatched carve-outs,
	// invalid catch-alls, unmentioned restrictive qualifiers.  Always ≤ 0.
	Penalties float64 `json:"penalties"`
}

// Sum returns the unclamped factor total.
func (f ScoringFactors) Sum() float64 {
	return f.KeywordMatch + f.MaterialMatch + f.Specificity +
		f.HierarchyCoherence + f.Penalties
}

// Candidate wraps one catalog entry under consideration for a single request.
// Candidates are created during search, scored, ranked and discarded with the
// response; they are never persisted.
type Candidate struct {
	Entry *catalog.CodeEntry `json:"entry"`

	// Source is the retrieval path that found this entry.
	Source Source `json:"source"`

	// RetrievalScore is the raw path-specific score: cosine similarity for
	// semantic hits, match rank for keyword hits.
	RetrievalScore float64 `json:"retrievalScore"`

	// Factors is the scoring breakdown, populated by the scorer.
	Factors ScoringFactors `json:"factors"`

	// Total is the clamped confidence in [0,100].
	Total float64 `json:"total"`

	// IsOther marks catch-all entries; set during scoring.
	IsOther bool `json:"isOther"`

	// ExcludedSiblings records the carve-out siblings ruled out during
	// catch-all validation, each with a human-readable reason.
	ExcludedSiblings []string `json:"excludedSiblings,omitempty"`
}

// Finalize computes the clamped total from the factor breakdown.
func (c *Candidate) Finalize() {
	c.Total = clamp(c.Factors.Sum(), 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ─────────────────────────────────────────────────────────────────────────────
// Ranking and deduplication
// ─────────────────────────────────────────────────────────────────────────────

// Rank sorts candidates best first: total descending, then semantic before
// keyword, then shorter (more general) code.  The sort is stable so equal
// candidates keep their retrieval order.
func Rank(candidates []*Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		if pa, pb := a.Source.priority(), b.Source.priority(); pa != pb {
			return pa < pb
		}
		return len(a.Entry.Code) < len(b.Entry.Code)
	})
}

// DedupeByTariffLine collapses candidates sharing the same 8-digit prefix,
// keeping the one with the higher retrieval score.  Statistical-suffix
// variants of one tariff line never both survive.  Input order is preserved
// for the survivors.
func DedupeByTariffLine(candidates []*Candidate) []*Candidate {
	best := make(map[string]*Candidate, len(candidates))
	order := make([]string, 0, len(candidates))
	for _, c := range candidates {
		key := tariffLineKey(c.Entry.Code)
		cur, ok := best[key]
		if !ok {
			best[key] = c
			order = append(order, key)
			continue
		}
		if c.RetrievalScore > cur.RetrievalScore {
			best[key] = c
		}
	}
	out := make([]*Candidate, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

// tariffLineKey truncates a code to its 8-digit tariff line; shorter codes
// key on themselves.
func tariffLineKey(code string) string {
	n := catalog.Normalize(code)
	if len(n) > 8 {
		return n[:8]
	}
	return n
}
