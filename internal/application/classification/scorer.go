package classification

import (
	"context"
	"strings"

	"github.com/clearfreight/tariffscope/internal/config"
	"github.com/clearfreight/tariffscope/internal/domain/catalog"
	"github.com/clearfreight/tariffscope/internal/domain/classify"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
)

// scorer assigns each candidate its bounded multi-factor confidence.  All
// weights come from configuration so tuning never touches this code.
type scorer struct {
	catalog   catalog.Repository
	validator *catchAllValidator
	lexicon   classify.Lexicon
	weights   config.ScoringWeights
	logger    logging.Logger
}

func newScorer(repo catalog.Repository, validator *catchAllValidator, lex classify.Lexicon, weights config.ScoringWeights, logger logging.Logger) *scorer {
	return &scorer{
		catalog:   repo,
		validator: validator,
		lexicon:   lex,
		weights:   weights,
		logger:    logger.Named("scorer"),
	}
}

// scoreAll scores every candidate in place and ranks the slice best first.
func (s *scorer) scoreAll(ctx context.Context, cands []*classify.Candidate, attrs classify.Attributes) {
	for _, c := range cands {
		s.score(ctx, c, attrs)
	}
	classify.Rank(cands)
}

// score fills one candidate's factor breakdown and clamped total.
func (s *scorer) score(ctx context.Context, c *classify.Candidate, attrs classify.Attributes) {
	desc := c.Entry.Description

	c.Factors.KeywordMatch = s.keywordMatch(c.Entry, attrs.Tokens)
	c.Factors.MaterialMatch = s.materialMatch(ctx, c.Entry, attrs)
	c.Factors.HierarchyCoherence = s.headingCoherence(c.Entry, attrs)

	c.IsOther = classify.IsCatchAll(desc)
	if c.IsOther {
		v := s.validator.validate(ctx, c.Entry, attrs.Tokens)
		c.ExcludedSiblings = v.Excluded
		switch {
		case !v.Valid:
			c.Factors.Penalties -= s.weights.InvalidCatchAllPenalty
		case !v.Verified:
			c.Factors.Penalties -= s.weights.UnverifiedCatchAllPenalty
		}
	} else if classify.IsSpecificCarveOut(desc) {
		nouns := classify.HeadNouns(desc)
		if _, overlap := classify.NounsOverlapTokens(nouns, attrs.Tokens); !overlap {
			// A narrow carve-out the query never mentions is almost
			// certainly the wrong row.
			c.Factors.Penalties -= s.weights.UnmatchedCarveOutPenalty
		}
	}

	if n := classify.CountUnmentionedQualifiers(desc, attrs.Tokens); n > 0 {
		penalty := float64(n) * s.weights.UnmentionedQualifierUnit
		if penalty > s.weights.UnmentionedQualifierCap {
			penalty = s.weights.UnmentionedQualifierCap
		}
		c.Factors.Penalties -= penalty
	}

	c.Finalize()
}

// keywordMatch rewards the entry description's leading term equaling a
// search token, keyword-list overlap, and plain substring overlap, in
// decreasing weight.
func (s *scorer) keywordMatch(entry *catalog.CodeEntry, tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	tokenSet := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = true
	}

	var score float64
	if lead := leadingTerm(entry.Description); lead != "" && tokenSet[lead] {
		score += s.weights.LeadingTermBoost
	}
	for _, kw := range entry.Keywords {
		if tokenSet[classify.Singularize(strings.ToLower(kw))] {
			score += s.weights.KeywordOverlapBoost
			break
		}
	}
	desc := strings.ToLower(entry.Description)
	for _, t := range tokens {
		if len(t) >= 3 && strings.Contains(desc, t) {
			score += s.weights.DescriptionOverlapBoost
			break
		}
	}
	return score
}

// leadingTerm extracts the description's first significant word,
// singularized, so "T-shirts, singlets…" leads with "t-shirt".
func leadingTerm(description string) string {
	toks := classify.Tokenize(description)
	if len(toks) == 0 {
		return ""
	}
	return toks[0]
}

// materialMatch scores chapter agreement with the detected material.  A
// conflict anywhere in the ancestor chain outweighs a local one: an ancestor
// reading "of man-made fibers" disqualifies a cotton query even when the
// leaf text is silent about material.
func (s *scorer) materialMatch(ctx context.Context, entry *catalog.CodeEntry, attrs classify.Attributes) float64 {
	if attrs.Material == "" {
		return 0
	}

	chapterOK := false
	for _, ch := range attrs.MaterialChapters {
		if entry.Chapter() == ch {
			chapterOK = true
			break
		}
	}

	if conflict := s.ancestorConflict(ctx, entry, attrs.Material); conflict {
		return -s.weights.AncestorConflictPenalty
	}
	if chapterOK {
		return s.weights.MaterialMatchBoost
	}
	return -s.weights.MaterialConflictPenalty
}

// ancestorConflict reports a conflicting material named in the entry's own
// text, its groupings, or any ancestor description.
func (s *scorer) ancestorConflict(ctx context.Context, entry *catalog.CodeEntry, material string) bool {
	if _, conflict := classify.ConflictingMaterial(entry.Description, material, s.lexicon); conflict {
		return true
	}
	for _, g := range entry.ParentGroupings {
		if _, conflict := classify.ConflictingMaterial(g, material, s.lexicon); conflict {
			return true
		}
	}
	ancestors, err := s.catalog.GetAncestors(ctx, entry.Code)
	if err != nil {
		s.logger.Debug("ancestor fetch failed during material scoring",
			logging.String("code", entry.Code), logging.Err(err))
		return false
	}
	for _, a := range ancestors {
		if _, conflict := classify.ConflictingMaterial(a.Description, material, s.lexicon); conflict {
			return true
		}
	}
	return false
}

// headingCoherence applies the product-type gate: a candidate outside the
// detected product type's expected headings takes a penalty no other factor
// can rescue, while a heading match earns a boost, larger when the expected
// set pins a single heading.
func (s *scorer) headingCoherence(entry *catalog.CodeEntry, attrs classify.Attributes) float64 {
	if len(attrs.ExpectedHeadings) == 0 {
		return 0
	}
	heading := entry.Heading()
	for _, h := range attrs.ExpectedHeadings {
		if heading == h {
			if len(attrs.ExpectedHeadings) == 1 {
				return s.weights.HeadingExactBoost
			}
			return s.weights.HeadingMatchBoost
		}
	}
	return -s.weights.HeadingMismatchPenalty
}
