package classification

import (
	"context"
	"fmt"
	"strings"

	"github.com/clearfreight/tariffscope/internal/domain/catalog"
	"github.com/clearfreight/tariffscope/internal/domain/classify"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
)

// catchAllValidator decides whether a residual "other" entry legitimately
// applies by exhaustively ruling out the specific carve-out siblings under
// the same subheading.
type catchAllValidator struct {
	catalog catalog.Repository
	logger  logging.Logger
}

func newCatchAllValidator(repo catalog.Repository, logger logging.Logger) *catchAllValidator {
	return &catchAllValidator{catalog: repo, logger: logger.Named("catchall")}
}

// validation is the outcome of one catch-all check.
type validation struct {
	// Valid is true when no specific sibling covers the query.
	Valid bool

	// Excluded records each ruled-out sibling with a reason.  When the
	// catch-all is invalid it holds the single conflicting sibling instead.
	Excluded []string

	// Verified is false when sibling data could not be fetched; the scorer
	// applies the smaller unverified penalty in that case.
	Verified bool
}

// validate checks a catch-all entry against its specific siblings: the
// siblings sharing its 6-digit ancestor but a different tariff line.  The
// catch-all is valid iff no query token overlaps any specific sibling's
// extracted head nouns.  Zero specific siblings make it trivially valid.
func (v *catchAllValidator) validate(ctx context.Context, entry *catalog.CodeEntry, tokens []string) validation {
	code := catalog.Normalize(entry.Code)
	if len(code) < 8 {
		// Catch-alls above the tariff-line level have no carve-out siblings
		// to rule out.
		return validation{Valid: true, Verified: true}
	}

	siblings, err := v.catalog.GetByPrefix(ctx, code[:6])
	if err != nil {
		v.logger.Warn("sibling fetch failed, catch-all left unverified",
			logging.String("code", entry.Code), logging.Err(err))
		return validation{Valid: true}
	}

	result := validation{Valid: true, Verified: true}
	for _, sib := range siblings {
		sibCode := catalog.Normalize(sib.Code)
		if len(sibCode) < 8 || sibCode[:8] == code[:8] {
			continue
		}
		if !classify.IsSpecificCarveOut(sib.Description) {
			continue
		}
		nouns := classify.HeadNouns(sib.Description)
		if noun, overlap := classify.NounsOverlapTokens(nouns, tokens); overlap {
			return validation{
				Valid:    false,
				Verified: true,
				Excluded: []string{fmt.Sprintf(
					"%s (%q) covers the queried %q", catalog.Format(sib.Code),
					sib.Description, noun)},
			}
		}
		result.Excluded = append(result.Excluded, fmt.Sprintf(
			"%s (%q): no query term matches %s", catalog.Format(sib.Code),
			sib.Description, strings.Join(nouns, ", ")))
	}
	return result
}
