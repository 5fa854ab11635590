package catalog

import (
	"context"
)

// SearchFilter narrows keyword searches over the catalog.
type SearchFilter struct {
	// Chapters restricts matches to the given 2-digit chapter prefixes.
	Chapters []string

	// Headings restricts matches to the given 4-digit heading prefixes.
	// When both Chapters and Headings are set, Headings wins.
	Headings []string

	// Levels restricts matches to the given hierarchy levels.  Empty means
	// rate-bearing levels only.
	Levels []Level

	// Limit caps the number of entries returned; zero means the store's
	// default page size.
	Limit int
}

// Repository is the persistence contract for the HTS catalog.  All codes
// passed in may be in raw or display form; implementations normalize before
// lookup.  Entries come back with normalized codes.
type Repository interface {
	// GetByCode returns the entry for an exact code, or a not-found error
	// carrying ErrCodeHTSCodeNotFound.
	GetByCode(ctx context.Context, code string) (*CodeEntry, error)

	// GetChildren returns the immediate structural children of a code,
	// ordered by code.  A leaf code returns an empty slice, not an error.
	GetChildren(ctx context.Context, parentCode string) ([]*CodeEntry, error)

	// GetByPrefix returns every entry whose code starts with the given digit
	// prefix, ordered by code.
	GetByPrefix(ctx context.Context, prefix string) ([]*CodeEntry, error)

	// SearchByKeyword returns entries whose keywords or description match any
	// of the given tokens, best matches first.
	SearchByKeyword(ctx context.Context, tokens []string, filter SearchFilter) ([]*CodeEntry, error)

	// GetAncestors returns the structural ancestors of a code ordered root
	// first, excluding the code itself.  Missing intermediate nodes are
	// skipped rather than reported as errors.
	GetAncestors(ctx context.Context, code string) ([]*CodeEntry, error)
}
