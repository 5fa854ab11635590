// Package repositories provides PostgreSQL-backed implementations of the
// catalog and tariff-data repository contracts.
package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clearfreight/tariffscope/internal/domain/catalog"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/pkg/errors"
)

const defaultSearchLimit = 50

const catalogColumns = `code, level, description, parent_code,
	parent_groupings, base_rate, unit_of_quantity, keywords`

// CatalogRepository implements catalog.Repository over the hts_codes table.
type CatalogRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewCatalogRepository constructs a catalog repository.
func NewCatalogRepository(pool *pgxpool.Pool, logger logging.Logger) *CatalogRepository {
	return &CatalogRepository{pool: pool, logger: logger.Named("catalog-repo")}
}

func (r *CatalogRepository) GetByCode(ctx context.Context, code string) (*catalog.CodeEntry, error) {
	normalized := catalog.Normalize(code)
	if err := catalog.Validate(normalized); err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx,
		`SELECT `+catalogColumns+` FROM hts_codes WHERE code = $1`, normalized)
	entry, err := scanEntry(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.Newf(errors.ErrCodeHTSCodeNotFound, "HTS code %s not found", catalog.Format(normalized))
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "catalog lookup failed")
	}
	return entry, nil
}

func (r *CatalogRepository) GetChildren(ctx context.Context, parentCode string) ([]*catalog.CodeEntry, error) {
	normalized := catalog.Normalize(parentCode)
	if err := catalog.Validate(normalized); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+catalogColumns+` FROM hts_codes WHERE parent_code = $1 ORDER BY code`, normalized)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "child lookup failed")
	}
	return collectEntries(rows)
}

func (r *CatalogRepository) GetByPrefix(ctx context.Context, prefix string) ([]*catalog.CodeEntry, error) {
	normalized := catalog.Normalize(prefix)
	if normalized == "" {
		return nil, errors.InvalidParam("prefix must contain digits")
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+catalogColumns+` FROM hts_codes WHERE code LIKE $1 || '%' ORDER BY code`, normalized)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "prefix lookup failed")
	}
	return collectEntries(rows)
}

func (r *CatalogRepository) SearchByKeyword(ctx context.Context, tokens []string, filter catalog.SearchFilter) ([]*catalog.CodeEntry, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	levels := filter.Levels
	if len(levels) == 0 {
		levels = []catalog.Level{catalog.LevelTariffLine, catalog.LevelStatistical}
	}
	levelNames := make([]string, 0, len(levels))
	for _, l := range levels {
		levelNames = append(levelNames, string(l))
	}

	// Headings restrict more tightly than chapters, so they win when both
	// are present.
	prefixes := filter.Headings
	if len(prefixes) == 0 {
		prefixes = filter.Chapters
	}
	patterns := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if normalized := catalog.Normalize(p); normalized != "" {
			patterns = append(patterns, normalized+"%")
		}
	}

	query := `
		SELECT ` + catalogColumns + `,
		       (SELECT count(*) FROM unnest($1::text[]) AS tok
		        WHERE tok = ANY(keywords) OR description ILIKE '%' || tok || '%') AS hits
		FROM hts_codes
		WHERE level = ANY($2::text[])
		  AND ($3::int = 0 OR code LIKE ANY($4::text[]))
		  AND EXISTS (SELECT 1 FROM unnest($1::text[]) AS tok
		              WHERE tok = ANY(keywords) OR description ILIKE '%' || tok || '%')
		ORDER BY hits DESC, code
		LIMIT $5`

	rows, err := r.pool.Query(ctx, query, tokens, levelNames, len(patterns), patterns, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "keyword search failed")
	}
	defer rows.Close()

	var entries []*catalog.CodeEntry
	for rows.Next() {
		var hits int
		entry, err := scanEntryFields(rows, &hits)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "keyword search scan failed")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "keyword search iteration failed")
	}
	return entries, nil
}

func (r *CatalogRepository) GetAncestors(ctx context.Context, code string) ([]*catalog.CodeEntry, error) {
	normalized := catalog.Normalize(code)
	if err := catalog.Validate(normalized); err != nil {
		return nil, err
	}

	ancestorCodes := catalog.AncestorCodes(normalized)
	if len(ancestorCodes) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+catalogColumns+` FROM hts_codes WHERE code = ANY($1::text[]) ORDER BY length(code)`,
		ancestorCodes)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "ancestor lookup failed")
	}
	return collectEntries(rows)
}

// scanEntryFields reads one catalog row plus any trailing extras.
func scanEntryFields(s scanner, extras ...interface{}) (*catalog.CodeEntry, error) {
	var e catalog.CodeEntry
	var level string
	dest := []interface{}{
		&e.Code, &level, &e.Description, &e.ParentCode,
		&e.ParentGroupings, &e.BaseRate, &e.UnitOfQuantity, &e.Keywords,
	}
	dest = append(dest, extras...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	e.Level = catalog.Level(level)
	return &e, nil
}

func scanEntry(s scanner) (*catalog.CodeEntry, error) {
	return scanEntryFields(s)
}

func collectEntries(rows pgx.Rows) ([]*catalog.CodeEntry, error) {
	defer rows.Close()

	var entries []*catalog.CodeEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "catalog row scan failed")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "catalog row iteration failed")
	}
	return entries, nil
}
