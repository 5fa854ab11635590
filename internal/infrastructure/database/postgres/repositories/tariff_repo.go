package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clearfreight/tariffscope/internal/domain/catalog"
	"github.com/clearfreight/tariffscope/internal/domain/tariff"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/pkg/errors"
)

// TariffRepository implements tariff.Registry and tariff.ProgramCatalog over
// the country_profiles, blanket_duties, trade_agreements, section301_lists,
// section232_classes, and adcvd_watch tables.
type TariffRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewTariffRepository constructs a tariff-data repository.
func NewTariffRepository(pool *pgxpool.Pool, logger logging.Logger) *TariffRepository {
	return &TariffRepository{pool: pool, logger: logger.Named("tariff-repo")}
}

// Profile returns the tariff profile for an origin country.  Unlisted
// countries resolve to the stored DEFAULT profile; a missing DEFAULT row is
// synthesized so the calculator never fails on an unknown origin.
func (r *TariffRepository) Profile(ctx context.Context, countryCode string) (*tariff.CountryTariffProfile, error) {
	code := tariff.NormalizeCountry(countryCode)
	if code == "" {
		code = tariff.DefaultCountryCode
	}

	profile, err := r.loadProfile(ctx, code)
	if err != nil {
		return nil, err
	}
	if profile == nil && code != tariff.DefaultCountryCode {
		profile, err = r.loadProfile(ctx, tariff.DefaultCountryCode)
		if err != nil {
			return nil, err
		}
	}
	if profile == nil {
		return &tariff.CountryTariffProfile{
			CountryCode: tariff.DefaultCountryCode,
			CountryName: "All other countries",
		}, nil
	}
	return profile, nil
}

func (r *TariffRepository) loadProfile(ctx context.Context, code string) (*tariff.CountryTariffProfile, error) {
	var p tariff.CountryTariffProfile
	err := r.pool.QueryRow(ctx,
		`SELECT country_code, country_name, baseline_exempt, baseline_exempt_reason
		 FROM country_profiles WHERE country_code = $1`, code).
		Scan(&p.CountryCode, &p.CountryName, &p.BaselineExempt, &p.BaselineExemptReason)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "country profile lookup failed")
	}

	if err := r.loadBlanketDuties(ctx, &p); err != nil {
		return nil, err
	}
	if err := r.loadTradeAgreements(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *TariffRepository) loadBlanketDuties(ctx context.Context, p *tariff.CountryTariffProfile) error {
	rows, err := r.pool.Query(ctx,
		`SELECT program, name, rate, legal_reference, effective_date, active
		 FROM blanket_duties WHERE country_code = $1 ORDER BY effective_date`, p.CountryCode)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "blanket duty lookup failed")
	}
	defer rows.Close()

	for rows.Next() {
		var d tariff.BlanketDuty
		var program string
		if err := rows.Scan(&program, &d.Name, &d.Rate, &d.LegalReference, &d.EffectiveDate, &d.Active); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "blanket duty scan failed")
		}
		d.Program = tariff.ProgramType(program)
		p.BlanketDuties = append(p.BlanketDuties, d)
	}
	return rows.Err()
}

func (r *TariffRepository) loadTradeAgreements(ctx context.Context, p *tariff.CountryTariffProfile) error {
	rows, err := r.pool.Query(ctx,
		`SELECT name, preferential_rate_policy, rules_of_origin
		 FROM trade_agreements WHERE country_code = $1 ORDER BY name`, p.CountryCode)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "trade agreement lookup failed")
	}
	defer rows.Close()

	for rows.Next() {
		var a tariff.TradeAgreement
		if err := rows.Scan(&a.Name, &a.PreferentialRatePolicy, &a.RulesOfOrigin); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "trade agreement scan failed")
		}
		p.TradeAgreements = append(p.TradeAgreements, a)
	}
	return rows.Err()
}

// Section301List returns the most specific Section 301 list covering the
// code, or nil when the code is unlisted.
func (r *TariffRepository) Section301List(ctx context.Context, code string) (*tariff.Section301List, error) {
	normalized := catalog.Normalize(code)
	if normalized == "" {
		return nil, nil
	}

	var l tariff.Section301List
	err := r.pool.QueryRow(ctx,
		`SELECT list_name, rate, legal_reference FROM section301_lists
		 WHERE $1 LIKE prefix || '%' ORDER BY length(prefix) DESC LIMIT 1`, normalized).
		Scan(&l.Name, &l.Rate, &l.LegalReference)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrCodeProgramDataUnavailable, "Section 301 lookup failed")
	}
	return &l, nil
}

// Section232Class returns the most specific Section 232 class covering the
// code, or nil when none does.
func (r *TariffRepository) Section232Class(ctx context.Context, code string) (*tariff.Section232Class, error) {
	normalized := catalog.Normalize(code)
	if normalized == "" {
		return nil, nil
	}

	var c tariff.Section232Class
	err := r.pool.QueryRow(ctx,
		`SELECT class_name, rate, legal_reference, exempt_countries FROM section232_classes
		 WHERE $1 LIKE prefix || '%' ORDER BY length(prefix) DESC LIMIT 1`, normalized).
		Scan(&c.Name, &c.Rate, &c.LegalReference, &c.ExemptCountries)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrCodeProgramDataUnavailable, "Section 232 lookup failed")
	}
	return &c, nil
}

// OnWatchList reports whether the code/country pair carries an AD/CVD order.
func (r *TariffRepository) OnWatchList(ctx context.Context, code, countryCode string) (bool, string, error) {
	normalized := catalog.Normalize(code)
	country := tariff.NormalizeCountry(countryCode)
	if normalized == "" || country == "" {
		return false, "", nil
	}

	var advisory string
	err := r.pool.QueryRow(ctx,
		`SELECT advisory FROM adcvd_watch
		 WHERE $1 LIKE prefix || '%' AND country_code = $2
		 ORDER BY length(prefix) DESC LIMIT 1`, normalized, country).
		Scan(&advisory)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, "", nil
		}
		return false, "", errors.Wrap(err, errors.ErrCodeProgramDataUnavailable, "AD/CVD watch lookup failed")
	}
	return true, advisory, nil
}
