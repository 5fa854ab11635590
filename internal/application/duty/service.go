// Package duty provides the duty stacking calculator: it composes the base
// MFN rate with every applicable additional-duty program for a country/code
// pair and produces an itemized breakdown.
package duty

import (
	"context"
	"fmt"
	"strings"

	"github.com/clearfreight/tariffscope/internal/config"
	"github.com/clearfreight/tariffscope/internal/domain/catalog"
	"github.com/clearfreight/tariffscope/internal/domain/tariff"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/pkg/errors"
)

// Input is one duty calculation request.
type Input struct {
	// Code is the resolved HTS code, raw or display form.
	Code string

	// BaseRate is the published column-1 rate string for the code.
	BaseRate string

	// CountryOfOrigin is the ISO 3166-1 alpha-2 origin, optional.  Without
	// an origin only the base rate is computed.
	CountryOfOrigin string

	// UnitValue is the declared per-unit shipment value in dollars,
	// optional.  When positive, the breakdown carries a per-unit estimate.
	UnitValue float64
}

// LineItem is one component of the stacked total.
type LineItem struct {
	Program        tariff.ProgramType `json:"program"`
	Name           string             `json:"name"`
	Rate           float64            `json:"rate"`
	LegalReference string             `json:"legalReference,omitempty"`
	Description    string             `json:"description,omitempty"`
}

// Breakdown is the itemized result of one calculation.
type Breakdown struct {
	Code        string `json:"code"`
	DisplayCode string `json:"displayCode"`
	CountryCode string `json:"countryCode,omitempty"`

	// BaseRate is the parsed ad-valorem base component.
	BaseRate    float64 `json:"baseRate"`
	BaseRateRaw string  `json:"baseRateRaw"`

	// SpecificComponent echoes a per-unit rate component that is not folded
	// into the ad-valorem total.
	SpecificComponent string `json:"specificComponent,omitempty"`

	// RateUnparseable flags a base rate string that matched no known
	// pattern and was defaulted to 0.
	RateUnparseable bool `json:"rateUnparseable,omitempty"`

	// AdditionalDuties lists every stacked program in application order.
	// Summation is commutative; the order is presentational.
	AdditionalDuties []LineItem `json:"additionalDuties"`

	// TotalRate is base plus the sum of additional duties, in percent.
	TotalRate float64 `json:"totalRate"`

	// EstimatedDutyPerUnit is TotalRate applied to the declared unit value,
	// present only when a value was supplied.
	EstimatedDutyPerUnit float64 `json:"estimatedDutyPerUnit,omitempty"`

	// ADCVDAdvisory is the anti-dumping/countervailing watch-list note.  It
	// never changes the numeric total.
	ADCVDAdvisory string `json:"adcvdAdvisory,omitempty"`

	// Advisories carries non-numeric warnings: possible Section 301
	// coverage, FTA scope notes, missing origin.
	Advisories []string `json:"advisories,omitempty"`

	DataVersion string `json:"dataVersion"`
	Disclaimer  string `json:"disclaimer"`
}

// Service is the duty calculation contract consumed by the API layer and by
// the classification service for alternative-duty deltas.
type Service interface {
	Calculate(ctx context.Context, input *Input) (*Breakdown, error)
}

// Metrics counts finished calculations by origin country.  Implementations
// must be safe for concurrent use.
type Metrics interface {
	DutyCalculated(country string)
}

type nopMetrics struct{}

func (nopMetrics) DutyCalculated(string) {}

type service struct {
	registry tariff.Registry
	programs tariff.ProgramCatalog
	cfg      config.DutyConfig
	logger   logging.Logger
	metrics  Metrics
}

// NewService creates the duty stacking calculator.  A nil metrics falls back
// to a nop recorder.
func NewService(registry tariff.Registry, programs tariff.ProgramCatalog, cfg config.DutyConfig, logger logging.Logger, metrics Metrics) Service {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &service{
		registry: registry,
		programs: programs,
		cfg:      cfg,
		logger:   logger.Named("duty"),
		metrics:  metrics,
	}
}

// countrySpecificIEEPA lists origins whose IEEPA programs come from the
// country profile rather than the universal baseline.
var countrySpecificIEEPA = map[string]bool{"CN": true, "HK": true}

// Calculate composes base rate and all applicable additional-duty programs.
// Trade-agreement membership is surfaced as an advisory about the base
// component only; it never removes an additional-duty program.
func (s *service) Calculate(ctx context.Context, input *Input) (*Breakdown, error) {
	if input == nil || input.Code == "" {
		return nil, errors.NewValidationError("code", "code is required")
	}
	if err := catalog.Validate(input.Code); err != nil {
		return nil, err
	}
	code := catalog.Normalize(input.Code)

	parsed := tariff.ParseRate(input.BaseRate)
	b := &Breakdown{
		Code:              code,
		DisplayCode:       catalog.Format(code),
		BaseRate:          parsed.AdValorem,
		BaseRateRaw:       input.BaseRate,
		SpecificComponent: parsed.Specific,
		RateUnparseable:   input.BaseRate != "" && !parsed.Parseable,
		DataVersion:       s.cfg.DataVersion,
		Disclaimer:        s.cfg.Disclaimer,
	}
	if b.RateUnparseable {
		s.logger.Warn("unparseable base rate, defaulting to 0",
			logging.String("code", code), logging.String("rate", input.BaseRate))
		b.Advisories = append(b.Advisories,
			fmt.Sprintf("base rate %q matched no known pattern and was treated as 0%%", input.BaseRate))
	}

	country := tariff.NormalizeCountry(input.CountryOfOrigin)
	if country == "" {
		b.TotalRate = b.BaseRate
		b.Advisories = append(b.Advisories,
			"no country of origin supplied; additional-duty programs were not evaluated")
		s.applyUnitValue(b, input.UnitValue)
		s.metrics.DutyCalculated("")
		return b, nil
	}
	b.CountryCode = country

	profile, err := s.registry.Profile(ctx, country)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeProgramDataUnavailable, "loading country tariff profile")
	}

	s.applyBlanketDuties(b, profile)
	if err := s.applySection301(ctx, b, code, country); err != nil {
		return nil, err
	}
	s.applyBaseline(b, profile, country)
	if err := s.applySection232(ctx, b, code, country); err != nil {
		return nil, err
	}
	s.applyWatchList(ctx, b, code, country)
	s.applyAgreementNotes(b, profile)

	b.TotalRate = b.BaseRate
	for _, item := range b.AdditionalDuties {
		b.TotalRate += item.Rate
	}
	s.applyUnitValue(b, input.UnitValue)

	s.logger.Info("duty calculated",
		logging.String("code", b.DisplayCode),
		logging.String("country", country),
		logging.Float64("total", b.TotalRate),
		logging.Int("programs", len(b.AdditionalDuties)))
	s.metrics.DutyCalculated(country)
	return b, nil
}

// applyBlanketDuties adds every active country-wide program from the
// profile.  Each is independently additive.
func (s *service) applyBlanketDuties(b *Breakdown, profile *tariff.CountryTariffProfile) {
	for _, d := range profile.ActiveBlanketDuties() {
		b.AdditionalDuties = append(b.AdditionalDuties, LineItem{
			Program:        d.Program,
			Name:           d.Name,
			Rate:           d.Rate,
			LegalReference: d.LegalReference,
			Description:    fmt.Sprintf("blanket duty on goods of %s origin", profile.CountryName),
		})
	}
}

// applySection301 adds the Section 301 list rate for China/Hong Kong origin
// goods on a list, or an advisory when the list status is unknown.
func (s *service) applySection301(ctx context.Context, b *Breakdown, code, country string) error {
	if !countrySpecificIEEPA[country] {
		return nil
	}
	list, err := s.programs.Section301List(ctx, code)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeProgramDataUnavailable, "looking up Section 301 lists")
	}
	if list == nil {
		b.Advisories = append(b.Advisories,
			"product was not found on a Section 301 list but may be covered; verify against the current lists")
		return nil
	}
	b.AdditionalDuties = append(b.AdditionalDuties, LineItem{
		Program:        tariff.ProgramSection301,
		Name:           fmt.Sprintf("Section 301 %s", list.Name),
		Rate:           list.Rate,
		LegalReference: list.LegalReference,
		Description:    fmt.Sprintf("product appears on Section 301 %s", list.Name),
	})
	return nil
}

// applyBaseline adds the universal baseline additional rate.  The baseline
// applies to every origin that is neither an exempted trade-bloc member nor
// covered by country-specific IEEPA programs, including FTA partners.
func (s *service) applyBaseline(b *Breakdown, profile *tariff.CountryTariffProfile, country string) {
	if profile.BaselineExempt || countrySpecificIEEPA[country] {
		return
	}
	b.AdditionalDuties = append(b.AdditionalDuties, LineItem{
		Program:        tariff.ProgramIEEPABaseline,
		Name:           "IEEPA Universal Baseline",
		Rate:           s.cfg.BaselineRate,
		LegalReference: "IEEPA, 50 U.S.C. 1701; EO 14257",
		Description:    "universal baseline additional rate on all imports",
	})
	if profile.HasAgreement() {
		b.Advisories = append(b.Advisories,
			fmt.Sprintf("%s waives only the base rate for qualifying goods; the universal baseline still applies",
				profile.TradeAgreements[0].Name))
	}
}

// applySection232 adds the Section 232 class rate unless the origin is on
// that class's quota-exemption list.
func (s *service) applySection232(ctx context.Context, b *Breakdown, code, country string) error {
	class, err := s.programs.Section232Class(ctx, code)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeProgramDataUnavailable, "looking up Section 232 classes")
	}
	if class == nil {
		return nil
	}
	if class.CountryExempt(country) {
		b.Advisories = append(b.Advisories,
			fmt.Sprintf("origin is quota-exempt from the Section 232 %s tariff", class.Name))
		return nil
	}
	b.AdditionalDuties = append(b.AdditionalDuties, LineItem{
		Program:        tariff.ProgramSection232,
		Name:           fmt.Sprintf("Section 232 (%s)", class.Name),
		Rate:           class.Rate,
		LegalReference: class.LegalReference,
		Description:    fmt.Sprintf("product falls in the Section 232 %s class", class.Name),
	})
	return nil
}

// applyWatchList attaches the AD/CVD advisory.  Watch-list failures degrade
// to a log line; the advisory is informational and must not fail a request.
func (s *service) applyWatchList(ctx context.Context, b *Breakdown, code, country string) {
	hit, note, err := s.programs.OnWatchList(ctx, code, country)
	if err != nil {
		s.logger.Warn("AD/CVD watch list unavailable", logging.Err(err))
		return
	}
	if hit {
		b.ADCVDAdvisory = note
	}
}

// applyAgreementNotes surfaces base-rate preference for agreement partners
// even when the baseline advisory did not already mention the agreement.
func (s *service) applyAgreementNotes(b *Breakdown, profile *tariff.CountryTariffProfile) {
	if !profile.HasAgreement() || b.BaseRate == 0 {
		return
	}
	name := profile.TradeAgreements[0].Name
	for _, a := range b.Advisories {
		if strings.Contains(a, name) {
			return
		}
	}
	b.Advisories = append(b.Advisories,
		fmt.Sprintf("goods qualifying under %s may enter with the base rate waived; additional-duty programs are unaffected", name))
}

func (s *service) applyUnitValue(b *Breakdown, unitValue float64) {
	if unitValue > 0 {
		b.EstimatedDutyPerUnit = unitValue * b.TotalRate / 100
	}
}
