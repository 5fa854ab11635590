package tariff

import (
	"context"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Country tariff profiles
// ─────────────────────────────────────────────────────────────────────────────

// DefaultCountryCode keys the mandatory fallback profile applied to any
// origin not explicitly listed: no blanket duties, no agreements.
const DefaultCountryCode = "DEFAULT"

// BlanketDuty is one country-wide additional-duty program carried by a
// profile.  Blanket duties stack with each other and with the base rate; a
// trade agreement never waives them.
type BlanketDuty struct {
	// Program is the additional-duty program this entry instantiates.
	Program ProgramType `json:"program"`

	// Name is the human program name ("IEEPA Fentanyl Emergency").
	Name string `json:"name"`

	// Rate is the ad-valorem percentage added by the program.
	Rate float64 `json:"rate"`

	// LegalReference cites the authority ("IEEPA, 50 U.S.C. 1701").
	LegalReference string `json:"legalReference"`

	// EffectiveDate is the date the program took effect.
	EffectiveDate time.Time `json:"effectiveDate"`

	// Active gates the entry without deleting it; inactive duties are
	// retained for audit but never applied.
	Active bool `json:"active"`
}

// TradeAgreement is a preferential-rate agreement the origin participates
// in.  Agreements affect only the base MFN component.
type TradeAgreement struct {
	Name string `json:"name"`

	// PreferentialRatePolicy describes what the agreement does to the base
	// rate ("base rate free for qualifying goods").
	PreferentialRatePolicy string `json:"preferentialRatePolicy"`

	// RulesOfOrigin summarizes qualification requirements.
	RulesOfOrigin string `json:"rulesOfOrigin"`
}

// CountryTariffProfile aggregates everything the calculator needs to know
// about one origin country.
type CountryTariffProfile struct {
	// CountryCode is the ISO 3166-1 alpha-2 code, or DefaultCountryCode.
	CountryCode string `json:"countryCode"`

	CountryName string `json:"countryName"`

	// BlanketDuties lists the country-wide programs in effect.
	BlanketDuties []BlanketDuty `json:"blanketDuties,omitempty"`

	// TradeAgreements lists preferential agreements with the origin.
	TradeAgreements []TradeAgreement `json:"tradeAgreements,omitempty"`

	// BaselineExempt excludes the origin from the universal baseline
	// program.  True for exempted trade-bloc members and for origins whose
	// country-specific programs supersede the baseline.
	BaselineExempt bool `json:"baselineExempt"`

	// BaselineExemptReason documents why the baseline does not apply.
	BaselineExemptReason string `json:"baselineExemptReason,omitempty"`
}

// ActiveBlanketDuties returns the profile's blanket duties that are in
// effect, skipping inactive entries.
func (p *CountryTariffProfile) ActiveBlanketDuties() []BlanketDuty {
	out := make([]BlanketDuty, 0, len(p.BlanketDuties))
	for _, d := range p.BlanketDuties {
		if d.Active {
			out = append(out, d)
		}
	}
	return out
}

// HasAgreement reports whether the profile carries any trade agreement.
func (p *CountryTariffProfile) HasAgreement() bool {
	return len(p.TradeAgreements) > 0
}

// NormalizeCountry canonicalizes a country code for registry lookup.
func NormalizeCountry(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Registry is the pluggable source of country tariff profiles.
// Implementations MUST resolve unknown countries to the DEFAULT profile
// rather than failing; an error indicates the data source itself is broken.
type Registry interface {
	// Profile returns the tariff profile for an origin country, falling
	// back to the DEFAULT profile for unlisted codes.
	Profile(ctx context.Context, countryCode string) (*CountryTariffProfile, error)
}
