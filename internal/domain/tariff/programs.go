package tariff

import (
	"context"
)

// ─────────────────────────────────────────────────────────────────────────────
// Additional-duty programs
// ─────────────────────────────────────────────────────────────────────────────

// ProgramType identifies the legal regime behind one stacked duty.
type ProgramType string

const (
	ProgramSection301      ProgramType = "section_301"
	ProgramIEEPAFentanyl   ProgramType = "ieepa_fentanyl"
	ProgramIEEPAReciprocal ProgramType = "ieepa_reciprocal"
	ProgramIEEPABaseline   ProgramType = "ieepa_baseline"
	ProgramSection232      ProgramType = "section_232"
	ProgramOther           ProgramType = "other"
)

// AdditionalDuty is one stacked program instance applied to a specific
// classification result.  Multiple entries apply simultaneously and always
// sum; no program ever replaces another.
type AdditionalDuty struct {
	Program ProgramType `json:"program"`

	// Name is the human program name shown in the breakdown.
	Name string `json:"name"`

	// Rate is the ad-valorem percentage the program adds.
	Rate float64 `json:"rate"`

	// LegalReference cites the authority behind the duty.
	LegalReference string `json:"legalReference"`

	// Description explains in plain language why the duty applies.
	Description string `json:"description"`
}

// Section301List is one Section 301 product list with its rate.
type Section301List struct {
	// Name identifies the list ("List 1", "List 4A").
	Name string `json:"name"`

	// Rate is the list's ad-valorem percentage.
	Rate float64 `json:"rate"`

	// LegalReference cites the action ("83 FR 28710").
	LegalReference string `json:"legalReference"`
}

// Section232Class is one Section 232 product class (steel, aluminum, autos)
// with its rate and quota-exemption list.
type Section232Class struct {
	// Name identifies the class ("steel", "aluminum", "automobiles").
	Name string `json:"name"`

	Rate float64 `json:"rate"`

	LegalReference string `json:"legalReference"`

	// ExemptCountries lists origins covered by a quota arrangement instead
	// of the tariff.
	ExemptCountries []string `json:"exemptCountries,omitempty"`
}

// CountryExempt reports whether an origin is on the class's quota-exemption
// list.
func (c *Section232Class) CountryExempt(countryCode string) bool {
	code := NormalizeCountry(countryCode)
	for _, e := range c.ExemptCountries {
		if NormalizeCountry(e) == code {
			return true
		}
	}
	return false
}

// ProgramCatalog is the pluggable source of product-keyed program data:
// Section 301 lists, Section 232 classes, and the AD/CVD watch list.  Codes
// passed in may be raw or display form.
type ProgramCatalog interface {
	// Section301List returns the Section 301 list containing the code, or
	// nil when the code is on no list.
	Section301List(ctx context.Context, code string) (*Section301List, error)

	// Section232Class returns the Section 232 class covering the code, or
	// nil when none does.
	Section232Class(ctx context.Context, code string) (*Section232Class, error)

	// OnWatchList reports whether the code/country pair carries an
	// anti-dumping or countervailing-duty order, with a short advisory
	// description when it does.
	OnWatchList(ctx context.Context, code, countryCode string) (bool, string, error)
}
