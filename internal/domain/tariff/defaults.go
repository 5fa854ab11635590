package tariff

import (
	"context"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Built-in registry
// ─────────────────────────────────────────────────────────────────────────────

// StaticRegistry is an in-memory Registry seeded from explicit profiles.  It
// backs tests and the no-database deployment mode; production wires the
// store-backed implementation instead.
type StaticRegistry struct {
	profiles map[string]*CountryTariffProfile
}

// NewStaticRegistry builds a registry from profiles keyed by country code.
// A DEFAULT profile is synthesized when the input lacks one.
func NewStaticRegistry(profiles []*CountryTariffProfile) *StaticRegistry {
	r := &StaticRegistry{profiles: make(map[string]*CountryTariffProfile, len(profiles)+1)}
	for _, p := range profiles {
		r.profiles[NormalizeCountry(p.CountryCode)] = p
	}
	if _, ok := r.profiles[DefaultCountryCode]; !ok {
		r.profiles[DefaultCountryCode] = &CountryTariffProfile{
			CountryCode: DefaultCountryCode,
			CountryName: "Unlisted origin",
		}
	}
	return r
}

// Profile implements Registry.  Unknown codes resolve to DEFAULT.
func (r *StaticRegistry) Profile(_ context.Context, countryCode string) (*CountryTariffProfile, error) {
	if p, ok := r.profiles[NormalizeCountry(countryCode)]; ok {
		return p, nil
	}
	return r.profiles[DefaultCountryCode], nil
}

// NewDefaultRegistry returns the built-in country profiles reflecting the
// program landscape as of the bundled data version.
func NewDefaultRegistry() *StaticRegistry {
	ieepaEffective := time.Date(2025, time.February, 4, 0, 0, 0, 0, time.UTC)
	return NewStaticRegistry([]*CountryTariffProfile{
		{
			CountryCode: "CN",
			CountryName: "China",
			BlanketDuties: []BlanketDuty{
				{
					Program:        ProgramIEEPAFentanyl,
					Name:           "IEEPA Fentanyl Emergency",
					Rate:           10,
					LegalReference: "IEEPA, 50 U.S.C. 1701; EO 14195",
					EffectiveDate:  ieepaEffective,
					Active:         true,
				},
				{
					Program:        ProgramIEEPAReciprocal,
					Name:           "IEEPA Reciprocal Tariff",
					Rate:           10,
					LegalReference: "IEEPA, 50 U.S.C. 1701; EO 14257",
					EffectiveDate:  ieepaEffective,
					Active:         true,
				},
			},
			BaselineExempt:       true,
			BaselineExemptReason: "country-specific IEEPA programs apply in place of the universal baseline",
		},
		{
			CountryCode: "HK",
			CountryName: "Hong Kong",
			BlanketDuties: []BlanketDuty{
				{
					Program:        ProgramIEEPAFentanyl,
					Name:           "IEEPA Fentanyl Emergency",
					Rate:           10,
					LegalReference: "IEEPA, 50 U.S.C. 1701; EO 14195",
					EffectiveDate:  ieepaEffective,
					Active:         true,
				},
				{
					Program:        ProgramIEEPAReciprocal,
					Name:           "IEEPA Reciprocal Tariff",
					Rate:           10,
					LegalReference: "IEEPA, 50 U.S.C. 1701; EO 14257",
					EffectiveDate:  ieepaEffective,
					Active:         true,
				},
			},
			BaselineExempt:       true,
			BaselineExemptReason: "country-specific IEEPA programs apply in place of the universal baseline",
		},
		{
			CountryCode: "CA",
			CountryName: "Canada",
			TradeAgreements: []TradeAgreement{{
				Name:                   "USMCA",
				PreferentialRatePolicy: "base rate free for qualifying goods",
				RulesOfOrigin:          "goods must satisfy USMCA regional-content rules",
			}},
			BaselineExempt:       true,
			BaselineExemptReason: "USMCA member exempted from the universal baseline",
		},
		{
			CountryCode: "MX",
			CountryName: "Mexico",
			TradeAgreements: []TradeAgreement{{
				Name:                   "USMCA",
				PreferentialRatePolicy: "base rate free for qualifying goods",
				RulesOfOrigin:          "goods must satisfy USMCA regional-content rules",
			}},
			BaselineExempt:       true,
			BaselineExemptReason: "USMCA member exempted from the universal baseline",
		},
		{
			CountryCode: "SG",
			CountryName: "Singapore",
			TradeAgreements: []TradeAgreement{{
				Name:                   "US-Singapore FTA",
				PreferentialRatePolicy: "base rate free for qualifying goods",
				RulesOfOrigin:          "goods must be wholly obtained or substantially transformed in Singapore",
			}},
			// FTA membership waives only the base rate; the baseline still
			// applies.
		},
		{
			CountryCode: "KR",
			CountryName: "South Korea",
			TradeAgreements: []TradeAgreement{{
				Name:                   "KORUS FTA",
				PreferentialRatePolicy: "base rate free for qualifying goods",
				RulesOfOrigin:          "goods must satisfy KORUS origin rules",
			}},
		},
		{
			CountryCode: "AU",
			CountryName: "Australia",
			TradeAgreements: []TradeAgreement{{
				Name:                   "US-Australia FTA",
				PreferentialRatePolicy: "base rate free for qualifying goods",
				RulesOfOrigin:          "goods must be wholly obtained or substantially transformed in Australia",
			}},
		},
		{CountryCode: "VN", CountryName: "Vietnam"},
		{CountryCode: "IN", CountryName: "India"},
		{CountryCode: "DE", CountryName: "Germany"},
		{CountryCode: "JP", CountryName: "Japan"},
		{CountryCode: "GB", CountryName: "United Kingdom"},
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Built-in program catalog
// ─────────────────────────────────────────────────────────────────────────────

// StaticProgramCatalog is an in-memory ProgramCatalog keyed by code prefix.
// Longest matching prefix wins within each program family.
type StaticProgramCatalog struct {
	section301 map[string]*Section301List
	section232 map[string]*Section232Class
	watchList  map[string]string // "prefix|country" → advisory text
}

// NewStaticProgramCatalog builds a catalog from explicit prefix tables.
func NewStaticProgramCatalog(
	s301 map[string]*Section301List,
	s232 map[string]*Section232Class,
	watch map[string]string,
) *StaticProgramCatalog {
	c := &StaticProgramCatalog{
		section301: make(map[string]*Section301List, len(s301)),
		section232: make(map[string]*Section232Class, len(s232)),
		watchList:  make(map[string]string, len(watch)),
	}
	for prefix, l := range s301 {
		c.section301[digitsOnly(prefix)] = l
	}
	for prefix, cl := range s232 {
		c.section232[digitsOnly(prefix)] = cl
	}
	for key, note := range watch {
		c.watchList[normalizeWatchKey(key)] = note
	}
	return c
}

// Section301List implements ProgramCatalog by longest-prefix match.
func (c *StaticProgramCatalog) Section301List(_ context.Context, code string) (*Section301List, error) {
	n := digitsOnly(code)
	for end := len(n); end >= 2; end-- {
		if l, ok := c.section301[n[:end]]; ok {
			return l, nil
		}
	}
	return nil, nil
}

// Section232Class implements ProgramCatalog by longest-prefix match.
func (c *StaticProgramCatalog) Section232Class(_ context.Context, code string) (*Section232Class, error) {
	n := digitsOnly(code)
	for end := len(n); end >= 2; end-- {
		if cl, ok := c.section232[n[:end]]; ok {
			return cl, nil
		}
	}
	return nil, nil
}

// OnWatchList implements ProgramCatalog.
func (c *StaticProgramCatalog) OnWatchList(_ context.Context, code, countryCode string) (bool, string, error) {
	n := digitsOnly(code)
	country := NormalizeCountry(countryCode)
	for end := len(n); end >= 2; end-- {
		if note, ok := c.watchList[n[:end]+"|"+country]; ok {
			return true, note, nil
		}
	}
	return false, "", nil
}

func digitsOnly(code string) string {
	var b strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizeWatchKey(key string) string {
	parts := strings.SplitN(key, "|", 2)
	if len(parts) != 2 {
		return key
	}
	return digitsOnly(parts[0]) + "|" + NormalizeCountry(parts[1])
}

// NewDefaultProgramCatalog returns the built-in Section 301/232 and AD/CVD
// tables.  Prefix coverage is deliberately coarse; deployments needing the
// full lists wire the store-backed catalog.
func NewDefaultProgramCatalog() *StaticProgramCatalog {
	list1 := &Section301List{Name: "List 1", Rate: 25, LegalReference: "83 FR 28710"}
	list2 := &Section301List{Name: "List 2", Rate: 25, LegalReference: "83 FR 40823"}
	list3 := &Section301List{Name: "List 3", Rate: 25, LegalReference: "83 FR 47974"}
	list4a := &Section301List{Name: "List 4A", Rate: 7.5, LegalReference: "84 FR 43304"}

	steel := &Section232Class{
		Name:            "steel",
		Rate:            25,
		LegalReference:  "Proclamation 9705",
		ExemptCountries: []string{"AU"},
	}
	aluminum := &Section232Class{
		Name:            "aluminum",
		Rate:            10,
		LegalReference:  "Proclamation 9704",
		ExemptCountries: []string{"AU"},
	}
	autos := &Section232Class{
		Name:           "automobiles",
		Rate:           25,
		LegalReference: "Proclamation 10908",
	}

	return NewStaticProgramCatalog(
		map[string]*Section301List{
			"84":   list1,
			"85":   list1,
			"8517": list4a,
			"39":   list3,
			"42":   list3,
			"73":   list2,
			"94":   list3,
			"95":   list4a,
		},
		map[string]*Section232Class{
			"72":   steel,
			"73":   steel,
			"76":   aluminum,
			"8703": autos,
		},
		map[string]string{
			"7306|CN": "welded steel pipe from China is subject to AD/CVD orders",
			"8507|CN": "lithium-ion batteries from China are under AD/CVD investigation",
			"6302|CN": "certain cotton textiles from China carry countervailing-duty orders",
		},
	)
}
