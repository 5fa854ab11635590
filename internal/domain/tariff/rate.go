// Package tariff implements the duty domain: published rate parsing, the
// country tariff profile model, and the additional-duty program types that
// the stacking calculator composes.  Lookup ports are defined here; the
// calculator itself lives in the application layer.
package tariff

import (
	"regexp"
	"strconv"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Published rate parsing
// ─────────────────────────────────────────────────────────────────────────────

// Rate is the parsed form of a column-1 duty rate string.
type Rate struct {
	// Raw is the rate string as published.
	Raw string `json:"raw"`

	// AdValorem is the percentage component.  "Free" parses to 0; compound
	// rates like "2.4¢/kg + 5.6%" keep only the percentage here.
	AdValorem float64 `json:"adValorem"`

	// Specific is the per-unit component of a compound rate ("2.4¢/kg"),
	// recorded verbatim and never folded into AdValorem.
	Specific string `json:"specific,omitempty"`

	// Parseable is false when the string matched no known pattern; the
	// calculator then treats the rate as 0 and flags the result.
	Parseable bool `json:"parseable"`
}

var (
	rePercent  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	reSpecific = regexp.MustCompile(`\d+(?:\.\d+)?\s*(?:¢|cents?)\s*/?\s*(?:kg|liter|litre|doz\.?|dozen|each|no\.|pr\.?|m2|m²)?`)
)

// ParseRate interprets a published duty rate string.  "Free" and its
// variants parse to 0; a percentage anywhere in the string becomes the
// ad-valorem component; a cents-per-unit component is recorded as Specific.
// A string with neither marker is unparseable and defaults to 0.
func ParseRate(raw string) Rate {
	r := Rate{Raw: raw}
	s := strings.TrimSpace(raw)
	if s == "" {
		return r
	}
	if isFree(s) {
		r.Parseable = true
		return r
	}

	if m := rePercent.FindStringSubmatch(s); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			r.AdValorem = v
			r.Parseable = true
		}
	}
	if m := reSpecific.FindString(s); m != "" {
		r.Specific = strings.TrimSpace(m)
		r.Parseable = true
	}
	return r
}

func isFree(s string) bool {
	return strings.EqualFold(s, "free") || strings.EqualFold(s, "duty-free") ||
		strings.EqualFold(s, "none")
}
