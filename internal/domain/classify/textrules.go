package classify

import (
	"regexp"
	"strconv"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Description-class predicates
//
// Each heuristic rule family lives behind a named predicate so the scorer and
// validators never embed pattern literals of their own.
// ─────────────────────────────────────────────────────────────────────────────

var (
	reCatchAllSuffix = regexp.MustCompile(`(?i)(^|[\s,:;(])other:?\s*$`)
	reNesoi          = regexp.MustCompile(`(?i)\b(nesoi|not elsewhere specified)\b`)
	reShortList      = regexp.MustCompile(`(?i)^[a-z' -]+ and [a-z' -]+$`)
)

// IsCatchAll reports whether a description is a residual "other" bucket:
// exact "other", an "other:" prefix or suffix, or a not-elsewhere-specified
// marker.
func IsCatchAll(description string) bool {
	d := strings.TrimSpace(strings.ToLower(description))
	if d == "other" || d == "other:" {
		return true
	}
	if strings.HasPrefix(d, "other:") {
		return true
	}
	if strings.HasPrefix(d, "other ") && !strings.HasPrefix(d, "other than") {
		return true
	}
	if reCatchAllSuffix.MatchString(d) {
		return true
	}
	return reNesoi.MatchString(d)
}

// IsSpecificCarveOut reports whether a description names a concrete narrow
// product class: short (at most 8 words, at most 1 comma) and not a
// catch-all, or a short "X and Y" pair.
func IsSpecificCarveOut(description string) bool {
	d := strings.TrimSpace(description)
	if d == "" || IsCatchAll(d) {
		return false
	}
	words := len(strings.Fields(d))
	commas := strings.Count(d, ",")
	if words <= 8 && commas <= 1 {
		return true
	}
	return words <= 10 && reShortList.MatchString(strings.ToLower(strings.TrimSuffix(d, ":")))
}

// descriptionBoilerplate lists the filler words stripped before head-noun
// extraction.
var descriptionBoilerplate = map[string]bool{
	"other": true, "articles": true, "article": true, "thereof": true,
	"nesoi": true, "parts": true, "containing": true, "similar": true,
	"whether": true, "not": true, "than": true, "more": true, "less": true,
	"each": true, "valued": true, "over": true, "under": true,
}

// HeadNouns extracts the significant nouns from a sibling description, with
// boilerplate, stopwords and qualifiers stripped and plurals singularized.
// Used by the catch-all validator to test token overlap against specific
// carve-outs.
func HeadNouns(description string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tok := range Tokenize(description) {
		if descriptionBoilerplate[tok] || len(tok) < 3 || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// NounsOverlapTokens reports whether any extracted noun overlaps a search
// token, either by substring in one direction or by a stem match with the
// final character truncated.  "shirts" vs "shirt" and "glove" vs "gloves"
// both overlap.
func NounsOverlapTokens(nouns, tokens []string) (string, bool) {
	for _, noun := range nouns {
		for _, tok := range tokens {
			if overlaps(noun, tok) {
				return noun, true
			}
		}
	}
	return "", false
}

func overlaps(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	if len(a) > 3 && len(b) > 3 && a[:len(a)-1] == b[:len(b)-1] {
		return true
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Restrictive qualifiers
// ─────────────────────────────────────────────────────────────────────────────

var (
	reFiberPercent = regexp.MustCompile(`(?i)\b\d{1,3}\s*(?:%|percent)\b`)
	reSleeve       = regexp.MustCompile(`(?i)\b(long|short)[- ]sleeved?\b`)
	reValueGate    = regexp.MustCompile(`(?i)\bvalued\b|\b(?:not\s+)?over\s+\$\d`)
	reSizeGate     = regexp.MustCompile(`(?i)\b(?:not\s+)?over\s+\d+(?:\.\d+)?\s*(?:cm|mm|centimeters?|millimeters?)\b`)
)

// qualifierColors are the color qualifiers that narrow an entry to shipments
// the user may not have described.
var qualifierColors = []string{
	"white", "black", "blue", "red", "green", "yellow", "brown", "grey",
	"gray", "colored", "bleached", "unbleached", "dyed",
}

// CountUnmentionedQualifiers counts the restrictive qualifiers present in an
// entry description that the query tokens never mention: colors, sleeve
// length, value and size thresholds, fiber-content percentages.  The scorer
// converts the count into a capped penalty.
func CountUnmentionedQualifiers(description string, queryTokens []string) int {
	d := strings.ToLower(description)
	tokens := make(map[string]bool, len(queryTokens))
	for _, t := range queryTokens {
		tokens[t] = true
	}

	count := 0
	for _, color := range qualifierColors {
		if containsWord(d, color) && !tokens[color] {
			count++
		}
	}
	if reSleeve.MatchString(d) {
		mentioned := tokens["sleeve"] || tokens["sleeved"] ||
			tokens["long-sleeve"] || tokens["short-sleeve"]
		if !mentioned {
			count++
		}
	}
	if reValueGate.MatchString(d) && !tokens["valued"] {
		count++
	}
	if reSizeGate.MatchString(d) {
		count++
	}
	if reFiberPercent.MatchString(d) && !tokens["percent"] {
		count++
	}
	return count
}

func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || !isWordByte(text[i-1])
		after := i+len(word) == len(text) || !isWordByte(text[i+len(word)])
		if before && after {
			return true
		}
		idx = i + len(word)
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// ─────────────────────────────────────────────────────────────────────────────
// Threshold extraction
// ─────────────────────────────────────────────────────────────────────────────

// ThresholdKind distinguishes the gating dimensions the conditional-sibling
// detector understands.
type ThresholdKind string

const (
	ThresholdValue ThresholdKind = "value" // aggregate dollar value per unit
	ThresholdSize  ThresholdKind = "size"  // maximum dimension in centimeters
)

// Threshold is one numeric gate extracted from a sibling description.
type Threshold struct {
	Kind ThresholdKind

	// Amount is the gate value: dollars for value gates, centimeters for
	// size gates.
	Amount float64

	// Over is true for the "over X" branch, false for "not over X".
	Over bool
}

var (
	reValueThreshold = regexp.MustCompile(`(?i)(not\s+)?(?:over|exceeding)\s+\$(\d+(?:\.\d+)?)`)
	reSizeThreshold  = regexp.MustCompile(`(?i)(not\s+)?(?:over|exceeding)\s+(\d+(?:\.\d+)?)\s*cm\b`)
)

// ExtractThresholds pulls every value and size gate from a description.
// Descriptions without gates return nil.
func ExtractThresholds(description string) []Threshold {
	var out []Threshold
	for _, m := range reValueThreshold.FindAllStringSubmatch(description, -1) {
		amount, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		out = append(out, Threshold{Kind: ThresholdValue, Amount: amount, Over: m[1] == ""})
	}
	for _, m := range reSizeThreshold.FindAllStringSubmatch(description, -1) {
		amount, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		out = append(out, Threshold{Kind: ThresholdSize, Amount: amount, Over: m[1] == ""})
	}
	return out
}
