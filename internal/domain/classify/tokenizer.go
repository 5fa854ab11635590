// Package classify implements the pure classification domain: query
// tokenization and attribute detection, the candidate value object and its
// scoring-factor breakdown, and the heuristic text-rule predicates used by
// the scorer and validators.  Nothing in this package performs I/O; retrieval
// and scoring orchestration live in the application layer.
package classify

import (
	"strings"
	"unicode"
)

// ─────────────────────────────────────────────────────────────────────────────
// Tokenization
// ─────────────────────────────────────────────────────────────────────────────

// stopwords are dropped from search-token sets.  The list is intentionally
// small: HTS descriptions are terse, so aggressive filtering loses signal.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "in": true, "is": true,
	"it": true, "its": true, "made": true, "my": true, "of": true, "on": true,
	"or": true, "that": true, "the": true, "this": true, "to": true,
	"with": true,
}

// Tokenize normalizes a free-text description into a deduplicated search
// token set: lowercased, split on non-letter/digit boundaries (hyphens kept),
// possessives stripped, stopwords removed, plurals singularized.  Hyphenated
// tokens additionally contribute their fused variant so "t-shirt" matches
// entries indexed as "tshirt".  Order follows first appearance.
func Tokenize(text string) []string {
	fields := splitTokens(strings.ToLower(text))

	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	add := func(tok string) {
		if tok == "" || stopwords[tok] || seen[tok] {
			return
		}
		seen[tok] = true
		out = append(out, tok)
	}

	for _, f := range fields {
		tok := Singularize(stripPossessive(f))
		add(tok)
		if strings.Contains(tok, "-") {
			add(strings.ReplaceAll(tok, "-", ""))
		}
	}
	return out
}

// splitTokens breaks lowercased text on everything except letters, digits and
// inner hyphens/apostrophes.
func splitTokens(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '\''
	})
}

// stripPossessive removes a trailing 's / ' marker: "men's" → "men",
// "boys'" → "boys".
func stripPossessive(tok string) string {
	tok = strings.Trim(tok, "-'")
	if strings.HasSuffix(tok, "'s") {
		return tok[:len(tok)-2]
	}
	return strings.TrimSuffix(tok, "'")
}

// Singularize applies a handful of English plural rules sufficient for tariff
// vocabulary.  It deliberately avoids a full stemmer: "glasses" → "glass",
// "berries" → "berry", "shirts" → "shirt", but "trousers" and other
// always-plural garment words are left alone.
func Singularize(tok string) string {
	if len(tok) < 4 || alwaysPlural[tok] {
		return tok
	}
	switch {
	case strings.HasSuffix(tok, "ies"):
		return tok[:len(tok)-3] + "y"
	case strings.HasSuffix(tok, "sses"), strings.HasSuffix(tok, "shes"),
		strings.HasSuffix(tok, "ches"), strings.HasSuffix(tok, "xes"):
		return tok[:len(tok)-2]
	case strings.HasSuffix(tok, "ss"), strings.HasSuffix(tok, "us"),
		strings.HasSuffix(tok, "is"):
		return tok
	case strings.HasSuffix(tok, "s"):
		return tok[:len(tok)-1]
	}
	return tok
}

// alwaysPlural lists garment and commodity words that look plural but name a
// single article.
var alwaysPlural = map[string]bool{
	"trousers":  true,
	"pants":     true,
	"shorts":    true,
	"jeans":     true,
	"scissors":  true,
	"pliers":    true,
	"overalls":  true,
	"pajamas":   true,
	"briefs":    true,
	"dungarees": true,
}

// ─────────────────────────────────────────────────────────────────────────────
// Attribute detection
// ─────────────────────────────────────────────────────────────────────────────

// Attributes is the tokenizer's full output for one query.
type Attributes struct {
	// Tokens is the normalized search token set, first-appearance order.
	Tokens []string

	// Material is the detected material term, empty when none matched.
	Material string

	// MaterialChapters is the chapter set implied by Material.
	MaterialChapters []string

	// ProductType is the detected product-type term, empty when none matched.
	ProductType string

	// ExpectedHeadings is the heading set implied by ProductType.
	ExpectedHeadings []string
}

// Analyze tokenizes the description and resolves material and product-type
// hints against the lexicon.  An explicit material hint takes precedence over
// detection from the text.  Product types are matched longest term first so
// "t-shirt" is never masked by its "shirt" substring.  Empty input yields
// empty attributes, not an error.
func Analyze(description, materialHint string, lex Lexicon) Attributes {
	attrs := Attributes{Tokens: Tokenize(description)}
	if lex == nil {
		return attrs
	}

	// The rule haystack carries the raw words plus their singularized forms
	// so "gloves" still matches a "glove" rule.
	fields := splitTokens(strings.ToLower(description))
	singular := make([]string, len(fields))
	for i, f := range fields {
		singular[i] = Singularize(stripPossessive(f))
	}
	normalized := " " + strings.Join(fields, " ") + " " + strings.Join(singular, " ") + " "

	if materialHint != "" {
		if chapters, ok := lex.MaterialChapters(strings.ToLower(strings.TrimSpace(materialHint))); ok {
			attrs.Material = strings.ToLower(strings.TrimSpace(materialHint))
			attrs.MaterialChapters = chapters
		}
	}
	if attrs.Material == "" {
		for _, tok := range attrs.Tokens {
			if chapters, ok := lex.MaterialChapters(tok); ok {
				attrs.Material = tok
				attrs.MaterialChapters = chapters
				break
			}
		}
	}

	for _, rule := range lex.ProductTypeRules() {
		if strings.Contains(normalized, " "+rule.Term+" ") {
			attrs.ProductType = rule.Term
			attrs.ExpectedHeadings = rule.Headings
			break
		}
	}
	return attrs
}
