package classify

import (
	"sort"
	"strings"
)

// ProductTypeRule maps a product-type term to the headings where that product
// is classified.  Rules are evaluated longest term first.
type ProductTypeRule struct {
	Term     string
	Headings []string
}

// Lexicon supplies the material and product-type lookup tables used during
// attribute detection.  It is a read-only data source so the tables can be
// refreshed independently of the detection logic.
type Lexicon interface {
	// MaterialChapters returns the chapter set a material term implies.
	MaterialChapters(material string) ([]string, bool)

	// ProductTypeRules returns all product-type rules ordered longest term
	// first.
	ProductTypeRules() []ProductTypeRule

	// MaterialTerms returns every known material term.
	MaterialTerms() []string
}

// ConflictingMaterial reports whether a description names a material other
// than the detected one without also naming the detected one.  Used to
// penalize candidates whose text, or whose ancestor text, pins a different
// material ("of man-made fibers" vs a cotton query).
func ConflictingMaterial(description, material string, lex Lexicon) (string, bool) {
	if material == "" || lex == nil {
		return "", false
	}
	d := strings.ToLower(description)
	if containsWord(d, material) {
		return "", false
	}
	for _, term := range lex.MaterialTerms() {
		if term != material && containsWord(d, term) {
			return term, true
		}
	}
	return "", false
}

// ─────────────────────────────────────────────────────────────────────────────
// Built-in lexicon
// ─────────────────────────────────────────────────────────────────────────────

// staticLexicon is the in-memory Lexicon used when no external table source
// is wired.
type staticLexicon struct {
	materials map[string][]string
	rules     []ProductTypeRule
}

// NewStaticLexicon builds a Lexicon from explicit tables.  Rule terms are
// lowercased and sorted longest first; the input slices are not retained.
func NewStaticLexicon(materials map[string][]string, rules []ProductTypeRule) Lexicon {
	lex := &staticLexicon{
		materials: make(map[string][]string, len(materials)),
		rules:     make([]ProductTypeRule, 0, len(rules)),
	}
	for term, chapters := range materials {
		lex.materials[strings.ToLower(term)] = append([]string(nil), chapters...)
	}
	for _, r := range rules {
		lex.rules = append(lex.rules, ProductTypeRule{
			Term:     strings.ToLower(r.Term),
			Headings: append([]string(nil), r.Headings...),
		})
	}
	sort.SliceStable(lex.rules, func(i, j int) bool {
		return len(lex.rules[i].Term) > len(lex.rules[j].Term)
	})
	return lex
}

func (l *staticLexicon) MaterialChapters(material string) ([]string, bool) {
	chapters, ok := l.materials[material]
	return chapters, ok
}

func (l *staticLexicon) ProductTypeRules() []ProductTypeRule {
	return l.rules
}

func (l *staticLexicon) MaterialTerms() []string {
	terms := make([]string, 0, len(l.materials))
	for term := range l.materials {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// NewDefaultLexicon returns the built-in material and product-type tables.
// The tables cover the commodity vocabulary seen in practice; domain-specific
// deployments replace them through the Lexicon port.
func NewDefaultLexicon() Lexicon {
	return NewStaticLexicon(defaultMaterials, defaultProductTypes)
}

// defaultMaterials maps material terms to the chapters where goods of that
// material are classified.
var defaultMaterials = map[string][]string{
	"cotton":    {"50", "52", "61", "62", "63"},
	"man-made":  {"54", "55", "61", "62", "63"},
	"wool":      {"51", "61", "62", "63"},
	"silk":      {"50", "61", "62"},
	"linen":     {"53", "61", "62", "63"},
	"polyester": {"54", "55", "61", "62", "63"},
	"nylon":     {"54", "55", "61", "62", "63"},
	"rayon":     {"54", "55", "61", "62"},
	"leather":   {"41", "42", "64"},
	"rubber":    {"40", "64"},
	"plastic":   {"39", "64", "94", "95"},
	"wood":      {"44", "94"},
	"bamboo":    {"44", "46"},
	"paper":     {"48", "49"},
	"glass":     {"70"},
	"ceramic":   {"69"},
	"porcelain": {"69"},
	"steel":     {"72", "73", "82"},
	"iron":      {"72", "73"},
	"aluminum":  {"76"},
	"copper":    {"74"},
	"gold":      {"71"},
	"silver":    {"71"},
	"titanium":  {"81"},
}

// defaultProductTypes maps product terms to their expected headings.  Longer
// terms are listed here for readability only; NewStaticLexicon re-sorts.
var defaultProductTypes = []ProductTypeRule{
	{Term: "t-shirt", Headings: []string{"6109"}},
	{Term: "t shirt", Headings: []string{"6109"}},
	{Term: "tshirt", Headings: []string{"6109"}},
	{Term: "tank top", Headings: []string{"6109"}},
	{Term: "polo shirt", Headings: []string{"6105"}},
	{Term: "dress shirt", Headings: []string{"6205"}},
	{Term: "sweatshirt", Headings: []string{"6110"}},
	{Term: "sweater", Headings: []string{"6110"}},
	{Term: "pullover", Headings: []string{"6110"}},
	{Term: "cardigan", Headings: []string{"6110"}},
	{Term: "shirt", Headings: []string{"6105", "6106", "6205", "6206"}},
	{Term: "blouse", Headings: []string{"6106", "6206"}},
	{Term: "trousers", Headings: []string{"6103", "6104", "6203", "6204"}},
	{Term: "pants", Headings: []string{"6103", "6104", "6203", "6204"}},
	{Term: "jeans", Headings: []string{"6203", "6204"}},
	{Term: "shorts", Headings: []string{"6103", "6104", "6203", "6204"}},
	{Term: "dress", Headings: []string{"6104", "6204"}},
	{Term: "skirt", Headings: []string{"6104", "6204"}},
	{Term: "jacket", Headings: []string{"6101", "6102", "6103", "6104", "6201", "6202", "6203", "6204"}},
	{Term: "coat", Headings: []string{"6101", "6102", "6201", "6202"}},
	{Term: "suit", Headings: []string{"6103", "6104", "6203", "6204"}},
	{Term: "underwear", Headings: []string{"6107", "6108", "6207", "6208"}},
	{Term: "sock", Headings: []string{"6115"}},
	{Term: "glove", Headings: []string{"6116", "6216"}},
	{Term: "hat", Headings: []string{"6505", "6506"}},
	{Term: "cap", Headings: []string{"6505"}},
	{Term: "scarf", Headings: []string{"6117", "6214"}},
	{Term: "shoe", Headings: []string{"6402", "6403", "6404", "6405"}},
	{Term: "sneaker", Headings: []string{"6402", "6404"}},
	{Term: "boot", Headings: []string{"6401", "6402", "6403"}},
	{Term: "sandal", Headings: []string{"6402", "6403", "6404"}},
	{Term: "handbag", Headings: []string{"4202"}},
	{Term: "backpack", Headings: []string{"4202"}},
	{Term: "wallet", Headings: []string{"4202"}},
	{Term: "suitcase", Headings: []string{"4202"}},
	{Term: "umbrella", Headings: []string{"6601"}},
	{Term: "watch", Headings: []string{"9101", "9102"}},
	{Term: "sunglasses", Headings: []string{"9004"}},
	{Term: "laptop", Headings: []string{"8471"}},
	{Term: "computer", Headings: []string{"8471"}},
	{Term: "tablet", Headings: []string{"8471"}},
	{Term: "smartphone", Headings: []string{"8517"}},
	{Term: "phone", Headings: []string{"8517"}},
	{Term: "headphones", Headings: []string{"8518"}},
	{Term: "speaker", Headings: []string{"8518"}},
	{Term: "television", Headings: []string{"8528"}},
	{Term: "monitor", Headings: []string{"8528"}},
	{Term: "camera", Headings: []string{"8525", "9006"}},
	{Term: "battery", Headings: []string{"8506", "8507"}},
	{Term: "chair", Headings: []string{"9401"}},
	{Term: "sofa", Headings: []string{"9401"}},
	{Term: "table", Headings: []string{"9403"}},
	{Term: "desk", Headings: []string{"9403"}},
	{Term: "mattress", Headings: []string{"9404"}},
	{Term: "lamp", Headings: []string{"9405"}},
	{Term: "toy", Headings: []string{"9503"}},
	{Term: "doll", Headings: []string{"9503"}},
	{Term: "puzzle", Headings: []string{"9503"}},
	{Term: "bicycle", Headings: []string{"8712"}},
	{Term: "knife", Headings: []string{"8211"}},
	{Term: "towel", Headings: []string{"6302"}},
	{Term: "blanket", Headings: []string{"6301"}},
	{Term: "curtain", Headings: []string{"6303"}},
	{Term: "carpet", Headings: []string{"5701", "5702", "5703"}},
	{Term: "rug", Headings: []string{"5701", "5702", "5703"}},
}
