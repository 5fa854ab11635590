package classify

import (
	"testing"
)

func TestIsCatchAll(t *testing.T) {
	catchAlls := []string{
		"Other",
		"Other:",
		"Other: Of cotton",
		"Other footwear",
		"Articles nesoi",
		"Not elsewhere specified or included",
		"Textile articles, other",
	}
	for _, d := range catchAlls {
		if !IsCatchAll(d) {
			t.Errorf("IsCatchAll(%q) = false, want true", d)
		}
	}
	specifics := []string{
		"T-shirts, singlets and tank tops",
		"Live horses",
		"Other than wool", // exclusion phrasing, not a residual bucket
		"",
	}
	for _, d := range specifics {
		if IsCatchAll(d) {
			t.Errorf("IsCatchAll(%q) = true, want false", d)
		}
	}
}

func TestIsSpecificCarveOut(t *testing.T) {
	carveOuts := []string{
		"Gloves and mittens",
		"Live purebred breeding horses",
		"Men's or boys' overcoats, carcoats",
	}
	for _, d := range carveOuts {
		if !IsSpecificCarveOut(d) {
			t.Errorf("IsSpecificCarveOut(%q) = false, want true", d)
		}
	}
	notCarveOuts := []string{
		"Other",
		"Articles nesoi",
		"",
		"Garments, made up of fabrics of heading 5602, 5603, 5903, 5906 or 5907, containing elastomeric yarn or rubber thread",
	}
	for _, d := range notCarveOuts {
		if IsSpecificCarveOut(d) {
			t.Errorf("IsSpecificCarveOut(%q) = true, want false", d)
		}
	}
}

func TestHeadNouns(t *testing.T) {
	nouns := HeadNouns("Other articles of plastics, thereof")
	for _, n := range nouns {
		if n == "other" || n == "articles" || n == "thereof" {
			t.Errorf("boilerplate %q not stripped", n)
		}
	}
	nouns = HeadNouns("Gloves and mittens, of leather")
	want := map[string]bool{"glove": true, "mitten": true, "leather": true}
	for _, n := range nouns {
		if !want[n] {
			t.Errorf("unexpected noun %q in %v", n, nouns)
		}
		delete(want, n)
	}
	if len(want) != 0 {
		t.Errorf("missing nouns: %v", want)
	}
}

func TestNounsOverlapTokens(t *testing.T) {
	noun, ok := NounsOverlapTokens([]string{"glove", "mitten"}, []string{"gloves"})
	if !ok || noun != "glove" {
		t.Errorf("expected glove overlap, got %q %v", noun, ok)
	}
	if _, ok := NounsOverlapTokens([]string{"horse"}, []string{"shirt", "cotton"}); ok {
		t.Error("horse should not overlap shirt/cotton")
	}
	if _, ok := NounsOverlapTokens(nil, []string{"shirt"}); ok {
		t.Error("empty nouns never overlap")
	}
}

func TestCountUnmentionedQualifiers(t *testing.T) {
	cases := []struct {
		desc   string
		tokens []string
		want   int
	}{
		{"T-shirts, white, short-sleeved", []string{"t-shirt"}, 2},
		{"T-shirts, white, short-sleeved", []string{"t-shirt", "white", "sleeve"}, 0},
		{"Containing 70 percent by weight of silk", []string{"scarf"}, 1},
		{"Valued over $20 each", []string{"glove"}, 1},
		{"Not over 15 cm in maximum dimension", []string{"knife"}, 1},
		{"T-shirts", []string{"t-shirt"}, 0},
	}
	for _, c := range cases {
		if got := CountUnmentionedQualifiers(c.desc, c.tokens); got != c.want {
			t.Errorf("CountUnmentionedQualifiers(%q, %v) = %d, want %d",
				c.desc, c.tokens, got, c.want)
		}
	}
}

func TestExtractThresholds(t *testing.T) {
	ths := ExtractThresholds("Valued not over $20 each")
	if len(ths) != 1 || ths[0].Kind != ThresholdValue || ths[0].Amount != 20 || ths[0].Over {
		t.Errorf("unexpected thresholds %+v", ths)
	}
	ths = ExtractThresholds("Valued over $2.50 per dozen")
	if len(ths) != 1 || ths[0].Amount != 2.5 || !ths[0].Over {
		t.Errorf("unexpected thresholds %+v", ths)
	}
	ths = ExtractThresholds("Not over 15 cm in maximum dimension")
	if len(ths) != 1 || ths[0].Kind != ThresholdSize || ths[0].Amount != 15 || ths[0].Over {
		t.Errorf("unexpected thresholds %+v", ths)
	}
	if ths := ExtractThresholds("Live horses"); ths != nil {
		t.Errorf("expected no thresholds, got %+v", ths)
	}
}
