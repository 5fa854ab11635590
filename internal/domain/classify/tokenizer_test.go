package classify

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"cotton t-shirt for boys", []string{"cotton", "t-shirt", "tshirt", "boy"}},
		{"Men's leather gloves", []string{"men", "leather", "glove"}},
		{"100% cotton towels, white", []string{"100", "cotton", "towel", "white"}},
		{"", nil},
		{"the of and", nil},
	}
	for _, c := range cases {
		got := Tokenize(c.in)
		if len(got) == 0 && len(c.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSingularize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"shirts", "shirt"},
		{"berries", "berry"},
		{"glasses", "glass"},
		{"watches", "watch"},
		{"boxes", "box"},
		{"trousers", "trousers"},
		{"dress", "dress"},
		{"cat", "cat"},
	}
	for _, c := range cases {
		if got := Singularize(c.in); got != c.want {
			t.Errorf("Singularize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestAnalyzeDetectsMaterialAndProductType(t *testing.T) {
	lex := NewDefaultLexicon()
	attrs := Analyze("cotton t-shirt for boys", "", lex)

	if attrs.Material != "cotton" {
		t.Errorf("Material = %q, want cotton", attrs.Material)
	}
	if len(attrs.MaterialChapters) == 0 {
		t.Fatal("expected material chapters")
	}
	found := false
	for _, ch := range attrs.MaterialChapters {
		if ch == "61" {
			found = true
		}
	}
	if !found {
		t.Errorf("cotton chapters %v should include 61", attrs.MaterialChapters)
	}

	// Longest-match-first: "t-shirt" must win over its "shirt" substring.
	if attrs.ProductType != "t-shirt" {
		t.Errorf("ProductType = %q, want t-shirt", attrs.ProductType)
	}
	if !reflect.DeepEqual(attrs.ExpectedHeadings, []string{"6109"}) {
		t.Errorf("ExpectedHeadings = %v, want [6109]", attrs.ExpectedHeadings)
	}
}

func TestAnalyzeMaterialHintWins(t *testing.T) {
	lex := NewDefaultLexicon()
	attrs := Analyze("t-shirt for boys", "Wool", lex)
	if attrs.Material != "wool" {
		t.Errorf("Material = %q, want wool", attrs.Material)
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	attrs := Analyze("", "", NewDefaultLexicon())
	if len(attrs.Tokens) != 0 || attrs.Material != "" || attrs.ProductType != "" {
		t.Errorf("empty input should yield empty attributes, got %+v", attrs)
	}
}

func TestConflictingMaterial(t *testing.T) {
	lex := NewDefaultLexicon()
	term, conflict := ConflictingMaterial("Of man-made fibers", "cotton", lex)
	if !conflict || term != "man-made" {
		t.Errorf("got (%q, %v), want man-made conflict", term, conflict)
	}
	if _, conflict := ConflictingMaterial("Of cotton", "cotton", lex); conflict {
		t.Error("same material must not conflict")
	}
	if _, conflict := ConflictingMaterial("Of cotton or wool", "cotton", lex); conflict {
		t.Error("description naming the detected material must not conflict")
	}
	if _, conflict := ConflictingMaterial("T-shirts", "cotton", lex); conflict {
		t.Error("material-free description must not conflict")
	}
	if _, conflict := ConflictingMaterial("Of wool", "", lex); conflict {
		t.Error("no detected material means no conflict")
	}
}

func TestAnalyzePlainShirt(t *testing.T) {
	attrs := Analyze("men's shirt", "", NewDefaultLexicon())
	if attrs.ProductType != "shirt" {
		t.Errorf("ProductType = %q, want shirt", attrs.ProductType)
	}
	want := []string{"6105", "6106", "6205", "6206"}
	if !reflect.DeepEqual(attrs.ExpectedHeadings, want) {
		t.Errorf("ExpectedHeadings = %v, want %v", attrs.ExpectedHeadings, want)
	}
}
