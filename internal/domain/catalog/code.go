package catalog

import (
	"strings"

	"github.com/clearfreight/tariffscope/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Code normalization and display formatting
// ─────────────────────────────────────────────────────────────────────────────

// Normalize strips punctuation and whitespace from a code, leaving only its
// digits.  "0101.21.00.10" and "0101210010" normalize identically.
func Normalize(code string) string {
	var b strings.Builder
	b.Grow(len(code))
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate checks that a code is a well-formed HTS code: digits only after
// normalization and one of the five recognized lengths.
func Validate(code string) error {
	n := Normalize(code)
	if n == "" {
		return errors.New(errors.ErrCodeHTSCodeInvalid, "empty HTS code")
	}
	if _, ok := levelByDigits[len(n)]; !ok {
		return errors.Newf(errors.ErrCodeHTSCodeInvalid,
			"HTS code %q has %d digits, want 2, 4, 6, 8 or 10", code, len(n))
	}
	return nil
}

// Format renders a normalized code in its dotted display form, with
// separators after the 4th, 6th and 8th digits: "0101.21.00.10".  Codes of 4
// or fewer digits have no separators.  Format(Normalize(x)) == Format(x) for
// any well-formed x, so the two forms are interchangeable at the boundary.
func Format(code string) string {
	n := Normalize(code)
	if len(n) <= 4 {
		return n
	}
	var b strings.Builder
	b.Grow(len(n) + 3)
	b.WriteString(n[:4])
	for i := 4; i < len(n); i += 2 {
		b.WriteByte('.')
		end := i + 2
		if end > len(n) {
			end = len(n)
		}
		b.WriteString(n[i:end])
	}
	return b.String()
}

// ParentCode returns the normalized code of the immediate structural parent:
// statistical→tariff line→subheading→heading→chapter.  Chapters and malformed
// codes return the empty string.
func ParentCode(code string) string {
	n := Normalize(code)
	switch len(n) {
	case 10:
		return n[:8]
	case 8:
		return n[:6]
	case 6:
		return n[:4]
	case 4:
		return n[:2]
	}
	return ""
}

// AncestorCodes returns every structural ancestor of the code ordered root
// first, excluding the code itself.  "0101210010" yields
// ["01", "0101", "010121", "01012100"].
func AncestorCodes(code string) []string {
	n := Normalize(code)
	var out []string
	for p := ParentCode(n); p != ""; p = ParentCode(p) {
		out = append([]string{p}, out...)
	}
	return out
}

// SharePrefix reports whether two codes agree on their first n digits.
func SharePrefix(a, b string, n int) bool {
	na, nb := Normalize(a), Normalize(b)
	if len(na) < n || len(nb) < n {
		return false
	}
	return na[:n] == nb[:n]
}
