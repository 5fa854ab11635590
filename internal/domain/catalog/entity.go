// Package catalog implements the HTS catalog bounded context: the code
// hierarchy entity, code normalization and display formatting, and the
// repository contract for catalog lookups.  Business rules about what a code
// IS live here; how codes are stored and searched is handled by the
// infrastructure adapters.
package catalog

import (
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Hierarchy levels
// ─────────────────────────────────────────────────────────────────────────────

// Level identifies the depth of a code within the HTS hierarchy.  The level
// is fully determined by the digit count of the normalized code.
type Level string

const (
	LevelChapter     Level = "chapter"      // 2 digits
	LevelHeading     Level = "heading"      // 4 digits
	LevelSubheading  Level = "subheading"   // 6 digits
	LevelTariffLine  Level = "tariff_line"  // 8 digits
	LevelStatistical Level = "statistical"  // 10 digits
	LevelUnknown     Level = ""
)

// levelByDigits maps normalized code length to hierarchy level.
var levelByDigits = map[int]Level{
	2:  LevelChapter,
	4:  LevelHeading,
	6:  LevelSubheading,
	8:  LevelTariffLine,
	10: LevelStatistical,
}

// LevelForCode derives the hierarchy level from a code's digit count.  The
// code may be in raw or display form.  Codes with an unrecognized digit count
// return LevelUnknown.
func LevelForCode(code string) Level {
	return levelByDigits[len(Normalize(code))]
}

// Depth returns the ordinal of the level within the hierarchy, chapter being
// 1 and statistical being 5.  Unknown levels return 0.
func (l Level) Depth() int {
	switch l {
	case LevelChapter:
		return 1
	case LevelHeading:
		return 2
	case LevelSubheading:
		return 3
	case LevelTariffLine:
		return 4
	case LevelStatistical:
		return 5
	}
	return 0
}

// ─────────────────────────────────────────────────────────────────────────────
// CodeEntry entity
// ─────────────────────────────────────────────────────────────────────────────

// CodeEntry is a single node in the HTS hierarchy.  Entries at every level
// share the same shape; leaf-only fields (the duty rate, the unit of
// quantity) are empty on structural nodes.
type CodeEntry struct {
	// Code is the normalized digits-only code, 2 to 10 digits.
	Code string `json:"code"`

	// Level is the hierarchy level implied by the digit count of Code.
	Level Level `json:"level"`

	// Description is the official article description for this entry.  At
	// deeper levels the description is frequently an "Other" or a bare
	// qualifier that only makes sense joined with its ancestors.
	Description string `json:"description"`

	// ParentCode is the normalized code of the immediate structural parent,
	// empty for chapters.
	ParentCode string `json:"parentCode,omitempty"`

	// ParentGroupings holds intermediate indent-level captions that sit
	// between this entry and its coded parent in the published schedule
	// ("Men's or boys':", "Of cotton:").  They carry no code of their own but
	// are required to assemble a readable full description.
	ParentGroupings []string `json:"parentGroupings,omitempty"`

	// BaseRate is the column-1 general duty rate as published ("Free",
	// "16.5%", "2.4¢/kg + 5.6%").  Populated on tariff-line and statistical
	// entries only.
	BaseRate string `json:"baseRate,omitempty"`

	// UnitOfQuantity lists the reporting units for statistical entries
	// ("doz.", "kg").
	UnitOfQuantity []string `json:"unitOfQuantity,omitempty"`

	// Keywords are the indexable terms extracted from the description at
	// ingest time, used by the keyword search path.
	Keywords []string `json:"keywords,omitempty"`
}

// IsLeaf reports whether the entry sits at a rate-bearing level.
func (e *CodeEntry) IsLeaf() bool {
	return e.Level == LevelTariffLine || e.Level == LevelStatistical
}

// DisplayCode returns the dotted display form of the entry's code.
func (e *CodeEntry) DisplayCode() string {
	return Format(e.Code)
}

// Chapter returns the 2-digit chapter prefix of the entry's code.
func (e *CodeEntry) Chapter() string {
	if len(e.Code) < 2 {
		return ""
	}
	return e.Code[:2]
}

// Heading returns the 4-digit heading prefix, or the empty string for
// chapter-level entries.
func (e *CodeEntry) Heading() string {
	if len(e.Code) < 4 {
		return ""
	}
	return e.Code[:4]
}

// FullDescription joins the entry's ancestor descriptions, intermediate
// groupings, and own description into a single readable line.  Ancestors must
// be ordered root first.  Trailing colons on intermediate segments are
// preserved by the source data and trimmed here.
func (e *CodeEntry) FullDescription(ancestors []*CodeEntry) string {
	segments := make([]string, 0, len(ancestors)+len(e.ParentGroupings)+1)
	for _, a := range ancestors {
		if s := strings.TrimSuffix(strings.TrimSpace(a.Description), ":"); s != "" {
			segments = append(segments, s)
		}
	}
	for _, g := range e.ParentGroupings {
		if s := strings.TrimSuffix(strings.TrimSpace(g), ":"); s != "" {
			segments = append(segments, s)
		}
	}
	if s := strings.TrimSuffix(strings.TrimSpace(e.Description), ":"); s != "" {
		segments = append(segments, s)
	}
	return strings.Join(segments, ": ")
}
