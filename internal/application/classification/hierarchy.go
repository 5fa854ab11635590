package classification

import (
	"context"
	"strings"

	"github.com/clearfreight/tariffscope/internal/domain/catalog"
)

// Hierarchy is the assembled legal description path for one code.
type Hierarchy struct {
	// Path is the ancestor chain root first, ending at the entry itself.
	Path []*catalog.CodeEntry `json:"path"`

	// Segments is the ordered, deduplicated description segment list with
	// intermediate groupings interleaved before their owning node.
	Segments []string `json:"segments"`

	// FullDescription is the colon-joined segment list.
	FullDescription string `json:"fullDescription"`

	// ShortDescription is the leaf's own description alone.
	ShortDescription string `json:"shortDescription"`
}

// assembler renders legal description paths from the catalog.
type assembler struct {
	catalog catalog.Repository
}

func newAssembler(repo catalog.Repository) *assembler {
	return &assembler{catalog: repo}
}

// assemble builds the hierarchy for a code.  Each node contributes its
// intermediate groupings first, then its own description.  Segments whose
// case-insensitive text already appeared are dropped, and "other" labels
// beyond the first are suppressed.
func (a *assembler) assemble(ctx context.Context, code string) (*Hierarchy, error) {
	entry, err := a.catalog.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	ancestors, err := a.catalog.GetAncestors(ctx, code)
	if err != nil {
		return nil, err
	}

	h := &Hierarchy{
		Path:             append(append([]*catalog.CodeEntry{}, ancestors...), entry),
		ShortDescription: cleanSegment(entry.Description),
	}

	seen := make(map[string]bool)
	otherSeen := false
	add := func(raw string) {
		seg := cleanSegment(raw)
		if seg == "" {
			return
		}
		key := strings.ToLower(seg)
		if seen[key] {
			return
		}
		if key == "other" {
			if otherSeen {
				return
			}
			otherSeen = true
		}
		seen[key] = true
		h.Segments = append(h.Segments, seg)
	}

	for _, node := range h.Path {
		for _, g := range node.ParentGroupings {
			add(g)
		}
		add(node.Description)
	}
	h.FullDescription = strings.Join(h.Segments, ": ")
	return h, nil
}

// cleanSegment trims whitespace and the trailing colon the published
// schedule carries on grouping rows.
func cleanSegment(s string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ":"))
}
