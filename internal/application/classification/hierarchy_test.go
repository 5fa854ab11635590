package classification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearfreight/tariffscope/internal/domain/catalog"
)

func TestAssembleInterleavesGroupings(t *testing.T) {
	a := newAssembler(apparelCatalog())
	h, err := a.assemble(context.Background(), "6109.10.00.12")
	require.NoError(t, err)

	want := []string{
		"Articles of apparel and clothing accessories, knitted or crocheted",
		"T-shirts, singlets, tank tops and similar garments, knitted or crocheted",
		"Of cotton",
		"Men's or boys'",
		"Boys'",
	}
	assert.Equal(t, want, h.Segments)
	assert.Equal(t, "Boys'", h.ShortDescription)
	assert.Equal(t,
		"Articles of apparel and clothing accessories, knitted or crocheted: "+
			"T-shirts, singlets, tank tops and similar garments, knitted or crocheted: "+
			"Of cotton: Men's or boys': Boys'",
		h.FullDescription)
}

func TestAssembleDedupesRepeatedSegments(t *testing.T) {
	// "Of cotton" appears at both the subheading and the tariff line; only
	// the first survives.
	repo := apparelCatalog()
	a := newAssembler(repo)
	h, err := a.assemble(context.Background(), "61091000")
	require.NoError(t, err)

	count := 0
	for _, seg := range h.Segments {
		if seg == "Of cotton" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestAssembleSuppressesDuplicateOther(t *testing.T) {
	repo := newFakeCatalog(
		&catalog.CodeEntry{Code: "39", Description: "Plastics and articles thereof"},
		&catalog.CodeEntry{Code: "3926", Description: "Other articles of plastics:"},
		&catalog.CodeEntry{Code: "392690", Description: "Other:"},
		&catalog.CodeEntry{Code: "39269099", Description: "Other", ParentGroupings: []string{"Other:"}},
	)
	a := newAssembler(repo)
	h, err := a.assemble(context.Background(), "39269099")
	require.NoError(t, err)

	others := 0
	for _, seg := range h.Segments {
		if seg == "Other" {
			others++
		}
	}
	assert.Equal(t, 1, others, "duplicate bare Other labels must be suppressed: %v", h.Segments)
}

func TestAssembleUnknownCode(t *testing.T) {
	a := newAssembler(apparelCatalog())
	_, err := a.assemble(context.Background(), "9999999999")
	assert.Error(t, err)
}
