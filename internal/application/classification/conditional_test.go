package classification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearfreight/tariffscope/internal/application/duty"
	"github.com/clearfreight/tariffscope/internal/config"
	"github.com/clearfreight/tariffscope/internal/domain/catalog"
	"github.com/clearfreight/tariffscope/internal/domain/tariff"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
)

func jewelryCatalog() *fakeCatalog {
	return newFakeCatalog(
		&catalog.CodeEntry{Code: "71", Description: "Imitation jewelry and related articles"},
		&catalog.CodeEntry{Code: "7117", Description: "Imitation jewelry:"},
		&catalog.CodeEntry{Code: "711790", Description: "Other:"},
		&catalog.CodeEntry{Code: "71179045", Description: "Valued not over $5 per dozen", BaseRate: "Free"},
		&catalog.CodeEntry{Code: "71179055", Description: "Valued over $5 per dozen", BaseRate: "11%"},
	)
}

func newTestDetector(repo catalog.Repository) *conditionalDetector {
	dutySvc := duty.NewService(tariff.NewDefaultRegistry(), tariff.NewDefaultProgramCatalog(),
		config.DutyConfig{BaselineRate: 10, DataVersion: "test", Disclaimer: "advisory"},
		logging.NewNopLogger(), nil)
	return newConditionalDetector(repo, dutySvc, logging.NewNopLogger())
}

func TestDetectBuildsValueQuestion(t *testing.T) {
	repo := jewelryCatalog()
	d := newTestDetector(repo)

	primary, err := repo.GetByCode(context.Background(), "71179045")
	require.NoError(t, err)
	result, err := d.detect(context.Background(), primary, 0, "DE", 5)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Questions, 1)

	q := result.Questions[0]
	assert.Contains(t, q.Question, "$5")
	require.Len(t, q.Options, 2)
	assert.NotEqual(t, q.Options[0].Code, q.Options[1].Code,
		"question branches must resolve to distinct codes")
	assert.Equal(t, "71179045", q.Options[0].Code)
	assert.Equal(t, "71179055", q.Options[1].Code)
}

func TestDetectQuestionNamesPairedThreshold(t *testing.T) {
	// The low branch carries two gates but only the size gate has a
	// counterpart sibling; the question must name that boundary, not the
	// first gate in the description.
	repo := newFakeCatalog(
		&catalog.CodeEntry{Code: "81", Description: "Other base metals; articles thereof"},
		&catalog.CodeEntry{Code: "8101", Description: "Tungsten and articles thereof:"},
		&catalog.CodeEntry{Code: "810199", Description: "Other:"},
		&catalog.CodeEntry{Code: "81019910", Description: "Bars and rods, valued not over $10 each, of a maximum dimension not over 3 cm", BaseRate: "4.4%"},
		&catalog.CodeEntry{Code: "81019920", Description: "Bars and rods, of a maximum dimension over 3 cm", BaseRate: "Free"},
	)
	d := newTestDetector(repo)

	primary, err := repo.GetByCode(context.Background(), "81019910")
	require.NoError(t, err)
	result, err := d.detect(context.Background(), primary, 0, "DE", 5)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Questions, 1)

	q := result.Questions[0]
	assert.Contains(t, q.Question, "3 cm")
	assert.NotContains(t, q.Question, "$10",
		"the unpaired value gate must not supply the question boundary")
	require.Len(t, q.Options, 2)
	assert.Equal(t, "81019910", q.Options[0].Code)
	assert.Equal(t, "81019920", q.Options[1].Code)
}

func TestDetectDiscardsSameCodeQuestion(t *testing.T) {
	// Both branches of the $5 gate live in the same tariff line: useless.
	repo := newFakeCatalog(
		&catalog.CodeEntry{Code: "71", Description: "Imitation jewelry and related articles"},
		&catalog.CodeEntry{Code: "7117", Description: "Imitation jewelry:"},
		&catalog.CodeEntry{Code: "711790", Description: "Other:"},
		&catalog.CodeEntry{Code: "7117904510", Description: "Valued not over $5 per dozen"},
		&catalog.CodeEntry{Code: "7117904520", Description: "Valued over $5 per dozen"},
	)
	d := newTestDetector(repo)

	primary, err := repo.GetByCode(context.Background(), "7117904510")
	require.NoError(t, err)
	result, err := d.detect(context.Background(), primary, 0, "", 5)
	require.NoError(t, err)
	if result != nil {
		assert.Empty(t, result.Questions)
	}
}

func TestDetectAlternativesCarryDutyDelta(t *testing.T) {
	repo := jewelryCatalog()
	d := newTestDetector(repo)

	primary, err := repo.GetByCode(context.Background(), "71179045")
	require.NoError(t, err)

	// Primary total for DE: base 0 + baseline 10 = 10.
	result, err := d.detect(context.Background(), primary, 10, "DE", 5)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Alternatives, 1)

	alt := result.Alternatives[0]
	assert.Equal(t, "71179055", alt.Code)
	require.NotNil(t, alt.DutyDelta)
	// Sibling: base 11 + baseline 10 = 21; delta = +11.
	assert.InDelta(t, 11.0, *alt.DutyDelta, 1e-9)
}

func TestDetectNothingForShallowCodes(t *testing.T) {
	repo := jewelryCatalog()
	d := newTestDetector(repo)
	primary, err := repo.GetByCode(context.Background(), "7117")
	require.NoError(t, err)
	result, err := d.detect(context.Background(), primary, 0, "", 5)
	require.NoError(t, err)
	assert.Nil(t, result)
}
