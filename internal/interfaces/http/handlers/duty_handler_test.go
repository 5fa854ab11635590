package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearfreight/tariffscope/internal/application/duty"
	"github.com/clearfreight/tariffscope/internal/domain/catalog"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
)

func dutyRouter(f *fakeDuty, repo *mapCatalog) *gin.Engine {
	r := gin.New()
	h := NewDutyHandler(f, repo, logging.NewNopLogger())
	r.POST("/api/v1/duty", h.Calculate)
	return r
}

func TestDutyPassesExplicitBaseRate(t *testing.T) {
	fake := &fakeDuty{breakdown: &duty.Breakdown{Code: "61091000", TotalRate: 36.5}}
	r := dutyRouter(fake, &mapCatalog{})

	recorder := performJSON(t, r, http.MethodPost, "/api/v1/duty", DutyRequest{
		Code:            "6109.10.00",
		BaseRate:        "16.5%",
		CountryOfOrigin: "CN",
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "16.5%", fake.last.BaseRate)

	body := decodeBody[duty.Breakdown](t, recorder)
	assert.InDelta(t, 36.5, body.TotalRate, 1e-9)
}

func TestDutyResolvesBaseRateFromCatalog(t *testing.T) {
	repo := &mapCatalog{entries: map[string]*catalog.CodeEntry{
		"61091000": {Code: "61091000", Level: catalog.LevelTariffLine, BaseRate: "16.5%"},
	}}
	fake := &fakeDuty{breakdown: &duty.Breakdown{Code: "61091000"}}
	r := dutyRouter(fake, repo)

	recorder := performJSON(t, r, http.MethodPost, "/api/v1/duty", DutyRequest{Code: "61091000"})
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "16.5%", fake.last.BaseRate)
}

func TestDutyStatisticalCodeInheritsParentRate(t *testing.T) {
	repo := &mapCatalog{entries: map[string]*catalog.CodeEntry{
		"6109100012": {Code: "6109100012", Level: catalog.LevelStatistical},
		"61091000":   {Code: "61091000", Level: catalog.LevelTariffLine, BaseRate: "16.5%"},
	}}
	fake := &fakeDuty{breakdown: &duty.Breakdown{Code: "6109100012"}}
	r := dutyRouter(fake, repo)

	recorder := performJSON(t, r, http.MethodPost, "/api/v1/duty", DutyRequest{Code: "6109.10.00.12"})
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "16.5%", fake.last.BaseRate)
}

func TestDutyUnknownCodeIs404(t *testing.T) {
	fake := &fakeDuty{}
	r := dutyRouter(fake, &mapCatalog{})

	recorder := performJSON(t, r, http.MethodPost, "/api/v1/duty", DutyRequest{Code: "99999999"})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Nil(t, fake.last)
}

func TestDutyMissingCodeIsBadRequest(t *testing.T) {
	r := dutyRouter(&fakeDuty{}, &mapCatalog{})

	recorder := performJSON(t, r, http.MethodPost, "/api/v1/duty", map[string]string{"countryOfOrigin": "CN"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
