package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearfreight/tariffscope/internal/application/classification"
	"github.com/clearfreight/tariffscope/internal/infrastructure/monitoring/logging"
	"github.com/clearfreight/tariffscope/pkg/errors"
)

func classifyRouter(f *fakeClassifier) *gin.Engine {
	r := gin.New()
	h := NewClassifyHandler(f, logging.NewNopLogger())
	r.POST("/api/v1/classify", h.Classify)
	return r
}

func TestClassifyReturnsResult(t *testing.T) {
	fake := &fakeClassifier{result: &classification.Result{
		Success: true,
		Primary: &classification.Match{
			Code:        "61091000",
			DisplayCode: "6109.10.00",
			Confidence:  85,
		},
		Alternatives: []*classification.Alternative{},
	}}
	r := classifyRouter(fake)

	recorder := performJSON(t, r, http.MethodPost, "/api/v1/classify",
		classification.Input{Description: "cotton t-shirt", CountryOfOrigin: "CN"})
	require.Equal(t, http.StatusOK, recorder.Code)

	result := decodeBody[classification.Result](t, recorder)
	assert.True(t, result.Success)
	assert.Equal(t, "6109.10.00", result.Primary.DisplayCode)
	assert.Equal(t, "CN", fake.last.CountryOfOrigin)
}

func TestClassifyOmitsTraceByDefault(t *testing.T) {
	fake := &fakeClassifier{result: &classification.Result{
		Success: true,
		Trace:   &classification.Trace{Tokens: []string{"cotton"}},
	}}
	r := classifyRouter(fake)

	recorder := performJSON(t, r, http.MethodPost, "/api/v1/classify",
		classification.Input{Description: "cotton t-shirt"})
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), `"trace"`)
}

func TestClassifyIncludesTraceOnRequest(t *testing.T) {
	fake := &fakeClassifier{result: &classification.Result{
		Success: true,
		Trace:   &classification.Trace{Tokens: []string{"cotton"}},
	}}
	r := classifyRouter(fake)

	recorder := performJSON(t, r, http.MethodPost, "/api/v1/classify?trace=true",
		classification.Input{Description: "cotton t-shirt"})
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"trace"`)
}

func TestClassifyEmptyDescriptionIsBadRequest(t *testing.T) {
	fake := &fakeClassifier{err: errors.New(errors.ErrCodeEmptyDescription, "description is required")}
	r := classifyRouter(fake)

	recorder := performJSON(t, r, http.MethodPost, "/api/v1/classify",
		classification.Input{Description: "   "})
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	body := decodeBody[ErrorResponse](t, recorder)
	assert.Equal(t, string(errors.ErrCodeEmptyDescription), body.Code)
	assert.Equal(t, "description is required", body.Message)
}

func TestClassifyMalformedBody(t *testing.T) {
	r := classifyRouter(&fakeClassifier{})

	recorder := performJSON(t, r, http.MethodPost, "/api/v1/classify", "not an object")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestClassifyInternalErrorIsMasked(t *testing.T) {
	fake := &fakeClassifier{err: errors.Wrap(assert.AnError, errors.ErrCodeKeywordSearchFailed, "keyword search failed")}
	r := classifyRouter(fake)

	recorder := performJSON(t, r, http.MethodPost, "/api/v1/classify",
		classification.Input{Description: "cotton t-shirt"})
	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	body := decodeBody[ErrorResponse](t, recorder)
	assert.Equal(t, "internal server error", body.Message)
	assert.Empty(t, body.Detail)
}
