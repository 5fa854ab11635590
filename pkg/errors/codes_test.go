package errors

import (
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeHTSCodeNotFound, http.StatusNotFound},
		{ErrCodeHTSCodeInvalid, http.StatusBadRequest},
		{ErrCodeValidation, http.StatusUnprocessableEntity},
		{ErrCodeCountryProfileNotFound, http.StatusNotFound},
		{ErrCodeSemanticSearchUnavailable, http.StatusServiceUnavailable},
		{ErrCodeTimeout, http.StatusGatewayTimeout},
		{ErrorCode("NO_SUCH_CODE"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestNoCandidatesIsInBand(t *testing.T) {
	// NoCandidates is reported as success:false with HTTP 200, never as an
	// HTTP-level failure.
	if ErrCodeNoCandidates.HTTPStatus() != http.StatusOK {
		t.Error("CLS_002 must map to 200")
	}
}

func TestErrorCodeString(t *testing.T) {
	if ErrCodeRateUnparseable.String() != "TAR_001" {
		t.Errorf("unexpected string: %s", ErrCodeRateUnparseable.String())
	}
}
