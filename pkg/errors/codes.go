package errors

import "net/http"

// ErrorCode is a string identifier for a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared across modules.
const (
	ErrCodeOK                 ErrorCode = "OK"
	ErrCodeUnknown            ErrorCode = "COMMON_000"
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeValidation         ErrorCode = "COMMON_008"
	ErrCodeSerialization      ErrorCode = "COMMON_009"
	ErrCodeDatabaseError      ErrorCode = "COMMON_010"
	ErrCodeCacheError         ErrorCode = "COMMON_011"
	ErrCodeExternalService    ErrorCode = "COMMON_012"
)

// Catalog module error codes.
const (
	ErrCodeHTSCodeNotFound    ErrorCode = "CAT_001"
	ErrCodeHTSCodeInvalid     ErrorCode = "CAT_002"
	ErrCodeCatalogUnavailable ErrorCode = "CAT_003"
	ErrCodeAncestryInvalid    ErrorCode = "CAT_004"
)

// Classification module error codes.
const (
	ErrCodeEmptyDescription ErrorCode = "CLS_001"
	ErrCodeNoCandidates     ErrorCode = "CLS_002"
	ErrCodeUnknownAnswer    ErrorCode = "CLS_003"
)

// Search collaborator error codes.
const (
	ErrCodeSemanticSearchUnavailable ErrorCode = "SRCH_001"
	ErrCodeKeywordSearchFailed       ErrorCode = "SRCH_002"
	ErrCodeIndexingFailed            ErrorCode = "SRCH_003"
	ErrCodeEmbeddingFailed           ErrorCode = "SRCH_004"
)

// Tariff module error codes.
const (
	ErrCodeRateUnparseable        ErrorCode = "TAR_001"
	ErrCodeCountryProfileNotFound ErrorCode = "TAR_002"
	ErrCodeProgramDataUnavailable ErrorCode = "TAR_003"
)

// LLM collaborator error codes.
const (
	ErrCodeModelUnavailable     ErrorCode = "AI_001"
	ErrCodeInferenceFailed      ErrorCode = "AI_002"
	ErrCodeModelResponseInvalid ErrorCode = "AI_003"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.  The HTTP layer
// consults this table when translating an AppError into a response; codes
// without an entry fall back to 500.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,

	ErrCodeHTSCodeNotFound:    http.StatusNotFound,
	ErrCodeHTSCodeInvalid:     http.StatusBadRequest,
	ErrCodeCatalogUnavailable: http.StatusServiceUnavailable,
	ErrCodeAncestryInvalid:    http.StatusInternalServerError,

	ErrCodeEmptyDescription: http.StatusBadRequest,
	ErrCodeNoCandidates:     http.StatusOK, // reported in-band as success:false
	ErrCodeUnknownAnswer:    http.StatusBadRequest,

	ErrCodeSemanticSearchUnavailable: http.StatusServiceUnavailable,
	ErrCodeKeywordSearchFailed:       http.StatusInternalServerError,
	ErrCodeIndexingFailed:            http.StatusInternalServerError,
	ErrCodeEmbeddingFailed:           http.StatusInternalServerError,

	ErrCodeRateUnparseable:        http.StatusInternalServerError,
	ErrCodeCountryProfileNotFound: http.StatusNotFound,
	ErrCodeProgramDataUnavailable: http.StatusServiceUnavailable,

	ErrCodeModelUnavailable:     http.StatusServiceUnavailable,
	ErrCodeInferenceFailed:      http.StatusInternalServerError,
	ErrCodeModelResponseInvalid: http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status for the code, defaulting to 500.
func (c ErrorCode) HTTPStatus() int {
	if s, ok := ErrorCodeHTTPStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}
