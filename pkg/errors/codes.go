package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeNotImplemented     ErrorCode = "COMMON_015"
)

// Short aliases used throughout the codebase.
const (
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeUnauthorized   = ErrCodeUnauthorized
	CodeForbidden      = ErrCodeForbidden
	CodeNotFound       = ErrCodeNotFound
	CodeConflict       = ErrCodeConflict
	CodeRateLimit      = ErrCodeTooManyRequests
	CodeNotImplemented = ErrCodeNotImplemented
	CodeOK             = ErrorCode("OK")
	CodeUnknown        = ErrorCode("UNKNOWN")

	CodePatentNotFound = ErrCodePatentNotFound
)

// Patent Module Error Codes
const (
	ErrCodePatentNotFound      ErrorCode = "PAT_001"
	ErrCodePatentAlreadyExists ErrorCode = "PAT_002"
	ErrCodePatentNumberInvalid ErrorCode = "PAT_003"
	ErrCodePatentDateInvalid   ErrorCode = "PAT_004"
	ErrCodePatentStatusInvalid ErrorCode = "PAT_005"
	ErrCodeCPCCodeInvalid      ErrorCode = "PAT_006"
	ErrCodePatentNoDates       ErrorCode = "PAT_007"
)

// Search Module Error Codes
const (
	ErrCodeSearchQueryEmpty      ErrorCode = "SRCH_001"
	ErrCodeSearchFailed          ErrorCode = "SRCH_002"
	ErrCodeEmbeddingFailed       ErrorCode = "SRCH_003"
	ErrCodeFulltextUnavailable   ErrorCode = "SRCH_004"
	ErrCodeVectorUnavailable     ErrorCode = "SRCH_005"
	ErrCodeSearchModeUnsupported ErrorCode = "SRCH_006"
)

// Analytics Module Error Codes
const (
	ErrCodeAnalyticsQueryFailed  ErrorCode = "ANL_001"
	ErrCodeCPCLevelInvalid       ErrorCode = "ANL_002"
	ErrCodeSectionUnknown        ErrorCode = "ANL_003"
	ErrCodeInsufficientCohort    ErrorCode = "ANL_004"
	ErrCodeReportArchiveFailed   ErrorCode = "ANL_005"
	ErrCodeDateRangeInvalid      ErrorCode = "ANL_006"
)

// Citation Module Error Codes
const (
	ErrCodeCitationGraphFailed  ErrorCode = "CIT_001"
	ErrCodeCitationDepthInvalid ErrorCode = "CIT_002"
	ErrCodeCitationRootNotFound ErrorCode = "CIT_003"
)

// Lifecycle Module Error Codes
const (
	ErrCodeLifecycleQueryFailed ErrorCode = "LC_001"
	ErrCodeFeeYearInvalid       ErrorCode = "LC_002"
	ErrCodeEventPublishFailed   ErrorCode = "LC_003"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodePatentNotFound:      http.StatusNotFound,
	ErrCodePatentAlreadyExists: http.StatusConflict,
	ErrCodePatentNumberInvalid: http.StatusBadRequest,
	ErrCodePatentDateInvalid:   http.StatusBadRequest,
	ErrCodePatentStatusInvalid: http.StatusBadRequest,
	ErrCodeCPCCodeInvalid:      http.StatusBadRequest,
	ErrCodePatentNoDates:       http.StatusUnprocessableEntity,

	ErrCodeSearchQueryEmpty:      http.StatusBadRequest,
	ErrCodeSearchFailed:          http.StatusInternalServerError,
	ErrCodeEmbeddingFailed:       http.StatusInternalServerError,
	ErrCodeFulltextUnavailable:   http.StatusServiceUnavailable,
	ErrCodeVectorUnavailable:     http.StatusServiceUnavailable,
	ErrCodeSearchModeUnsupported: http.StatusBadRequest,

	ErrCodeAnalyticsQueryFailed: http.StatusInternalServerError,
	ErrCodeCPCLevelInvalid:      http.StatusBadRequest,
	ErrCodeSectionUnknown:       http.StatusBadRequest,
	ErrCodeInsufficientCohort:   http.StatusUnprocessableEntity,
	ErrCodeReportArchiveFailed:  http.StatusInternalServerError,
	ErrCodeDateRangeInvalid:     http.StatusBadRequest,

	ErrCodeCitationGraphFailed:  http.StatusInternalServerError,
	ErrCodeCitationDepthInvalid: http.StatusBadRequest,
	ErrCodeCitationRootNotFound: http.StatusNotFound,

	ErrCodeLifecycleQueryFailed: http.StatusInternalServerError,
	ErrCodeFeeYearInvalid:       http.StatusBadRequest,
	ErrCodeEventPublishFailed:   http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodePatentNotFound:      "patent not found",
	ErrCodePatentAlreadyExists: "patent already exists",
	ErrCodePatentNumberInvalid: "invalid patent number",
	ErrCodePatentDateInvalid:   "invalid patent date",
	ErrCodePatentStatusInvalid: "invalid patent status",
	ErrCodeCPCCodeInvalid:      "invalid CPC code",
	ErrCodePatentNoDates:       "patent has neither grant nor filing date",

	ErrCodeSearchQueryEmpty:      "search query must not be empty",
	ErrCodeSearchFailed:          "search failed",
	ErrCodeEmbeddingFailed:       "failed to embed query text",
	ErrCodeFulltextUnavailable:   "full-text index unavailable",
	ErrCodeVectorUnavailable:     "vector index unavailable",
	ErrCodeSearchModeUnsupported: "unsupported search mode",

	ErrCodeAnalyticsQueryFailed: "analytics query failed",
	ErrCodeCPCLevelInvalid:      "invalid CPC aggregation level",
	ErrCodeSectionUnknown:       "unknown CPC section",
	ErrCodeInsufficientCohort:   "insufficient patents in cohort",
	ErrCodeReportArchiveFailed:  "failed to archive analytics report",
	ErrCodeDateRangeInvalid:     "invalid date range",

	ErrCodeCitationGraphFailed:  "citation graph traversal failed",
	ErrCodeCitationDepthInvalid: "invalid citation traversal depth",
	ErrCodeCitationRootNotFound: "root patent not found in citation graph",

	ErrCodeLifecycleQueryFailed: "lifecycle query failed",
	ErrCodeFeeYearInvalid:       "invalid maintenance fee year",
	ErrCodeEventPublishFailed:   "failed to publish lifecycle event",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
