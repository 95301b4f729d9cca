package errors

import "net/http"

// ErrorCode is a string identifier for a specific failure category.  Codes are
// stable across releases so that callers and dashboards can key off them.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by every layer.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeValidation         ErrorCode = "COMMON_006"
	ErrCodeSerialization      ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeNotImplemented     ErrorCode = "COMMON_009"
)

// Resolution module error codes.
const (
	ErrCodeResolutionConfig  ErrorCode = "RES_001" // invalid scorer weights, thresholds, blocklists
	ErrCodeLookupUnavailable ErrorCode = "RES_002" // registry could not be loaded
)

// Decision module error codes.
const (
	ErrCodePolicyUnknownType ErrorCode = "DEC_001" // relationship type missing from policy table
	ErrCodePolicyInvalid     ErrorCode = "DEC_002" // malformed threshold pair
)

// Infrastructure error codes.
const (
	ErrCodeGraphError      ErrorCode = "INFRA_001" // Neo4j query or connectivity failure
	ErrCodeCacheError      ErrorCode = "INFRA_002" // Redis failure
	ErrCodeVectorStore     ErrorCode = "INFRA_003" // Milvus failure
	ErrCodeEmbeddingError  ErrorCode = "INFRA_004" // embedding provider failure
	ErrCodeVerifierError   ErrorCode = "INFRA_005" // LLM verifier failure
	ErrCodeExternalService ErrorCode = "INFRA_006"
)

// HTTPStatus maps an ErrorCode to the HTTP status the API layer should emit.
// Unknown codes map to 500.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeResolutionConfig, ErrCodePolicyInvalid, ErrCodePolicyUnknownType:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeServiceUnavailable, ErrCodeLookupUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
