package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeUnitNotConfigured is used when a secondary unit is requested but not set up
	ErrCodeUnitNotConfigured = "ERR_UNIT_NOT_CONFIGURED"
	// ErrCodeStockNotTracked is used when a stock operation targets an untracked product
	ErrCodeStockNotTracked = "ERR_STOCK_NOT_TRACKED"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeValidationFormat: http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,
	ErrCodeUnitNotConfigured: http.StatusUnprocessableEntity,
	ErrCodeStockNotTracked:   http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the standardized API codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"DUPLICATE_CODE":       ErrCodeAlreadyExists,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNIT_NOT_CONFIGURED":  ErrCodeUnitNotConfigured,
	"STOCK_NOT_TRACKED":    ErrCodeStockNotTracked,
	"SELF_TRANSFER":        ErrCodeBusinessRule,
	"SELF_REFERENCE":       ErrCodeBusinessRule,
	"FORMULA_CYCLE":        ErrCodeBusinessRule,

	"INVALID_INPUT":           ErrCodeInvalidInput,
	"INVALID_QUANTITY":        ErrCodeInvalidInput,
	"INVALID_DIRECTION":       ErrCodeInvalidInput,
	"INVALID_ENTRY_TYPE":      ErrCodeInvalidInput,
	"INVALID_DATE":            ErrCodeInvalidInput,
	"INVALID_TENANT":          ErrCodeInvalidInput,
	"INVALID_PRODUCT":         ErrCodeInvalidInput,
	"INVALID_SOURCE":          ErrCodeInvalidInput,
	"INVALID_UNIT_MODE":       ErrCodeInvalidInput,
	"INVALID_CODE":            ErrCodeInvalidInput,
	"INVALID_NAME":            ErrCodeInvalidInput,
	"INVALID_UNIT":            ErrCodeInvalidInput,
	"INVALID_SECONDARY_UNIT":  ErrCodeInvalidInput,
	"INVALID_CONVERSION_RATE": ErrCodeInvalidInput,
	"INVALID_BATCH_SIZE":      ErrCodeInvalidInput,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
