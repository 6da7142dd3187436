// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Input / validation
	ErrCodeInvalidInput           ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidWeights         ErrorCode = "INVALID_WEIGHTS"
	ErrCodeInvalidFilterFormat    ErrorCode = "INVALID_FILTER_FORMAT"
	ErrCodeSchemaValidationFailed ErrorCode = "SCHEMA_VALIDATION_FAILED"
	ErrCodeRequestNotMatchable    ErrorCode = "REQUEST_NOT_MATCHABLE"
	ErrCodeWalkerAlreadyAssigned  ErrorCode = "WALKER_ALREADY_ASSIGNED"
	ErrCodeDogNotFound            ErrorCode = "DOG_NOT_FOUND"
	ErrCodeNoDogsForOwner         ErrorCode = "NO_DOGS_FOR_OWNER"
	ErrCodeResourceNotFound       ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeBusinessRuleViolation  ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeAuthentication         ErrorCode = "AUTHENTICATION_ERROR"

	// Storage / infrastructure
	ErrCodeWalkerPoolLoadFailed    ErrorCode = "WALKER_POOL_LOAD_FAILED"
	ErrCodeWalkRequestUpdateFailed ErrorCode = "WALK_REQUEST_UPDATE_FAILED"
	ErrCodeQueryExecutionFailed    ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeSearchQueryFailed       ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeExternalService         ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout                 ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal                ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is matches any *StandardError carrying the same code, so callers can write
// errors.Is(err, &StandardError{Code: ErrCodeDogNotFound}).
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata returns the error with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError reports malformed data (bad coordinate, negative rate,
// unknown enum value). Never retryable: the same input fails the same way.
func NewInvalidInputError(entity, details string) *StandardError {
	return newError(ErrCodeInvalidInput, fmt.Sprintf("Invalid %s", entity), details, false)
}

// NewInvalidWeightsError reports an unusable factor weight table.
func NewInvalidWeightsError(details string) *StandardError {
	return newError(ErrCodeInvalidWeights, "Invalid factor weights", details, false)
}

// NewInvalidFilterFormatError creates a non-retryable filter format error.
func NewInvalidFilterFormatError(details string) *StandardError {
	return newError(ErrCodeInvalidFilterFormat, "Invalid filter format", details, false)
}

// NewSchemaValidationFailedError reports job variables rejected by the activity schema.
func NewSchemaValidationFailedError(taskType, details string) *StandardError {
	return newError(ErrCodeSchemaValidationFailed,
		fmt.Sprintf("Input for %s failed schema validation", taskType), details, false)
}

// NewRequestNotMatchableError is returned when a walk request is not pending or accepted.
func NewRequestNotMatchableError(requestID, status string) *StandardError {
	return newError(ErrCodeRequestNotMatchable, "Walk request cannot be matched",
		fmt.Sprintf("requestId: %s, status: %s", requestID, status), false)
}

// NewWalkerAlreadyAssignedError is returned when assigning a walker to a request that is no longer pending.
func NewWalkerAlreadyAssignedError(requestID, status string) *StandardError {
	return newError(ErrCodeWalkerAlreadyAssigned, "Walk request is not awaiting a walker",
		fmt.Sprintf("requestId: %s, status: %s", requestID, status), false)
}

func NewDogNotFoundError(ownerID, dogID string) *StandardError {
	return newError(ErrCodeDogNotFound, "Dog not found for owner",
		fmt.Sprintf("ownerId: %s, dogId: %s", ownerID, dogID), false)
}

func NewNoDogsForOwnerError(ownerID string) *StandardError {
	return newError(ErrCodeNoDogsForOwner, "Owner has no registered dogs",
		fmt.Sprintf("ownerId: %s", ownerID), false)
}

// NewWalkerPoolLoadFailedError creates a retryable candidate pool load error.
func NewWalkerPoolLoadFailedError(err error) *StandardError {
	return newError(ErrCodeWalkerPoolLoadFailed, "Failed to load walker pool", err.Error(), true)
}

// NewWalkRequestUpdateFailedError creates a retryable walk request write error.
func NewWalkRequestUpdateFailedError(requestID string, err error) *StandardError {
	return newError(ErrCodeWalkRequestUpdateFailed, "Failed to update walk request",
		fmt.Sprintf("requestId: %s, error: %s", requestID, err.Error()), true)
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(query string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("query: %s, error: %s", query, err.Error()), true)
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error",
		fmt.Sprintf("index: %s, error: %s", index, err.Error()), true)
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return newError(ErrCodeBusinessRuleViolation, message, details, false)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError(ErrCodeResourceNotFound, fmt.Sprintf("Resource not found in %s", service), details, false)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthentication, "Authentication failed", details, false)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the error codes caught by
// boundary events in the walk-matching process models.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:            "INVALID_INPUT",
	ErrCodeInvalidWeights:          "INVALID_INPUT",
	ErrCodeInvalidFilterFormat:     "INVALID_INPUT",
	ErrCodeSchemaValidationFailed:  "INVALID_INPUT",
	ErrCodeRequestNotMatchable:     "REQUEST_NOT_MATCHABLE",
	ErrCodeWalkerAlreadyAssigned:   "REQUEST_NOT_MATCHABLE",
	ErrCodeDogNotFound:             "DOG_NOT_FOUND",
	ErrCodeNoDogsForOwner:          "DOG_NOT_FOUND",
	ErrCodeResourceNotFound:        "RESOURCE_NOT_FOUND",
	ErrCodeWalkerPoolLoadFailed:    "MATCHING_UNAVAILABLE",
	ErrCodeWalkRequestUpdateFailed: "WALK_REQUEST_UPDATE_FAILED",
	ErrCodeQueryExecutionFailed:    "MATCHING_UNAVAILABLE",
	ErrCodeSearchQueryFailed:       "MATCHING_UNAVAILABLE",
	ErrCodeExternalService:         "MATCHING_UNAVAILABLE",
	ErrCodeTimeout:                 "MATCHING_TIMEOUT",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeWalkerPoolLoadFailed,
		ErrCodeWalkRequestUpdateFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeTimeout:
		return 2

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError unwraps err to a *StandardError if one is in its chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "POOL") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "UPDATE"):
		return "DATABASE"
	case strings.Contains(codeStr, "DOG") || strings.Contains(codeStr, "REQUEST") ||
		strings.Contains(codeStr, "WALKER_ALREADY") || strings.Contains(codeStr, "BUSINESS"):
		return "BUSINESS"
	case strings.Contains(codeStr, "TIMEOUT") || strings.Contains(codeStr, "EXTERNAL"):
		return "INFRASTRUCTURE"
	default:
		return "OTHER"
	}
}
