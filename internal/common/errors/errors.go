// Package errors provides standardized error handling for BPMN workflow integration
// and the HTTP API.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidInput             ErrorCode = "INVALID_INPUT"
	ErrCodeFeedbackValidationFailed ErrorCode = "FEEDBACK_VALIDATION_FAILED"

	ErrCodeRFQNotFound    ErrorCode = "RFQ_NOT_FOUND"
	ErrCodeRFQFetchFailed ErrorCode = "RFQ_FETCH_FAILED"

	ErrCodeSupplierFetchFailed ErrorCode = "SUPPLIER_FETCH_FAILED"
	ErrCodeSearchQueryFailed   ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeMatchGenerationFailed       ErrorCode = "MATCH_GENERATION_FAILED"
	ErrCodeRecommendationPersistFailed ErrorCode = "RECOMMENDATION_PERSIST_FAILED"
	ErrCodeRecommendationFetchFailed   ErrorCode = "RECOMMENDATION_FETCH_FAILED"
	ErrCodeFeedbackPersistFailed       ErrorCode = "FEEDBACK_PERSIST_FAILED"
	ErrCodeNotificationSendFailed      ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeDatabaseConnectionFailed    ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryTimeout                ErrorCode = "QUERY_TIMEOUT"
	ErrCodeExternalService             ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout                     ErrorCode = "TIMEOUT_ERROR"
	ErrCodeResourceNotFound            ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeBusinessRule                ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeAuthentication              ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeInternal                    ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// AsStandardError finds a StandardError anywhere in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
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

// NewInvalidInputError creates a non-retryable input error.
func NewInvalidInputError(details string) *StandardError {
	e := newError(ErrCodeInvalidInput, "Invalid input", nil, false)
	e.Details = details
	return e
}

// NewFeedbackValidationError creates a non-retryable feedback validation error.
func NewFeedbackValidationError(err error) *StandardError {
	return newError(ErrCodeFeedbackValidationFailed, "Feedback validation failed", err, false)
}

// NewRFQNotFoundError creates a non-retryable missing RFQ error.
func NewRFQNotFoundError(rfqID int64) *StandardError {
	e := newError(ErrCodeRFQNotFound, "RFQ not found", nil, false)
	e.Details = fmt.Sprintf("rfqId: %d", rfqID)
	return e.WithMetadata("rfqId", rfqID)
}

// NewRFQFetchFailedError creates a retryable RFQ lookup error.
func NewRFQFetchFailedError(rfqID int64, err error) *StandardError {
	return newError(ErrCodeRFQFetchFailed, "Failed to load RFQ", err, true).WithMetadata("rfqId", rfqID)
}

// NewSupplierFetchFailedError creates a retryable supplier lookup error.
func NewSupplierFetchFailedError(err error) *StandardError {
	return newError(ErrCodeSupplierFetchFailed, "Failed to load candidate suppliers", err, true)
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error", err, true).WithMetadata("index", index)
}

// NewMatchGenerationFailedError wraps any failure while generating matches.
func NewMatchGenerationFailedError(rfqID int64, err error) *StandardError {
	return newError(ErrCodeMatchGenerationFailed, "failed to generate matches", err, true).WithMetadata("rfqId", rfqID)
}

// NewRecommendationPersistFailedError creates a retryable persistence error.
func NewRecommendationPersistFailedError(rfqID int64, err error) *StandardError {
	return newError(ErrCodeRecommendationPersistFailed, "Failed to store recommendations", err, true).WithMetadata("rfqId", rfqID)
}

// NewRecommendationFetchFailedError creates a retryable read error.
func NewRecommendationFetchFailedError(rfqID int64, err error) *StandardError {
	return newError(ErrCodeRecommendationFetchFailed, "Failed to load recommendations", err, true).WithMetadata("rfqId", rfqID)
}

// NewFeedbackPersistFailedError creates a retryable feedback insert error.
func NewFeedbackPersistFailedError(err error) *StandardError {
	return newError(ErrCodeFeedbackPersistFailed, "Failed to record feedback", err, true)
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	e := newError(ErrCodeNotificationSendFailed, "Notification delivery failed", err, true)
	e.Details = fmt.Sprintf("type: %s, error: %s", notificationType, e.Details)
	return e
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err, true)
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	e := newError(ErrCodeQueryTimeout, "Database query timeout", nil, true)
	e.Details = fmt.Sprintf("queryType: %s", queryType)
	return e
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	e := newError(ErrCodeBusinessRule, message, nil, false)
	e.Details = details
	return e
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err, true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err, true)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	e := newError(ErrCodeResourceNotFound, fmt.Sprintf("Resource not found in %s", service), nil, false)
	e.Details = details
	return e
}

func NewAuthenticationError(details string) *StandardError {
	e := newError(ErrCodeAuthentication, "Authentication failed", nil, false)
	e.Details = details
	return e
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the error codes modelled on
// boundary events. Codes without an entry are passed through unchanged.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:                "INVALID_INPUT",
	ErrCodeFeedbackValidationFailed:    "FEEDBACK_VALIDATION_FAILED",
	ErrCodeRFQNotFound:                 "RFQ_NOT_FOUND",
	ErrCodeRFQFetchFailed:              "RFQ_FETCH_FAILED",
	ErrCodeSupplierFetchFailed:         "SUPPLIER_FETCH_FAILED",
	ErrCodeSearchQueryFailed:           "SEARCH_QUERY_FAILED",
	ErrCodeMatchGenerationFailed:       "MATCH_GENERATION_FAILED",
	ErrCodeRecommendationPersistFailed: "RECOMMENDATION_PERSIST_FAILED",
	ErrCodeRecommendationFetchFailed:   "RECOMMENDATION_FETCH_FAILED",
	ErrCodeFeedbackPersistFailed:       "FEEDBACK_PERSIST_FAILED",
	ErrCodeNotificationSendFailed:      "NOTIFICATION_SEND_FAILED",
	ErrCodeDatabaseConnectionFailed:    "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryTimeout:                "QUERY_TIMEOUT",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeRFQFetchFailed,
		ErrCodeSupplierFetchFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeMatchGenerationFailed,
		ErrCodeRecommendationPersistFailed,
		ErrCodeRecommendationFetchFailed,
		ErrCodeFeedbackPersistFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeTimeout:
		return 2

	default:
		return 0
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

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") ||
		strings.Contains(codeStr, "PERSIST") || strings.Contains(codeStr, "FETCH"):
		return "DATABASE"
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "NOT_FOUND"
	case strings.Contains(codeStr, "MATCH"):
		return "MATCHING"
	default:
		return "OTHER"
	}
}

// HTTPStatus maps an error code onto the status the API responds with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeFeedbackValidationFailed:
		return http.StatusBadRequest
	case ErrCodeRFQNotFound, ErrCodeResourceNotFound:
		return http.StatusNotFound
	case ErrCodeAuthentication:
		return http.StatusUnauthorized
	case ErrCodeBusinessRule:
		return http.StatusUnprocessableEntity
	case ErrCodeQueryTimeout, ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		if IsRetryableErrorCode(code) {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	}
}
