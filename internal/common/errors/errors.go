// Package errors provides standardized error handling for the assistant pipeline
// and its BPMN workflow integration.
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

// Request errors: the question was understood badly or lacks criteria.
const (
	ErrCodeInvalidQuestion      ErrorCode = "INVALID_QUESTION"
	ErrCodeUnsupportedIntent    ErrorCode = "UNSUPPORTED_INTENT"
	ErrCodeMissingEntity        ErrorCode = "MISSING_ENTITY"
	ErrCodeInsufficientCriteria ErrorCode = "INSUFFICIENT_CRITERIA"
)

// Technical errors from the collaborators.
const (
	ErrCodeNLUUnavailable     ErrorCode = "NLU_UNAVAILABLE"
	ErrCodeNLUTimeout         ErrorCode = "NLU_TIMEOUT"
	ErrCodeNLUInvalidResponse ErrorCode = "NLU_INVALID_RESPONSE"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeChatDeliveryFailed ErrorCode = "CHAT_DELIVERY_FAILED"
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

// NewInvalidQuestionError is returned for blank or oversized questions.
func NewInvalidQuestionError(details string) *StandardError {
	return newError(ErrCodeInvalidQuestion, "Invalid question", details, false)
}

// NewUnsupportedIntentError reports an intent outside the supported set.
func NewUnsupportedIntentError(intent string) *StandardError {
	err := newError(ErrCodeUnsupportedIntent, "Unsupported intent", fmt.Sprintf("Неизвестный интент: %s", intent), false)
	err.Metadata = map[string]interface{}{"intent": intent}
	return err
}

// NewMissingEntityError reports a required entity absent from the NLU result.
// Details carries the user-facing reason.
func NewMissingEntityError(entity, reason string) *StandardError {
	err := newError(ErrCodeMissingEntity, "Missing required entity", reason, false)
	err.Metadata = map[string]interface{}{"entity": entity}
	return err
}

// NewInsufficientCriteriaError reports a query that would be unbounded.
func NewInsufficientCriteriaError(reason string) *StandardError {
	return newError(ErrCodeInsufficientCriteria, "Insufficient search criteria", reason, false)
}

func NewNLUUnavailableError(err error) *StandardError {
	return newError(ErrCodeNLUUnavailable, "NLU service error", err.Error(), true)
}

func NewNLUTimeoutError() *StandardError {
	return newError(ErrCodeNLUTimeout, "NLU service timeout", "parse call exceeded timeout threshold", true)
}

func NewNLUInvalidResponseError(details string) *StandardError {
	return newError(ErrCodeNLUInvalidResponse, "NLU response failed validation", details, false)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(intent string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("intent: %s, error: %s", intent, err.Error()), true)
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(intent string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout", fmt.Sprintf("intent: %s", intent), true)
}

func NewChatDeliveryFailedError(err error) *StandardError {
	return newError(ErrCodeChatDeliveryFailed, "Chat message delivery failed", err.Error(), true)
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return newError("EXTERNAL_SERVICE_ERROR", fmt.Sprintf("External service '%s' error", service), err.Error(), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError("TIMEOUT_ERROR", fmt.Sprintf("Service '%s' timeout", service), err.Error(), true)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError("RESOURCE_NOT_FOUND", fmt.Sprintf("Resource not found in %s", service), details, false)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeNLUUnavailable,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeChatDeliveryFailed:
		return 3

	case ErrCodeNLUTimeout,
		ErrCodeQueryTimeout:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
// BPMN codes are the internal codes.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError unwraps err to a *StandardError if one is in the chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsBadRequest reports whether err is a request problem the user can fix by
// rephrasing, as opposed to a technical failure.
func IsBadRequest(err error) bool {
	stdErr, ok := AsStandardError(err)
	return ok && GetErrorCategory(stdErr.Code) == "BAD_REQUEST"
}

// Reason returns the user-facing text of a bad request error.
func Reason(err error) string {
	if stdErr, ok := AsStandardError(err); ok {
		if stdErr.Details != "" {
			return stdErr.Details
		}
		return stdErr.Message
	}
	return err.Error()
}

// CodeOf returns the error code of err, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Code
	}
	return "INTERNAL_ERROR"
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeInvalidQuestion, ErrCodeUnsupportedIntent, ErrCodeMissingEntity, ErrCodeInsufficientCriteria:
		return "BAD_REQUEST"
	}
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "NLU"):
		return "NLU"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "CHAT"):
		return "CHAT"
	default:
		return "OTHER"
	}
}
