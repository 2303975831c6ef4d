// Package errors provides the error taxonomy shared by the case workers and its BPMN translation.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode is a stable, workflow-visible error code.
type ErrorCode string

// Engine errors.
const (
	// ErrCodeMissingCorrelationKey is fatal: a case reference or proceeding id is absent.
	ErrCodeMissingCorrelationKey ErrorCode = "MISSING_CORRELATION_KEY"
	// ErrCodeUnresolvedLookupReference and ErrCodeUnsupportedDiscriminantVariant are data-quality
	// codes; they are recorded as issues and never fail a job.
	ErrCodeUnresolvedLookupReference      ErrorCode = "UNRESOLVED_LOOKUP_REFERENCE"
	ErrCodeUnsupportedDiscriminantVariant ErrorCode = "UNSUPPORTED_DISCRIMINANT_VARIANT"

	ErrCodePayloadInvalid         ErrorCode = "PAYLOAD_INVALID"
	ErrCodeUnknownSourceSystem    ErrorCode = "UNKNOWN_SOURCE_SYSTEM"
	ErrCodeUnknownRulebase        ErrorCode = "UNKNOWN_RULEBASE"
	ErrCodeApplicationNotFound    ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeAssessmentInconsistent ErrorCode = "ASSESSMENT_REFERENCE_INCONSISTENT"
)

// I/O errors.
const (
	ErrCodeLookupUnavailable        ErrorCode = "LOOKUP_UNAVAILABLE"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeIssueIndexFailed         ErrorCode = "ISSUE_INDEX_FAILED"
	ErrCodeSubmissionPublishFailed  ErrorCode = "SUBMISSION_PUBLISH_FAILED"
	ErrCodeTimeout                  ErrorCode = "TIMEOUT"
	ErrCodeInternal                 ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured worker error.
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
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

// BPMNError is what gets thrown to the workflow engine.
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

// ToErrorVariables returns the process variables attached to a failed or thrown job.
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

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewMissingCorrelationKeyError(details string) *StandardError {
	return newError(ErrCodeMissingCorrelationKey, "Required correlation key is missing", details, false)
}

func NewPayloadInvalidError(details string) *StandardError {
	return newError(ErrCodePayloadInvalid, "Case payload failed validation", details, false)
}

func NewUnknownSourceSystemError(source string) *StandardError {
	return newError(ErrCodeUnknownSourceSystem, "Unsupported source system", fmt.Sprintf("sourceSystem: %s", source), false)
}

func NewUnknownRulebaseError(rulebase string) *StandardError {
	return newError(ErrCodeUnknownRulebase, "Unsupported assessment rulebase", fmt.Sprintf("rulebase: %s", rulebase), false)
}

func NewApplicationNotFoundError(caseReference string) *StandardError {
	return newError(ErrCodeApplicationNotFound, "No mapped application for case", fmt.Sprintf("caseReference: %s", caseReference), false)
}

func NewAssessmentInconsistentError(caseReference, assessment string) *StandardError {
	return newError(ErrCodeAssessmentInconsistent, "Assessment does not belong to case",
		fmt.Sprintf("caseReference: %s, assessment: %s", caseReference, assessment), false)
}

// NewLookupUnavailableError is retryable; an unknown code is not an error, an unreachable resolver is.
func NewLookupUnavailableError(err error) *StandardError {
	return newError(ErrCodeLookupUnavailable, "Reference data service unavailable", err.Error(), true)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true)
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Failed to persist record", err.Error(), true)
}

func NewIssueIndexFailedError(err error) *StandardError {
	return newError(ErrCodeIssueIndexFailed, "Failed to index data-quality issues", err.Error(), true)
}

func NewSubmissionPublishFailedError(err error) *StandardError {
	return newError(ErrCodeSubmissionPublishFailed, "Failed to publish case submission", err.Error(), true)
}

func NewTimeoutError(operation string) *StandardError {
	return newError(ErrCodeTimeout, "Operation timed out", fmt.Sprintf("operation: %s", operation), true)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// BPMNErrorMapping maps internal codes to the BPMN error codes caught by boundary events.
// Codes missing from the map are thrown unchanged.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeMissingCorrelationKey:   "MISSING_CORRELATION_KEY",
	ErrCodePayloadInvalid:          "CASE_PAYLOAD_INVALID",
	ErrCodeUnknownSourceSystem:     "CASE_PAYLOAD_INVALID",
	ErrCodeUnknownRulebase:         "ASSESSMENT_REQUEST_INVALID",
	ErrCodeApplicationNotFound:     "APPLICATION_NOT_FOUND",
	ErrCodeAssessmentInconsistent:  "ASSESSMENT_REFERENCE_INCONSISTENT",
	ErrCodeLookupUnavailable:       "LOOKUP_UNAVAILABLE",
	ErrCodeSubmissionPublishFailed: "SUBMISSION_PUBLISH_FAILED",
}

// GetRetryCount returns the recommended retry budget for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeLookupUnavailable,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeSubmissionPublishFailed:
		return 3
	case ErrCodeTimeout, ErrCodeIssueIndexFailed:
		return 2
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, ok := BPMNErrorMapping[stdErr.Code]
	if !ok {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"errorCategory":     GetErrorCategory(stdErr.Code),
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

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for dashboards.
func GetErrorCategory(code ErrorCode) string {
	s := string(code)
	switch {
	case strings.Contains(s, "CORRELATION") || strings.Contains(s, "LOOKUP_REFERENCE") || strings.Contains(s, "DISCRIMINANT"):
		return "MAPPING"
	case strings.Contains(s, "LOOKUP"):
		return "REFERENCE_DATA"
	case strings.Contains(s, "DATABASE") || strings.Contains(s, "QUERY"):
		return "DATABASE"
	case strings.Contains(s, "INDEX"):
		return "SEARCH"
	case strings.Contains(s, "PUBLISH"):
		return "MESSAGING"
	case strings.Contains(s, "INVALID") || strings.Contains(s, "UNKNOWN") || strings.Contains(s, "INCONSISTENT"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
