package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	wrapped := fmt.Errorf("map case: %w", NewMissingCorrelationKeyError("proceeding 2"))
	assert.Equal(t, ErrCodeMissingCorrelationKey, Normalize(wrapped).Code)

	deadline := fmt.Errorf("load: %w", context.DeadlineExceeded)
	assert.Equal(t, ErrCodeTimeout, Normalize(deadline).Code)
	assert.True(t, Normalize(deadline).Retryable)

	other := Normalize(fmt.Errorf("boom"))
	assert.Equal(t, ErrCodeInternal, other.Code)
	assert.Equal(t, "boom", other.Details)
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name      string
		err       *StandardError
		wantCode  string
		wantRetry int
	}{
		{"mapped code", NewUnknownSourceSystemError("CCMS"), "CASE_PAYLOAD_INVALID", 0},
		{"unmapped code passes through", NewDatabaseInsertFailedError(fmt.Errorf("x")), "DATABASE_INSERT_FAILED", 3},
		{"retryable lookup", NewLookupUnavailableError(fmt.Errorf("503")), "LOOKUP_UNAVAILABLE", 3},
		{"timeout", NewTimeoutError("job"), "TIMEOUT", 2},
		{"fatal correlation", NewMissingCorrelationKeyError("caseReferenceNumber"), "MISSING_CORRELATION_KEY", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, b.Code)
			assert.Equal(t, tt.wantRetry, b.Retries)
			assert.Equal(t, string(tt.err.Code), b.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestConvertToBPMNError_NonRetryableHasNoRetries(t *testing.T) {
	err := NewQueryExecutionFailedError("load application", fmt.Errorf("x"))
	err.Retryable = false
	assert.Equal(t, 0, ConvertToBPMNError(err).Retries)
}

func TestConvertToBPMNError_Metadata(t *testing.T) {
	err := NewAssessmentInconsistentError("300001234567", "meansAssessment").
		WithMetadata("caseReference", "300001234567")

	vars := ConvertToBPMNError(err).ToErrorVariables()
	require.NotNil(t, vars)
	assert.Equal(t, "300001234567", vars["caseReference"])
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "MAPPING", GetErrorCategory(ErrCodeMissingCorrelationKey))
	assert.Equal(t, "MAPPING", GetErrorCategory(ErrCodeUnresolvedLookupReference))
	assert.Equal(t, "MAPPING", GetErrorCategory(ErrCodeUnsupportedDiscriminantVariant))
	assert.Equal(t, "REFERENCE_DATA", GetErrorCategory(ErrCodeLookupUnavailable))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryExecutionFailed))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeIssueIndexFailed))
	assert.Equal(t, "MESSAGING", GetErrorCategory(ErrCodeSubmissionPublishFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeAssessmentInconsistent))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeDatabaseConnectionFailed))
	assert.True(t, IsRetryableErrorCode(ErrCodeIssueIndexFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodePayloadInvalid))
	assert.False(t, IsRetryableErrorCode(ErrCodeUnresolvedLookupReference))
}
