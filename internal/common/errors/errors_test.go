// internal/common/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name            string
		err             *StandardError
		expectedCode    string
		expectedRetries int
		retryable       bool
	}{
		{
			name:            "rfq not found is terminal",
			err:             NewRFQNotFoundError(42),
			expectedCode:    "RFQ_NOT_FOUND",
			expectedRetries: 0,
			retryable:       false,
		},
		{
			name:            "persist failure retries",
			err:             NewRecommendationPersistFailedError(42, stderrors.New("conn reset")),
			expectedCode:    "RECOMMENDATION_PERSIST_FAILED",
			expectedRetries: 3,
			retryable:       true,
		},
		{
			name:            "query timeout retries twice",
			err:             NewQueryTimeoutError("select_suppliers"),
			expectedCode:    "QUERY_TIMEOUT",
			expectedRetries: 2,
			retryable:       true,
		},
		{
			name:            "unmapped code passes through",
			err:             NewBusinessRuleError("no candidates", "category empty"),
			expectedCode:    "BUSINESS_RULE_VIOLATION",
			expectedRetries: 0,
			retryable:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmnErr := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.expectedCode, bpmnErr.Code)
			assert.Equal(t, tt.expectedRetries, bpmnErr.Retries)
			assert.Equal(t, tt.retryable, bpmnErr.Retryable)
			assert.Equal(t, string(tt.err.Code), bpmnErr.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestConvertToBPMNError_CarriesMetadata(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewRFQNotFoundError(7))

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "RFQ_NOT_FOUND", vars["errorCode"])
	assert.Equal(t, int64(7), vars["rfqId"])
	assert.Equal(t, false, vars["retryable"])
}

func TestStandardError_Unwrap(t *testing.T) {
	cause := stderrors.New("dial tcp: refused")
	wrapped := fmt.Errorf("load: %w", NewSupplierFetchFailedError(cause))

	stdErr, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeSupplierFetchFailed, stdErr.Code)
	assert.True(t, stderrors.Is(wrapped, cause))
	assert.Equal(t, "dial tcp: refused", stdErr.Details)
}

func TestNormalize(t *testing.T) {
	plain := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.False(t, plain.Retryable)

	original := NewFeedbackPersistFailedError(stderrors.New("x"))
	assert.Same(t, original, Normalize(original))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeFeedbackValidationFailed))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeSearchQueryFailed))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeRecommendationPersistFailed))
	assert.Equal(t, "NOT_FOUND", GetErrorCategory(ErrCodeRFQNotFound))
	assert.Equal(t, "MATCHING", GetErrorCategory(ErrCodeMatchGenerationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrCodeFeedbackValidationFailed))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrCodeRFQNotFound))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(ErrCodeSupplierFetchFailed))
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(ErrCodeQueryTimeout))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrCodeInternal))
}
