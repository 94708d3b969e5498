// internal/workers/matching/record-match-feedback/handler_test.go
package recordmatchfeedback

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"supplier-matching/internal/common/config"
	"supplier-matching/internal/common/errors"
	"supplier-matching/internal/common/logger"
	"supplier-matching/internal/matching"
	"supplier-matching/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

// fakeRecorder validates like the match service but keeps records in memory.
type fakeRecorder struct {
	insertErr error
	records   []*models.FeedbackRecord
}

func (r *fakeRecorder) RecordFeedback(_ context.Context, raw []byte) (*models.FeedbackRecord, error) {
	record, err := matching.DecodeFeedback(raw)
	if err != nil {
		return nil, errors.NewFeedbackValidationError(err)
	}
	if r.insertErr != nil {
		return nil, errors.NewFeedbackPersistFailedError(r.insertErr)
	}
	record.ID = fmt.Sprintf("fb-%d", len(r.records)+1)
	record.CreatedAt = testNow
	r.records = append(r.records, record)
	return record, nil
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name           string
		variables      string
		expectedCode   errors.ErrorCode
		validateOutput func(t *testing.T, output *Output, recorder *fakeRecorder)
	}{
		{
			name:      "successful engagement",
			variables: `{"rfqId":1001,"supplierId":7,"wasSuccessful":true,"buyerFeedback":5,"feedbackNotes":"On time"}`,
			validateOutput: func(t *testing.T, output *Output, recorder *fakeRecorder) {
				assert.Equal(t, "fb-1", output.FeedbackID)
				assert.True(t, output.Recorded)
				assert.Equal(t, testNow, output.RecordedAt)
				require.Len(t, recorder.records, 1)
				assert.Equal(t, 5, *recorder.records[0].BuyerFeedback)
				assert.Equal(t, "On time", recorder.records[0].FeedbackNotes)
			},
		},
		{
			name:      "unsuccessful without ratings",
			variables: `{"rfqId":1001,"supplierId":7,"wasSuccessful":false,"processStage":"closed"}`,
			validateOutput: func(t *testing.T, output *Output, recorder *fakeRecorder) {
				require.Len(t, recorder.records, 1)
				assert.False(t, recorder.records[0].WasSuccessful)
				assert.Nil(t, recorder.records[0].SupplierFeedback)
			},
		},
		{
			name:         "missing wasSuccessful",
			variables:    `{"rfqId":1001,"supplierId":7}`,
			expectedCode: errors.ErrCodeFeedbackValidationFailed,
		},
		{
			name:         "rating out of range",
			variables:    `{"rfqId":1001,"supplierId":7,"wasSuccessful":true,"supplierFeedback":0}`,
			expectedCode: errors.ErrCodeFeedbackValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &fakeRecorder{}
			handler := NewHandler(createTestConfig(), recorder, logger.NewTestLogger(t))

			output, err := handler.Execute(context.Background(), []byte(tt.variables))

			if tt.expectedCode != "" {
				stdErr, ok := errors.AsStandardError(err)
				require.True(t, ok)
				assert.Equal(t, tt.expectedCode, stdErr.Code)
				assert.True(t, stderrors.Is(err, matching.ErrInvalidFeedback))
				assert.Empty(t, recorder.records)
				return
			}

			require.NoError(t, err)
			tt.validateOutput(t, output, recorder)
		})
	}
}

func TestHandler_Execute_ValidationErrorIsNotRetried(t *testing.T) {
	handler := NewHandler(createTestConfig(), &fakeRecorder{}, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), []byte(`{"supplierId":7}`))
	require.Error(t, err)

	bpmnErr := errors.ConvertToBPMNError(errors.Normalize(err))
	assert.Equal(t, "FEEDBACK_VALIDATION_FAILED", bpmnErr.Code)
	assert.Zero(t, bpmnErr.Retries)
}

func TestHandler_Execute_PersistFailureIsRetryable(t *testing.T) {
	recorder := &fakeRecorder{insertErr: fmt.Errorf("connection reset")}
	handler := NewHandler(createTestConfig(), recorder, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), []byte(`{"rfqId":1,"supplierId":2,"wasSuccessful":true}`))

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeFeedbackPersistFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestNewConfig(t *testing.T) {
	assert.Equal(t, 10*time.Second, NewConfig(config.WorkerConfig{}).Timeout)
	assert.Equal(t, 2*time.Second, NewConfig(config.WorkerConfig{Timeout: 2000}).Timeout)
}
