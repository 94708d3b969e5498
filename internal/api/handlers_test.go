// internal/api/handlers_test.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"supplier-matching/internal/common/errors"
	"supplier-matching/internal/common/logger"
	"supplier-matching/internal/common/validation"
	"supplier-matching/internal/matching"
	"supplier-matching/internal/models"
	"supplier-matching/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	generateErr error
	feedbackErr error
	notify      *service.NotifyResult

	gotRFQID    int64
	gotAdvanced bool
	gotMessage  string
	gotFeedback string
}

func (f *fakeService) GenerateMatches(_ context.Context, rfqID int64, advanced bool) (*service.MatchResult, error) {
	f.gotRFQID, f.gotAdvanced = rfqID, advanced
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	return &service.MatchResult{
		RFQID:            rfqID,
		CandidateCount:   1,
		RecommendedCount: 1,
		UsedAdvanced:     advanced,
		Recommendations:  []matching.RecommendationView{testView()},
	}, nil
}

func (f *fakeService) GetRecommendations(_ context.Context, rfqID int64) ([]matching.RecommendationView, error) {
	f.gotRFQID = rfqID
	return []matching.RecommendationView{testView()}, nil
}

func (f *fakeService) GetGroupedRecommendations(_ context.Context, rfqID int64) ([]matching.GroupView, error) {
	f.gotRFQID = rfqID
	engine := matching.NewEngine(matching.DefaultOptions())
	return engine.GroupViews([]models.SupplierRecommendation{testView().SupplierRecommendation}), nil
}

func (f *fakeService) RecordFeedback(_ context.Context, raw []byte) (*models.FeedbackRecord, error) {
	f.gotFeedback = string(raw)
	if f.feedbackErr != nil {
		return nil, f.feedbackErr
	}
	return &models.FeedbackRecord{ID: "fb-1"}, nil
}

func (f *fakeService) NotifySuppliers(_ context.Context, rfqID int64, message string) (*service.NotifyResult, error) {
	f.gotRFQID, f.gotMessage = rfqID, message
	return f.notify, nil
}

func (f *fakeService) DefaultAdvanced() bool { return true }

func testView() matching.RecommendationView {
	return matching.RecommendationView{
		SupplierRecommendation: models.SupplierRecommendation{
			RFQID:       1001,
			SupplierID:  7,
			MatchScore:  92,
			MatchReason: "Supplier serves the Steel Pipes category",
			Recommended: true,
		},
		Explanation:     "Supplier serves the Steel Pipes category",
		FormattedScore:  "92%",
		AlgorithmSource: matching.SourceBasicMatch,
	}
}

func newTestRouter(t *testing.T, svc *fakeService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewTestLogger(t)
	return NewRouter(RouterConfig{
		ServiceName:   "supplier-matching-test",
		Logger:        log,
		MatchHandler:  NewMatchHandler(svc, log),
		HealthHandler: NewHealthHandler(nil),
	})
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error
}

// ==========================
// Matches
// ==========================

func TestGenerate(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedAdv    bool
	}{
		{name: "explicit basic", body: `{"rfqId":1001,"useAdvancedAlgorithms":false}`, expectedStatus: http.StatusOK, expectedAdv: false},
		{name: "service default", body: `{"rfqId":1001}`, expectedStatus: http.StatusOK, expectedAdv: true},
		{name: "missing rfqId", body: `{"useAdvancedAlgorithms":true}`, expectedStatus: http.StatusBadRequest},
		{name: "negative rfqId", body: `{"rfqId":-4}`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			rec := doRequest(newTestRouter(t, svc), http.MethodPost, "/api/matches", tt.body)

			require.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.expectedStatus != http.StatusOK {
				assert.Equal(t, string(errors.ErrCodeInvalidInput), decodeError(t, rec).Code)
				return
			}

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, float64(1001), body["rfqId"])
			assert.Equal(t, tt.expectedAdv, svc.gotAdvanced)

			recs := body["recommendations"].([]interface{})
			require.Len(t, recs, 1)
			first := recs[0].(map[string]interface{})
			assert.Equal(t, "92%", first["formattedScore"])
			assert.Equal(t, "Basic Match", first["algorithmSource"])
			assert.Equal(t, float64(7), first["supplierId"])
		})
	}
}

func TestGenerateForRFQ_QueryFlag(t *testing.T) {
	svc := &fakeService{}
	rec := doRequest(newTestRouter(t, svc), http.MethodGet, "/api/rfqs/42/matches?useAdvancedAlgorithms=false", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), svc.gotRFQID)
	assert.False(t, svc.gotAdvanced)

	rec = doRequest(newTestRouter(t, svc), http.MethodGet, "/api/rfqs/42/matches?useAdvancedAlgorithms=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(newTestRouter(t, svc), http.MethodGet, "/api/rfqs/abc/matches", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerate_ServiceErrors(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   errors.ErrorCode
	}{
		{
			name:           "rfq not found",
			err:            errors.NewRFQNotFoundError(1001),
			expectedStatus: http.StatusNotFound,
			expectedCode:   errors.ErrCodeRFQNotFound,
		},
		{
			name:           "upstream failure",
			err:            errors.NewSupplierFetchFailedError(fmt.Errorf("connection refused")),
			expectedStatus: http.StatusBadGateway,
			expectedCode:   errors.ErrCodeSupplierFetchFailed,
		},
		{
			name:           "unexpected error",
			err:            fmt.Errorf("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   errors.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{generateErr: tt.err}
			rec := doRequest(newTestRouter(t, svc), http.MethodPost, "/api/matches", `{"rfqId":1001}`)

			require.Equal(t, tt.expectedStatus, rec.Code)
			apiErr := decodeError(t, rec)
			assert.Equal(t, "failed to generate matches", apiErr.Message)
			assert.Equal(t, string(tt.expectedCode), apiErr.Code)
		})
	}
}

// ==========================
// Recommendations
// ==========================

func TestRecommendations(t *testing.T) {
	svc := &fakeService{}
	rec := doRequest(newTestRouter(t, svc), http.MethodGet, "/api/rfqs/1001/recommendations", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		RFQID           int64                         `json:"rfqId"`
		Recommendations []matching.RecommendationView `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(1001), body.RFQID)
	require.Len(t, body.Recommendations, 1)
	assert.Equal(t, "Supplier serves the Steel Pipes category", body.Recommendations[0].Explanation)
}

func TestGroupedRecommendations(t *testing.T) {
	svc := &fakeService{}
	rec := doRequest(newTestRouter(t, svc), http.MethodGet, "/api/rfqs/1001/recommendations/grouped", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Groups []matching.GroupView `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Groups, 5)
	assert.Equal(t, matching.SourceBasicMatch, body.Groups[4].Source)
	assert.Len(t, body.Groups[4].Recommendations, 1)
}

// ==========================
// Feedback
// ==========================

func TestRecordFeedback(t *testing.T) {
	svc := &fakeService{}
	payload := `{"rfqId":1001,"supplierId":7,"wasSuccessful":true}`
	rec := doRequest(newTestRouter(t, svc), http.MethodPost, "/api/feedback", payload)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"feedbackId":"fb-1"}`, rec.Body.String())
	assert.Equal(t, payload, svc.gotFeedback)
}

func TestRecordFeedback_ValidationError(t *testing.T) {
	fbErr := &matching.FeedbackValidationError{Errors: []validation.ValidationError{
		{Field: "buyerFeedback", Message: "Must be less than or equal to 5", Code: "NUMBER_LTE"},
	}}
	svc := &fakeService{feedbackErr: errors.NewFeedbackValidationError(fbErr)}

	rec := doRequest(newTestRouter(t, svc), http.MethodPost, "/api/feedback", `{"rfqId":1001,"supplierId":7,"wasSuccessful":true,"buyerFeedback":9}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	apiErr := decodeError(t, rec)
	assert.Equal(t, string(errors.ErrCodeFeedbackValidationFailed), apiErr.Code)
	require.Len(t, apiErr.Fields, 1)
	assert.Equal(t, "buyerFeedback", apiErr.Fields[0].Field)
}

// ==========================
// Notify
// ==========================

func TestNotify(t *testing.T) {
	svc := &fakeService{notify: &service.NotifyResult{
		Success:             true,
		NotifiedCount:       2,
		NotifiedSupplierIDs: []int64{7, 9},
		FailedSupplierIDs:   []int64{},
	}}

	rec := doRequest(newTestRouter(t, svc), http.MethodPost, "/api/notify", `{"rfqId":1001,"message":"Quote by Friday"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"notified":2,"notifiedSupplierIds":[7,9],"failedSupplierIds":[]}`, rec.Body.String())
	assert.Equal(t, "Quote by Friday", svc.gotMessage)
}

func TestNotify_MissingRFQ(t *testing.T) {
	rec := doRequest(newTestRouter(t, &fakeService{}), http.MethodPost, "/api/notify", `{"message":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
