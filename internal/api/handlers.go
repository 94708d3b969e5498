// internal/api/handlers.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"supplier-matching/internal/common/errors"
	"supplier-matching/internal/common/logger"
	"supplier-matching/internal/matching"
	"supplier-matching/internal/models"
	"supplier-matching/internal/service"

	"github.com/gin-gonic/gin"
)

const generateFailedMessage = "failed to generate matches"

// MatchingService is the part of *service.MatchService the API uses.
type MatchingService interface {
	GenerateMatches(ctx context.Context, rfqID int64, useAdvanced bool) (*service.MatchResult, error)
	GetRecommendations(ctx context.Context, rfqID int64) ([]matching.RecommendationView, error)
	GetGroupedRecommendations(ctx context.Context, rfqID int64) ([]matching.GroupView, error)
	RecordFeedback(ctx context.Context, raw []byte) (*models.FeedbackRecord, error)
	NotifySuppliers(ctx context.Context, rfqID int64, message string) (*service.NotifyResult, error)
	DefaultAdvanced() bool
}

type MatchHandler struct {
	svc    MatchingService
	logger logger.Logger
}

func NewMatchHandler(svc MatchingService, log logger.Logger) *MatchHandler {
	return &MatchHandler{
		svc:    svc,
		logger: log.WithFields(map[string]interface{}{"handler": "MatchHandler"}),
	}
}

type generateRequest struct {
	RFQID                 int64 `json:"rfqId" binding:"required,gt=0"`
	UseAdvancedAlgorithms *bool `json:"useAdvancedAlgorithms"`
}

type notifyRequest struct {
	RFQID   int64  `json:"rfqId" binding:"required,gt=0"`
	Message string `json:"message" binding:"max=2000"`
}

// POST /api/matches
func (h *MatchHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, string(errors.ErrCodeInvalidInput), err.Error())
		return
	}

	advanced := h.svc.DefaultAdvanced()
	if req.UseAdvancedAlgorithms != nil {
		advanced = *req.UseAdvancedAlgorithms
	}
	h.generate(c, req.RFQID, advanced)
}

// GET /api/rfqs/:rfqId/matches?useAdvancedAlgorithms=bool
func (h *MatchHandler) GenerateForRFQ(c *gin.Context) {
	rfqID, ok := rfqIDParam(c)
	if !ok {
		return
	}

	advanced := h.svc.DefaultAdvanced()
	if raw := c.Query("useAdvancedAlgorithms"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, string(errors.ErrCodeInvalidInput), "useAdvancedAlgorithms must be a boolean")
			return
		}
		advanced = v
	}
	h.generate(c, rfqID, advanced)
}

func (h *MatchHandler) generate(c *gin.Context, rfqID int64, advanced bool) {
	result, err := h.svc.GenerateMatches(c.Request.Context(), rfqID, advanced)
	if err != nil {
		h.logger.Error("match generation failed", map[string]interface{}{
			"rfqId": rfqID,
			"error": err.Error(),
		})
		respondServiceError(c, err, generateFailedMessage)
		return
	}
	RespondOK(c, result)
}

// GET /api/rfqs/:rfqId/recommendations
func (h *MatchHandler) Recommendations(c *gin.Context) {
	rfqID, ok := rfqIDParam(c)
	if !ok {
		return
	}

	views, err := h.svc.GetRecommendations(c.Request.Context(), rfqID)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	RespondOK(c, gin.H{"rfqId": rfqID, "recommendations": views})
}

// GET /api/rfqs/:rfqId/recommendations/grouped
func (h *MatchHandler) GroupedRecommendations(c *gin.Context) {
	rfqID, ok := rfqIDParam(c)
	if !ok {
		return
	}

	groups, err := h.svc.GetGroupedRecommendations(c.Request.Context(), rfqID)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	RespondOK(c, gin.H{"rfqId": rfqID, "groups": groups})
}

// POST /api/feedback
func (h *MatchHandler) RecordFeedback(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		RespondError(c, http.StatusBadRequest, string(errors.ErrCodeInvalidInput), err.Error())
		return
	}

	record, err := h.svc.RecordFeedback(c.Request.Context(), raw)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	RespondOK(c, gin.H{"success": true, "feedbackId": record.ID})
}

// POST /api/notify
func (h *MatchHandler) Notify(c *gin.Context) {
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, string(errors.ErrCodeInvalidInput), err.Error())
		return
	}

	result, err := h.svc.NotifySuppliers(c.Request.Context(), req.RFQID, req.Message)
	if err != nil {
		respondServiceError(c, err, "")
		return
	}
	RespondOK(c, gin.H{
		"success":             result.Success,
		"notified":            result.NotifiedCount,
		"notifiedSupplierIds": result.NotifiedSupplierIDs,
		"failedSupplierIds":   result.FailedSupplierIDs,
	})
}

func rfqIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("rfqId"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, string(errors.ErrCodeInvalidInput), fmt.Sprintf("invalid rfqId %q", c.Param("rfqId")))
		return 0, false
	}
	return id, true
}
