// internal/service/match_service.go
package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"supplier-matching/internal/common/aws"
	"supplier-matching/internal/common/camunda"
	"supplier-matching/internal/common/errors"
	"supplier-matching/internal/common/logger"
	"supplier-matching/internal/common/metrics"
	"supplier-matching/internal/common/observability"
	"supplier-matching/internal/matching"
	"supplier-matching/internal/models"
	"supplier-matching/internal/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Repository is the relational store behind the service. *store.PostgresStore
// satisfies it.
type Repository interface {
	GetRFQ(ctx context.Context, id int64) (*models.RFQ, error)
	ListCandidateSuppliers(ctx context.Context, category string, limit int) ([]models.SupplierProfile, error)
	GetSuppliersByIDs(ctx context.Context, ids []int64) ([]models.SupplierProfile, error)
	GetSupplierStats(ctx context.Context, ids []int64, category string, now time.Time) (map[int64]*models.SupplierStats, error)
	SaveRecommendations(ctx context.Context, rfqID int64, recs []models.SupplierRecommendation) error
	ListRecommendations(ctx context.Context, rfqID int64) ([]models.SupplierRecommendation, error)
	ListRecommendedContacts(ctx context.Context, rfqID int64) ([]store.SupplierContact, error)
	MarkContacted(ctx context.Context, rfqID int64, supplierIDs []int64) (int64, error)
	InsertFeedback(ctx context.Context, fb *models.FeedbackRecord) error
}

type CandidateSearcher interface {
	CandidateIDs(ctx context.Context, rfq *models.RFQ, limit int) ([]int64, error)
}

// RecommendationCache never fails; a broken cache behaves as a miss.
type RecommendationCache interface {
	GetRFQ(ctx context.Context, id int64) (*models.RFQ, bool)
	SetRFQ(ctx context.Context, rfq *models.RFQ)
	GetRecommendations(ctx context.Context, rfqID int64) ([]models.SupplierRecommendation, bool)
	SetRecommendations(ctx context.Context, rfqID int64, recs []models.SupplierRecommendation)
	InvalidateRecommendations(ctx context.Context, rfqID int64)
}

type Notifier interface {
	NotifySupplier(ctx context.Context, notice aws.MatchNotice) ([]aws.Delivery, error)
}

type MessagePublisher interface {
	PublishMessage(ctx context.Context, name, correlationKey string, variables interface{}) error
}

type Config struct {
	CandidateLimit int
	Concurrency    int
	UseAdvanced    bool
}

// Dependencies wires the service. Only Repository and Engine are required;
// the rest degrade to no-ops when nil.
type Dependencies struct {
	Repository    Repository
	Engine        *matching.Engine
	Search        CandidateSearcher
	Cache         RecommendationCache
	Notifier      Notifier
	Publisher     MessagePublisher
	Observability *observability.Observability
	Logger        logger.Logger
}

// MatchResult is the output of one matching run.
type MatchResult struct {
	RFQID            int64                         `json:"rfqId"`
	CandidateCount   int                           `json:"candidateCount"`
	RecommendedCount int                           `json:"recommendedCount"`
	UsedAdvanced     bool                          `json:"usedAdvanced"`
	Recommendations  []matching.RecommendationView `json:"recommendations"`
	GeneratedAt      time.Time                     `json:"generatedAt"`
}

// NotifyResult reports which recommended suppliers were reached.
type NotifyResult struct {
	Success             bool    `json:"success"`
	NotifiedCount       int     `json:"notifiedCount"`
	NotifiedSupplierIDs []int64 `json:"notifiedSupplierIds"`
	FailedSupplierIDs   []int64 `json:"failedSupplierIds"`
}

// MatchService orchestrates RFQ loading, candidate retrieval, scoring,
// persistence and notification around the matching engine.
type MatchService struct {
	config    Config
	repo      Repository
	engine    *matching.Engine
	search    CandidateSearcher
	cache     RecommendationCache
	notifier  Notifier
	publisher MessagePublisher
	obs       *observability.Observability
	logger    logger.Logger
	now       func() time.Time
}

func NewMatchService(cfg Config, deps Dependencies) (*MatchService, error) {
	if deps.Repository == nil {
		return nil, fmt.Errorf("match service: repository is required")
	}
	if deps.Engine == nil {
		deps.Engine = matching.NewEngine(matching.DefaultOptions())
	}
	if deps.Observability == nil {
		deps.Observability = observability.NewNoop("supplier-matching")
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = 200
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}

	return &MatchService{
		config:    cfg,
		repo:      deps.Repository,
		engine:    deps.Engine,
		search:    deps.Search,
		cache:     deps.Cache,
		notifier:  deps.Notifier,
		publisher: deps.Publisher,
		obs:       deps.Observability,
		logger:    deps.Logger.WithFields(map[string]interface{}{"component": "match-service"}),
		now:       time.Now,
	}, nil
}

// WithClock pins the clock used for stats windows and feedback timestamps.
func (s *MatchService) WithClock(now func() time.Time) *MatchService {
	s.now = now
	return s
}

func (s *MatchService) Engine() *matching.Engine {
	return s.engine
}

// DefaultAdvanced reports whether advanced factors are on when a caller
// does not choose.
func (s *MatchService) DefaultAdvanced() bool {
	return s.config.UseAdvanced
}

// ==========================
// Matching
// ==========================

// GenerateMatches scores every candidate supplier for rfqID, persists the
// ranked result and returns it with display fields filled in.
func (s *MatchService) GenerateMatches(ctx context.Context, rfqID int64, useAdvanced bool) (result *MatchResult, err error) {
	ctx, span := s.obs.StartSpan(ctx, "MatchService.GenerateMatches",
		attribute.Int64("rfq.id", rfqID),
		attribute.Bool("matching.advanced", useAdvanced),
	)
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
			endWithError(span, err)
		}
		metrics.MatchRunsTotal.WithLabelValues(outcome, strconv.FormatBool(useAdvanced)).Inc()
		span.End()
	}()

	log := logger.WithTrace(ctx, s.logger).WithFields(map[string]interface{}{"rfqId": rfqID})

	rfq, err := s.loadRFQ(ctx, rfqID)
	if err != nil {
		return nil, err
	}

	suppliers, err := s.loadCandidates(ctx, rfq, useAdvanced, log)
	if err != nil {
		return nil, err
	}
	metrics.MatchCandidates.Observe(float64(len(suppliers)))

	recs := s.engine.Match(rfq, suppliers, useAdvanced)

	if err := s.repo.SaveRecommendations(ctx, rfqID, recs); err != nil {
		return nil, errors.NewRecommendationPersistFailedError(rfqID, err)
	}
	// The store keeps contacted/responded and previously contacted suppliers,
	// so the next read repopulates the cache from it.
	if s.cache != nil {
		s.cache.InvalidateRecommendations(ctx, rfqID)
	}

	recommended := 0
	for _, rec := range recs {
		metrics.MatchScores.Observe(float64(rec.MatchScore))
		s.obs.RecordMatchScore(ctx, rec.MatchScore, rec.Recommended)
		if rec.Recommended {
			recommended++
			metrics.RecommendationsBySource.WithLabelValues(string(matching.SourceOf(&rec))).Inc()
		}
	}
	span.SetAttributes(
		attribute.Int("matching.candidates", len(suppliers)),
		attribute.Int("matching.recommended", recommended),
	)

	s.publish(ctx, camunda.MessageMatchesGenerated, rfqID, map[string]interface{}{
		"rfqId":            rfqID,
		"matchCount":       len(recs),
		"recommendedCount": recommended,
	})

	log.Info("supplier matches generated", map[string]interface{}{
		"candidates":  len(suppliers),
		"recommended": recommended,
		"advanced":    useAdvanced,
	})

	return &MatchResult{
		RFQID:            rfqID,
		CandidateCount:   len(suppliers),
		RecommendedCount: recommended,
		UsedAdvanced:     useAdvanced,
		Recommendations:  s.engine.Views(recs),
		GeneratedAt:      s.now().UTC(),
	}, nil
}

func (s *MatchService) loadRFQ(ctx context.Context, rfqID int64) (*models.RFQ, error) {
	if s.cache != nil {
		if rfq, ok := s.cache.GetRFQ(ctx, rfqID); ok {
			return rfq, nil
		}
	}

	rfq, err := s.repo.GetRFQ(ctx, rfqID)
	if err != nil {
		if stderrors.Is(err, store.ErrRFQNotFound) {
			return nil, errors.NewRFQNotFoundError(rfqID)
		}
		return nil, errors.NewRFQFetchFailedError(rfqID, err)
	}

	if s.cache != nil {
		s.cache.SetRFQ(ctx, rfq)
	}
	return rfq, nil
}

// loadCandidates asks the search index for candidate ids and falls back to a
// category query when the index is unavailable. Feedback stats are loaded only
// for advanced runs.
func (s *MatchService) loadCandidates(ctx context.Context, rfq *models.RFQ, useAdvanced bool, log logger.Logger) ([]models.SupplierProfile, error) {
	if s.search != nil {
		ids, err := s.search.CandidateIDs(ctx, rfq, s.config.CandidateLimit)
		if err == nil {
			return s.loadByIDs(ctx, rfq, ids, useAdvanced)
		}
		log.Warn("candidate search failed, falling back to category query", map[string]interface{}{
			"error": err.Error(),
		})
	}

	suppliers, err := s.repo.ListCandidateSuppliers(ctx, rfq.Category, s.config.CandidateLimit)
	if err != nil {
		return nil, errors.NewSupplierFetchFailedError(err)
	}
	if !useAdvanced || len(suppliers) == 0 {
		return suppliers, nil
	}

	ids := make([]int64, 0, len(suppliers))
	for _, sp := range suppliers {
		ids = append(ids, sp.ID)
	}
	stats, err := s.repo.GetSupplierStats(ctx, ids, rfq.Category, s.now())
	if err != nil {
		return nil, errors.NewSupplierFetchFailedError(err)
	}
	attachStats(suppliers, stats)
	return suppliers, nil
}

func (s *MatchService) loadByIDs(ctx context.Context, rfq *models.RFQ, ids []int64, useAdvanced bool) ([]models.SupplierProfile, error) {
	if len(ids) == 0 {
		return []models.SupplierProfile{}, nil
	}

	var suppliers []models.SupplierProfile
	var stats map[int64]*models.SupplierStats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		suppliers, err = s.repo.GetSuppliersByIDs(gctx, ids)
		return err
	})
	if useAdvanced {
		g.Go(func() error {
			var err error
			stats, err = s.repo.GetSupplierStats(gctx, ids, rfq.Category, s.now())
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.NewSupplierFetchFailedError(err)
	}

	attachStats(suppliers, stats)
	return suppliers, nil
}

func attachStats(suppliers []models.SupplierProfile, stats map[int64]*models.SupplierStats) {
	if len(stats) == 0 {
		return
	}
	for i := range suppliers {
		if st, ok := stats[suppliers[i].ID]; ok {
			suppliers[i].Stats = st
		}
	}
}

// ==========================
// Recommendations
// ==========================

// GetRecommendations returns the persisted ranking for rfqID. An RFQ that was
// never matched yields an empty list.
func (s *MatchService) GetRecommendations(ctx context.Context, rfqID int64) ([]matching.RecommendationView, error) {
	recs, err := s.recommendations(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	return s.engine.Views(recs), nil
}

// GetGroupedRecommendations buckets the persisted ranking by algorithm source.
// All five buckets are always present.
func (s *MatchService) GetGroupedRecommendations(ctx context.Context, rfqID int64) ([]matching.GroupView, error) {
	recs, err := s.recommendations(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	return s.engine.GroupViews(recs), nil
}

func (s *MatchService) recommendations(ctx context.Context, rfqID int64) ([]models.SupplierRecommendation, error) {
	if s.cache != nil {
		if recs, ok := s.cache.GetRecommendations(ctx, rfqID); ok {
			return matching.Rank(recs), nil
		}
	}

	recs, err := s.repo.ListRecommendations(ctx, rfqID)
	if err != nil {
		return nil, errors.NewRecommendationFetchFailedError(rfqID, err)
	}
	if recs == nil {
		recs = []models.SupplierRecommendation{}
	}

	if s.cache != nil && len(recs) > 0 {
		s.cache.SetRecommendations(ctx, rfqID, recs)
	}
	return matching.Rank(recs), nil
}

// ==========================
// Feedback
// ==========================

// RecordFeedback validates a raw feedback document and appends it. Invalid
// input is rejected before anything is written.
func (s *MatchService) RecordFeedback(ctx context.Context, raw []byte) (*models.FeedbackRecord, error) {
	ctx, span := s.obs.StartSpan(ctx, "MatchService.RecordFeedback")
	defer span.End()

	record, err := matching.DecodeFeedback(raw)
	if err != nil {
		stdErr := errors.NewFeedbackValidationError(err)
		endWithError(span, stdErr)
		return nil, stdErr
	}

	record.ID = uuid.NewString()
	record.CreatedAt = s.now().UTC()
	span.SetAttributes(
		attribute.Int64("rfq.id", record.RFQID),
		attribute.Int64("supplier.id", record.SupplierID),
	)

	if err := s.repo.InsertFeedback(ctx, record); err != nil {
		stdErr := errors.NewFeedbackPersistFailedError(err)
		endWithError(span, stdErr)
		return nil, stdErr
	}
	metrics.FeedbackRecorded.WithLabelValues(strconv.FormatBool(record.WasSuccessful)).Inc()

	s.publish(ctx, camunda.MessageFeedbackRecorded, record.RFQID, map[string]interface{}{
		"rfqId":         record.RFQID,
		"supplierId":    record.SupplierID,
		"wasSuccessful": record.WasSuccessful,
		"feedbackId":    record.ID,
	})

	logger.WithTrace(ctx, s.logger).Info("match feedback recorded", map[string]interface{}{
		"feedbackId":    record.ID,
		"rfqId":         record.RFQID,
		"supplierId":    record.SupplierID,
		"wasSuccessful": record.WasSuccessful,
	})
	return record, nil
}

// ==========================
// Notifications
// ==========================

// NotifySuppliers sends the match notice to every recommended, not yet
// contacted supplier and marks the ones reached as contacted.
func (s *MatchService) NotifySuppliers(ctx context.Context, rfqID int64, message string) (*NotifyResult, error) {
	ctx, span := s.obs.StartSpan(ctx, "MatchService.NotifySuppliers", attribute.Int64("rfq.id", rfqID))
	defer span.End()

	log := logger.WithTrace(ctx, s.logger).WithFields(map[string]interface{}{"rfqId": rfqID})

	rfq, err := s.loadRFQ(ctx, rfqID)
	if err != nil {
		endWithError(span, err)
		return nil, err
	}

	contacts, err := s.repo.ListRecommendedContacts(ctx, rfqID)
	if err != nil {
		stdErr := errors.NewRecommendationFetchFailedError(rfqID, err)
		endWithError(span, stdErr)
		return nil, stdErr
	}

	result := &NotifyResult{NotifiedSupplierIDs: []int64{}, FailedSupplierIDs: []int64{}}
	if len(contacts) == 0 || s.notifier == nil {
		log.Info("no suppliers to notify", map[string]interface{}{
			"contacts":        len(contacts),
			"notifierEnabled": s.notifier != nil,
		})
		return result, nil
	}

	delivered := make([]bool, len(contacts))
	var mu sync.Mutex
	var lastErr error

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)
	for i, c := range contacts {
		i, c := i, c
		g.Go(func() error {
			deliveries, err := s.notifier.NotifySupplier(gctx, aws.MatchNotice{
				RFQID:        rfqID,
				RFQTitle:     rfq.Title,
				SupplierID:   c.SupplierID,
				SupplierName: c.SupplierName,
				Email:        c.Email,
				Phone:        c.Phone,
				MatchScore:   c.MatchScore,
				MatchReason:  c.MatchReason,
				Message:      message,
			})
			if err != nil {
				metrics.NotificationsSent.WithLabelValues("any", "failed").Inc()
				log.Warn("supplier notification failed", map[string]interface{}{
					"supplierId": c.SupplierID,
					"error":      err.Error(),
				})
				mu.Lock()
				lastErr = err
				mu.Unlock()
				return nil
			}
			for _, d := range deliveries {
				metrics.NotificationsSent.WithLabelValues(d.Channel, "sent").Inc()
			}
			delivered[i] = len(deliveries) > 0
			return nil
		})
	}
	_ = g.Wait()

	for i, c := range contacts {
		if delivered[i] {
			result.NotifiedSupplierIDs = append(result.NotifiedSupplierIDs, c.SupplierID)
		} else {
			result.FailedSupplierIDs = append(result.FailedSupplierIDs, c.SupplierID)
		}
	}
	result.NotifiedCount = len(result.NotifiedSupplierIDs)
	result.Success = result.NotifiedCount > 0

	if result.NotifiedCount == 0 && lastErr != nil {
		stdErr := errors.NewNotificationSendFailedError("supplier-match", lastErr)
		endWithError(span, stdErr)
		return nil, stdErr
	}

	if result.NotifiedCount > 0 {
		if _, err := s.repo.MarkContacted(ctx, rfqID, result.NotifiedSupplierIDs); err != nil {
			stdErr := errors.NewRecommendationPersistFailedError(rfqID, err)
			endWithError(span, stdErr)
			return nil, stdErr
		}
		if s.cache != nil {
			s.cache.InvalidateRecommendations(ctx, rfqID)
		}
	}

	span.SetAttributes(attribute.Int("notify.sent", result.NotifiedCount))
	log.Info("matched suppliers notified", map[string]interface{}{
		"notified": result.NotifiedCount,
		"failed":   len(result.FailedSupplierIDs),
	})
	return result, nil
}

// publish is best effort; the workflow does not depend on these messages.
func (s *MatchService) publish(ctx context.Context, name string, rfqID int64, vars map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishMessage(ctx, name, strconv.FormatInt(rfqID, 10), vars); err != nil {
		s.logger.Warn("failed to publish workflow message", map[string]interface{}{
			"message": name,
			"rfqId":   rfqID,
			"error":   err.Error(),
		})
	}
}

func endWithError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
