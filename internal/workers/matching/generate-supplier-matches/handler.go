// internal/workers/matching/generate-supplier-matches/handler.go
package generatesuppliermatches

import (
	"context"
	"encoding/json"
	"fmt"

	"supplier-matching/internal/common/errors"
	"supplier-matching/internal/common/logger"
	"supplier-matching/internal/common/metrics"
	"supplier-matching/internal/common/validation"
	"supplier-matching/internal/matching"
	"supplier-matching/internal/service"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "generate-supplier-matches"
)

var inputValidator = validation.MustCompile(inputSchema)

// Matcher is the part of the match service this worker drives.
type Matcher interface {
	GenerateMatches(ctx context.Context, rfqID int64, useAdvanced bool) (*service.MatchResult, error)
	DefaultAdvanced() bool
}

type Handler struct {
	config     *Config
	matcher    Matcher
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, matcher Matcher, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		matcher:    matcher,
		errHandler: errors.NewErrorHandler(l),
		logger:     l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	done := metrics.TrackJob(TaskType)

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.Key,
		"processInstanceKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := parseInput([]byte(job.Variables))
	if err != nil {
		done(string(errors.ErrCodeInvalidInput))
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		done(string(errors.Normalize(err).Code))
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	done("")
}

func parseInput(raw []byte) (*Input, error) {
	if result := inputValidator.Validate(raw); !result.Valid {
		return nil, errors.NewInvalidInputError(result.Error())
	}

	var input Input
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	advanced := h.matcher.DefaultAdvanced()
	if input.UseAdvancedAlgorithms != nil {
		advanced = *input.UseAdvancedAlgorithms
	}

	result, err := h.matcher.GenerateMatches(ctx, input.RFQID, advanced)
	if err != nil {
		return nil, err
	}

	output := &Output{
		MatchCount:       len(result.Recommendations),
		RecommendedCount: result.RecommendedCount,
		TopSupplierIDs:   []int64{},
		Groups:           make(map[string]int, len(matching.Sources())),
		UsedAdvanced:     result.UsedAdvanced,
	}
	for _, source := range matching.Sources() {
		output.Groups[string(source)] = 0
	}

	// Recommendations arrive ranked, so the first recommended ones are the top.
	for _, view := range result.Recommendations {
		output.Groups[string(view.AlgorithmSource)]++
		if view.Recommended && len(output.TopSupplierIDs) < h.config.TopSuppliers {
			output.TopSupplierIDs = append(output.TopSupplierIDs, view.SupplierID)
		}
	}

	h.logger.Info("supplier matches generated", map[string]interface{}{
		"rfqId":            input.RFQID,
		"matchCount":       output.MatchCount,
		"recommendedCount": output.RecommendedCount,
		"advanced":         advanced,
	})
	return output, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
