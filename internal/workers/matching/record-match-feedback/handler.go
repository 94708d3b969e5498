// internal/workers/matching/record-match-feedback/handler.go
package recordmatchfeedback

import (
	"context"

	"supplier-matching/internal/common/errors"
	"supplier-matching/internal/common/logger"
	"supplier-matching/internal/common/metrics"
	"supplier-matching/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "record-match-feedback"
)

// Recorder validates and appends one feedback document.
type Recorder interface {
	RecordFeedback(ctx context.Context, raw []byte) (*models.FeedbackRecord, error)
}

type Handler struct {
	config     *Config
	recorder   Recorder
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, recorder Recorder, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		recorder:   recorder,
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

	output, err := h.execute(ctx, []byte(job.Variables))
	if err != nil {
		done(string(errors.Normalize(err).Code))
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	done("")
}

func (h *Handler) execute(ctx context.Context, variables []byte) (*Output, error) {
	record, err := h.recorder.RecordFeedback(ctx, variables)
	if err != nil {
		return nil, err
	}

	return &Output{
		FeedbackID: record.ID,
		Recorded:   true,
		RecordedAt: record.CreatedAt,
	}, nil
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

// Execute records the feedback held in the raw job variables.
func (h *Handler) Execute(ctx context.Context, variables []byte) (*Output, error) {
	return h.execute(ctx, variables)
}
