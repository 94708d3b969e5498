// internal/workers/matching/notify-matched-suppliers/handler.go
package notifymatchedsuppliers

import (
	"context"
	"encoding/json"
	"fmt"

	"supplier-matching/internal/common/errors"
	"supplier-matching/internal/common/logger"
	"supplier-matching/internal/common/metrics"
	"supplier-matching/internal/common/validation"
	"supplier-matching/internal/service"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "notify-matched-suppliers"
)

var inputValidator = validation.MustCompile(inputSchema)

type SupplierNotifier interface {
	NotifySuppliers(ctx context.Context, rfqID int64, message string) (*service.NotifyResult, error)
}

type Handler struct {
	config     *Config
	notifier   SupplierNotifier
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, notifier SupplierNotifier, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		notifier:   notifier,
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

// execute treats "nobody to notify" as a normal outcome so the process can
// branch on success instead of catching an error.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.notifier.NotifySuppliers(ctx, input.RFQID, input.Message)
	if err != nil {
		return nil, err
	}

	h.logger.Info("matched suppliers notified", map[string]interface{}{
		"rfqId":         input.RFQID,
		"notifiedCount": result.NotifiedCount,
		"failedCount":   len(result.FailedSupplierIDs),
	})

	return &Output{
		Success:             result.Success,
		NotifiedCount:       result.NotifiedCount,
		NotifiedSupplierIDs: result.NotifiedSupplierIDs,
		FailedSupplierIDs:   result.FailedSupplierIDs,
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
