// cmd/tools/worker-generator/templates.go
package main

var templates = map[string]string{
	"config.go":       configTemplate,
	"models.go":       modelsTemplate,
	"handler.go":      handlerTemplate,
	"handler_test.go": testTemplate,
}

const configTemplate = `package {{ .PackageName }}

import (
	"time"

	"supplier-matching/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func NewConfig(wcfg config.WorkerConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = {{ .TimeoutSecs }} * time.Second
	}
	return &Config{Timeout: timeout}
}
`

const modelsTemplate = `package {{ .PackageName }}

type Input struct {
{{- range .InputFields }}
	{{ .GoName }} {{ .GoType }} ` + "`json:\"{{ .JSONName }}{{ if .Optional }},omitempty{{ end }}\"`" + `
{{- end }}
}

type Output struct {
{{- range .OutputFields }}
	{{ .GoName }} {{ .GoType }} ` + "`json:\"{{ .JSONName }}{{ if .Optional }},omitempty{{ end }}\"`" + `
{{- end }}
}

const inputSchema = ` + "`{{ .InputSchema }}`" + `
`

const handlerTemplate = `package {{ .PackageName }}

import (
	"context"
	"encoding/json"
	"fmt"

	"supplier-matching/internal/common/errors"
	"supplier-matching/internal/common/logger"
	"supplier-matching/internal/common/metrics"
	"supplier-matching/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "{{ .TaskType }}"
)

var inputValidator = validation.MustCompile(inputSchema)

// {{ .InterfaceName }} runs the {{ .Name }} step. {{ .Description }}
type {{ .InterfaceName }} interface {
	{{ .MethodName }}(ctx context.Context, input *Input) (*Output, error)
}

type Handler struct {
	config     *Config
	executor   {{ .InterfaceName }}
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, executor {{ .InterfaceName }}, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		executor:   executor,
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

	output, err := h.Execute(ctx, input)
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
	return h.executor.{{ .MethodName }}(ctx, input)
}
`

const testTemplate = `package {{ .PackageName }}

import (
	"context"
	"testing"
	"time"

	"supplier-matching/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeExecutor struct {
	output *Output
	err    error
}

func (f *fakeExecutor) {{ .MethodName }}(ctx context.Context, input *Input) (*Output, error) {
	return f.output, f.err
}

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func TestExecute(t *testing.T) {
	h := NewHandler(createTestConfig(), &fakeExecutor{output: &Output{}}, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.NotNil(t, out)
}

func TestParseInput_RejectsMalformedJSON(t *testing.T) {
	_, err := parseInput([]byte(` + "`not json`" + `))
	assert.Error(t, err)
}
`
