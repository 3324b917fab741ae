// internal/workers/ai-conversation/classify-message/handler.go
package classifymessage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"

	"adinsight-workers/internal/common/logger"
	"adinsight-workers/internal/common/metrics"
	"adinsight-workers/internal/common/observability"
	"adinsight-workers/internal/insights/classify"
	"adinsight-workers/internal/models"
)

const (
	TaskType = "classify-message"
)

var (
	ErrClassificationFailed = errors.New("CLASSIFICATION_FAILED")
)

type Handler struct {
	config     *Config
	classifier *classify.Classifier
	tracing    *observability.Tracing
	logger     logger.Logger
}

func NewHandler(config *Config, tracing *observability.Tracing, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		classifier: classify.New(),
		tracing:    tracing,
		logger:     log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "CLASSIFICATION_FAILED", err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: input cannot be nil", ErrClassificationFailed)
	}

	role := models.MessageRole(input.Role)
	if role != models.RoleUser && role != models.RoleAssistant {
		return nil, fmt.Errorf("%w: unknown role %q", ErrClassificationFailed, input.Role)
	}

	_, span := h.tracing.StartSpan(ctx, "classify-message",
		attribute.String("message.role", input.Role),
		attribute.Int("message.length", len(input.Content)),
	)
	defer span.End()

	createdAt := time.Now().UTC()
	if input.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339, input.CreatedAt); err == nil {
			createdAt = t
		}
	}

	msg := models.RawMessage{
		Role:      role,
		Content:   input.Content,
		CreatedAt: createdAt,
	}

	descriptors := h.classifier.Classify(msg)

	metrics.MessagesClassified.WithLabelValues(input.Role).Inc()
	for _, desc := range descriptors {
		metrics.VisualizationsExtracted.WithLabelValues(string(desc.Shape)).Inc()
	}
	span.SetAttributes(attribute.Int("visualization.count", len(descriptors)))

	h.logger.Info("message classified", map[string]interface{}{
		"role":               input.Role,
		"contentLength":      len(input.Content),
		"visualizationCount": len(descriptors),
	})

	return &Output{
		Visualizations:     descriptors,
		VisualizationCount: len(descriptors),
		HasVisualizations:  len(descriptors) > 0,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
