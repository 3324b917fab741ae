// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler turns worker errors into FailJob or ThrowError commands.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError decides between another attempt and a BPMN error event.
// Retryable errors burn down the job's remaining retries, capped by the
// code's budget; once retries run out, or for errors that can never succeed,
// the error is thrown so the process takes its error path.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := h.normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	remaining := int(job.Retries) - 1
	if remaining > bpmnErr.Retries {
		remaining = bpmnErr.Retries
	}

	h.logError(job, stdErr, remaining)

	if stdErr.Retryable && remaining > 0 {
		h.failJob(ctx, client, job, bpmnErr, remaining)
		return
	}
	h.throwBPMNError(ctx, client, job, bpmnErr)
}

func (h *ErrorHandler) normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return NewInternalError(err)
}

func (h *ErrorHandler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, remaining int) {
	failCmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(remaining)).
		ErrorMessage(fmt.Sprintf("[%s] %s", bpmnErr.Code, bpmnErr.Message))

	var finalCmd interface {
		Send(context.Context) (*pb.FailJobResponse, error)
	} = failCmd

	if varCmd, varErr := failCmd.VariablesFromMap(bpmnErr.ToErrorVariables()); varErr == nil {
		finalCmd = varCmd
	}

	if _, sendErr := finalCmd.Send(ctx); sendErr != nil {
		h.logger.Error("Failed to fail job for retry", map[string]interface{}{
			"jobKey": job.Key,
			"error":  sendErr.Error(),
		})
	}
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	throwCmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	var finalCmd interface {
		Send(context.Context) (*pb.ThrowErrorResponse, error)
	} = throwCmd

	if varsJSON, marshalErr := json.Marshal(bpmnErr.ToErrorVariables()); marshalErr == nil {
		if varCmd, varErr := throwCmd.VariablesFromString(string(varsJSON)); varErr == nil {
			finalCmd = varCmd
		}
	}

	if _, sendErr := finalCmd.Send(ctx); sendErr != nil {
		h.logger.Error("Failed to throw BPMN error", map[string]interface{}{
			"jobKey": job.Key,
			"error":  sendErr.Error(),
		})
	}
}

func (h *ErrorHandler) logError(job entities.Job, stdErr *StandardError, remaining int) {
	h.logger.Error("Job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(stdErr.Code),
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"message":          stdErr.Message,
		"details":          stdErr.Details,
		"retryable":        stdErr.Retryable,
		"retriesLeft":      remaining,
		"workflowInstance": job.ProcessInstanceKey,
	})
}
