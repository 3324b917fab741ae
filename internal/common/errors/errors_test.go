// internal/common/errors/errors_test.go
package errors

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConvertToBPMNError_RetryableGetsBudget(t *testing.T) {
	stdErr := NewReportSendFailedError("email", fmt.Errorf("ses throttled"))

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "REPORT_SEND_FAILED", bpmnErr.Code)
	assert.True(t, bpmnErr.Retryable)
	assert.Equal(t, 3, bpmnErr.Retries)
	assert.Equal(t, "REPORT_SEND_FAILED", bpmnErr.ErrorVariables["originalErrorCode"])
	assert.NotEmpty(t, bpmnErr.ErrorVariables["timestamp"])
}

func TestConvertToBPMNError_NonRetryableGetsZeroRetries(t *testing.T) {
	stdErr := NewTemplateNotFoundError("quarterly_novel")

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "TEMPLATE_NOT_FOUND", bpmnErr.Code)
	assert.False(t, bpmnErr.Retryable)
	assert.Equal(t, 0, bpmnErr.Retries)
}

func TestToErrorVariables_MergesExtras(t *testing.T) {
	bpmnErr := &BPMNError{
		Code:      "REPORT_SEND_FAILED",
		Message:   "Report delivery failed",
		Retryable: true,
		ErrorVariables: map[string]interface{}{
			"channel": "email",
		},
	}

	vars := bpmnErr.ToErrorVariables()

	assert.Equal(t, "REPORT_SEND_FAILED", vars["errorCode"])
	assert.Equal(t, "Report delivery failed", vars["errorMessage"])
	assert.Equal(t, true, vars["retryable"])
	assert.Equal(t, "email", vars["channel"])
}

func TestGetRetryCount(t *testing.T) {
	assert.Equal(t, 3, GetRetryCount(ErrCodeReportSendFailed))
	assert.Equal(t, 3, GetRetryCount(ErrCodeExternalService))
	assert.Equal(t, 2, GetRetryCount(ErrCodeTimeout))
	assert.Equal(t, 0, GetRetryCount(ErrCodeTemplateNotFound))
	assert.Equal(t, 0, GetRetryCount(ErrorCode("SOMETHING_ELSE")))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "TEMPLATE", GetErrorCategory(ErrCodeTemplateNotFound))
	assert.Equal(t, "REPORT", GetErrorCategory(ErrCodeReportSendFailed))
	assert.Equal(t, "TIMEOUT", GetErrorCategory(ErrCodeTimeout))
	assert.Equal(t, "AUTH", GetErrorCategory(ErrCodeAuthentication))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestStandardError_Error(t *testing.T) {
	stdErr := &StandardError{
		Code:      ErrCodeReportValidationFailed,
		Message:   "Report request validation failed",
		Timestamp: time.Now().UTC(),
	}

	assert.Equal(t,
		"StandardError[REPORT_VALIDATION_FAILED]: Report request validation failed",
		stdErr.Error())
}
