// internal/workers/communication/send-report/models.go
package sendreport

import (
	"database/sql"

	"adinsight-workers/internal/common/logger"
)

const (
	TypeScheduledReport  = "scheduled_report"
	TypePerformanceAlert = "performance_alert"
)

const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

type Input struct {
	RecipientID string                 `json:"recipientId"`
	ReportType  string                 `json:"reportType"`
	AccountID   string                 `json:"accountId,omitempty"`
	Priority    string                 `json:"priority,omitempty"`
	ReportData  map[string]interface{} `json:"reportData,omitempty"`
}

type Output struct {
	ReportID string   `json:"reportId"`
	Status   string   `json:"status"`
	Channels []string `json:"channels"`
	SentAt   string   `json:"sentAt"`
}

type ServiceDependencies struct {
	DB     *sql.DB
	SES    SESService
	SNS    SNSService
	Logger logger.Logger
}
