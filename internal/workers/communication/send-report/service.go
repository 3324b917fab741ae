// internal/workers/communication/send-report/service.go
package sendreport

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"

	"adinsight-workers/internal/common/errors"
	"adinsight-workers/internal/common/logger"
	"adinsight-workers/internal/common/validation"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Service struct {
	config      *Config
	db          *sql.DB
	logger      logger.Logger
	sesClient   SESService
	snsClient   SNSService
	templateMap map[string]map[string]interface{}
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:      config,
		db:          deps.DB,
		logger:      deps.Logger,
		sesClient:   deps.SES,
		snsClient:   deps.SNS,
		templateMap: loadTemplates(),
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	reportID := uuid.New().String()

	s.logger.Info("Delivering report", map[string]interface{}{
		"reportId":    reportID,
		"recipientId": input.RecipientID,
		"reportType":  input.ReportType,
		"priority":    input.Priority,
	})

	tmpl, exists := s.templateMap[input.ReportType]
	if !exists {
		return nil, errors.NewTemplateNotFoundError(input.ReportType)
	}

	email, phone, err := s.getRecipientContact(ctx, input.RecipientID)
	if err != nil {
		// A recipient without a contact row has report delivery turned off.
		s.logger.Warn("Recipient contact not found, skipping delivery", map[string]interface{}{
			"reportId":    reportID,
			"recipientId": input.RecipientID,
		})
		return &Output{
			ReportID: reportID,
			Status:   StatusDisabled,
			Channels: []string{},
			SentAt:   time.Now().Format(time.RFC3339),
		}, nil
	}

	subject, body := s.renderTemplate(tmpl, input)
	channels := []string{}

	if s.config.EmailEnabled {
		if !validation.ValidateEmail(email) {
			return nil, errors.NewReportValidationFailedError(
				fmt.Sprintf("recipient %s has an invalid email address", input.RecipientID))
		}
		if err := s.sendEmail(ctx, email, subject, body); err != nil {
			s.logger.Error("Report email delivery failed", map[string]interface{}{
				"reportId":    reportID,
				"recipientId": input.RecipientID,
				"error":       err.Error(),
			})
			return nil, errors.NewReportSendFailedError("email", err)
		}
		channels = append(channels, "email")
	}

	// SMS is a best-effort alert channel and never fails the job.
	if s.config.SMSEnabled && phone != "" && input.Priority == "high" {
		if !validation.ValidatePhone(phone) {
			s.logger.Warn("Recipient phone is not E.164, skipping SMS alert", map[string]interface{}{
				"reportId":    reportID,
				"recipientId": input.RecipientID,
			})
		} else if err := s.sendSMS(ctx, phone, subject); err != nil {
			s.logger.Warn("Report SMS alert failed", map[string]interface{}{
				"reportId":    reportID,
				"recipientId": input.RecipientID,
				"error":       err.Error(),
			})
		} else {
			channels = append(channels, "sms")
		}
	}

	status := StatusSent
	if len(channels) == 0 {
		status = StatusDisabled
	}

	s.logger.Info("Report delivery complete", map[string]interface{}{
		"reportId": reportID,
		"status":   status,
		"channels": strings.Join(channels, ","),
	})

	return &Output{
		ReportID: reportID,
		Status:   status,
		Channels: channels,
		SentAt:   time.Now().Format(time.RFC3339),
	}, nil
}

func (s *Service) getRecipientContact(ctx context.Context, recipientID string) (string, string, error) {
	var email, phone sql.NullString

	query := `SELECT email, phone FROM users WHERE id = $1`
	err := s.db.QueryRowContext(ctx, query, recipientID).Scan(&email, &phone)
	if err != nil {
		return "", "", fmt.Errorf("recipient lookup failed: %w", err)
	}

	return email.String, phone.String, nil
}

func (s *Service) renderTemplate(tmpl map[string]interface{}, input *Input) (string, string) {
	subject, _ := tmpl["subject"].(string)
	body, _ := tmpl["body"].(string)

	data := map[string]interface{}{
		"accountId": input.AccountID,
	}
	for k, v := range input.ReportData {
		data[k] = v
	}

	return substitute(subject, data), substitute(body, data)
}

// substitute fills {{key}} placeholders and strips any left unfilled.
func substitute(text string, data map[string]interface{}) string {
	for key, value := range data {
		placeholder := "{{" + key + "}}"
		switch v := value.(type) {
		case string:
			text = strings.ReplaceAll(text, placeholder, v)
		case int:
			text = strings.ReplaceAll(text, placeholder, fmt.Sprintf("%d", v))
		case float64:
			text = strings.ReplaceAll(text, placeholder, fmt.Sprintf("%.2f", v))
		default:
			text = strings.ReplaceAll(text, placeholder, fmt.Sprintf("%v", v))
		}
	}

	for {
		start := strings.Index(text, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(text[start:], "}}")
		if end == -1 {
			break
		}
		text = text[:start] + text[start+end+2:]
	}

	return text
}

func (s *Service) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := s.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(s.config.FromEmail),
	})
	return err
}

func (s *Service) sendSMS(ctx context.Context, to, message string) error {
	_, err := s.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}

func loadTemplates() map[string]map[string]interface{} {
	return map[string]map[string]interface{}{
		TypeScheduledReport: {
			"subject": "Your {{period}} ad performance report",
			"body": "Hi {{recipientName}}, the {{period}} report for account {{accountId}} is ready. " +
				"Total spend: {{totalSpend}}. Average ROAS: {{avgRoas}}. " +
				"Open the dashboard for the full breakdown.",
		},
		TypePerformanceAlert: {
			"subject": "Performance alert: {{metric}} on {{campaignName}}",
			"body": "Heads up {{recipientName}}, {{metric}} on campaign {{campaignName}} moved to {{value}} " +
				"({{changePercent}} versus the prior week). Account: {{accountId}}.",
		},
	}
}
