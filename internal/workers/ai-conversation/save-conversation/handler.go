// internal/workers/ai-conversation/save-conversation/handler.go
package saveconversation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"adinsight-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "save-conversation"

	// Conversation titles come from the first user message, clipped so the
	// sidebar listing stays readable.
	maxTitleLength = 80
)

var (
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
	ErrDuplicateMessage     = errors.New("DUPLICATE_MESSAGE")
)

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		errorCode := "UNKNOWN_ERROR"
		retries := int32(0)
		if errors.Is(err, ErrDatabaseInsertFailed) {
			errorCode = "DATABASE_INSERT_FAILED"
			retries = 3
		} else if errors.Is(err, ErrDuplicateMessage) {
			errorCode = "DUPLICATE_MESSAGE"
			retries = 0
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.AccountID == "" || input.Content == "" {
		return nil, fmt.Errorf("%w: accountId and content are required", ErrDatabaseInsertFailed)
	}

	now := time.Now().UTC().Format(time.RFC3339)

	messageID := input.MessageID
	if messageID != "" {
		var exists bool
		err := h.db.QueryRowContext(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM conversation_messages
				WHERE id = $1
			)`, messageID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("%w: duplicate check failed: %v", ErrDatabaseInsertFailed, err)
		}
		if exists {
			return nil, fmt.Errorf("%w: message %s already stored", ErrDuplicateMessage, messageID)
		}
	} else {
		messageID = uuid.New().String()
	}

	conversationID := input.ConversationID
	if conversationID == "" {
		conversationID = uuid.New().String()
		_, err := h.db.ExecContext(ctx, `
			INSERT INTO conversations (id, account_id, title, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $4)`,
			conversationID,
			input.AccountID,
			deriveTitle(input.Content),
			now,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: conversation insert failed: %v", ErrDatabaseInsertFailed, err)
		}
	} else {
		_, err := h.db.ExecContext(ctx, `
			UPDATE conversations SET updated_at = $2 WHERE id = $1`,
			conversationID, now,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: conversation touch failed: %v", ErrDatabaseInsertFailed, err)
		}
	}

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO conversation_messages (id, conversation_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		messageID,
		conversationID,
		input.Role,
		input.Content,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: message insert failed: %v", ErrDatabaseInsertFailed, err)
	}

	// Audit log entry is non-critical, log error but don't fail
	auditDetailsJSON, err := json.Marshal(map[string]interface{}{
		"conversationId": conversationID,
		"accountId":      input.AccountID,
		"role":           input.Role,
		"contentLength":  len(input.Content),
	})
	if err != nil {
		h.logger.Warn("failed to marshal audit log details", map[string]interface{}{
			"error": err,
		})
		auditDetailsJSON = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"message_saved",
		"conversation_message",
		messageID,
		auditDetailsJSON,
		now,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":     err,
			"messageId": messageID,
		})
	}

	h.logger.Info("conversation message saved", map[string]interface{}{
		"conversationId": conversationID,
		"messageId":      messageID,
		"accountId":      input.AccountID,
		"role":           input.Role,
	})

	return &Output{
		ConversationID: conversationID,
		MessageID:      messageID,
		CreatedAt:      now,
	}, nil
}

func deriveTitle(content string) string {
	title := strings.TrimSpace(content)
	if idx := strings.IndexAny(title, "\r\n"); idx >= 0 {
		title = title[:idx]
	}
	if len(title) > maxTitleLength {
		title = strings.TrimSpace(title[:maxTitleLength])
	}
	if title == "" {
		title = "New conversation"
	}
	return title
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
