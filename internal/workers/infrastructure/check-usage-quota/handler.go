// internal/workers/infrastructure/check-usage-quota/handler.go
package checkusagequota

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"adinsight-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "check-usage-quota"
)

var (
	ErrQuotaExceeded    = errors.New("QUOTA_EXCEEDED")
	ErrQuotaCheckFailed = errors.New("QUOTA_CHECK_FAILED")
)

// tierMultipliers scale the base message limit per subscription tier.
var tierMultipliers = map[string]int{
	"free":       1,
	"basic":      5,
	"premium":    20,
	"enterprise": 100,
}

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redisClient *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redisClient,
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
		if errors.Is(err, ErrQuotaExceeded) {
			errorCode = "QUOTA_EXCEEDED"
			retries = 0
		} else if errors.Is(err, ErrQuotaCheckFailed) {
			errorCode = "QUOTA_CHECK_FAILED"
			retries = 3
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrQuotaCheckFailed)
	}

	sub, err := h.getSubscription(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuotaCheckFailed, err)
	}

	if !sub.IsValid {
		return nil, fmt.Errorf("%w: subscription for user %s is inactive", ErrQuotaExceeded, input.UserID)
	}

	limit := h.limitFor(sub)
	windowIdx, resetAt := h.currentWindow()
	usageKey := fmt.Sprintf("quota:usage:%s:%d", input.UserID, windowIdx)

	used, err := h.redis.Get(ctx, usageKey).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("%w: usage lookup failed: %v", ErrQuotaCheckFailed, err)
	}
	if used >= limit {
		return nil, fmt.Errorf("%w: %d of %d messages used, window resets at %s",
			ErrQuotaExceeded, used, limit, resetAt)
	}

	newUsed, err := h.redis.Incr(ctx, usageKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: usage increment failed: %v", ErrQuotaCheckFailed, err)
	}
	if newUsed == 1 {
		h.redis.Expire(ctx, usageKey, time.Duration(h.config.WindowHours)*time.Hour)
	}

	remaining := limit - int(newUsed)
	if remaining < 0 {
		remaining = 0
	}

	h.logger.Info("quota check passed", map[string]interface{}{
		"userId":    input.UserID,
		"tier":      sub.Tier,
		"used":      newUsed,
		"limit":     limit,
		"remaining": remaining,
	})

	return &Output{
		Allowed:   true,
		Tier:      sub.Tier,
		Limit:     limit,
		Used:      int(newUsed),
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

func (h *Handler) getSubscription(ctx context.Context, userID string) (*Subscription, error) {
	cacheKey := "quota:sub:" + userID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var sub Subscription
		if err := json.Unmarshal([]byte(val), &sub); err == nil {
			return &sub, nil
		}
	}

	var sub Subscription
	err := h.db.QueryRowContext(ctx, `
		SELECT user_id, tier, message_limit, is_active
		FROM user_subscriptions
		WHERE user_id = $1`, userID).Scan(
		&sub.UserID, &sub.Tier, &sub.MessageLimit, &sub.IsValid,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Accounts without a subscription row ride the free tier.
			sub = Subscription{UserID: userID, Tier: "free", IsValid: true}
		} else {
			return nil, err
		}
	}

	data, _ := json.Marshal(sub)
	h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)

	return &sub, nil
}

func (h *Handler) limitFor(sub *Subscription) int {
	if sub.MessageLimit > 0 {
		return sub.MessageLimit
	}
	multiplier, ok := tierMultipliers[sub.Tier]
	if !ok {
		multiplier = 1
	}
	return h.config.MessageLimit * multiplier
}

// currentWindow returns the index of the active quota window and the time
// the next one opens.
func (h *Handler) currentWindow() (int64, string) {
	windowSeconds := int64(h.config.WindowHours) * 3600
	idx := time.Now().Unix() / windowSeconds
	resetAt := time.Unix((idx+1)*windowSeconds, 0).UTC().Format(time.RFC3339)
	return idx, resetAt
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, _ int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
