// internal/workers/analytics/score-campaign-health/handler.go
package scorecampaignhealth

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
	TaskType = "score-campaign-health"
)

var (
	ErrHealthScoreFailed = errors.New("HEALTH_SCORE_FAILED")
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
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
		h.failJob(client, job, "HEALTH_SCORE_FAILED", err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	var snapshot *CampaignSnapshot
	if input.Snapshot != nil {
		snapshot = input.Snapshot
	} else if input.CampaignID != "" {
		var err error
		snapshot, err = h.getCampaignSnapshot(ctx, input.CampaignID)
		if err != nil {
			h.logger.Warn("failed to fetch campaign snapshot", map[string]interface{}{
				"campaignId": input.CampaignID,
				"error":      err,
			})
		}
	}

	if snapshot == nil {
		return &Output{
			HealthScore:  50,
			HealthStatus: statusFor(50),
			HealthFactors: HealthFactors{
				EngagementFit: 50,
				EfficiencyFit: 50,
				PacingFit:     50,
				FreshnessFit:  50,
			},
		}, nil
	}

	engagement := h.scoreEngagement(snapshot.CTR, input.Targets.BenchmarkCTR)
	efficiency := h.scoreEfficiency(snapshot.ROAS, input.Targets.TargetROAS)
	pacing := h.scorePacing(snapshot.AvgDailySpend, snapshot.DailyBudget)
	freshness := h.scoreFreshness(snapshot.LastMetricDate)

	finalScore := int(
		float64(engagement)*0.30 +
			float64(efficiency)*0.30 +
			float64(pacing)*0.25 +
			float64(freshness)*0.15)

	factors := HealthFactors{
		EngagementFit: engagement,
		EfficiencyFit: efficiency,
		PacingFit:     pacing,
		FreshnessFit:  freshness,
	}

	h.logger.Info("health score calculated", map[string]interface{}{
		"campaignId": input.CampaignID,
		"score":      finalScore,
		"factors":    factors,
	})

	return &Output{
		HealthScore:   finalScore,
		HealthStatus:  statusFor(finalScore),
		HealthFactors: factors,
	}, nil
}

func (h *Handler) getCampaignSnapshot(ctx context.Context, campaignID string) (*CampaignSnapshot, error) {
	cacheKey := "campaign:snapshot:" + campaignID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var snapshot CampaignSnapshot
		if err := json.Unmarshal([]byte(val), &snapshot); err == nil {
			return &snapshot, nil
		}
	}

	row := h.db.QueryRowContext(ctx, `
		SELECT c.daily_budget,
		       COALESCE(SUM(m.impressions), 0),
		       COALESCE(SUM(m.clicks), 0),
		       COALESCE(SUM(m.cost), 0),
		       COALESCE(SUM(m.attributed_sales), 0),
		       COUNT(m.date),
		       COALESCE(MAX(m.date)::text, '')
		FROM campaigns c
		LEFT JOIN campaign_daily_metrics m
		  ON c.id = m.campaign_id AND m.date >= CURRENT_DATE - 30
		WHERE c.id = $1
		GROUP BY c.daily_budget`, campaignID)

	var dailyBudget, cost, sales float64
	var impressions, clicks int64
	var activeDays int
	var lastDate string
	if err := row.Scan(&dailyBudget, &impressions, &clicks, &cost, &sales, &activeDays, &lastDate); err != nil {
		return nil, err
	}

	snapshot := CampaignSnapshot{
		DailyBudget:    dailyBudget,
		LastMetricDate: lastDate,
	}
	if impressions > 0 {
		snapshot.CTR = float64(clicks) / float64(impressions) * 100
	}
	if cost > 0 {
		snapshot.ROAS = sales / cost
	}
	if activeDays > 0 {
		snapshot.AvgDailySpend = cost / float64(activeDays)
	}

	data, _ := json.Marshal(snapshot)
	h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)

	return &snapshot, nil
}

func (h *Handler) scoreEngagement(ctr, benchmarkCTR float64) int {
	if benchmarkCTR == 0 {
		return 50
	}
	if ctr >= benchmarkCTR*1.2 {
		return 100
	} else if ctr >= benchmarkCTR {
		return 80
	} else if ctr >= benchmarkCTR*0.8 {
		return 60
	} else if ctr >= benchmarkCTR*0.5 {
		return 40
	}
	return 20
}

func (h *Handler) scoreEfficiency(roas, targetROAS float64) int {
	if targetROAS == 0 {
		return 50
	}
	if roas >= targetROAS*1.5 {
		return 100
	} else if roas >= targetROAS {
		return 80
	} else if roas >= targetROAS*0.75 {
		return 60
	} else if roas >= targetROAS*0.5 {
		return 40
	}
	return 20
}

func (h *Handler) scorePacing(avgDailySpend, dailyBudget float64) int {
	if dailyBudget == 0 {
		return 50
	}
	ratio := avgDailySpend / dailyBudget
	if ratio >= 0.8 && ratio <= 1.05 {
		return 100
	} else if ratio > 1.2 {
		return 40
	} else if ratio > 1.05 {
		return 70
	} else if ratio >= 0.5 {
		return 60
	} else if ratio > 0 {
		return 30
	}
	return 20
}

func (h *Handler) scoreFreshness(lastMetricDate string) int {
	if lastMetricDate == "" {
		return 50
	}
	parsed, err := time.Parse("2006-01-02", lastMetricDate)
	if err != nil {
		if parsed, err = time.Parse(time.RFC3339, lastMetricDate); err != nil {
			return 50
		}
	}

	days := int(time.Since(parsed).Hours() / 24)
	if days <= 1 {
		return 100
	} else if days <= 3 {
		return 80
	} else if days <= 7 {
		return 60
	} else if days <= 14 {
		return 40
	}
	return 20
}

func statusFor(score int) string {
	if score >= 75 {
		return "healthy"
	} else if score >= 50 {
		return "needs_attention"
	}
	return "at_risk"
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
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
