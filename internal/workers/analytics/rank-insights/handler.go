// internal/workers/analytics/rank-insights/handler.go
package rankinsights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"adinsight-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "rank-insights"
)

var (
	ErrNilInput = errors.New("input cannot be nil")
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
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
		h.failJob(client, job, "RANKING_FAILED", err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	start := time.Now()

	// Build map of details for O(1) lookup
	detailsMap := make(map[string]InsightDetail)
	for _, d := range input.InsightDetails {
		detailsMap[d.ID] = d
	}

	// Track processed IDs so duplicate candidates rank once
	processedIDs := make(map[string]bool)
	var ranked []RankedInsight

	for _, candidate := range input.Insights {
		if processedIDs[candidate.ID] {
			continue
		}

		detail, exists := detailsMap[candidate.ID]
		if !exists {
			// Skip insights without matching detail data
			continue
		}

		processedIDs[candidate.ID] = true

		// Search score: Elasticsearch relevance normalized to 0-100
		searchScore := math.Min(math.Max(candidate.Score*10.0, 0.0), 100.0)

		// Affinity: how well the insight matches the account's preferences
		affinityScore := h.calculateAffinityScore(&detail, &input.Preferences)

		// Engagement: views plus saves, clamped into 0-100
		totalEngagement := math.Max(float64(detail.ViewCount+detail.SaveCount), 0.0)
		engagementScore := math.Min(totalEngagement/10.0, 100.0)

		// Freshness: based on last update timestamp
		freshnessScore := h.calculateFreshnessScore(detail.UpdatedAt)

		finalScore := (searchScore*0.4 +
			affinityScore*0.3 +
			engagementScore*0.2 +
			freshnessScore*0.1)

		ranked = append(ranked, RankedInsight{
			ID:              detail.ID,
			Title:           detail.Title,
			FinalScore:      finalScore,
			SearchScore:     searchScore,
			AffinityScore:   affinityScore,
			EngagementScore: engagementScore,
			FreshnessScore:  freshnessScore,
		})
	}

	// Stable sort keeps input order for ties
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})

	if len(ranked) > h.config.MaxItems {
		ranked = ranked[:h.config.MaxItems]
	}

	duration := time.Since(start).Milliseconds()
	h.logger.Info("ranking completed", map[string]interface{}{
		"inputCount":  len(input.Insights),
		"outputCount": len(ranked),
		"durationMs":  duration,
	})

	if duration > 500 {
		h.logger.Warn("ranking exceeded 500ms", map[string]interface{}{
			"durationMs": duration,
		})
	}

	return &Output{RankedInsights: ranked}, nil
}

// calculateAffinityScore weighs an insight against account preferences:
// platform overlap (40%), focus metric overlap (35%), severity (25%).
func (h *Handler) calculateAffinityScore(detail *InsightDetail, prefs *UserPreferences) float64 {
	// Accounts without stated preferences get the neutral midpoint
	if len(prefs.Platforms) == 0 && len(prefs.FocusMetrics) == 0 {
		return 50.0
	}

	score := 0.0

	platformFit := 0.0
	if len(prefs.Platforms) > 0 && len(detail.Platforms) > 0 {
		for _, p := range prefs.Platforms {
			for _, dp := range detail.Platforms {
				if p == dp {
					platformFit = 100.0
					break
				}
			}
			if platformFit == 100.0 {
				break
			}
		}
	}
	score += platformFit * 0.4

	metricFit := 0.0
	if len(prefs.FocusMetrics) > 0 {
		for _, m := range prefs.FocusMetrics {
			for _, dm := range detail.Metrics {
				if m == dm {
					metricFit = 100.0
					break
				}
			}
			if metricFit == 100.0 {
				break
			}
		}
	}
	score += metricFit * 0.35

	severityFit := 40.0
	switch detail.Severity {
	case "critical":
		severityFit = 100.0
	case "warning":
		severityFit = 70.0
	}
	score += severityFit * 0.25

	return math.Min(score, 100.0)
}

func (h *Handler) calculateFreshnessScore(updatedAt string) float64 {
	if updatedAt == "" {
		return 50.0
	}

	t, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return 50.0
	}

	// Round to nearest day to handle floating point precision issues
	daysOld := math.Round(time.Since(t).Hours() / 24.0)

	switch {
	case daysOld <= 7:
		return 100.0
	case daysOld <= 30:
		return 80.0
	case daysOld <= 90:
		return 60.0
	case daysOld <= 180:
		return 40.0
	default:
		return 20.0
	}
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
