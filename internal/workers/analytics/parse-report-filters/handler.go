// internal/workers/analytics/parse-report-filters/handler.go
package parsereportfilters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"adinsight-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "parse-report-filters"

const dateLayout = "2006-01-02"

var (
	ErrInvalidFilterFormat = errors.New("INVALID_FILTER_FORMAT")
)

var validPlatforms = map[string]bool{
	"google_ads": true, "meta_ads": true, "amazon_ads": true, "tiktok_ads": true,
}

var validMetrics = map[string]bool{
	"ctr": true, "cpc": true, "cpm": true, "cvr": true, "roas": true,
	"acos": true, "spend": true, "impressions": true, "clicks": true,
}

var validSortOptions = map[string]bool{
	"date": true, "spend": true, "roas": true, "name": true,
}

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
		h.failJob(client, job, "INVALID_FILTER_FORMAT", err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.RawFilters == nil {
		input.RawFilters = make(map[string]interface{})
	}

	now := time.Now()
	fromTime := now.AddDate(0, 0, -30)
	toTime := now

	// Defaults: trailing thirty days, newest first, first page of twenty
	parsed := ParsedFilters{
		Platforms:  []string{},
		Metrics:    []string{},
		DateRange:  DateRange{From: fromTime.Format(dateLayout), To: toTime.Format(dateLayout)},
		SpendRange: SpendRange{Min: 0, Max: 10000000},
		Keywords:   "",
		SortBy:     "date",
		Pagination: Pagination{Page: 1, Size: 20},
	}

	// Parse platforms
	if platformsRaw, ok := input.RawFilters["platforms"]; ok {
		parsed.Platforms = h.parseStringArray(platformsRaw)
		for _, p := range parsed.Platforms {
			if !validPlatforms[p] {
				return nil, fmt.Errorf("%w: invalid platform '%s'", ErrInvalidFilterFormat, p)
			}
		}
	}

	// Parse metrics
	if metricsRaw, ok := input.RawFilters["metrics"]; ok {
		parsed.Metrics = h.parseStringArray(metricsRaw)
		for _, m := range parsed.Metrics {
			if !validMetrics[m] {
				return nil, fmt.Errorf("%w: invalid metric '%s'", ErrInvalidFilterFormat, m)
			}
		}
	}

	// Parse date range
	if dateRangeRaw, ok := input.RawFilters["dateRange"]; ok {
		if drMap, ok := dateRangeRaw.(map[string]interface{}); ok {
			if fromRaw, exists := drMap["from"]; exists {
				if s, ok := fromRaw.(string); ok && strings.TrimSpace(s) != "" {
					t, err := time.Parse(dateLayout, strings.TrimSpace(s))
					if err != nil {
						return nil, fmt.Errorf("%w: invalid date '%s'", ErrInvalidFilterFormat, strings.TrimSpace(s))
					}
					fromTime = t
					parsed.DateRange.From = t.Format(dateLayout)
				}
			}

			if toRaw, exists := drMap["to"]; exists {
				if s, ok := toRaw.(string); ok && strings.TrimSpace(s) != "" {
					t, err := time.Parse(dateLayout, strings.TrimSpace(s))
					if err != nil {
						return nil, fmt.Errorf("%w: invalid date '%s'", ErrInvalidFilterFormat, strings.TrimSpace(s))
					}
					toTime = t
					parsed.DateRange.To = t.Format(dateLayout)
				}
			}

			if fromTime.After(toTime) {
				return nil, fmt.Errorf("%w: date range from (%s) after to (%s)",
					ErrInvalidFilterFormat, parsed.DateRange.From, parsed.DateRange.To)
			}
		}
	}

	// Parse spend range
	if spendRangeRaw, ok := input.RawFilters["spendRange"]; ok {
		if srMap, ok := spendRangeRaw.(map[string]interface{}); ok {
			if minRaw, exists := srMap["min"]; exists {
				if min, err := h.parseInt(minRaw); err == nil {
					if min >= 0 {
						parsed.SpendRange.Min = min
					}
				}
			}

			if maxRaw, exists := srMap["max"]; exists {
				if max, err := h.parseInt(maxRaw); err == nil {
					if max > 0 && max <= 10000000 {
						parsed.SpendRange.Max = max
					}
				}
			}

			if parsed.SpendRange.Min > parsed.SpendRange.Max {
				return nil, fmt.Errorf("%w: spend min (%d) > max (%d)",
					ErrInvalidFilterFormat, parsed.SpendRange.Min, parsed.SpendRange.Max)
			}
		}
	}

	// Parse keywords
	if keywordsRaw, ok := input.RawFilters["keywords"]; ok {
		if s, ok := keywordsRaw.(string); ok {
			parsed.Keywords = strings.TrimSpace(s)
		}
	}

	// Parse sortBy with validation
	if sortByRaw, ok := input.RawFilters["sortBy"]; ok {
		if s, ok := sortByRaw.(string); ok {
			s = strings.TrimSpace(s)
			if validSortOptions[s] {
				parsed.SortBy = s
			} else {
				return nil, fmt.Errorf("%w: invalid sortBy '%s'", ErrInvalidFilterFormat, s)
			}
		}
	}

	// Parse pagination
	if paginationRaw, ok := input.RawFilters["pagination"]; ok {
		if pgMap, ok := paginationRaw.(map[string]interface{}); ok {
			if pageRaw, exists := pgMap["page"]; exists {
				if page, err := h.parseInt(pageRaw); err == nil {
					if page >= 1 {
						parsed.Pagination.Page = page
					}
				}
			}

			if sizeRaw, exists := pgMap["size"]; exists {
				if size, err := h.parseInt(sizeRaw); err == nil {
					// Values above 100 are capped at 100
					if size >= 1 {
						if size <= 100 {
							parsed.Pagination.Size = size
						} else {
							parsed.Pagination.Size = 100
						}
					}
				}
			}
		}
	}

	h.logger.Info("filters parsed successfully", map[string]interface{}{
		"platforms":  parsed.Platforms,
		"metrics":    parsed.Metrics,
		"dateRange":  parsed.DateRange,
		"spendRange": parsed.SpendRange,
		"keywords":   parsed.Keywords,
		"sortBy":     parsed.SortBy,
		"pagination": parsed.Pagination,
	})

	return &Output{ParsedFilters: parsed}, nil
}

func (h *Handler) parseStringArray(raw interface{}) []string {
	// Always return non-nil slice
	result := []string{}

	if raw == nil {
		return result
	}

	seen := make(map[string]bool) // For deduplication

	switch v := raw.(type) {
	case string:
		if v != "" {
			parts := strings.Split(v, ",")
			for _, s := range parts {
				trimmed := strings.TrimSpace(s)
				if trimmed != "" && !seen[trimmed] {
					result = append(result, trimmed)
					seen[trimmed] = true
				}
			}
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				trimmed := strings.TrimSpace(s)
				if trimmed != "" && !seen[trimmed] {
					result = append(result, trimmed)
					seen[trimmed] = true
				}
			}
		}
	case []string:
		for _, s := range v {
			trimmed := strings.TrimSpace(s)
			if trimmed != "" && !seen[trimmed] {
				result = append(result, trimmed)
				seen[trimmed] = true
			}
		}
	}

	return result
}

func (h *Handler) parseInt(raw interface{}) (int, error) {
	if raw == nil {
		return 0, errors.New("cannot parse nil as integer")
	}

	switch v := raw.(type) {
	case float64:
		if v < 0 || v != float64(int(v)) {
			return 0, errors.New("not a valid positive integer")
		}
		return int(v), nil

	case int:
		if v < 0 {
			return 0, errors.New("negative integer not allowed")
		}
		return v, nil

	case int64:
		if v < 0 {
			return 0, errors.New("negative integer not allowed")
		}
		return int(v), nil

	case string:
		// Monetary strings arrive as "USD 50,000.00" and must become
		// 50000, not 5000000

		cleaned := strings.ReplaceAll(v, " ", "")
		cleaned = strings.ReplaceAll(cleaned, "$", "")
		cleaned = strings.ReplaceAll(cleaned, "USD", "")
		cleaned = strings.ReplaceAll(cleaned, ",", "")

		// Truncate at the decimal point
		if strings.Contains(cleaned, ".") {
			parts := strings.Split(cleaned, ".")
			cleaned = parts[0]
		}

		re := regexp.MustCompile(`[^\d]+`)
		cleaned = re.ReplaceAllString(cleaned, "")

		if cleaned == "" {
			return 0, errors.New("not a number")
		}

		num, err := strconv.Atoi(cleaned)
		if err != nil {
			return 0, fmt.Errorf("strconv.Atoi failed: %w", err)
		}
		if num < 0 {
			return 0, errors.New("negative integer not allowed")
		}
		return num, nil

	default:
		return 0, errors.New("not a number")
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
