// internal/workers/ai-conversation/fetch-benchmarks/handler.go
package fetchbenchmarks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "fetch-benchmarks"
)

var (
	ErrBenchmarkTimeout = errors.New("BENCHMARK_API_TIMEOUT")
)

// knownMetrics lists the metrics the benchmark provider publishes.
var knownMetrics = map[string]bool{
	"ctr":  true,
	"cpc":  true,
	"cpm":  true,
	"cvr":  true,
	"roas": true,
	"acos": true,
}

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type benchmarkRow struct {
	Platform string  `json:"platform"`
	Vertical string  `json:"vertical"`
	Metric   string  `json:"metric"`
	Median   float64 `json:"median"`
	P25      float64 `json:"p25"`
	P75      float64 `json:"p75"`
}

type Handler struct {
	config *Config
	client *http.Client
	logger Logger
}

func NewHandler(config *Config, log Logger) *Handler {
	return &Handler{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Errorf("parse input: %w", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		if errors.Is(err, ErrBenchmarkTimeout) {
			h.failJob(client, job, err, 0)
		} else {
			h.logger.Warn("benchmark fetch failed, continuing with empty benchmarks", map[string]interface{}{
				"error": err.Error(),
			})
			output = &Output{
				Benchmarks:  []Benchmark{},
				RetrievedAt: time.Now().UTC().Format(time.RFC3339),
			}
			h.completeJob(client, job, output)
		}
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	requestURL := h.buildRequestURL(input)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrBenchmarkTimeout
			}
		}

		req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
		if err != nil {
			return nil, err
		}
		if h.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+h.config.APIKey)
		}

		resp, lastErr = h.client.Do(req)
		if lastErr != nil {
			if ctx.Err() == context.DeadlineExceeded ||
				strings.Contains(lastErr.Error(), "timeout") ||
				strings.Contains(lastErr.Error(), "deadline") ||
				strings.Contains(lastErr.Error(), "Client.Timeout") {
				return nil, ErrBenchmarkTimeout
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			break
		}
		resp.Body.Close()
		lastErr = fmt.Errorf("benchmark API returned %d", resp.StatusCode)
		resp = nil
	}

	if resp == nil {
		return nil, lastErr
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Benchmarks []benchmarkRow `json:"benchmarks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, err
	}

	benchmarks := h.processBenchmarks(apiResponse.Benchmarks)

	h.logger.Info("benchmark fetch completed", map[string]interface{}{
		"platform":       input.Platform,
		"vertical":       input.Vertical,
		"benchmarkCount": len(benchmarks),
	})

	return &Output{
		Benchmarks:  benchmarks,
		RetrievedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) buildRequestURL(input *Input) string {
	baseURL, _ := url.Parse(h.config.BenchmarksAPIBaseURL)
	params := url.Values{}
	if input.Platform != "" {
		params.Add("platform", input.Platform)
	}
	if input.Vertical != "" {
		params.Add("vertical", input.Vertical)
	}
	if len(input.Metrics) > 0 {
		params.Add("metrics", strings.Join(input.Metrics, ","))
	}
	baseURL.RawQuery = params.Encode()
	return baseURL.String()
}

func (h *Handler) processBenchmarks(rows []benchmarkRow) []Benchmark {
	seen := make(map[string]bool)
	var benchmarks []Benchmark

	for _, row := range rows {
		metric := strings.ToLower(strings.TrimSpace(row.Metric))
		if !knownMetrics[metric] {
			continue
		}

		// Dedupe by platform + vertical + metric
		key := row.Platform + "|" + row.Vertical + "|" + metric
		if seen[key] {
			continue
		}
		seen[key] = true

		if row.Median <= 0 {
			continue
		}

		// Repair percentiles that contradict the median
		p25, p75 := row.P25, row.P75
		if p25 <= 0 || p25 > row.Median {
			p25 = row.Median
		}
		if p75 < row.Median {
			p75 = row.Median
		}

		benchmarks = append(benchmarks, Benchmark{
			Platform: row.Platform,
			Vertical: row.Vertical,
			Metric:   metric,
			Median:   row.Median,
			P25:      p25,
			P75:      p75,
		})
	}

	// Sort for deterministic output
	sort.Slice(benchmarks, func(i, j int) bool {
		if benchmarks[i].Platform != benchmarks[j].Platform {
			return benchmarks[i].Platform < benchmarks[j].Platform
		}
		return benchmarks[i].Metric < benchmarks[j].Metric
	})

	if len(benchmarks) > h.config.MaxBenchmarks {
		benchmarks = benchmarks[:h.config.MaxBenchmarks]
	}

	return benchmarks
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}

	if _, sendErr := cmd.Send(context.Background()); sendErr != nil {
		h.logger.Error("Failed to send complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  sendErr.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, retries int32) {
	errorCode := "UNKNOWN_ERROR"
	if errors.Is(err, ErrBenchmarkTimeout) {
		errorCode = "BENCHMARK_API_TIMEOUT"
	}

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     err.Error(),
		"errorCode": errorCode,
	})

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(err.Error()).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
