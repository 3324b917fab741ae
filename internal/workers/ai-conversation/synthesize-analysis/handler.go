// internal/workers/ai-conversation/synthesize-analysis/handler.go
package synthesizeanalysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "synthesize-analysis"
)

var (
	ErrLLMTimeout         = errors.New("LLM_TIMEOUT")
	ErrLLMSynthesisFailed = errors.New("LLM_SYNTHESIS_FAILED")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config *Config
	client *http.Client
	logger Logger
}

func NewHandler(config *Config, log Logger) *Handler {
	return &Handler{
		config: config,
		// No client timeout, the per-job context bounds every request
		client: &http.Client{},
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
		retries := int32(0)
		if errors.Is(err, ErrLLMTimeout) {
			retries = 1
		} else if errors.Is(err, ErrLLMSynthesisFailed) {
			retries = 1
		}
		h.failJob(client, job, err, retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	prompt := h.buildPrompt(input)
	requestBody := map[string]interface{}{
		"prompt": prompt,
		"context": map[string]interface{}{
			"campaignData": input.CampaignData,
			"benchmarks":   input.Benchmarks,
		},
		"max_tokens":  h.config.MaxTokens,
		"temperature": h.config.Temperature,
	}

	body, _ := json.Marshal(requestBody)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrLLMTimeout
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", h.config.GenAIBaseURL+"/api/ai/generate", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLLMSynthesisFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if h.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+h.config.APIKey)
		}

		resp, lastErr = h.client.Do(req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return nil, ErrLLMTimeout
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrLLMTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrLLMSynthesisFailed, lastErr)
	}

	if resp == nil {
		return nil, fmt.Errorf("%w: no successful response after retries", ErrLLMSynthesisFailed)
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Text       string   `json:"text"`
		Confidence float64  `json:"confidence"`
		Highlights []string `json:"highlights"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrLLMSynthesisFailed, err)
	}

	if strings.TrimSpace(apiResponse.Text) == "" {
		apiResponse.Text = "I don't have enough campaign data to answer that question."
		apiResponse.Confidence = 0.1
	}

	if apiResponse.Confidence < 0.0 || apiResponse.Confidence > 1.0 {
		apiResponse.Confidence = 0.5
	}

	h.logger.Info("analysis synthesis completed", map[string]interface{}{
		"confidence":     apiResponse.Confidence,
		"highlightCount": len(apiResponse.Highlights),
	})

	return &Output{
		AnalysisText: apiResponse.Text,
		Confidence:   apiResponse.Confidence,
		Highlights:   apiResponse.Highlights,
	}, nil
}

func (h *Handler) buildPrompt(input *Input) string {
	var parts []string

	parts = append(parts, "You are an advertising analytics assistant. Answer the user's question based ONLY on the provided campaign data and industry benchmarks.")
	parts = append(parts, fmt.Sprintf("\nUser Question: %s", input.Question))

	if len(input.CampaignData) > 0 {
		campaignJSON, _ := json.MarshalIndent(input.CampaignData, "", "  ")
		parts = append(parts, "\nCampaign Data:")
		parts = append(parts, string(campaignJSON))
	}

	if len(input.Benchmarks) > 0 {
		parts = append(parts, "\nIndustry Benchmarks:")
		for _, b := range input.Benchmarks {
			parts = append(parts, fmt.Sprintf("- %s %s %s: median %.2f (p25 %.2f, p75 %.2f)",
				b.Platform, b.Vertical, b.Metric, b.Median, b.P25, b.P75))
		}
	}

	if len(input.Conversation) > 0 {
		parts = append(parts, "\nConversation So Far:")
		for _, msg := range input.Conversation {
			parts = append(parts, fmt.Sprintf("%s: %s", msg.Role, msg.Content))
		}
	}

	parts = append(parts, "\nInstructions:")
	parts = append(parts, "- Compare metrics against benchmark medians where available")
	parts = append(parts, "- Present numeric summaries as markdown bullet lists or tables")
	parts = append(parts, "- If data is insufficient, say so clearly")
	parts = append(parts, "- Keep response concise and professional")
	parts = append(parts, "- Return confidence score between 0.0 and 1.0")

	parts = append(parts, "\nAnswer:")

	return strings.Join(parts, "\n")
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, retries int32) {
	errorCode := "UNKNOWN_ERROR"
	if errors.Is(err, ErrLLMTimeout) {
		errorCode = "LLM_TIMEOUT"
	} else if errors.Is(err, ErrLLMSynthesisFailed) {
		errorCode = "LLM_SYNTHESIS_FAILED"
	}

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     err.Error(),
		"errorCode": errorCode,
		"retries":   retries,
	})

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(err.Error()).
		Send(context.Background())
}

// Execute method for direct usage
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
