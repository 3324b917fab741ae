// internal/workers/ai-conversation/synthesize-analysis/handler_test.go
package synthesizeanalysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Logger Implementation
// ==========================

// TestLogger implements the Logger interface for testing
type TestLogger struct {
	t      *testing.T
	fields map[string]interface{}
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{
		t:      t,
		fields: make(map[string]interface{}),
	}
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	newLogger := &TestLogger{
		t:      l.t,
		fields: make(map[string]interface{}),
	}
	for k, v := range l.fields {
		newLogger.fields[k] = v
	}
	for k, v := range fields {
		newLogger.fields[k] = v
	}
	return newLogger
}

func (l *TestLogger) mergeFields(fields map[string]interface{}) map[string]interface{} {
	allFields := make(map[string]interface{})
	for k, v := range l.fields {
		allFields[k] = v
	}
	for k, v := range fields {
		allFields[k] = v
	}
	return allFields
}

// BenchmarkLogger is a minimal logger for benchmarks
type BenchmarkLogger struct{}

func (b *BenchmarkLogger) Info(msg string, fields map[string]interface{})  {}
func (b *BenchmarkLogger) Error(msg string, fields map[string]interface{}) {}
func (b *BenchmarkLogger) With(fields map[string]interface{}) Logger       { return b }

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		GenAIBaseURL: "http://localhost:8080",
		Timeout:      30 * time.Second,
		MaxRetries:   2,
		MaxTokens:    1024,
		Temperature:  0.2,
	}
}

func createGenAIResponse(text string, confidence float64, highlights []string) string {
	response := map[string]interface{}{
		"text":       text,
		"confidence": confidence,
		"highlights": highlights,
	}
	data, _ := json.Marshal(response)
	return string(data)
}

func createTestInput() *Input {
	return &Input{
		Question: "How is my Summer Sale campaign doing against the industry?",
		CampaignData: map[string]interface{}{
			"campaignId": "campaign-123",
			"ctr":        2.5,
			"roas":       4.0,
		},
		Benchmarks: []Benchmark{
			{Platform: "google_ads", Vertical: "retail", Metric: "ctr", Median: 2.1, P25: 1.4, P75: 3.2},
		},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		apiResponse    string
		expectedText   string
		expectedConf   float64
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name: "complete response",
			apiResponse: createGenAIResponse(
				"Your CTR of 2.5% beats the retail median of 2.1%.",
				0.92,
				[]string{"CTR above median", "ROAS healthy"},
			),
			expectedText: "Your CTR of 2.5% beats the retail median of 2.1%.",
			expectedConf: 0.92,
			validateOutput: func(t *testing.T, output *Output) {
				assert.Len(t, output.Highlights, 2)
			},
		},
		{
			name:         "empty text falls back to canned answer",
			apiResponse:  createGenAIResponse("   ", 0.8, nil),
			expectedText: "I don't have enough campaign data to answer that question.",
			expectedConf: 0.1,
		},
		{
			name:         "confidence above range is reset",
			apiResponse:  createGenAIResponse("All good.", 1.7, nil),
			expectedText: "All good.",
			expectedConf: 0.5,
		},
		{
			name:         "confidence below range is reset",
			apiResponse:  createGenAIResponse("All good.", -0.2, nil),
			expectedText: "All good.",
			expectedConf: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "POST", r.Method)
				assert.Equal(t, "/api/ai/generate", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var reqBody map[string]interface{}
				err := json.NewDecoder(r.Body).Decode(&reqBody)
				assert.NoError(t, err)

				prompt, ok := reqBody["prompt"].(string)
				assert.True(t, ok)
				assert.Contains(t, prompt, "How is my Summer Sale campaign doing")
				assert.Contains(t, prompt, "google_ads retail ctr: median 2.10")
				assert.Contains(t, prompt, "campaign-123")
				assert.Equal(t, float64(1024), reqBody["max_tokens"])

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(tt.apiResponse))
			}))
			defer server.Close()

			config := createTestConfig()
			config.GenAIBaseURL = server.URL
			handler := NewHandler(config, NewTestLogger(t))

			output, err := handler.execute(context.Background(), createTestInput())

			assert.NoError(t, err)
			assert.NotNil(t, output)
			assert.Equal(t, tt.expectedText, output.AnalysisText)
			assert.Equal(t, tt.expectedConf, output.Confidence)

			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestHandler_Execute_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond) // slow API
	}))
	defer server.Close()

	config := createTestConfig()
	config.GenAIBaseURL = server.URL
	config.Timeout = 50 * time.Millisecond
	handler := NewHandler(config, NewTestLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	start := time.Now()
	output, err := handler.execute(ctx, createTestInput())
	elapsed := time.Since(start)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrLLMTimeout))
	assert.Nil(t, output)

	// timeout happens immediately, no retries
	assert.Less(t, elapsed, 150*time.Millisecond)
}

func TestHandler_Execute_RetriesTransientFailure(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(createGenAIResponse("Recovered.", 0.7, nil)))
	}))
	defer server.Close()

	config := createTestConfig()
	config.GenAIBaseURL = server.URL
	handler := NewHandler(config, NewTestLogger(t))

	output, err := handler.execute(context.Background(), createTestInput())

	assert.NoError(t, err)
	assert.Equal(t, "Recovered.", output.AnalysisText)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHandler_Execute_AllRetriesExhausted(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	config := createTestConfig()
	config.GenAIBaseURL = server.URL
	handler := NewHandler(config, NewTestLogger(t))

	output, err := handler.execute(context.Background(), createTestInput())

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrLLMSynthesisFailed))
	assert.Contains(t, err.Error(), "status 502")
	assert.Nil(t, output)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls)) // initial try + 2 retries
}

func TestHandler_Execute_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("{not valid json"))
	}))
	defer server.Close()

	config := createTestConfig()
	config.GenAIBaseURL = server.URL
	handler := NewHandler(config, NewTestLogger(t))

	output, err := handler.execute(context.Background(), createTestInput())

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrLLMSynthesisFailed))
	assert.Contains(t, err.Error(), "decode error")
	assert.Nil(t, output)
}

func TestHandler_Execute_SendsAuthHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(createGenAIResponse("ok", 0.5, nil)))
	}))
	defer server.Close()

	config := createTestConfig()
	config.GenAIBaseURL = server.URL
	config.APIKey = "secret-key"
	handler := NewHandler(config, NewTestLogger(t))

	_, err := handler.execute(context.Background(), createTestInput())
	assert.NoError(t, err)
}

// ==========================
// Prompt Builder Tests
// ==========================

func TestBuildPrompt(t *testing.T) {
	handler := NewHandler(createTestConfig(), &BenchmarkLogger{})

	input := createTestInput()
	input.Conversation = []PriorMessage{
		{Role: "user", Content: "Hi"},
		{Role: "assistant", Content: "Hello, how can I help with your campaigns?"},
	}

	prompt := handler.buildPrompt(input)

	assert.Contains(t, prompt, "User Question: How is my Summer Sale campaign doing")
	assert.Contains(t, prompt, "Campaign Data:")
	assert.Contains(t, prompt, `"campaignId": "campaign-123"`)
	assert.Contains(t, prompt, "- google_ads retail ctr: median 2.10 (p25 1.40, p75 3.20)")
	assert.Contains(t, prompt, "Conversation So Far:")
	assert.Contains(t, prompt, "assistant: Hello, how can I help")
	assert.True(t, strings.HasSuffix(prompt, "Answer:"))
}

func TestBuildPrompt_OmitsEmptySections(t *testing.T) {
	handler := NewHandler(createTestConfig(), &BenchmarkLogger{})

	prompt := handler.buildPrompt(&Input{Question: "Anything new?"})

	assert.NotContains(t, prompt, "Campaign Data:")
	assert.NotContains(t, prompt, "Industry Benchmarks:")
	assert.NotContains(t, prompt, "Conversation So Far:")
}

// ==========================
// Benchmark Tests
// ==========================

func BenchmarkBuildPrompt(b *testing.B) {
	handler := NewHandler(createTestConfig(), &BenchmarkLogger{})
	input := createTestInput()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.buildPrompt(input)
	}
}
