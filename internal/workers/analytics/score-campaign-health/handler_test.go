// internal/workers/analytics/score-campaign-health/handler_test.go
package scorecampaignhealth

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"adinsight-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		CacheTTL: 10 * time.Minute,
		Timeout:  5 * time.Second,
	}
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func setupRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func createTestTargets() HealthTargets {
	return HealthTargets{
		BenchmarkCTR: 2.0,
		TargetROAS:   3.0,
	}
}

// Test logger implementing logger.Logger
type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_WithProvidedSnapshot(t *testing.T) {
	today := time.Now().Format("2006-01-02")

	tests := []struct {
		name           string
		snapshot       *CampaignSnapshot
		targets        HealthTargets
		expectedScore  int
		expectedStatus string
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name: "healthy campaign",
			snapshot: &CampaignSnapshot{
				CTR:            3.0,
				ROAS:           6.0,
				DailyBudget:    100,
				AvgDailySpend:  90,
				LastMetricDate: today,
			},
			targets:        createTestTargets(),
			expectedScore:  100,
			expectedStatus: "healthy",
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 100, output.HealthFactors.EngagementFit)
				assert.Equal(t, 100, output.HealthFactors.EfficiencyFit)
				assert.Equal(t, 100, output.HealthFactors.PacingFit)
				assert.Equal(t, 100, output.HealthFactors.FreshnessFit)
			},
		},
		{
			name: "solid but underdelivering",
			snapshot: &CampaignSnapshot{
				CTR:            2.0,
				ROAS:           3.0,
				DailyBudget:    100,
				AvgDailySpend:  60,
				LastMetricDate: today,
			},
			targets:        createTestTargets(),
			expectedScore:  78, // 80*0.30 + 80*0.30 + 60*0.25 + 100*0.15 = 24+24+15+15
			expectedStatus: "healthy",
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 80, output.HealthFactors.EngagementFit)
				assert.Equal(t, 80, output.HealthFactors.EfficiencyFit)
				assert.Equal(t, 60, output.HealthFactors.PacingFit)
			},
		},
		{
			name: "inefficient spend",
			snapshot: &CampaignSnapshot{
				CTR:            1.7,
				ROAS:           1.0,
				DailyBudget:    100,
				AvgDailySpend:  90,
				LastMetricDate: time.Now().UTC().Add(-48 * time.Hour).Format(time.RFC3339),
			},
			targets:        createTestTargets(),
			expectedScore:  61, // 60*0.30 + 20*0.30 + 100*0.25 + 80*0.15 = 18+6+25+12
			expectedStatus: "needs_attention",
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 60, output.HealthFactors.EngagementFit)
				assert.Equal(t, 20, output.HealthFactors.EfficiencyFit)
			},
		},
		{
			name: "stalled campaign",
			snapshot: &CampaignSnapshot{
				CTR:            0,
				ROAS:           0,
				DailyBudget:    100,
				AvgDailySpend:  0,
				LastMetricDate: time.Now().UTC().Add(-20 * 24 * time.Hour).Format(time.RFC3339),
			},
			targets:        createTestTargets(),
			expectedScore:  20, // 20*0.30 + 20*0.30 + 20*0.25 + 20*0.15
			expectedStatus: "at_risk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _ := setupMockDB(t)
			handler := NewHandler(createTestConfig(), db, setupRedis(t), newTestLogger(t))

			input := &Input{
				CampaignID: "campaign-123",
				Targets:    tt.targets,
				Snapshot:   tt.snapshot,
			}

			output, err := handler.Execute(context.Background(), input)

			assert.NoError(t, err)
			assert.NotNil(t, output)
			assert.Equal(t, tt.expectedScore, output.HealthScore)
			assert.Equal(t, tt.expectedStatus, output.HealthStatus)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestHandler_Execute_FetchSnapshot(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb := setupRedis(t)
	handler := NewHandler(createTestConfig(), db, rdb, newTestLogger(t))

	today := time.Now().Format("2006-01-02")

	// 10000 impressions / 250 clicks => 2.5% CTR, 2000/500 => 4.0 ROAS,
	// 500 cost over 5 active days => 100/day against a 200 budget
	mock.ExpectQuery(`SELECT c.daily_budget`).
		WithArgs("campaign-123").
		WillReturnRows(sqlmock.NewRows([]string{"daily_budget", "impressions", "clicks", "cost", "sales", "days", "last_date"}).
			AddRow(200.0, 10000, 250, 500.0, 2000.0, 5, today))

	input := &Input{
		CampaignID: "campaign-123",
		Targets:    createTestTargets(),
	}

	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.NotNil(t, output)
	// 100*0.30 + 80*0.30 + 60*0.25 + 100*0.15 = 30+24+15+15
	assert.Equal(t, 84, output.HealthScore)
	assert.Equal(t, "healthy", output.HealthStatus)
	assert.Equal(t, 100, output.HealthFactors.EngagementFit)
	assert.Equal(t, 80, output.HealthFactors.EfficiencyFit)
	assert.Equal(t, 60, output.HealthFactors.PacingFit)
	assert.Equal(t, 100, output.HealthFactors.FreshnessFit)
	assert.NoError(t, mock.ExpectationsWereMet())

	// Second run hits the snapshot cache: a db query would fail the test
	db2, mock2 := setupMockDB(t)
	handler2 := NewHandler(createTestConfig(), db2, rdb, newTestLogger(t))

	output2, err := handler2.Execute(context.Background(), input)
	assert.NoError(t, err)
	assert.Equal(t, 84, output2.HealthScore)
	assert.NoError(t, mock2.ExpectationsWereMet())
}

func TestHandler_Execute_NoSnapshot(t *testing.T) {
	db, _ := setupMockDB(t)
	handler := NewHandler(createTestConfig(), db, setupRedis(t), newTestLogger(t))

	input := &Input{
		CampaignID: "",
		Targets:    createTestTargets(),
	}

	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.NotNil(t, output)
	assert.Equal(t, 50, output.HealthScore)
	assert.Equal(t, "needs_attention", output.HealthStatus)
	assert.Equal(t, 50, output.HealthFactors.EngagementFit)
	assert.Equal(t, 50, output.HealthFactors.EfficiencyFit)
	assert.Equal(t, 50, output.HealthFactors.PacingFit)
	assert.Equal(t, 50, output.HealthFactors.FreshnessFit)
}

func TestHandler_Execute_SnapshotFetchFails(t *testing.T) {
	db, mock := setupMockDB(t)
	handler := NewHandler(createTestConfig(), db, setupRedis(t), newTestLogger(t))

	mock.ExpectQuery(`SELECT c.daily_budget`).
		WithArgs("campaign-404").
		WillReturnError(fmt.Errorf("connection refused"))

	input := &Input{
		CampaignID: "campaign-404",
		Targets:    createTestTargets(),
	}

	output, err := handler.Execute(context.Background(), input)

	// Fetch failure degrades to the neutral score instead of failing the job
	assert.NoError(t, err)
	assert.Equal(t, 50, output.HealthScore)
}

// ==========================
// Scoring Algorithm Tests
// ==========================

func TestHandler_ScoreEngagement(t *testing.T) {
	tests := []struct {
		name          string
		ctr           float64
		benchmark     float64
		expectedScore int
	}{
		{"well above benchmark", 2.5, 2.0, 100},
		{"at benchmark", 2.0, 2.0, 80},
		{"slightly under", 1.7, 2.0, 60},
		{"half of benchmark", 1.0, 2.0, 40},
		{"far below", 0.5, 2.0, 20},
		{"no benchmark", 2.0, 0, 50},
	}

	handler := NewHandler(createTestConfig(), nil, nil, newTestLogger(t))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedScore, handler.scoreEngagement(tt.ctr, tt.benchmark))
		})
	}
}

func TestHandler_ScoreEfficiency(t *testing.T) {
	tests := []struct {
		name          string
		roas          float64
		target        float64
		expectedScore int
	}{
		{"well above target", 4.5, 3.0, 100},
		{"at target", 3.0, 3.0, 80},
		{"three quarters", 2.3, 3.0, 60},
		{"half", 1.5, 3.0, 40},
		{"below half", 1.0, 3.0, 20},
		{"no target", 3.0, 0, 50},
	}

	handler := NewHandler(createTestConfig(), nil, nil, newTestLogger(t))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedScore, handler.scoreEfficiency(tt.roas, tt.target))
		})
	}
}

func TestHandler_ScorePacing(t *testing.T) {
	tests := []struct {
		name          string
		spend         float64
		budget        float64
		expectedScore int
	}{
		{"on pace", 90, 100, 100},
		{"at budget", 100, 100, 100},
		{"mild overspend", 110, 100, 70},
		{"runaway overspend", 130, 100, 40},
		{"underdelivery", 60, 100, 60},
		{"barely delivering", 20, 100, 30},
		{"no delivery", 0, 100, 20},
		{"no budget", 50, 0, 50},
	}

	handler := NewHandler(createTestConfig(), nil, nil, newTestLogger(t))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedScore, handler.scorePacing(tt.spend, tt.budget))
		})
	}
}

func TestHandler_ScoreFreshness(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, nil, newTestLogger(t))

	t.Run("today", func(t *testing.T) {
		date := time.Now().Format("2006-01-02")
		assert.Equal(t, 100, handler.scoreFreshness(date))
	})

	t.Run("two days ago", func(t *testing.T) {
		date := time.Now().UTC().Add(-48 * time.Hour).Format(time.RFC3339)
		assert.Equal(t, 80, handler.scoreFreshness(date))
	})

	t.Run("five days ago", func(t *testing.T) {
		date := time.Now().UTC().Add(-5 * 24 * time.Hour).Format(time.RFC3339)
		assert.Equal(t, 60, handler.scoreFreshness(date))
	})

	t.Run("ten days ago", func(t *testing.T) {
		date := time.Now().UTC().Add(-10 * 24 * time.Hour).Format(time.RFC3339)
		assert.Equal(t, 40, handler.scoreFreshness(date))
	})

	t.Run("three weeks ago", func(t *testing.T) {
		date := time.Now().UTC().Add(-21 * 24 * time.Hour).Format(time.RFC3339)
		assert.Equal(t, 20, handler.scoreFreshness(date))
	})

	t.Run("rfc3339 timestamp", func(t *testing.T) {
		date := time.Now().UTC().Format(time.RFC3339)
		assert.Equal(t, 100, handler.scoreFreshness(date))
	})

	t.Run("unparseable", func(t *testing.T) {
		assert.Equal(t, 50, handler.scoreFreshness("last tuesday"))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, 50, handler.scoreFreshness(""))
	})
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, "healthy", statusFor(100))
	assert.Equal(t, "healthy", statusFor(75))
	assert.Equal(t, "needs_attention", statusFor(74))
	assert.Equal(t, "needs_attention", statusFor(50))
	assert.Equal(t, "at_risk", statusFor(49))
	assert.Equal(t, "at_risk", statusFor(0))
}
