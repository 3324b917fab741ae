// internal/workers/ai-conversation/query-campaign-data/handler_test.go
package querycampaigndata

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
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

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, l.mergeFields(fields))
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

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:    2 * time.Second,
		CacheTTL:   5 * time.Minute,
		MaxResults: 25,
	}
}

func setupRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func createTestEntities() []Entity {
	return []Entity{
		{Type: "campaign_name", Value: "Summer Sale"},
		{Type: "platform", Value: "google_ads"},
	}
}

func createTestInput(dataSources []string) *Input {
	return &Input{
		AccountID:   "acct-1",
		Entities:    createTestEntities(),
		DataSources: dataSources,
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_CacheHit(t *testing.T) {
	rdb := setupRedis(t)
	db, mock := setupMockDB(t)

	cachedData := map[string]interface{}{
		"campaigns": []interface{}{
			map[string]interface{}{"id": "c-1", "name": "Summer Sale", "platform": "google_ads"},
		},
	}
	cacheJSON, _ := json.Marshal(cachedData)
	cacheKey := "ai:campaign:acct-1:campaign_name:Summer Sale|platform:google_ads"
	err := rdb.Set(context.Background(), cacheKey, cacheJSON, 5*time.Minute).Err()
	assert.NoError(t, err)

	handler := NewHandler(createTestConfig(), db, &elasticsearch.Client{}, rdb, NewTestLogger(t))

	output, err := handler.execute(context.Background(), createTestInput([]string{"campaign_db", "search_index"}))

	assert.NoError(t, err)
	assert.NotNil(t, output)
	assert.Contains(t, output.CampaignData, "campaigns")

	// No database call happened
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_PostgreSQLQuery(t *testing.T) {
	rdb := setupRedis(t)
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT id, name, platform, status, daily_budget FROM campaigns WHERE account_id`).
		WithArgs("acct-1", "%Summer Sale%", 25).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "platform", "status", "daily_budget"}).
			AddRow("c-1", "Summer Sale", "google_ads", "active", 150.0))

	mock.ExpectQuery(`SELECT c.id, c.name, COALESCE`).
		WithArgs("acct-1", "%Summer Sale%", 25).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "impressions", "clicks", "cost", "sales"}).
			AddRow("c-1", "Summer Sale", 10000, 250, 500.0, 2000.0))

	mock.ExpectQuery(`SELECT platform, COUNT`).
		WithArgs("acct-1", "google_ads").
		WillReturnRows(sqlmock.NewRows([]string{"platform", "count", "total_daily_budget"}).
			AddRow("google_ads", 3, 450.0))

	handler := NewHandler(createTestConfig(), db, &elasticsearch.Client{}, rdb, NewTestLogger(t))

	output, err := handler.execute(context.Background(), createTestInput([]string{"campaign_db"}))

	assert.NoError(t, err)
	assert.NotNil(t, output)
	assert.Contains(t, output.CampaignData, "campaigns")
	assert.Contains(t, output.CampaignData, "recentMetrics")
	assert.Contains(t, output.CampaignData, "platformSummary")

	metrics, ok := output.CampaignData["recentMetrics"].([]map[string]interface{})
	assert.True(t, ok)
	assert.Len(t, metrics, 1)
	assert.InDelta(t, 2.5, metrics[0]["ctr"], 0.001)
	assert.InDelta(t, 4.0, metrics[0]["roas"], 0.001)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ResultsAreCached(t *testing.T) {
	rdb := setupRedis(t)
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT platform, COUNT`).
		WithArgs("acct-1", "google_ads").
		WillReturnRows(sqlmock.NewRows([]string{"platform", "count", "total_daily_budget"}).
			AddRow("google_ads", 2, 300.0))

	input := &Input{
		AccountID:   "acct-1",
		Entities:    []Entity{{Type: "platform", Value: "google_ads"}},
		DataSources: []string{"campaign_db"},
	}

	handler := NewHandler(createTestConfig(), db, &elasticsearch.Client{}, rdb, NewTestLogger(t))

	_, err := handler.execute(context.Background(), input)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	// Second run with a fresh mock: any query would fail the test
	db2, mock2 := setupMockDB(t)
	handler2 := NewHandler(createTestConfig(), db2, &elasticsearch.Client{}, rdb, NewTestLogger(t))

	output, err := handler2.execute(context.Background(), input)
	assert.NoError(t, err)
	assert.Contains(t, output.CampaignData, "platformSummary")
	assert.NoError(t, mock2.ExpectationsWereMet())
}

func TestHandler_Execute_NoDataSources(t *testing.T) {
	rdb := setupRedis(t)
	db, _ := setupMockDB(t)

	handler := NewHandler(createTestConfig(), db, &elasticsearch.Client{}, rdb, NewTestLogger(t))

	output, err := handler.execute(context.Background(), createTestInput([]string{}))

	assert.NoError(t, err)
	assert.NotNil(t, output)
	assert.Empty(t, output.CampaignData)
}

func TestHandler_Execute_DatabaseError(t *testing.T) {
	rdb := setupRedis(t)
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT id, name, platform, status, daily_budget FROM campaigns WHERE account_id`).
		WillReturnError(fmt.Errorf("connection refused"))

	handler := NewHandler(createTestConfig(), db, &elasticsearch.Client{}, rdb, NewTestLogger(t))

	output, err := handler.execute(context.Background(), createTestInput([]string{"campaign_db"}))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "CAMPAIGN_DATA_QUERY_FAILED")
	assert.Contains(t, err.Error(), "postgres")
	assert.Nil(t, output)
}

func TestHandler_Execute_MissingAccountID(t *testing.T) {
	rdb := setupRedis(t)
	db, _ := setupMockDB(t)

	handler := NewHandler(createTestConfig(), db, &elasticsearch.Client{}, rdb, NewTestLogger(t))

	input := createTestInput([]string{"campaign_db"})
	input.AccountID = ""

	output, err := handler.execute(context.Background(), input)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accountId is required")
	assert.Nil(t, output)
}

func TestHandler_Execute_ElasticsearchQuery(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Elasticsearch integration test in short mode")
	}

	rdb := setupRedis(t)
	db, _ := setupMockDB(t)

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
	})
	if err != nil {
		t.Skipf("Skipping test: cannot connect to Elasticsearch: %v", err)
	}

	res, err := esClient.Ping()
	if err != nil || res.IsError() {
		t.Skipf("Skipping test: Elasticsearch not available: %v", err)
	}
	res.Body.Close()

	handler := NewHandler(createTestConfig(), db, esClient, rdb, NewTestLogger(t))

	output, err := handler.execute(context.Background(), createTestInput([]string{"search_index"}))
	if err != nil {
		assert.Contains(t, err.Error(), "CAMPAIGN_DATA_QUERY_FAILED")
	} else {
		assert.NotNil(t, output)
	}
}

// ==========================
// Unit Tests
// ==========================

func TestHandler_BuildCacheKey(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, nil, nil, NewTestLogger(t))

	tests := []struct {
		name     string
		entities []Entity
		expected string
	}{
		{
			name: "multiple entities",
			entities: []Entity{
				{Type: "campaign_name", Value: "Summer Sale"},
				{Type: "platform", Value: "google_ads"},
				{Type: "status", Value: "active"},
			},
			expected: "ai:campaign:acct-1:campaign_name:Summer Sale|platform:google_ads|status:active",
		},
		{
			name:     "empty entities",
			entities: []Entity{},
			expected: "ai:campaign:acct-1:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := handler.buildCacheKey("acct-1", tt.entities)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestHandler_ExtractFilters(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, nil, nil, NewTestLogger(t))

	tests := []struct {
		name     string
		entities []Entity
		expected map[string]interface{}
	}{
		{
			name: "all entity types",
			entities: []Entity{
				{Type: "campaign_name", Value: "Summer Sale"},
				{Type: "campaign_name", Value: "Black Friday"},
				{Type: "platform", Value: "google_ads"},
				{Type: "status", Value: "active"},
				{Type: "budget", Value: "$1,500"},
			},
			expected: map[string]interface{}{
				"campaign_names": []string{"Summer Sale", "Black Friday"},
				"platforms":      []string{"google_ads"},
				"statuses":       []string{"active"},
				"min_budget":     1500,
			},
		},
		{
			name:     "empty entities",
			entities: []Entity{},
			expected: map[string]interface{}{},
		},
		{
			name: "invalid budget ignored",
			entities: []Entity{
				{Type: "budget", Value: "a lot"},
			},
			expected: map[string]interface{}{},
		},
		{
			name: "unknown entity type ignored",
			entities: []Entity{
				{Type: "metric", Value: "ctr"},
			},
			expected: map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := handler.extractFilters(tt.entities)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestHandler_DataSourceGating(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, nil, nil, NewTestLogger(t))

	tests := []struct {
		name        string
		dataSources []string
		wantDB      bool
		wantES      bool
	}{
		{"both sources", []string{"campaign_db", "search_index"}, true, true},
		{"db only", []string{"campaign_db"}, true, false},
		{"es only", []string{"search_index"}, false, true},
		{"unknown sources", []string{"external_web"}, false, false},
		{"empty", []string{}, false, false},
		{"nil", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantDB, handler.shouldQueryDB(tt.dataSources))
			assert.Equal(t, tt.wantES, handler.shouldQueryES(tt.dataSources))
		})
	}
}

func TestHandler_BuildSearchQuery(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, nil, nil, NewTestLogger(t))

	filters := map[string]interface{}{
		"campaign_names": []string{"Summer Sale"},
		"platforms":      []string{"google_ads", "meta_ads"},
		"statuses":       []string{"active"},
		"min_budget":     500,
	}

	queryBody := handler.buildSearchQuery("acct-1", filters)
	data, err := json.Marshal(queryBody)
	assert.NoError(t, err)

	body := string(data)
	assert.Contains(t, body, `"account_id":"acct-1"`)
	assert.Contains(t, body, `"name":"Summer Sale"`)
	assert.Contains(t, body, `"platform.keyword":["google_ads","meta_ads"]`)
	assert.Contains(t, body, `"status.keyword":["active"]`)
	assert.Contains(t, body, `"gte":500`)
	assert.Contains(t, body, `"size":25`)
}

func TestHandler_ParseMoney(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, nil, nil, NewTestLogger(t))

	tests := []struct {
		input    string
		expected int
		wantErr  bool
	}{
		{"$1,500", 1500, false},
		{"2000", 2000, false},
		{"$100,000.00", 10000000, false},
		{"free", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := handler.parseMoney(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}
