package checkusagequota

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"adinsight-workers/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:      5 * time.Second,
		MessageLimit: 200,
		WindowHours:  24,
		CacheTTL:     5 * time.Minute,
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func createTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func expectSubscriptionRow(mock sqlmock.Sqlmock, userID, tier string, messageLimit int, isActive bool) {
	rows := sqlmock.NewRows([]string{"user_id", "tier", "message_limit", "is_active"}).
		AddRow(userID, tier, messageLimit, isActive)
	mock.ExpectQuery(`SELECT user_id, tier, message_limit, is_active FROM user_subscriptions WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnRows(rows)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_FreeDefaultWhenNoSubscription(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT user_id, tier, message_limit, is_active FROM user_subscriptions WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnError(sql.ErrNoRows)

	handler := NewHandler(createTestConfig(), db, createTestRedis(t), createTestLogger(t))
	output, err := handler.execute(context.Background(), &Input{UserID: "user-1"})

	require.NoError(t, err)
	assert.True(t, output.Allowed)
	assert.Equal(t, "free", output.Tier)
	assert.Equal(t, 200, output.Limit)
	assert.Equal(t, 1, output.Used)
	assert.Equal(t, 199, output.Remaining)
	assert.NotEmpty(t, output.ResetAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_PremiumTierScalesLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	expectSubscriptionRow(mock, "user-2", "premium", 0, true)

	handler := NewHandler(createTestConfig(), db, createTestRedis(t), createTestLogger(t))
	output, err := handler.execute(context.Background(), &Input{UserID: "user-2"})

	require.NoError(t, err)
	assert.Equal(t, "premium", output.Tier)
	assert.Equal(t, 4000, output.Limit)
	assert.Equal(t, 3999, output.Remaining)
}

func TestHandler_Execute_RowLimitOverridesTier(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	expectSubscriptionRow(mock, "user-3", "premium", 50, true)

	handler := NewHandler(createTestConfig(), db, createTestRedis(t), createTestLogger(t))
	output, err := handler.execute(context.Background(), &Input{UserID: "user-3"})

	require.NoError(t, err)
	assert.Equal(t, 50, output.Limit)
	assert.Equal(t, 49, output.Remaining)
}

func TestHandler_Execute_SubscriptionCacheSkipsDatabase(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	sub := Subscription{UserID: "user-4", Tier: "basic", IsValid: true}
	data, _ := json.Marshal(sub)
	require.NoError(t, mr.Set("quota:sub:user-4", string(data)))

	// nil DB: any database access would panic, proving the cache hit.
	handler := NewHandler(createTestConfig(), nil, redisClient, createTestLogger(t))
	output, err := handler.execute(context.Background(), &Input{UserID: "user-4"})

	require.NoError(t, err)
	assert.Equal(t, "basic", output.Tier)
	assert.Equal(t, 1000, output.Limit)
}

func TestHandler_Execute_CountsAcrossCalls(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	expectSubscriptionRow(mock, "user-5", "free", 3, true)

	handler := NewHandler(createTestConfig(), db, createTestRedis(t), createTestLogger(t))

	for i := 1; i <= 3; i++ {
		output, err := handler.execute(context.Background(), &Input{UserID: "user-5"})
		require.NoError(t, err)
		assert.Equal(t, i, output.Used)
		assert.Equal(t, 3-i, output.Remaining)
	}

	output, err := handler.execute(context.Background(), &Input{UserID: "user-5"})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuotaExceeded))
	assert.Contains(t, err.Error(), "QUOTA_EXCEEDED")
	assert.Nil(t, output)
}

func TestHandler_Execute_UsageKeyGetsExpiry(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT user_id, tier, message_limit, is_active FROM user_subscriptions WHERE user_id = \$1`).
		WithArgs("user-6").
		WillReturnError(sql.ErrNoRows)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	handler := NewHandler(createTestConfig(), db, redisClient, createTestLogger(t))
	_, err = handler.execute(context.Background(), &Input{UserID: "user-6"})
	require.NoError(t, err)

	var usageKey string
	for _, key := range mr.Keys() {
		if strings.HasPrefix(key, "quota:usage:user-6:") {
			usageKey = key
		}
	}
	require.NotEmpty(t, usageKey)
	assert.Equal(t, 24*time.Hour, mr.TTL(usageKey))
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_InactiveSubscription(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	expectSubscriptionRow(mock, "user-7", "premium", 0, false)

	handler := NewHandler(createTestConfig(), db, createTestRedis(t), createTestLogger(t))
	output, err := handler.execute(context.Background(), &Input{UserID: "user-7"})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuotaExceeded))
	assert.Contains(t, err.Error(), "inactive")
	assert.Nil(t, output)
}

func TestHandler_Execute_DatabaseError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT user_id, tier, message_limit, is_active FROM user_subscriptions WHERE user_id = \$1`).
		WithArgs("user-8").
		WillReturnError(errors.New("connection refused"))

	handler := NewHandler(createTestConfig(), db, createTestRedis(t), createTestLogger(t))
	output, err := handler.execute(context.Background(), &Input{UserID: "user-8"})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuotaCheckFailed))
	assert.Nil(t, output)
}

func TestHandler_Execute_MissingUserID(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, createTestRedis(t), createTestLogger(t))

	output, err := handler.execute(context.Background(), &Input{})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuotaCheckFailed))
	assert.Nil(t, output)
}

// ==========================
// Redis Degradation Tests
// ==========================

// miniredis cannot be told to fail a command, so the Redis error paths use
// redismock instead.

func TestHandler_Execute_UsageLookupError(t *testing.T) {
	redisClient, mock := redismock.NewClientMock()

	sub := Subscription{UserID: "user-9", Tier: "basic", IsValid: true}
	data, _ := json.Marshal(sub)

	handler := NewHandler(createTestConfig(), nil, redisClient, createTestLogger(t))
	idx, _ := handler.currentWindow()

	mock.ExpectGet("quota:sub:user-9").SetVal(string(data))
	mock.ExpectGet(fmt.Sprintf("quota:usage:user-9:%d", idx)).
		SetErr(errors.New("LOADING Redis is loading the dataset in memory"))

	output, err := handler.execute(context.Background(), &Input{UserID: "user-9"})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuotaCheckFailed))
	assert.Contains(t, err.Error(), "usage lookup failed")
	assert.Nil(t, output)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_UsageIncrementError(t *testing.T) {
	redisClient, mock := redismock.NewClientMock()

	sub := Subscription{UserID: "user-10", Tier: "free", IsValid: true}
	data, _ := json.Marshal(sub)

	handler := NewHandler(createTestConfig(), nil, redisClient, createTestLogger(t))
	idx, _ := handler.currentWindow()
	usageKey := fmt.Sprintf("quota:usage:user-10:%d", idx)

	mock.ExpectGet("quota:sub:user-10").SetVal(string(data))
	mock.ExpectGet(usageKey).RedisNil()
	mock.ExpectIncr(usageKey).SetErr(errors.New("READONLY You can't write against a read only replica"))

	output, err := handler.execute(context.Background(), &Input{UserID: "user-10"})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuotaCheckFailed))
	assert.Contains(t, err.Error(), "usage increment failed")
	assert.Nil(t, output)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Window Derivation Tests
// ==========================

func TestCurrentWindow(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, nil, logger.NewNoOpLogger())

	idx, resetAt := handler.currentWindow()
	assert.Greater(t, idx, int64(0))

	reset, err := time.Parse(time.RFC3339, resetAt)
	require.NoError(t, err)
	assert.True(t, reset.After(time.Now()))
	assert.LessOrEqual(t, time.Until(reset), 24*time.Hour)
}
