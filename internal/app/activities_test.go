package app

import (
	"testing"
	"time"

	"staff-assistant/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestActivities(t *testing.T) {
	cfg := &config.Config{
		App: config.AppConfig{Version: "1.2.0"},
		Workers: map[string]config.WorkerConfig{
			"query-staff-data": {Enabled: false, Timeout: 15000, MaxRetries: 5},
		},
	}
	now := time.Date(2024, time.June, 12, 10, 0, 0, 0, time.UTC)

	reg, err := Activities(cfg, now)
	require.NoError(t, err)

	assert.Equal(t, "1.2.0", reg.Version)
	assert.Equal(t, "2024-06-12T10:00:00Z", reg.LastUpdated)
	require.Len(t, reg.Activities, 3)

	query, ok := reg.Find("query-staff-data")
	require.True(t, ok)
	assert.False(t, query.Enabled)
	assert.Equal(t, "15s", query.Timeout)
	assert.Equal(t, 5, query.Retries)
	assert.Contains(t, query.ErrorCodes, "QUERY_TIMEOUT")
	assert.Equal(t, []interface{}{"intent"}, query.InputSchema["required"])

	// absent sections fall back to worker defaults
	answer, ok := reg.Find("answer-staff-question")
	require.True(t, ok)
	assert.True(t, answer.Enabled)
	assert.Equal(t, "30s", answer.Timeout)
	assert.Equal(t, 3, answer.Retries)
	assert.Equal(t, "object", answer.OutputSchema["type"])
}

func TestRetryWithBackoff(t *testing.T) {
	calls := 0
	err := retryWithBackoff(func() error {
		calls++
		if calls < 2 {
			return assert.AnError
		}
		return nil
	}, 3, time.Millisecond, zaptestLogger(t), "op")

	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	calls = 0
	err = retryWithBackoff(func() error {
		calls++
		return assert.AnError
	}, 0, time.Millisecond, zaptestLogger(t), "op")

	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, calls)
}

func zaptestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}
