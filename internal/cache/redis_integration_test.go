//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests require a running Redis server.
// Set TEST_REDIS_URL to run them, e.g. TEST_REDIS_URL=redis://localhost:6379/15

func getTestRedis(t *testing.T) *Redis {
	t.Helper()

	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL not set, skipping integration test")
	}

	r, err := NewRedis(context.Background(), redisURL, "test:"+uuid.NewString()+":")
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestIntegration_RedisSetGet(t *testing.T) {
	r := getTestRedis(t)
	ctx := context.Background()

	_, ok, err := r.Get(ctx, "lookup:1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, "lookup:1", []byte(`{"idMeal":"1"}`), time.Minute))

	got, ok, err := r.Get(ctx, "lookup:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"idMeal":"1"}`, string(got))
}

func TestIntegration_RedisExpiry(t *testing.T) {
	r := getTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "short", []byte("v"), 50*time.Millisecond))
	time.Sleep(150 * time.Millisecond)

	_, ok, err := r.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)
}
