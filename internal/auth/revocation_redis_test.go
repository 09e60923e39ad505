package auth

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedisRevoker connects to REDIS_URL or skips the test.
func newTestRedisRevoker(t *testing.T) *RedisRevoker {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	r, err := NewRedisRevoker(url)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRedisRevoker(t *testing.T) {
	r := newTestRedisRevoker(t)
	ctx := context.Background()
	token := "test-token-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	t.Cleanup(func() { r.client.Del(context.Background(), redisKeyPrefix+TokenKey(token)) })

	revoked, err := r.IsRevoked(ctx, token)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, token, time.Now().Add(time.Minute)))

	revoked, err = r.IsRevoked(ctx, token)
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := r.client.TTL(ctx, redisKeyPrefix+TokenKey(token)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRedisRevokerSkipsExpiredTokens(t *testing.T) {
	r := newTestRedisRevoker(t)
	ctx := context.Background()
	token := "expired-token-" + strconv.FormatInt(time.Now().UnixNano(), 10)

	require.NoError(t, r.Revoke(ctx, token, time.Now().Add(-time.Minute)))

	revoked, err := r.IsRevoked(ctx, token)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestNewRedisRevokerUnreachable(t *testing.T) {
	_, err := NewRedisRevoker("127.0.0.1:1")
	assert.ErrorContains(t, err, "failed to connect to Redis")
}
