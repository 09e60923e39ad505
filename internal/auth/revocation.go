package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker keeps the set of session tokens that were logged out before
// their natural expiry. Entries are keyed by the token's SHA-256 digest.
type Revoker interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// TokenKey returns the revocation key of a token.
func TokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// NopRevoker keeps no state: logout only drops the client cookie and a
// token remains valid until it expires.
type NopRevoker struct{}

func (NopRevoker) Revoke(context.Context, string, time.Time) error { return nil }

func (NopRevoker) IsRevoked(context.Context, string) (bool, error) { return false, nil }

// MemoryRevoker is a process-local revocation set.
type MemoryRevoker struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevoker creates an empty in-process revocation set.
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{entries: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryRevoker) Revoke(_ context.Context, token string, expiresAt time.Time) error {
	if !expiresAt.After(m.now()) {
		return nil
	}
	m.mu.Lock()
	m.entries[TokenKey(token)] = expiresAt
	m.mu.Unlock()
	return nil
}

func (m *MemoryRevoker) IsRevoked(_ context.Context, token string) (bool, error) {
	m.mu.RLock()
	expiresAt, ok := m.entries[TokenKey(token)]
	m.mu.RUnlock()
	return ok && expiresAt.After(m.now()), nil
}

// Sweep drops entries whose token has expired anyway and returns how many were removed.
func (m *MemoryRevoker) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, expiresAt := range m.entries {
		if !expiresAt.After(now) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked entries.
func (m *MemoryRevoker) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

const redisKeyPrefix = "revoked:"

// RedisRevoker stores revoked tokens in Redis with a TTL equal to the
// token's remaining lifetime, so the set cleans itself up.
type RedisRevoker struct {
	client *redis.Client
}

// NewRedisRevoker connects to Redis and verifies the connection.
func NewRedisRevoker(redisURL string) (*RedisRevoker, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		// If URL parsing fails, try as simple host:port
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisRevoker{client: client}, nil
}

func (r *RedisRevoker) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, redisKeyPrefix+TokenKey(token), "1", ttl).Err()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, token string) (bool, error) {
	count, err := r.client.Exists(ctx, redisKeyPrefix+TokenKey(token)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Close releases the Redis connection pool.
func (r *RedisRevoker) Close() error {
	return r.client.Close()
}
