package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/datascientist-hue/live-dashboard/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// TokenRevoker invalidates session tokens before their natural expiry, such
// as on logout or account deletion.
type TokenRevoker interface {
	// Revoke marks a token's JTI as revoked until ttl elapses.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	// IsRevoked reports whether a JTI has been revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryTokenRevoker keeps revocations in process memory. Sufficient for a
// single-instance deployment; revocations are lost on restart, which only
// shortens the window in favor of re-login.
type MemoryTokenRevoker struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

// NewMemoryTokenRevoker creates an in-memory revocation store.
func NewMemoryTokenRevoker() *MemoryTokenRevoker {
	return &MemoryTokenRevoker{revoked: make(map[string]time.Time)}
}

// Revoke marks a JTI as revoked.
func (m *MemoryTokenRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = time.Now().Add(ttl)
	m.sweep()
	return nil
}

// IsRevoked reports whether a JTI is currently revoked.
func (m *MemoryTokenRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	until, ok := m.revoked[jti]
	if !ok {
		return false, nil
	}
	return time.Now().Before(until), nil
}

// sweep drops expired entries; called with the lock held.
func (m *MemoryTokenRevoker) sweep() {
	now := time.Now()
	for jti, until := range m.revoked {
		if now.After(until) {
			delete(m.revoked, jti)
		}
	}
}

// RedisTokenRevoker implements TokenRevoker on Redis so revocations are
// shared across instances and survive restarts.
type RedisTokenRevoker struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisTokenRevoker connects to Redis and verifies the connection.
func NewRedisTokenRevoker(cfg config.RedisConfig) (*RedisTokenRevoker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis for token revocation: %w", err)
	}

	return &RedisTokenRevoker{client: client, keyPrefix: "token:revoked:"}, nil
}

// Revoke marks a JTI as revoked with a TTL matching the remaining token life.
func (r *RedisTokenRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.keyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether a JTI is revoked.
func (r *RedisTokenRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exists, err := r.client.Exists(ctx, r.keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return exists > 0, nil
}

// Close releases the Redis connection.
func (r *RedisTokenRevoker) Close() error {
	return r.client.Close()
}
