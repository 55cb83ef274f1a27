package lease

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
)

// PassLease guards one reconciliation pass per channel. Acquire returns false
// when another process (or a previous unfinished pass) holds the lease; the
// caller skips the pass instead of queueing behind it. The TTL bounds how long
// a crashed holder can block the channel.
type PassLease interface {
	// Acquire attempts to take the channel lease
	Acquire(ctx context.Context, code channel.Code) (bool, error)
	// Release frees the channel lease
	Release(ctx context.Context, code channel.Code) error
}

// ---------------------------------------------------------------------------
// Redis lease
// ---------------------------------------------------------------------------

// RedisLease implements PassLease with a per-channel SET NX PX key. Unlike an
// in-process flag, the lease survives multiple reconciler instances and
// expires on its own after a crash.
type RedisLease struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLease creates a Redis-backed pass lease
func NewRedisLease(client *redis.Client, ttl time.Duration) *RedisLease {
	return &RedisLease{client: client, ttl: ttl}
}

// Acquire attempts to take the channel lease
func (l *RedisLease) Acquire(ctx context.Context, code channel.Code) (bool, error) {
	ok, err := l.client.SetNX(ctx, leaseKey(code), time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("lease: acquiring %s: %w", code, err)
	}
	return ok, nil
}

// Release frees the channel lease
func (l *RedisLease) Release(ctx context.Context, code channel.Code) error {
	if err := l.client.Del(ctx, leaseKey(code)).Err(); err != nil {
		return fmt.Errorf("lease: releasing %s: %w", code, err)
	}
	return nil
}

func leaseKey(code channel.Code) string {
	return "reconciler:pass-lease:" + code.String()
}

// Ensure RedisLease implements PassLease
var _ PassLease = (*RedisLease)(nil)

// ---------------------------------------------------------------------------
// In-memory lease
// ---------------------------------------------------------------------------

// MemoryLease implements PassLease with a process-local map. Suitable for
// tests and single-instance deployments without Redis.
type MemoryLease struct {
	mu   sync.Mutex
	held map[channel.Code]time.Time
	ttl  time.Duration
}

// NewMemoryLease creates an in-process pass lease
func NewMemoryLease(ttl time.Duration) *MemoryLease {
	return &MemoryLease{held: make(map[channel.Code]time.Time), ttl: ttl}
}

// Acquire attempts to take the channel lease
func (l *MemoryLease) Acquire(_ context.Context, code channel.Code) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if expires, ok := l.held[code]; ok && time.Now().Before(expires) {
		return false, nil
	}
	l.held[code] = time.Now().Add(l.ttl)
	return true, nil
}

// Release frees the channel lease
func (l *MemoryLease) Release(_ context.Context, code channel.Code) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, code)
	return nil
}

// Ensure MemoryLease implements PassLease
var _ PassLease = (*MemoryLease)(nil)
