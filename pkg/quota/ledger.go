package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/dmgine/dmgine/pkg/cache"
)

// ledgerTTL keeps a day's counter around long enough to survive clock skew
// around midnight; expired keys are how stale days get cleaned up, no sweep
// runs.
const ledgerTTL = 48 * time.Hour

// Ledger is a per-owner, per-day usage counter
type Ledger interface {
	// Count returns today's count for the owner. A new day reads a fresh
	// zero record (lazy rollover).
	Count(ctx context.Context, owner string) (int, error)

	// Increment adds one to today's count and returns the new value. Callers
	// must invoke it at most once per successfully delivered generation.
	Increment(ctx context.Context, owner string) (int, error)

	// Remaining returns max(0, ceiling - Count(owner))
	Remaining(ctx context.Context, owner string, ceiling int) (int, error)
}

// RedisLedger implements Ledger on date-scoped Redis keys. Day rollover is
// lazy: a new day's key simply does not exist yet, so the count reads as zero.
// INCR is atomic, so concurrent increments never lose updates.
type RedisLedger struct {
	cache *cache.Client
	scope string
	now   func() time.Time
}

// NewRedisLedger creates a ledger in the given key scope ("anon" or "user").
// The two scopes are independent ledgers: switching from anonymous to
// authenticated neither inherits nor resets the other scope's count.
func NewRedisLedger(cacheClient *cache.Client, scope string) *RedisLedger {
	return &RedisLedger{
		cache: cacheClient,
		scope: scope,
		now:   time.Now,
	}
}

func (l *RedisLedger) key(owner string) string {
	return fmt.Sprintf("usage:%s:%s:%s", l.scope, owner, l.now().Format("2006-01-02"))
}

// Count returns today's count for the owner
func (l *RedisLedger) Count(ctx context.Context, owner string) (int, error) {
	count, err := l.cache.GetInt(ctx, l.key(owner))
	if err != nil {
		return 0, fmt.Errorf("failed reading usage counter: %w", err)
	}
	return count, nil
}

// Increment atomically increments today's count and returns the new value
func (l *RedisLedger) Increment(ctx context.Context, owner string) (int, error) {
	key := l.key(owner)

	count, err := l.cache.Incr(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("failed incrementing usage counter: %w", err)
	}

	// Only the first write attaches the TTL
	if err := l.cache.ExpireNX(ctx, key, ledgerTTL); err != nil {
		return count, fmt.Errorf("failed setting usage counter expiry: %w", err)
	}

	return count, nil
}

// Remaining returns how many generations are left today under the ceiling
func (l *RedisLedger) Remaining(ctx context.Context, owner string, ceiling int) (int, error) {
	count, err := l.Count(ctx, owner)
	if err != nil {
		return 0, err
	}

	remaining := ceiling - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
