package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/dmgine/dmgine/pkg/cache"
	"github.com/dmgine/dmgine/pkg/logger"
)

// premiumCacheTTL bounds how stale a cached premium flag can be after a
// subscription change that missed cache invalidation.
const premiumCacheTTL = 5 * time.Minute

// PremiumLookup resolves whether a user has an active premium subscription
type PremiumLookup interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
}

// Resolver maps request credentials to an Identity. It performs reads only
// and has no side effects beyond cache population.
type Resolver struct {
	profiles PremiumLookup
	cache    *cache.Client
	logger   logger.Logger
}

// NewResolver creates a new identity resolver
func NewResolver(profiles PremiumLookup, cacheClient *cache.Client, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.Default()
	}
	return &Resolver{
		profiles: profiles,
		cache:    cacheClient,
		logger:   log,
	}
}

// Resolve determines the caller identity. An empty userID yields an anonymous
// identity keyed by fingerprint. For authenticated callers the premium flag is
// fetched from the profile store; if the fetch fails the caller is treated as
// non-premium rather than blocked (fail closed on capability, open on access).
func (r *Resolver) Resolve(ctx context.Context, userID, fingerprint string) Identity {
	if userID == "" {
		return Identity{Fingerprint: fingerprint}
	}

	premium, err := r.lookupPremium(ctx, userID)
	if err != nil {
		r.logger.Warn("premium lookup failed, defaulting to non-premium",
			"user_id", userID, "error", err)
		premium = false
	}

	return Identity{UserID: userID, Premium: premium}
}

func (r *Resolver) lookupPremium(ctx context.Context, userID string) (bool, error) {
	key := premiumCacheKey(userID)

	if r.cache != nil {
		if val, err := r.cache.Get(ctx, key); err == nil {
			return val == "1", nil
		}
	}

	premium, err := r.profiles.IsPremium(ctx, userID)
	if err != nil {
		return false, err
	}

	if r.cache != nil {
		val := "0"
		if premium {
			val = "1"
		}
		if err := r.cache.Set(ctx, key, val, premiumCacheTTL); err != nil {
			r.logger.Debug("failed caching premium flag", "user_id", userID, "error", err)
		}
	}

	return premium, nil
}

// InvalidatePremium drops the cached premium flag for a user. Called by the
// billing webhook handlers after a subscription change.
func (r *Resolver) InvalidatePremium(ctx context.Context, userID string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, premiumCacheKey(userID)); err != nil {
		r.logger.Warn("failed invalidating premium cache", "user_id", userID, "error", err)
	}
}

func premiumCacheKey(userID string) string {
	return fmt.Sprintf("premium:%s", userID)
}
