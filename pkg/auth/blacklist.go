package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dmgine/dmgine/pkg/cache"
)

// TokenBlacklist tracks revoked JWT tokens in Redis until they would have
// expired anyway
type TokenBlacklist struct {
	cache *cache.Client
}

// NewTokenBlacklist creates a new token blacklist
func NewTokenBlacklist(cacheClient *cache.Client) *TokenBlacklist {
	return &TokenBlacklist{cache: cacheClient}
}

// Revoke marks a token as revoked for the given duration
func (b *TokenBlacklist) Revoke(ctx context.Context, token string, expiration time.Duration) error {
	// Store a hash, never the raw token
	return b.cache.Set(ctx, b.key(token), "revoked", expiration)
}

// IsRevoked checks whether a token has been revoked
func (b *TokenBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	return b.cache.Exists(ctx, b.key(token))
}

func (b *TokenBlacklist) key(token string) string {
	hash := sha256.Sum256([]byte(token))
	return fmt.Sprintf("jwt:revoked:%s", hex.EncodeToString(hash[:]))
}
