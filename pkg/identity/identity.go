package identity

import (
	"crypto/sha256"
	"encoding/hex"
)

// Tier is the access level of a resolved identity. It is the single tier
// vocabulary used across the codebase.
type Tier string

const (
	TierAnonymous Tier = "anonymous"
	TierFree      Tier = "free"
	TierPremium   Tier = "premium"
)

// Identity is the resolved caller of a request: either an anonymous visitor
// tracked by a best-effort device fingerprint, or an authenticated user whose
// premium flag was resolved server-side.
type Identity struct {
	// Fingerprint is set for anonymous visitors. Not guaranteed unique or
	// stable; treated as best effort.
	Fingerprint string

	// UserID is set for authenticated users.
	UserID string

	// Premium is only meaningful when UserID is set.
	Premium bool
}

// Authenticated reports whether the identity is backed by a signed-in user
func (id Identity) Authenticated() bool {
	return id.UserID != ""
}

// Tier derives the canonical tier from the identity variant
func (id Identity) Tier() Tier {
	switch {
	case id.Authenticated() && id.Premium:
		return TierPremium
	case id.Authenticated():
		return TierFree
	default:
		return TierAnonymous
	}
}

// Owner returns the ledger owner reference for this identity: the user id for
// authenticated callers, the fingerprint otherwise. The two namespaces are
// deliberately separate ledgers and are never merged.
func (id Identity) Owner() string {
	if id.Authenticated() {
		return id.UserID
	}
	return id.Fingerprint
}

// FallbackFingerprint derives a fingerprint from the client IP and User-Agent
// for callers that did not supply one. Best effort only.
func FallbackFingerprint(ip, userAgent string) string {
	hash := sha256.Sum256([]byte(ip + "|" + userAgent))
	return hex.EncodeToString(hash[:16])
}
