package quota

import "github.com/dmgine/dmgine/pkg/identity"

// Policy is process-wide static quota configuration. It is never mutated at
// runtime.
type Policy struct {
	// AnonymousDailyLimit caps generations per local day for anonymous visitors
	AnonymousDailyLimit int

	// FreeDailyLimit caps generations per local day for signed-in free users
	FreeDailyLimit int

	// PremiumTones lists tone keys usable only by premium identities
	PremiumTones map[string]bool
}

// DefaultPolicy returns the production policy: 3/day anonymous, 10/day free,
// premium unconstrained, with "chaos" (Off the Rails Mode) premium-gated.
func DefaultPolicy() Policy {
	return Policy{
		AnonymousDailyLimit: 3,
		FreeDailyLimit:      10,
		PremiumTones:        map[string]bool{"chaos": true},
	}
}

// Ceiling returns the daily ceiling for a tier. Premium has no ceiling; the
// second return value reports whether one applies at all.
func (p Policy) Ceiling(tier identity.Tier) (int, bool) {
	switch tier {
	case identity.TierAnonymous:
		return p.AnonymousDailyLimit, true
	case identity.TierFree:
		return p.FreeDailyLimit, true
	default:
		return 0, false
	}
}

// ToneAllowed reports whether a tone is available to a tier
func (p Policy) ToneAllowed(tier identity.Tier, tone string) bool {
	if !p.PremiumTones[tone] {
		return true
	}
	return tier == identity.TierPremium
}
