package prompt

import (
	"github.com/dmgine/dmgine/pkg/identity"
)

// Profile is the tier-derived generation capability: which model serves the
// request and how long the output may be. Selected purely from tier, no
// per-user overrides.
type Profile struct {
	Model     string
	MaxTokens int
}

const (
	modelStandard = "gpt-3.5-turbo"
	modelPremium  = "gpt-4-1106-preview"
)

// ProfileForTier maps a tier to its capability profile. Token ceilings are
// strictly monotonic in tier.
func ProfileForTier(tier identity.Tier) Profile {
	switch tier {
	case identity.TierPremium:
		return Profile{Model: modelPremium, MaxTokens: 500}
	case identity.TierFree:
		return Profile{Model: modelStandard, MaxTokens: 300}
	default:
		return Profile{Model: modelStandard, MaxTokens: 150}
	}
}

// TemperatureForTone returns the sampling temperature: chaos runs hot,
// professional stays conservative.
func TemperatureForTone(tone string) float32 {
	switch tone {
	case "chaos":
		return 0.9
	case "professional":
		return 0.7
	default:
		return 0.8
	}
}
