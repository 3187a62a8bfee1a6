package quota

import (
	"context"
	"fmt"

	"github.com/dmgine/dmgine/pkg/identity"
)

// Decision is the outcome of a quota gate check
type Decision int

const (
	// Allow permits the generation
	Allow Decision = iota

	// DenyNeedsAuth asks the caller to sign in; applies to anonymous visitors
	// who exhausted the trial quota, since sign-in is the least-destructive
	// way to unblock them.
	DenyNeedsAuth

	// DenyNeedsUpgrade asks the caller to upgrade: premium-gated tone, or a
	// signed-in free user over the daily ceiling.
	DenyNeedsUpgrade
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyNeedsAuth:
		return "deny_needs_auth"
	case DenyNeedsUpgrade:
		return "deny_needs_upgrade"
	default:
		return "unknown"
	}
}

// Gate combines tone-gating and usage-ceiling checks into an allow/deny
// outcome. Check is idempotent and side-effect free: it never mutates the
// ledgers.
type Gate struct {
	policy     Policy
	anonLedger Ledger
	userLedger Ledger
}

// NewGate creates a quota gate over the two independent ledgers
func NewGate(policy Policy, anonLedger, userLedger Ledger) *Gate {
	return &Gate{
		policy:     policy,
		anonLedger: anonLedger,
		userLedger: userLedger,
	}
}

// Check decides whether a generation request is allowed. Ordering is fixed:
// tone-gate, then premium bypass, then quota-gate.
func (g *Gate) Check(ctx context.Context, id identity.Identity, tone string) (Decision, error) {
	tier := id.Tier()

	// Tone-gating takes precedence over quota-gating: a premium-only tone is
	// denied even when quota remains.
	if !g.policy.ToneAllowed(tier, tone) {
		return DenyNeedsUpgrade, nil
	}

	// Premium identities bypass the ledger entirely
	ceiling, capped := g.policy.Ceiling(tier)
	if !capped {
		return Allow, nil
	}

	count, err := g.ledgerFor(id).Count(ctx, id.Owner())
	if err != nil {
		return DenyNeedsUpgrade, fmt.Errorf("quota check failed: %w", err)
	}

	if count >= ceiling {
		if tier == identity.TierAnonymous {
			return DenyNeedsAuth, nil
		}
		return DenyNeedsUpgrade, nil
	}

	return Allow, nil
}

// Record counts one delivered generation against the caller's ledger. It must
// be called exactly once per successful generation, after the provider call
// returned. Premium identities never touch the ledger.
func (g *Gate) Record(ctx context.Context, id identity.Identity) (int, error) {
	if _, capped := g.policy.Ceiling(id.Tier()); !capped {
		return 0, nil
	}
	return g.ledgerFor(id).Increment(ctx, id.Owner())
}

// Usage reports today's count, ceiling and remaining for the caller. The
// boolean is false for uncapped (premium) identities.
func (g *Gate) Usage(ctx context.Context, id identity.Identity) (count, ceiling, remaining int, capped bool, err error) {
	ceiling, capped = g.policy.Ceiling(id.Tier())
	if !capped {
		return 0, 0, 0, false, nil
	}

	count, err = g.ledgerFor(id).Count(ctx, id.Owner())
	if err != nil {
		return 0, 0, 0, true, err
	}

	remaining = ceiling - count
	if remaining < 0 {
		remaining = 0
	}
	return count, ceiling, remaining, true, nil
}

func (g *Gate) ledgerFor(id identity.Identity) Ledger {
	if id.Authenticated() {
		return g.userLedger
	}
	return g.anonLedger
}
