package quota

import (
	"context"
	"testing"

	"github.com/dmgine/dmgine/pkg/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memLedger is an in-memory Ledger that records how often it was consulted
type memLedger struct {
	counts     map[string]int
	countCalls int
	incrCalls  int
}

func newMemLedger() *memLedger {
	return &memLedger{counts: make(map[string]int)}
}

func (m *memLedger) Count(_ context.Context, owner string) (int, error) {
	m.countCalls++
	return m.counts[owner], nil
}

func (m *memLedger) Increment(_ context.Context, owner string) (int, error) {
	m.incrCalls++
	m.counts[owner]++
	return m.counts[owner], nil
}

func (m *memLedger) Remaining(_ context.Context, owner string, ceiling int) (int, error) {
	remaining := ceiling - m.counts[owner]
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func newTestGate() (*Gate, *memLedger, *memLedger) {
	anon := newMemLedger()
	user := newMemLedger()
	return NewGate(DefaultPolicy(), anon, user), anon, user
}

func TestGate_AllowWithinQuota(t *testing.T) {
	g, _, _ := newTestGate()

	d, err := g.Check(context.Background(), identity.Identity{Fingerprint: "fp"}, "professional")
	require.NoError(t, err)
	assert.Equal(t, Allow, d)
}

func TestGate_ToneGatePrecedesQuotaGate(t *testing.T) {
	g, _, user := newTestGate()
	ctx := context.Background()

	// A free user with plenty of quota left is still denied a premium tone
	user.counts["u1"] = 0
	d, err := g.Check(ctx, identity.Identity{UserID: "u1"}, "chaos")
	require.NoError(t, err)
	assert.Equal(t, DenyNeedsUpgrade, d)

	// The ledger is not even consulted for the tone denial
	assert.Equal(t, 0, user.countCalls)
}

func TestGate_AnonymousPremiumToneDenied(t *testing.T) {
	g, _, _ := newTestGate()

	d, err := g.Check(context.Background(), identity.Identity{Fingerprint: "fp"}, "chaos")
	require.NoError(t, err)
	assert.Equal(t, DenyNeedsUpgrade, d)
}

func TestGate_PremiumBypassesLedger(t *testing.T) {
	g, anon, user := newTestGate()
	ctx := context.Background()
	premium := identity.Identity{UserID: "u1", Premium: true}

	for i := 0; i < 100; i++ {
		d, err := g.Check(ctx, premium, "chaos")
		require.NoError(t, err)
		assert.Equal(t, Allow, d)

		_, err = g.Record(ctx, premium)
		require.NoError(t, err)
	}

	assert.Equal(t, 0, anon.countCalls+anon.incrCalls)
	assert.Equal(t, 0, user.countCalls+user.incrCalls)
}

func TestGate_AnonymousOverQuotaNeedsAuth(t *testing.T) {
	g, anon, _ := newTestGate()
	ctx := context.Background()
	anon.counts["fp"] = 3

	d, err := g.Check(ctx, identity.Identity{Fingerprint: "fp"}, "professional")
	require.NoError(t, err)
	assert.Equal(t, DenyNeedsAuth, d)
}

func TestGate_FreeUserOverQuotaNeedsUpgrade(t *testing.T) {
	g, _, user := newTestGate()
	ctx := context.Background()
	user.counts["u1"] = 10

	d, err := g.Check(ctx, identity.Identity{UserID: "u1"}, "professional")
	require.NoError(t, err)
	assert.Equal(t, DenyNeedsUpgrade, d)
}

func TestGate_CheckIsIdempotent(t *testing.T) {
	g, anon, _ := newTestGate()
	ctx := context.Background()
	id := identity.Identity{Fingerprint: "fp"}
	anon.counts["fp"] = 2

	d1, err := g.Check(ctx, id, "professional")
	require.NoError(t, err)
	d2, err := g.Check(ctx, id, "professional")
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
	assert.Equal(t, 0, anon.incrCalls, "Check must never mutate the ledger")
}

func TestGate_FourthAnonymousAttemptDenied(t *testing.T) {
	g, _, _ := newTestGate()
	ctx := context.Background()
	id := identity.Identity{Fingerprint: "fp"}

	for i := 0; i < 3; i++ {
		d, err := g.Check(ctx, id, "professional")
		require.NoError(t, err)
		require.Equal(t, Allow, d)

		_, err = g.Record(ctx, id)
		require.NoError(t, err)
	}

	d, err := g.Check(ctx, id, "professional")
	require.NoError(t, err)
	assert.Equal(t, DenyNeedsAuth, d)
}

func TestGate_Usage(t *testing.T) {
	g, _, user := newTestGate()
	ctx := context.Background()
	user.counts["u1"] = 4

	count, ceiling, remaining, capped, err := g.Usage(ctx, identity.Identity{UserID: "u1"})
	require.NoError(t, err)
	assert.True(t, capped)
	assert.Equal(t, 4, count)
	assert.Equal(t, 10, ceiling)
	assert.Equal(t, 6, remaining)

	_, _, _, capped, err = g.Usage(ctx, identity.Identity{UserID: "u2", Premium: true})
	require.NoError(t, err)
	assert.False(t, capped)
}

func TestPolicy_Ceiling(t *testing.T) {
	p := DefaultPolicy()

	c, capped := p.Ceiling(identity.TierAnonymous)
	assert.True(t, capped)
	assert.Equal(t, 3, c)

	c, capped = p.Ceiling(identity.TierFree)
	assert.True(t, capped)
	assert.Equal(t, 10, c)

	_, capped = p.Ceiling(identity.TierPremium)
	assert.False(t, capped)
}
