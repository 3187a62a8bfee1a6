package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmgine/dmgine/pkg/cache"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfiles struct {
	premium map[string]bool
	err     error
	calls   int
}

func (f *fakeProfiles) IsPremium(_ context.Context, userID string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.premium[userID], nil
}

func setupResolver(t *testing.T, profiles *fakeProfiles) (*Resolver, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := &cache.Client{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	return NewResolver(profiles, client, nil), mr
}

func TestIdentity_Tier(t *testing.T) {
	assert.Equal(t, TierAnonymous, Identity{Fingerprint: "fp"}.Tier())
	assert.Equal(t, TierFree, Identity{UserID: "u1"}.Tier())
	assert.Equal(t, TierPremium, Identity{UserID: "u1", Premium: true}.Tier())
}

func TestIdentity_Owner(t *testing.T) {
	assert.Equal(t, "fp-123", Identity{Fingerprint: "fp-123"}.Owner())
	// Authenticated identities key the user ledger even when a fingerprint is known
	assert.Equal(t, "u1", Identity{UserID: "u1", Fingerprint: "fp-123"}.Owner())
}

func TestResolve_Anonymous(t *testing.T) {
	r, _ := setupResolver(t, &fakeProfiles{})

	id := r.Resolve(context.Background(), "", "fp-abc")

	assert.False(t, id.Authenticated())
	assert.Equal(t, "fp-abc", id.Fingerprint)
	assert.Equal(t, TierAnonymous, id.Tier())
}

func TestResolve_AuthenticatedPremium(t *testing.T) {
	profiles := &fakeProfiles{premium: map[string]bool{"u1": true}}
	r, _ := setupResolver(t, profiles)

	id := r.Resolve(context.Background(), "u1", "")

	assert.True(t, id.Premium)
	assert.Equal(t, TierPremium, id.Tier())
}

func TestResolve_ProfileFetchFailureDefaultsToFree(t *testing.T) {
	profiles := &fakeProfiles{err: errors.New("store down")}
	r, _ := setupResolver(t, profiles)

	id := r.Resolve(context.Background(), "u1", "")

	// Fail closed on capability, open on basic access
	assert.True(t, id.Authenticated())
	assert.False(t, id.Premium)
	assert.Equal(t, TierFree, id.Tier())
}

func TestResolve_CachesPremiumFlag(t *testing.T) {
	profiles := &fakeProfiles{premium: map[string]bool{"u1": true}}
	r, _ := setupResolver(t, profiles)

	ctx := context.Background()
	_ = r.Resolve(ctx, "u1", "")
	_ = r.Resolve(ctx, "u1", "")

	assert.Equal(t, 1, profiles.calls, "second resolve should hit the cache")
}

func TestInvalidatePremium(t *testing.T) {
	profiles := &fakeProfiles{premium: map[string]bool{"u1": true}}
	r, _ := setupResolver(t, profiles)

	ctx := context.Background()
	_ = r.Resolve(ctx, "u1", "")
	r.InvalidatePremium(ctx, "u1")
	_ = r.Resolve(ctx, "u1", "")

	assert.Equal(t, 2, profiles.calls, "resolve after invalidation should refetch")
}

func TestFallbackFingerprint(t *testing.T) {
	fp1 := FallbackFingerprint("1.2.3.4", "Mozilla/5.0")
	fp2 := FallbackFingerprint("1.2.3.4", "Mozilla/5.0")
	fp3 := FallbackFingerprint("5.6.7.8", "Mozilla/5.0")

	assert.Equal(t, fp1, fp2)
	assert.NotEqual(t, fp1, fp3)
	assert.Len(t, fp1, 32)
}
