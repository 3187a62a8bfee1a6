package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmgine/dmgine/pkg/generator"
	"github.com/dmgine/dmgine/pkg/store"
)

func usageRequest(t *testing.T, h *UserHandler, userID string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/usage", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set("user_id", userID)
	}
	require.NoError(t, h.Usage(c))
	return rec
}

type fakeRecentHistory struct {
	items    []store.Generation
	err      error
	gotOwner string
	gotLimit int
}

func (f *fakeRecentHistory) RecentByOwner(_ context.Context, ownerRef string, limit int) ([]store.Generation, error) {
	f.gotOwner = ownerRef
	f.gotLimit = limit
	return f.items, f.err
}

func newUserHarness(t *testing.T) (*UserHandler, *generateHarness) {
	t.Helper()
	gh := newGenerateHarness(t)
	// Reuse the generate harness stack so usage reflects actual generations
	return NewUserHandler(identityResolverOf(gh), generatorOf(gh), &fakeRecentHistory{}), gh
}

func identityResolverOf(gh *generateHarness) IdentityResolver { return gh.handler.resolver }
func generatorOf(gh *generateHarness) *generator.Service      { return gh.handler.generator }

func TestUsage_Unauthenticated(t *testing.T) {
	h, _ := newUserHarness(t)
	rec := usageRequest(t, h, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUsage_FreeUserAfterGenerations(t *testing.T) {
	h, gh := newUserHarness(t)

	body := `{"recipientName":"Ada","tone":"casual"}`
	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, gh.post(t, body, "user-1", "").Code)
	}

	rec := usageRequest(t, h, "user-1")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "free", resp["tier"])
	assert.Equal(t, float64(2), resp["usage_count"])
	assert.Equal(t, float64(10), resp["usage_limit"])
	assert.Equal(t, float64(8), resp["remaining"])
	assert.Equal(t, false, resp["unlimited"])
}

func TestUsage_PremiumUserUnlimited(t *testing.T) {
	h, gh := newUserHarness(t)
	gh.profiles.premium["user-9"] = true

	rec := usageRequest(t, h, "user-9")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "premium", resp["tier"])
	assert.Equal(t, true, resp["unlimited"])
}

func historyRequest(t *testing.T, h *UserHandler, userID string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/history", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set("user_id", userID)
	}
	require.NoError(t, h.History(c))
	return rec
}

func TestHistory_Unauthenticated(t *testing.T) {
	gh := newGenerateHarness(t)
	h := NewUserHandler(identityResolverOf(gh), generatorOf(gh), &fakeRecentHistory{})

	rec := historyRequest(t, h, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHistory_ReturnsRecentGenerations(t *testing.T) {
	gh := newGenerateHarness(t)
	history := &fakeRecentHistory{items: []store.Generation{
		{ID: "g-2", OwnerRef: "user-1", Tone: "casual", Platform: "linkedin", Message: "Hey Ada!", CreatedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)},
		{ID: "g-1", OwnerRef: "user-1", Tone: "professional", Message: "Hello Ada.", CreatedAt: time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)},
	}}
	h := NewUserHandler(identityResolverOf(gh), generatorOf(gh), history)

	rec := historyRequest(t, h, "user-1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", history.gotOwner)
	assert.Equal(t, historyLimit, history.gotLimit)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["count"])

	items := resp["items"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "g-2", first["id"])
	assert.Equal(t, "casual", first["tone"])
	assert.Equal(t, "Hey Ada!", first["message"])
	assert.Equal(t, "2026-08-30T12:00:00Z", first["createdAt"])
}

func TestHistory_EmptyIsOKNotNull(t *testing.T) {
	gh := newGenerateHarness(t)
	h := NewUserHandler(identityResolverOf(gh), generatorOf(gh), &fakeRecentHistory{})

	rec := historyRequest(t, h, "user-1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestHistory_StoreErrorIsSanitized(t *testing.T) {
	gh := newGenerateHarness(t)
	history := &fakeRecentHistory{err: context.DeadlineExceeded}
	h := NewUserHandler(identityResolverOf(gh), generatorOf(gh), history)

	rec := historyRequest(t, h, "user-1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
}
