package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmgine/dmgine/pkg/auth"
)

const testSecret = "test-secret-key"

func authedRequest(t *testing.T, token string) (*echo.Echo, *httptest.ResponseRecorder, *http.Request) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e, httptest.NewRecorder(), req
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, UserID(c))
}

func TestRequireAuth_ValidToken(t *testing.T) {
	token, err := auth.GenerateJWT("user-1", "a@b.c", false, testSecret, 1)
	require.NoError(t, err)

	e, rec, req := authedRequest(t, token)
	c := e.NewContext(req, rec)

	err = RequireAuth(testSecret, nil)(okHandler)(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	e, rec, req := authedRequest(t, "")
	c := e.NewContext(req, rec)

	err := RequireAuth(testSecret, nil)(okHandler)(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_token")
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := RequireAuth(testSecret, nil)(okHandler)(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_token_format")
}

func TestRequireAuth_WrongSecret(t *testing.T) {
	token, err := auth.GenerateJWT("user-1", "a@b.c", false, "other-secret", 1)
	require.NoError(t, err)

	e, rec, req := authedRequest(t, token)
	c := e.NewContext(req, rec)

	err = RequireAuth(testSecret, nil)(okHandler)(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuth_NoHeaderPassesThroughAnonymous(t *testing.T) {
	e, rec, req := authedRequest(t, "")
	c := e.NewContext(req, rec)

	err := OptionalAuth(testSecret, nil)(okHandler)(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String(), "anonymous request has no user id")
}

func TestOptionalAuth_ValidTokenSetsUser(t *testing.T) {
	token, err := auth.GenerateJWT("user-7", "a@b.c", true, testSecret, 1)
	require.NoError(t, err)

	e, rec, req := authedRequest(t, token)
	c := e.NewContext(req, rec)

	err = OptionalAuth(testSecret, nil)(okHandler)(c)

	require.NoError(t, err)
	assert.Equal(t, "user-7", rec.Body.String())
}

func TestOptionalAuth_InvalidTokenRejected(t *testing.T) {
	e, rec, req := authedRequest(t, "not-a-jwt")
	c := e.NewContext(req, rec)

	err := OptionalAuth(testSecret, nil)(okHandler)(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
