package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTierConfig(t *testing.T, tier string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tier-config/"+tier, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/tier-config/:tier")
	c.SetParamNames("tier")
	c.SetParamValues(tier)

	require.NoError(t, NewTierConfigHandler().Get(c))
	return rec
}

func TestTierConfig_KnownTiers(t *testing.T) {
	tests := []struct {
		tier      string
		maxTokens float64
	}{
		{"anonymous", 150},
		{"free", 300},
		{"premium", 500},
	}

	for _, tt := range tests {
		t.Run(tt.tier, func(t *testing.T) {
			rec := getTierConfig(t, tt.tier)
			assert.Equal(t, http.StatusOK, rec.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.tier, resp["tier"])
			assert.Equal(t, tt.maxTokens, resp["maxTokens"])
			assert.NotEmpty(t, resp["model"])
		})
	}
}

func TestTierConfig_UnknownTier(t *testing.T) {
	rec := getTierConfig(t, "platinum")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_tier")
}
