package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmgine/dmgine/pkg/identity"
	"github.com/dmgine/dmgine/pkg/models"
	"github.com/dmgine/dmgine/pkg/prompt"
)

var tierDescriptions = map[identity.Tier]string{
	identity.TierAnonymous: "Short messages to try the product",
	identity.TierFree:      "Standard messages for signed-in users",
	identity.TierPremium:   "Longest messages on the best available model",
}

// TierConfigHandler exposes the generation capability of each tier
type TierConfigHandler struct{}

// NewTierConfigHandler creates a tier config handler
func NewTierConfigHandler() *TierConfigHandler {
	return &TierConfigHandler{}
}

// Get handles GET /api/v1/tier-config/:tier
func (h *TierConfigHandler) Get(c echo.Context) error {
	tier := identity.Tier(c.Param("tier"))

	desc, ok := tierDescriptions[tier]
	if !ok {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_tier",
			Message: "Tier must be one of: anonymous, free, premium",
		})
	}

	profile := prompt.ProfileForTier(tier)
	return c.JSON(http.StatusOK, models.TierConfigResponse{
		Tier:        string(tier),
		Model:       profile.Model,
		MaxTokens:   profile.MaxTokens,
		Description: desc,
	})
}
