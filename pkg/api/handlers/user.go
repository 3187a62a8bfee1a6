package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/dmgine/dmgine/pkg/api/errors"
	"github.com/dmgine/dmgine/pkg/generator"
	"github.com/dmgine/dmgine/pkg/models"
	"github.com/dmgine/dmgine/pkg/store"
)

// historyLimit caps how many past generations the history endpoint returns
const historyLimit = 20

// RecentHistory serves the authenticated user's recent generations
type RecentHistory interface {
	RecentByOwner(ctx context.Context, ownerRef string, limit int) ([]store.Generation, error)
}

// UserHandler exposes per-user usage and history information
type UserHandler struct {
	resolver  IdentityResolver
	generator *generator.Service
	history   RecentHistory
}

// NewUserHandler creates a new user handler
func NewUserHandler(resolver IdentityResolver, gen *generator.Service, history RecentHistory) *UserHandler {
	return &UserHandler{
		resolver:  resolver,
		generator: gen,
		history:   history,
	}
}

// Usage handles GET /api/v1/user/usage and reports today's consumption for
// the authenticated user.
func (h *UserHandler) Usage(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return apierrors.UnauthorizedError(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id := h.resolver.Resolve(ctx, userID, "")

	count, ceiling, remaining, capped, err := h.generator.Usage(ctx, id)
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, models.UsageResponse{
		Tier:       string(id.Tier()),
		UsageCount: count,
		UsageLimit: ceiling,
		Remaining:  remaining,
		Unlimited:  !capped,
	})
}

// History handles GET /api/v1/user/history and returns the authenticated
// user's most recent generations, newest first.
func (h *UserHandler) History(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return apierrors.UnauthorizedError(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	generations, err := h.history.RecentByOwner(ctx, userID, historyLimit)
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	items := make([]models.HistoryItem, 0, len(generations))
	for _, g := range generations {
		items = append(items, models.HistoryItem{
			ID:        g.ID,
			Tone:      g.Tone,
			Platform:  g.Platform,
			Message:   g.Message,
			CreatedAt: g.CreatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, models.HistoryResponse{
		Items: items,
		Count: len(items),
	})
}
