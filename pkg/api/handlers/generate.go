package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apierrors "github.com/dmgine/dmgine/pkg/api/errors"
	"github.com/dmgine/dmgine/pkg/api/middleware"
	"github.com/dmgine/dmgine/pkg/generator"
	"github.com/dmgine/dmgine/pkg/identity"
	"github.com/dmgine/dmgine/pkg/models"
)

// IdentityResolver turns the request's credentials into a resolved identity
type IdentityResolver interface {
	Resolve(ctx context.Context, userID, fingerprint string) identity.Identity
}

// GenerateHandler handles DM generation requests
type GenerateHandler struct {
	resolver  IdentityResolver
	generator *generator.Service
	validator *validator.Validate
}

// NewGenerateHandler creates a new generate handler
func NewGenerateHandler(resolver IdentityResolver, gen *generator.Service) *GenerateHandler {
	return &GenerateHandler{
		resolver:  resolver,
		generator: gen,
		validator: newValidator(),
	}
}

// Generate handles POST /api/v1/generate-dm. Anonymous callers are identified
// by device fingerprint; authenticated callers by the user id the JWT
// middleware put in the context. Premium status comes from the profile store,
// never from the request body.
func (h *GenerateHandler) Generate(c echo.Context) error {
	var req models.GenerateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	id := h.resolver.Resolve(ctx, middleware.UserID(c), h.fingerprint(c, req))

	message, err := h.generator.Generate(ctx, id, req)
	if err != nil {
		var denied *generator.DeniedError
		if errors.As(err, &denied) {
			return c.JSON(http.StatusPaymentRequired, models.PremiumRequiredResponse{
				Message:         denied.Message,
				RequiresPremium: denied.RequiresPremium(),
				RequiresAuth:    denied.RequiresAuth(),
				Success:         false,
			})
		}
		return apierrors.ProviderError(c, err)
	}

	return c.JSON(http.StatusOK, models.GenerateResponse{
		Message: message,
		Success: true,
	})
}

// fingerprint prefers the dedicated header, falls back to the request body,
// then to a derived value so anonymous callers always land in some bucket.
func (h *GenerateHandler) fingerprint(c echo.Context, req models.GenerateRequest) string {
	if fp := c.Request().Header.Get("X-Device-Fingerprint"); fp != "" {
		return fp
	}
	if req.Fingerprint != "" {
		return req.Fingerprint
	}
	return identity.FallbackFingerprint(c.RealIP(), c.Request().UserAgent())
}
