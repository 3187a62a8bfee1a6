package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/dmgine/dmgine/pkg/api/errors"
	"github.com/dmgine/dmgine/pkg/metrics"
	"github.com/dmgine/dmgine/pkg/models"
)

// BillingService is the subset of the billing layer the HTTP surface needs
type BillingService interface {
	CreateCheckoutSession(ctx context.Context, userID string) (*models.CheckoutResponse, error)
	CreateCustomerPortalSession(ctx context.Context, userID, returnURL string) (*models.CustomerPortalResponse, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	GetPricing() *models.PricingResponse
}

// BillingHandler handles billing endpoints
type BillingHandler struct {
	billing BillingService
	metrics *metrics.Metrics
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billing BillingService, m *metrics.Metrics) *BillingHandler {
	return &BillingHandler{
		billing: billing,
		metrics: m,
	}
}

// CreateCheckout handles POST /api/v1/billing/checkout
func (h *BillingHandler) CreateCheckout(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return apierrors.UnauthorizedError(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	resp, err := h.billing.CreateCheckoutSession(ctx, userID)
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	if h.metrics != nil {
		h.metrics.RecordCheckoutStarted()
	}
	return c.JSON(http.StatusOK, resp)
}

// CreatePortal handles POST /api/v1/billing/portal
func (h *BillingHandler) CreatePortal(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return apierrors.UnauthorizedError(c)
	}

	var req struct {
		ReturnURL string `json:"return_url"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	resp, err := h.billing.CreateCustomerPortalSession(ctx, userID, req.ReturnURL)
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// Pricing handles GET /api/v1/billing/pricing
func (h *BillingHandler) Pricing(c echo.Context) error {
	return c.JSON(http.StatusOK, h.billing.GetPricing())
}

// Webhook handles POST /api/v1/billing/webhook. Stripe signs the raw body,
// so it is read before any JSON parsing.
func (h *BillingHandler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_payload",
			Message: "Failed to read webhook payload",
		})
	}

	signature := c.Request().Header.Get("Stripe-Signature")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	if err := h.billing.HandleWebhook(ctx, payload, signature); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "webhook_error",
			Message: "Webhook processing failed",
		})
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}
