package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/dmgine/dmgine/config"
	apierrors "github.com/dmgine/dmgine/pkg/api/errors"
	"github.com/dmgine/dmgine/pkg/auth"
	"github.com/dmgine/dmgine/pkg/identity"
	"github.com/dmgine/dmgine/pkg/metrics"
	"github.com/dmgine/dmgine/pkg/models"
	"github.com/dmgine/dmgine/pkg/store"
)

// UserStore is the subset of the user repository the auth endpoints need
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, name string) (*store.User, error)
	FindByEmail(ctx context.Context, email string) (*store.User, error)
	FindByID(ctx context.Context, userID string) (*store.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	users     UserStore
	config    *config.Config
	blacklist *auth.TokenBlacklist
	metrics   *metrics.Metrics
	validator *validator.Validate
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users UserStore, cfg *config.Config, blacklist *auth.TokenBlacklist, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		users:     users,
		config:    cfg,
		blacklist: blacklist,
		metrics:   m,
		validator: newValidator(),
	}
}

// Register creates a new account and signs the user in
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	exists, err := h.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	if exists {
		return apierrors.ConflictError(c, "User with this email already exists")
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	u, err := h.users.Create(ctx, req.Email, hashedPassword, req.Name)
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	if h.metrics != nil {
		h.metrics.RecordUserRegistered()
	}

	token, err := auth.GenerateJWT(u.ID, u.Email, u.Premium, h.config.JWTSecret, h.config.JWTExpirationHours)
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	return c.JSON(http.StatusCreated, models.AuthResponse{
		Token: token,
		User:  userInfo(u),
	})
}

// Login authenticates with email and password and returns a JWT
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if err := h.validator.Struct(req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			h.recordLogin(false)
			return invalidCredentials(c)
		}
		return apierrors.InternalError(c, err)
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		h.recordLogin(false)
		return invalidCredentials(c)
	}

	token, err := auth.GenerateJWT(u.ID, u.Email, u.Premium, h.config.JWTSecret, h.config.JWTExpirationHours)
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	h.recordLogin(true)
	return c.JSON(http.StatusOK, models.AuthResponse{
		Token: token,
		User:  userInfo(u),
	})
}

// Me returns the current user's information
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return apierrors.UnauthorizedError(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error: "user_not_found",
			})
		}
		return apierrors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, userInfo(u))
}

// Logout revokes the current JWT token
func (h *AuthHandler) Logout(c echo.Context) error {
	token, ok := c.Get("token").(string)
	if !ok || token == "" {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "missing_token",
			Message: "No token found in request",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Blacklist TTL matches the JWT lifetime; after that the token is dead anyway
	expiration := time.Duration(h.config.JWTExpirationHours) * time.Hour
	if err := h.blacklist.Revoke(ctx, token, expiration); err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "logout_error",
			Message: "Failed to revoke token",
		})
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Successfully logged out",
	})
}

func (h *AuthHandler) recordLogin(success bool) {
	if h.metrics != nil {
		h.metrics.RecordLoginAttempt(success)
	}
}

func invalidCredentials(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:   "invalid_credentials",
		Message: "Invalid email or password",
	})
}

func userInfo(u *store.User) *models.UserInfo {
	tier := identity.TierFree
	if u.Premium {
		tier = identity.TierPremium
	}
	return &models.UserInfo{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Tier:    string(tier),
		Premium: u.Premium,
	}
}
