package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.APIPort)
	assert.Equal(t, "development", cfg.APIEnvironment)
	assert.Equal(t, 3, cfg.AnonymousDailyLimit)
	assert.Equal(t, 10, cfg.FreeDailyLimit)
	assert.Equal(t, 10, cfg.GenerateRateLimitPerMinute)
	assert.Equal(t, 24, cfg.JWTExpirationHours)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9999")
	t.Setenv("ANONYMOUS_DAILY_LIMIT", "5")
	t.Setenv("FREE_DAILY_LIMIT", "20")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://dmgine.io, https://www.dmgine.io")

	cfg := Load()

	assert.Equal(t, "9999", cfg.APIPort)
	assert.Equal(t, 5, cfg.AnonymousDailyLimit)
	assert.Equal(t, 20, cfg.FreeDailyLimit)
	assert.Equal(t, []string{"https://dmgine.io", "https://www.dmgine.io"}, cfg.CORSAllowedOrigins)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("FREE_DAILY_LIMIT", "not-a-number")

	cfg := Load()
	assert.Equal(t, 10, cfg.FreeDailyLimit)
}

func TestValidate_DevelopmentSkipsChecks(t *testing.T) {
	cfg := Load()
	cfg.APIEnvironment = "development"
	cfg.OpenAIAPIKey = ""

	require.NoError(t, cfg.Validate())
}

func TestValidate_ProductionRequiresSecrets(t *testing.T) {
	cfg := Load()
	cfg.APIEnvironment = "production"
	cfg.OpenAIAPIKey = ""
	cfg.StripeSecretKey = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	assert.Contains(t, err.Error(), "STRIPE_SECRET_KEY")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate_ProductionWithSecrets(t *testing.T) {
	cfg := Load()
	cfg.APIEnvironment = "production"
	cfg.OpenAIAPIKey = "sk-test"
	cfg.StripeSecretKey = "sk_test_123"
	cfg.StripeWebhookSecret = "whsec_123"
	cfg.StripePricePremium = "price_123"
	cfg.JWTSecret = "a-real-secret-at-least-32-characters"

	require.NoError(t, cfg.Validate())
}
