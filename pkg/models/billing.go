package models

// CheckoutResponse represents a created Stripe checkout session
type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at"`
}

// CustomerPortalResponse represents a customer portal session response
type CustomerPortalResponse struct {
	URL string `json:"url"`
}

// PricingTier represents a single tier in the pricing response
type PricingTier struct {
	Name        string   `json:"name"`
	Price       int      `json:"price"`
	DailyLimit  int      `json:"daily_limit"`
	Unlimited   bool     `json:"unlimited,omitempty"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

// PricingResponse lists all tiers
type PricingResponse struct {
	Tiers []PricingTier `json:"tiers"`
}
