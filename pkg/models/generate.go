package models

// GenerateRequest represents a DM generation request.
// Premium status is resolved server-side from the authenticated identity and is
// never accepted from the client.
type GenerateRequest struct {
	RecipientName string `json:"recipientName" validate:"required,max=100"`
	RecipientRole string `json:"recipientRole,omitempty" validate:"omitempty,max=100"`
	CompanyName   string `json:"companyName,omitempty" validate:"omitempty,max=100"`
	Reason        string `json:"reason,omitempty" validate:"omitempty,max=200"`
	CustomHook    string `json:"customHook,omitempty" validate:"omitempty,max=500"`
	Tone          string `json:"tone" validate:"required,oneof=professional casual friendly direct empathetic assertive chaos"`
	Scenario      string `json:"scenario,omitempty" validate:"omitempty,max=100"`
	Platform      string `json:"platform,omitempty" validate:"omitempty,oneof=linkedin email twitter instagram"`
	Language      string `json:"language,omitempty" validate:"omitempty,max=50"`
	Fingerprint   string `json:"fingerprint,omitempty" validate:"omitempty,max=128"`
}

// GenerateResponse represents a successful generation
type GenerateResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// PremiumRequiredResponse is returned when the requested tone or remaining
// quota requires an upgrade
type PremiumRequiredResponse struct {
	Message         string `json:"message"`
	RequiresPremium bool   `json:"requiresPremium,omitempty"`
	RequiresAuth    bool   `json:"requiresAuth,omitempty"`
	Success         bool   `json:"success"`
}

// HistoryItem is one past generation in the user's history
type HistoryItem struct {
	ID        string `json:"id"`
	Tone      string `json:"tone"`
	Platform  string `json:"platform,omitempty"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

// HistoryResponse lists the caller's most recent generations, newest first
type HistoryResponse struct {
	Items []HistoryItem `json:"items"`
	Count int           `json:"count"`
}

// TierConfigResponse describes the generation capability of a tier
type TierConfigResponse struct {
	Tier        string `json:"tier"`
	Model       string `json:"model"`
	MaxTokens   int    `json:"maxTokens"`
	Description string `json:"description"`
}
