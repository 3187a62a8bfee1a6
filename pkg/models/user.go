package models

// UsageResponse represents today's usage statistics for the caller
type UsageResponse struct {
	Tier       string `json:"tier"`
	UsageCount int    `json:"usage_count"`
	UsageLimit int    `json:"usage_limit"`
	Remaining  int    `json:"remaining"`
	Unlimited  bool   `json:"unlimited"`
}
