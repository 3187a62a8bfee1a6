package errors

import (
	"regexp"
)

// Patterns for substrings that must never cross the server boundary:
// credential names, Stripe key material, bearer-style tokens.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)sk_[a-zA-Z0-9_]+`),
	regexp.MustCompile(`(?i)pk_[a-zA-Z0-9_]+`),
	regexp.MustCompile(`(?i)api[_-]?key`),
	regexp.MustCompile(`(?i)secret`),
	regexp.MustCompile(`(?i)password`),
	regexp.MustCompile(`(?i)token`),
}

// Sanitize scrubs known-sensitive substrings from error text before it is
// echoed to a client
func Sanitize(message string) string {
	for _, pattern := range sensitivePatterns {
		message = pattern.ReplaceAllString(message, "[REDACTED]")
	}
	return message
}
