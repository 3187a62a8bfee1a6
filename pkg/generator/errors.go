package generator

import (
	"github.com/dmgine/dmgine/pkg/quota"
)

// DeniedError is the expected steady-state outcome when the quota gate blocks
// a request. It is not a bug and is never retried automatically.
type DeniedError struct {
	Decision quota.Decision
	Message  string
}

func (e *DeniedError) Error() string {
	return e.Message
}

// RequiresAuth reports whether signing in would unblock the caller
func (e *DeniedError) RequiresAuth() bool {
	return e.Decision == quota.DenyNeedsAuth
}

// RequiresPremium reports whether upgrading would unblock the caller
func (e *DeniedError) RequiresPremium() bool {
	return e.Decision == quota.DenyNeedsUpgrade
}

// ProviderError wraps a generation provider failure. Full detail stays
// server-side; clients get a generic message.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
