package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/dmgine/dmgine/pkg/ai/llm"
	"github.com/dmgine/dmgine/pkg/identity"
	"github.com/dmgine/dmgine/pkg/logger"
	"github.com/dmgine/dmgine/pkg/models"
	"github.com/dmgine/dmgine/pkg/prompt"
	"github.com/dmgine/dmgine/pkg/quota"
)

// HistoryStore persists generated messages. Persistence is best-effort: a
// failed insert never fails the generation itself.
type HistoryStore interface {
	Insert(ctx context.Context, ownerRef, tone, platform, message string) (string, error)
}

// Recorder receives generation outcome metrics
type Recorder interface {
	RecordGeneration(tier, tone string)
	RecordQuotaDenial(reason string)
	RecordProviderCall(duration time.Duration, err error)
}

// Service runs the full generation workflow: gate check, prompt assembly,
// provider call, then usage accounting. Usage is only charged after the
// provider succeeds, so a failed call never burns quota.
type Service struct {
	policy   quota.Policy
	gate     *quota.Gate
	provider llm.Provider
	history  HistoryStore
	recorder Recorder
	logger   logger.Logger
}

func NewService(policy quota.Policy, gate *quota.Gate, provider llm.Provider, history HistoryStore, recorder Recorder, log logger.Logger) *Service {
	return &Service{
		policy:   policy,
		gate:     gate,
		provider: provider,
		history:  history,
		recorder: recorder,
		logger:   log,
	}
}

// Generate produces a DM for the given identity or returns a *DeniedError
// explaining what the caller must do to proceed.
func (s *Service) Generate(ctx context.Context, id identity.Identity, req models.GenerateRequest) (string, error) {
	tier := id.Tier()
	tone := prompt.NormalizeTone(req.Tone)

	decision, err := s.gate.Check(ctx, id, tone)
	if err != nil {
		return "", fmt.Errorf("quota check: %w", err)
	}
	if decision != quota.Allow {
		denial := s.denialFor(decision, tier, tone)
		if s.recorder != nil {
			s.recorder.RecordQuotaDenial(denial.Decision.String())
		}
		s.logger.Info("generation denied",
			"tier", string(tier),
			"tone", tone,
			"decision", denial.Decision.String())
		return "", denial
	}

	profile := prompt.ProfileForTier(tier)
	built := prompt.Build(prompt.Fields{
		RecipientName: req.RecipientName,
		RecipientRole: req.RecipientRole,
		CompanyName:   req.CompanyName,
		Reason:        req.Reason,
		CustomHook:    req.CustomHook,
		Tone:          tone,
		Scenario:      req.Scenario,
		Platform:      req.Platform,
		Language:      req.Language,
	})

	start := time.Now()
	message, err := s.provider.Generate(ctx, llm.Request{
		Prompt:      built,
		Model:       profile.Model,
		MaxTokens:   profile.MaxTokens,
		Temperature: prompt.TemperatureForTone(tone),
	})
	if s.recorder != nil {
		s.recorder.RecordProviderCall(time.Since(start), err)
	}
	if err != nil {
		return "", &ProviderError{Err: err}
	}

	// Charge quota only now that we have a message to return.
	if _, err := s.gate.Record(ctx, id); err != nil {
		// The user already got their generation; losing one increment is
		// preferable to failing the request after the fact.
		s.logger.Error("usage increment failed", "tier", string(tier), "error", err)
	}

	if s.history != nil {
		if _, err := s.history.Insert(ctx, id.Owner(), tone, req.Platform, message); err != nil {
			s.logger.Error("history insert failed", "error", err)
		}
	}
	if s.recorder != nil {
		s.recorder.RecordGeneration(string(tier), tone)
	}

	s.logger.Info("generation completed",
		"tier", string(tier),
		"tone", tone,
		"model", profile.Model,
		"duration_ms", time.Since(start).Milliseconds())
	return message, nil
}

// Usage reports current consumption for the identity's active ledger
func (s *Service) Usage(ctx context.Context, id identity.Identity) (count, ceiling, remaining int, capped bool, err error) {
	return s.gate.Usage(ctx, id)
}

func (s *Service) denialFor(decision quota.Decision, tier identity.Tier, tone string) *DeniedError {
	if !s.policy.ToneAllowed(tier, tone) {
		return &DeniedError{
			Decision: decision,
			Message:  "Off the Rails Mode is a premium feature. Upgrade to unlock it!",
		}
	}
	switch decision {
	case quota.DenyNeedsAuth:
		return &DeniedError{
			Decision: decision,
			Message:  fmt.Sprintf("You've used your %d free messages for today. Sign in to keep generating.", s.policy.AnonymousDailyLimit),
		}
	default:
		return &DeniedError{
			Decision: decision,
			Message:  fmt.Sprintf("You've reached your daily limit of %d messages. Upgrade to Premium for unlimited generations.", s.policy.FreeDailyLimit),
		}
	}
}
