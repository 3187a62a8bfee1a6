package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/stripe/stripe-go/v76"
	billingportalsession "github.com/stripe/stripe-go/v76/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/dmgine/dmgine/pkg/models"
	"github.com/dmgine/dmgine/pkg/quota"
	"github.com/dmgine/dmgine/pkg/store"
)

// UserStore is the subset of the user repository billing needs
type UserStore interface {
	FindByID(ctx context.Context, userID string) (*store.User, error)
	FindByStripeCustomer(ctx context.Context, customerID string) (*store.User, error)
	SetPremium(ctx context.Context, userID string, premium bool) error
	SetStripeCustomerID(ctx context.Context, userID, customerID string) error
}

// PremiumInvalidator drops cached premium flags after a subscription change
// so the next request sees the new status immediately.
type PremiumInvalidator interface {
	InvalidatePremium(ctx context.Context, userID string)
}

// ActivationRecorder counts premium activations for metrics
type ActivationRecorder interface {
	RecordPremiumActivation()
}

// StripeConfig holds Stripe configuration
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	PricePremium  string
	SuccessURL    string
	CancelURL     string
	FrontendURL   string
}

// Service handles Stripe billing operations. There is a single paid tier:
// premium, unlimited generations plus premium-gated tones.
type Service struct {
	users       UserStore
	invalidator PremiumInvalidator
	recorder    ActivationRecorder
	policy      quota.Policy
	config      *StripeConfig
}

// NewService creates a new billing service. The pricing copy quotes the
// ceilings from the same policy the quota gate enforces.
func NewService(users UserStore, invalidator PremiumInvalidator, policy quota.Policy, config *StripeConfig) *Service {
	stripe.Key = config.SecretKey

	return &Service{
		users:       users,
		invalidator: invalidator,
		policy:      policy,
		config:      config,
	}
}

// SetRecorder attaches an optional metrics recorder
func (s *Service) SetRecorder(r ActivationRecorder) {
	s.recorder = r
}

// CreateCheckoutSession creates a Stripe checkout session for the premium
// subscription, creating or reusing the user's Stripe customer.
func (s *Service) CreateCheckoutSession(ctx context.Context, userID string) (*models.CheckoutResponse, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if u.Premium {
		return nil, fmt.Errorf("user already has an active premium subscription")
	}

	var customerID string
	if u.StripeCustomerID != nil && *u.StripeCustomerID != "" {
		customerID = *u.StripeCustomerID
	} else {
		params := &stripe.CustomerParams{
			Email: stripe.String(u.Email),
			Name:  stripe.String(u.Name),
			Metadata: map[string]string{
				"user_id": u.ID,
			},
		}
		cust, err := customer.New(params)
		if err != nil {
			return nil, fmt.Errorf("failed to create customer: %w", err)
		}
		customerID = cust.ID

		if err := s.users.SetStripeCustomerID(ctx, u.ID, customerID); err != nil {
			return nil, fmt.Errorf("failed to save customer ID: %w", err)
		}
	}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.config.PricePremium),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.config.SuccessURL),
		CancelURL:  stripe.String(s.config.CancelURL),
		Metadata: map[string]string{
			"user_id": u.ID,
		},
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &models.CheckoutResponse{
		SessionID: sess.ID,
		URL:       sess.URL,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// CreateCustomerPortalSession creates a Stripe customer portal session so
// premium users can manage or cancel their subscription.
func (s *Service) CreateCustomerPortalSession(ctx context.Context, userID, returnURL string) (*models.CustomerPortalResponse, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if u.StripeCustomerID == nil || *u.StripeCustomerID == "" {
		return nil, fmt.Errorf("user has no billing history")
	}

	if err := s.validateReturnURL(returnURL); err != nil {
		return nil, err
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(*u.StripeCustomerID),
		ReturnURL: stripe.String(returnURL),
	}

	sess, err := billingportalsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create portal session: %w", err)
	}

	return &models.CustomerPortalResponse{URL: sess.URL}, nil
}

// validateReturnURL only accepts redirects back to our own frontend
func (s *Service) validateReturnURL(returnURL string) error {
	if returnURL == "" {
		return fmt.Errorf("return URL is required")
	}
	if !strings.HasPrefix(returnURL, s.config.FrontendURL) {
		return fmt.Errorf("return URL must point to %s", s.config.FrontendURL)
	}
	return nil
}

// HandleWebhook processes Stripe webhook events. The webhook is the only
// place the premium flag is ever turned on.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.config.WebhookSecret)
	if err != nil {
		return fmt.Errorf("webhook signature verification failed: %w", err)
	}

	log.Printf("📨 Stripe webhook received: %s", event.Type)

	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.deleted":
		return s.handleSubscriptionDeleted(ctx, event)
	case "invoice.payment_failed":
		return s.handleInvoicePaymentFailed(ctx, event)
	default:
		log.Printf("⚠️  Unhandled webhook event type: %s", event.Type)
	}

	return nil
}

// handleCheckoutCompleted flips the user to premium
func (s *Service) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("failed to unmarshal session: %w", err)
	}

	userID, ok := sess.Metadata["user_id"]
	if !ok || userID == "" {
		return fmt.Errorf("user_id not found in metadata")
	}

	if err := s.users.SetPremium(ctx, userID, true); err != nil {
		return fmt.Errorf("failed to activate premium: %w", err)
	}
	if s.invalidator != nil {
		s.invalidator.InvalidatePremium(ctx, userID)
	}
	if s.recorder != nil {
		s.recorder.RecordPremiumActivation()
	}

	log.Printf("✅ Premium activated: user_id=%s", userID)
	return nil
}

// handleSubscriptionDeleted downgrades the user back to the free tier
func (s *Service) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	if sub.Customer == nil || sub.Customer.ID == "" {
		log.Printf("⚠️  Subscription %s has no customer, skipping", sub.ID)
		return nil
	}

	u, err := s.users.FindByStripeCustomer(ctx, sub.Customer.ID)
	if err != nil {
		if err == store.ErrUserNotFound {
			log.Printf("⚠️  No user for Stripe customer %s", sub.Customer.ID)
			return nil
		}
		return fmt.Errorf("failed to find user for customer %s: %w", sub.Customer.ID, err)
	}

	if err := s.users.SetPremium(ctx, u.ID, false); err != nil {
		return fmt.Errorf("failed to downgrade user: %w", err)
	}
	if s.invalidator != nil {
		s.invalidator.InvalidatePremium(ctx, u.ID)
	}

	log.Printf("❌ Premium cancelled: user_id=%s", u.ID)
	return nil
}

// handleInvoicePaymentFailed only logs for now; Stripe retries and sends
// customer.subscription.deleted if payment ultimately fails.
func (s *Service) handleInvoicePaymentFailed(_ context.Context, event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("failed to unmarshal invoice: %w", err)
	}

	log.Printf("⚠️  Invoice payment failed: %s, amount_due=%d", invoice.ID, invoice.AmountDue)
	return nil
}

// GetPricing returns pricing information for all tiers. Daily limits come
// from the enforced quota policy so the copy cannot drift from it.
func (s *Service) GetPricing() *models.PricingResponse {
	return &models.PricingResponse{
		Tiers: []models.PricingTier{
			{
				Name:        "anonymous",
				Price:       0,
				DailyLimit:  s.policy.AnonymousDailyLimit,
				Description: "Try it out, no account needed",
				Features: []string{
					fmt.Sprintf("%d messages per day", s.policy.AnonymousDailyLimit),
					"All standard tones",
				},
			},
			{
				Name:        "free",
				Price:       0,
				DailyLimit:  s.policy.FreeDailyLimit,
				Description: "For regular outreach",
				Features: []string{
					fmt.Sprintf("%d messages per day", s.policy.FreeDailyLimit),
					"All standard tones",
					"Longer messages",
				},
			},
			{
				Name:        "premium",
				Price:       9,
				Unlimited:   true,
				Description: "For power senders",
				Features: []string{
					"Unlimited messages",
					"Off the Rails Mode",
					"Best available model",
					"Longest messages",
				},
			},
		},
	}
}
