package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ManuelReschke/ChapterFox/app/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

var (
	// ErrBillingDisabled is returned when Stripe is not configured.
	ErrBillingDisabled = errors.New("billing is not configured")
	// ErrNoCustomer is returned when a billing action needs a customer that
	// does not exist.
	ErrNoCustomer = errors.New("user has no billing customer")
)

// UserStore is the part of the user repository billing needs.
type UserStore interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
	UpdateStripeCustomerID(ctx context.Context, userID uint, customerID string) error
}

// DashboardInvalidator drops cached per-user views after billing changes.
type DashboardInvalidator interface {
	DashboardChanged(ctx context.Context, userID uint)
}

// Options configure checkout and webhook handling.
type Options struct {
	PriceID       string
	PublicDomain  string
	WebhookSecret string
}

// Service wraps the billing provider with lazy customer creation, deduplicated
// subscription lookups and idempotent webhook processing.
type Service struct {
	repo        Repository
	users       UserStore
	provider    Provider
	invalidator DashboardInvalidator
	opts        Options
	lookups     singleflight.Group
	logger      zerolog.Logger
}

// NewService creates a billing service. A nil provider disables every call
// that would reach Stripe; subscription lookups then report no subscription.
func NewService(repo Repository, users UserStore, provider Provider, invalidator DashboardInvalidator, opts Options, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		users:       users,
		provider:    provider,
		invalidator: invalidator,
		opts:        opts,
		logger:      logger.With().Str("service", "BillingService").Logger(),
	}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, users UserStore, provider Provider, invalidator DashboardInvalidator, opts Options, logger zerolog.Logger) *Service {
	return NewService(NewRepository(db), users, provider, invalidator, opts, logger)
}

// SubscriptionsFor returns the user's subscriptions. A user without a Stripe
// customer has none. Concurrent lookups for the same customer share one call.
func (s *Service) SubscriptionsFor(ctx context.Context, user *models.User) ([]Subscription, error) {
	if user == nil || !user.HasStripeCustomer() {
		return nil, nil
	}
	if s.provider == nil {
		return nil, nil
	}
	customerID := user.StripeCustomer()

	v, err, _ := s.lookups.Do(customerID, func() (interface{}, error) {
		return s.provider.ListSubscriptions(ctx, customerID)
	})
	if err != nil {
		return nil, err
	}
	subs, _ := v.([]Subscription)
	return subs, nil
}

// EnsureCustomer returns the user's Stripe customer, creating it on first
// need. When two requests race, the first stored customer wins.
func (s *Service) EnsureCustomer(ctx context.Context, user *models.User) (string, error) {
	if user.HasStripeCustomer() {
		return user.StripeCustomer(), nil
	}
	if s.provider == nil {
		return "", ErrBillingDisabled
	}

	customerID, err := s.provider.CreateCustomer(ctx, user.Email, user.Name, user.ID)
	if err != nil {
		s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("Failed to create Stripe customer")
		return "", err
	}

	err = s.users.UpdateStripeCustomerID(ctx, user.ID, customerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stored, gerr := s.users.GetByID(ctx, user.ID)
		if gerr != nil {
			return "", fmt.Errorf("reload user %d: %w", user.ID, gerr)
		}
		if !stored.HasStripeCustomer() {
			return "", fmt.Errorf("store stripe customer for user %d: %w", user.ID, err)
		}
		s.logger.Warn().Uint("user_id", user.ID).Str("orphan_customer_id", customerID).
			Msg("Stripe customer created concurrently; keeping the stored one")
		user.StripeCustomerID = stored.StripeCustomerID
		return stored.StripeCustomer(), nil
	}
	if err != nil {
		s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("Failed to store Stripe customer id")
		return "", fmt.Errorf("store stripe customer for user %d: %w", user.ID, err)
	}

	user.StripeCustomerID = &customerID
	s.logger.Info().Uint("user_id", user.ID).Str("customer_id", customerID).Msg("Created Stripe customer")
	return customerID, nil
}

// CheckoutURL creates a subscription checkout for the configured price with
// success and cancel URLs back to the dashboard.
func (s *Service) CheckoutURL(ctx context.Context, user *models.User) (string, error) {
	if s.provider == nil || s.opts.PriceID == "" {
		return "", ErrBillingDisabled
	}
	customerID, err := s.EnsureCustomer(ctx, user)
	if err != nil {
		return "", err
	}
	base := s.dashboardURL()
	url, err := s.provider.CreateCheckoutSession(ctx, customerID, s.opts.PriceID, base+"?checkout=success", base+"?checkout=cancel")
	if err != nil {
		s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("Failed to create checkout session")
		return "", err
	}
	return url, nil
}

// PortalURL creates a customer portal session returning to the dashboard.
func (s *Service) PortalURL(ctx context.Context, user *models.User) (string, error) {
	if s.provider == nil {
		return "", ErrBillingDisabled
	}
	customerID, err := s.EnsureCustomer(ctx, user)
	if err != nil {
		return "", err
	}
	url, err := s.provider.CreatePortalSession(ctx, customerID, s.dashboardURL())
	if err != nil {
		s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("Failed to create portal session")
		return "", err
	}
	return url, nil
}

// HandleStripeWebhook verifies, records and processes one webhook delivery.
// Redeliveries of an already processed event are acknowledged without work.
func (s *Service) HandleStripeWebhook(ctx context.Context, payload []byte, signatureHeader string) (*WebhookOutcome, error) {
	event, err := ParseStripeWebhook(payload, signatureHeader, s.opts.WebhookSecret)
	if err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			s.logger.Warn().Err(err).Msg("Rejected Stripe webhook")
		}
		return nil, err
	}

	outcome := &WebhookOutcome{EventID: event.ID, EventType: event.Type}

	created, stored, err := s.RecordWebhookEvent(ctx, WebhookEventInput{
		Provider:        models.BillingProviderStripe,
		ProviderEventID: event.ID,
		EventType:       event.Type,
		CustomerID:      event.CustomerID,
		PayloadJSON:     string(payload),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("event_id", event.ID).Msg("Failed to record webhook event")
		return nil, err
	}
	if !created && stored.IsProcessed() {
		outcome.Duplicate = true
		return outcome, nil
	}

	procErr := s.processEvent(ctx, event, outcome)
	if err := s.MarkWebhookProcessed(ctx, stored.ID, procErr); err != nil {
		s.logger.Error().Err(err).Str("event_id", event.ID).Msg("Failed to mark webhook event processed")
	}
	if procErr != nil {
		return nil, procErr
	}
	return outcome, nil
}

func (s *Service) processEvent(ctx context.Context, event WebhookEvent, outcome *WebhookOutcome) error {
	if !isSubscriptionEvent(event.Type) || event.CustomerID == "" {
		outcome.Ignored = true
		return nil
	}

	user, err := s.users.GetByStripeCustomerID(ctx, event.CustomerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn().Str("customer_id", event.CustomerID).Str("event_type", event.Type).
			Msg("Webhook for unknown Stripe customer")
		outcome.Ignored = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve user for customer %s: %w", event.CustomerID, err)
	}

	outcome.UserID = user.ID
	if s.invalidator != nil {
		s.invalidator.DashboardChanged(ctx, user.ID)
	}
	s.logger.Info().Uint("user_id", user.ID).Str("event_type", event.Type).Msg("Subscription changed")
	return nil
}

// RecordWebhookEvent persists webhook payloads idempotently.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.BillingWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		CustomerID:      strings.TrimSpace(in.CustomerID),
		PayloadJSON:     in.PayloadJSON,
	}
	return s.repo.CreateWebhookEventIfNotExists(ctx, event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(ctx, webhookEventID, errMsg)
}

func (s *Service) dashboardURL() string {
	return strings.TrimRight(s.opts.PublicDomain, "/") + "/dashboard"
}
