package billing

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	billingsession "github.com/stripe/stripe-go/v82/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	customerpkg "github.com/stripe/stripe-go/v82/customer"
	subscriptionpkg "github.com/stripe/stripe-go/v82/subscription"
)

// Provider is the billing provider surface the service needs.
type Provider interface {
	// ListSubscriptions returns the customer's subscriptions in provider order.
	ListSubscriptions(ctx context.Context, customerID string) ([]Subscription, error)
	CreateCustomer(ctx context.Context, email, name string, userID uint) (string, error)
	CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}

// StripeProvider talks to Stripe through the package level client.
type StripeProvider struct {
	logger zerolog.Logger
}

// NewStripeProvider sets the global Stripe key and returns the provider.
func NewStripeProvider(secretKey string, logger zerolog.Logger) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{logger: logger.With().Str("service", "StripeProvider").Logger()}
}

func (p *StripeProvider) ListSubscriptions(ctx context.Context, customerID string) ([]Subscription, error) {
	params := &stripe.SubscriptionListParams{Customer: stripe.String(customerID)}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	var subs []Subscription
	it := subscriptionpkg.List(params)
	for it.Next() {
		subs = append(subs, subscriptionFromStripe(it.Subscription()))
		// only the first entry is authoritative
		break
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("list stripe subscriptions for %s: %w", customerID, err)
	}
	return subs, nil
}

func (p *StripeProvider) CreateCustomer(ctx context.Context, email, name string, userID uint) (string, error) {
	params := &stripe.CustomerParams{
		Email:    stripe.String(email),
		Name:     stripe.String(name),
		Metadata: map[string]string{"user_id": strconv.FormatUint(uint64(userID), 10)},
	}
	params.Context = ctx
	cust, err := customerpkg.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	return cust.ID, nil
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(customerID),
		LineItems:  []*stripe.CheckoutSessionLineItemParams{{Price: stripe.String(priceID), Quantity: stripe.Int64(1)}},
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.Context = ctx
	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

func (p *StripeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx
	sess, err := billingsession.New(params)
	if err != nil {
		return "", fmt.Errorf("create billing portal session: %w", err)
	}
	return sess.URL, nil
}

// subscriptionFromStripe reads the billing period from the first item, where
// current Stripe API versions keep it.
func subscriptionFromStripe(s *stripe.Subscription) Subscription {
	out := Subscription{
		ID:      s.ID,
		Status:  normalizeStatus(string(s.Status)),
		Created: unixUTC(s.Created),
	}
	if s.Items != nil && len(s.Items.Data) > 0 && s.Items.Data[0] != nil {
		out.PeriodStart = unixUTC(s.Items.Data[0].CurrentPeriodStart)
		out.PeriodEnd = unixUTC(s.Items.Data[0].CurrentPeriodEnd)
	}
	return out
}

func unixUTC(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
