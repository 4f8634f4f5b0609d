package billing

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// ErrInvalidSignature is returned when a webhook payload fails verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// WebhookEvent is a verified Stripe event reduced to what the service needs.
type WebhookEvent struct {
	ID         string
	Type       string
	CustomerID string
	Raw        []byte
}

// ParseStripeWebhook verifies the Stripe-Signature header and extracts the
// customer the event belongs to.
func ParseStripeWebhook(payload []byte, signatureHeader, secret string) (WebhookEvent, error) {
	if secret == "" || signatureHeader == "" {
		return WebhookEvent{}, ErrInvalidSignature
	}
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := WebhookEvent{ID: event.ID, Type: string(event.Type), Raw: payload}
	if event.Data == nil {
		return out, nil
	}

	switch event.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return out, fmt.Errorf("decode checkout session: %w", err)
		}
		if cs.Customer != nil {
			out.CustomerID = cs.Customer.ID
		}
	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted",
		"customer.subscription.paused", "customer.subscription.resumed":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return out, fmt.Errorf("decode subscription: %w", err)
		}
		if sub.Customer != nil {
			out.CustomerID = sub.Customer.ID
		}
	}
	return out, nil
}
