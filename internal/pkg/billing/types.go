package billing

import (
	"strings"
	"time"

	"github.com/ManuelReschke/ChapterFox/app/models"
)

// Subscription is the provider-agnostic view of one customer subscription.
// Timestamps are UTC.
type Subscription struct {
	ID          string
	Status      string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Created     time.Time
}

// IsActive is strictly status == active.
func (s Subscription) IsActive() bool {
	return strings.EqualFold(strings.TrimSpace(s.Status), models.BillingStatusActive)
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	CustomerID      string
	PayloadJSON     string
}

// WebhookOutcome reports what the webhook handler did with one delivery.
type WebhookOutcome struct {
	EventID   string
	EventType string
	UserID    uint
	Duplicate bool
	Ignored   bool
}
