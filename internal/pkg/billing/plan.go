package billing

import (
	"strings"

	"github.com/ManuelReschke/ChapterFox/app/models"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/entitlements"
)

func normalizeStatus(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	switch s {
	case models.BillingStatusActive,
		models.BillingStatusTrialing,
		models.BillingStatusPastDue,
		models.BillingStatusCanceled,
		models.BillingStatusIncomplete,
		models.BillingStatusUnpaid,
		models.BillingStatusPaused:
		return s
	case "incomplete_expired":
		return models.BillingStatusCanceled
	default:
		return models.BillingStatusIncomplete
	}
}

// PlanFor returns the plan granted by the authoritative subscription list.
// Only the first entry counts and an empty list means no subscription.
func PlanFor(subs []Subscription) entitlements.Plan {
	if len(subs) == 0 {
		return entitlements.PlanFree
	}
	return entitlements.PlanForSubscription(subs[0].IsActive())
}

// isSubscriptionEvent reports whether a webhook event changes the quota tier.
func isSubscriptionEvent(eventType string) bool {
	switch {
	case strings.HasPrefix(eventType, "customer.subscription."):
		return true
	case eventType == "checkout.session.completed":
		return true
	default:
		return false
	}
}
