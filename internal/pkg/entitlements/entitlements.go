package entitlements

import (
	"strings"
)

type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// Limits holds the generation allowance per plan and window.
type Limits struct {
	Free    int
	Premium int
}

// DefaultLimits are used when no configuration overrides them.
var DefaultLimits = Limits{Free: 10, Premium: 40}

// NormalizePlan maps anything unknown to the free plan.
func NormalizePlan(plan string) Plan {
	switch Plan(strings.ToLower(strings.TrimSpace(plan))) {
	case PlanPremium:
		return PlanPremium
	default:
		return PlanFree
	}
}

// PlanForSubscription returns premium only for a subscription whose status is
// exactly active. Trialing, past due and canceled subscriptions get free.
func PlanForSubscription(subscribedActive bool) Plan {
	if subscribedActive {
		return PlanPremium
	}
	return PlanFree
}

// GenerationsPerWindow returns how many chapter sets a plan may create per
// quota window.
func (l Limits) GenerationsPerWindow(plan Plan) int {
	switch plan {
	case PlanPremium:
		return l.Premium
	default:
		return l.Free
	}
}

// CycleName is the user-facing name of a plan's quota window.
func CycleName(plan Plan) string {
	if plan == PlanPremium {
		return "billing cycle"
	}
	return "month"
}
