package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManuelReschke/ChapterFox/app/models"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/billing"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/entitlements"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/metrics"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	MsgAuthenticationRequired = "Authentication required"
	MsgUserNotFound           = "User not found"
	MsgCheckFailed            = "Failed to check eligibility"
)

// ResetDateLayout formats the end of a quota window in user messages.
const ResetDateLayout = "January 2, 2006"

// Identity is the caller as established by the session. An empty email means
// nobody is signed in.
type Identity struct {
	Email string
}

func (i Identity) Present() bool {
	return i.Email != ""
}

// Eligibility is the user-facing result of an eligibility check.
type Eligibility struct {
	IsEligible           bool   `json:"isEligible"`
	Message              string `json:"message"`
	RemainingGenerations int    `json:"remainingGenerations"`
}

// Decision is an Eligibility plus the numbers it was derived from.
type Decision struct {
	Eligibility
	Window     Window
	Limit      int
	Used       int
	Subscribed bool
	Plan       entitlements.Plan
}

type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type SubscriptionLookup interface {
	SubscriptionsFor(ctx context.Context, user *models.User) ([]billing.Subscription, error)
}

type UsageCounter interface {
	CountByUserInWindow(ctx context.Context, userID uint, start, end time.Time) (int, error)
}

// Engine decides whether a user may create another chapter set.
type Engine struct {
	users   UserFinder
	subs    SubscriptionLookup
	usage   UsageCounter
	limits  entitlements.Limits
	now     func() time.Time
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMetrics records every decision.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func NewEngine(users UserFinder, subs SubscriptionLookup, usage UsageCounter, limits entitlements.Limits, logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		users:  users,
		subs:   subs,
		usage:  usage,
		limits: limits,
		now:    time.Now,
		logger: logger.With().Str("service", "QuotaEngine").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Check resolves the identity and evaluates it. Expected outcomes are part of
// the result; lookup failures are logged and reported as a denial.
func (e *Engine) Check(ctx context.Context, id Identity) Eligibility {
	if !id.Present() {
		return Eligibility{Message: MsgAuthenticationRequired}
	}

	user, err := e.users.GetByEmail(ctx, id.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && user == nil) {
		return Eligibility{Message: MsgUserNotFound}
	}
	if err != nil {
		e.logger.Error().Err(err).Str("email", id.Email).Msg("Failed to load user for eligibility check")
		return Eligibility{Message: MsgCheckFailed}
	}

	d, err := e.Evaluate(ctx, user)
	if err != nil {
		e.logger.Error().Err(err).Uint("user_id", user.ID).Msg("Eligibility check failed")
		return Eligibility{Message: MsgCheckFailed}
	}
	return d.Eligibility
}

// Evaluate computes the decision for a resolved user.
func (e *Engine) Evaluate(ctx context.Context, user *models.User) (Decision, error) {
	subs, err := e.subs.SubscriptionsFor(ctx, user)
	if err != nil {
		return Decision{}, fmt.Errorf("subscription lookup for user %d: %w", user.ID, err)
	}

	now := e.now().UTC()
	subscribed := len(subs) > 0 && subs[0].IsActive()
	window := CalendarMonth(now)
	if subscribed {
		if w, ok := SubscriptionCycle(subs[0]); ok {
			window = w
		} else {
			e.logger.Warn().Uint("user_id", user.ID).Str("subscription_id", subs[0].ID).
				Time("period_start", subs[0].PeriodStart).Time("period_end", subs[0].PeriodEnd).
				Msg("Subscription period is empty, using calendar month")
		}
	}

	plan := entitlements.PlanForSubscription(subscribed)
	limit := e.limits.GenerationsPerWindow(plan)

	used, err := e.usage.CountByUserInWindow(ctx, user.ID, window.Start, window.End)
	if err != nil {
		return Decision{}, fmt.Errorf("usage count for user %d: %w", user.ID, err)
	}

	d := Decision{
		Window:     window,
		Limit:      limit,
		Used:       used,
		Subscribed: subscribed,
		Plan:       plan,
	}
	d.Eligibility = decide(plan, limit, used, window)

	e.metrics.RecordEligibility(d.IsEligible, string(plan))
	e.logger.Debug().Uint("user_id", user.ID).Str("plan", string(plan)).
		Int("used", used).Int("limit", limit).Bool("eligible", d.IsEligible).
		Msg("Eligibility evaluated")
	return d, nil
}

// Exhausted is the denial the user sees once the window's last slot is gone.
func (d Decision) Exhausted() Eligibility {
	return decide(d.Plan, d.Limit, d.Limit, d.Window)
}

func decide(plan entitlements.Plan, limit, used int, window Window) Eligibility {
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	if remaining == 0 {
		return Eligibility{
			IsEligible: false,
			Message:    exhaustedMessage(plan, limit, window.End),
		}
	}
	return Eligibility{
		IsEligible:           true,
		Message:              remainingMessage(plan, remaining),
		RemainingGenerations: remaining,
	}
}

func remainingMessage(plan entitlements.Plan, remaining int) string {
	return fmt.Sprintf("You have %s remaining this %s.", generations(remaining), entitlements.CycleName(plan))
}

func exhaustedMessage(plan entitlements.Plan, limit int, resetAt time.Time) string {
	date := resetAt.UTC().Format(ResetDateLayout)
	if plan == entitlements.PlanPremium {
		return fmt.Sprintf("You have used all %s for this billing cycle. Your quota resets on %s.", generations(limit), date)
	}
	return fmt.Sprintf("You have used all %s included this month. Upgrade to premium or wait until %s.", generations(limit), date)
}

func generations(n int) string {
	if n == 1 {
		return "1 generation"
	}
	return fmt.Sprintf("%d generations", n)
}
