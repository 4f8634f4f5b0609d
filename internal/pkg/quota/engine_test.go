package quota

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ManuelReschke/ChapterFox/app/models"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/billing"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/entitlements"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = utc(2024, time.February, 14, 15, 0, 0)

const testEmail = "ada@example.com"

type engineFixture struct {
	engine *Engine
	users  *fakeUsers
	subs   *fakeSubs
	store  *memStore
	user   *models.User
}

func newFixture(subs ...billing.Subscription) *engineFixture {
	user := &models.User{ID: 7, Email: testEmail}
	f := &engineFixture{
		users: &fakeUsers{users: map[string]*models.User{testEmail: user}},
		subs:  &fakeSubs{subs: subs},
		store: newMemStore(),
		user:  user,
	}
	f.engine = NewEngine(f.users, f.subs, f.store, entitlements.DefaultLimits, zerolog.Nop(),
		WithClock(func() time.Time { return fixedNow }))
	return f
}

func activeSub() billing.Subscription {
	return billing.Subscription{
		ID:          "sub_1",
		Status:      "active",
		PeriodStart: utc(2024, time.February, 3, 0, 0, 0),
		PeriodEnd:   utc(2024, time.March, 3, 0, 0, 0),
		Created:     utc(2023, time.June, 3, 0, 0, 0),
	}
}

func TestCheckWithoutIdentity(t *testing.T) {
	f := newFixture()

	got := f.engine.Check(context.Background(), Identity{})

	assert.Equal(t, Eligibility{IsEligible: false, Message: "Authentication required", RemainingGenerations: 0}, got)
	assert.Equal(t, 0, f.subs.calls)
}

func TestCheckUnknownUser(t *testing.T) {
	f := newFixture()

	got := f.engine.Check(context.Background(), Identity{Email: "nobody@example.com"})

	assert.Equal(t, Eligibility{IsEligible: false, Message: "User not found", RemainingGenerations: 0}, got)
}

func TestCheckReportsLookupFailures(t *testing.T) {
	t.Run("subscription provider", func(t *testing.T) {
		f := newFixture()
		f.subs.err = errors.New("stripe unavailable")

		got := f.engine.Check(context.Background(), Identity{Email: testEmail})
		assert.Equal(t, Eligibility{Message: MsgCheckFailed}, got)
	})

	t.Run("usage store", func(t *testing.T) {
		f := newFixture()
		f.store.err = errors.New("db down")

		got := f.engine.Check(context.Background(), Identity{Email: testEmail})
		assert.Equal(t, Eligibility{Message: MsgCheckFailed}, got)
	})

	t.Run("user store", func(t *testing.T) {
		f := newFixture()
		f.users.err = errors.New("db down")

		got := f.engine.Check(context.Background(), Identity{Email: testEmail})
		assert.Equal(t, Eligibility{Message: MsgCheckFailed}, got)
	})
}

func TestZeroUsageGivesFullTierLimit(t *testing.T) {
	free := newFixture()
	got := free.engine.Check(context.Background(), Identity{Email: testEmail})
	assert.True(t, got.IsEligible)
	assert.Equal(t, 10, got.RemainingGenerations)
	assert.Equal(t, "You have 10 generations remaining this month.", got.Message)

	premium := newFixture(activeSub())
	got = premium.engine.Check(context.Background(), Identity{Email: testEmail})
	assert.True(t, got.IsEligible)
	assert.Equal(t, 40, got.RemainingGenerations)
	assert.Equal(t, "You have 40 generations remaining this billing cycle.", got.Message)
}

func TestSingularMessage(t *testing.T) {
	f := newFixture()
	for i := 0; i < 9; i++ {
		f.store.seed(f.user.ID, utc(2024, time.February, 2, i, 0, 0))
	}

	got := f.engine.Check(context.Background(), Identity{Email: testEmail})

	assert.True(t, got.IsEligible)
	assert.Equal(t, 1, got.RemainingGenerations)
	assert.Equal(t, "You have 1 generation remaining this month.", got.Message)
}

func TestExhaustedQuota(t *testing.T) {
	t.Run("free tier", func(t *testing.T) {
		f := newFixture()
		for i := 0; i < 12; i++ {
			f.store.seed(f.user.ID, utc(2024, time.February, 1, i, 0, 0))
		}

		got := f.engine.Check(context.Background(), Identity{Email: testEmail})

		assert.False(t, got.IsEligible)
		assert.Equal(t, 0, got.RemainingGenerations)
		assert.Equal(t, "You have used all 10 generations included this month. Upgrade to premium or wait until March 1, 2024.", got.Message)
	})

	t.Run("subscribed tier", func(t *testing.T) {
		f := newFixture(activeSub())
		for i := 0; i < 40; i++ {
			f.store.seed(f.user.ID, utc(2024, time.February, 3, 0, i, 0))
		}

		got := f.engine.Check(context.Background(), Identity{Email: testEmail})

		assert.False(t, got.IsEligible)
		assert.Equal(t, 0, got.RemainingGenerations)
		assert.Equal(t, "You have used all 40 generations for this billing cycle. Your quota resets on March 3, 2024.", got.Message)
	})
}

func TestRemainingIsMonotonicInUsage(t *testing.T) {
	for _, sub := range [][]billing.Subscription{nil, {activeSub()}} {
		f := newFixture(sub...)
		previous := -1
		for used := 0; used <= 45; used++ {
			d, err := f.engine.Evaluate(context.Background(), f.user)
			require.NoError(t, err)

			assert.Equal(t, used, d.Used)
			if previous >= 0 {
				assert.LessOrEqual(t, d.RemainingGenerations, previous, "used=%d", used)
			}
			assert.Equal(t, d.RemainingGenerations > 0, d.IsEligible)
			if used >= d.Limit {
				assert.False(t, d.IsEligible, "used=%d", used)
				assert.Equal(t, 0, d.RemainingGenerations)
			}
			previous = d.RemainingGenerations

			f.store.seed(f.user.ID, d.Window.Start.Add(time.Duration(used)*time.Minute))
		}
	}
}

func TestUnsubscribedWindowIsCalendarMonth(t *testing.T) {
	f := newFixture()

	d, err := f.engine.Evaluate(context.Background(), f.user)
	require.NoError(t, err)

	assert.False(t, d.Subscribed)
	assert.Equal(t, entitlements.PlanFree, d.Plan)
	assert.Equal(t, utc(2024, time.February, 1, 0, 0, 0), d.Window.Start)
	assert.Equal(t, utc(2024, time.March, 1, 0, 0, 0), d.Window.End)
	assert.Equal(t, d.Window, f.store.window)
}

func TestSubscribedWindowStartsAtLaterOfPeriodStartAndCreation(t *testing.T) {
	sub := activeSub()
	sub.Created = utc(2024, time.February, 10, 12, 0, 0)
	f := newFixture(sub)
	// generated before the subscription existed, inside the billing period
	f.store.seed(f.user.ID, utc(2024, time.February, 5, 0, 0, 0), utc(2024, time.February, 9, 0, 0, 0))
	f.store.seed(f.user.ID, utc(2024, time.February, 11, 0, 0, 0))

	d, err := f.engine.Evaluate(context.Background(), f.user)
	require.NoError(t, err)

	assert.True(t, d.Subscribed)
	assert.Equal(t, sub.Created, d.Window.Start)
	assert.Equal(t, sub.PeriodEnd, d.Window.End)
	assert.Equal(t, 1, d.Used)
	assert.Equal(t, 39, d.RemainingGenerations)
}

func TestInactiveSubscriptionUsesFreeTierAndCalendarMonth(t *testing.T) {
	for _, status := range []string{"past_due", "canceled", "trialing", "incomplete", "unpaid"} {
		t.Run(status, func(t *testing.T) {
			sub := activeSub()
			sub.Status = status
			f := newFixture(sub)

			d, err := f.engine.Evaluate(context.Background(), f.user)
			require.NoError(t, err)

			assert.False(t, d.Subscribed)
			assert.Equal(t, 10, d.Limit)
			assert.Equal(t, CalendarMonth(fixedNow), d.Window)
			assert.Contains(t, d.Message, "this month")
		})
	}
}

func TestOnlyFirstSubscriptionCounts(t *testing.T) {
	canceled := activeSub()
	canceled.Status = "canceled"
	f := newFixture(canceled, activeSub())

	d, err := f.engine.Evaluate(context.Background(), f.user)
	require.NoError(t, err)

	assert.False(t, d.Subscribed)
	assert.Equal(t, 10, d.Limit)
}

func TestEmptySubscriptionPeriodFallsBackToCalendarMonth(t *testing.T) {
	sub := activeSub()
	sub.PeriodEnd = sub.PeriodStart
	f := newFixture(sub)

	d, err := f.engine.Evaluate(context.Background(), f.user)
	require.NoError(t, err)

	assert.True(t, d.Subscribed)
	assert.Equal(t, 40, d.Limit)
	assert.Equal(t, CalendarMonth(fixedNow), d.Window)
	assert.True(t, d.Window.Valid())
}

func TestConfiguredLimits(t *testing.T) {
	f := newFixture()
	f.engine = NewEngine(f.users, f.subs, f.store, entitlements.Limits{Free: 3, Premium: 5}, zerolog.Nop(),
		WithClock(func() time.Time { return fixedNow }))

	got := f.engine.Check(context.Background(), Identity{Email: testEmail})
	assert.Equal(t, 3, got.RemainingGenerations)
}

func TestGenerationsWording(t *testing.T) {
	for n, want := range map[int]string{0: "0 generations", 1: "1 generation", 2: "2 generations", 40: "40 generations"} {
		assert.Equal(t, want, generations(n), fmt.Sprint(n))
	}
}

func TestDecisionExhausted(t *testing.T) {
	f := newFixture(activeSub())

	d, err := f.engine.Evaluate(context.Background(), f.user)
	require.NoError(t, err)
	require.True(t, d.IsEligible)

	got := d.Exhausted()
	assert.False(t, got.IsEligible)
	assert.Equal(t, 0, got.RemainingGenerations)
	assert.Equal(t, "You have used all 40 generations for this billing cycle. Your quota resets on March 3, 2024.", got.Message)
}
