package quota

import (
	"time"

	"github.com/ManuelReschke/ChapterFox/internal/pkg/billing"
)

// Window is a half-open interval [Start, End) in UTC.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies in [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Valid reports whether Start < End.
func (w Window) Valid() bool {
	return w.Start.Before(w.End)
}

// CalendarMonth returns the UTC calendar month containing now.
func CalendarMonth(now time.Time) Window {
	n := now.UTC()
	start := time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// SubscriptionCycle returns [max(periodStart, created), periodEnd) for a
// subscription. The second result is false when the data does not form a
// non-empty interval.
func SubscriptionCycle(sub billing.Subscription) (Window, bool) {
	start := sub.PeriodStart.UTC()
	if created := sub.Created.UTC(); created.After(start) {
		start = created
	}
	w := Window{Start: start, End: sub.PeriodEnd.UTC()}
	if sub.PeriodStart.IsZero() || sub.PeriodEnd.IsZero() || !w.Valid() {
		return Window{}, false
	}
	return w, true
}
