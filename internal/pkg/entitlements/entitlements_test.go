package entitlements

import "testing"

func TestNormalizePlan(t *testing.T) {
	tests := []struct {
		in   string
		want Plan
	}{
		{in: "free", want: PlanFree},
		{in: "premium", want: PlanPremium},
		{in: " PREMIUM ", want: PlanPremium},
		{in: "premium_max", want: PlanFree},
		{in: "", want: PlanFree},
	}

	for _, tt := range tests {
		if got := NormalizePlan(tt.in); got != tt.want {
			t.Fatalf("NormalizePlan(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerationsPerWindow(t *testing.T) {
	if got := DefaultLimits.GenerationsPerWindow(PlanFree); got != 10 {
		t.Fatalf("free limit = %d, want 10", got)
	}
	if got := DefaultLimits.GenerationsPerWindow(PlanPremium); got != 40 {
		t.Fatalf("premium limit = %d, want 40", got)
	}
	custom := Limits{Free: 2, Premium: 5}
	if got := custom.GenerationsPerWindow(PlanForSubscription(true)); got != 5 {
		t.Fatalf("custom premium limit = %d, want 5", got)
	}
}

func TestCycleName(t *testing.T) {
	if CycleName(PlanPremium) != "billing cycle" {
		t.Fatalf("expected premium cycle to be billing cycle")
	}
	if CycleName(PlanFree) != "month" {
		t.Fatalf("expected free cycle to be month")
	}
}
