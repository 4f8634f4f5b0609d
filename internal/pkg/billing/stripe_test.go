package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

func TestSubscriptionFromStripeReadsItemPeriod(t *testing.T) {
	s := &stripe.Subscription{
		ID:      "sub_1",
		Status:  stripe.SubscriptionStatusActive,
		Created: 1704153600, // 2024-01-02
		Items: &stripe.SubscriptionItemList{Data: []*stripe.SubscriptionItem{{
			CurrentPeriodStart: 1704067200, // 2024-01-01
			CurrentPeriodEnd:   1706745600, // 2024-02-01
		}}},
	}

	got := subscriptionFromStripe(s)

	assert.Equal(t, "sub_1", got.ID)
	assert.True(t, got.IsActive())
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), got.Created)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got.PeriodStart)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), got.PeriodEnd)
}

func TestSubscriptionFromStripeWithoutItems(t *testing.T) {
	got := subscriptionFromStripe(&stripe.Subscription{ID: "sub_2", Status: "past_due"})

	assert.False(t, got.IsActive())
	assert.True(t, got.PeriodStart.IsZero())
	assert.True(t, got.Created.IsZero())
}

func TestStripeProviderListSubscriptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/subscriptions", r.URL.Path)
		assert.Equal(t, "cus_42", r.URL.Query().Get("customer"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"url": "/v1/subscriptions",
			"has_more": false,
			"data": [{
				"id": "sub_1",
				"object": "subscription",
				"status": "active",
				"created": 1704153600,
				"items": {"object": "list", "data": [{"id": "si_1", "object": "subscription_item", "current_period_start": 1704067200, "current_period_end": 1706745600}]}
			}]
		}`))
	}))
	defer srv.Close()

	prev := stripe.GetBackend(stripe.APIBackend)
	stripe.SetBackend(stripe.APIBackend, stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
	}))
	defer stripe.SetBackend(stripe.APIBackend, prev)

	p := NewStripeProvider("sk_test_123", zerolog.Nop())
	subs, err := p.ListSubscriptions(context.Background(), "cus_42")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "sub_1", subs[0].ID)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), subs[0].Created)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), subs[0].PeriodEnd)
}
