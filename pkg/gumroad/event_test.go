package gumroad

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recruiterops/backend/internal/domain"
)

func TestParseNormalizesEmail(t *testing.T) {
	v := url.Values{}
	v.Set("alert_type", "sale")
	v.Set("email", "  Jane.Doe@Example.COM ")
	v.Set("sale_id", "s-1")

	ev := Parse(v)
	assert.Equal(t, "jane.doe@example.com", ev.Email)
	assert.Equal(t, AlertSale, ev.AlertType)
	assert.False(t, ev.IsPing())
}

func TestParseDefaultsAndTypeFallback(t *testing.T) {
	v := url.Values{}
	v.Set("type", "refund")
	ev := Parse(v)
	assert.Equal(t, AlertRefund, ev.AlertType)

	ev = Parse(url.Values{})
	assert.Equal(t, AlertSale, ev.AlertType)
	assert.True(t, ev.IsPing())
}

func TestParseTimestamp(t *testing.T) {
	v := url.Values{}
	v.Set("sale_timestamp", "2026-08-30T12:00:00Z")
	ev := Parse(v)
	require.False(t, ev.OccurredAt.IsZero())
	assert.Equal(t, time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC), ev.OccurredAt.UTC())

	ev = Parse(url.Values{"sale_timestamp": {"not-a-time"}})
	assert.True(t, ev.OccurredAt.IsZero())
}

func TestDerivedStatus(t *testing.T) {
	cases := []struct {
		name string
		ev   Event
		want string
	}{
		{"plain sale", Event{AlertType: AlertSale}, domain.StatusActive},
		{"refunded flag", Event{AlertType: AlertSale, Refunded: true}, domain.StatusCancelled},
		{"cancelled flag", Event{AlertType: AlertSale, Cancelled: true}, domain.StatusCancelled},
		{"refund alert", Event{AlertType: AlertRefund}, domain.StatusCancelled},
		{"subscription ended", Event{AlertType: AlertSubscriptionEnded}, domain.StatusExpired},
		{"unknown alert", Event{AlertType: "whatever"}, domain.StatusActive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.ev.DerivedStatus())
		})
	}
}

func TestVerifySeller(t *testing.T) {
	ev := Event{SellerID: "seller-1"}
	assert.True(t, ev.VerifySeller(""))
	assert.True(t, ev.VerifySeller("seller-1"))
	assert.False(t, ev.VerifySeller("seller-2"))
}
