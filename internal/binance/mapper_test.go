package binance

import (
	"testing"

	"github.com/shopspring/decimal"

	"broker-core/internal/domain"
)

func TestMapTimeframe(t *testing.T) {
	cases := []struct {
		input domain.Timeframe
		want  string
	}{
		{domain.TimeframeOneMin, "1m"},
		{domain.TimeframeFiveMin, "5m"},
		{domain.TimeframeFifteenMin, "15m"},
		{domain.TimeframeOneHour, "1h"},
		{domain.TimeframeOneDay, "1d"},
	}
	for _, tc := range cases {
		got, err := mapTimeframe(tc.input)
		if err != nil {
			t.Fatalf("mapTimeframe(%q) returned error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("mapTimeframe(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}

	if _, err := mapTimeframe(domain.Timeframe("2W")); err == nil {
		t.Error("expected error for unsupported timeframe")
	}
}

func TestMapTimeInForce(t *testing.T) {
	if got, err := mapTimeInForce(domain.TimeInForceDay); err != nil || got != "GTC" {
		t.Errorf("day: got (%q, %v), want GTC", got, err)
	}
	if got, err := mapTimeInForce(domain.TimeInForceIOC); err != nil || got != "IOC" {
		t.Errorf("ioc: got (%q, %v), want IOC", got, err)
	}
	if _, err := mapTimeInForce(domain.TimeInForceOPG); err == nil {
		t.Error("expected error for opg on a futures backend")
	}
}

func TestMapStatus(t *testing.T) {
	zero := decimal.Zero
	half := decimal.RequireFromString("0.5")

	cases := []struct {
		raw    string
		filled decimal.Decimal
		want   domain.OrderStatus
	}{
		{"open", zero, domain.OrderStatusNew},
		{"open", half, domain.OrderStatusPartiallyFilled},
		{"NEW", zero, domain.OrderStatusNew},
		{"partially_filled", zero, domain.OrderStatusPartiallyFilled},
		{"closed", half, domain.OrderStatusFilled},
		{"filled", half, domain.OrderStatusFilled},
		{"canceled", zero, domain.OrderStatusCanceled},
		{"cancelled", zero, domain.OrderStatusCanceled},
		{"rejected", zero, domain.OrderStatusRejected},
		{"expired", zero, domain.OrderStatusExpired},
		{"replaced", zero, domain.OrderStatusReplaced},
		{"something-new", zero, domain.OrderStatusPending},
		{"", zero, domain.OrderStatusPending},
	}

	for _, tc := range cases {
		if got := mapStatus(tc.raw, tc.filled); got != tc.want {
			t.Errorf("mapStatus(%q, %s) = %q, want %q", tc.raw, tc.filled, got, tc.want)
		}
	}
}
