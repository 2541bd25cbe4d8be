package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal literal %q: %v", s, err)
	}
	return &v
}

func baseRequest(t *testing.T, orderType OrderType) OrderRequest {
	t.Helper()
	return OrderRequest{
		Symbol: "AAPL",
		Side:   SideBuy,
		Type:   orderType,
		Qty:    dec(t, "1"),
	}
}

func expectValidationError(t *testing.T, err error, rule ValidationRule, fields ...string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if vErr.Rule != rule {
		t.Errorf("rule mismatch: got %q want %q", vErr.Rule, rule)
	}
	for _, field := range fields {
		found := false
		for _, got := range vErr.Fields {
			if got == field {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected field %q in error, got %v", field, vErr.Fields)
		}
	}
}

func TestNewOrderRequest_QtyNotionalExclusivity(t *testing.T) {
	cases := []struct {
		name     string
		qty      *decimal.Decimal
		notional *decimal.Decimal
		rule     ValidationRule
	}{
		{"both present", dec(t, "1"), dec(t, "100"), RuleExclusivity},
		{"both absent", nil, nil, RuleExclusivity},
		{"qty zero", dec(t, "0"), nil, RulePositivity},
		{"qty negative", dec(t, "-1"), nil, RulePositivity},
		{"notional zero", nil, dec(t, "0"), RulePositivity},
		{"notional negative", nil, dec(t, "-50"), RulePositivity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewOrderRequest(OrderRequest{
				Symbol:   "AAPL",
				Side:     SideBuy,
				Type:     OrderTypeMarket,
				Qty:      tc.qty,
				Notional: tc.notional,
			})
			expectValidationError(t, err, tc.rule)
		})
	}
}

func TestNewOrderRequest_TypeFieldTable(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(t *testing.T, req *OrderRequest)
		fields []string
	}{
		{"market with limit_price", func(t *testing.T, r *OrderRequest) { r.LimitPrice = dec(t, "10") }, []string{"limit_price"}},
		{"market with stop_price", func(t *testing.T, r *OrderRequest) { r.StopPrice = dec(t, "10") }, []string{"stop_price"}},
		{"market with trail_price", func(t *testing.T, r *OrderRequest) { r.TrailPrice = dec(t, "10") }, []string{"trail_price"}},
		{"market with trail_percent", func(t *testing.T, r *OrderRequest) { r.TrailPercent = dec(t, "1") }, []string{"trail_percent"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := baseRequest(t, OrderTypeMarket)
			tc.mutate(t, &req)
			_, err := NewOrderRequest(req)
			expectValidationError(t, err, RuleTypeFieldMismatch, tc.fields...)
		})
	}

	t.Run("limit requires limit_price", func(t *testing.T) {
		_, err := NewOrderRequest(baseRequest(t, OrderTypeLimit))
		expectValidationError(t, err, RuleTypeFieldMismatch, "limit_price")
	})
	t.Run("limit forbids stop_price", func(t *testing.T) {
		req := baseRequest(t, OrderTypeLimit)
		req.LimitPrice = dec(t, "10")
		req.StopPrice = dec(t, "9")
		_, err := NewOrderRequest(req)
		expectValidationError(t, err, RuleTypeFieldMismatch, "stop_price")
	})
	t.Run("limit forbids trailing fields", func(t *testing.T) {
		req := baseRequest(t, OrderTypeLimit)
		req.LimitPrice = dec(t, "10")
		req.TrailPercent = dec(t, "1")
		_, err := NewOrderRequest(req)
		expectValidationError(t, err, RuleTypeFieldMismatch, "trail_percent")
	})

	t.Run("stop requires stop_price", func(t *testing.T) {
		_, err := NewOrderRequest(baseRequest(t, OrderTypeStop))
		expectValidationError(t, err, RuleTypeFieldMismatch, "stop_price")
	})
	t.Run("stop forbids limit_price", func(t *testing.T) {
		req := baseRequest(t, OrderTypeStop)
		req.StopPrice = dec(t, "9")
		req.LimitPrice = dec(t, "10")
		_, err := NewOrderRequest(req)
		expectValidationError(t, err, RuleTypeFieldMismatch, "limit_price")
	})

	t.Run("stop_limit requires both prices", func(t *testing.T) {
		req := baseRequest(t, OrderTypeStopLimit)
		req.StopPrice = dec(t, "9")
		_, err := NewOrderRequest(req)
		expectValidationError(t, err, RuleTypeFieldMismatch, "stop_price", "limit_price")
	})
	t.Run("stop_limit forbids trail_price", func(t *testing.T) {
		req := baseRequest(t, OrderTypeStopLimit)
		req.StopPrice = dec(t, "9")
		req.LimitPrice = dec(t, "10")
		req.TrailPrice = dec(t, "1")
		_, err := NewOrderRequest(req)
		expectValidationError(t, err, RuleTypeFieldMismatch, "trail_price")
	})

	t.Run("trailing_stop requires exactly one trail field", func(t *testing.T) {
		_, err := NewOrderRequest(baseRequest(t, OrderTypeTrailingStop))
		expectValidationError(t, err, RuleTypeFieldMismatch, "trail_price", "trail_percent")

		req := baseRequest(t, OrderTypeTrailingStop)
		req.TrailPrice = dec(t, "1")
		req.TrailPercent = dec(t, "1")
		_, err = NewOrderRequest(req)
		expectValidationError(t, err, RuleTypeFieldMismatch, "trail_price", "trail_percent")
		if !strings.Contains(err.Error(), "之一") {
			t.Errorf("expected exclusivity wording in error, got %q", err.Error())
		}
	})
	t.Run("trailing_stop forbids stop_price", func(t *testing.T) {
		req := baseRequest(t, OrderTypeTrailingStop)
		req.TrailPercent = dec(t, "1")
		req.StopPrice = dec(t, "9")
		_, err := NewOrderRequest(req)
		expectValidationError(t, err, RuleTypeFieldMismatch, "stop_price")
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		req := baseRequest(t, OrderType("iceberg"))
		_, err := NewOrderRequest(req)
		expectValidationError(t, err, RuleTypeFieldMismatch, "type")
	})
}

// 两个 trail 字段同时以零值出现时，互斥检查先于正值检查触发。
func TestNewOrderRequest_TrailingBothZeroHitsExclusivityFirst(t *testing.T) {
	req := baseRequest(t, OrderTypeTrailingStop)
	req.TrailPrice = dec(t, "0")
	req.TrailPercent = dec(t, "0")
	_, err := NewOrderRequest(req)
	expectValidationError(t, err, RuleTypeFieldMismatch, "trail_price", "trail_percent")
}

func TestNewOrderRequest_PricePositivity(t *testing.T) {
	req := baseRequest(t, OrderTypeLimit)
	req.LimitPrice = dec(t, "-5")
	_, err := NewOrderRequest(req)
	expectValidationError(t, err, RulePositivity, "limit_price")

	req = baseRequest(t, OrderTypeTrailingStop)
	req.TrailPercent = dec(t, "0")
	_, err = NewOrderRequest(req)
	expectValidationError(t, err, RulePositivity, "trail_percent")
}

func TestNewOrderRequest_ValidOrdersAndDefaults(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(t *testing.T, req *OrderRequest)
	}{
		{"market", func(t *testing.T, r *OrderRequest) {}},
		{"limit", func(t *testing.T, r *OrderRequest) {
			r.Type = OrderTypeLimit
			r.LimitPrice = dec(t, "10")
		}},
		{"stop", func(t *testing.T, r *OrderRequest) {
			r.Type = OrderTypeStop
			r.StopPrice = dec(t, "9")
		}},
		{"stop_limit", func(t *testing.T, r *OrderRequest) {
			r.Type = OrderTypeStopLimit
			r.StopPrice = dec(t, "9")
			r.LimitPrice = dec(t, "10")
		}},
		{"trailing_stop with trail_percent", func(t *testing.T, r *OrderRequest) {
			r.Type = OrderTypeTrailingStop
			r.TrailPercent = dec(t, "1.5")
		}},
		{"trailing_stop with trail_price", func(t *testing.T, r *OrderRequest) {
			r.Type = OrderTypeTrailingStop
			r.TrailPrice = dec(t, "2")
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := baseRequest(t, OrderTypeMarket)
			tc.mutate(t, &req)
			got, err := NewOrderRequest(req)
			if err != nil {
				t.Fatalf("NewOrderRequest returned error: %v", err)
			}
			if got.TimeInForce != TimeInForceDay {
				t.Errorf("expected default time_in_force=day, got %q", got.TimeInForce)
			}
			if got.AssetClass != AssetClassEquity {
				t.Errorf("expected default asset_class=equity, got %q", got.AssetClass)
			}
		})
	}
}

func TestNewOrderRequest_NotionalMarketOrder(t *testing.T) {
	_, err := NewOrderRequest(OrderRequest{
		Symbol:   "AAPL",
		Side:     SideBuy,
		Type:     OrderTypeMarket,
		Notional: dec(t, "500"),
	})
	if err != nil {
		t.Fatalf("notional market order should be valid, got %v", err)
	}
}
