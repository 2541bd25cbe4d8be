package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"broker-core/internal/domain"
	"broker-core/internal/policy"
)

type fakeBroker struct {
	lastReq    domain.OrderRequest
	placed     domain.Order
	canceled   bool
	order      *domain.Order
	positions  []domain.Position
	account    domain.Account
	placeErr   error
	accountErr error
}

func (f *fakeBroker) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error) {
	f.lastReq = req
	if f.placeErr != nil {
		return domain.Order{}, f.placeErr
	}
	return f.placed, nil
}

func (f *fakeBroker) CancelOrder(ctx context.Context, orderID string) (bool, error) {
	return f.canceled, nil
}

func (f *fakeBroker) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return f.order, nil
}

func (f *fakeBroker) GetPositions(ctx context.Context) ([]domain.Position, error) {
	return f.positions, nil
}

func (f *fakeBroker) GetAccount(ctx context.Context) (domain.Account, error) {
	if f.accountErr != nil {
		return domain.Account{}, f.accountErr
	}
	return f.account, nil
}

type fakeData struct {
	bars []domain.Bar
}

func (f *fakeData) GetBars(ctx context.Context, symbol string, timeframe domain.Timeframe, limit int) ([]domain.Bar, error) {
	return f.bars, nil
}

func dec(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal literal %q: %v", s, err)
	}
	return &v
}

func newTestService(broker *fakeBroker, data *fakeData) *Service {
	return NewService(broker, data, Options{Precision: policy.DefaultPrecision()}, nil)
}

func TestPlaceOrder_NormalizesBeforeDelegating(t *testing.T) {
	broker := &fakeBroker{placed: domain.Order{ID: "o-1", Symbol: "AAPL", Status: domain.OrderStatusNew}}
	svc := newTestService(broker, &fakeData{})

	order, err := svc.PlaceOrder(context.Background(), PlaceOrderParams{
		Symbol:     "  aapl  ",
		Side:       domain.SideBuy,
		Type:       domain.OrderTypeLimit,
		Qty:        dec(t, "1.23456789"),
		LimitPrice: dec(t, "100.1234565"),
	})
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}
	if order.ID != "o-1" {
		t.Errorf("unexpected order id %q", order.ID)
	}

	req := broker.lastReq
	if req.Symbol != "AAPL" {
		t.Errorf("symbol: got %q, want AAPL", req.Symbol)
	}
	if req.Qty.String() != "1.234568" {
		t.Errorf("qty: got %s, want 1.234568", req.Qty)
	}
	if req.LimitPrice.String() != "100.123457" {
		t.Errorf("limit_price: got %s, want 100.123457", req.LimitPrice)
	}
	if req.TimeInForce != domain.TimeInForceDay {
		t.Errorf("expected default tif=day, got %q", req.TimeInForce)
	}
	if req.ClientOrderID == "" {
		t.Error("expected auto-generated client_order_id")
	}
}

func TestPlaceOrder_KeepsCallerClientOrderID(t *testing.T) {
	broker := &fakeBroker{}
	svc := newTestService(broker, &fakeData{})

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderParams{
		Symbol:        "aapl",
		Side:          domain.SideSell,
		Type:          domain.OrderTypeMarket,
		Qty:           dec(t, "1"),
		ClientOrderID: "my-id-7",
	})
	if err != nil {
		t.Fatalf("PlaceOrder returned error: %v", err)
	}
	if broker.lastReq.ClientOrderID != "my-id-7" {
		t.Errorf("client_order_id overwritten: got %q", broker.lastReq.ClientOrderID)
	}
}

func TestPlaceOrder_TrailingStopWithBothTrailFieldsFails(t *testing.T) {
	broker := &fakeBroker{}
	svc := newTestService(broker, &fakeData{})

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderParams{
		Symbol:       "aapl",
		Side:         domain.SideBuy,
		Type:         domain.OrderTypeTrailingStop,
		Qty:          dec(t, "1"),
		TrailPrice:   dec(t, "1"),
		TrailPercent: dec(t, "1"),
	})

	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if vErr.Rule != domain.RuleTypeFieldMismatch {
		t.Errorf("unexpected rule %q", vErr.Rule)
	}
	if broker.lastReq.Symbol != "" {
		t.Error("broker must not be called for invalid request")
	}
}

func TestPlaceOrder_PropagatesBrokerError(t *testing.T) {
	wantErr := errors.New("rejected")
	broker := &fakeBroker{placeErr: wantErr}
	svc := newTestService(broker, &fakeData{})

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderParams{
		Symbol: "aapl",
		Side:   domain.SideBuy,
		Type:   domain.OrderTypeMarket,
		Qty:    dec(t, "1"),
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected broker error to propagate unchanged, got %v", err)
	}
}

func TestCancel_ReturnsFalseWithoutError(t *testing.T) {
	broker := &fakeBroker{canceled: false}
	svc := newTestService(broker, &fakeData{})

	canceled, err := svc.Cancel(context.Background(), "o-1")
	if err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if canceled {
		t.Error("expected canceled=false")
	}
}

func TestGetOrder_NotFoundReturnsNil(t *testing.T) {
	svc := newTestService(&fakeBroker{order: nil}, &fakeData{})

	order, err := svc.GetOrder(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetOrder returned error: %v", err)
	}
	if order != nil {
		t.Errorf("expected nil order, got %+v", order)
	}
}

func TestPositions_NormalizesEachEntry(t *testing.T) {
	broker := &fakeBroker{positions: []domain.Position{
		{
			Symbol:     "  btc/usdt ",
			AssetClass: domain.AssetClass("crypto"),
			Qty:        decimal.RequireFromString("0.123456789"),
			AvgPrice:   decimal.RequireFromString("50000.1234565"),
		},
	}}
	svc := newTestService(broker, &fakeData{})

	positions, err := svc.Positions(context.Background())
	if err != nil {
		t.Fatalf("Positions returned error: %v", err)
	}
	if len(positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(positions))
	}
	if positions[0].Symbol != "BTC/USDT" {
		t.Errorf("symbol: got %q", positions[0].Symbol)
	}
	if positions[0].AssetClass != domain.AssetClassCrypto {
		t.Errorf("asset_class: got %q", positions[0].AssetClass)
	}
	if positions[0].Qty.String() != "0.123457" {
		t.Errorf("qty: got %s", positions[0].Qty)
	}
}

func TestAccount_Normalizes(t *testing.T) {
	broker := &fakeBroker{account: domain.Account{
		AccountID:   " acc-1 ",
		Currency:    "usd",
		Cash:        decimal.RequireFromString("1000.1234565"),
		Equity:      decimal.RequireFromString("2000"),
		BuyingPower: decimal.RequireFromString("4000"),
	}}
	svc := newTestService(broker, &fakeData{})

	acct, err := svc.Account(context.Background())
	if err != nil {
		t.Fatalf("Account returned error: %v", err)
	}
	if acct.AccountID != "acc-1" || acct.Currency != "USD" {
		t.Errorf("unexpected account identity: %q %q", acct.AccountID, acct.Currency)
	}
	if acct.Cash.String() != "1000.123457" {
		t.Errorf("cash: got %s", acct.Cash)
	}
}

func TestSnapshot_AggregatesAccountPositionsAndBars(t *testing.T) {
	broker := &fakeBroker{
		account: domain.Account{
			AccountID:   "acc-1",
			Currency:    "USD",
			Cash:        decimal.RequireFromString("100"),
			Equity:      decimal.RequireFromString("200"),
			BuyingPower: decimal.RequireFromString("400"),
		},
		positions: []domain.Position{{
			Symbol:     "aapl",
			AssetClass: domain.AssetClassEquity,
			Qty:        decimal.RequireFromString("1"),
			AvgPrice:   decimal.RequireFromString("10"),
		}},
	}
	close := decimal.RequireFromString("10")
	data := &fakeData{bars: []domain.Bar{{
		Timestamp: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Open:      close, High: close, Low: close, Close: close, Volume: 1,
	}}}
	svc := newTestService(broker, data)

	snapshot, err := svc.Snapshot(context.Background(), SnapshotRequest{
		Symbol:    "AAPL",
		Timeframe: domain.TimeframeOneHour,
		BarLimit:  10,
	})
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	if snapshot.Account.AccountID != "acc-1" {
		t.Errorf("account_id: got %q", snapshot.Account.AccountID)
	}
	if len(snapshot.Positions) != 1 || snapshot.Positions[0].Symbol != "AAPL" {
		t.Errorf("unexpected positions: %+v", snapshot.Positions)
	}
	if len(snapshot.Bars) != 1 {
		t.Errorf("expected 1 bar, got %d", len(snapshot.Bars))
	}
	if snapshot.RetrievedAt.IsZero() {
		t.Error("expected RetrievedAt to be set")
	}
}

func TestSnapshot_FailsWhenAnyLegFails(t *testing.T) {
	wantErr := errors.New("auth expired")
	broker := &fakeBroker{accountErr: wantErr}
	svc := newTestService(broker, &fakeData{})

	_, err := svc.Snapshot(context.Background(), SnapshotRequest{})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected account error to propagate, got %v", err)
	}
}
