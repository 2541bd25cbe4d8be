package binance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"broker-core/internal/domain"
	"broker-core/internal/port"
)

// PlaceOrder 将归一化后的订单请求映射为 ccxt 委托并提交。
func (c *Client) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error) {
	if req.Qty == nil {
		// 合约市场按张数计量，没有报价币金额下单的统一入口。
		return domain.Order{}, port.NewBrokerError("place_order", false,
			errors.New("binanceusdm 不支持 notional 下单，请改用 qty"))
	}

	tif, err := mapTimeInForce(req.TimeInForce)
	if err != nil {
		return domain.Order{}, port.NewBrokerError("place_order", false, err)
	}

	amount := req.Qty.InexactFloat64()
	params := map[string]interface{}{}
	if req.ClientOrderID != "" {
		params["clientOrderId"] = req.ClientOrderID
	}

	var raw ccxt.Order
	submit := func() error {
		if err := c.ensureMarketsLoaded(ctx); err != nil {
			return err
		}

		var submitErr error
		switch req.Type {
		case domain.OrderTypeMarket:
			raw, submitErr = c.exchange.CreateMarketOrder(req.Symbol, string(req.Side), amount,
				ccxt.WithCreateMarketOrderParams(params))

		case domain.OrderTypeLimit:
			params["timeInForce"] = tif
			raw, submitErr = c.exchange.CreateLimitOrder(req.Symbol, string(req.Side), amount,
				req.LimitPrice.InexactFloat64(),
				ccxt.WithCreateLimitOrderParams(params))

		case domain.OrderTypeStop:
			params["stopPrice"] = req.StopPrice.InexactFloat64()
			raw, submitErr = c.exchange.CreateOrder(req.Symbol, "market", string(req.Side), amount,
				ccxt.WithCreateOrderParams(params))

		case domain.OrderTypeStopLimit:
			params["timeInForce"] = tif
			params["stopPrice"] = req.StopPrice.InexactFloat64()
			raw, submitErr = c.exchange.CreateOrder(req.Symbol, "limit", string(req.Side), amount,
				ccxt.WithCreateOrderPrice(req.LimitPrice.InexactFloat64()),
				ccxt.WithCreateOrderParams(params))

		case domain.OrderTypeTrailingStop:
			if req.TrailPercent != nil {
				params["trailingPercent"] = req.TrailPercent.InexactFloat64()
			} else {
				params["trailingAmount"] = req.TrailPrice.InexactFloat64()
			}
			raw, submitErr = c.exchange.CreateOrder(req.Symbol, "market", string(req.Side), amount,
				ccxt.WithCreateOrderParams(params))

		default:
			return fmt.Errorf("不支持的订单类型 %q", string(req.Type))
		}
		return submitErr
	}

	if err := c.callWithRetry(ctx, "place_order", submit); err != nil {
		return domain.Order{}, port.NewBrokerError("place_order", isTransient(err), err)
	}

	order := mapOrder(raw)
	c.logger.Debug("订单已提交",
		zap.String("order_id", order.ID),
		zap.String("symbol", order.Symbol),
		zap.String("raw_status", order.RawStatus),
	)
	return order, nil
}

// CancelOrder 尝试撤单。订单已成交或不存在返回 (false, nil)。
func (c *Client) CancelOrder(ctx context.Context, orderID string) (bool, error) {
	err := c.callWithRetry(ctx, "cancel_order", func() error {
		if err := c.ensureMarketsLoaded(ctx); err != nil {
			return err
		}
		_, err := c.exchange.CancelOrder(orderID, ccxt.WithCancelOrderSymbol(c.cfg.Market))
		return err
	})
	if err != nil {
		if isOrderNotFound(err) || isInvalidOrderState(err) {
			return false, nil
		}
		return false, port.NewBrokerError("cancel_order", isTransient(err), err)
	}
	return true, nil
}

// GetOrder 按ID查询订单，未找到返回 (nil, nil)。
func (c *Client) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var raw ccxt.Order
	err := c.callWithRetry(ctx, "fetch_order", func() error {
		if err := c.ensureMarketsLoaded(ctx); err != nil {
			return err
		}
		result, err := c.exchange.FetchOrder(orderID, ccxt.WithFetchOrderSymbol(c.cfg.Market))
		if err != nil {
			return err
		}
		raw = result
		return nil
	})
	if err != nil {
		if isOrderNotFound(err) {
			return nil, nil
		}
		return nil, port.NewBrokerError("fetch_order", isTransient(err), err)
	}

	order := mapOrder(raw)
	return &order, nil
}

// GetPositions 返回当前全部非零持仓。
func (c *Client) GetPositions(ctx context.Context) ([]domain.Position, error) {
	var raw []ccxt.Position
	err := c.callWithRetry(ctx, "fetch_positions", func() error {
		if err := c.ensureMarketsLoaded(ctx); err != nil {
			return err
		}
		result, err := c.exchange.FetchPositions()
		if err != nil {
			return err
		}
		raw = result
		return nil
	})
	if err != nil {
		return nil, port.NewBrokerError("fetch_positions", isTransient(err), err)
	}

	now := time.Now().UTC()
	positions := make([]domain.Position, 0, len(raw))
	for _, rawPos := range raw {
		size := derefFloat(rawPos.Contracts)
		if size == 0 {
			continue
		}

		qty := decimal.NewFromFloat(size)
		if strings.EqualFold(derefString(rawPos.Side), "short") {
			qty = qty.Neg()
		}

		updatedAt := now
		positions = append(positions, domain.Position{
			Symbol:       derefString(rawPos.Symbol),
			AssetClass:   domain.AssetClassCrypto,
			Qty:          qty,
			AvgPrice:     decimal.NewFromFloat(derefFloat(rawPos.EntryPrice)),
			MarketValue:  decimalPtrFromFloat(rawPos.Notional),
			UnrealizedPL: decimalPtrFromFloat(rawPos.UnrealizedPnl),
			UpdatedAt:    &updatedAt,
		})
	}
	return positions, nil
}

// GetAccount 返回以 USDT 计价的账户快照。
func (c *Client) GetAccount(ctx context.Context) (domain.Account, error) {
	var raw ccxt.Balances
	err := c.callWithRetry(ctx, "fetch_balance", func() error {
		if err := c.ensureMarketsLoaded(ctx); err != nil {
			return err
		}
		result, err := c.exchange.FetchBalance()
		if err != nil {
			return err
		}
		raw = result
		return nil
	})
	if err != nil {
		return domain.Account{}, port.NewBrokerError("fetch_balance", isTransient(err), err)
	}

	var cash, equity, buyingPower float64
	if raw.Free != nil {
		if v, ok := raw.Free["USDT"]; ok && v != nil {
			cash = *v
			buyingPower = *v
		}
	}
	if raw.Total != nil {
		if v, ok := raw.Total["USDT"]; ok && v != nil {
			equity = *v
		}
	}

	accountID := "binanceusdm"
	if raw.Info != nil {
		if alias, ok := raw.Info["accountAlias"].(string); ok && alias != "" {
			accountID = alias
		}
	}

	now := time.Now().UTC()
	return domain.Account{
		AccountID:   accountID,
		Currency:    "USDT",
		Cash:        decimal.NewFromFloat(cash),
		Equity:      decimal.NewFromFloat(equity),
		BuyingPower: decimal.NewFromFloat(buyingPower),
		UpdatedAt:   &now,
	}, nil
}

// isInvalidOrderState 判断错误是否为"订单状态不允许该操作"，
// 例如撤销一笔已经成交的订单。
func isInvalidOrderState(err error) bool {
	var ccxtErr *ccxt.Error
	if errors.As(err, &ccxtErr) {
		return ccxtErr.Type == ccxt.InvalidOrderErrType
	}
	return false
}
