package binance

import (
	"context"
	"time"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"github.com/shopspring/decimal"

	"broker-core/internal/domain"
	"broker-core/internal/port"
)

// GetBars 获取指定周期最近的 limit 根K线，按时间升序返回。
func (c *Client) GetBars(ctx context.Context, symbol string, timeframe domain.Timeframe, limit int) ([]domain.Bar, error) {
	tf, err := mapTimeframe(timeframe)
	if err != nil {
		return nil, port.NewMarketDataError("fetch_ohlcv", err)
	}
	if limit <= 0 {
		limit = 1
	}

	var raw []ccxt.OHLCV
	fetchErr := c.callWithRetry(ctx, "fetch_ohlcv_"+tf, func() error {
		if err := c.ensureMarketsLoaded(ctx); err != nil {
			return err
		}

		result, err := c.exchange.FetchOHLCV(
			symbol,
			ccxt.WithFetchOHLCVTimeframe(tf),
			ccxt.WithFetchOHLCVLimit(int64(limit)),
		)
		if err != nil {
			return err
		}

		raw = result
		return nil
	})
	if fetchErr != nil {
		return nil, port.NewMarketDataError("fetch_ohlcv", fetchErr)
	}

	bars := make([]domain.Bar, 0, len(raw))
	for _, item := range raw {
		bars = append(bars, domain.Bar{
			Timestamp: time.UnixMilli(item.Timestamp).UTC(),
			Open:      decimal.NewFromFloat(item.Open),
			High:      decimal.NewFromFloat(item.High),
			Low:       decimal.NewFromFloat(item.Low),
			Close:     decimal.NewFromFloat(item.Close),
			Volume:    int64(item.Volume),
		})
	}

	return bars, nil
}
