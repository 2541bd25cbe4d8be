package port

import (
	"context"

	"broker-core/internal/domain"
)

// MarketData 是历史行情后端必须满足的能力接口。
type MarketData interface {
	// GetBars 返回 symbol 在给定周期下最近的 limit 根K线，
	// 按时间升序（最旧在前）。limit 只是建议值，实现可以返回更少。
	// 失败时返回 *MarketDataError。
	GetBars(ctx context.Context, symbol string, timeframe domain.Timeframe, limit int) ([]domain.Bar, error)
}
