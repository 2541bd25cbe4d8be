package binance

import (
	"fmt"
	"strings"
	"time"

	ccxt "github.com/ccxt/ccxt/go/v4"
	"github.com/shopspring/decimal"

	"broker-core/internal/domain"
)

// mapTimeframe 将领域时间粒度映射为 ccxt 的周期字符串。
func mapTimeframe(tf domain.Timeframe) (string, error) {
	switch tf {
	case domain.TimeframeOneMin:
		return "1m", nil
	case domain.TimeframeFiveMin:
		return "5m", nil
	case domain.TimeframeFifteenMin:
		return "15m", nil
	case domain.TimeframeOneHour:
		return "1h", nil
	case domain.TimeframeOneDay:
		return "1d", nil
	default:
		return "", fmt.Errorf("不支持的时间粒度 %q", string(tf))
	}
}

// mapTimeInForce 将领域有效期映射为 Binance 合约支持的取值。
// 合约市场没有 day 订单，按惯例退化为 GTC；opg/cls 无对应语义。
func mapTimeInForce(tif domain.TimeInForce) (string, error) {
	switch tif {
	case domain.TimeInForceDay, domain.TimeInForceGTC:
		return "GTC", nil
	case domain.TimeInForceIOC:
		return "IOC", nil
	case domain.TimeInForceFOK:
		return "FOK", nil
	default:
		return "", fmt.Errorf("binanceusdm 不支持的 time_in_force %q", string(tif))
	}
}

// mapStatus 将后端原始状态归一到统一的订单状态。
// 识别 ccxt 与常见券商 API 两套词表，未识别的状态按 pending 处理。
func mapStatus(raw string, filled decimal.Decimal) domain.OrderStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "open", "new", "accepted":
		if filled.IsPositive() {
			return domain.OrderStatusPartiallyFilled
		}
		return domain.OrderStatusNew
	case "partially_filled":
		return domain.OrderStatusPartiallyFilled
	case "closed", "filled":
		return domain.OrderStatusFilled
	case "canceled", "cancelled":
		return domain.OrderStatusCanceled
	case "rejected":
		return domain.OrderStatusRejected
	case "expired":
		return domain.OrderStatusExpired
	case "replaced":
		return domain.OrderStatusReplaced
	default:
		return domain.OrderStatusPending
	}
}

// mapOrder 将 ccxt 订单转换为领域订单，保留原始状态与载荷用于审计。
func mapOrder(raw ccxt.Order) domain.Order {
	filled := decimal.Zero
	if raw.Filled != nil {
		filled = decimal.NewFromFloat(*raw.Filled)
	}

	order := domain.Order{
		ID:            derefString(raw.Id),
		Symbol:        derefString(raw.Symbol),
		FilledQty:     filled,
		ClientOrderID: derefString(raw.ClientOrderId),
		RawStatus:     derefString(raw.Status),
		RawPayload:    raw.Info,
	}
	order.Status = mapStatus(order.RawStatus, filled)

	if raw.Timestamp != nil {
		ts := time.UnixMilli(*raw.Timestamp).UTC()
		order.SubmittedAt = &ts
	}
	if order.Status == domain.OrderStatusFilled && raw.LastTradeTimestamp != nil {
		ts := time.UnixMilli(*raw.LastTradeTimestamp).UTC()
		order.FilledAt = &ts
	}

	return order
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func decimalPtrFromFloat(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}
