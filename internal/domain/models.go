package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side 表示买卖方向。
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderType 枚举支持的订单执行类型。
type OrderType string

const (
	OrderTypeMarket       OrderType = "market"
	OrderTypeLimit        OrderType = "limit"
	OrderTypeStop         OrderType = "stop"
	OrderTypeStopLimit    OrderType = "stop_limit"
	OrderTypeTrailingStop OrderType = "trailing_stop"
)

// TimeInForce 定义订单的有效期策略。
type TimeInForce string

const (
	TimeInForceDay TimeInForce = "day"
	TimeInForceGTC TimeInForce = "gtc"
	TimeInForceIOC TimeInForce = "ioc"
	TimeInForceFOK TimeInForce = "fok"
	TimeInForceOPG TimeInForce = "opg"
	TimeInForceCLS TimeInForce = "cls"
)

// OrderStatus 为系统统一识别的订单生命周期状态。
// 各后端的原始状态在进入领域层之前都会被归一到这组取值。
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusNew             OrderStatus = "new"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCanceled        OrderStatus = "canceled"
	OrderStatusRejected        OrderStatus = "rejected"
	OrderStatusExpired         OrderStatus = "expired"
	OrderStatusReplaced        OrderStatus = "replaced"
)

// AssetClass 枚举领域层支持的资产类别。
type AssetClass string

const (
	AssetClassEquity AssetClass = "equity"
	AssetClassCrypto AssetClass = "crypto"
	AssetClassOption AssetClass = "option"
)

// AssetClasses 按固定顺序返回全部资产类别。
func AssetClasses() []AssetClass {
	return []AssetClass{AssetClassEquity, AssetClassCrypto, AssetClassOption}
}

// Timeframe 定义行情聚合的标准时间粒度。
type Timeframe string

const (
	TimeframeOneMin     Timeframe = "1Min"
	TimeframeFiveMin    Timeframe = "5Min"
	TimeframeFifteenMin Timeframe = "15Min"
	TimeframeOneHour    Timeframe = "1H"
	TimeframeOneDay     Timeframe = "1D"
)

// Order 表示后端返回的订单视图。
// 只由 Broker 实现构造，领域层自身从不创建（测试桩除外）。
type Order struct {
	ID            string
	Symbol        string
	Status        OrderStatus
	FilledQty     decimal.Decimal
	SubmittedAt   *time.Time
	FilledAt      *time.Time
	ClientOrderID string

	// RawStatus 与 RawPayload 保留后端原始信息，仅用于审计与排障。
	RawStatus  string
	RawPayload map[string]interface{}
}

// Position 表示归一化后的持仓快照，Qty 为正代表多头。
type Position struct {
	Symbol       string
	AssetClass   AssetClass
	Qty          decimal.Decimal
	AvgPrice     decimal.Decimal
	MarketValue  *decimal.Decimal
	UnrealizedPL *decimal.Decimal
	UpdatedAt    *time.Time
}

// Account 表示归一化后的账户快照。
type Account struct {
	AccountID        string
	Currency         string
	Cash             decimal.Decimal
	Equity           decimal.Decimal
	BuyingPower      decimal.Decimal
	PatternDayTrader bool
	UpdatedAt        *time.Time
}

// Bar 表示单根 OHLCV K线。
type Bar struct {
	Timestamp time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    int64
}
