package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderRequest 表示一条与具体券商无关的下单请求。
//
// 值一经 NewOrderRequest 构造成功即视为合法且不可变：归一化通过复制产生
// 新值，原值按约定不再修改。任何语义非法的组合都无法通过构造。
type OrderRequest struct {
	Symbol        string
	Side          Side
	Type          OrderType
	TimeInForce   TimeInForce
	Qty           *decimal.Decimal
	Notional      *decimal.Decimal
	LimitPrice    *decimal.Decimal
	StopPrice     *decimal.Decimal
	TrailPrice    *decimal.Decimal
	TrailPercent  *decimal.Decimal
	ClientOrderID string
	AssetClass    AssetClass
}

// NewOrderRequest 填充默认值并执行全部不变量校验。
// 校验快速失败：发现第一处违反即返回 *ValidationError。
func NewOrderRequest(req OrderRequest) (OrderRequest, error) {
	if req.TimeInForce == "" {
		req.TimeInForce = TimeInForceDay
	}
	if req.AssetClass == "" {
		req.AssetClass = AssetClassEquity
	}
	if err := req.Validate(); err != nil {
		return OrderRequest{}, err
	}
	return req, nil
}

// Validate 依次检查 qty/notional 互斥、订单类型字段组合、价格字段正值。
func (r OrderRequest) Validate() error {
	if (r.Qty == nil) == (r.Notional == nil) {
		return newValidationError(RuleExclusivity, "必须且只能提供 qty 与 notional 之一", "qty", "notional")
	}
	if r.Qty != nil && !r.Qty.IsPositive() {
		return newValidationError(RulePositivity, "qty 必须大于0", "qty")
	}
	if r.Notional != nil && !r.Notional.IsPositive() {
		return newValidationError(RulePositivity, "notional 必须大于0", "notional")
	}

	if err := r.validateTypeFields(); err != nil {
		return err
	}

	for _, field := range []struct {
		name  string
		value *decimal.Decimal
	}{
		{"limit_price", r.LimitPrice},
		{"stop_price", r.StopPrice},
		{"trail_price", r.TrailPrice},
	} {
		if field.value != nil && !field.value.IsPositive() {
			return newValidationError(RulePositivity, fmt.Sprintf("%s 必须大于0", field.name), field.name)
		}
	}
	if r.TrailPercent != nil && !r.TrailPercent.IsPositive() {
		return newValidationError(RulePositivity, "trail_percent 必须大于0", "trail_percent")
	}

	return nil
}

// validateTypeFields 按订单类型检查必填与禁止字段。
// switch 覆盖全部类型，新增类型会落入 default 并立即报错。
func (r OrderRequest) validateTypeFields() error {
	switch r.Type {
	case OrderTypeMarket:
		if fields := presentFields(r.LimitPrice, r.StopPrice, r.TrailPrice, r.TrailPercent); len(fields) > 0 {
			return newValidationError(RuleTypeFieldMismatch,
				"MARKET 订单不允许携带 limit_price、stop_price、trail_price 或 trail_percent", fields...)
		}

	case OrderTypeLimit:
		if r.LimitPrice == nil {
			return newValidationError(RuleTypeFieldMismatch, "LIMIT 订单必须提供 limit_price", "limit_price")
		}
		if fields := presentFields(nil, r.StopPrice, r.TrailPrice, r.TrailPercent); len(fields) > 0 {
			return newValidationError(RuleTypeFieldMismatch,
				"LIMIT 订单不允许携带 stop_price、trail_price 或 trail_percent", fields...)
		}

	case OrderTypeStop:
		if r.StopPrice == nil {
			return newValidationError(RuleTypeFieldMismatch, "STOP 订单必须提供 stop_price", "stop_price")
		}
		if fields := presentFields(r.LimitPrice, nil, r.TrailPrice, r.TrailPercent); len(fields) > 0 {
			return newValidationError(RuleTypeFieldMismatch,
				"STOP 订单不允许携带 limit_price、trail_price 或 trail_percent", fields...)
		}

	case OrderTypeStopLimit:
		if r.StopPrice == nil || r.LimitPrice == nil {
			return newValidationError(RuleTypeFieldMismatch,
				"STOP_LIMIT 订单必须同时提供 stop_price 与 limit_price", "stop_price", "limit_price")
		}
		if fields := presentFields(nil, nil, r.TrailPrice, r.TrailPercent); len(fields) > 0 {
			return newValidationError(RuleTypeFieldMismatch,
				"STOP_LIMIT 订单不允许携带 trail_price 或 trail_percent", fields...)
		}

	case OrderTypeTrailingStop:
		if (r.TrailPrice == nil) == (r.TrailPercent == nil) {
			return newValidationError(RuleTypeFieldMismatch,
				"TRAILING_STOP 订单必须且只能提供 trail_price 与 trail_percent 之一", "trail_price", "trail_percent")
		}
		if fields := presentFields(r.LimitPrice, r.StopPrice, nil, nil); len(fields) > 0 {
			return newValidationError(RuleTypeFieldMismatch,
				"TRAILING_STOP 订单不允许携带 limit_price 或 stop_price", fields...)
		}

	default:
		return newValidationError(RuleTypeFieldMismatch, fmt.Sprintf("不支持的订单类型 %q", string(r.Type)), "type")
	}

	return nil
}

// presentFields 按 limit_price、stop_price、trail_price、trail_percent 的
// 固定顺序收集非空字段名，nil 占位表示该位置不参与检查。
func presentFields(limitPrice, stopPrice, trailPrice, trailPercent *decimal.Decimal) []string {
	var fields []string
	if limitPrice != nil {
		fields = append(fields, "limit_price")
	}
	if stopPrice != nil {
		fields = append(fields, "stop_price")
	}
	if trailPrice != nil {
		fields = append(fields, "trail_price")
	}
	if trailPercent != nil {
		fields = append(fields, "trail_percent")
	}
	return fields
}
