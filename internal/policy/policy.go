package policy

import (
	"strings"

	"broker-core/internal/domain"
)

// Precision 控制各类字段的量化精度。单个字段为零值时使用该字段的默认
// 位数，部分覆盖不会影响其余字段；需要量化到整数位时直接调用 Quantize。
type Precision struct {
	QtyPlaces     int32
	PricePlaces   int32
	PercentPlaces int32
	MoneyPlaces   int32
}

// DefaultPrecision 返回与券商无关的默认精度。
func DefaultPrecision() Precision {
	return Precision{
		QtyPlaces:     6,
		PricePlaces:   6,
		PercentPlaces: 4,
		MoneyPlaces:   6,
	}
}

func (p Precision) orDefault() Precision {
	def := DefaultPrecision()
	if p.QtyPlaces == 0 {
		p.QtyPlaces = def.QtyPlaces
	}
	if p.PricePlaces == 0 {
		p.PricePlaces = def.PricePlaces
	}
	if p.PercentPlaces == 0 {
		p.PercentPlaces = def.PercentPlaces
	}
	if p.MoneyPlaces == 0 {
		p.MoneyPlaces = def.MoneyPlaces
	}
	return p
}

// SymbolOptions 控制符号清洗行为。
type SymbolOptions struct {
	Strip bool
	Upper bool
}

// DefaultSymbolOptions 默认去除首尾空白并转为大写。
func DefaultSymbolOptions() SymbolOptions {
	return SymbolOptions{Strip: true, Upper: true}
}

// NormalizeSymbol 按配置清洗符号，清洗后为空返回 *PolicyError。
func NormalizeSymbol(symbol string, opts SymbolOptions) (string, error) {
	s := symbol
	if opts.Strip {
		s = strings.TrimSpace(s)
	}
	if opts.Upper {
		s = strings.ToUpper(s)
	}
	if s == "" {
		return "", &PolicyError{Field: "symbol", Reason: "symbol 归一化后不能为空"}
	}
	return s, nil
}

// CanonicalAssetClass 将自由文本资产类别归一到枚举值，忽略大小写与首尾
// 空白。无法识别的文本回退为 EQUITY：这是对上游脏数据的刻意宽容，
// 与上游实现保持一致，调用方若需要严格模式应在进入领域层前自行校验。
func CanonicalAssetClass(val string) domain.AssetClass {
	s := strings.ToLower(strings.TrimSpace(val))
	for _, cls := range domain.AssetClasses() {
		if s == string(cls) {
			return cls
		}
	}
	return domain.AssetClassEquity
}

// NormalizeOrderRequest 返回 req 的归一化副本：符号清洗、数量与价格字段
// 量化到稳定精度。不修改入参；对已归一化的值重复调用结果不变。
//
// 这里的精度与具体券商无关，券商的 tick/step 约束由各自的适配器负责。
// 归一化结果重新执行全部不变量校验：低于精度下限的正数会被量化归零，
// 这类请求返回 *ValidationError 而不是带着非法值继续流向后端。
func NormalizeOrderRequest(req domain.OrderRequest, prec Precision, opts SymbolOptions) (domain.OrderRequest, error) {
	prec = prec.orDefault()

	symbol, err := NormalizeSymbol(req.Symbol, opts)
	if err != nil {
		return domain.OrderRequest{}, err
	}

	out := req
	out.Symbol = symbol
	out.Qty = Quantize(req.Qty, prec.QtyPlaces)
	out.Notional = Quantize(req.Notional, prec.PricePlaces)
	out.LimitPrice = Quantize(req.LimitPrice, prec.PricePlaces)
	out.StopPrice = Quantize(req.StopPrice, prec.PricePlaces)
	out.TrailPrice = Quantize(req.TrailPrice, prec.PricePlaces)
	out.TrailPercent = Quantize(req.TrailPercent, prec.PercentPlaces)

	if err := out.Validate(); err != nil {
		return domain.OrderRequest{}, err
	}
	return out, nil
}

// NormalizePosition 返回持仓的归一化副本。
func NormalizePosition(pos domain.Position, prec Precision) (domain.Position, error) {
	prec = prec.orDefault()

	symbol, err := NormalizeSymbol(pos.Symbol, DefaultSymbolOptions())
	if err != nil {
		return domain.Position{}, err
	}

	out := pos
	out.Symbol = symbol
	out.AssetClass = CanonicalAssetClass(string(pos.AssetClass))
	out.Qty = pos.Qty.Round(prec.QtyPlaces)
	out.AvgPrice = pos.AvgPrice.Round(prec.PricePlaces)
	out.MarketValue = Quantize(pos.MarketValue, prec.PricePlaces)
	out.UnrealizedPL = Quantize(pos.UnrealizedPL, prec.PricePlaces)
	return out, nil
}

// NormalizeAccount 返回账户快照的归一化副本，
// 账户ID与货币在清洗后必须非空。
func NormalizeAccount(acct domain.Account, prec Precision) (domain.Account, error) {
	prec = prec.orDefault()

	accountID := strings.TrimSpace(acct.AccountID)
	if accountID == "" {
		return domain.Account{}, &PolicyError{Field: "account_id", Reason: "account_id 归一化后不能为空"}
	}
	currency := strings.ToUpper(strings.TrimSpace(acct.Currency))
	if currency == "" {
		return domain.Account{}, &PolicyError{Field: "currency", Reason: "currency 归一化后不能为空"}
	}

	out := acct
	out.AccountID = accountID
	out.Currency = currency
	out.Cash = acct.Cash.Round(prec.MoneyPlaces)
	out.Equity = acct.Equity.Round(prec.MoneyPlaces)
	out.BuyingPower = acct.BuyingPower.Round(prec.MoneyPlaces)
	return out, nil
}
