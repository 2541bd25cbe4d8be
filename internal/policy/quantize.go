package policy

import "github.com/shopspring/decimal"

// Quantize 将十进制值按 places 位小数做四舍五入（0.5 远离零方向），
// 输入为 nil 时原样返回。全程使用精确十进制运算，不经过二进制浮点。
// 对已量化到相同精度的值再次量化是恒等操作。
func Quantize(val *decimal.Decimal, places int32) *decimal.Decimal {
	if val == nil {
		return nil
	}
	rounded := val.Round(places)
	return &rounded
}
