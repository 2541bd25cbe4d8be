package indicator

import (
	"math"
	"time"

	"broker-core/internal/domain"
)

// Series 将K线数据拆分为便于指标计算的序列。
// 指标属于派生分析，精度要求低于资金字段，这里统一转为 float64。
type Series struct {
	Timestamps []time.Time
	Open       []float64
	High       []float64
	Low        []float64
	Close      []float64
	Volume     []float64
}

// NewSeries 从领域K线创建 Series，保持输入顺序。
func NewSeries(bars []domain.Bar) Series {
	length := len(bars)
	series := Series{
		Timestamps: make([]time.Time, length),
		Open:       make([]float64, length),
		High:       make([]float64, length),
		Low:        make([]float64, length),
		Close:      make([]float64, length),
		Volume:     make([]float64, length),
	}

	for i := 0; i < length; i++ {
		bar := bars[i]
		series.Timestamps[i] = bar.Timestamp.UTC()
		series.Open[i] = bar.Open.InexactFloat64()
		series.High[i] = bar.High.InexactFloat64()
		series.Low[i] = bar.Low.InexactFloat64()
		series.Close[i] = bar.Close.InexactFloat64()
		series.Volume[i] = float64(bar.Volume)
	}

	return series
}

// Len 返回序列长度。
func (s Series) Len() int {
	return len(s.Close)
}

// Last 返回序列最后一个值，若为空则返回 NaN。
func Last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}

// Prev 返回序列倒数第二个值，若不足两个元素则返回 NaN。
func Prev(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	return values[len(values)-2]
}
