package indicator

import (
	"fmt"
	"sync"

	talib "github.com/markcheno/go-talib"

	"broker-core/internal/domain"
)

// Summary 为一次指标计算的汇总。
type Summary struct {
	Timeframe     string
	EMA12         float64
	EMA26         float64
	RSI14         float64
	ATR14         float64
	Close         float64
	PreviousClose float64
}

type cacheEntry struct {
	key     string
	summary Summary
}

// Calculator 对已获取的K线做常用指标汇总并带有简单缓存。
type Calculator struct {
	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewCalculator 创建 Calculator。
func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[string]cacheEntry),
	}
}

// Compute 依据给定K线计算指标汇总，K线需按时间升序。
func (c *Calculator) Compute(timeframe domain.Timeframe, bars []domain.Bar) (Summary, error) {
	if len(bars) == 0 {
		return Summary{}, fmt.Errorf("计算指标失败: 输入K线为空")
	}

	series := NewSeries(bars)
	cacheKey := fmt.Sprintf("%s:%d:%d", timeframe, series.Len(), series.Timestamps[series.Len()-1].Unix())

	c.mu.Lock()
	if entry, ok := c.cache[string(timeframe)]; ok && entry.key == cacheKey {
		c.mu.Unlock()
		return entry.summary, nil
	}
	c.mu.Unlock()

	summary := Summary{
		Timeframe:     string(timeframe),
		Close:         Last(series.Close),
		PreviousClose: Prev(series.Close),
	}

	if series.Len() >= 27 {
		summary.EMA12 = Last(talib.Ema(series.Close, 12))
		summary.EMA26 = Last(talib.Ema(series.Close, 26))
	}
	if series.Len() >= 15 {
		summary.RSI14 = Last(talib.Rsi(series.Close, 14))
		summary.ATR14 = Last(talib.Atr(series.High, series.Low, series.Close, 14))
	}

	c.mu.Lock()
	c.cache[string(timeframe)] = cacheEntry{key: cacheKey, summary: summary}
	c.mu.Unlock()

	return summary, nil
}
