package marketdata

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"broker-core/internal/domain"
	"broker-core/internal/port"
)

// Options 控制行情服务行为。CacheTTL 不大于零时关闭缓存。
type Options struct {
	CacheTTL        time.Duration
	CacheMaxEntries int
}

// Service 在 MarketData 端口之上提供符号规范、时间序整理与可选缓存，
// 自身同样实现 port.MarketData，可作为装饰器插在任意后端之前。
type Service struct {
	data   port.MarketData
	cache  *barsCache
	logger *zap.Logger
}

// NewService 创建行情服务。
func NewService(data port.MarketData, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		data:   data,
		logger: logger,
	}
	if opts.CacheTTL > 0 {
		maxEntries := opts.CacheMaxEntries
		if maxEntries <= 0 {
			maxEntries = 128
		}
		s.cache = newBarsCache(opts.CacheTTL, maxEntries, nil)
	}
	return s
}

// GetBars 返回 symbol 最近的 limit 根K线，按时间升序且时间戳去重
// （重复时间戳保留最后一条）。命中缓存时返回缓存对象本身。
func (s *Service) GetBars(ctx context.Context, symbol string, timeframe domain.Timeframe, limit int) ([]domain.Bar, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	key := fmt.Sprintf("%s|%s|%d", sym, timeframe, limit)

	if s.cache != nil {
		if bars, ok := s.cache.get(key); ok {
			s.logger.Debug("K线缓存命中",
				zap.String("symbol", sym),
				zap.String("timeframe", string(timeframe)),
				zap.Int("limit", limit),
			)
			return bars, nil
		}
	}

	bars, err := s.data.GetBars(ctx, sym, timeframe, limit)
	if err != nil {
		return nil, err
	}

	bars = dedupeByTimestamp(bars)
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})

	if s.cache != nil {
		s.cache.put(key, bars)
	}

	return bars, nil
}

// dedupeByTimestamp 按时间戳去重，相同时间戳保留最后出现的一条。
func dedupeByTimestamp(bars []domain.Bar) []domain.Bar {
	if len(bars) < 2 {
		return bars
	}

	seen := make(map[int64]int, len(bars))
	out := make([]domain.Bar, 0, len(bars))
	for _, bar := range bars {
		ts := bar.Timestamp.UnixNano()
		if idx, ok := seen[ts]; ok {
			out[idx] = bar
			continue
		}
		seen[ts] = len(out)
		out = append(out, bar)
	}
	return out
}
