package marketdata

import (
	"container/list"
	"sync"
	"time"

	"broker-core/internal/domain"
)

// barsCache 是带 TTL 与容量上限的K线缓存，超出容量时淘汰最久未使用的
// 条目。读写并发安全；过期条目在读取时剔除，绝不返回超过 TTL 的数据。
type barsCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	order   *list.List // 尾部为最近使用
	entries map[string]*list.Element
	now     func() time.Time
}

type barsEntry struct {
	key      string
	storedAt time.Time
	bars     []domain.Bar
}

func newBarsCache(ttl time.Duration, maxEntries int, now func() time.Time) *barsCache {
	if now == nil {
		now = time.Now
	}
	return &barsCache{
		ttl:     ttl,
		max:     maxEntries,
		order:   list.New(),
		entries: make(map[string]*list.Element),
		now:     now,
	}
}

func (c *barsCache) get(key string) ([]domain.Bar, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	entry := elem.Value.(*barsEntry)
	if c.now().Sub(entry.storedAt) > c.ttl {
		c.order.Remove(elem)
		delete(c.entries, key)
		return nil, false
	}

	c.order.MoveToBack(elem)
	return entry.bars, true
}

func (c *barsCache) put(key string, bars []domain.Bar) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*barsEntry)
		entry.storedAt = c.now()
		entry.bars = bars
		c.order.MoveToBack(elem)
		return
	}

	c.entries[key] = c.order.PushBack(&barsEntry{key: key, storedAt: c.now(), bars: bars})

	for c.max > 0 && c.order.Len() > c.max {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*barsEntry).key)
	}
}

func (c *barsCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
