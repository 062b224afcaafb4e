package cache

import (
	"container/list"
	"sync"
	"time"

	"go.uber.org/zap"
)

const cleanupInterval = 3 * time.Second

// LRUCache evicts the least recently used entry once maxSize is reached.
// Expired entries are dropped lazily on access and by a background sweep.
// Safe for concurrent use.
type LRUCache struct {
	items      map[string]*list.Element
	order      *list.List // front = least recently used
	maxSize    int
	defaultTTL time.Duration
	now        func() time.Time

	mu       sync.Mutex
	stopOnce sync.Once
	stopChan chan struct{}
}

type lruItem struct {
	key  string
	data entry
}

// NewLRUCache creates a cache and starts its cleanup goroutine. A maxSize
// below 1 is treated as 1.
func NewLRUCache(maxSize int, defaultTTL time.Duration) *LRUCache {
	return newLRUCache(maxSize, defaultTTL, time.Now)
}

func newLRUCache(maxSize int, defaultTTL time.Duration, now func() time.Time) *LRUCache {
	if maxSize < 1 {
		maxSize = 1
	}
	c := &LRUCache{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		maxSize:    maxSize,
		defaultTTL: defaultTTL,
		now:        now,
		stopChan:   make(chan struct{}),
	}

	go c.cleanupExpiredKeys()

	return c
}

func (c *LRUCache) cleanupExpiredKeys() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := c.removeExpired(); n > 0 {
				zap.L().Debug("Cleaned up expired cache entries", zap.Int("count", n))
			}
		case <-c.stopChan:
			return
		}
	}
}

func (c *LRUCache) removeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for e := c.order.Front(); e != nil; {
		next := e.Next()
		item := e.Value.(*lruItem)
		if item.data.expired(now) {
			c.order.Remove(e)
			delete(c.items, item.key)
			removed++
		}
		e = next
	}
	return removed
}

// Stop is safe to call more than once.
func (c *LRUCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

func (c *LRUCache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

func (c *LRUCache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	timeout := c.now().Add(ttl)

	if element, ok := c.items[key]; ok {
		item := element.Value.(*lruItem)
		item.data = entry{Value: value, Timeout: timeout}
		c.order.MoveToBack(element)
		return
	}

	if c.order.Len() >= c.maxSize {
		if oldest := c.order.Front(); oldest != nil {
			item := oldest.Value.(*lruItem)
			c.order.Remove(oldest)
			delete(c.items, item.key)
			zap.L().Debug("Cache evicted least recently used entry", zap.String("key", item.key))
		}
	}

	c.items[key] = c.order.PushBack(&lruItem{
		key:  key,
		data: entry{Value: value, Timeout: timeout},
	})
}

// Get marks key as most recently used.
func (c *LRUCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.items[key]
	if !ok {
		return nil, false
	}

	item := element.Value.(*lruItem)
	if item.data.expired(c.now()) {
		c.order.Remove(element)
		delete(c.items, key)
		return nil, false
	}

	c.order.MoveToBack(element)
	return item.data.Value, true
}

func (c *LRUCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.items[key]; ok {
		c.order.Remove(element)
		delete(c.items, key)
	}
}

func (c *LRUCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *LRUCache) MaxSize() int {
	return c.maxSize
}

func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.items = make(map[string]*list.Element)
}

// Keys returns unexpired keys, least recently used first.
func (c *LRUCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	keys := make([]string, 0, c.order.Len())
	for e := c.order.Front(); e != nil; e = e.Next() {
		item := e.Value.(*lruItem)
		if !item.data.expired(now) {
			keys = append(keys, item.key)
		}
	}
	return keys
}
