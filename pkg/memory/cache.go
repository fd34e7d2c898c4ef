package memory

import (
	"strings"
	"sync"
	"time"
)

// Cache is an in-process TTL cache with sliding expiration. Reads through
// Get or GetOrCreate push an entry's deadline forward.
type Cache[V any] struct {
	items map[string]*item[V]
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time

	onEvict func(key string, value V)
	stop    chan struct{}
	once    sync.Once
}

type item[V any] struct {
	value      V
	expiration time.Time
}

// New creates a cache whose entries live for ttl after their last access and
// starts a sweeper that runs every interval. A non-positive interval disables
// the sweeper.
func New[V any](ttl, interval time.Duration) *Cache[V] {
	c := &Cache[V]{
		items: make(map[string]*item[V]),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}

	if interval > 0 {
		go c.cleanup(interval)
	}

	return c
}

// OnEvict registers fn to run for entries that expire or are deleted.
func (c *Cache[V]) OnEvict(fn func(key string, value V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
}

// Get returns the live value for key and refreshes its deadline.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	itm, ok := c.live(key)
	if !ok {
		var zero V
		return zero, false
	}
	itm.expiration = c.now().Add(c.ttl)
	return itm.value, true
}

// Set stores value under key.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &item[V]{value: value, expiration: c.now().Add(c.ttl)}
}

// GetOrCreate returns the live value for key or stores the result of create.
// create runs under the cache lock, so at most one value exists per key.
func (c *Cache[V]) GetOrCreate(key string, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if itm, ok := c.live(key); ok {
		itm.expiration = c.now().Add(c.ttl)
		return itm.value
	}

	v := create()
	c.items[key] = &item[V]{value: v, expiration: c.now().Add(c.ttl)}
	return v
}

// Delete removes key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	itm, ok := c.items[key]
	delete(c.items, key)
	fn := c.onEvict
	c.mu.Unlock()

	if ok && fn != nil {
		fn(key, itm.value)
	}
}

// DeletePrefix removes every key starting with prefix and returns how many went.
func (c *Cache[V]) DeletePrefix(prefix string) int {
	c.mu.Lock()
	var gone []evicted[V]
	for key, itm := range c.items {
		if strings.HasPrefix(key, prefix) {
			gone = append(gone, evicted[V]{key: key, value: itm.value})
			delete(c.items, key)
		}
	}
	fn := c.onEvict
	c.mu.Unlock()

	c.notify(fn, gone)
	return len(gone)
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Sweep drops expired entries and returns how many were removed.
func (c *Cache[V]) Sweep() int {
	c.mu.Lock()
	now := c.now()
	var gone []evicted[V]
	for key, itm := range c.items {
		if now.After(itm.expiration) {
			gone = append(gone, evicted[V]{key: key, value: itm.value})
			delete(c.items, key)
		}
	}
	fn := c.onEvict
	c.mu.Unlock()

	c.notify(fn, gone)
	return len(gone)
}

// Close stops the sweeper.
func (c *Cache[V]) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache[V]) live(key string) (*item[V], bool) {
	itm, ok := c.items[key]
	if !ok || c.now().After(itm.expiration) {
		return nil, false
	}
	return itm, true
}

func (c *Cache[V]) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-c.stop:
			return
		}
	}
}

type evicted[V any] struct {
	key   string
	value V
}

func (c *Cache[V]) notify(fn func(string, V), entries []evicted[V]) {
	if fn == nil {
		return
	}
	for _, e := range entries {
		fn(e.key, e.value)
	}
}
