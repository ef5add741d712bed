package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/quotescope/quotescope/pkg/logger"
	"github.com/quotescope/quotescope/pkg/metrics"
	"github.com/quotescope/quotescope/pkg/quote"
)

const (
	DefaultTTL           = time.Hour
	DefaultSweepInterval = 10 * time.Minute
)

// Stats is an observational snapshot; it is not used for correctness.
type Stats struct {
	Entries int    `json:"entryCount"`
	Hits    uint64 `json:"hitCount"`
	Misses  uint64 `json:"missCount"`
}

type entry struct {
	result    quote.ScraperResult
	expiresAt time.Time
}

// Cache is a time-bounded, content-addressed store of calculation results.
// It is safe for concurrent use.
type Cache struct {
	ttl   time.Duration
	sweep time.Duration
	now   func() time.Time
	log   logger.Logger

	mu      sync.RWMutex
	entries map[string]entry

	hits   atomic.Uint64
	misses atomic.Uint64

	stop      chan struct{}
	closeOnce sync.Once
	done      chan struct{}
}

type Option func(*Cache)

// WithTTL sets the default time-to-live used when Set receives ttl <= 0.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithSweepInterval sets how often expired entries are reclaimed. A value
// <= 0 disables the background sweep.
func WithSweepInterval(d time.Duration) Option {
	return func(c *Cache) { c.sweep = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(l logger.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a cache and starts its sweeper. Call Close to stop it.
func New(opts ...Option) *Cache {
	c := &Cache{
		ttl:     DefaultTTL,
		sweep:   DefaultSweepInterval,
		now:     time.Now,
		log:     logger.Nop{},
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	if c.sweep > 0 {
		go c.sweepLoop()
	} else {
		close(c.done)
	}
	return c
}

// Get returns the stored result for req marked as cached. A key derivation
// failure or an expired entry is reported as a miss.
func (c *Cache) Get(req quote.CalculationRequest) (quote.ScraperResult, bool) {
	key, err := Key(req)
	if err != nil {
		c.log.Warnf("Cache key derivation failed, treating as miss: %v", err)
		c.miss()
		return quote.ScraperResult{}, false
	}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expiresAt) {
		c.log.Debugf("[Cache MISS] %s - %s...", req.InsuranceCompany, key[:8])
		c.miss()
		return quote.ScraperResult{}, false
	}

	c.log.Debugf("[Cache HIT] %s - %s...", req.InsuranceCompany, key[:8])
	c.hits.Add(1)
	metrics.IncreaseCacheLookupMetric(metrics.CacheHit)
	res := e.result
	res.Cached = true
	return res, true
}

func (c *Cache) miss() {
	c.misses.Add(1)
	metrics.IncreaseCacheLookupMetric(metrics.CacheMiss)
}

// Set stores result under req's key, replacing any previous entry. A ttl
// <= 0 selects the cache's default.
func (c *Cache) Set(req quote.CalculationRequest, result quote.ScraperResult, ttl time.Duration) bool {
	key, err := Key(req)
	if err != nil {
		c.log.Warnf("Cache key derivation failed, not storing: %v", err)
		return false
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	result.Cached = false

	c.mu.Lock()
	c.entries[key] = entry{result: result, expiresAt: c.now().Add(ttl)}
	n := len(c.entries)
	c.mu.Unlock()

	metrics.UpdateCacheEntriesMetric(n)
	c.log.Debugf("[Cache SET] %s - %s... (TTL: %s)", req.InsuranceCompany, key[:8], ttl)
	return true
}

// Delete removes req's entry and reports whether one was present.
func (c *Cache) Delete(req quote.CalculationRequest) bool {
	key, err := Key(req)
	if err != nil {
		return false
	}
	c.mu.Lock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	n := len(c.entries)
	c.mu.Unlock()

	if ok {
		metrics.UpdateCacheEntriesMetric(n)
		c.log.Debugf("[Cache DELETE] %s - %s...", req.InsuranceCompany, key[:8])
	}
	return ok
}

// Flush drops every entry.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
	metrics.UpdateCacheEntriesMetric(0)
	c.log.Infof("Cache flushed")
}

func (c *Cache) Stats() Stats {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	return Stats{Entries: n, Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Sweep removes expired entries and returns how many were dropped.
func (c *Cache) Sweep() int {
	now := c.now()
	c.mu.Lock()
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	n := len(c.entries)
	c.mu.Unlock()

	if removed > 0 {
		metrics.UpdateCacheEntriesMetric(n)
		c.log.Debugf("Cache sweep removed %d expired entries", removed)
	}
	return removed
}

func (c *Cache) sweepLoop() {
	defer close(c.done)
	ticker := time.NewTicker(c.sweep)
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

// Close stops the background sweep. It is safe to call more than once.
func (c *Cache) Close() {
	c.closeOnce.Do(func() { close(c.stop) })
	<-c.done
}
