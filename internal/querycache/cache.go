package querycache

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrNoFetcher is returned when Query is called without a fetcher
var ErrNoFetcher = errors.New("no fetcher for query")

// Fetcher loads the data for a key
type Fetcher func(ctx context.Context) (any, error)

// MutationFunc performs a write against the backend
type MutationFunc func(ctx context.Context) (any, error)

// Config holds cache settings
type Config struct {
	// MaxEntries bounds the number of entries; 0 means unbounded
	MaxEntries int
	// StaleTime is how long fetched data counts as fresh; <= 0 means
	// data is stale as soon as it lands
	StaleTime time.Duration
	// GCTime is how long an unobserved entry survives PurgeExpired
	GCTime time.Duration
	// Tier is an optional shared second level
	Tier Tier
	// Now overrides the clock
	Now func() time.Time
}

// Result is what a query returns
type Result struct {
	Data      any
	UpdatedAt time.Time
	Stale     bool
}

// Stats holds cache statistics
type Stats struct {
	Entries       int
	Hits          int64
	Misses        int64
	Fetches       int64
	Coalesced     int64
	Invalidations int64
	Evictions     int64
	Mutations     int64
	Pending       int64
}

type entry struct {
	key        Key
	id         string
	data       any
	err        error
	hasData    bool
	updatedAt  time.Time
	invalid    bool
	lastAccess time.Time
	elem       *list.Element
}

// flight is a fetch in progress; invalidated is set when the key is
// invalidated before the fetch lands
type flight struct {
	key         Key
	invalidated bool
}

// Cache is a keyed store of server state with request coalescing,
// stale-while-revalidate reads and prefix invalidation
type Cache struct {
	cfg   Config
	group singleflight.Group

	mu       sync.Mutex
	entries  map[string]*entry
	inflight map[string]*flight
	lru      *list.List
	subs     map[string]map[uint64]func(Event)
	global   map[uint64]func(Event)
	nextSub  uint64
	stats    Stats
}

// New creates a cache
func New(cfg Config) *Cache {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Cache{
		cfg:      cfg,
		entries:  make(map[string]*entry),
		inflight: make(map[string]*flight),
		lru:      list.New(),
		subs:     make(map[string]map[uint64]func(Event)),
		global:   make(map[uint64]func(Event)),
	}
}

// Query returns cached data for key. Fresh data is returned as is; stale
// data is returned and revalidated in the background; otherwise fetcher
// runs, shared by every concurrent caller of the same key.
func (c *Cache) Query(ctx context.Context, key Key, fetcher Fetcher) (Result, error) {
	if fetcher == nil {
		return Result{}, ErrNoFetcher
	}
	id := key.String()

	c.mu.Lock()
	e, ok := c.entries[id]
	if ok && e.hasData {
		e.lastAccess = c.cfg.Now()
		c.lru.MoveToFront(e.elem)
		res := Result{Data: e.data, UpdatedAt: e.updatedAt, Stale: c.isStale(e)}
		c.stats.Hits++
		c.mu.Unlock()
		cacheHits.Inc()

		if res.Stale {
			go c.revalidate(key, fetcher)
		}
		return res, nil
	}
	c.stats.Misses++
	c.mu.Unlock()
	cacheMisses.Inc()

	if res, ok := c.fromTier(ctx, key); ok {
		go c.revalidate(key, fetcher)
		return res, nil
	}

	return c.fetch(ctx, key, fetcher)
}

// Refetch ignores cached data and fetches key, still coalescing with any
// fetch already in flight
func (c *Cache) Refetch(ctx context.Context, key Key, fetcher Fetcher) (Result, error) {
	if fetcher == nil {
		return Result{}, ErrNoFetcher
	}
	return c.fetch(ctx, key, fetcher)
}

// Peek returns the cached entry without fetching
func (c *Cache) Peek(key Key) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.String()]
	if !ok || !e.hasData {
		return Result{}, false
	}
	return Result{Data: e.data, UpdatedAt: e.updatedAt, Stale: c.isStale(e)}, true
}

// Mutate runs fn outside the cache. Only after fn succeeds are the
// invalidations applied, in order; a failed mutation leaves reads alone.
func (c *Cache) Mutate(ctx context.Context, fn MutationFunc, invalidate ...Key) (any, error) {
	c.mu.Lock()
	c.stats.Mutations++
	c.stats.Pending++
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.stats.Pending--
		c.mu.Unlock()
	}()

	result, err := fn(ctx)
	if err != nil {
		mutationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	mutationsTotal.WithLabelValues("success").Inc()

	for _, k := range invalidate {
		c.Invalidate(ctx, k)
	}
	return result, nil
}

// Invalidate marks every entry whose key starts with prefix as stale.
// A fetch still in flight under prefix lands stale as well.
func (c *Cache) Invalidate(ctx context.Context, prefix Key) int {
	now := c.cfg.Now()
	var events []Event

	c.mu.Lock()
	for id, f := range c.inflight {
		if f.key.HasPrefix(prefix) {
			f.invalidated = true
			c.group.Forget(id)
		}
	}
	for id, e := range c.entries {
		if !e.key.HasPrefix(prefix) {
			continue
		}
		e.invalid = true
		c.group.Forget(id)
		events = append(events, Event{Type: EventInvalidated, Key: e.key, At: now})
	}
	c.stats.Invalidations++
	c.mu.Unlock()

	invalidations.Inc()

	if c.cfg.Tier != nil {
		if err := c.cfg.Tier.DeletePrefix(ctx, prefix); err != nil {
			slog.Warn("failed to invalidate cache tier", "prefix", prefix.String(), "error", err)
		}
	}

	c.dispatch(events)
	return len(events)
}

// SetData replaces the data of a single entry, as after a mutation that
// returned the updated entity
func (c *Cache) SetData(key Key, data any) {
	c.store(key, data, nil, nil)

	if c.cfg.Tier != nil {
		if err := c.cfg.Tier.Set(context.Background(), key, data); err != nil {
			slog.Warn("failed to write cache tier", "key", key.String(), "error", err)
		}
	}
}

// Remove drops entries under prefix entirely
func (c *Cache) Remove(prefix Key) int {
	now := c.cfg.Now()
	var events []Event

	c.mu.Lock()
	for id, e := range c.entries {
		if !e.key.HasPrefix(prefix) {
			continue
		}
		c.lru.Remove(e.elem)
		delete(c.entries, id)
		events = append(events, Event{Type: EventRemoved, Key: e.key, At: now})
	}
	c.mu.Unlock()

	c.dispatch(events)
	return len(events)
}

// Clear drops every entry
func (c *Cache) Clear() {
	c.Remove(Key{})
}

// PurgeExpired drops unobserved entries not read within GCTime
func (c *Cache) PurgeExpired() int {
	if c.cfg.GCTime <= 0 {
		return 0
	}
	now := c.cfg.Now()
	var events []Event

	c.mu.Lock()
	for id, e := range c.entries {
		if c.observedLocked(id) || now.Sub(e.lastAccess) < c.cfg.GCTime {
			continue
		}
		c.lru.Remove(e.elem)
		delete(c.entries, id)
		c.stats.Evictions++
		events = append(events, Event{Type: EventRemoved, Key: e.key, At: now})
	}
	c.mu.Unlock()

	evictions.Add(float64(len(events)))
	c.dispatch(events)
	return len(events)
}

// Stats returns cache statistics
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.entries)
	return s
}

func (c *Cache) revalidate(key Key, fetcher Fetcher) {
	if _, err := c.fetch(context.Background(), key, fetcher); err != nil {
		slog.Debug("background revalidation failed", "key", key.String(), "error", err)
	}
}

func (c *Cache) fetch(ctx context.Context, key Key, fetcher Fetcher) (Result, error) {
	id := key.String()
	leader := false

	ch := c.group.DoChan(id, func() (any, error) {
		leader = true
		f := &flight{key: key}
		c.mu.Lock()
		c.stats.Fetches++
		c.inflight[id] = f
		c.mu.Unlock()
		fetches.Inc()

		data, err := fetcher(context.WithoutCancel(ctx))
		res := c.store(key, data, err, f)
		if err != nil {
			return res, err
		}

		// f is out of the in-flight table once stored
		if c.cfg.Tier != nil && !f.invalidated {
			if terr := c.cfg.Tier.Set(context.WithoutCancel(ctx), key, data); terr != nil {
				slog.Warn("failed to write cache tier", "key", id, "error", terr)
			}
		}
		return res, nil
	})

	select {
	case <-ctx.Done():
		return Result{}, fmt.Errorf("query %s: %w", id, ctx.Err())
	case r := <-ch:
		if r.Shared && !leader {
			c.mu.Lock()
			c.stats.Coalesced++
			c.mu.Unlock()
			coalesced.Inc()
		}
		res, _ := r.Val.(Result)
		return res, r.Err
	}
}

// store records a fetch outcome. An error replaces any previous data.
// When f was invalidated while fetching, the entry stays stale.
func (c *Cache) store(key Key, data any, err error, f *flight) Result {
	id := key.String()
	now := c.cfg.Now()

	c.mu.Lock()
	invalidated := false
	if f != nil {
		invalidated = f.invalidated
		if c.inflight[id] == f {
			delete(c.inflight, id)
		}
	}
	e, ok := c.entries[id]
	if !ok {
		e = &entry{key: key, id: id}
		e.elem = c.lru.PushFront(e)
		c.entries[id] = e
	} else {
		c.lru.MoveToFront(e.elem)
	}
	e.updatedAt = now
	e.lastAccess = now
	e.invalid = invalidated
	if err != nil {
		e.data = nil
		e.hasData = false
		e.err = err
	} else {
		e.data = data
		e.hasData = true
		e.err = nil
	}
	res := Result{Data: e.data, UpdatedAt: now, Stale: c.isStale(e)}

	evicted := c.evictLocked()
	c.mu.Unlock()

	ev := Event{Type: EventUpdated, Key: key, At: now}
	if err != nil {
		ev.Type = EventError
		ev.Error = err.Error()
	}
	c.dispatch(append([]Event{ev}, evicted...))
	return res
}

func (c *Cache) fromTier(ctx context.Context, key Key) (Result, bool) {
	if c.cfg.Tier == nil {
		return Result{}, false
	}
	raw, ok, err := c.cfg.Tier.Get(ctx, key)
	if err != nil {
		slog.Warn("failed to read cache tier", "key", key.String(), "error", err)
		return Result{}, false
	}
	if !ok {
		return Result{}, false
	}
	tierHits.Inc()

	res := c.store(key, raw, nil, nil)
	res.Stale = true
	return res, true
}

// evictLocked drops least recently used unobserved entries above the bound
func (c *Cache) evictLocked() []Event {
	if c.cfg.MaxEntries <= 0 {
		return nil
	}
	var events []Event
	now := c.cfg.Now()

	for el := c.lru.Back(); el != nil && len(c.entries) > c.cfg.MaxEntries; {
		prev := el.Prev()
		e := el.Value.(*entry)
		if !c.observedLocked(e.id) {
			c.lru.Remove(el)
			delete(c.entries, e.id)
			c.stats.Evictions++
			evictions.Inc()
			events = append(events, Event{Type: EventRemoved, Key: e.key, At: now})
		}
		el = prev
	}
	return events
}

func (c *Cache) isStale(e *entry) bool {
	if e.invalid || c.cfg.StaleTime <= 0 {
		return true
	}
	return c.cfg.Now().Sub(e.updatedAt) >= c.cfg.StaleTime
}
