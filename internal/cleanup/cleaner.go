package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// Purger drops cache entries nobody has read for a while
type Purger interface {
	PurgeExpired() int
}

// Cleaner handles periodic garbage collection of the query cache
type Cleaner struct {
	cache    Purger
	interval time.Duration
	done     chan struct{}
}

// NewCleaner creates a new cleanup worker
func NewCleaner(cache Purger, interval time.Duration) *Cleaner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &Cleaner{
		cache:    cache,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins the cleanup worker in a goroutine
func (c *Cleaner) Start(ctx context.Context) {
	go c.run(ctx)
}

// Done is closed once the worker has stopped
func (c *Cleaner) Done() <-chan struct{} {
	return c.done
}

// run is the main loop for the cleanup worker
func (c *Cleaner) run(ctx context.Context) {
	defer close(c.done)
	slog.Info("cache janitor started", "interval", c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("cache janitor stopped")
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// Sweep runs one purge cycle and returns the number of evicted entries
func (c *Cleaner) Sweep() int {
	slog.Debug("running cache purge cycle")

	evicted := c.cache.PurgeExpired()
	if evicted == 0 {
		slog.Debug("no expired cache entries found")
		return 0
	}

	slog.Info("expired cache entries purged", "count", evicted)
	return evicted
}
