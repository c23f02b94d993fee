package querycache

import "time"

// EventType describes what happened to an entry
type EventType string

const (
	EventUpdated     EventType = "updated"
	EventInvalidated EventType = "invalidated"
	EventError       EventType = "error"
	EventRemoved     EventType = "removed"
)

// Event is delivered to subscribers
type Event struct {
	Type  EventType `json:"type"`
	Key   Key       `json:"key"`
	At    time.Time `json:"at"`
	Error string    `json:"error,omitempty"`
}

// Subscribe registers fn for events on exactly key. An observed entry is
// never evicted. The returned func unsubscribes.
func (c *Cache) Subscribe(key Key, fn func(Event)) func() {
	id := key.String()

	c.mu.Lock()
	c.nextSub++
	subID := c.nextSub
	if c.subs[id] == nil {
		c.subs[id] = make(map[uint64]func(Event))
	}
	c.subs[id][subID] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs[id], subID)
		if len(c.subs[id]) == 0 {
			delete(c.subs, id)
		}
		if e, ok := c.entries[id]; ok {
			e.lastAccess = c.cfg.Now()
		}
	}
}

// SubscribeAll registers fn for every event
func (c *Cache) SubscribeAll(fn func(Event)) func() {
	c.mu.Lock()
	c.nextSub++
	subID := c.nextSub
	c.global[subID] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.global, subID)
	}
}

func (c *Cache) observedLocked(id string) bool {
	return len(c.subs[id]) > 0
}

// dispatch calls subscribers outside the lock so they may read the cache
func (c *Cache) dispatch(events []Event) {
	if len(events) == 0 {
		return
	}

	for _, ev := range events {
		id := ev.Key.String()

		c.mu.Lock()
		fns := make([]func(Event), 0, len(c.subs[id])+len(c.global))
		for _, fn := range c.subs[id] {
			fns = append(fns, fn)
		}
		for _, fn := range c.global {
			fns = append(fns, fn)
		}
		c.mu.Unlock()

		for _, fn := range fns {
			fn(ev)
		}
	}
}
