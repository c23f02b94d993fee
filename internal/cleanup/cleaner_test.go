package cleanup

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/backoffice/internal/querycache"
)

type countingPurger struct {
	calls atomic.Int32
}

func (p *countingPurger) PurgeExpired() int {
	p.calls.Add(1)
	return 2
}

func TestCleaner_RunsOnInterval(t *testing.T) {
	p := &countingPurger{}
	c := NewCleaner(p, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)

	require.Eventually(t, func() bool { return p.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestCleaner_DefaultInterval(t *testing.T) {
	c := NewCleaner(&countingPurger{}, 0)
	assert.Equal(t, 5*time.Minute, c.interval)
}

func TestCleaner_SweepPurgesCache(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := querycache.New(querycache.Config{
		GCTime: time.Minute,
		Now:    func() time.Time { return now },
	})

	ctx := context.Background()
	_, err := cache.Query(ctx, querycache.NewKey("users", "list"), func(ctx context.Context) (any, error) {
		return []string{"u1"}, nil
	})
	require.NoError(t, err)

	c := NewCleaner(cache, time.Hour)
	assert.Equal(t, 0, c.Sweep())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 0, cache.Stats().Entries)
}
