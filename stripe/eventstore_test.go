package stripe

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/payments-backend/test"
)

func TestMemoryEventStore(t *testing.T) {
	c := qt.New(t)
	store := NewMemoryEventStore(time.Minute)
	defer store.Close()
	ctx := context.Background()

	seen, err := store.MarkProcessed(ctx, "evt_1")
	c.Assert(err, qt.IsNil)
	c.Assert(seen, qt.IsFalse)
	seen, err = store.MarkProcessed(ctx, "evt_1")
	c.Assert(err, qt.IsNil)
	c.Assert(seen, qt.IsTrue)
	seen, err = store.MarkProcessed(ctx, "evt_2")
	c.Assert(err, qt.IsNil)
	c.Assert(seen, qt.IsFalse)
	c.Assert(store.Size(), qt.Equals, 2)

	store.evictExpired(time.Now().Add(2 * time.Minute))
	c.Assert(store.Size(), qt.Equals, 0)
	seen, err = store.MarkProcessed(ctx, "evt_1")
	c.Assert(err, qt.IsNil)
	c.Assert(seen, qt.IsFalse)

	// closing twice must not panic
	store.Close()
}

func TestMemoryEventStoreConcurrent(t *testing.T) {
	c := qt.New(t)
	store := NewMemoryEventStore(0)
	defer store.Close()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		fresh int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen, err := store.MarkProcessed(context.Background(), "evt_race")
			if err == nil && !seen {
				mu.Lock()
				fresh++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	c.Assert(fresh, qt.Equals, 1)
}

func TestRedisEventStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	c := qt.New(t)
	ctx := context.Background()

	container, err := test.StartRedisContainer(ctx)
	c.Assert(err, qt.IsNil)
	defer func() { c.Assert(container.Terminate(ctx), qt.IsNil) }()
	endpoint, err := container.Endpoint(ctx, "redis")
	c.Assert(err, qt.IsNil)

	client, err := NewRedisClient(ctx, endpoint)
	c.Assert(err, qt.IsNil)
	defer func() { _ = client.Close() }()

	store := NewRedisEventStore(client, time.Minute)
	eventID := fmt.Sprintf("evt_%d", time.Now().UnixNano())
	seen, err := store.MarkProcessed(ctx, eventID)
	c.Assert(err, qt.IsNil)
	c.Assert(seen, qt.IsFalse)
	seen, err = store.MarkProcessed(ctx, eventID)
	c.Assert(err, qt.IsNil)
	c.Assert(seen, qt.IsTrue)

	ttl, err := client.TTL(ctx, redisEventKeyPrefix+eventID).Result()
	c.Assert(err, qt.IsNil)
	c.Assert(ttl > 0 && ttl <= time.Minute, qt.IsTrue)

	_, err = NewRedisClient(ctx, "not-a-url")
	c.Assert(err, qt.IsNotNil)
}
