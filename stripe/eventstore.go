package stripe

import (
	"context"
	"sync"
	"time"
)

// DefaultEventTTL is how long a processed event id is remembered. Stripe
// stops redelivering an event after three days, but most duplicates arrive
// within minutes.
const DefaultEventTTL = 24 * time.Hour

// EventStore remembers the ids of the webhook events already processed, so
// redeliveries can be detected.
type EventStore interface {
	// MarkProcessed records eventID and reports whether it had already been
	// recorded before this call.
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
}

// MemoryEventStore is an in-memory EventStore. It is only suitable for a
// single instance deployment; use RedisEventStore when the service is
// replicated.
type MemoryEventStore struct {
	events map[string]time.Time
	mutex  sync.Mutex
	ttl    time.Duration
	done   chan struct{}
	once   sync.Once
}

// NewMemoryEventStore creates a new in-memory event store and starts the
// goroutine that evicts expired entries. Call Close to stop it.
func NewMemoryEventStore(ttl time.Duration) *MemoryEventStore {
	if ttl == 0 {
		ttl = DefaultEventTTL
	}
	store := &MemoryEventStore{
		events: make(map[string]time.Time),
		ttl:    ttl,
		done:   make(chan struct{}),
	}
	go store.cleanup(time.Hour)
	return store
}

// MarkProcessed implements EventStore.
func (m *MemoryEventStore) MarkProcessed(_ context.Context, eventID string) (bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if ts, exists := m.events[eventID]; exists && time.Since(ts) <= m.ttl {
		return true, nil
	}
	m.events[eventID] = time.Now()
	return false, nil
}

// Size returns the number of stored events (for monitoring/debugging)
func (m *MemoryEventStore) Size() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.events)
}

// Close stops the cleanup goroutine.
func (m *MemoryEventStore) Close() {
	m.once.Do(func() { close(m.done) })
}

// cleanup removes expired events periodically
func (m *MemoryEventStore) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.evictExpired(time.Now())
		}
	}
}

func (m *MemoryEventStore) evictExpired(now time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for eventID, timestamp := range m.events {
		if now.Sub(timestamp) > m.ttl {
			delete(m.events, eventID)
		}
	}
}
