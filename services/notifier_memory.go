package services

import (
	"context"
	"sync"
)

// MemoryNotifier is an in-process Notifier used in tests and when no
// REDIS_URL is configured. Events are fanned out to current subscribers of
// the matching customer; slow subscribers are skipped rather than blocked on.
type MemoryNotifier struct {
	mu     sync.RWMutex
	nextID int
	subs   map[uint]map[int]chan OrderChange

	published []OrderChange // retained for test assertions
}

var _ Notifier = (*MemoryNotifier)(nil)

// NewMemoryNotifier creates an empty in-memory notifier.
func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{subs: make(map[uint]map[int]chan OrderChange)}
}

// PublishOrderChange records the change and delivers it to the customer's
// current subscribers.
func (n *MemoryNotifier) PublishOrderChange(ctx context.Context, change OrderChange) error {
	n.mu.Lock()
	n.published = append(n.published, change)
	channels := make([]chan OrderChange, 0, len(n.subs[change.CustomerID]))
	for _, ch := range n.subs[change.CustomerID] {
		channels = append(channels, ch)
	}
	n.mu.Unlock()

	for _, ch := range channels {
		select {
		case ch <- change:
		default:
			// Subscriber not draining; the feed is advisory, drop it.
		}
	}
	return nil
}

// Subscribe registers a buffered channel for the customer.
func (n *MemoryNotifier) Subscribe(ctx context.Context, customerID uint) (<-chan OrderChange, func(), error) {
	ch := make(chan OrderChange, 16)

	n.mu.Lock()
	n.nextID++
	id := n.nextID
	if n.subs[customerID] == nil {
		n.subs[customerID] = make(map[int]chan OrderChange)
	}
	n.subs[customerID][id] = ch
	n.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs[customerID], id)
			n.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}

// Published returns a copy of every change published so far (for testing assertions).
func (n *MemoryNotifier) Published() []OrderChange {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]OrderChange, len(n.published))
	copy(out, n.published)
	return out
}

// Clear drops the recorded history (for testing).
func (n *MemoryNotifier) Clear() {
	n.mu.Lock()
	n.published = nil
	n.mu.Unlock()
}
