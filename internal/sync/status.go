package sync

import (
	"sync"

	"roombooker/internal/models"
)

// StatusBroadcaster fans SyncState transitions out to subscribers. Late
// subscribers receive the latest value and subsequent transitions only,
// never full history.
type StatusBroadcaster struct {
	mu      sync.Mutex
	current models.SyncState
	subs    map[int]chan models.SyncState
	nextID  int
}

func NewStatusBroadcaster() *StatusBroadcaster {
	return &StatusBroadcaster{
		current: models.SyncStateIdle(),
		subs:    make(map[int]chan models.SyncState),
	}
}

// Current returns the most recently published state.
func (b *StatusBroadcaster) Current() models.SyncState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Publish stores the state and notifies subscribers.
func (b *StatusBroadcaster) Publish(state models.SyncState) {
	b.mu.Lock()
	b.current = state
	subs := make([]chan models.SyncState, 0, len(b.subs))
	for _, ch := range b.subs {
		subs = append(subs, ch)
	}
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- state:
		default:
			// Slow subscriber; it still sees Current() on next read.
		}
	}
}

// Subscribe returns a channel primed with the current state. The cancel
// func releases the subscription and is safe to call more than once.
func (b *StatusBroadcaster) Subscribe() (<-chan models.SyncState, func()) {
	ch := make(chan models.SyncState, 16)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	ch <- b.current
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
	return ch, cancel
}
