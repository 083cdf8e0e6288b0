package scanner

import (
	"sync"

	"art-vault/internal/metrics"
)

// EventType distinguishes progress events.
type EventType string

const (
	EventStatus   EventType = "status"
	EventProgress EventType = "progress"
	EventFinished EventType = "finished"
)

// subscriberBuffer is how many events a slow observer may lag behind before
// further events to it are dropped.
const subscriberBuffer = 16

// Event is one scan status update.
type Event struct {
	Type       EventType `json:"type"`
	Status     string    `json:"status"`
	Total      int       `json:"total"`
	Current    int       `json:"current"`
	IsScanning bool      `json:"isScanning"`
}

// Broadcaster fans scan events out to any number of observers. Publishing
// never blocks: an observer whose buffer is full misses the event.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	closed bool
}

// NewBroadcaster creates a broadcaster with no observers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan Event]struct{})}
}

// Subscribe registers an observer. The returned function unsubscribes and
// closes the channel; it is safe to call more than once. After Close the
// returned channel is already closed.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}
	n := len(b.subs)
	b.mu.Unlock()
	metrics.ProgressSubscribers.Set(float64(n))

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			if _, ok := b.subs[ch]; ok {
				delete(b.subs, ch)
				close(ch)
			}
			n := len(b.subs)
			b.mu.Unlock()
			metrics.ProgressSubscribers.Set(float64(n))
		})
	}
}

// Publish delivers e to every observer that has room for it.
func (b *Broadcaster) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			metrics.ProgressEventsDropped.Inc()
		}
	}
}

// Close closes every observer channel so streaming readers return, and
// turns later subscriptions into closed channels. Publishing after Close is a
// no-op.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
	metrics.ProgressSubscribers.Set(0)
}

// Subscribers returns the number of registered observers.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
