package event

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	PointsEarned          = "points.earned"
	UsageRequestCreated   = "points.usage.created"
	UsageRequestCompleted = "points.usage.completed"
	UsageRequestExpired   = "points.usage.expired"
	UsageRequestCancelled = "points.usage.cancelled"
)

// Event tells subscribers that a user's ledger state changed. It carries no
// balances; subscribers re-query what they need.
type Event struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	RequestID string    `json:"request_id,omitempty"`
	At        time.Time `json:"at"`
}

const defaultBuffer = 64

type subscriber struct {
	ch   chan Event
	done chan struct{}
}

// Bus fans events out to subscribers. Every subscriber drains its own
// buffered channel on its own goroutine, so Publish never waits on a handler.
// When a subscriber's buffer is full the event is dropped for that
// subscriber only.
type Bus struct {
	mu      sync.RWMutex
	subs    map[uint64]*subscriber
	nextID  uint64
	buffer  int
	dropped atomic.Int64
	closed  bool
}

func NewBus() *Bus {
	return NewBusWithBuffer(defaultBuffer)
}

func NewBusWithBuffer(buffer int) *Bus {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Bus{
		subs:   make(map[uint64]*subscriber),
		buffer: buffer,
	}
}

// Subscribe registers handler and returns a function that removes it.
// The returned function is safe to call more than once.
//
// Delivery is at most once: events reach handler in publish order, but an
// event published while the subscriber's buffer is full is dropped and
// counted in Dropped. Handlers that need every change should treat an event
// as a signal to re-read state, not as the change itself.
func (b *Bus) Subscribe(handler func(Event)) func() {
	if b == nil || handler == nil {
		return func() {}
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return func() {}
	}
	b.nextID++
	id := b.nextID
	sub := &subscriber{
		ch:   make(chan Event, b.buffer),
		done: make(chan struct{}),
	}
	b.subs[id] = sub
	b.mu.Unlock()

	go func() {
		defer close(sub.done)
		for ev := range sub.ch {
			handler(ev)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			if s, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(s.ch)
			}
			b.mu.Unlock()
		})
	}
}

func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		select {
		case sub.ch <- ev:
		default:
			b.dropped.Add(1)
		}
	}
}

// Dropped reports how many deliveries were skipped because a subscriber
// fell behind.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}

// Close unsubscribes everyone and waits for in-flight handlers to return.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := b.subs
	b.subs = make(map[uint64]*subscriber)
	for _, s := range subs {
		close(s.ch)
	}
	b.mu.Unlock()

	for _, s := range subs {
		<-s.done
	}
}
