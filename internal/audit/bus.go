package audit

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

// Bus is an explicit observer registry: a mapping from subscription
// handle to callback. Events pass through an internal FIFO queue, so
// Enqueue is cheap enough to call while the publisher holds its own
// locks and Drain delivers afterwards, in enqueue order, over a
// defensive copy of the registry so unsubscribing during delivery is
// safe. Callbacks may themselves publish; the nested event is queued
// and delivered by the active drainer.
type Bus struct {
	mu     sync.Mutex
	next   int
	subs   map[int]types.EventCallback
	queue  []types.Event
	logger *slog.Logger

	// Held by the goroutine currently delivering queued events.
	drainMu sync.Mutex
}

// NewBus returns an empty bus. A nil logger falls back to slog.Default;
// the logger only ever reports subscriber panics.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[int]types.EventCallback),
		logger: logger,
	}
}

// Subscribe registers a callback and returns a function that removes it.
// Unsubscribing twice is harmless.
func (b *Bus) Subscribe(cb types.EventCallback) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	handle := b.next
	b.next++
	b.subs[handle] = cb

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, handle)
	}
}

// Emit queues the event and drains the queue. Delivery reaches every
// currently-subscribed callback in subscription order; a panicking
// callback is recovered and logged, and remaining callbacks still
// receive the event.
func (b *Bus) Emit(event types.Event) {
	b.Enqueue(event)
	b.Drain()
}

// Enqueue appends the event to the delivery queue without delivering
// it. Queue order is delivery order; the publisher calls Drain once
// its own locks are released.
func (b *Bus) Enqueue(event types.Event) {
	b.mu.Lock()
	b.queue = append(b.queue, event)
	b.mu.Unlock()
}

// Drain delivers queued events until the queue is empty. If another
// goroutine is already draining it returns immediately; that drainer
// re-checks the queue after finishing, so no enqueued event is left
// behind.
func (b *Bus) Drain() {
	for b.pending() > 0 {
		if !b.drainMu.TryLock() {
			return
		}
		b.deliverQueued()
		b.drainMu.Unlock()
	}
}

func (b *Bus) pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

func (b *Bus) deliverQueued() {
	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			b.mu.Unlock()
			return
		}
		event := b.queue[0]
		b.queue = b.queue[1:]

		handles := make([]int, 0, len(b.subs))
		for h := range b.subs {
			handles = append(handles, h)
		}
		sort.Ints(handles)
		callbacks := make([]types.EventCallback, len(handles))
		for i, h := range handles {
			callbacks[i] = b.subs[h]
		}
		b.mu.Unlock()

		for _, cb := range callbacks {
			b.deliver(cb, event)
		}
	}
}

func (b *Bus) deliver(cb types.EventCallback, event types.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event subscriber panicked",
				"event_type", event.Type,
				"target_id", event.TargetID,
				"panic", r)
		}
	}()
	cb(event)
}

// SubscriberCount returns the number of active subscriptions. Used for
// introspection and tests.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
