package audit

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

func quietBus() *Bus {
	return NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBusDeliversInSubscriptionOrder(t *testing.T) {
	bus := quietBus()

	var order []string
	bus.Subscribe(func(types.Event) { order = append(order, "first") })
	bus.Subscribe(func(types.Event) { order = append(order, "second") })
	bus.Subscribe(func(types.Event) { order = append(order, "third") })

	bus.Emit(types.Event{Type: types.EventEntityCreated, TargetID: "e-1"})

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestBusUnsubscribe(t *testing.T) {
	bus := quietBus()

	var calls int
	unsubscribe := bus.Subscribe(func(types.Event) { calls++ })
	require.Equal(t, 1, bus.SubscriberCount())

	bus.Emit(types.Event{Type: types.EventEntityCreated})
	unsubscribe()
	bus.Emit(types.Event{Type: types.EventEntityUpdated})

	assert.Equal(t, 1, calls)
	assert.Zero(t, bus.SubscriberCount())

	// Double unsubscribe is a no-op.
	unsubscribe()
	assert.Zero(t, bus.SubscriberCount())
}

func TestBusUnsubscribeDuringEmit(t *testing.T) {
	bus := quietBus()

	var unsubscribe func()
	var firstCalls, secondCalls int
	unsubscribe = bus.Subscribe(func(types.Event) {
		firstCalls++
		unsubscribe()
	})
	bus.Subscribe(func(types.Event) { secondCalls++ })

	bus.Emit(types.Event{Type: types.EventOwnershipCreated})
	bus.Emit(types.Event{Type: types.EventOwnershipDeleted})

	assert.Equal(t, 1, firstCalls, "removed itself after the first event")
	assert.Equal(t, 2, secondCalls, "later subscriber still sees both events")
}

func TestBusPanickingSubscriberIsIsolated(t *testing.T) {
	bus := quietBus()

	var survived bool
	bus.Subscribe(func(types.Event) { panic("subscriber bug") })
	bus.Subscribe(func(types.Event) { survived = true })

	require.NotPanics(t, func() {
		bus.Emit(types.Event{Type: types.EventShareClassCreated, TargetID: "c-1"})
	})
	assert.True(t, survived, "panic in one subscriber does not starve the rest")
}

func TestBusEmitWithoutSubscribers(t *testing.T) {
	bus := quietBus()
	require.NotPanics(t, func() {
		bus.Emit(types.Event{Type: types.EventEntityDeleted})
	})
}

func TestBusEnqueueDefersDelivery(t *testing.T) {
	bus := quietBus()

	var seen []string
	bus.Subscribe(func(e types.Event) { seen = append(seen, e.TargetID) })

	bus.Enqueue(types.Event{Type: types.EventEntityCreated, TargetID: "e-1"})
	bus.Enqueue(types.Event{Type: types.EventEntityCreated, TargetID: "e-2"})
	assert.Empty(t, seen, "nothing delivered before Drain")

	bus.Drain()
	assert.Equal(t, []string{"e-1", "e-2"}, seen)

	// Draining an empty queue is a no-op.
	bus.Drain()
	assert.Len(t, seen, 2)
}

func TestBusEmitFromSubscriber(t *testing.T) {
	bus := quietBus()

	var seen []string
	bus.Subscribe(func(e types.Event) {
		seen = append(seen, e.Type)
		if e.Type == types.EventEntityCreated {
			bus.Emit(types.Event{Type: types.EventShareClassCreated})
		}
	})

	bus.Emit(types.Event{Type: types.EventEntityCreated})

	assert.Equal(t, []string{types.EventEntityCreated, types.EventShareClassCreated}, seen)
}

func TestBusEventPayloadPassedThrough(t *testing.T) {
	bus := quietBus()

	var got types.Event
	bus.Subscribe(func(e types.Event) { got = e })

	entity := &types.Entity{EntityID: "e-1", Name: "HoldCo"}
	bus.Emit(types.Event{
		Type:             types.EventEntityCreated,
		TargetID:         "e-1",
		RelatedEntityIDs: []string{"e-1"},
		Record:           entity,
	})

	assert.Equal(t, types.EventEntityCreated, got.Type)
	assert.Equal(t, "e-1", got.TargetID)
	require.IsType(t, &types.Entity{}, got.Record)
	assert.Equal(t, "HoldCo", got.Record.(*types.Entity).Name)
}
