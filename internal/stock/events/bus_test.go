package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus(nil)
	var calls []string

	bus.Subscribe(StockChanged, func(ctx context.Context, ev Event) error {
		calls = append(calls, "first")
		return nil
	})
	bus.Subscribe(StockChanged, func(ctx context.Context, ev Event) error {
		calls = append(calls, "second")
		return nil
	})
	bus.Subscribe(LabelUnloaded, func(ctx context.Context, ev Event) error {
		calls = append(calls, "other kind")
		return nil
	})

	bus.Publish(context.Background(), StockChangedEvent{PackageIDs: []int64{4}, Reason: "delivery"})

	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)
	count := 0

	sub := bus.Subscribe(BatchCancelled, func(ctx context.Context, ev Event) error {
		count++
		return nil
	})
	assert.Equal(t, BatchCancelled, sub.Kind())

	bus.Publish(context.Background(), BatchCancelledEvent{BatchID: 1})
	require.True(t, bus.Unsubscribe(sub))
	bus.Publish(context.Background(), BatchCancelledEvent{BatchID: 1})

	assert.Equal(t, 1, count)
	assert.False(t, bus.Unsubscribe(sub), "second unsubscribe is a no-op")
}

func TestBus_FailingHandlersDoNotStopDelivery(t *testing.T) {
	bus := NewBus(nil)
	reached := false

	bus.Subscribe(PackageChanged, func(ctx context.Context, ev Event) error {
		return errors.New("listener offline")
	})
	bus.Subscribe(PackageChanged, func(ctx context.Context, ev Event) error {
		panic("listener bug")
	})
	bus.Subscribe(PackageChanged, func(ctx context.Context, ev Event) error {
		reached = true
		return nil
	})

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), PackageChangedEvent{PackageID: 9})
	})
	assert.True(t, reached)
}

func TestBus_UnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus(nil)
	var second Subscription
	secondCalls := 0

	bus.Subscribe(RequestChanged, func(ctx context.Context, ev Event) error {
		bus.Unsubscribe(second)
		return nil
	})
	second = bus.Subscribe(RequestChanged, func(ctx context.Context, ev Event) error {
		secondCalls++
		return nil
	})

	bus.Publish(context.Background(), RequestChangedEvent{RequestID: 1})
	bus.Publish(context.Background(), RequestChangedEvent{RequestID: 1})

	assert.Equal(t, 1, secondCalls, "the in-flight publish keeps its snapshot")
}

func TestOn_TypedHandler(t *testing.T) {
	bus := NewBus(nil)
	var got LabelUnloadedEvent

	On(bus, func(ctx context.Context, ev LabelUnloadedEvent) error {
		got = ev
		return nil
	})

	bus.Publish(context.Background(), LabelUnloadedEvent{LabelID: 3, Tick: "000000000003"})
	assert.Equal(t, int64(3), got.LabelID)
	assert.Equal(t, "000000000003", got.Tick)
}

func TestBus_NilSafe(t *testing.T) {
	var bus *Bus
	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), StockChangedEvent{})
	})

	live := NewBus(nil)
	assert.NotPanics(t, func() {
		live.Publish(context.Background(), nil)
	})
}

func TestKinds(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range Kinds() {
		name := k.String()
		assert.NotEqual(t, "unknown", name)
		assert.False(t, seen[name], "duplicate kind name %s", name)
		seen[name] = true
	}
	assert.Equal(t, "unknown", Kind(0).String())
}
