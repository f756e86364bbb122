package eventbus_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	eventbus "github.com/graphmill/graphmill/internal/eventbus"
)

type pinged struct{ N int }
type ponged struct{ N int }

func useFreshBus(t *testing.T) {
	t.Helper()
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })
}

func TestPublishReachesSubscribersOfThatTypeOnly(t *testing.T) {
	useFreshBus(t)

	var pings, pongs []int
	eventbus.Subscribe(func(_ context.Context, e pinged) { pings = append(pings, e.N) })
	eventbus.Subscribe(func(_ context.Context, e ponged) { pongs = append(pongs, e.N) })

	eventbus.Publish(context.Background(), pinged{N: 1})
	eventbus.Publish(context.Background(), pinged{N: 2})
	eventbus.Publish(context.Background(), ponged{N: 3})

	require.Equal(t, []int{1, 2}, pings)
	require.Equal(t, []int{3}, pongs)
}

func TestUnsubscribeRemovesOnlyItsOwnHandler(t *testing.T) {
	useFreshBus(t)

	var first, second int
	// Both handlers come from the same function literal, so the entries can
	// only be told apart by subscription token.
	counter := func(target *int) eventbus.Handler[pinged] {
		return func(context.Context, pinged) { *target++ }
	}
	unsubFirst := eventbus.Subscribe(counter(&first))
	eventbus.Subscribe(counter(&second))

	unsubFirst()
	eventbus.Publish(context.Background(), pinged{})

	require.Zero(t, first)
	require.Equal(t, 1, second)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	useFreshBus(t)

	var n int
	unsub := eventbus.Subscribe(func(context.Context, pinged) { n++ })
	eventbus.Subscribe(func(context.Context, pinged) { n += 10 })

	unsub()
	unsub()
	eventbus.Publish(context.Background(), pinged{})

	require.Equal(t, 10, n)
}

func TestPublishWithoutBusIsNoop(t *testing.T) {
	eventbus.Use(nil)

	require.NotPanics(t, func() {
		eventbus.Publish(context.Background(), pinged{N: 1})
	})
	// Subscribing without a bus yields a working no-op unsubscribe.
	unsub := eventbus.Subscribe(func(context.Context, pinged) {})
	require.NotPanics(t, unsub)
}
