package fanout_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pongarena/pongarena-backend/fanout"
	"github.com/pongarena/pongarena-backend/pong"
)

func receive(t *testing.T, sub *fanout.Subscription) fanout.Event {
	t.Helper()
	select {
	case evt, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return fanout.Event{}
	}
}

func TestMemoryBusDeliversToAllSubscribers(t *testing.T) {
	bus := fanout.NewMemoryBus()
	sub1 := bus.Subscribe("room-1")
	sub2 := bus.Subscribe("room-1")
	defer sub1.Close()
	defer sub2.Close()

	bus.Publish("room-1", fanout.Event{Kind: fanout.KindCommand, From: "alice", Movement: pong.LeftStart})

	for _, sub := range []*fanout.Subscription{sub1, sub2} {
		evt := receive(t, sub)
		assert.Equal(t, fanout.KindCommand, evt.Kind)
		assert.Equal(t, "alice", evt.From)
		assert.Equal(t, pong.LeftStart, evt.Movement)
	}
}

func TestMemoryBusKeepsPublisherOrder(t *testing.T) {
	bus := fanout.NewMemoryBus()
	sub := bus.Subscribe("room-1")
	defer sub.Close()

	for i := 0; i < 10; i++ {
		bus.Publish("room-1", fanout.Event{Kind: fanout.KindRoundEnd, Score: [2]int{i, 0}})
	}

	for i := 0; i < 10; i++ {
		evt := receive(t, sub)
		assert.Equal(t, i, evt.Score[0])
	}
}

func TestMemoryBusNoCrossRoomLeakage(t *testing.T) {
	bus := fanout.NewMemoryBus()
	sub := bus.Subscribe("room-1")
	defer sub.Close()

	bus.Publish("room-2", fanout.Event{Kind: fanout.KindReady})

	select {
	case evt := <-sub.C:
		t.Fatalf("received event %v from another room", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscriptionClose(t *testing.T) {
	bus := fanout.NewMemoryBus()
	sub := bus.Subscribe("room-1")

	sub.Close()
	// Close is idempotent.
	sub.Close()

	_, ok := <-sub.C
	assert.False(t, ok)

	// Publishing after the last subscriber left must not panic.
	bus.Publish("room-1", fanout.Event{Kind: fanout.KindReady})
}
