package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster_FanOut(t *testing.T) {
	b := NewBroadcaster[int](4)
	first := b.Subscribe()
	second := b.Subscribe()
	require.Equal(t, 2, b.Subscribers())

	b.Publish(7)

	assert.Equal(t, 7, <-first)
	assert.Equal(t, 7, <-second)
}

func TestBroadcaster_DropsForSlowSubscriber(t *testing.T) {
	b := NewBroadcaster[string](1)
	ch := b.Subscribe()

	b.Publish("a")
	b.Publish("b")

	assert.Equal(t, "a", <-ch)
	select {
	case v := <-ch:
		t.Fatalf("unexpected event %q", v)
	default:
	}
}

func TestBroadcaster_Unsubscribe(t *testing.T) {
	b := NewBroadcaster[int](0)
	ch := b.Subscribe()

	b.Unsubscribe(ch)
	b.Unsubscribe(ch)

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, b.Subscribers())

	b.Publish(1)

	var nilBroadcaster *Broadcaster[int]
	assert.NotPanics(t, func() { nilBroadcaster.Publish(1) })
}
