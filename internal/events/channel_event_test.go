package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChannelEvent(t *testing.T) {
	event := NewChannelEvent[string](false)
	require.NotNil(t, event)
	assert.Equal(t, 0, event.ListenerCount())
	assert.False(t, event.sendLastEventOnListen)

	_, ok := event.Last()
	assert.False(t, ok)
}

func TestChannelEvent_Listen_Notify_Basic(t *testing.T) {
	event := NewChannelEvent[string](false)

	ch := make(chan string, 10)
	unregister := event.Listen(ch)
	assert.Equal(t, 1, event.ListenerCount())

	event.Notify("walk")
	event.Notify("run")

	require.Len(t, ch, 2)
	assert.Equal(t, "walk", <-ch)
	assert.Equal(t, "run", <-ch)

	unregister()
	assert.Equal(t, 0, event.ListenerCount())

	event.Notify("cooldown")
	assert.Len(t, ch, 0)
}

func TestChannelEvent_MultipleListeners(t *testing.T) {
	event := NewChannelEvent[int](false)

	ch1 := make(chan int, 4)
	ch2 := make(chan int, 4)
	unregister1 := event.Listen(ch1)
	unregister2 := event.Listen(ch2)
	defer unregister1()
	defer unregister2()

	event.Notify(300)

	assert.Equal(t, 300, <-ch1)
	assert.Equal(t, 300, <-ch2)
}

func TestChannelEvent_ReplaysLastValue(t *testing.T) {
	event := NewChannelEvent[int](true)

	early := make(chan int, 1)
	defer event.Listen(early)()
	assert.Len(t, early, 0, "nothing to replay before the first Notify")

	event.Notify(60)
	assert.Equal(t, 60, <-early)

	late := make(chan int, 1)
	defer event.Listen(late)()
	assert.Equal(t, 60, <-late)

	last, ok := event.Last()
	assert.True(t, ok)
	assert.Equal(t, 60, last)
}

func TestChannelEvent_NoReplayWhenDisabled(t *testing.T) {
	event := NewChannelEvent[string](false)
	event.Notify("first")

	ch := make(chan string, 1)
	defer event.Listen(ch)()
	assert.Len(t, ch, 0)
}

func TestChannelEvent_FullListenerDoesNotBlock(t *testing.T) {
	event := NewChannelEvent[int](false)

	slow := make(chan int)
	fast := make(chan int, 3)
	defer event.Listen(slow)()
	defer event.Listen(fast)()

	event.Notify(1)
	event.Notify(2)
	event.Notify(3)

	assert.Len(t, fast, 3)
	assert.Equal(t, uint64(3), event.Dropped())
}

func TestChannelEvent_Close(t *testing.T) {
	event := NewChannelEvent[int](true)
	ch := make(chan int, 2)
	event.Listen(ch)

	event.Close()
	assert.Equal(t, 0, event.ListenerCount())

	event.Notify(5)
	assert.Len(t, ch, 0)

	after := make(chan int, 1)
	event.Listen(after)()
	assert.Equal(t, 0, event.ListenerCount())
}

func TestChannelEvent_Listen_NilChannel(t *testing.T) {
	event := NewChannelEvent[string](false)
	assert.Panics(t, func() {
		event.Listen(nil)
	})
}
