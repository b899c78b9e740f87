package events

import (
	"sync"
)

// ChannelEvent fans values out to listener channels.
// Sends never block the notifier: a listener whose channel is full misses
// the value and the miss is counted in Dropped.
type ChannelEvent[T any] struct {
	mu                    sync.Mutex
	channels              map[uint64]chan<- T
	nextID                uint64
	sendLastEventOnListen bool
	lastEvent             T
	hasNotified           bool
	closed                bool
	dropped               uint64
}

// NewChannelEvent creates a new ChannelEvent.
// sendLastEventOnListen: new listeners immediately receive the most recent
// value if Notify has been called at least once.
func NewChannelEvent[T any](sendLastEventOnListen bool) *ChannelEvent[T] {
	return &ChannelEvent[T]{
		channels:              make(map[uint64]chan<- T),
		sendLastEventOnListen: sendLastEventOnListen,
	}
}

// Listen registers ch and returns its deregistration function.
// Listening on a closed event is allowed but ch never receives anything.
func (e *ChannelEvent[T]) Listen(ch chan<- T) func() {
	if ch == nil {
		panic("channel cannot be nil")
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return func() {}
	}
	id := e.nextID
	e.nextID++
	e.channels[id] = ch
	replay := e.sendLastEventOnListen && e.hasNotified
	last := e.lastEvent
	e.mu.Unlock()

	if replay {
		select {
		case ch <- last:
		default:
			e.countDrop()
		}
	}

	return func() {
		e.mu.Lock()
		delete(e.channels, id)
		e.mu.Unlock()
	}
}

// Notify sends value to every registered channel without blocking.
func (e *ChannelEvent[T]) Notify(value T) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	if e.sendLastEventOnListen {
		e.lastEvent = value
		e.hasNotified = true
	}
	targets := make([]chan<- T, 0, len(e.channels))
	for _, ch := range e.channels {
		targets = append(targets, ch)
	}
	e.mu.Unlock()

	for _, ch := range targets {
		select {
		case ch <- value:
		default:
			e.countDrop()
		}
	}
}

// Last returns the most recent value when the event remembers it.
func (e *ChannelEvent[T]) Last() (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastEvent, e.hasNotified
}

// Close deregisters every listener; later Notify calls are ignored.
// Listener channels are owned by their creators and are not closed here.
func (e *ChannelEvent[T]) Close() {
	e.mu.Lock()
	e.closed = true
	e.channels = make(map[uint64]chan<- T)
	e.mu.Unlock()
}

// Dropped reports how many sends were skipped because a listener was full.
func (e *ChannelEvent[T]) Dropped() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dropped
}

// ListenerCount returns the current number of registered listeners
func (e *ChannelEvent[T]) ListenerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.channels)
}

func (e *ChannelEvent[T]) countDrop() {
	e.mu.Lock()
	e.dropped++
	e.mu.Unlock()
}
