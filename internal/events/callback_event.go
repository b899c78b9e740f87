package events

import (
	"sync"
)

type callbackListener[T any] struct {
	id       uint64
	callback func(T)
}

// CallbackEvent provides pub/sub behavior with type-safe callbacks.
// Callbacks run synchronously on the notifying goroutine, in the order
// they were registered.
type CallbackEvent[T any] struct {
	mu        sync.RWMutex
	listeners []callbackListener[T]
	nextID    uint64
}

// NewCallbackEvent creates a new CallbackEvent instance
func NewCallbackEvent[T any]() *CallbackEvent[T] {
	return &CallbackEvent[T]{}
}

// Listen registers callback and returns its deregistration function.
func (e *CallbackEvent[T]) Listen(callback func(T)) func() {
	if callback == nil {
		panic("callback cannot be nil")
	}

	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.listeners = append(e.listeners, callbackListener[T]{id: id, callback: callback})
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// Notify calls every registered callback with value.
// The listener list is copied first so callbacks may (de)register freely.
func (e *CallbackEvent[T]) Notify(value T) {
	e.mu.RLock()
	listeners := make([]callbackListener[T], len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.RUnlock()

	for _, l := range listeners {
		l.callback(value)
	}
}

// ListenerCount returns the current number of registered listeners
func (e *CallbackEvent[T]) ListenerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners)
}
