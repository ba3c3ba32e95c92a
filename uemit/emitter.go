// Package uemit is the event-emission primitive used by stores,
// actions and the dispatcher. Listeners are invoked synchronously, in
// subscription order. Because Go functions are not comparable, removal
// goes through the Subscription handle returned by On rather than by
// passing the listener back.
package uemit

import (
	"slices"
	"sync"
)

// Listener receives the arguments the event was emitted with.
type Listener func(args ...any)

// Subscription is a handle to an attached listener.
type Subscription interface {
	// Remove detaches the listener. Safe to call more than once.
	Remove()
}

// Emitter is a minimal synchronous event emitter.
type Emitter struct {
	mu        sync.Mutex
	seq       uint64
	listeners map[string][]*subscription
}

type subscription struct {
	e     *Emitter
	event string
	id    uint64
	fn    Listener
}

func (s *subscription) Remove() {
	s.e.remove(s)
}

// New creates an empty emitter.
func New() *Emitter {
	return &Emitter{
		listeners: make(map[string][]*subscription),
	}
}

// On attaches fn to event and returns its subscription handle.
func (e *Emitter) On(event string, fn Listener) Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.seq++
	sub := &subscription{e: e, event: event, id: e.seq, fn: fn}
	e.listeners[event] = append(e.listeners[event], sub)
	return sub
}

// Emit invokes all listeners attached to event, in subscription order.
// The listener slice is copied first, so listeners may subscribe or
// unsubscribe during delivery without affecting the current pass.
func (e *Emitter) Emit(event string, args ...any) {
	e.mu.Lock()
	subs := slices.Clone(e.listeners[event])
	e.mu.Unlock()

	for _, sub := range subs {
		sub.fn(args...)
	}
}

// ListenerCount returns the number of listeners attached to event.
func (e *Emitter) ListenerCount(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[event])
}

// RemoveAll detaches every listener attached to event.
func (e *Emitter) RemoveAll(event string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.listeners, event)
}

func (e *Emitter) remove(target *subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()

	subs := e.listeners[target.event]
	for i, sub := range subs {
		if sub.id == target.id {
			e.listeners[target.event] = slices.Delete(subs, i, i+1)
			return
		}
	}
}
