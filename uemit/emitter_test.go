package uemit

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestEmit(t *testing.T) {
	t.Run("forwards arguments", func(t *testing.T) {
		e := New()

		var got []any
		e.On("ping", func(args ...any) {
			got = args
		})

		e.Emit("ping", "a", 42)
		assert.Equal(t, []any{"a", 42}, got)
	})

	t.Run("delivers in subscription order", func(t *testing.T) {
		e := New()

		var order []int
		e.On("ping", func(...any) { order = append(order, 1) })
		e.On("ping", func(...any) { order = append(order, 2) })
		e.On("ping", func(...any) { order = append(order, 3) })

		e.Emit("ping")
		assert.Equal(t, []int{1, 2, 3}, order)
	})

	t.Run("unrelated events are not delivered", func(t *testing.T) {
		e := New()

		var calls int
		e.On("ping", func(...any) { calls++ })

		e.Emit("pong")
		assert.Equal(t, 0, calls)
	})
}

func TestRemove(t *testing.T) {
	t.Run("removed listener is skipped", func(t *testing.T) {
		e := New()

		var calls int
		sub := e.On("ping", func(...any) { calls++ })

		e.Emit("ping")
		sub.Remove()
		e.Emit("ping")

		assert.Equal(t, 1, calls)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		e := New()
		sub := e.On("ping", func(...any) {})

		sub.Remove()
		sub.Remove()
		assert.Equal(t, 0, e.ListenerCount("ping"))
	})

	t.Run("removes only its own listener", func(t *testing.T) {
		e := New()

		var first, second int
		sub := e.On("ping", func(...any) { first++ })
		e.On("ping", func(...any) { second++ })

		sub.Remove()
		e.Emit("ping")

		assert.Equal(t, 0, first)
		assert.Equal(t, 1, second)
	})
}

func TestRemoveAll(t *testing.T) {
	e := New()
	e.On("ping", func(...any) {})
	e.On("ping", func(...any) {})

	e.RemoveAll("ping")
	assert.Equal(t, 0, e.ListenerCount("ping"))
}

func TestUnsubscribeDuringEmit(t *testing.T) {
	e := New()

	var calls int
	var sub Subscription
	sub = e.On("ping", func(...any) {
		calls++
		sub.Remove()
	})

	e.Emit("ping")
	e.Emit("ping")
	assert.Equal(t, 1, calls)
}
