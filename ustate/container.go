// Package ustate provides the state container embedded in every store.
//
// A Container holds a flat key/value mapping. Mutations go through Set
// (shallow merge) or Replace (full swap); each non-silent mutation
// produces exactly one change notification. While a batch is open,
// notifications coalesce: any number of mutations inside the batch
// yield a single notification when the batch ends. The dispatcher opens
// a batch around each handler invocation so that a handler performing
// several logical updates does not thrash listeners.
//
// Container is NOT safe for concurrent use; the data-flow model is
// single-threaded and fully synchronous.
package ustate

import (
	"maps"

	"github.com/mitchellh/mapstructure"
)

// Option configures a single mutation.
type Option func(*mutation)

type mutation struct {
	silent bool
}

// Silent suppresses the change notification for one mutation. The
// state is still updated.
func Silent() Option {
	return func(m *mutation) {
		m.silent = true
	}
}

// Container holds a store's state.
type Container struct {
	state  map[string]any
	notify func()

	batching bool
	dirty    bool
}

// New creates an empty container. notify is invoked once per coalesced
// change; it may be nil.
func New(notify func()) *Container {
	return &Container{
		state:  make(map[string]any),
		notify: notify,
	}
}

// Snapshot returns a shallow copy of the current state. Mutating the
// returned map does not affect the container.
func (c *Container) Snapshot() map[string]any {
	return maps.Clone(c.state)
}

// Get returns a single value and whether the key is present.
func (c *Container) Get(key string) (any, bool) {
	v, ok := c.state[key]
	return v, ok
}

// Len returns the number of top-level keys.
func (c *Container) Len() int {
	return len(c.state)
}

// Set shallow-merges partial into the current state: colliding keys are
// overwritten, new keys added, untouched keys preserved.
func (c *Container) Set(partial map[string]any, opts ...Option) {
	maps.Copy(c.state, partial)
	c.changed(opts)
}

// Replace discards the prior state entirely.
func (c *Container) Replace(full map[string]any, opts ...Option) {
	c.state = make(map[string]any, len(full))
	maps.Copy(c.state, full)
	c.changed(opts)
}

// Seed installs the initial state without notifying. Called once,
// before any handler runs.
func (c *Container) Seed(initial map[string]any) {
	c.state = make(map[string]any, len(initial))
	maps.Copy(c.state, initial)
}

// BeginBatch starts coalescing change notifications.
func (c *Container) BeginBatch() {
	c.batching = true
	c.dirty = false
}

// EndBatch stops coalescing and fires a single notification if any
// non-silent mutation happened since BeginBatch.
func (c *Container) EndBatch() {
	c.batching = false
	if c.dirty {
		c.dirty = false
		if c.notify != nil {
			c.notify()
		}
	}
}

// Decode unmarshals the current state into out, which must be a
// pointer to a struct or map.
func (c *Container) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(c.state)
}

func (c *Container) changed(opts []Option) {
	var m mutation
	for _, opt := range opts {
		opt(&m)
	}
	if m.silent {
		return
	}
	if c.batching {
		c.dirty = true
		return
	}
	if c.notify != nil {
		c.notify()
	}
}
