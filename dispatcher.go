package uniflow

import (
	"fmt"
	"slices"

	"github.com/go-logr/logr"
	"github.com/uniflow-go/uniflow/uemit"
	"go.uber.org/multierr"
	"golang.org/x/exp/maps"
)

// Events observable on the dispatcher itself.
const (
	// DispatchEvent fires with (id, args) before any store is invoked.
	DispatchEvent = "dispatch"

	// ErrorEvent fires with the wrapped error when a store handler
	// fails during delivery, and with ErrReentrantDispatch when a
	// nested dispatch is rejected.
	ErrorEvent = "error"
)

// Dispatcher wires actions to stores and guarantees ordered,
// single-pass delivery of every dispatch. Build one with a Builder.
//
// The model is single-threaded and fully synchronous: all work for one
// Dispatch call completes before control returns to the caller. A
// handler must not trigger a nested dispatch; the re-entrancy guard
// exists to keep the per-dispatch order of effects total.
type Dispatcher struct {
	log logr.Logger

	actions *ActionRegistry
	stores  *StoreRegistry

	actionIDs map[string]struct{}

	// Stores in resolved dependency order; delivery iterates this.
	storeOrder []*storeEntry

	actionInstances []any

	events *uemit.Emitter

	dispatching bool
}

type storeEntry struct {
	key      string
	instance any
	base     *Store
	facade   *StoreFacade
}

// Dispatch delivers one action id, with its arguments, to every store
// that registered a handler for it, strictly in resolved dependency
// order. It announces the dispatch on the "dispatch" event before any
// delivery. A handler error is announced on the "error" event, wrapped
// with the store key and action id, and returned; stores earlier in
// the order keep the effects they already applied, and the dispatcher
// stays usable for subsequent dispatches.
//
// Calling Dispatch while a dispatch is already in flight fails with
// ErrReentrantDispatch; the rejection is also announced on the "error"
// event, so it stays observable when the nested dispatch was triggered
// through an action method and no caller sees the returned error.
func (d *Dispatcher) Dispatch(id string, args ...any) error {
	if d.dispatching {
		err := fmt.Errorf("%w: action %q", ErrReentrantDispatch, id)
		d.log.Error(err, "nested dispatch rejected", "actionID", id)
		d.events.Emit(ErrorEvent, err)
		return err
	}
	d.dispatching = true
	defer func() { d.dispatching = false }()

	d.log.V(1).Info("dispatch", "actionID", id)
	d.events.Emit(DispatchEvent, id, args)

	for _, entry := range d.storeOrder {
		h, ok := entry.base.handler(id)
		if !ok {
			continue
		}
		if err := d.deliver(entry, id, h, args); err != nil {
			return err
		}
	}
	return nil
}

// deliver invokes one store's handler inside a state batch, so that
// any number of SetState calls during the invocation coalesce into a
// single "change" event. The batch is flushed even when the handler
// fails: mutations applied before the failure are already visible.
func (d *Dispatcher) deliver(entry *storeEntry, id string, h Handler, args []any) error {
	entry.base.state.BeginBatch()
	defer entry.base.state.EndBatch()

	if err := h(args...); err != nil {
		wrapped := fmt.Errorf("store %q: action %q: %w", entry.key, id, err)
		d.log.Error(err, "handler failed", "store", entry.key, "actionID", id)
		d.events.Emit(ErrorEvent, wrapped)
		return wrapped
	}
	return nil
}

// ActionIDExists reports whether an action id was declared at
// construction time.
func (d *Dispatcher) ActionIDExists(id string) bool {
	_, ok := d.actionIDs[id]
	return ok
}

// ActionIDs returns every declared action id, sorted.
func (d *Dispatcher) ActionIDs() []string {
	ids := maps.Keys(d.actionIDs)
	slices.Sort(ids)
	return ids
}

// On attaches fn to one of the dispatcher's own events, DispatchEvent
// or ErrorEvent.
func (d *Dispatcher) On(event string, fn uemit.Listener) uemit.Subscription {
	return d.events.On(event, fn)
}

// Store returns the public facade of a store.
func (d *Dispatcher) Store(key string) (*StoreFacade, bool) {
	return d.stores.Get(key)
}

// Action returns the public facade of an action.
func (d *Dispatcher) Action(key string) (*ActionFacade, bool) {
	return d.actions.Get(key)
}

// Stores returns the store facade registry.
func (d *Dispatcher) Stores() *StoreRegistry {
	return d.stores
}

// Actions returns the action facade registry.
func (d *Dispatcher) Actions() *ActionRegistry {
	return d.actions
}

// StoreKeys returns the store keys in resolved construction order.
func (d *Dispatcher) StoreKeys() []string {
	keys := make([]string, 0, len(d.storeOrder))
	for _, entry := range d.storeOrder {
		keys = append(keys, entry.key)
	}
	return keys
}

// Close tears down every action and store instance that implements
// io.Closer, in construction order (actions first, then stores in
// resolved dependency order), aggregating any errors.
func (d *Dispatcher) Close() error {
	var err error
	for _, instance := range d.actionInstances {
		if closer, ok := instance.(interface{ Close() error }); ok {
			err = multierr.Append(err, closer.Close())
		}
	}
	for _, entry := range d.storeOrder {
		if closer, ok := entry.instance.(interface{ Close() error }); ok {
			err = multierr.Append(err, closer.Close())
		}
	}
	return err
}
