package uniflow

import (
	"fmt"

	"github.com/uniflow-go/uniflow/uemit"
	"github.com/uniflow-go/uniflow/ustate"
)

// ChangeEvent is emitted on a store once per coalesced state mutation.
const ChangeEvent = "change"

// Handler is a store's callback for one action id. A returned error is
// announced on the dispatcher's error channel and propagated to the
// dispatch caller.
type Handler func(args ...any) error

// StoreBuilder constructs a store instance. The returned value must
// embed the *Store carried in the context, which arrives pre-wired
// with the store's key, state container and event emitter.
type StoreBuilder func(ctx *StoreContext) (any, error)

// InitialStateProvider seeds a store's state container before any
// handler runs. Implement it on the store instance.
type InitialStateProvider interface {
	InitialState() map[string]any
}

// StoreContext is passed to a StoreBuilder during dispatcher
// construction.
type StoreContext struct {
	// Store is the pre-wired base the instance must embed.
	Store *Store

	// Key is the store's namespace key.
	Key string

	// Stores is the live facade registry. Stores are constructed in
	// resolved dependency order, so every declared dependency is
	// already present when the builder runs.
	Stores *StoreRegistry

	// ActionIDExists reports whether an action id was declared.
	ActionIDExists func(id string) bool
}

// Store is the base type embedded by store implementations. It owns
// the store's state container, event emitter and handler table. The
// handler table is mutated only by the owning store, never by the
// dispatcher or by other stores.
type Store struct {
	key            string
	emitter        *uemit.Emitter
	state          *ustate.Container
	handlers       map[string]Handler
	actionIDExists func(string) bool
}

func newStore(key string, actionIDExists func(string) bool) *Store {
	s := &Store{
		key:            key,
		emitter:        uemit.New(),
		handlers:       make(map[string]Handler),
		actionIDExists: actionIDExists,
	}
	s.state = ustate.New(func() {
		s.emitter.Emit(ChangeEvent)
	})
	return s
}

// Key returns the store's namespace key.
func (s *Store) Key() string {
	return s.key
}

// State returns a snapshot of the current state.
func (s *Store) State() map[string]any {
	return s.state.Snapshot()
}

// StateValue returns a single state value and whether it is present.
func (s *Store) StateValue(key string) (any, bool) {
	return s.state.Get(key)
}

// DecodeState unmarshals the current state into out.
func (s *Store) DecodeState(out any) error {
	return s.state.Decode(out)
}

// SetState shallow-merges partial into the store's state and emits one
// coalesced "change" event unless silenced.
func (s *Store) SetState(partial map[string]any, opts ...ustate.Option) {
	s.state.Set(partial, opts...)
}

// ReplaceState discards the prior state entirely.
func (s *Store) ReplaceState(full map[string]any, opts ...ustate.Option) {
	s.state.Replace(full, opts...)
}

// HandleAction registers h as this store's handler for an action id.
// The id must already exist in the dispatcher's action registry, h
// must be non-nil, and the store must not already handle the id.
func (s *Store) HandleAction(id string, h Handler) error {
	if s.actionIDExists == nil || !s.actionIDExists(id) {
		return fmt.Errorf("store %q: %w: %q", s.key, ErrUnknownActionID, id)
	}
	if h == nil {
		return fmt.Errorf("store %q: action %q: %w", s.key, id, ErrNilHandler)
	}
	if _, exists := s.handlers[id]; exists {
		return fmt.Errorf("store %q: action %q: %w", s.key, id, ErrDuplicateHandler)
	}
	s.handlers[id] = h
	return nil
}

// MustHandleAction is like HandleAction but panics on error.
func (s *Store) MustHandleAction(id string, h Handler) {
	if err := s.HandleAction(id, h); err != nil {
		panic(err)
	}
}

// StopHandleAction removes the store's handler for an action id, if
// any. Subsequent dispatches of that id skip this store until a
// handler is registered again.
func (s *Store) StopHandleAction(id string) {
	delete(s.handlers, id)
}

// AddListener attaches fn to one of the store's events.
func (s *Store) AddListener(event string, fn uemit.Listener) uemit.Subscription {
	return s.emitter.On(event, fn)
}

// AddChangeListener attaches fn to the store's "change" event.
func (s *Store) AddChangeListener(fn func()) uemit.Subscription {
	return s.emitter.On(ChangeEvent, func(...any) {
		fn()
	})
}

// EmitEvent emits a custom event on the store. Not exposed on the
// store's facade.
func (s *Store) EmitEvent(event string, args ...any) {
	s.emitter.Emit(event, args...)
}

func (s *Store) handler(id string) (Handler, bool) {
	h, ok := s.handlers[id]
	return h, ok
}

// StoreRegistry is the shared view of constructed store facades. It is
// handed to store builders while construction is still in progress, so
// dependencies appear as soon as they are built; afterwards it is
// read-only.
type StoreRegistry struct {
	facades map[string]*StoreFacade
	keys    []string
}

func newStoreRegistry() *StoreRegistry {
	return &StoreRegistry{facades: make(map[string]*StoreFacade)}
}

func (r *StoreRegistry) add(key string, f *StoreFacade) {
	r.facades[key] = f
	r.keys = append(r.keys, key)
}

// Get returns the facade for a store key.
func (r *StoreRegistry) Get(key string) (*StoreFacade, bool) {
	f, ok := r.facades[key]
	return f, ok
}

// Keys returns the registered store keys in construction order.
func (r *StoreRegistry) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of registered stores.
func (r *StoreRegistry) Len() int {
	return len(r.facades)
}
