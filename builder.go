package uniflow

import (
	"fmt"
	"slices"

	"github.com/go-logr/logr"
	"github.com/uniflow-go/uniflow/udag"
	"github.com/uniflow-go/uniflow/uemit"
)

// Builder declares the actions and stores of a dispatcher and builds
// the wired result. Registration order is retained: it determines the
// wiring order of actions and breaks ties among independent stores, so
// identical declarations always produce identical construction order.
//
// Builder is NOT safe for concurrent use. All registration methods
// must be called from a single goroutine. The built Dispatcher's
// wiring is immutable.
type Builder struct {
	actions []actionDef
	stores  []storeDef

	actionKeys map[string]struct{}
	storeKeys  map[string]struct{}
}

type actionDef struct {
	key   string
	build ActionBuilder
}

type storeDef struct {
	key   string
	build StoreBuilder
	deps  []string
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		actionKeys: make(map[string]struct{}),
		storeKeys:  make(map[string]struct{}),
	}
}

// AddAction declares an action under the given key.
func (b *Builder) AddAction(key string, build ActionBuilder) error {
	if build == nil {
		return fmt.Errorf("action %q: %w", key, ErrNilBuilder)
	}
	if _, exists := b.actionKeys[key]; exists {
		return fmt.Errorf("%w: %q", ErrActionAlreadyExists, key)
	}
	b.actionKeys[key] = struct{}{}
	b.actions = append(b.actions, actionDef{key: key, build: build})
	return nil
}

// MustAddAction is like AddAction but panics on error.
func (b *Builder) MustAddAction(key string, build ActionBuilder) {
	must(b.AddAction(key, build))
}

// AddStore declares a store under the given key, with the keys of the
// stores it depends on. Dependencies are constructed first and are
// visible as facades from the store's builder.
func (b *Builder) AddStore(key string, build StoreBuilder, deps ...string) error {
	if build == nil {
		return fmt.Errorf("store %q: %w", key, ErrNilBuilder)
	}
	if _, exists := b.storeKeys[key]; exists {
		return fmt.Errorf("%w: %q", ErrStoreAlreadyExists, key)
	}
	b.storeKeys[key] = struct{}{}
	b.stores = append(b.stores, storeDef{key: key, build: build, deps: slices.Clone(deps)})
	return nil
}

// MustAddStore is like AddStore but panics on error.
func (b *Builder) MustAddStore(key string, build StoreBuilder, deps ...string) {
	must(b.AddStore(key, build, deps...))
}

// Build wires the dispatcher: actions first (registration order, no
// ordering constraints among them), then the store dependency graph is
// resolved, then stores are constructed in resolved order. Any error
// aborts construction; no partially wired dispatcher escapes. In
// particular, a dependency cycle is detected before any store builder
// runs.
func (b *Builder) Build(opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		log:       logr.Discard(),
		actions:   newActionRegistry(),
		stores:    newStoreRegistry(),
		actionIDs: make(map[string]struct{}),
		events:    uemit.New(),
	}

	for _, opt := range opts {
		opt(d)
	}

	for _, def := range b.actions {
		if err := b.wireAction(d, def); err != nil {
			return nil, err
		}
	}

	order, err := b.resolveStoreOrder()
	if err != nil {
		return nil, err
	}

	for _, key := range order {
		if err := b.buildStore(d, b.findStore(key)); err != nil {
			return nil, err
		}
	}

	d.log.V(1).Info("dispatcher built",
		"actions", len(b.actions), "stores", len(b.stores), "actionIDs", len(d.actionIDs))
	return d, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild(opts ...Option) *Dispatcher {
	d, err := b.Build(opts...)
	if err != nil {
		panic(err)
	}
	return d
}

func (b *Builder) findStore(key string) storeDef {
	for _, def := range b.stores {
		if def.key == key {
			return def
		}
	}
	// Unreachable: order comes from the graph built off b.stores.
	panic(fmt.Sprintf("no store definition for %q", key))
}

// wireAction instantiates one action, discovers its intent methods,
// assigns their action ids and subscribes the dispatcher to the
// action's announcements.
func (b *Builder) wireAction(d *Dispatcher, def actionDef) error {
	base := newAction(def.key)
	ctx := &ActionContext{
		Action:  base,
		Key:     def.key,
		Actions: d.actions,
		Stores:  d.stores,
	}

	instance, err := def.build(ctx)
	if err != nil {
		return fmt.Errorf("construct action %q: %w", def.key, err)
	}
	if instance == nil {
		return fmt.Errorf("construct action %q: builder returned nil", def.key)
	}

	facade := newActionFacade(instance)
	for _, name := range facade.MethodNames() {
		id := def.key + "." + name
		d.actionIDs[id] = struct{}{}

		// Dispatch announces every error it returns on the "error"
		// event, so the forwarding path only logs; the caller of the
		// intent method never sees the error directly.
		base.emitter.On(name, func(args ...any) {
			if err := d.Dispatch(id, args...); err != nil {
				d.log.Error(err, "dispatch failed", "actionID", id)
			}
		})
	}

	d.actions.add(def.key, facade)
	d.actionInstances = append(d.actionInstances, instance)
	return nil
}

// resolveStoreOrder builds the dependency graph and returns the store
// construction order, dependencies first.
func (b *Builder) resolveStoreOrder() ([]string, error) {
	g := udag.New()
	for _, def := range b.stores {
		if err := g.AddNode(def.key); err != nil {
			return nil, fmt.Errorf("resolve store dependencies: %w", err)
		}
	}
	for _, def := range b.stores {
		for _, dep := range def.deps {
			if err := g.AddDependency(def.key, dep); err != nil {
				return nil, fmt.Errorf("resolve store dependencies: %w", err)
			}
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}

	order, err := g.TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("resolve store dependencies: %w", err)
	}
	return order, nil
}

// buildStore instantiates one store, seeds its initial state and
// publishes its facade on the shared registry.
func (b *Builder) buildStore(d *Dispatcher, def storeDef) error {
	base := newStore(def.key, d.ActionIDExists)
	ctx := &StoreContext{
		Store:          base,
		Key:            def.key,
		Stores:         d.stores,
		ActionIDExists: d.ActionIDExists,
	}

	instance, err := def.build(ctx)
	if err != nil {
		return fmt.Errorf("construct store %q: %w", def.key, err)
	}
	if instance == nil {
		return fmt.Errorf("construct store %q: builder returned nil", def.key)
	}

	if provider, ok := instance.(InitialStateProvider); ok {
		base.state.Seed(provider.InitialState())
	}

	facade := newStoreFacade(instance, base.emitter)
	d.stores.add(def.key, facade)
	d.storeOrder = append(d.storeOrder, &storeEntry{
		key:      def.key,
		instance: instance,
		base:     base,
		facade:   facade,
	})
	return nil
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
