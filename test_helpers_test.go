package uniflow

import (
	"fmt"
)

// counterActions is the standard action fixture: two intents under the
// "counter" key.
type counterActions struct {
	*Action
}

func newCounterActions(ctx *ActionContext) (any, error) {
	return &counterActions{Action: ctx.Action}, nil
}

func (a *counterActions) Increment(by int) {
	a.Dispatch("Increment", by)
}

func (a *counterActions) Reset() {
	a.Dispatch("Reset")
}

// counterStore handles both counter intents.
type counterStore struct {
	*Store
}

func newCounterStore(ctx *StoreContext) (any, error) {
	s := &counterStore{Store: ctx.Store}
	if err := s.HandleAction("counter.Increment", s.onIncrement); err != nil {
		return nil, err
	}
	if err := s.HandleAction("counter.Reset", s.onReset); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *counterStore) InitialState() map[string]any {
	return map[string]any{"count": 0}
}

func (s *counterStore) onIncrement(args ...any) error {
	by, ok := args[0].(int)
	if !ok {
		return fmt.Errorf("want int, got %T", args[0])
	}
	s.SetState(map[string]any{"count": s.GetCount() + by})
	return nil
}

func (s *counterStore) onReset(...any) error {
	s.ReplaceState(map[string]any{"count": 0})
	return nil
}

func (s *counterStore) GetCount() int {
	v, _ := s.StateValue("count")
	n, _ := v.(int)
	return n
}

// newCounterDispatcher builds the standard fixture and hands back the
// store instance for direct inspection.
func newCounterDispatcher() (*Dispatcher, *counterStore, error) {
	var store *counterStore

	b := NewBuilder()
	b.MustAddAction("counter", newCounterActions)
	b.MustAddStore("counter", func(ctx *StoreContext) (any, error) {
		instance, err := newCounterStore(ctx)
		if err != nil {
			return nil, err
		}
		store = instance.(*counterStore)
		return instance, nil
	})

	d, err := b.Build()
	return d, store, err
}

// recordingStore appends its key to seen at construction time and
// checks that every expected dependency is already visible.
func recordingStore(seen *[]string, wantDeps ...string) StoreBuilder {
	return func(ctx *StoreContext) (any, error) {
		for _, dep := range wantDeps {
			if _, ok := ctx.Stores.Get(dep); !ok {
				return nil, fmt.Errorf("dependency %q not constructed before %q", dep, ctx.Key)
			}
		}
		*seen = append(*seen, ctx.Key)
		return &struct{ *Store }{ctx.Store}, nil
	}
}

// probeActions dispatches arbitrary argument tuples.
type probeActions struct {
	*Action
}

func newProbeActions(ctx *ActionContext) (any, error) {
	return &probeActions{Action: ctx.Action}, nil
}

func (a *probeActions) Fire(name string, n int) {
	a.Dispatch("Fire", name, n)
}

// probeStore records the exact arguments each invocation received.
type probeStore struct {
	*Store
	calls [][]any
}

func newProbeStore(ctx *StoreContext) (any, error) {
	s := &probeStore{Store: ctx.Store}
	if err := s.HandleAction("probe.Fire", s.onFire); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *probeStore) onFire(args ...any) error {
	s.calls = append(s.calls, args)
	return nil
}
