package uniflow

import (
	"github.com/uniflow-go/uniflow/uemit"
)

// ActionBuilder constructs an action instance. The returned value must
// embed the *Action carried in the context.
type ActionBuilder func(ctx *ActionContext) (any, error)

// ActionContext is passed to an ActionBuilder during dispatcher
// construction. It grants read access to the facade registries so that
// action logic can inspect current state, but never mutate a store
// directly.
type ActionContext struct {
	// Action is the pre-wired base the instance must embed.
	Action *Action

	// Key is the action's namespace key.
	Key string

	// Actions and Stores are the dispatcher's facade registries.
	Actions *ActionRegistry
	Stores  *StoreRegistry
}

// Action is the base type embedded by action implementations. An
// intent method announces itself through Dispatch; the dispatcher
// subscribes to the action's emitter at wiring time and forwards every
// announcement as a dispatch of "<actionKey>.<methodName>".
type Action struct {
	key     string
	emitter *uemit.Emitter
}

func newAction(key string) *Action {
	return &Action{
		key:     key,
		emitter: uemit.New(),
	}
}

// Key returns the action's namespace key.
func (a *Action) Key() string {
	return a.key
}

// Dispatch announces an intent. name must be the name of the calling
// intent method; args are forwarded untouched to every subscribed
// store handler.
func (a *Action) Dispatch(name string, args ...any) {
	a.emitter.Emit(name, args...)
}

// ActionRegistry is the read-only view of wired action facades.
type ActionRegistry struct {
	facades map[string]*ActionFacade
	keys    []string
}

func newActionRegistry() *ActionRegistry {
	return &ActionRegistry{facades: make(map[string]*ActionFacade)}
}

func (r *ActionRegistry) add(key string, f *ActionFacade) {
	r.facades[key] = f
	r.keys = append(r.keys, key)
}

// Get returns the facade for an action key.
func (r *ActionRegistry) Get(key string) (*ActionFacade, bool) {
	f, ok := r.facades[key]
	return f, ok
}

// Keys returns the registered action keys in registration order.
func (r *ActionRegistry) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of registered actions.
func (r *ActionRegistry) Len() int {
	return len(r.facades)
}
