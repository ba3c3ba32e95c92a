// Package uniflow is a unidirectional data-flow coordinator: named
// stores hold application state, named actions announce intents, and a
// dispatcher wires the two together with ordered, single-pass delivery.
//
// # Overview
//
// A dispatcher is declared through a Builder and wired once:
//
//	b := uniflow.NewBuilder()
//	b.MustAddAction("todo", NewTodoActions)
//	b.MustAddStore("todos", NewTodoStore)
//	b.MustAddStore("stats", NewStatsStore, "todos") // depends on todos
//	d := b.MustBuild()
//
// Construction wires actions first, then resolves the store dependency
// graph and constructs stores in topological order, so a store's
// declared dependencies are fully built and visible as facades from
// its own builder. A dependency cycle fails construction before any
// store is instantiated.
//
// # Actions
//
// An action embeds *Action and announces intents through Dispatch:
//
//	type TodoActions struct {
//	    *uniflow.Action
//	}
//
//	func NewTodoActions(ctx *uniflow.ActionContext) (any, error) {
//	    return &TodoActions{Action: ctx.Action}, nil
//	}
//
//	func (a *TodoActions) AddItem(item string) {
//	    a.Dispatch("AddItem", item)
//	}
//
// Every exported method beyond the base Action becomes an intent
// method with the globally unique action id "<key>.<method>", here
// "todo.AddItem". Invoking the method, directly or through the action
// facade, funnels into exactly one dispatcher delivery.
//
// # Stores
//
// A store embeds *Store, registers handlers for action ids during its
// construction, and mutates only its own state:
//
//	type TodoStore struct {
//	    *uniflow.Store
//	}
//
//	func NewTodoStore(ctx *uniflow.StoreContext) (any, error) {
//	    s := &TodoStore{Store: ctx.Store}
//	    if err := s.HandleAction("todo.AddItem", s.onAddItem); err != nil {
//	        return nil, err
//	    }
//	    return s, nil
//	}
//
// The store's public facade is derived once at wiring time: accessor
// methods (Get*, Is*, Has*) and the subscription primitives are
// exposed; SetState and every other method stay private. Other stores
// and application code only ever see the facade, which is what keeps
// the data flow one-way.
//
// # Dispatch semantics
//
// Dispatch is synchronous and non-reentrant. Stores receive an action
// in resolved dependency order; any number of SetState calls inside
// one handler invocation coalesce into a single "change" event. A
// handler error is announced on the dispatcher's "error" event and
// returned to the caller; the dispatcher stays usable afterwards. A
// rejected nested dispatch is announced on the same event, so it stays
// observable even when triggered through an action method.
//
// All failure cases use sentinel errors (ErrReentrantDispatch,
// ErrUnknownActionID, ...) that can be checked with errors.Is().
//
// # Thread Safety
//
// The model is single-threaded and fully synchronous. Builder and
// Dispatcher are NOT safe for concurrent use.
package uniflow
