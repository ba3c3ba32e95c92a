package uniflow

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/uniflow-go/uniflow/uemit"
	"golang.org/x/exp/maps"
)

// Facade is the filtered, bound-method view of a store or action
// instance exposed to the rest of the system. The method set is
// computed once at wiring time and never changes afterwards.
type Facade struct {
	methods map[string]reflect.Value
}

// Has reports whether a method is exposed.
func (f *Facade) Has(name string) bool {
	_, ok := f.methods[name]
	return ok
}

// MethodNames returns the exposed method names, sorted.
func (f *Facade) MethodNames() []string {
	names := maps.Keys(f.methods)
	slices.Sort(names)
	return names
}

// Call invokes an exposed method by name. Results are returned
// positionally; a trailing error return is split off and returned as
// the call error.
//
// Arguments must be assignable to the parameter types. Numeric values
// are coerced only when the exact value survives the conversion, so
// float64(3) is accepted for an int parameter but 3.7 fails with
// ErrInvalidArguments.
func (f *Facade) Call(name string, args ...any) ([]any, error) {
	m, ok := f.methods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
	return callBound(name, m, args)
}

// StoreFacade is the public surface of one store: read accessors plus
// event subscription, never mutators.
type StoreFacade struct {
	*Facade
	emitter *uemit.Emitter
}

// Subscribe attaches fn to one of the store's events, e.g. "change".
func (f *StoreFacade) Subscribe(event string, fn uemit.Listener) uemit.Subscription {
	return f.emitter.On(event, fn)
}

// ActionFacade is the public surface of one action: every intent
// method, permanently bound to the instance.
type ActionFacade struct {
	*Facade
}

// Invoke calls the named intent method.
func (f *ActionFacade) Invoke(name string, args ...any) error {
	_, err := f.Call(name, args...)
	return err
}

// exposedPrefixes is the accessor naming convention: a store method is
// public iff it looks like a read accessor.
var exposedPrefixes = []string{"Get", "Is", "Has"}

// storeSubscriptionMethods are the base-store methods that remain on
// the facade. The emit primitive stays internal.
var storeSubscriptionMethods = map[string]bool{
	"AddListener":       true,
	"AddChangeListener": true,
}

var (
	storeBaseMethods  = methodNameSet(reflect.TypeOf((*Store)(nil)))
	actionBaseMethods = methodNameSet(reflect.TypeOf((*Action)(nil)))
	errType           = reflect.TypeOf((*error)(nil)).Elem()
)

func methodNameSet(t reflect.Type) map[string]bool {
	set := make(map[string]bool, t.NumMethod())
	for i := 0; i < t.NumMethod(); i++ {
		set[t.Method(i).Name] = true
	}
	return set
}

func hasAccessorPrefix(name string) bool {
	for _, p := range exposedPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// newStoreFacade derives a store's public surface: accessor-style
// methods (own or promoted from user ancestor types) and the base
// subscription primitives. Everything else, including all other base
// Store methods, stays private.
func newStoreFacade(instance any, emitter *uemit.Emitter) *StoreFacade {
	v := reflect.ValueOf(instance)
	t := v.Type()

	methods := make(map[string]reflect.Value)
	for i := 0; i < t.NumMethod(); i++ {
		name := t.Method(i).Name
		if storeBaseMethods[name] {
			if !storeSubscriptionMethods[name] {
				continue
			}
		} else if !hasAccessorPrefix(name) {
			continue
		}
		methods[name] = v.Method(i)
	}

	return &StoreFacade{
		Facade:  &Facade{methods: methods},
		emitter: emitter,
	}
}

// newActionFacade derives an action's public surface: every exported
// method beyond the base Action type.
func newActionFacade(instance any) *ActionFacade {
	return &ActionFacade{Facade: &Facade{methods: intentMethods(instance)}}
}

// intentMethods enumerates the instance's own exported methods,
// excluding those promoted from the base Action.
func intentMethods(instance any) map[string]reflect.Value {
	v := reflect.ValueOf(instance)
	t := v.Type()

	methods := make(map[string]reflect.Value)
	for i := 0; i < t.NumMethod(); i++ {
		name := t.Method(i).Name
		if actionBaseMethods[name] {
			continue
		}
		methods[name] = v.Method(i)
	}
	return methods
}

// callBound invokes a bound method with loosely-typed arguments,
// converting each to the parameter type where possible.
func callBound(name string, m reflect.Value, args []any) ([]any, error) {
	t := m.Type()

	numFixed := t.NumIn()
	if t.IsVariadic() {
		numFixed--
		if len(args) < numFixed {
			return nil, fmt.Errorf("%w: %q wants at least %d args, got %d",
				ErrInvalidArguments, name, numFixed, len(args))
		}
	} else if len(args) != numFixed {
		return nil, fmt.Errorf("%w: %q wants %d args, got %d",
			ErrInvalidArguments, name, numFixed, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		expected := t.In(min(i, t.NumIn()-1))
		if t.IsVariadic() && i >= numFixed {
			expected = expected.Elem()
		}

		rv, err := argValue(name, i, arg, expected)
		if err != nil {
			return nil, err
		}
		in[i] = rv
	}

	outs := m.Call(in)

	results := make([]any, 0, len(outs))
	var callErr error
	for i, out := range outs {
		if i == len(outs)-1 && t.Out(i) == errType {
			if !out.IsNil() {
				callErr = out.Interface().(error)
			}
			continue
		}
		results = append(results, out.Interface())
	}
	return results, callErr
}

func argValue(name string, i int, arg any, expected reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch expected.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface,
			reflect.Map, reflect.Pointer, reflect.Slice:
			return reflect.Zero(expected), nil
		}
		return reflect.Value{}, fmt.Errorf("%w: %q arg %d is nil, want %s",
			ErrInvalidArguments, name, i, expected)
	}

	rv := reflect.ValueOf(arg)
	if rv.Type().AssignableTo(expected) {
		return rv, nil
	}
	if isNumericKind(rv.Kind()) && isNumericKind(expected.Kind()) {
		cv := rv.Convert(expected)
		if numericFits(rv, cv) {
			return cv, nil
		}
		return reflect.Value{}, fmt.Errorf("%w: %q arg %d value %v does not fit %s",
			ErrInvalidArguments, name, i, arg, expected)
	}
	return reflect.Value{}, fmt.Errorf("%w: %q arg %d is %s, want %s",
		ErrInvalidArguments, name, i, rv.Type(), expected)
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// numericFits reports whether the coerced value cv still represents
// rv's value exactly. Truncation and overflow fail the round trip;
// modular wraparound survives it, so the sign must match too.
func numericFits(rv, cv reflect.Value) bool {
	if cv.Convert(rv.Type()).Interface() != rv.Interface() {
		return false
	}
	return isNegative(rv) == isNegative(cv)
}

func isNegative(v reflect.Value) bool {
	switch {
	case v.CanInt():
		return v.Int() < 0
	case v.CanFloat():
		return v.Float() < 0
	}
	return false
}
