package container

import (
	"fmt"
	"reflect"
	"sync"
)

// ValueRegistry holds resolvable shortcut values: objects pre-associated
// with a type that short-circuit normal candidate lookup (framework-internal
// infrastructure objects, ambient handles, and the like).
//
// It is intentionally:
// - small
// - read-mostly
// - consulted before any definition scan
//
// A registered value may be a plain instance or a deferred `func() any`
// thunk, unwrapped at resolution time.
type ValueRegistry struct {
	mu    sync.RWMutex
	items map[reflect.Type]any
}

// NewValueRegistry returns an empty value registry.
func NewValueRegistry() *ValueRegistry {
	return &ValueRegistry{items: map[reflect.Type]any{}}
}

// Provide associates val with t and returns the registry for chaining.
func (v *ValueRegistry) Provide(t reflect.Type, val any) *ValueRegistry {
	v.mu.Lock()
	v.items[t] = val
	v.mu.Unlock()
	return v
}

// Get returns the value registered for exactly t (no assignability walk).
func (v *ValueRegistry) Get(t reflect.Type) (any, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	val, ok := v.items[t]
	return val, ok
}

// MustGet returns the value for t or panics with a helpful message.
// Useful in examples/tests where a missing shortcut should fail fast.
func (v *ValueRegistry) MustGet(t reflect.Type) any {
	val, ok := v.Get(t)
	if !ok {
		panic(fmt.Errorf("container: value registry missing type %s", t))
	}
	return val
}

// Resolve finds a registered value assignable to required, unwrapping
// deferred thunks. A panic from a thunk comes back as an error.
// The returned name is a synthetic identity label for candidate maps.
func (v *ValueRegistry) Resolve(required reflect.Type) (name string, val any, ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			name, val, ok = "", nil, false
			err = fmt.Errorf("container: panic resolving shortcut value: %v", rec)
		}
	}()

	v.mu.RLock()
	defer v.mu.RUnlock()
	for registered, candidate := range v.items {
		if !assignable(required, registered) && !assignable(registered, required) {
			continue
		}
		resolved := unwrapValue(candidate, required)
		if resolved == nil || !assignable(reflect.TypeOf(resolved), required) {
			continue
		}
		return identityName(resolved), resolved, true, nil
	}
	return "", nil, false, nil
}

// ContainsValue reports whether x is one of the registered values, by
// identity. Used as a disambiguation fallback.
func (v *ValueRegistry) ContainsValue(x any) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, candidate := range v.items {
		if identical(candidate, x) {
			return true
		}
	}
	return false
}

// unwrapValue calls deferred thunks unless the request is literally for the
// thunk type.
func unwrapValue(val any, required reflect.Type) any {
	if thunk, ok := val.(func() any); ok && required.Kind() != reflect.Func {
		return thunk()
	}
	return val
}

func identityName(v any) string {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Chan, reflect.Map, reflect.Func, reflect.UnsafePointer, reflect.Slice:
		return fmt.Sprintf("%T@%#x", v, rv.Pointer())
	default:
		return fmt.Sprintf("%T-value", v)
	}
}

// identical compares two values by identity: pointer equality for reference
// kinds, == for comparable values, false otherwise.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() != vb.Kind() {
		return false
	}
	switch va.Kind() {
	case reflect.Pointer, reflect.Chan, reflect.Map, reflect.Func, reflect.UnsafePointer, reflect.Slice:
		return va.Pointer() == vb.Pointer()
	default:
		return va.Type() == vb.Type() && va.Type().Comparable() && a == b
	}
}
