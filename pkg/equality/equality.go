package equality

import (
	"fmt"
	"reflect"
	"strings"
	"unsafe"
)

// Func reports whether next should be treated as a change from prev.
type Func func(prev, next any) bool

// Policy selects how deep the structural comparison goes.
type Policy uint8

const (
	// Shallow compares one level of structure; elements are compared by identity.
	Shallow Policy = iota
	// Deep compares structure recursively.
	Deep
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case Shallow:
		return "shallow"
	case Deep:
		return "deep"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

// Func returns the engine implementing the policy.
// Unknown policies fall back to Shallow.
func (p Policy) Func() Func {
	if p == Deep {
		return DeepChanged
	}
	return ShallowChanged
}

// ParsePolicy parses "shallow" or "deep". The empty string is Shallow.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "shallow":
		return Shallow, nil
	case "deep":
		return Deep, nil
	default:
		return Shallow, fmt.Errorf("equality: unknown policy %q", s)
	}
}

// Changed reports whether next differs from prev under the given policy.
func Changed(prev, next any, p Policy) bool {
	return p.Func()(prev, next)
}

// ShallowChanged compares prev and next one level deep.
func ShallowChanged(prev, next any) bool {
	e := engine{}
	return e.changed(reflect.ValueOf(prev), reflect.ValueOf(next))
}

// DeepChanged compares prev and next recursively.
func DeepChanged(prev, next any) bool {
	e := engine{deep: true}
	return e.changed(reflect.ValueOf(prev), reflect.ValueOf(next))
}

// Same reports whether a and b are the same value by identity: equal scalars,
// the same map, the same slice window, the same pointer or function, or
// structs and arrays whose fields are pairwise Same.
func Same(a, b any) bool {
	return same(reflect.ValueOf(a), reflect.ValueOf(b))
}

// visit records a pair of references already under comparison.
type visit struct {
	a, b unsafe.Pointer
	typ  reflect.Type
}

type engine struct {
	deep    bool
	visited map[visit]struct{}
}

func (e *engine) changed(a, b reflect.Value) bool {
	a, b = unwrap(a), unwrap(b)
	if same(a, b) {
		return false
	}
	if !a.IsValid() || !b.IsValid() || a.Type() != b.Type() {
		return true
	}

	switch a.Kind() {
	case reflect.Pointer:
		if a.IsNil() || b.IsNil() {
			return true
		}
		switch a.Elem().Kind() {
		case reflect.Struct, reflect.Map:
			if e.seen(a, b) {
				return false
			}
			return e.mappingChanged(a.Elem(), b.Elem())
		}
		return true
	case reflect.Map:
		if e.seen(a, b) {
			return false
		}
		return e.mappingChanged(a, b)
	case reflect.Struct:
		return e.mappingChanged(a, b)
	case reflect.Slice:
		if e.seen(a, b) {
			return false
		}
		return e.sequenceChanged(a, b)
	case reflect.Array:
		return e.sequenceChanged(a, b)
	}
	return true
}

// mappingChanged scans the keys of a only.
func (e *engine) mappingChanged(a, b reflect.Value) bool {
	if a.Kind() == reflect.Struct {
		for i := 0; i < a.NumField(); i++ {
			if e.elementChanged(a.Field(i), b.Field(i)) {
				return true
			}
		}
		return false
	}

	iter := a.MapRange()
	for iter.Next() {
		var next reflect.Value
		if !b.IsNil() {
			next = b.MapIndex(iter.Key())
		}
		if e.elementChanged(iter.Value(), next) {
			return true
		}
	}
	return false
}

func (e *engine) sequenceChanged(a, b reflect.Value) bool {
	if a.Len() != b.Len() {
		return true
	}
	for i := 0; i < a.Len(); i++ {
		if e.elementChanged(a.Index(i), b.Index(i)) {
			return true
		}
	}
	return false
}

func (e *engine) elementChanged(a, b reflect.Value) bool {
	if e.deep {
		return e.changed(a, b)
	}
	return !same(a, b)
}

// seen marks the reference pair as visited and reports whether it already was.
// Only deep comparisons recurse, so shallow comparisons never record anything.
func (e *engine) seen(a, b reflect.Value) bool {
	if !e.deep {
		return false
	}
	v := visit{a: a.UnsafePointer(), b: b.UnsafePointer(), typ: a.Type()}
	if v.a == nil || v.b == nil {
		return false
	}
	if e.visited == nil {
		e.visited = make(map[visit]struct{})
	}
	if _, ok := e.visited[v]; ok {
		return true
	}
	e.visited[v] = struct{}{}
	return false
}

func unwrap(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	return v
}

func same(a, b reflect.Value) bool {
	a, b = unwrap(a), unwrap(b)
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.Type() != b.Type() {
		return false
	}

	switch a.Kind() {
	case reflect.Bool:
		return a.Bool() == b.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() == b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return a.Uint() == b.Uint()
	case reflect.Float32, reflect.Float64:
		return a.Float() == b.Float()
	case reflect.Complex64, reflect.Complex128:
		return a.Complex() == b.Complex()
	case reflect.String:
		return a.String() == b.String()
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Slice:
		return a.Pointer() == b.Pointer() && a.Len() == b.Len() && a.IsNil() == b.IsNil()
	case reflect.Struct:
		for i := 0; i < a.NumField(); i++ {
			if !same(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Array:
		for i := 0; i < a.Len(); i++ {
			if !same(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	}
	return false
}
