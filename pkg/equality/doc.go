// Package equality decides whether two projections differ enough to warrant
// notifying an observer.
//
// Two policies are provided:
//
//	equality.ShallowChanged(prev, next) // one level of structure
//	equality.DeepChanged(prev, next)    // recursive structure
//
// Both start from identity (see Same). Values that are not identical are then
// compared structurally when they are mappings (maps and structs, possibly
// behind a pointer) or ordered sequences (slices and arrays). Anything else
// that is not identical counts as changed.
//
// # Mapping asymmetry
//
// Mappings are compared by scanning the keys of the previous value only. A key
// that appears only in the next value is never examined, so adding a key whose
// counterpart was absent does not register as a change:
//
//	prev := map[string]int{"a": 1}
//	next := map[string]int{"a": 1, "b": 2}
//	equality.ShallowChanged(prev, next) // false
//
// Removing a key whose previous value was not nil does register.
package equality
