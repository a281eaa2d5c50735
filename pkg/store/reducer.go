package store

// Reducer combines the current value and an action into the next value.
type Reducer[T, A any] func(T, A) T

// ReducerStore is a store whose value can also be changed by dispatching
// actions of type A. Set and Update remain available.
type ReducerStore[T, A any] struct {
	*Store[T]
}

// NewReducer creates a store holding initial whose Dispatch applies reducer.
func NewReducer[T, A any](initial T, reducer Reducer[T, A], opts ...Option) *ReducerStore[T, A] {
	s := New(initial, opts...)
	if reducer != nil {
		s.reduce = func(current T, action any) T {
			a, _ := action.(A)
			return reducer(current, a)
		}
		s.accepts = func(action any) bool {
			if action == nil {
				return true
			}
			_, ok := action.(A)
			return ok
		}
	}
	return &ReducerStore[T, A]{Store: s}
}

// Dispatch replaces the value with reducer(current, action).
func (s *ReducerStore[T, A]) Dispatch(action A) {
	s.Store.Dispatch(action)
}
