package store

import "sync/atomic"

// observer is one registered binding.
type observer[T any] struct {
	id uint64

	// check re-derives the projection from value, notifies if it changed,
	// and reports whether it notified.
	check func(value T) bool

	// live is cleared on detach so a running pass skips the observer.
	live atomic.Bool
}

// register appends o to the registry and returns the value and version it
// was registered at. Every pass for a later version includes o.
// Notifications follow registration order.
func (s *Store[T]) register(o *observer[T]) (T, uint64) {
	s.mu.Lock()
	o.live.Store(true)
	s.observers = append(s.observers, o)
	n := len(s.observers)
	value, version := s.value, s.version
	s.mu.Unlock()

	s.metrics.SetObservers(s.name, n)
	return value, version
}

// unregister removes o, preserving the order of the remaining observers.
func (s *Store[T]) unregister(o *observer[T]) {
	s.mu.Lock()
	o.live.Store(false)
	for i, existing := range s.observers {
		if existing == o {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			break
		}
	}
	n := len(s.observers)
	s.mu.Unlock()

	s.metrics.SetObservers(s.name, n)
}

// Observers returns the number of attached observers.
func (s *Store[T]) Observers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observers)
}
