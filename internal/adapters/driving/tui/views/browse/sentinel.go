package browse

import (
	"sync"

	"github.com/browerscan/pocketbase.cn/internal/core/ports/driven"
)

// Ensure Sentinel implements the interface.
var _ driven.VisibilityObserver = (*Sentinel)(nil)

// Sentinel is the end-of-list marker of a terminal list. The view calls
// Notify when the cursor comes close to the last row.
type Sentinel struct {
	mu        sync.Mutex
	next      int
	callbacks map[int]func()
}

// NewSentinel creates a sentinel with no observers.
func NewSentinel() *Sentinel {
	return &Sentinel{callbacks: make(map[int]func())}
}

// Observe implements driven.VisibilityObserver.
func (s *Sentinel) Observe(onVisible func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	s.callbacks[id] = onVisible

	return func() {
		s.mu.Lock()
		delete(s.callbacks, id)
		s.mu.Unlock()
	}
}

// Notify reports the sentinel as visible. Callbacks run on the caller's
// goroutine.
func (s *Sentinel) Notify() {
	s.mu.Lock()
	callbacks := make([]func(), 0, len(s.callbacks))
	for _, cb := range s.callbacks {
		callbacks = append(callbacks, cb)
	}
	s.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
}

// Observers returns the number of registered callbacks.
func (s *Sentinel) Observers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.callbacks)
}
