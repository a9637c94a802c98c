package state

import (
	"sync"
	"sync/atomic"
)

// Shutdown is the process-wide quit flag. Loops poll IsSet once per
// iteration and may also select on Done while they wait.
type Shutdown struct {
	flag atomic.Bool
	once sync.Once
	done chan struct{}
}

// NewShutdown returns an unset flag.
func NewShutdown() *Shutdown {
	return &Shutdown{done: make(chan struct{})}
}

// Signal sets the flag. Safe to call more than once.
func (s *Shutdown) Signal() {
	s.once.Do(func() {
		s.flag.Store(true)
		close(s.done)
	})
}

// IsSet reports whether shutdown was signalled.
func (s *Shutdown) IsSet() bool {
	return s.flag.Load()
}

// Done is closed when shutdown is signalled.
func (s *Shutdown) Done() <-chan struct{} {
	return s.done
}
