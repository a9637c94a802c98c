package state

import (
	"fmt"
	"sync"
)

// ErrorKind classifies an AppError. Only DockerConnect is fatal.
type ErrorKind int

const (
	ErrDockerConnect ErrorKind = iota
	ErrDockerCommand
	ErrDockerExec
	ErrDockerLogs
	ErrDockerInspect
	ErrDockerList
	ErrSaveLogs
	ErrTerminal
)

// String returns a short title for the popup.
func (k ErrorKind) String() string {
	switch k {
	case ErrDockerConnect:
		return "unable to access docker daemon"
	case ErrDockerCommand:
		return "docker command failed"
	case ErrDockerExec:
		return "unable to exec into container"
	case ErrDockerLogs:
		return "unable to read logs"
	case ErrDockerInspect:
		return "unable to inspect container"
	case ErrDockerList:
		return "unable to list containers"
	case ErrSaveLogs:
		return "unable to save logs"
	case ErrTerminal:
		return "terminal error"
	default:
		return "error"
	}
}

// Fatal reports whether the error ends the process.
func (k ErrorKind) Fatal() bool {
	return k == ErrDockerConnect
}

// AppError is the value held in the ErrorSlot.
type AppError struct {
	Kind      ErrorKind
	Err       error
	Container ContainerName
	Command   CommandKind
}

// Error implements error.
func (e AppError) Error() string {
	msg := e.Kind.String()
	if e.Kind == ErrDockerCommand {
		msg = fmt.Sprintf("%s: %s", msg, e.Command)
	}
	if e.Container != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Container)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e AppError) Unwrap() error {
	return e.Err
}

// DefaultCountdown is the number of seconds shown before exiting on a fatal
// error.
const DefaultCountdown = 5

// ErrorSlot holds at most one AppError. The newest recoverable error
// replaces the previous one. A fatal error is never replaced or cleared and
// starts the exit countdown.
type ErrorSlot struct {
	mu        sync.Mutex
	current   *AppError
	countdown int
	start     int
	counting  bool
}

// NewErrorSlot returns an empty slot whose fatal countdown starts at
// seconds (DefaultCountdown when <= 0).
func NewErrorSlot(seconds int) *ErrorSlot {
	if seconds <= 0 {
		seconds = DefaultCountdown
	}
	return &ErrorSlot{start: seconds, countdown: seconds}
}

// Set records e. It is ignored when a fatal error is already held.
func (s *ErrorSlot) Set(e AppError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.Kind.Fatal() {
		return
	}
	s.current = &e
	if e.Kind.Fatal() {
		s.counting = true
		s.countdown = s.start
	}
}

// Clear removes a recoverable error. Returns false when nothing was cleared.
func (s *ErrorSlot) Clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.Kind.Fatal() {
		return false
	}
	s.current = nil
	return true
}

// Current returns the held error.
func (s *ErrorSlot) Current() (AppError, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return AppError{}, false
	}
	return *s.current, true
}

// IsFatal reports whether a fatal error is held.
func (s *ErrorSlot) IsFatal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && s.current.Kind.Fatal()
}

// TickCountdown advances the fatal countdown by one second. It returns the
// seconds left and whether the countdown has reached zero. Without a fatal
// error it does nothing.
func (s *ErrorSlot) TickCountdown() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.counting {
		return 0, false
	}
	if s.countdown > 0 {
		s.countdown--
	}
	return s.countdown, s.countdown == 0
}

// Countdown returns the seconds left and whether a countdown is running.
func (s *ErrorSlot) Countdown() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countdown, s.counting
}
