// Package testing provides test doubles for the docker package.
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rileyhilliard/dockmon/internal/docker"
	"github.com/rileyhilliard/dockmon/internal/state"
)

// Call records one method call on the fake.
type Call struct {
	Method string
	ID     state.ContainerID
	Kind   state.CommandKind
	Logs   docker.LogOptions
}

// FakeDaemon is an in-memory daemon. Lifecycle commands change the state of
// the fake containers so the next list reflects them.
type FakeDaemon struct {
	mu sync.Mutex

	containers []docker.Summary
	stats      map[state.ContainerID]docker.StatsSample
	logs       map[state.ContainerID][]state.LogLine
	inspect    map[state.ContainerID][]byte

	// Failure injection
	PingErr    error
	ListErr    error
	StatsErr   map[state.ContainerID]error
	ControlErr error
	LogsErr    error
	InspectErr error
	ExecErr    error

	// ControlDelay makes every Control call take this long.
	ControlDelay time.Duration

	// Call tracking
	Calls    []Call
	Closed   bool
	Sessions []*FakeSession
}

var _ docker.Daemon = (*FakeDaemon)(nil)

// NewFakeDaemon creates a fake that answers every call successfully.
func NewFakeDaemon() *FakeDaemon {
	return &FakeDaemon{
		stats:    make(map[state.ContainerID]docker.StatsSample),
		logs:     make(map[state.ContainerID][]state.LogLine),
		inspect:  make(map[state.ContainerID][]byte),
		StatsErr: make(map[state.ContainerID]error),
	}
}

// SetContainers replaces the container list.
func (f *FakeDaemon) SetContainers(list ...docker.Summary) *FakeDaemon {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.containers = append([]docker.Summary(nil), list...)
	return f
}

// AddContainer appends a running container with the given id and name.
func (f *FakeDaemon) AddContainer(id, name string) *FakeDaemon {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.containers = append(f.containers, docker.Summary{
		ID:      state.ContainerID(id),
		Name:    state.ContainerName(name),
		Image:   state.ContainerImage(name + ":latest"),
		State:   state.StateRunning,
		Status:  "Up 1 minute",
		Created: time.Unix(1700000000, 0),
	})
	return f
}

// SetStats sets the sample returned for id.
func (f *FakeDaemon) SetStats(id string, s docker.StatsSample) *FakeDaemon {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats[state.ContainerID(id)] = s
	return f
}

// SetStatsErr makes stats for id fail.
func (f *FakeDaemon) SetStatsErr(id string, err error) *FakeDaemon {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.StatsErr[state.ContainerID(id)] = err
	return f
}

// AppendLogs adds log lines for id.
func (f *FakeDaemon) AppendLogs(id string, lines ...state.LogLine) *FakeDaemon {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs[state.ContainerID(id)] = append(f.logs[state.ContainerID(id)], lines...)
	return f
}

// SetInspect sets the inspect document for id.
func (f *FakeDaemon) SetInspect(id string, doc []byte) *FakeDaemon {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inspect[state.ContainerID(id)] = doc
	return f
}

// SetListErr changes the list error under the lock, for use while a loop is running.
func (f *FakeDaemon) SetListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListErr = err
}

func (f *FakeDaemon) record(c Call) {
	f.Calls = append(f.Calls, c)
}

func (f *FakeDaemon) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "Ping"})
	return f.PingErr
}

func (f *FakeDaemon) ListContainers(ctx context.Context, all bool) ([]docker.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "ListContainers"})
	if f.ListErr != nil {
		return nil, f.ListErr
	}

	var out []docker.Summary
	for _, c := range f.containers {
		if all || c.State == state.StateRunning {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *FakeDaemon) Stats(ctx context.Context, id state.ContainerID) (docker.StatsSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "Stats", ID: id})
	if err := f.StatsErr[id]; err != nil {
		return docker.StatsSample{}, err
	}
	s, ok := f.stats[id]
	if !ok {
		return docker.StatsSample{Read: time.Now()}, nil
	}
	return s, nil
}

func (f *FakeDaemon) Control(ctx context.Context, id state.ContainerID, kind state.CommandKind) error {
	if f.ControlDelay > 0 {
		select {
		case <-time.After(f.ControlDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "Control", ID: id, Kind: kind})
	if f.ControlErr != nil {
		return f.ControlErr
	}

	idx := f.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("no such container: %s", id)
	}

	switch kind {
	case state.CmdStart, state.CmdRestart, state.CmdUnpause:
		f.containers[idx].State = state.StateRunning
	case state.CmdStop:
		f.containers[idx].State = state.StateExited
	case state.CmdPause:
		f.containers[idx].State = state.StatePaused
	case state.CmdRemove:
		f.containers = append(f.containers[:idx], f.containers[idx+1:]...)
	default:
		return fmt.Errorf("%s is not a lifecycle command", kind)
	}
	return nil
}

func (f *FakeDaemon) indexOf(id state.ContainerID) int {
	for i, c := range f.containers {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Logs honours Since (inclusive), Tail and Stderr like the daemon does.
func (f *FakeDaemon) Logs(ctx context.Context, id state.ContainerID, opts docker.LogOptions) ([]state.LogLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "Logs", ID: id, Logs: opts})
	if f.LogsErr != nil {
		return nil, f.LogsErr
	}

	var out []state.LogLine
	for _, l := range f.logs[id] {
		if !opts.Since.IsZero() && l.Time.Before(opts.Since) {
			continue
		}
		if l.Stderr && !opts.Stderr {
			continue
		}
		out = append(out, l)
	}
	if opts.Tail > 0 && len(out) > opts.Tail {
		out = out[len(out)-opts.Tail:]
	}
	return out, nil
}

func (f *FakeDaemon) Inspect(ctx context.Context, id state.ContainerID) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "Inspect", ID: id})
	if f.InspectErr != nil {
		return nil, f.InspectErr
	}
	if doc, ok := f.inspect[id]; ok {
		return doc, nil
	}
	return []byte(fmt.Sprintf("{\n  \"Id\": %q\n}", id)), nil
}

func (f *FakeDaemon) Exec(ctx context.Context, id state.ContainerID) (docker.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "Exec", ID: id})
	if f.ExecErr != nil {
		return nil, f.ExecErr
	}
	s := &FakeSession{ID: id}
	f.Sessions = append(f.Sessions, s)
	return s, nil
}

func (f *FakeDaemon) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// CallCount returns how many times method was called.
func (f *FakeDaemon) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// ControlCalls returns the lifecycle commands in the order they ran.
func (f *FakeDaemon) ControlCalls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.Calls {
		if c.Method == "Control" {
			out = append(out, c)
		}
	}
	return out
}

// LogCalls returns the options of every Logs call for id.
func (f *FakeDaemon) LogCalls(id string) []docker.LogOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []docker.LogOptions
	for _, c := range f.Calls {
		if c.Method == "Logs" && c.ID == state.ContainerID(id) {
			out = append(out, c.Logs)
		}
	}
	return out
}

// ResetCalls clears the call log.
func (f *FakeDaemon) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = nil
}

// FakeSession records that it was run.
type FakeSession struct {
	mu     sync.Mutex
	ID     state.ContainerID
	Ran    bool
	RunErr error
	stdin  io.Reader
	stdout io.Writer
}

var _ docker.Session = (*FakeSession)(nil)

// ErrSessionFailed is a convenience error for RunErr.
var ErrSessionFailed = errors.New("shell exited abnormally")

func (s *FakeSession) Run() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Ran = true
	if s.stdout != nil {
		_, _ = io.WriteString(s.stdout, "exited\n")
	}
	return s.RunErr
}

func (s *FakeSession) SetStdin(r io.Reader)  { s.stdin = r }
func (s *FakeSession) SetStdout(w io.Writer) { s.stdout = w }
func (s *FakeSession) SetStderr(io.Writer)   {}
