// Package docker is dockmon's boundary with the container daemon. Client
// talks to the Docker Engine API through the official SDK; everything
// above this package sees only the Daemon interface and plain values.
package docker

import (
	"context"
	"io"
	"time"

	"github.com/rileyhilliard/dockmon/internal/state"
)

// Daemon is everything the sync loop needs from a container daemon.
type Daemon interface {
	Ping(ctx context.Context) error
	ListContainers(ctx context.Context, all bool) ([]Summary, error)
	// Stats takes a single non-streaming sample. CPU percentage needs two
	// samples, see CPUPercent.
	Stats(ctx context.Context, id state.ContainerID) (StatsSample, error)
	// Control runs one lifecycle command: start, stop, pause, unpause,
	// restart or remove.
	Control(ctx context.Context, id state.ContainerID, kind state.CommandKind) error
	Logs(ctx context.Context, id state.ContainerID, opts LogOptions) ([]state.LogLine, error)
	// Inspect returns the container's inspect document as indented JSON.
	Inspect(ctx context.Context, id state.ContainerID) ([]byte, error)
	Exec(ctx context.Context, id state.ContainerID) (Session, error)
	Close() error
}

// Summary is one entry from the container list.
type Summary struct {
	ID      state.ContainerID
	Name    state.ContainerName
	Image   state.ContainerImage
	State   state.State
	Status  string
	Created time.Time
}

// StatsSample holds the raw counters from one stats read.
type StatsSample struct {
	Read        time.Time
	CPUTotal    uint64
	SystemCPU   uint64
	OnlineCPUs  uint32
	MemoryUsage uint64
	MemoryLimit uint64
	RX          uint64
	TX          uint64
}

// LogOptions selects which log lines to fetch.
type LogOptions struct {
	// Since limits the result to lines at or after this time. Zero fetches
	// from the start, bounded by Tail.
	Since time.Time
	// Tail is the number of lines from the end to return. Zero means all.
	Tail   int
	Stderr bool
}

// Session is an interactive shell inside a container. Its method set
// matches bubbletea's ExecCommand so the dashboard can hand it the
// terminal directly.
type Session interface {
	Run() error
	SetStdin(io.Reader)
	SetStdout(io.Writer)
	SetStderr(io.Writer)
}
