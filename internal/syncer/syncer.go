// Package syncer owns the daemon connection. Its loop lists containers on
// a fixed interval, samples their stats, reconciles the registry, pulls new
// log lines and executes the commands the dashboard queues.
package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/alitto/pond"
	"github.com/rileyhilliard/dockmon/internal/docker"
	"github.com/rileyhilliard/dockmon/internal/logger"
	"github.com/rileyhilliard/dockmon/internal/state"
)

// Defaults for zero Options fields.
const (
	DefaultInterval       = time.Second
	DefaultPingTimeout    = 5 * time.Second
	DefaultCallTimeout    = 10 * time.Second
	DefaultCommandTimeout = 30 * time.Second
	DefaultWorkers        = 8
)

// Options configures the loop.
type Options struct {
	Interval       time.Duration
	ShowAll        bool
	ShowStdErr     bool
	LogCapacity    int
	SaveDir        string
	PingTimeout    time.Duration
	CallTimeout    time.Duration
	CommandTimeout time.Duration
	// Workers bounds concurrent stats and log fetches.
	Workers int
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.LogCapacity <= 0 {
		o.LogCapacity = state.DefaultLogCapacity
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = DefaultPingTimeout
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = DefaultCallTimeout
	}
	if o.CommandTimeout <= 0 {
		o.CommandTimeout = DefaultCommandTimeout
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	return o
}

// Loop is the running synchronization loop. Create it with Start.
type Loop struct {
	daemon docker.Daemon
	store  *state.Store
	opts   Options
	log    logger.Logger

	fetchPool *pond.WorkerPool
	// cmdPool has a single worker so commands run in the order queued.
	cmdPool *pond.WorkerPool

	samples *sampleCache
	// logStates holds each container's state as of the previous log pass.
	logStates map[state.ContainerID]state.State

	refresh   chan struct{}
	execCh    chan docker.Session
	done      chan struct{}
	closeOnce sync.Once

	now func() time.Time
}

// Start pings the daemon once. On failure it records a fatal DockerConnect
// error, which starts the exit countdown, closes the daemon and returns the
// error; there is no retry. On success the returned loop is ready to Run.
func Start(ctx context.Context, d docker.Daemon, store *state.Store, opts Options, log logger.Logger) (*Loop, error) {
	opts = opts.withDefaults()
	if log == nil {
		log = logger.Noop()
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()
	if err := d.Ping(pingCtx); err != nil {
		log.Error("daemon unreachable: %v", err)
		store.Errors.Set(state.AppError{Kind: state.ErrDockerConnect, Err: err})
		_ = d.Close()
		return nil, err
	}

	panicHandler := pond.PanicHandler(func(p interface{}) {
		log.Error("worker panic: %v", p)
	})

	return &Loop{
		daemon:    d,
		store:     store,
		opts:      opts,
		log:       log,
		fetchPool: pond.New(opts.Workers, 256, panicHandler),
		cmdPool:   pond.New(1, state.CommandCapacity, panicHandler),
		samples:   newSampleCache(),
		logStates: make(map[state.ContainerID]state.State),
		refresh:   make(chan struct{}, 1),
		execCh:    make(chan docker.Session, 1),
		done:      make(chan struct{}),
		now:       time.Now,
	}, nil
}

// ExecSessions delivers shells created by exec commands. It holds at most
// one session; the dashboard takes it and hands over the terminal. The
// channel is closed once the loop has stopped.
func (l *Loop) ExecSessions() <-chan docker.Session {
	return l.execCh
}

// Done is closed once Run has returned and released its resources.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Refresh asks for a tick outside the regular cadence. Requests made while
// one is pending are merged.
func (l *Loop) Refresh() {
	select {
	case l.refresh <- struct{}{}:
	default:
	}
}

// Run ticks until ctx is cancelled or shutdown is signalled. It closes the
// daemon before returning.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Shutdown also aborts whatever daemon call is in flight.
	go func() {
		select {
		case <-l.store.Shutdown.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	defer l.close()

	ticker := time.NewTicker(l.opts.Interval)
	defer ticker.Stop()

	l.tick(ctx)

	for {
		if l.stopping(ctx) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-l.store.Shutdown.Done():
			return
		case <-ticker.C:
			l.tick(ctx)
		case <-l.refresh:
			l.tick(ctx)
		case cmd := <-l.store.Commands.Receive():
			l.dispatch(ctx, cmd)
		}
	}
}

func (l *Loop) stopping(ctx context.Context) bool {
	return l.store.Shutdown.IsSet() || ctx.Err() != nil
}

func (l *Loop) close() {
	l.closeOnce.Do(func() {
		l.cmdPool.StopAndWait()
		// Only command workers send sessions, and they are gone now.
		close(l.execCh)
		l.fetchPool.StopAndWait()
		if err := l.daemon.Close(); err != nil {
			l.log.Warn("closing daemon client: %v", err)
		}
		l.log.Debug("sync loop stopped")
	})
}
