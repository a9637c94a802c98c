package syncer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rileyhilliard/dockmon/internal/docker"
	"github.com/rileyhilliard/dockmon/internal/state"
)

// dispatch queues cmd on the single command worker. The spinner for the
// command runs from here until the command finishes.
func (l *Loop) dispatch(ctx context.Context, cmd state.Command) {
	l.store.View.StartLoading(cmd.Op)
	l.log.Debug("command %s %s queued", cmd.Kind, cmd.ID.Short())

	l.cmdPool.Submit(func() {
		defer l.store.View.StopLoading(cmd.Op)
		l.execute(ctx, cmd)
	})
}

// execute runs one command. Failures land in the error slot and are never
// retried.
func (l *Loop) execute(ctx context.Context, cmd state.Command) {
	if l.stopping(ctx) {
		return
	}

	name, _ := l.store.Registry.Name(cmd.ID)
	if name == "" {
		name = state.ContainerName(cmd.ID.Short())
	}

	switch {
	case cmd.Kind.IsLifecycle():
		l.control(ctx, cmd, name)
	case cmd.Kind == state.CmdExec:
		l.exec(ctx, cmd, name)
	case cmd.Kind == state.CmdSaveLogs:
		l.saveLogs(ctx, cmd, name)
	case cmd.Kind == state.CmdInspect:
		l.inspect(ctx, cmd, name)
	default:
		l.log.Warn("unknown command %d for %s", cmd.Kind, cmd.ID.Short())
	}
}

func (l *Loop) control(ctx context.Context, cmd state.Command, name state.ContainerName) {
	callCtx, cancel := context.WithTimeout(ctx, l.opts.CommandTimeout)
	defer cancel()

	if err := l.daemon.Control(callCtx, cmd.ID, cmd.Kind); err != nil {
		if l.stopping(ctx) {
			return
		}
		l.log.Warn("%s %s failed: %v", cmd.Kind, name, err)
		l.store.Errors.Set(state.AppError{
			Kind:      state.ErrDockerCommand,
			Err:       err,
			Container: name,
			Command:   cmd.Kind,
		})
		return
	}

	l.log.Info("%s %s", cmd.Kind, name)
	l.Refresh()
}

func (l *Loop) exec(ctx context.Context, cmd state.Command, name state.ContainerName) {
	// The session outlives this call, so it gets the loop context rather
	// than a call timeout.
	session, err := l.daemon.Exec(ctx, cmd.ID)
	if err != nil {
		if l.stopping(ctx) {
			return
		}
		l.store.Errors.Set(state.AppError{Kind: state.ErrDockerExec, Err: err, Container: name})
		return
	}

	select {
	case l.execCh <- session:
	default:
		l.log.Warn("exec into %s dropped: another shell is waiting", name)
	}
}

func (l *Loop) saveLogs(ctx context.Context, cmd state.Command, name state.ContainerName) {
	callCtx, cancel := context.WithTimeout(ctx, l.opts.CommandTimeout)
	defer cancel()

	lines, err := l.daemon.Logs(callCtx, cmd.ID, docker.LogOptions{Stderr: l.opts.ShowStdErr})
	if err != nil {
		if l.stopping(ctx) {
			return
		}
		l.store.Errors.Set(state.AppError{Kind: state.ErrSaveLogs, Err: err, Container: name})
		return
	}

	path, err := writeLogFile(l.opts.SaveDir, name, l.now(), lines)
	if err != nil {
		l.store.Errors.Set(state.AppError{Kind: state.ErrSaveLogs, Err: err, Container: name})
		return
	}
	l.log.Info("saved %d log lines for %s to %s", len(lines), name, path)
}

// writeLogFile writes lines to <dir>/<name>_<unix-seconds>.log.
func writeLogFile(dir string, name state.ContainerName, at time.Time, lines []state.LogLine) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	var b strings.Builder
	for _, line := range lines {
		if !line.Time.IsZero() {
			b.WriteString(line.Time.Format(time.RFC3339Nano))
			b.WriteByte(' ')
		}
		b.WriteString(line.Text)
		b.WriteByte('\n')
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%d.log", name, at.Unix()))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func (l *Loop) inspect(ctx context.Context, cmd state.Command, name state.ContainerName) {
	callCtx, cancel := context.WithTimeout(ctx, l.opts.CallTimeout)
	defer cancel()

	doc, err := l.daemon.Inspect(callCtx, cmd.ID)
	if err != nil {
		if l.stopping(ctx) {
			return
		}
		l.store.Errors.Set(state.AppError{Kind: state.ErrDockerInspect, Err: err, Container: name})
		return
	}

	if !l.store.Registry.SetInspect(cmd.ID, string(doc)) {
		return
	}
	l.store.View.ScrollStart(state.ScrollInspect)
	l.store.View.SetStatus(state.StatusInspect, true)
}
