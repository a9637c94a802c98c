package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/muesli/cancelreader"
	"golang.org/x/term"
)

// shellCommand prefers bash and falls back to sh.
var shellCommand = []string{"sh", "-c", "command -v bash >/dev/null 2>&1 && exec bash || exec sh"}

// ExecSession is an interactive TTY shell attached to a container. Run
// puts the local terminal into raw mode and pipes it to the shell until
// the shell exits.
type ExecSession struct {
	ctx    context.Context
	cli    client.APIClient
	id     string
	execID string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newExecSession(ctx context.Context, cli client.APIClient, id string) (*ExecSession, error) {
	cfg := types.ExecConfig{
		Tty:          true,
		AttachStdin:  true,
		AttachStdout: true,
		AttachStderr: true,
		Cmd:          shellCommand,
	}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ConsoleSize = &[2]uint{uint(h), uint(w)}
	}

	resp, err := cli.ContainerExecCreate(ctx, id, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create exec: %w", err)
	}

	return &ExecSession{
		ctx:    ctx,
		cli:    cli,
		id:     id,
		execID: resp.ID,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}, nil
}

func (s *ExecSession) SetStdin(r io.Reader)  { s.stdin = r }
func (s *ExecSession) SetStdout(w io.Writer) { s.stdout = w }
func (s *ExecSession) SetStderr(w io.Writer) { s.stderr = w }

// Run attaches to the exec instance and blocks until the shell exits.
func (s *ExecSession) Run() error {
	check := types.ExecStartCheck{Tty: true}
	hijack, err := s.cli.ContainerExecAttach(s.ctx, s.execID, check)
	if err != nil {
		return fmt.Errorf("failed to attach exec: %w", err)
	}
	defer hijack.Close()

	if f, ok := s.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		prev, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return fmt.Errorf("failed to set raw mode: %w", err)
		}
		defer term.Restore(int(f.Fd()), prev) //nolint:errcheck
	}

	s.resize()

	// stdin must stop being read once the shell exits, otherwise the
	// dashboard loses its next keypress to this goroutine.
	in, err := cancelreader.NewReader(s.stdin)
	if err != nil {
		return fmt.Errorf("failed to wrap stdin: %w", err)
	}
	defer in.Close()

	go func() {
		_, _ = io.Copy(hijack.Conn, in)
		_ = hijack.CloseWrite()
	}()

	_, err = io.Copy(s.stdout, hijack.Reader)
	in.Cancel()
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("exec stream failed: %w", err)
	}
	return nil
}

func (s *ExecSession) resize() {
	f, ok := s.stdout.(*os.File)
	if !ok {
		return
	}
	w, h, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return
	}
	_ = s.cli.ContainerExecResize(s.ctx, s.execID, container.ResizeOptions{
		Height: uint(h),
		Width:  uint(w),
	})
}
