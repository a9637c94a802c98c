package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/rileyhilliard/dockmon/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHeadless(t *testing.T, containers ...state.Observed) (*headless, *state.Store, *bytes.Buffer) {
	t.Helper()
	store := state.NewStore(state.Options{LogCapacity: 10, ScrollStep: 1, Countdown: 2})
	if containers != nil {
		store.Registry.Reconcile(containers)
		store.View.SetStatus(state.StatusInit, false)
	}

	var buf bytes.Buffer
	h := newHeadless(store, &buf, time.Hour)
	h.now = func() time.Time { return time.Date(2026, 3, 1, 14, 5, 9, 0, time.UTC) }
	return h, store, &buf
}

func container(id, name string, st state.State, stats *state.Stats) state.Observed {
	return state.Observed{
		ID:    state.ContainerID(id),
		Name:  state.ContainerName(name),
		Image: state.ContainerImage(name + ":latest"),
		State: st,
		Stats: stats,
	}
}

func TestHeadlessSummary(t *testing.T) {
	h, _, buf := newTestHeadless(t,
		container("a1", "web", state.StateRunning, &state.Stats{CPUPercent: 10, MemoryUsage: 1 << 20, MemoryLimit: 1 << 30, RX: 2048, TX: 512}),
		container("b2", "db", state.StateRunning, &state.Stats{CPUPercent: 2.5, MemoryUsage: 1 << 20, MemoryLimit: 1 << 30}),
		container("c3", "cache", state.StatePaused, &state.Stats{}),
	)

	h.report()
	line := buf.String()
	assert.Contains(t, line, "↓ 2KiB  ↑ 512B")
	assert.NotContains(t, line, "/s", "traffic is bytes per refresh, not a rate")

	assert.True(t, strings.HasPrefix(line, "14:05:09"), line)
	assert.Contains(t, line, "3 containers, 2 running, 1 paused")
	assert.Contains(t, line, "cpu 12.50%")
	assert.Contains(t, line, "mem 2MiB")
}

func TestHeadlessSummaryOmitsPausedWhenNone(t *testing.T) {
	h, _, buf := newTestHeadless(t,
		container("a1", "web", state.StateRunning, &state.Stats{}),
	)

	h.report()
	assert.Contains(t, buf.String(), "1 containers, 1 running  cpu")
	assert.NotContains(t, buf.String(), "paused")
}

func TestHeadlessWaitsForFirstReconcile(t *testing.T) {
	h, _, buf := newTestHeadless(t)

	h.report()
	assert.Empty(t, buf.String())
}

func TestHeadlessRecoverableErrorPrintedOnce(t *testing.T) {
	h, store, buf := newTestHeadless(t,
		container("a1", "web", state.StateRunning, &state.Stats{}),
	)
	store.Errors.Set(state.AppError{
		Kind:      state.ErrDockerCommand,
		Command:   state.CmdStop,
		Container: "web",
		Err:       stderrors.New("conflict"),
	})

	h.report()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "docker command failed: web: stop: conflict")
	assert.Contains(t, lines[1], "1 containers")

	_, held := store.Errors.Current()
	assert.False(t, held, "recoverable error should be cleared once printed")

	buf.Reset()
	h.report()
	assert.NotContains(t, buf.String(), "conflict")
}

func TestHeadlessFatalCountdown(t *testing.T) {
	h, store, buf := newTestHeadless(t)
	store.Errors.Set(state.AppError{Kind: state.ErrDockerConnect, Err: stderrors.New("dial unix: no such file")})

	assert.False(t, h.tickCountdown())
	assert.Contains(t, buf.String(), "unable to access docker daemon: dial unix: no such file")
	assert.Contains(t, buf.String(), "closing in 01 seconds")

	assert.True(t, h.tickCountdown())
	assert.Equal(t, 1, strings.Count(buf.String(), "unable to access docker daemon"),
		"fatal error should be printed once")
}

func TestHeadlessCountdownIdleWithoutFatal(t *testing.T) {
	h, _, buf := newTestHeadless(t)

	assert.False(t, h.tickCountdown())
	assert.Empty(t, buf.String())
}

func TestHeadlessRunStops(t *testing.T) {
	t.Run("on shutdown", func(t *testing.T) {
		h, store, _ := newTestHeadless(t)
		done := make(chan error, 1)
		go func() { done <- h.run(context.Background()) }()

		store.Shutdown.Signal()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("run did not return after shutdown")
		}
	})

	t.Run("on context cancel", func(t *testing.T) {
		h, _, _ := newTestHeadless(t)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- h.run(ctx) }()

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("run did not return after cancel")
		}
	})

	t.Run("when the fatal countdown expires", func(t *testing.T) {
		h, store, _ := newTestHeadless(t)
		store.Errors.Set(state.AppError{Kind: state.ErrDockerConnect, Err: stderrors.New("refused")})

		require.NoError(t, h.run(context.Background()))
		assert.True(t, store.Shutdown.IsSet())
	})
}
