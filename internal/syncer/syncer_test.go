package syncer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/dockmon/internal/docker"
	dtesting "github.com/rileyhilliard/dockmon/internal/docker/testing"
	"github.com/rileyhilliard/dockmon/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore() *state.Store {
	return state.NewStore(state.Options{LogCapacity: 50, ScrollStep: 1, Countdown: 3})
}

func startLoop(t *testing.T, fake *dtesting.FakeDaemon, store *state.Store, opts Options) *Loop {
	t.Helper()
	if opts.Interval == 0 {
		opts.Interval = time.Hour
	}
	opts.ShowAll = true
	loop, err := Start(context.Background(), fake, store, opts, nil)
	require.NoError(t, err)
	return loop
}

// runLoop starts Run in the background and stops it when the test ends.
func runLoop(t *testing.T, loop *Loop, store *state.Store) {
	t.Helper()
	go loop.Run(context.Background())
	t.Cleanup(func() {
		store.Shutdown.Signal()
		<-loop.Done()
	})
}

func TestStart_PingFailureIsFatal(t *testing.T) {
	fake := dtesting.NewFakeDaemon()
	fake.PingErr = errors.New("connection refused")
	store := newStore()

	loop, err := Start(context.Background(), fake, store, Options{}, nil)
	require.Error(t, err)
	assert.Nil(t, loop)

	appErr, ok := store.Errors.Current()
	require.True(t, ok)
	assert.Equal(t, state.ErrDockerConnect, appErr.Kind)
	assert.True(t, store.Errors.IsFatal())

	left, counting := store.Errors.Countdown()
	assert.True(t, counting)
	assert.Equal(t, 3, left)

	assert.Len(t, fake.Calls, 1, "no daemon calls after the failed probe")
	assert.True(t, fake.Closed)

	// Recoverable errors cannot displace it.
	store.Errors.Set(state.AppError{Kind: state.ErrDockerList})
	appErr, _ = store.Errors.Current()
	assert.Equal(t, state.ErrDockerConnect, appErr.Kind)
}

func TestTick_ReconcilesAndComputesCPU(t *testing.T) {
	fake := dtesting.NewFakeDaemon().
		AddContainer("aaa", "web").
		AddContainer("bbb", "db").
		SetStats("aaa", docker.StatsSample{CPUTotal: 100, SystemCPU: 1000, OnlineCPUs: 1, MemoryUsage: 10, MemoryLimit: 100, RX: 50, TX: 5})
	store := newStore()
	loop := startLoop(t, fake, store, Options{})
	t.Cleanup(loop.close)

	loop.tick(context.Background())

	assert.Equal(t, 2, store.Registry.Len())
	assert.False(t, store.View.HasStatus(state.StatusInit))

	web, ok := store.Registry.Get("aaa")
	require.True(t, ok)
	assert.True(t, web.HasStats)
	assert.Zero(t, web.CPU, "first sample has nothing to compare against")
	assert.Equal(t, uint64(10), web.MemoryUsage)

	fake.SetStats("aaa", docker.StatsSample{CPUTotal: 150, SystemCPU: 1100, OnlineCPUs: 1, MemoryUsage: 12, MemoryLimit: 100, RX: 80, TX: 5})
	loop.tick(context.Background())

	web, _ = store.Registry.Get("aaa")
	assert.InDelta(t, 50.0, web.CPU, 0.001)
	assert.Equal(t, uint64(30), web.RX.Current())
}

func TestTick_PartialStatsFailure(t *testing.T) {
	fake := dtesting.NewFakeDaemon().
		AddContainer("aaa", "web").
		AddContainer("bbb", "db").
		SetStats("aaa", docker.StatsSample{MemoryUsage: 10}).
		SetStatsErr("bbb", errors.New("stats timeout"))
	store := newStore()
	loop := startLoop(t, fake, store, Options{})
	t.Cleanup(loop.close)

	loop.tick(context.Background())

	assert.Equal(t, 2, store.Registry.Len(), "a failed sample does not drop the container")
	web, _ := store.Registry.Get("aaa")
	db, _ := store.Registry.Get("bbb")
	assert.True(t, web.HasStats)
	assert.False(t, db.HasStats)

	_, hasErr := store.Errors.Current()
	assert.False(t, hasErr, "stats failures are not surfaced as errors")
}

func TestTick_StoppedContainersNotSampled(t *testing.T) {
	fake := dtesting.NewFakeDaemon().SetContainers(docker.Summary{ID: "ccc", Name: "job", State: state.StateExited})
	store := newStore()
	loop := startLoop(t, fake, store, Options{})
	t.Cleanup(loop.close)

	loop.tick(context.Background())

	assert.Zero(t, fake.CallCount("Stats"))
	job, ok := store.Registry.Get("ccc")
	require.True(t, ok)
	assert.True(t, job.HasStats)
	assert.Zero(t, job.MemoryUsage)
}

func TestTick_ListFailureKeepsRegistry(t *testing.T) {
	fake := dtesting.NewFakeDaemon().AddContainer("aaa", "web")
	store := newStore()
	loop := startLoop(t, fake, store, Options{})
	t.Cleanup(loop.close)

	loop.tick(context.Background())
	require.Equal(t, 1, store.Registry.Len())

	fake.SetListErr(errors.New("daemon hiccup"))
	loop.tick(context.Background())

	assert.Equal(t, 1, store.Registry.Len())
	appErr, ok := store.Errors.Current()
	require.True(t, ok)
	assert.Equal(t, state.ErrDockerList, appErr.Kind)
	assert.False(t, store.Errors.IsFatal())
}

func TestFetchLogs_Incremental(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	fake := dtesting.NewFakeDaemon().
		AddContainer("aaa", "web").
		AppendLogs("aaa",
			state.LogLine{Time: base, Text: "one"},
			state.LogLine{Time: base.Add(time.Second), Text: "two"},
		)
	store := newStore()
	loop := startLoop(t, fake, store, Options{LogCapacity: 50, ShowStdErr: true})
	t.Cleanup(loop.close)

	loop.tick(context.Background())

	calls := fake.LogCalls("aaa")
	require.Len(t, calls, 1)
	assert.Equal(t, 50, calls[0].Tail)
	assert.True(t, calls[0].Since.IsZero())
	assert.True(t, calls[0].Stderr)

	fake.AppendLogs("aaa", state.LogLine{Time: base.Add(2 * time.Second), Text: "three"})
	loop.tick(context.Background())

	calls = fake.LogCalls("aaa")
	require.Len(t, calls, 2)
	assert.Equal(t, base.Add(time.Second), calls[1].Since)
	assert.Zero(t, calls[1].Tail)

	web, _ := store.Registry.Get("aaa")
	var texts []string
	for _, l := range web.Logs.Lines() {
		texts = append(texts, l.Text)
	}
	assert.Equal(t, []string{"one", "two", "three"}, texts, "the inclusive since does not duplicate lines")
}

func TestFetchLogs_StoppedContainerFetchedOnce(t *testing.T) {
	fake := dtesting.NewFakeDaemon().SetContainers(docker.Summary{ID: "ccc", Name: "job", State: state.StateExited})
	store := newStore()
	loop := startLoop(t, fake, store, Options{})
	t.Cleanup(loop.close)

	loop.tick(context.Background())
	loop.tick(context.Background())

	assert.Len(t, fake.LogCalls("ccc"), 1)
}

func TestFetchLogs_FinalOutputAfterExit(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	fake := dtesting.NewFakeDaemon().
		AddContainer("aaa", "job").
		AppendLogs("aaa", state.LogLine{Time: base, Text: "starting"})
	store := newStore()
	loop := startLoop(t, fake, store, Options{})
	t.Cleanup(loop.close)

	loop.tick(context.Background())

	// The job prints its result and exits between two ticks.
	fake.AppendLogs("aaa", state.LogLine{Time: base.Add(time.Second), Text: "result: FAILED"})
	fake.SetContainers(docker.Summary{ID: "aaa", Name: "job", State: state.StateExited})

	loop.tick(context.Background())
	loop.tick(context.Background())

	calls := fake.LogCalls("aaa")
	require.Len(t, calls, 2, "one catch-up fetch after the exit, then none")
	assert.Equal(t, base, calls[1].Since)

	job, _ := store.Registry.Get("aaa")
	var texts []string
	for _, l := range job.Logs.Lines() {
		texts = append(texts, l.Text)
	}
	assert.Equal(t, []string{"starting", "result: FAILED"}, texts)
}

func TestCommands_RunInOrder(t *testing.T) {
	fake := dtesting.NewFakeDaemon().AddContainer("aaa", "web")
	fake.ControlDelay = 20 * time.Millisecond
	store := newStore()
	loop := startLoop(t, fake, store, Options{})
	runLoop(t, loop, store)

	require.True(t, store.Commands.Send(state.NewCommand(state.CmdStop, "aaa")))
	require.True(t, store.Commands.Send(state.NewCommand(state.CmdStart, "aaa")))

	require.Eventually(t, func() bool {
		return len(fake.ControlCalls()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	calls := fake.ControlCalls()
	assert.Equal(t, state.CmdStop, calls[0].Kind)
	assert.Equal(t, state.CmdStart, calls[1].Kind)

	require.Eventually(t, func() bool {
		return !store.View.IsLoading()
	}, 2*time.Second, 10*time.Millisecond, "spinner stops when the commands finish")
}

func TestCommands_FailureSetsRecoverableError(t *testing.T) {
	fake := dtesting.NewFakeDaemon().AddContainer("aaa", "web")
	fake.ControlErr = errors.New("conflict")
	store := newStore()
	loop := startLoop(t, fake, store, Options{})
	t.Cleanup(loop.close)
	loop.tick(context.Background())

	loop.execute(context.Background(), state.NewCommand(state.CmdPause, "aaa"))

	appErr, ok := store.Errors.Current()
	require.True(t, ok)
	assert.Equal(t, state.ErrDockerCommand, appErr.Kind)
	assert.Equal(t, state.CmdPause, appErr.Command)
	assert.Equal(t, state.ContainerName("web"), appErr.Container)
	assert.Len(t, fake.ControlCalls(), 1, "failed commands are not retried")
}

func TestCommands_SuccessRequestsRefresh(t *testing.T) {
	fake := dtesting.NewFakeDaemon().AddContainer("aaa", "web")
	store := newStore()
	loop := startLoop(t, fake, store, Options{})
	t.Cleanup(loop.close)

	loop.execute(context.Background(), state.NewCommand(state.CmdStop, "aaa"))

	select {
	case <-loop.refresh:
	default:
		t.Fatal("expected a refresh request")
	}
}

func TestCommands_Inspect(t *testing.T) {
	fake := dtesting.NewFakeDaemon().AddContainer("aaa", "web").SetInspect("aaa", []byte(`{"Id": "aaa"}`))
	store := newStore()
	loop := startLoop(t, fake, store, Options{})
	t.Cleanup(loop.close)
	loop.tick(context.Background())

	loop.execute(context.Background(), state.NewCommand(state.CmdInspect, "aaa"))

	snap := store.Snapshot()
	require.NotNil(t, snap.Inspect)
	assert.Equal(t, `{"Id": "aaa"}`, snap.Inspect.JSON)
	assert.True(t, snap.View.Has(state.StatusInspect))
}

func TestCommands_InspectFailure(t *testing.T) {
	fake := dtesting.NewFakeDaemon().AddContainer("aaa", "web")
	fake.InspectErr = errors.New("gone")
	store := newStore()
	loop := startLoop(t, fake, store, Options{})
	t.Cleanup(loop.close)
	loop.tick(context.Background())

	loop.execute(context.Background(), state.NewCommand(state.CmdInspect, "aaa"))

	appErr, ok := store.Errors.Current()
	require.True(t, ok)
	assert.Equal(t, state.ErrDockerInspect, appErr.Kind)
	assert.False(t, store.View.HasStatus(state.StatusInspect))
}

func TestCommands_SaveLogs(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	fake := dtesting.NewFakeDaemon().
		AddContainer("aaa", "web").
		AppendLogs("aaa", state.LogLine{Time: base, Text: "hello"}, state.LogLine{Text: "no timestamp"})
	store := newStore()
	loop := startLoop(t, fake, store, Options{SaveDir: dir})
	loop.now = func() time.Time { return time.Unix(1714557600, 0) }
	t.Cleanup(loop.close)
	loop.tick(context.Background())

	loop.execute(context.Background(), state.NewCommand(state.CmdSaveLogs, "aaa"))

	data, err := os.ReadFile(filepath.Join(dir, "web_1714557600.log"))
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01T10:00:00Z hello\nno timestamp\n", string(data))

	calls := fake.LogCalls("aaa")
	assert.Zero(t, calls[len(calls)-1].Tail, "saving fetches the complete log")
}

func TestCommands_SaveLogsUnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	fake := dtesting.NewFakeDaemon().AddContainer("aaa", "web")
	store := newStore()
	loop := startLoop(t, fake, store, Options{SaveDir: file})
	t.Cleanup(loop.close)

	loop.execute(context.Background(), state.NewCommand(state.CmdSaveLogs, "aaa"))

	appErr, ok := store.Errors.Current()
	require.True(t, ok)
	assert.Equal(t, state.ErrSaveLogs, appErr.Kind)
}

func TestCommands_ExecHandoff(t *testing.T) {
	fake := dtesting.NewFakeDaemon().AddContainer("aaa", "web")
	store := newStore()
	loop := startLoop(t, fake, store, Options{})
	t.Cleanup(loop.close)

	loop.execute(context.Background(), state.NewCommand(state.CmdExec, "aaa"))
	loop.execute(context.Background(), state.NewCommand(state.CmdExec, "aaa"))

	select {
	case s := <-loop.ExecSessions():
		assert.Equal(t, state.ContainerID("aaa"), s.(*dtesting.FakeSession).ID)
	default:
		t.Fatal("expected a session")
	}

	select {
	case <-loop.ExecSessions():
		t.Fatal("the handoff holds a single session")
	default:
	}
}

func TestCommands_ExecFailure(t *testing.T) {
	fake := dtesting.NewFakeDaemon().AddContainer("aaa", "web")
	fake.ExecErr = errors.New("no shell")
	store := newStore()
	loop := startLoop(t, fake, store, Options{})
	t.Cleanup(loop.close)

	loop.execute(context.Background(), state.NewCommand(state.CmdExec, "aaa"))

	appErr, ok := store.Errors.Current()
	require.True(t, ok)
	assert.Equal(t, state.ErrDockerExec, appErr.Kind)
}

func TestRun_StopsOnShutdown(t *testing.T) {
	fake := dtesting.NewFakeDaemon().AddContainer("aaa", "web")
	store := newStore()
	loop := startLoop(t, fake, store, Options{Interval: 10 * time.Millisecond})

	go loop.Run(context.Background())

	require.Eventually(t, func() bool {
		return fake.CallCount("ListContainers") >= 2
	}, 2*time.Second, 5*time.Millisecond)

	store.Shutdown.Signal()

	select {
	case <-loop.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
	assert.True(t, fake.Closed)

	calls := len(fake.Calls)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, len(fake.Calls), "no daemon calls after shutdown")

	assert.False(t, store.Commands.Send(state.NewCommand(state.CmdStop, "aaa")))

	_, open := <-loop.ExecSessions()
	assert.False(t, open, "the exec handoff is closed so its reader can return")
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	fake := dtesting.NewFakeDaemon()
	store := newStore()
	loop := startLoop(t, fake, store, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	cancel()

	select {
	case <-loop.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestWriteLogFile_DefaultsToWorkingDir(t *testing.T) {
	testChdir(t, t.TempDir())

	path, err := writeLogFile("", "web", time.Unix(10, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, "web_10.log", path)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
