package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/dockmon/internal/config"
	"github.com/rileyhilliard/dockmon/internal/docker"
	"github.com/rileyhilliard/dockmon/internal/logger"
	"github.com/rileyhilliard/dockmon/internal/state"
)

// Frame and countdown cadence.
const (
	FrameInterval     = 100 * time.Millisecond
	CountdownInterval = time.Second
)

// Options configures the dashboard. Everything here is read once.
type Options struct {
	Keymap *config.Keymap
	// Execs delivers shell sessions created by the sync loop. Nil when the
	// loop never started.
	Execs <-chan docker.Session
	// Host is shown in the header.
	Host       string
	Timestamps bool
	ColorLogs  bool
	// ScrollStep is how many log lines one up/down moves.
	ScrollStep int
	Log        logger.Logger
}

// Model is the bubbletea model for the dashboard. It holds the latest
// snapshot; all shared state lives in the store.
type Model struct {
	store *state.Store
	keys  *config.Keymap
	execs <-chan docker.Session
	opts  Options
	log   logger.Logger

	snap   state.Snapshot
	width  int
	height int

	help   help.Model
	filter textinput.Model

	confirm   *huh.Form
	confirmed *bool

	quitting bool
}

// frameMsg drives redraws.
type frameMsg time.Time

// countdownMsg drives the fatal error countdown.
type countdownMsg time.Time

// execMsg carries a session the sync loop created.
type execMsg struct {
	session docker.Session
}

// execDoneMsg reports that the shell exited and the terminal is back.
type execDoneMsg struct {
	err error
}

// New creates a dashboard bound to store.
func New(store *state.Store, opts Options) Model {
	if opts.Log == nil {
		opts.Log = logger.Noop()
	}

	fi := textinput.New()
	fi.Prompt = "/ "
	fi.PromptStyle = FilterPromptStyle
	fi.Placeholder = "name or image"
	fi.CharLimit = 64

	h := help.New()
	h.ShortSeparator = " | "

	return Model{
		store:  store,
		keys:   opts.Keymap,
		execs:  opts.Execs,
		opts:   opts,
		log:    opts.Log,
		snap:   store.Snapshot(),
		help:   h,
		filter: fi,
	}
}

// Init starts the frame and countdown ticks and waits for exec sessions.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{frameCmd(), countdownCmd()}
	if m.snap.View.Mouse {
		cmds = append(cmds, tea.EnableMouseCellMotion)
	}
	if c := m.waitExec(); c != nil {
		cmds = append(cmds, c)
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirm != nil && m.snap.Error == nil {
			return m.updateConfirm(msg)
		}
		_, cmd := m.HandleKeyMsg(msg)
		m.refresh()
		return m, cmd

	case tea.MouseMsg:
		m.handleMouse(msg)
		m.refresh()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = max(msg.Width-2, 0)
		m.filter.Width = max(msg.Width-4, 10)
		if m.confirm != nil {
			m.confirm = m.confirm.WithWidth(min(msg.Width, confirmWidth))
		}
		m.refresh()

	case frameMsg:
		if m.store.Shutdown.IsSet() {
			m.quitting = true
			return m, tea.Quit
		}
		m.store.View.AdvanceLoading()
		m.refresh()
		return m, frameCmd()

	case countdownMsg:
		if _, expired := m.store.Errors.TickCountdown(); expired {
			m.log.Info("fatal error countdown expired, exiting")
			m.store.Shutdown.Signal()
			m.quitting = true
			return m, tea.Quit
		}
		m.refresh()
		return m, countdownCmd()

	case execMsg:
		m.store.View.SetStatus(state.StatusExec, true)
		return m, tea.Exec(msg.session, func(err error) tea.Msg {
			return execDoneMsg{err: err}
		})

	case execDoneMsg:
		m.store.View.SetStatus(state.StatusExec, false)
		if msg.err != nil {
			m.log.Warn("exec session ended with error: %v", msg.err)
			m.store.Errors.Set(state.AppError{Kind: state.ErrTerminal, Err: msg.err})
		}
		m.refresh()
		cmds := []tea.Cmd{m.waitExec()}
		if m.snap.View.Mouse {
			cmds = append(cmds, tea.EnableMouseCellMotion)
		}
		return m, tea.Batch(cmds...)

	default:
		if m.confirm != nil {
			return m.updateConfirm(msg)
		}
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderDashboard()
}

func frameCmd() tea.Cmd {
	return tea.Tick(FrameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func countdownCmd() tea.Cmd {
	return tea.Tick(CountdownInterval, func(t time.Time) tea.Msg {
		return countdownMsg(t)
	})
}

// waitExec blocks on the next session from the sync loop.
func (m Model) waitExec() tea.Cmd {
	if m.execs == nil {
		return nil
	}
	ch := m.execs
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return execMsg{session: s}
	}
}

// refresh takes a new snapshot and writes the scroll bounds for the
// current geometry back to the view state. The bounds can shrink the
// stored offsets, so the snapshot is retaken when they change.
func (m *Model) refresh() {
	m.snap = m.store.Snapshot()
	if m.writeScrollBounds() {
		m.snap = m.store.Snapshot()
	}
}

// writeScrollBounds reports whether any bound changed.
func (m *Model) writeScrollBounds() bool {
	if m.width == 0 || m.height == 0 {
		return false
	}
	changed := false
	set := func(target state.ScrollTarget, bound state.Offset) {
		if m.snap.View.Maxes[target] != bound {
			m.store.View.SetOffsetMax(target, bound)
			changed = true
		}
	}
	set(state.ScrollLogs, m.logsBound())
	set(state.ScrollInspect, m.inspectBound())
	return changed
}

// Selected returns the id of the selected container, if any.
func (m Model) Selected() (state.ContainerID, bool) {
	if m.snap.Selected == nil {
		return "", false
	}
	return m.snap.Selected.ID, true
}

// Quitting reports whether the model has asked bubbletea to exit.
func (m Model) Quitting() bool {
	return m.quitting
}
