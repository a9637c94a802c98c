package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/dockmon/internal/config"
	"github.com/rileyhilliard/dockmon/internal/state"
)

// sortKeys maps the sort actions to their column.
var sortKeys = map[config.Action]state.SortKey{
	config.ActionSortName:   state.SortName,
	config.ActionSortState:  state.SortState,
	config.ActionSortStatus: state.SortStatus,
	config.ActionSortCPU:    state.SortCPU,
	config.ActionSortMemory: state.SortMemory,
	config.ActionSortID:     state.SortID,
	config.ActionSortImage:  state.SortImage,
	config.ActionSortRX:     state.SortRX,
	config.ActionSortTX:     state.SortTX,
	config.ActionSortReset:  state.SortNone,
}

// HandleKeyMsg processes keyboard input. Returns true if the key was
// handled, false otherwise.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) (bool, tea.Cmd) {
	view := m.snap.View

	// The shell owns the terminal until it exits.
	if view.Has(state.StatusExec) {
		return false, nil
	}

	if view.Has(state.StatusFilter) {
		return m.handleFilterKey(msg)
	}

	action, ok := m.keys.Lookup(msg.String())
	if !ok {
		return false, nil
	}

	if action == config.ActionQuit {
		return true, m.quit()
	}

	// A fatal error leaves nothing to do but wait or quit.
	if m.snap.Error != nil && m.snap.Error.Kind.Fatal() {
		return false, nil
	}

	if action == config.ActionClear {
		return m.clear(), nil
	}

	if action == config.ActionHelp {
		m.store.View.SetStatus(state.StatusHelp, !view.Has(state.StatusHelp))
		return true, nil
	}
	if view.Has(state.StatusHelp) {
		return false, nil
	}

	if view.Has(state.StatusInspect) {
		return m.handleInspectKey(action), nil
	}

	return m.handleAction(action)
}

func (m *Model) handleAction(action config.Action) (bool, tea.Cmd) {
	panel := m.snap.View.Panel

	if key, ok := sortKeys[action]; ok {
		m.store.SelectSort(key)
		return true, nil
	}

	switch action {
	case config.ActionNextPanel:
		m.store.View.NextPanel()
	case config.ActionPrevPanel:
		m.store.View.PrevPanel()

	case config.ActionUp:
		m.move(panel, -1)
	case config.ActionDown:
		m.move(panel, 1)

	case config.ActionFirst:
		switch panel {
		case state.PanelContainers:
			m.store.Registry.SelectFirst()
			m.store.View.ResetCommandCursor()
		case state.PanelCommands:
			m.store.View.ResetCommandCursor()
		case state.PanelLogs:
			m.store.Registry.LogFirst()
		}

	case config.ActionLast:
		switch panel {
		case state.PanelContainers:
			m.store.Registry.SelectLast()
			m.store.View.ResetCommandCursor()
		case state.PanelCommands:
			n := len(m.snap.Controls())
			m.store.View.MoveCommandCursor(n, n)
		case state.PanelLogs:
			m.store.Registry.LogLast()
		}

	case config.ActionRunCommand:
		return true, m.runCommand(panel)

	case config.ActionExec:
		if id, ok := m.Selected(); ok && m.snap.Selected.State == state.StateRunning {
			m.send(state.CmdExec, id)
		}
	case config.ActionSaveLogs:
		if id, ok := m.Selected(); ok {
			m.send(state.CmdSaveLogs, id)
		}
	case config.ActionInspect:
		if id, ok := m.Selected(); ok {
			m.send(state.CmdInspect, id)
		}

	case config.ActionFilter:
		m.store.View.SetStatus(state.StatusFilter, true)
		m.filter.SetValue(m.snap.View.Filter)
		m.filter.CursorEnd()
		return true, m.filter.Focus()

	case config.ActionLogHeightDec:
		m.store.View.ResizeLogs(-1)
	case config.ActionLogHeightInc:
		m.store.View.ResizeLogs(1)

	case config.ActionScrollLeft:
		m.store.View.ScrollBy(state.ScrollLogs, state.ScrollLeft)
	case config.ActionScrollRight:
		m.store.View.ScrollBy(state.ScrollLogs, state.ScrollRight)

	case config.ActionToggleMouse:
		if m.store.View.ToggleMouse() {
			return true, tea.EnableMouseCellMotion
		}
		return true, tea.DisableMouse

	default:
		return false, nil
	}
	return true, nil
}

// move steps the cursor of the focused panel.
func (m *Model) move(panel state.Panel, delta int) {
	switch panel {
	case state.PanelContainers:
		if delta < 0 {
			m.store.Registry.SelectPrev()
		} else {
			m.store.Registry.SelectNext()
		}
		m.store.View.ResetCommandCursor()
	case state.PanelCommands:
		m.store.View.MoveCommandCursor(delta, len(m.snap.Controls()))
	case state.PanelLogs:
		step := m.scrollStep()
		if delta < 0 {
			m.store.Registry.LogUp(step)
		} else {
			m.store.Registry.LogDown(step)
		}
	}
}

// runCommand acts on enter. On the containers panel it moves focus to the
// commands; on the commands panel it queues the highlighted command, going
// through the confirmation first for delete.
func (m *Model) runCommand(panel state.Panel) tea.Cmd {
	switch panel {
	case state.PanelContainers:
		if m.snap.Selected != nil {
			m.store.View.SelectPanel(state.PanelCommands)
		}
		return nil
	case state.PanelCommands:
		controls := m.snap.Controls()
		cursor := m.snap.View.CommandCursor
		if cursor < 0 || cursor >= len(controls) {
			return nil
		}
		kind := controls[cursor]
		if kind == state.CmdRemove {
			return m.openConfirm(m.snap.Selected.ID, m.snap.Selected.Name)
		}
		m.send(kind, m.snap.Selected.ID)
	}
	return nil
}

// clear closes the topmost thing: the error popup, then help, then the
// inspect viewer, then an applied filter.
func (m *Model) clear() bool {
	view := m.snap.View
	switch {
	case m.snap.Error != nil:
		return m.store.Errors.Clear()
	case view.Has(state.StatusHelp):
		m.store.View.SetStatus(state.StatusHelp, false)
	case view.Has(state.StatusInspect):
		m.closeInspect()
	case view.Filter != "":
		m.store.SetFilter("")
	default:
		return false
	}
	return true
}

func (m *Model) handleInspectKey(action config.Action) bool {
	v := m.store.View
	switch action {
	case config.ActionInspect:
		m.closeInspect()
	case config.ActionUp:
		v.ScrollBy(state.ScrollInspect, state.ScrollUp)
	case config.ActionDown:
		v.ScrollBy(state.ScrollInspect, state.ScrollDown)
	case config.ActionScrollLeft:
		v.ScrollBy(state.ScrollInspect, state.ScrollLeft)
	case config.ActionScrollRight:
		v.ScrollBy(state.ScrollInspect, state.ScrollRight)
	case config.ActionFirst:
		v.ScrollStart(state.ScrollInspect)
	case config.ActionLast:
		v.ScrollEnd(state.ScrollInspect)
	default:
		return false
	}
	return true
}

func (m *Model) closeInspect() {
	m.store.View.SetStatus(state.StatusInspect, false)
	m.store.View.ScrollStart(state.ScrollInspect)
	m.store.Registry.ClearInspect()
}

// handleFilterKey edits the filter line. Enter keeps the filter, esc drops
// it; every edit is applied to the registry straight away.
func (m *Model) handleFilterKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filter.Blur()
		m.store.View.SetStatus(state.StatusFilter, false)
		return true, nil
	case tea.KeyCtrlC:
		return true, m.quit()
	case tea.KeyEsc:
		m.filter.Blur()
		m.filter.SetValue("")
		m.store.SetFilter("")
		m.store.View.SetStatus(state.StatusFilter, false)
		return true, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.store.SetFilter(m.filter.Value())
	return true, cmd
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if !m.snap.View.Mouse || msg.Action != tea.MouseActionPress {
		return
	}
	inspect := m.snap.View.Has(state.StatusInspect)
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if inspect {
			m.store.View.ScrollBy(state.ScrollInspect, state.ScrollUp)
		} else {
			m.store.Registry.LogUp(m.scrollStep())
		}
	case tea.MouseButtonWheelDown:
		if inspect {
			m.store.View.ScrollBy(state.ScrollInspect, state.ScrollDown)
		} else {
			m.store.Registry.LogDown(m.scrollStep())
		}
	}
}

// send queues a command for the sync loop. It blocks only while the
// channel is full.
func (m *Model) send(kind state.CommandKind, id state.ContainerID) {
	if !m.store.Commands.Send(state.NewCommand(kind, id)) {
		m.log.Debug("command %s dropped, shutting down", kind)
	}
}

func (m *Model) quit() tea.Cmd {
	m.store.Shutdown.Signal()
	m.quitting = true
	return tea.Quit
}

func (m Model) scrollStep() int {
	if m.opts.ScrollStep > 0 {
		return m.opts.ScrollStep
	}
	return 1
}
