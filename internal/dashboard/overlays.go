package dashboard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/dockmon/internal/config"
	"github.com/rileyhilliard/dockmon/internal/state"
)

// Overlay styles
var (
	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(1, 2)

	helpTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			MarginBottom(1)

	errorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorCritical).
			Padding(1, 2)

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(ColorCritical).
			Bold(true)

	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorWarning).
			Padding(1, 2)
)

// errorBoxWidth is the text width of the error popup.
const errorBoxWidth = 56

// place centres an overlay box on the screen.
func (m Model) place(box string) string {
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(ColorDarkBg),
	)
}

// firstKey returns the first key bound to an action, for hints.
func (m Model) firstKey(a config.Action) string {
	keys := m.keys.Binding(a).Keys()
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

// renderHelpOverlay renders a centered help box with every binding.
func (m Model) renderHelpOverlay() string {
	h := m.help
	h.ShowAll = true

	lines := []string{
		helpTitleStyle.Render("Keyboard Shortcuts"),
		h.FullHelpView(m.keys.FullHelp()),
		"",
		LabelStyle.Render(fmt.Sprintf("Press %s to close", m.firstKey(config.ActionHelp))),
	}
	return m.place(helpBoxStyle.Render(strings.Join(lines, "\n")))
}

// renderErrorPopup shows the held error. A fatal error counts down to exit;
// a recoverable one tells the user how to dismiss it.
func (m Model) renderErrorPopup(e state.AppError) string {
	width := min(errorBoxWidth, max(m.width-8, 20))
	text := lipgloss.NewStyle().Width(width)

	lines := []string{
		errorTitleStyle.Render(e.Kind.String()),
		"",
	}
	if e.Container != "" {
		lines = append(lines, LabelStyle.Render("container: ")+ValueStyle.Render(string(e.Container)))
	}
	if e.Kind == state.ErrDockerCommand {
		lines = append(lines, LabelStyle.Render("command: ")+ValueStyle.Render(e.Command.String()))
	}
	if e.Err != nil {
		lines = append(lines, text.Render(e.Err.Error()))
	}
	lines = append(lines, "")

	if e.Kind.Fatal() {
		secs := m.snap.Countdown
		lines = append(lines, MutedStyle.Render(fmt.Sprintf("closing in %02d seconds", secs)))
	} else {
		lines = append(lines, MutedStyle.Render(fmt.Sprintf("(%s) clear error", m.firstKey(config.ActionClear))))
	}

	return m.place(errorBoxStyle.Render(strings.Join(lines, "\n")))
}

// renderInspect draws the inspect payload full screen at the stored offset.
func (m Model) renderInspect() string {
	in := m.snap.Inspect
	w, h := m.inspectViewport()
	offset := m.snap.View.Offset(state.ScrollInspect)
	lines := strings.Split(in.JSON, "\n")

	out := []string{SectionHeader("inspect - "+string(in.Name), in.ID.Short(), m.width, true)}
	for i := 0; i < h; i++ {
		idx := offset.Y + i
		if idx >= len(lines) {
			out = append(out, SectionContentLine("", m.width, true))
			continue
		}
		out = append(out, SectionContentLine(window(lines[idx], offset.X, w), m.width, true))
	}
	out = append(out, SectionFooter(m.width, true))
	out = append(out, FooterStyle.Render(fmt.Sprintf("%s/%s close | ↑↓←→ scroll | line %d of %d",
		m.firstKey(config.ActionInspect), m.firstKey(config.ActionClear), offset.Y+1, len(lines))))
	return strings.Join(out, "\n")
}

// openConfirm shows the delete confirmation for the container.
func (m *Model) openConfirm(id state.ContainerID, name state.ContainerName) tea.Cmd {
	m.confirmed = new(bool)
	m.confirm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s?", name)).
				Description("The container is force removed. This cannot be undone.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(m.confirmed),
		),
	).WithShowHelp(false).WithWidth(min(max(m.width-8, 20), confirmWidth))

	m.store.View.ConfirmDelete(id)
	return m.confirm.Init()
}

// updateConfirm routes messages to the confirmation form until it is
// submitted or aborted.
func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		return m.resolveConfirm(false), nil
	}

	model, cmd := m.confirm.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		m.confirm = f
	}

	switch m.confirm.State {
	case huh.StateCompleted:
		return m.resolveConfirm(*m.confirmed), nil
	case huh.StateAborted:
		return m.resolveConfirm(false), nil
	}
	return m, cmd
}

// resolveConfirm closes the form and queues the removal when accepted.
func (m Model) resolveConfirm(accepted bool) Model {
	id, ok := m.store.View.ResolveDelete()
	m.confirm = nil
	m.confirmed = nil
	if accepted && ok {
		m.send(state.CmdRemove, id)
	}
	m.refresh()
	return m
}

func (m Model) renderConfirm() string {
	return m.place(confirmBoxStyle.Render(m.confirm.View()))
}
