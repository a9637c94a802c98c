package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rileyhilliard/dockmon/internal/state"
)

// logTimeFormat is the prefix used when timestamps are enabled.
const logTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// renderDashboard renders the complete dashboard view, with at most one
// overlay on top.
func (m Model) renderDashboard() string {
	if m.width == 0 || m.height == 0 {
		return "Starting..."
	}

	switch {
	case m.snap.Error != nil:
		return m.renderErrorPopup(*m.snap.Error)
	case m.confirm != nil:
		return m.renderConfirm()
	case m.snap.View.Has(state.StatusHelp):
		return m.renderHelpOverlay()
	case m.snap.View.Has(state.StatusInspect) && m.snap.Inspect != nil:
		return m.renderInspect()
	}

	sections := []string{
		m.renderHeader(),
		m.renderTop(),
		m.renderLogs(),
	}
	if m.ShowCharts() {
		sections = append(sections, m.renderCharts())
	}
	if m.showFilterLine() {
		sections = append(sections, m.renderFilterLine())
	}
	if m.ShowFooter() {
		sections = append(sections, m.renderFooter())
	}
	return strings.Join(sections, "\n")
}

// renderHeader renders the title bar with the container count, active sort
// and loading spinner.
func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("dockmon")

	var parts []string
	if m.opts.Host != "" {
		parts = append(parts, m.opts.Host)
	}
	if !m.snap.Initialised() {
		parts = append(parts, "connecting...")
	} else if len(m.snap.Rows) != m.snap.Total {
		parts = append(parts, fmt.Sprintf("%d of %d containers", len(m.snap.Rows), m.snap.Total))
	} else {
		parts = append(parts, fmt.Sprintf("%d containers", m.snap.Total))
	}
	if sort := m.snap.Sort.String(); sort != "" {
		parts = append(parts, "sort "+sort)
	}

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(" | " + strings.Join(parts, " | "))

	spinner := lipgloss.NewStyle().Foreground(ColorWarning).Render(m.snap.View.LoadingIcon)

	line := title + stats
	pad := m.width - 2 - lipgloss.Width(line) - lipgloss.Width(spinner)
	if pad < 1 {
		pad = 1
	}
	return HeaderStyle.Width(m.width).Render(line + strings.Repeat(" ", pad) + spinner)
}

// column is one column of the containers table.
type column struct {
	title string
	width int
	right bool
	sort  state.SortKey
	value func(r state.Row) string
}

// minNameWidth is the narrowest the name column gets before optional
// columns are dropped.
const minNameWidth = 16

// columns returns the table columns that fit in width, in display order.
// Optional columns are added by priority while the name column keeps at
// least minNameWidth; the name column then takes whatever is left.
func (m Model) columns(width int) []column {
	memWidth := 21
	memory := func(r state.Row) string {
		if !r.HasStats {
			return "-"
		}
		return formatMemory(r.MemoryUsage, r.MemoryLimit)
	}
	if m.LayoutMode() == LayoutMinimal {
		memWidth = 10
		memory = func(r state.Row) string {
			if !r.HasStats {
				return "-"
			}
			return formatBytes(r.MemoryUsage)
		}
	}

	all := []column{
		{title: "name", sort: state.SortName, value: func(r state.Row) string { return string(r.Name) }},
		{title: "state", width: 10, sort: state.SortState, value: func(r state.Row) string { return r.State.String() }},
		{title: "status", width: 22, sort: state.SortStatus, value: func(r state.Row) string { return r.Status }},
		{title: "cpu", width: 8, right: true, sort: state.SortCPU, value: func(r state.Row) string {
			if !r.HasStats {
				return "-"
			}
			return formatPercent(r.CPU)
		}},
		{title: "memory", width: memWidth, right: true, sort: state.SortMemory, value: memory},
		{title: "id", width: state.ShortIDLen, sort: state.SortID, value: func(r state.Row) string { return r.ID.Short() }},
		{title: "image", width: 24, sort: state.SortImage, value: func(r state.Row) string { return string(r.Image) }},
		{title: "↓ rx", width: 11, right: true, sort: state.SortRX, value: func(r state.Row) string { return formatDelta(r.RX) }},
		{title: "↑ tx", width: 11, right: true, sort: state.SortTX, value: func(r state.Row) string { return formatDelta(r.TX) }},
	}

	// Indexes into all, most important first. The first entries are always kept.
	priority := []int{0, 1, 3, 4, 7, 8, 2, 5, 6}
	const required = 4

	keep := make([]bool, len(all))
	used := 0
	for i, idx := range priority {
		w := all[idx].width + 1
		if idx == 0 {
			w = minNameWidth
		}
		if i >= required && used+w > width {
			continue
		}
		keep[idx] = true
		used += w
	}

	var cols []column
	rest := 0
	for i, c := range all {
		if !keep[i] {
			continue
		}
		cols = append(cols, c)
		if i > 0 {
			rest += c.width + 1
		}
	}
	cols[0].width = max(width-rest, 8)
	return cols
}

// renderTop renders the containers table and the commands panel side by
// side.
func (m Model) renderTop() string {
	height := m.topHeight()
	table := m.renderContainers(m.width-commandsWidth, height)
	commands := m.renderCommands(commandsWidth, height)
	return lipgloss.JoinHorizontal(lipgloss.Top, table, commands)
}

func (m Model) renderContainers(width, height int) string {
	focused := m.snap.View.Panel == state.PanelContainers
	inner := max(width-4, 1)
	cols := m.columns(inner)
	rowsHeight := max(height-3, 1)

	lines := []string{SectionHeader("containers", "", width, focused)}

	var header []string
	for _, c := range cols {
		title := c.title
		if sort := m.snap.Sort; !sort.IsNone() && sort.Key == c.sort {
			if sort.Direction == state.Descending {
				title += " ▼"
			} else {
				title += " ▲"
			}
		}
		header = append(header, cell(title, c))
	}
	lines = append(lines, SectionContentLine(ColumnHeaderStyle.Render(strings.Join(header, " ")), width, focused))

	rows := m.snap.Rows
	selected := m.snap.SelectedIndex()
	start := 0
	if selected >= rowsHeight {
		start = selected - rowsHeight + 1
	}

	for i := 0; i < rowsHeight; i++ {
		idx := start + i
		if idx >= len(rows) {
			if idx == 0 && m.snap.Initialised() {
				lines = append(lines, SectionContentLine(MutedStyle.Render("no containers"), width, focused))
			} else {
				lines = append(lines, SectionContentLine("", width, focused))
			}
			continue
		}
		lines = append(lines, SectionContentLine(m.renderRow(rows[idx], cols, idx == selected, inner), width, focused))
	}

	lines = append(lines, SectionFooter(width, focused))
	return strings.Join(lines, "\n")
}

func cell(s string, c column) string {
	if c.right {
		return fitRight(s, c.width)
	}
	return fit(s, c.width)
}

func (m Model) renderRow(r state.Row, cols []column, selected bool, width int) string {
	cells := make([]string, len(cols))
	for i, c := range cols {
		cells[i] = cell(c.value(r), c)
	}
	if selected {
		return SelectedRowStyle.Render(fit(strings.Join(cells, " "), width))
	}
	for i, c := range cols {
		switch c.sort {
		case state.SortState:
			cells[i] = StateStyle(r.State).Render(cells[i])
		case state.SortCPU:
			if r.HasStats {
				cells[i] = MetricStyle(r.CPU).Render(cells[i])
			}
		}
	}
	return strings.Join(cells, " ")
}

func (m Model) renderCommands(width, height int) string {
	focused := m.snap.View.Panel == state.PanelCommands
	loading := ""
	if m.snap.View.Loading {
		loading = m.snap.View.LoadingIcon
	}
	lines := []string{SectionHeader("commands", loading, width, focused)}

	controls := m.snap.Controls()
	cursor := m.snap.View.CommandCursor
	for i := 0; i < height-2; i++ {
		if i >= len(controls) {
			lines = append(lines, SectionContentLine("", width, focused))
			continue
		}
		label := controls[i].String()
		switch {
		case i == cursor && focused:
			label = SelectedRowStyle.Render("▶ " + label)
		case i == cursor:
			label = ValueStyle.Render("▶ " + label)
		default:
			label = LabelStyle.Render("  " + label)
		}
		lines = append(lines, SectionContentLine(label, width, focused))
	}

	lines = append(lines, SectionFooter(width, focused))
	return strings.Join(lines, "\n")
}

// formatLogLine renders one log line as text, before scrolling.
func (m Model) formatLogLine(l state.LogLine) string {
	text := l.Text
	if !m.opts.ColorLogs {
		text = ansi.Strip(text)
	}
	if m.opts.Timestamps && !l.Time.IsZero() {
		text = l.Time.Format(logTimeFormat) + " " + text
	}
	return text
}

// renderLogs renders the log panel. The window ends at the log cursor, so a
// following buffer always shows its newest lines.
func (m Model) renderLogs() string {
	focused := m.snap.View.Panel == state.PanelLogs
	height := m.logsHeight()
	visible := max(height-2, 0)
	inner := m.innerWidth()

	c := m.snap.Selected
	title := "logs"
	value := ""
	var lines []state.LogLine
	cursor := -1
	if c != nil {
		title = "logs - " + string(c.Name)
		lines = c.Logs.Lines()
		cursor = c.Logs.Cursor()
		if len(lines) > 0 {
			value = fmt.Sprintf("%d/%d", cursor+1, len(lines))
		}
	}

	out := []string{SectionHeader(title, value, m.width, focused)}

	end := cursor + 1
	start := max(end-visible, 0)
	x := m.snap.View.Offset(state.ScrollLogs).X

	for i := 0; i < visible; i++ {
		idx := start + i
		if idx >= end || idx >= len(lines) {
			out = append(out, SectionContentLine("", m.width, focused))
			continue
		}
		l := lines[idx]
		text := window(m.formatLogLine(l), x, inner)
		switch {
		case idx == cursor && focused:
			text = SelectedRowStyle.Render(fit(ansi.Strip(text), inner))
		case l.Stderr && !m.opts.ColorLogs:
			text = StderrStyle.Render(text)
		}
		out = append(out, SectionContentLine(text, m.width, focused))
	}

	out = append(out, SectionFooter(m.width, false))
	return strings.Join(out, "\n")
}

// renderCharts renders CPU and memory on the left, network on the right.
func (m Model) renderCharts() string {
	left := m.width / 2
	right := m.width - left

	c := m.snap.Selected
	if c == nil || !c.HasStats {
		empty := MutedStyle.Render("no stats")
		return lipgloss.JoinHorizontal(lipgloss.Top,
			chartBox("resources", []string{empty, ""}, left),
			chartBox("network", []string{empty, ""}, right))
	}

	sparkWidth := func(box int) int { return max(box-4-30, 4) }

	cpu := c.CPUHistory.Values()
	mem := c.MemHistory.Values()
	resources := []string{
		metricLine("cpu", formatPercent(c.CPUHistory.Current()), formatPercent(c.CPUHistory.Max()),
			ColoredSparkline(cpu, sparkWidth(left))),
		metricLine("mem", formatBytes(uint64(c.MemHistory.Current())), formatBytes(uint64(c.MemHistory.Max())),
			lipgloss.NewStyle().Foreground(ColorGraph).Render(ScaledSparkline(mem, sparkWidth(left)))),
	}

	network := []string{
		metricLine("rx", formatDelta(c.RX.Current()), formatDelta(c.RX.Max()),
			lipgloss.NewStyle().Foreground(ColorGraph).Render(ScaledSparkline(rates(c.RX.Rates()), sparkWidth(right)))),
		metricLine("tx", formatDelta(c.TX.Current()), formatDelta(c.TX.Max()),
			lipgloss.NewStyle().Foreground(ColorGraphTX).Render(ScaledSparkline(rates(c.TX.Rates()), sparkWidth(right)))),
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		chartBox("resources", resources, left),
		chartBox("network", network, right))
}

func metricLine(label, current, peak, spark string) string {
	return LabelStyle.Render(fit(label, 4)) +
		ValueStyle.Render(fitRight(current, 11)) +
		MutedStyle.Render(fitRight("max "+peak, 15)) + " " + spark
}

func chartBox(title string, lines []string, width int) string {
	out := []string{SectionHeader(title, "", width, false)}
	for _, l := range lines {
		out = append(out, SectionContentLine(l, width, false))
	}
	out = append(out, SectionFooter(width, false))
	return strings.Join(out, "\n")
}

func (m Model) renderFilterLine() string {
	if m.snap.View.Has(state.StatusFilter) {
		return " " + m.filter.View()
	}
	return " " + FilterPromptStyle.Render("/ ") + ValueStyle.Render(m.snap.View.Filter) +
		MutedStyle.Render("  (esc clears)")
}

// renderFooter renders the short help line.
func (m Model) renderFooter() string {
	return FooterStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}
