package dashboard

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/rileyhilliard/dockmon/internal/state"
)

// LayoutMode represents the responsive layout breakpoint.
type LayoutMode int

const (
	LayoutMinimal LayoutMode = iota
	LayoutCompact
	LayoutStandard
	LayoutWide
)

// Width breakpoints for the layout modes.
const (
	BreakpointCompact  = 80
	BreakpointStandard = 120
	BreakpointWide     = 160
)

// Height breakpoints.
const (
	HeightMinimal = 12
	HeightCharts  = 30
)

// Fixed parts of the layout, in rows or columns.
const (
	headerHeight   = 1
	footerHeight   = 1
	chartsHeight   = 4
	commandsWidth  = 18
	minTableHeight = 3
	confirmWidth   = 50
)

// LayoutMode returns the current layout mode based on terminal width.
func (m Model) LayoutMode() LayoutMode {
	switch {
	case m.width >= BreakpointWide:
		return LayoutWide
	case m.width >= BreakpointStandard:
		return LayoutStandard
	case m.width >= BreakpointCompact:
		return LayoutCompact
	default:
		return LayoutMinimal
	}
}

// ShowFooter returns true if the terminal is tall enough to show the footer.
func (m Model) ShowFooter() bool {
	return m.height >= HeightMinimal
}

// ShowCharts returns true if there is room for the chart row.
func (m Model) ShowCharts() bool {
	return m.height >= HeightCharts
}

// showFilterLine is true while editing or when a filter is applied.
func (m Model) showFilterLine() bool {
	return m.snap.View.Has(state.StatusFilter) || m.snap.View.Filter != ""
}

// logsHeight is the logs panel height including its borders, shrunk when
// the terminal cannot fit it alongside a minimal table.
func (m Model) logsHeight() int {
	h := m.snap.View.LogHeight + 2
	room := m.height - headerHeight - (minTableHeight + 3)
	if m.ShowFooter() {
		room -= footerHeight
	}
	if m.ShowCharts() {
		room -= chartsHeight
	}
	if m.showFilterLine() {
		room--
	}
	if h > room {
		h = room
	}
	return max(h, 2)
}

// topHeight is the height of the containers and commands row including
// borders.
func (m Model) topHeight() int {
	h := m.height - headerHeight - m.logsHeight()
	if m.ShowFooter() {
		h -= footerHeight
	}
	if m.ShowCharts() {
		h -= chartsHeight
	}
	if m.showFilterLine() {
		h--
	}
	return max(h, minTableHeight+3)
}

// innerWidth is the content width of a full-width panel.
func (m Model) innerWidth() int {
	return max(m.width-4, 1)
}

// logsBound computes the scroll range of the logs panel.
func (m Model) logsBound() state.Offset {
	c := m.snap.Selected
	if c == nil {
		return state.Offset{}
	}
	lines := c.Logs.Lines()
	widest := 0
	for _, l := range lines {
		widest = max(widest, ansi.StringWidth(m.formatLogLine(l)))
	}
	return state.Offset{
		X: state.ScrollMax(widest, m.innerWidth()),
		Y: state.ScrollMax(len(lines), max(m.logsHeight()-2, 0)),
	}
}

// inspectViewport is the content area of the inspect viewer.
func (m Model) inspectViewport() (width, height int) {
	return m.innerWidth(), max(m.height-3, 1)
}

// inspectBound computes the scroll range of the inspect viewer.
func (m Model) inspectBound() state.Offset {
	if m.snap.Inspect == nil {
		return state.Offset{}
	}
	lines := strings.Split(m.snap.Inspect.JSON, "\n")
	widest := 0
	for _, l := range lines {
		widest = max(widest, ansi.StringWidth(l))
	}
	w, h := m.inspectViewport()
	return state.Offset{
		X: state.ScrollMax(widest, w),
		Y: state.ScrollMax(len(lines), h),
	}
}
