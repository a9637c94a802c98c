package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rileyhilliard/dockmon/internal/state"
)

// Dashboard palette.
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F")
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent    = lipgloss.Color("#FF2E97")
	ColorAccentDim = lipgloss.Color("#BF40FF")

	ColorGraph   = lipgloss.Color("#00FFFF")
	ColorGraphTX = lipgloss.Color("#BF40FF")
)

// Thresholds for metric severity levels
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	PanelTitleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	ColumnHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorTextSecondary).
				Bold(true)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(ColorTextPrimary).
				Background(ColorBorder).
				Bold(true)

	StderrStyle = lipgloss.NewStyle().
			Foreground(ColorCritical)

	TimestampStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)
)

// StateColor returns the colour a container state is drawn in.
func StateColor(s state.State) lipgloss.Color {
	switch s {
	case state.StateRunning:
		return ColorHealthy
	case state.StatePaused, state.StateRestarting, state.StateRemoving:
		return ColorWarning
	case state.StateExited, state.StateDead:
		return ColorCritical
	default:
		return ColorTextMuted
	}
}

// StateStyle returns a style with the state's colour.
func StateStyle(s state.State) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(StateColor(s))
}

// MetricColor returns the appropriate color for a percentage-based metric.
// Uses threshold-based coloring: green < 70%, yellow 70-90%, red > 90%.
func MetricColor(percent float64) lipgloss.Color {
	switch {
	case percent >= CriticalThreshold:
		return ColorCritical
	case percent >= WarningThreshold:
		return ColorWarning
	default:
		return ColorHealthy
	}
}

// MetricStyle returns a style with the appropriate foreground color for the metric.
func MetricStyle(percent float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(MetricColor(percent))
}

func edgeStyle(focused bool) lipgloss.Style {
	if focused {
		return lipgloss.NewStyle().Foreground(ColorAccent)
	}
	return lipgloss.NewStyle().Foreground(ColorBorder)
}

// SectionHeader renders a panel top border with the title embedded.
// Format: ╭─ Title ─────────────────────── Value ╮
func SectionHeader(title, value string, width int, focused bool) string {
	if width < 10 {
		width = 10
	}

	rightWidth := 2
	if value != "" {
		rightWidth += 1 + lipgloss.Width(value)
	}
	if room := width - rightWidth - 5; lipgloss.Width(title) > room {
		title = ansi.Truncate(title, max(room, 1), "…")
	}
	leftWidth := 3 + lipgloss.Width(title) + 1

	fillWidth := width - leftWidth - rightWidth
	if fillWidth < 1 {
		fillWidth = 1
	}

	borderStyle := edgeStyle(focused)
	valueStyle := lipgloss.NewStyle().Foreground(ColorGraph).Bold(true)

	out := borderStyle.Render("╭─ ") +
		PanelTitleStyle.Render(title) +
		borderStyle.Render(" "+strings.Repeat("─", fillWidth))
	if value != "" {
		out += " " + valueStyle.Render(value)
	}
	return out + borderStyle.Render(" ╮")
}

// SectionFooter renders the bottom border of a section.
func SectionFooter(width int, focused bool) string {
	if width < 2 {
		width = 2
	}
	return edgeStyle(focused).Render("╰" + strings.Repeat("─", width-2) + "╯")
}

// SectionContentLine renders a content line with left and right borders,
// padded or cut to width.
func SectionContentLine(content string, width int, focused bool) string {
	if width < 4 {
		width = 4
	}
	borderStyle := edgeStyle(focused)

	inner := width - 4
	content = fit(content, inner)
	return borderStyle.Render("│") + " " + content + " " + borderStyle.Render("│")
}
