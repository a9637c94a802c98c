package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/docker/go-units"
)

// formatBytes renders a byte count in binary units, e.g. 12.5MiB.
func formatBytes(b uint64) string {
	return units.BytesSize(float64(b))
}

// formatDelta renders the bytes moved since the previous refresh. Refreshes
// are not evenly spaced (commands trigger extra ones), so this is not a rate.
func formatDelta(b uint64) string {
	return units.BytesSize(float64(b))
}

// formatMemory renders usage against the limit when one is known.
func formatMemory(usage, limit uint64) string {
	if limit == 0 {
		return formatBytes(usage)
	}
	return fmt.Sprintf("%s / %s", formatBytes(usage), formatBytes(limit))
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// fit truncates s to width cells with an ellipsis, then pads it with
// spaces. ANSI sequences are preserved and not counted.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) > width {
		s = ansi.Truncate(s, width, "…")
	}
	if pad := width - ansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// fitRight is fit with the padding on the left, for numeric columns.
func fitRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) > width {
		s = ansi.Truncate(s, width, "…")
	}
	if pad := width - ansi.StringWidth(s); pad > 0 {
		s = strings.Repeat(" ", pad) + s
	}
	return s
}

// window cuts the visible columns [x, x+width) out of a line.
func window(s string, x, width int) string {
	if x <= 0 {
		return s
	}
	return ansi.Cut(s, x, x+width)
}
