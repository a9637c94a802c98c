package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparklineBlocks are block characters for 8-level vertical resolution (lowest to highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// findMinMax returns the minimum and maximum values in a slice.
// For percentage data (all values 0-100), returns fixed range 0-100.
func findMinMax(data []float64) (minVal, maxVal float64, isPercentage bool) {
	if len(data) == 0 {
		return 0, 100, true
	}

	minVal, maxVal = data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	isPercentage = maxVal <= 100 && minVal >= 0
	if isPercentage {
		return 0, 100, true
	}
	return minVal, maxVal, false
}

// normalizeValue converts a value to 0-1 range given min/max bounds.
func normalizeValue(val, minVal, maxVal float64) float64 {
	if maxVal > minVal {
		return (val - minVal) / (maxVal - minVal)
	}
	return 0.5
}

func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// Sparkline renders data as one row of block characters, oldest on the
// left. Shorter series are right-aligned so the newest sample always sits
// at the right edge.
func Sparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return strings.Repeat(" ", max(width, 0))
	}

	minVal, maxVal, _ := findMinMax(data)
	points := data
	if len(points) > width {
		points = resampleData(points, width)
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", width-len(points)))
	for _, val := range points {
		normalized := normalizeValue(val, minVal, maxVal)
		idx := clampInt(int(normalized*float64(len(sparklineBlocks)-1)), len(sparklineBlocks)-1)
		b.WriteRune(sparklineBlocks[idx])
	}
	return b.String()
}

// ScaledSparkline renders non-negative data against a zero floor so a flat
// non-zero series does not look empty.
func ScaledSparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return strings.Repeat(" ", max(width, 0))
	}
	var peak float64
	for _, v := range data {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		return Sparkline(make([]float64, min(len(data), width)), width)
	}
	scaled := make([]float64, len(data))
	for i, v := range data {
		scaled[i] = v / peak * 100
	}
	return Sparkline(scaled, width)
}

// ColoredSparkline renders a percentage sparkline coloured by its newest value.
func ColoredSparkline(data []float64, width int) string {
	line := Sparkline(data, width)
	if len(data) == 0 {
		return line
	}
	return lipgloss.NewStyle().Foreground(MetricColor(data[len(data)-1])).Render(line)
}

// resampleData resamples data to the target size.
// When downsampling (compressing), uses max-based sampling to preserve peaks/spikes.
// When upsampling (expanding), uses linear interpolation.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}
	if len(data) == targetSize {
		return data
	}

	result := make([]float64, targetSize)
	if len(data) == 1 {
		for i := range result {
			result[i] = data[0]
		}
		return result
	}

	if len(data) > targetSize {
		bucketSize := float64(len(data)) / float64(targetSize)
		for i := 0; i < targetSize; i++ {
			start := int(float64(i) * bucketSize)
			end := int(float64(i+1) * bucketSize)
			if end > len(data) {
				end = len(data)
			}
			if start >= end {
				start = end - 1
			}

			maxVal := data[start]
			for j := start + 1; j < end; j++ {
				if data[j] > maxVal {
					maxVal = data[j]
				}
			}
			result[i] = maxVal
		}
		return result
	}

	scale := float64(len(data)-1) / float64(targetSize-1)
	for i := 0; i < targetSize; i++ {
		pos := float64(i) * scale
		idx := int(pos)
		if idx >= len(data)-1 {
			result[i] = data[len(data)-1]
			continue
		}
		frac := pos - float64(idx)
		result[i] = data[idx]*(1-frac) + data[idx+1]*frac
	}
	return result
}

// rates converts bandwidth samples for plotting.
func rates(samples []uint64) []float64 {
	out := make([]float64, len(samples))
	for i, v := range samples {
		out[i] = float64(v)
	}
	return out
}
