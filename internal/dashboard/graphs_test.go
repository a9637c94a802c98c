package dashboard

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Force TrueColor output in tests so we can verify ANSI color codes
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestFindMinMax(t *testing.T) {
	tests := []struct {
		name          string
		data          []float64
		wantMin       float64
		wantMax       float64
		wantIsPercent bool
	}{
		{
			name:          "empty data returns percentage defaults",
			data:          []float64{},
			wantMin:       0,
			wantMax:       100,
			wantIsPercent: true,
		},
		{
			name:          "percentage data uses fixed range",
			data:          []float64{10, 50, 90},
			wantMin:       0,
			wantMax:       100,
			wantIsPercent: true,
		},
		{
			name:          "byte rates use actual range",
			data:          []float64{200, 4096, 1024},
			wantMin:       200,
			wantMax:       4096,
			wantIsPercent: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minVal, maxVal, isPercent := findMinMax(tt.data)
			assert.Equal(t, tt.wantMin, minVal)
			assert.Equal(t, tt.wantMax, maxVal)
			assert.Equal(t, tt.wantIsPercent, isPercent)
		})
	}
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, 0.5, normalizeValue(50, 0, 100))
	assert.Equal(t, 0.0, normalizeValue(0, 0, 100))
	assert.Equal(t, 1.0, normalizeValue(100, 0, 100))
	assert.Equal(t, 0.5, normalizeValue(7, 7, 7), "flat range sits in the middle")
}

func TestSparkline(t *testing.T) {
	tests := []struct {
		name   string
		data   []float64
		width  int
		expect string
	}{
		{name: "empty is blank", data: nil, width: 4, expect: "    "},
		{name: "zero width", data: []float64{1}, width: 0, expect: ""},
		{name: "full range", data: []float64{0, 100}, width: 2, expect: "▁█"},
		{name: "short series right aligned", data: []float64{0, 100}, width: 5, expect: "   ▁█"},
		{name: "long series resampled to width", data: []float64{0, 100, 0, 100, 0, 100}, width: 3, expect: "███"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, Sparkline(tt.data, tt.width))
		})
	}
}

func TestScaledSparkline(t *testing.T) {
	// a flat non-zero rate fills the row
	assert.Equal(t, "███", ScaledSparkline([]float64{5000, 5000, 5000}, 3))
	// all idle stays on the floor
	assert.Equal(t, " ▁▁", ScaledSparkline([]float64{0, 0}, 3))
	assert.Equal(t, "▁█", ScaledSparkline([]float64{0, 1 << 20}, 2))
}

func TestColoredSparkline(t *testing.T) {
	line := ColoredSparkline([]float64{10, 95}, 2)
	assert.Equal(t, "▁▇", ansi.Strip(line))
	assert.Contains(t, line, "\x1b[")

	assert.Equal(t, "  ", ColoredSparkline(nil, 2))
}

func TestResampleData(t *testing.T) {
	t.Run("downsampling keeps peaks", func(t *testing.T) {
		out := resampleData([]float64{1, 9, 2, 3, 8, 1}, 3)
		assert.Equal(t, []float64{9, 3, 8}, out)
	})

	t.Run("upsampling interpolates", func(t *testing.T) {
		out := resampleData([]float64{0, 10}, 3)
		require.Len(t, out, 3)
		assert.InDelta(t, 5.0, out[1], 0.001)
		assert.Equal(t, 10.0, out[2])
	})

	t.Run("single value repeats", func(t *testing.T) {
		assert.Equal(t, []float64{4, 4}, resampleData([]float64{4}, 2))
	})

	t.Run("same size is unchanged", func(t *testing.T) {
		in := []float64{1, 2}
		assert.Equal(t, in, resampleData(in, 2))
	})

	assert.Nil(t, resampleData(nil, 3))
}

func TestRates(t *testing.T) {
	assert.Equal(t, []float64{0, 1024, 2048}, rates([]uint64{0, 1024, 2048}))
	assert.Empty(t, rates(nil))
}
