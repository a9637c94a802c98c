package docker

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/pkg/stdcopy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	stream stdcopy.StdType
	data   string
}

func muxed(t *testing.T, frames ...frame) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	for _, f := range frames {
		_, err := stdcopy.NewStdWriter(&buf, f.stream).Write([]byte(f.data))
		require.NoError(t, err)
	}
	return &buf
}

func TestParseLogs_Multiplexed(t *testing.T) {
	buf := muxed(t,
		frame{stdcopy.Stdout, "2024-05-01T10:00:00.000000001Z starting\n"},
		frame{stdcopy.Stderr, "2024-05-01T10:00:00.500000000Z warning: low disk\n"},
		frame{stdcopy.Stdout, "2024-05-01T10:00:01Z ready\n"},
	)

	lines, err := parseLogs(buf)
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, "starting", lines[0].Text)
	assert.False(t, lines[0].Stderr)
	assert.Equal(t, 1, lines[0].Time.Nanosecond())

	assert.Equal(t, "warning: low disk", lines[1].Text)
	assert.True(t, lines[1].Stderr)

	assert.Equal(t, "ready", lines[2].Text)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 1, 0, time.UTC), lines[2].Time)
}

func TestParseLogs_Raw(t *testing.T) {
	raw := "2024-05-01T10:00:00Z $ prompt\r\n2024-05-01T10:00:02Z done\n"

	lines, err := parseLogs(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "$ prompt", lines[0].Text)
	assert.Equal(t, "done", lines[1].Text)
	assert.False(t, lines[1].Stderr)
}

func TestParseLogs_OversizedLine(t *testing.T) {
	big := strings.Repeat("x", 2<<20)
	raw := "2024-05-01T10:00:00Z first\n" +
		"2024-05-01T10:00:01Z " + big + "\n" +
		"2024-05-01T10:00:02Z third\n"

	tests := []struct {
		name string
		in   func() *bytes.Buffer
	}{
		{name: "raw", in: func() *bytes.Buffer { return bytes.NewBufferString(raw) }},
		{name: "multiplexed", in: func() *bytes.Buffer { return muxed(t, frame{stdcopy.Stdout, raw}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := parseLogs(tt.in())
			require.NoError(t, err)
			require.Len(t, lines, 3)
			assert.Equal(t, "first", lines[0].Text)
			assert.Len(t, lines[1].Text, len(big))
			assert.Equal(t, "third", lines[2].Text)
			assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 2, 0, time.UTC), lines[2].Time)
		})
	}
}

func TestParseLogs_UnterminatedLastLine(t *testing.T) {
	lines, err := parseLogs(strings.NewReader("2024-05-01T10:00:00Z one\n2024-05-01T10:00:01Z two"))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "two", lines[1].Text)
}

func TestParseLogs_Empty(t *testing.T) {
	lines, err := parseLogs(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantText string
		wantTime bool
	}{
		{name: "timestamped", raw: "2024-05-01T10:00:00.123Z hello world", wantText: "hello world", wantTime: true},
		{name: "no timestamp", raw: "hello world", wantText: "hello world"},
		{name: "timestamp only", raw: "2024-05-01T10:00:00Z ", wantText: "", wantTime: true},
		{name: "carriage return trimmed", raw: "plain\r", wantText: "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := parseLine(tt.raw, false)
			assert.Equal(t, tt.wantText, line.Text)
			assert.Equal(t, tt.wantTime, !line.Time.IsZero())
		})
	}
}

func TestSinceAndTailParams(t *testing.T) {
	assert.Empty(t, sinceParam(time.Time{}))
	assert.Equal(t, "1700000000.000000042", sinceParam(time.Unix(1700000000, 42)))

	assert.Equal(t, "all", tailParam(0))
	assert.Equal(t, "250", tailParam(250))
}

func TestIsMultiplexHeader(t *testing.T) {
	assert.True(t, isMultiplexHeader([]byte{1, 0, 0, 0, 0, 0, 0, 5}))
	assert.True(t, isMultiplexHeader([]byte{2, 0, 0, 0, 0, 0, 1, 0}))
	assert.False(t, isMultiplexHeader([]byte("2024-05-")))
	assert.False(t, isMultiplexHeader([]byte{1, 0, 0}))
}
