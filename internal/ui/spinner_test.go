package ui

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// syncBuffer guards a buffer shared with the animation goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewSpinner(t *testing.T) {
	s := NewSpinner("Connecting", &syncBuffer{})
	assert.Equal(t, "Connecting", s.Label())
	assert.Equal(t, SpinnerPending, s.State())
	assert.Zero(t, s.Elapsed())
}

func TestSpinnerStartStop(t *testing.T) {
	out := &syncBuffer{}
	s := NewSpinner("Connecting", out)

	s.Start()
	s.Start() // second start is a no-op
	assert.Equal(t, SpinnerInProgress, s.State())
	time.Sleep(20 * time.Millisecond)
	s.Stop()
	s.Stop()

	assert.Equal(t, SpinnerInProgress, s.State(), "Stop does not change state")
	assert.Contains(t, out.String(), "Connecting...")
}

func TestSpinnerFinish(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		state  SpinnerState
		symbol string
	}{
		{name: "success", err: nil, state: SpinnerSuccess, symbol: SymbolSuccess},
		{name: "failure", err: errors.New("refused"), state: SpinnerFailed, symbol: SymbolFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &syncBuffer{}
			s := NewSpinner("Connecting to tcp://docker:2375", out)
			s.Start()
			s.Finish(tt.err)

			assert.Equal(t, tt.state, s.State())
			lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\r")
			last := lines[len(lines)-1]
			assert.Contains(t, last, tt.symbol)
			assert.Contains(t, last, "Connecting to tcp://docker:2375")
			assert.True(t, strings.HasSuffix(out.String(), "s\n"), "ends with the elapsed time")
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0.05s", formatDuration(50*time.Millisecond))
	assert.Equal(t, "1.2s", formatDuration(1200*time.Millisecond))
}
