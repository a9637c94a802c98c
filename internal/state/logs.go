package state

import "time"

// DefaultLogCapacity is the number of lines kept per container when the
// config does not say otherwise.
const DefaultLogCapacity = 1000

// LogLine is one line of container output.
type LogLine struct {
	Time   time.Time
	Text   string
	Stderr bool
}

// LogBuffer is a bounded list of log lines with a selectable cursor. While
// the cursor sits on the newest line it follows the tail as lines arrive.
type LogBuffer struct {
	lines    []LogLine
	capacity int
	cursor   int
	follow   bool
}

// NewLogBuffer returns an empty buffer that keeps at most capacity lines.
func NewLogBuffer(capacity int) *LogBuffer {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &LogBuffer{capacity: capacity, cursor: -1, follow: true}
}

// Append adds lines, evicting the oldest beyond capacity.
func (b *LogBuffer) Append(lines ...LogLine) {
	if len(lines) == 0 {
		return
	}
	b.lines = append(b.lines, lines...)

	evicted := 0
	if over := len(b.lines) - b.capacity; over > 0 {
		evicted = over
		trimmed := make([]LogLine, b.capacity)
		copy(trimmed, b.lines[over:])
		b.lines = trimmed
	}

	if b.follow || b.cursor < 0 {
		b.cursor = len(b.lines) - 1
		return
	}
	b.cursor -= evicted
	if b.cursor < 0 {
		b.cursor = 0
	}
}

// Lines returns a copy of the buffered lines, oldest first.
func (b *LogBuffer) Lines() []LogLine {
	out := make([]LogLine, len(b.lines))
	copy(out, b.lines)
	return out
}

// Len returns the number of buffered lines.
func (b *LogBuffer) Len() int {
	return len(b.lines)
}

// Capacity returns the maximum number of lines retained.
func (b *LogBuffer) Capacity() int {
	return b.capacity
}

// Cursor returns the selected line index, or -1 when empty.
func (b *LogBuffer) Cursor() int {
	return b.cursor
}

// Following reports whether the cursor tracks the newest line.
func (b *LogBuffer) Following() bool {
	return b.follow
}

// Up moves the cursor n lines toward older output and stops following.
func (b *LogBuffer) Up(n int) {
	if len(b.lines) == 0 {
		return
	}
	b.cursor -= n
	if b.cursor < 0 {
		b.cursor = 0
	}
	b.follow = b.cursor == len(b.lines)-1
}

// Down moves the cursor n lines toward newer output. Reaching the newest line
// resumes following.
func (b *LogBuffer) Down(n int) {
	if len(b.lines) == 0 {
		return
	}
	b.cursor += n
	if b.cursor >= len(b.lines)-1 {
		b.cursor = len(b.lines) - 1
	}
	b.follow = b.cursor == len(b.lines)-1
}

// First moves the cursor to the oldest line.
func (b *LogBuffer) First() {
	if len(b.lines) == 0 {
		return
	}
	b.cursor = 0
	b.follow = len(b.lines) == 1
}

// Last moves the cursor to the newest line and resumes following.
func (b *LogBuffer) Last() {
	b.cursor = len(b.lines) - 1
	b.follow = true
}

// Clone returns an independent copy.
func (b *LogBuffer) Clone() *LogBuffer {
	return &LogBuffer{
		lines:    b.Lines(),
		capacity: b.capacity,
		cursor:   b.cursor,
		follow:   b.follow,
	}
}
