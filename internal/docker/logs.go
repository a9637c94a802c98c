package docker

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/pkg/stdcopy"
	"github.com/rileyhilliard/dockmon/internal/state"
)

// sinceParam formats t the way the Engine API's since filter expects:
// unix seconds with a nanosecond fraction.
func sinceParam(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d.%09d", t.Unix(), t.Nanosecond())
}

func tailParam(n int) string {
	if n <= 0 {
		return "all"
	}
	return strconv.Itoa(n)
}

// parseLogs reads a log stream requested with timestamps. Containers
// without a TTY send a multiplexed stream (8 byte frame headers); TTY
// containers send raw bytes, all of it stdout.
func parseLogs(r io.Reader) ([]state.LogLine, error) {
	br := bufio.NewReader(r)

	header, err := br.Peek(8)
	if err != nil && len(header) == 0 {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	if !isMultiplexHeader(header) {
		raw, err := io.ReadAll(br)
		if err != nil {
			return nil, err
		}
		return splitLines(raw, false)
	}

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, br); err != nil {
		return nil, err
	}

	lines, err := splitLines(stdout.Bytes(), false)
	if err != nil {
		return nil, err
	}
	errLines, err := splitLines(stderr.Bytes(), true)
	if err != nil {
		return nil, err
	}
	lines = append(lines, errLines...)
	// The two streams were separated by the demux; put them back in time order.
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].Time.Before(lines[j].Time)
	})
	return lines, nil
}

func isMultiplexHeader(h []byte) bool {
	if len(h) < 8 {
		return false
	}
	switch stdcopy.StdType(h[0]) {
	case stdcopy.Stdin, stdcopy.Stdout, stdcopy.Stderr, stdcopy.Systemerr:
	default:
		return false
	}
	return h[1] == 0 && h[2] == 0 && h[3] == 0
}

// splitLines parses data line by line. Lines have no length limit; a
// trailing fragment without a newline is kept as the last line.
func splitLines(data []byte, stderr bool) ([]state.LogLine, error) {
	var out []state.LogLine
	br := bufio.NewReader(bytes.NewReader(data))
	for {
		raw, err := br.ReadString('\n')
		if raw != "" {
			out = append(out, parseLine(strings.TrimSuffix(raw, "\n"), stderr))
		}
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

// parseLine splits the RFC3339Nano prefix the daemon adds when timestamps
// are requested. Lines without one get the zero time.
func parseLine(raw string, stderr bool) state.LogLine {
	text := strings.TrimRight(raw, "\r")
	line := state.LogLine{Text: text, Stderr: stderr}
	if ts, rest, ok := strings.Cut(text, " "); ok {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			line.Time = t
			line.Text = rest
		}
	}
	return line
}
