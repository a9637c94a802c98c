package state

import "strings"

// ContainerID is the registry key. The daemon never reuses an id for a
// different container within the life of the process.
type ContainerID string

// ShortIDLen is the length of the abbreviated id shown in tables.
const ShortIDLen = 12

// Short returns the abbreviated id.
func (id ContainerID) Short() string {
	if len(id) > ShortIDLen {
		return string(id[:ShortIDLen])
	}
	return string(id)
}

// ContainerName is the container name without the leading slash the Engine
// API reports.
type ContainerName string

// NewContainerName strips the leading slash from a daemon-reported name.
func NewContainerName(raw string) ContainerName {
	return ContainerName(strings.TrimPrefix(raw, "/"))
}

// ContainerImage is the image reference a container was created from.
type ContainerImage string

// State is the lifecycle state reported by the daemon.
type State int

const (
	StateUnknown State = iota
	StateRunning
	StatePaused
	StateRestarting
	StateRemoving
	StateCreated
	StateExited
	StateDead
)

// ParseState maps the Engine API state string. Unrecognised values map to
// StateUnknown.
func ParseState(s string) State {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "running":
		return StateRunning
	case "paused":
		return StatePaused
	case "restarting":
		return StateRestarting
	case "removing":
		return StateRemoving
	case "created":
		return StateCreated
	case "exited":
		return StateExited
	case "dead":
		return StateDead
	default:
		return StateUnknown
	}
}

// String returns the daemon's name for the state.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateRestarting:
		return "restarting"
	case StateRemoving:
		return "removing"
	case StateCreated:
		return "created"
	case StateExited:
		return "exited"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// IsAlive reports whether the container has a process the charts and log
// fetcher should follow.
func (s State) IsAlive() bool {
	return s == StateRunning || s == StatePaused || s == StateRestarting
}

// rank orders states for sorting: live containers first.
func (s State) rank() int {
	switch s {
	case StateRunning:
		return 0
	case StatePaused:
		return 1
	case StateRestarting:
		return 2
	case StateCreated:
		return 3
	case StateRemoving:
		return 4
	case StateExited:
		return 5
	case StateDead:
		return 6
	default:
		return 7
	}
}

// Controls lists the lifecycle commands that apply to a container in this
// state, in the order the commands panel shows them.
func (s State) Controls() []CommandKind {
	switch s {
	case StateRunning:
		return []CommandKind{CmdPause, CmdRestart, CmdStop, CmdRemove}
	case StatePaused:
		return []CommandKind{CmdUnpause, CmdStop, CmdRemove}
	case StateRestarting:
		return []CommandKind{CmdStop, CmdRemove}
	case StateCreated, StateExited, StateDead:
		return []CommandKind{CmdStart, CmdRestart, CmdRemove}
	default:
		return []CommandKind{CmdRemove}
	}
}
