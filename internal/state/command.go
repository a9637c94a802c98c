package state

import "github.com/google/uuid"

// CommandKind is a request the sync loop carries out against the daemon.
type CommandKind int

const (
	CmdStart CommandKind = iota
	CmdStop
	CmdPause
	CmdUnpause
	CmdRestart
	CmdRemove
	CmdExec
	CmdSaveLogs
	CmdInspect
)

// String returns the label shown in the commands panel.
func (k CommandKind) String() string {
	switch k {
	case CmdStart:
		return "start"
	case CmdStop:
		return "stop"
	case CmdPause:
		return "pause"
	case CmdUnpause:
		return "unpause"
	case CmdRestart:
		return "restart"
	case CmdRemove:
		return "delete"
	case CmdExec:
		return "exec"
	case CmdSaveLogs:
		return "save logs"
	case CmdInspect:
		return "inspect"
	default:
		return "unknown"
	}
}

// IsLifecycle reports whether the command changes container state.
func (k CommandKind) IsLifecycle() bool {
	return k >= CmdStart && k <= CmdRemove
}

// Command is one message on the command channel. Op identifies the loading
// spinner shown while the command runs.
type Command struct {
	Kind CommandKind
	ID   ContainerID
	Op   uuid.UUID
}

// NewCommand builds a command with a fresh operation id.
func NewCommand(kind CommandKind, id ContainerID) Command {
	return Command{Kind: kind, ID: id, Op: uuid.New()}
}

// CommandCapacity bounds the command channel. It is a safety valve, not a
// throughput limit: commands are user-triggered.
const CommandCapacity = 16

// CommandChannel is the ordered conduit from the input reader to the sync
// loop. Producers block when it is full.
type CommandChannel struct {
	ch       chan Command
	shutdown *Shutdown
}

// NewCommandChannel creates a channel that stops accepting sends once
// shutdown is signalled.
func NewCommandChannel(shutdown *Shutdown) *CommandChannel {
	return &CommandChannel{
		ch:       make(chan Command, CommandCapacity),
		shutdown: shutdown,
	}
}

// Send enqueues cmd, blocking while the channel is full. It returns false
// without enqueuing if shutdown is signalled first.
func (c *CommandChannel) Send(cmd Command) bool {
	if c.shutdown.IsSet() {
		return false
	}
	select {
	case c.ch <- cmd:
		return true
	case <-c.shutdown.Done():
		return false
	}
}

// Receive returns the consumer side. Only the sync loop reads from it.
func (c *CommandChannel) Receive() <-chan Command {
	return c.ch
}

// Len returns the number of queued commands.
func (c *CommandChannel) Len() int {
	return len(c.ch)
}
