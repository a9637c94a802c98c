package state

import (
	"sync"

	"github.com/google/uuid"
)

// Panel is a focusable area of the dashboard.
type Panel int

const (
	PanelContainers Panel = iota
	PanelCommands
	PanelLogs
	panelCount
)

// String returns the panel title.
func (p Panel) String() string {
	switch p {
	case PanelContainers:
		return "containers"
	case PanelCommands:
		return "commands"
	case PanelLogs:
		return "logs"
	default:
		return "unknown"
	}
}

// ScrollTarget names a scrollable view with its own offset.
type ScrollTarget int

const (
	ScrollLogs ScrollTarget = iota
	ScrollInspect
	scrollTargetCount
)

// ScrollDirection is one step of scrolling.
type ScrollDirection int

const (
	ScrollUp ScrollDirection = iota
	ScrollDown
	ScrollLeft
	ScrollRight
)

// Offset is a scroll position or its bound.
type Offset struct {
	X int
	Y int
}

// ScrollMax returns the largest legal offset for content of the given
// extent in a viewport of the given extent.
func ScrollMax(content, viewport int) int {
	if content <= viewport {
		return 0
	}
	return content - viewport
}

// Status is an overlay or mode flag.
type Status int

const (
	StatusInit Status = iota
	StatusHelp
	StatusInspect
	StatusFilter
	StatusDeleteConfirm
	StatusExec
	statusCount
)

// Log panel height bounds, in lines.
const (
	DefaultLogHeight = 10
	MinLogHeight     = 3
	MaxLogHeight     = 40
)

// SpinnerFrames are the loading animation frames.
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ViewState is presentation-adjacent state mutated by input and read by the
// renderer.
type ViewState struct {
	mu sync.Mutex

	panel         Panel
	offsets       [scrollTargetCount]Offset
	maxes         [scrollTargetCount]Offset
	step          int
	loading       map[uuid.UUID]int
	loadingOrder  []uuid.UUID
	status        [statusCount]bool
	filter        string
	logHeight     int
	commandCursor int
	deleteTarget  ContainerID
	mouse         bool
}

// NewViewState returns the startup view: containers panel focused, Init
// status set.
//
// The active sort is not view state: the registry owns it because it
// decides the row order, and snapshots carry it from there.
func NewViewState(scrollStep int) *ViewState {
	if scrollStep < 1 {
		scrollStep = 1
	}
	v := &ViewState{
		step:      scrollStep,
		loading:   make(map[uuid.UUID]int),
		logHeight: DefaultLogHeight,
		mouse:     true,
	}
	v.status[StatusInit] = true
	return v
}

// Panel returns the focused panel.
func (v *ViewState) Panel() Panel {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.panel
}

// SelectPanel focuses p.
func (v *ViewState) SelectPanel(p Panel) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if p >= 0 && p < panelCount {
		v.panel = p
	}
}

// NextPanel cycles focus forward.
func (v *ViewState) NextPanel() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panel = (v.panel + 1) % panelCount
}

// PrevPanel cycles focus backward.
func (v *ViewState) PrevPanel() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panel = (v.panel + panelCount - 1) % panelCount
}

// ScrollBy moves target one step in dir, clamped to [0, max].
func (v *ViewState) ScrollBy(target ScrollTarget, dir ScrollDirection) Offset {
	v.mu.Lock()
	defer v.mu.Unlock()
	o := v.offsets[target]
	switch dir {
	case ScrollUp:
		o.Y -= v.step
	case ScrollDown:
		o.Y += v.step
	case ScrollLeft:
		o.X -= v.step
	case ScrollRight:
		o.X += v.step
	}
	v.offsets[target] = clampOffset(o, v.maxes[target])
	return v.offsets[target]
}

// ScrollTo sets target's offset, clamped to [0, max].
func (v *ViewState) ScrollTo(target ScrollTarget, o Offset) Offset {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offsets[target] = clampOffset(o, v.maxes[target])
	return v.offsets[target]
}

// ScrollStart moves target to the top-left.
func (v *ViewState) ScrollStart(target ScrollTarget) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offsets[target] = Offset{}
}

// ScrollEnd moves target to the last line, keeping the horizontal offset.
func (v *ViewState) ScrollEnd(target ScrollTarget) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offsets[target].Y = v.maxes[target].Y
}

// SetOffsetMax records the legal range the renderer computed for target
// and clamps the stored offset into it immediately.
func (v *ViewState) SetOffsetMax(target ScrollTarget, max Offset) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if max.X < 0 {
		max.X = 0
	}
	if max.Y < 0 {
		max.Y = 0
	}
	v.maxes[target] = max
	v.offsets[target] = clampOffset(v.offsets[target], max)
}

// Offset returns target's offset.
func (v *ViewState) Offset(target ScrollTarget) Offset {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offsets[target]
}

// OffsetMax returns target's bound.
func (v *ViewState) OffsetMax(target ScrollTarget) Offset {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.maxes[target]
}

func clampOffset(o, max Offset) Offset {
	return Offset{X: clamp(o.X, 0, max.X), Y: clamp(o.Y, 0, max.Y)}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// StartLoading marks op as in flight. Starting an op that is already active
// keeps its current frame.
func (v *ViewState) StartLoading(op uuid.UUID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.loading[op]; ok {
		return
	}
	v.loading[op] = 0
	v.loadingOrder = append(v.loadingOrder, op)
}

// StopLoading clears op.
func (v *ViewState) StopLoading(op uuid.UUID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.loading[op]; !ok {
		return
	}
	delete(v.loading, op)
	for i, id := range v.loadingOrder {
		if id == op {
			v.loadingOrder = append(v.loadingOrder[:i], v.loadingOrder[i+1:]...)
			break
		}
	}
}

// AdvanceLoading moves every active op one frame forward.
func (v *ViewState) AdvanceLoading() {
	v.mu.Lock()
	defer v.mu.Unlock()
	for op, frame := range v.loading {
		v.loading[op] = (frame + 1) % len(SpinnerFrames)
	}
}

// IsLoading reports whether any op is in flight.
func (v *ViewState) IsLoading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.loading) > 0
}

// LoadingIcon returns the frame of the oldest active op, or a blank when
// nothing is loading.
func (v *ViewState) LoadingIcon() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loadingIcon()
}

func (v *ViewState) loadingIcon() string {
	if len(v.loadingOrder) == 0 {
		return " "
	}
	return SpinnerFrames[v.loading[v.loadingOrder[0]]]
}

// SetStatus sets or clears a status flag.
func (v *ViewState) SetStatus(s Status, on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.status[s] = on
}

// HasStatus reports a status flag.
func (v *ViewState) HasStatus(s Status) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status[s]
}

// Filter returns the filter text.
func (v *ViewState) Filter() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

// SetFilter replaces the filter text.
func (v *ViewState) SetFilter(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = text
}

// LogHeight returns the log panel height in lines.
func (v *ViewState) LogHeight() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.logHeight
}

// ResizeLogs grows or shrinks the log panel by delta, within bounds.
func (v *ViewState) ResizeLogs(delta int) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.logHeight = clamp(v.logHeight+delta, MinLogHeight, MaxLogHeight)
	return v.logHeight
}

// CommandCursor returns the highlighted entry of the commands panel.
func (v *ViewState) CommandCursor() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.commandCursor
}

// MoveCommandCursor moves the commands cursor by delta within [0, count).
func (v *ViewState) MoveCommandCursor(delta, count int) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if count <= 0 {
		v.commandCursor = 0
		return 0
	}
	v.commandCursor = clamp(v.commandCursor+delta, 0, count-1)
	return v.commandCursor
}

// ResetCommandCursor puts the commands cursor back on the first entry.
func (v *ViewState) ResetCommandCursor() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.commandCursor = 0
}

// ConfirmDelete opens the delete confirmation for id.
func (v *ViewState) ConfirmDelete(id ContainerID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.deleteTarget = id
	v.status[StatusDeleteConfirm] = true
}

// ResolveDelete closes the confirmation and returns the id it was for.
func (v *ViewState) ResolveDelete() (ContainerID, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.deleteTarget
	v.deleteTarget = ""
	v.status[StatusDeleteConfirm] = false
	return id, id != ""
}

// ToggleMouse flips mouse capture and returns the new setting.
func (v *ViewState) ToggleMouse() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mouse = !v.mouse
	return v.mouse
}

// ViewSnapshot is a copy of the view state for one frame.
type ViewSnapshot struct {
	Panel         Panel
	Offsets       [scrollTargetCount]Offset
	Maxes         [scrollTargetCount]Offset
	Loading       bool
	LoadingIcon   string
	Status        [statusCount]bool
	Filter        string
	LogHeight     int
	CommandCursor int
	DeleteTarget  ContainerID
	Mouse         bool
}

// Has reports a status flag.
func (s ViewSnapshot) Has(st Status) bool {
	return s.Status[st]
}

// Offset returns target's offset.
func (s ViewSnapshot) Offset(target ScrollTarget) Offset {
	return s.Offsets[target]
}

func (v *ViewState) snapshot() ViewSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return ViewSnapshot{
		Panel:         v.panel,
		Offsets:       v.offsets,
		Maxes:         v.maxes,
		Loading:       len(v.loading) > 0,
		LoadingIcon:   v.loadingIcon(),
		Status:        v.status,
		Filter:        v.filter,
		LogHeight:     v.logHeight,
		CommandCursor: v.commandCursor,
		DeleteTarget:  v.deleteTarget,
		Mouse:         v.mouse,
	}
}
