package state

import (
	"strings"
	"sync"
	"time"
)

// InspectData is the pretty-printed inspect payload for one container.
type InspectData struct {
	ID   ContainerID
	Name ContainerName
	JSON string
}

// ReconcileResult reports what a Reconcile call changed.
type ReconcileResult struct {
	Added   []ContainerID
	Removed []ContainerID
}

// Registry is the authoritative table of known containers.
type Registry struct {
	mu          sync.Mutex
	containers  map[ContainerID]*Container
	order       []ContainerID
	sort        SortConfig
	filter      string
	selected    ContainerID
	nextSeq     uint64
	logCapacity int
	inspect     *InspectData
}

// NewRegistry returns an empty registry whose containers keep logCapacity
// log lines each.
func NewRegistry(logCapacity int) *Registry {
	if logCapacity <= 0 {
		logCapacity = DefaultLogCapacity
	}
	return &Registry{
		containers:  make(map[ContainerID]*Container),
		logCapacity: logCapacity,
	}
}

// Reconcile applies the full list observed by the daemon in one critical
// section: new ids are inserted, present ones updated in place and missing
// ones dropped along with their logs.
func (r *Registry) Reconcile(observed []Observed) ReconcileResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	prevIndex := r.visibleIndex(r.selected)

	var result ReconcileResult
	seen := make(map[ContainerID]bool, len(observed))
	for _, o := range observed {
		if o.ID == "" || seen[o.ID] {
			continue
		}
		seen[o.ID] = true

		if c, ok := r.containers[o.ID]; ok {
			c.update(o)
			continue
		}
		r.containers[o.ID] = newContainer(o, r.nextSeq, r.logCapacity)
		r.nextSeq++
		result.Added = append(result.Added, o.ID)
	}

	for _, id := range r.order {
		if !seen[id] {
			delete(r.containers, id)
			result.Removed = append(result.Removed, id)
		}
	}
	if r.inspect != nil && !seen[r.inspect.ID] {
		r.inspect = nil
	}

	r.reorder()
	r.fixSelection(prevIndex)
	return result
}

// reorder re-derives the display order. Caller holds r.mu.
func (r *Registry) reorder() {
	r.order = orderContainers(r.containers, r.sort)
}

// visible returns the ordered ids that pass the filter. Caller holds r.mu.
func (r *Registry) visible() []ContainerID {
	if r.filter == "" {
		return r.order
	}
	out := make([]ContainerID, 0, len(r.order))
	for _, id := range r.order {
		if matchesFilter(r.containers[id], r.filter) {
			out = append(out, id)
		}
	}
	return out
}

func matchesFilter(c *Container, filter string) bool {
	if filter == "" {
		return true
	}
	f := strings.ToLower(filter)
	return strings.Contains(strings.ToLower(string(c.Name)), f) ||
		strings.Contains(strings.ToLower(string(c.Image)), f)
}

func (r *Registry) visibleIndex(id ContainerID) int {
	if id == "" {
		return -1
	}
	for i, v := range r.visible() {
		if v == id {
			return i
		}
	}
	return -1
}

// fixSelection keeps the selected id if it is still visible, else selects
// the entry now at the previous index (clamped), else nothing. Caller holds
// r.mu.
func (r *Registry) fixSelection(prevIndex int) {
	vis := r.visible()
	if len(vis) == 0 {
		r.selected = ""
		return
	}
	if r.visibleIndex(r.selected) >= 0 {
		return
	}
	switch {
	case prevIndex < 0:
		r.selected = vis[0]
	case prevIndex >= len(vis):
		r.selected = vis[len(vis)-1]
	default:
		r.selected = vis[prevIndex]
	}
}

// SelectSort applies a sort key selection, re-derives the order and returns
// the new config. Selecting the same key cycles ascending, descending, none;
// a different key starts ascending; SortNone clears.
func (r *Registry) SelectSort(key SortKey) SortConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sort = r.sort.next(key)
	r.reorder()
	return r.sort
}

// SetSort changes the active sort and re-derives the order.
func (r *Registry) SetSort(cfg SortConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sort = cfg
	r.reorder()
}

// Sort returns the active sort.
func (r *Registry) Sort() SortConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sort
}

// SetFilter restricts navigation and snapshots to containers whose name or
// image contains text, case-insensitively.
func (r *Registry) SetFilter(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.visibleIndex(r.selected)
	r.filter = text
	r.fixSelection(prev)
}

// Len returns the number of known containers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.containers)
}

// IDs returns all ids in display order.
func (r *Registry) IDs() []ContainerID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ContainerID, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns a clone of the container with id.
func (r *Registry) Get(id ContainerID) (*Container, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.containers[id]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

// LogTarget is what the log fetcher needs to know about a container.
type LogTarget struct {
	ID    ContainerID
	Name  ContainerName
	State State
	Since time.Time
}

// LogTargets lists every container with its last seen log time.
func (r *Registry) LogTargets() []LogTarget {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LogTarget, 0, len(r.order))
	for _, id := range r.order {
		c := r.containers[id]
		out = append(out, LogTarget{ID: c.ID, Name: c.Name, State: c.State, Since: c.LastLogTime})
	}
	return out
}

// Name returns the name of the container with id.
func (r *Registry) Name(id ContainerID) (ContainerName, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.containers[id]
	if !ok {
		return "", false
	}
	return c.Name, true
}

// LastLogTime returns the newest log timestamp seen for id.
func (r *Registry) LastLogTime(id ContainerID) time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.containers[id]; ok {
		return c.LastLogTime
	}
	return time.Time{}
}

// AppendLogs adds lines to the container's buffer and advances its last
// seen log time. Lines at or before the previous last seen time are dropped
// because the daemon's since filter is inclusive. Returns false if the
// container is gone.
func (r *Registry) AppendLogs(id ContainerID, lines []LogLine) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.containers[id]
	if !ok {
		return false
	}

	since := c.LastLogTime
	fresh := make([]LogLine, 0, len(lines))
	for _, l := range lines {
		if !l.Time.IsZero() && !since.IsZero() && !l.Time.After(since) {
			continue
		}
		fresh = append(fresh, l)
		if l.Time.After(c.LastLogTime) {
			c.LastLogTime = l.Time
		}
	}
	c.Logs.Append(fresh...)
	return true
}

// Selected returns the selected container id.
func (r *Registry) Selected() (ContainerID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selected, r.selected != ""
}

// Select selects id if it is visible.
func (r *Registry) Select(id ContainerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.visibleIndex(id) < 0 {
		return false
	}
	r.selected = id
	return true
}

// SelectNext moves the selection down one row.
func (r *Registry) SelectNext() { r.moveSelection(1) }

// SelectPrev moves the selection up one row.
func (r *Registry) SelectPrev() { r.moveSelection(-1) }

func (r *Registry) moveSelection(delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vis := r.visible()
	if len(vis) == 0 {
		return
	}
	i := r.visibleIndex(r.selected) + delta
	if i < 0 {
		i = 0
	}
	if i >= len(vis) {
		i = len(vis) - 1
	}
	r.selected = vis[i]
}

// SelectFirst selects the first row.
func (r *Registry) SelectFirst() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if vis := r.visible(); len(vis) > 0 {
		r.selected = vis[0]
	}
}

// SelectLast selects the last row.
func (r *Registry) SelectLast() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if vis := r.visible(); len(vis) > 0 {
		r.selected = vis[len(vis)-1]
	}
}

// LogUp moves the selected container's log cursor toward older lines.
func (r *Registry) LogUp(n int) { r.withSelectedLogs(func(b *LogBuffer) { b.Up(n) }) }

// LogDown moves the selected container's log cursor toward newer lines.
func (r *Registry) LogDown(n int) { r.withSelectedLogs(func(b *LogBuffer) { b.Down(n) }) }

// LogFirst moves the selected container's log cursor to the oldest line.
func (r *Registry) LogFirst() { r.withSelectedLogs(func(b *LogBuffer) { b.First() }) }

// LogLast moves the selected container's log cursor to the newest line.
func (r *Registry) LogLast() { r.withSelectedLogs(func(b *LogBuffer) { b.Last() }) }

func (r *Registry) withSelectedLogs(fn func(*LogBuffer)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.containers[r.selected]; ok {
		fn(c.Logs)
	}
}

// SetInspect stores the inspect payload for a container.
func (r *Registry) SetInspect(id ContainerID, json string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.containers[id]
	if !ok {
		return false
	}
	r.inspect = &InspectData{ID: id, Name: c.Name, JSON: json}
	return true
}

// ClearInspect drops the inspect payload.
func (r *Registry) ClearInspect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inspect = nil
}

// registryView is the registry's part of a Snapshot.
type registryView struct {
	rows     []Row
	total    int
	selected *Container
	inspect  *InspectData
	sort     SortConfig
}

func (r *Registry) snapshot() registryView {
	r.mu.Lock()
	defer r.mu.Unlock()

	vis := r.visible()
	v := registryView{
		rows:  make([]Row, len(vis)),
		total: len(r.containers),
		sort:  r.sort,
	}
	for i, id := range vis {
		v.rows[i] = r.containers[id].row()
	}
	if c, ok := r.containers[r.selected]; ok {
		v.selected = c.Clone()
	}
	if r.inspect != nil {
		in := *r.inspect
		v.inspect = &in
	}
	return v
}
