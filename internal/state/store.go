package state

// Options sizes a Store.
type Options struct {
	LogCapacity int
	ScrollStep  int
	Countdown   int
}

// Store bundles the independently locked owners with the command channel
// and the shutdown flag.
type Store struct {
	Registry *Registry
	View     *ViewState
	Errors   *ErrorSlot
	Commands *CommandChannel
	Shutdown *Shutdown
}

// NewStore creates the shared state for one process.
func NewStore(opts Options) *Store {
	sd := NewShutdown()
	return &Store{
		Registry: NewRegistry(opts.LogCapacity),
		View:     NewViewState(opts.ScrollStep),
		Errors:   NewErrorSlot(opts.Countdown),
		Commands: NewCommandChannel(sd),
		Shutdown: sd,
	}
}

// SelectSort cycles the sort for key. The registry is its only owner.
func (s *Store) SelectSort(key SortKey) SortConfig {
	return s.Registry.SelectSort(key)
}

// SetFilter updates the filter text in the view state and the registry.
func (s *Store) SetFilter(text string) {
	s.View.SetFilter(text)
	s.Registry.SetFilter(text)
}

// Snapshot is a fully-owned copy of everything one frame needs.
type Snapshot struct {
	// Rows are the visible containers in display order.
	Rows []Row
	// Total counts all known containers, including filtered ones.
	Total int
	// Selected is a deep copy of the selected container, nil when none.
	Selected *Container
	Inspect  *InspectData
	// Sort is the order Rows are in.
	Sort  SortConfig
	View  ViewSnapshot
	Error *AppError
	// Countdown is the seconds left before exit when Counting is set.
	Countdown int
	Counting  bool
}

// Initialised reports whether the first reconcile has completed.
func (s Snapshot) Initialised() bool {
	return !s.View.Has(StatusInit)
}

// SelectedIndex returns the row index of the selected container, or -1.
func (s Snapshot) SelectedIndex() int {
	if s.Selected == nil {
		return -1
	}
	for i, r := range s.Rows {
		if r.ID == s.Selected.ID {
			return i
		}
	}
	return -1
}

// Controls returns the lifecycle commands available for the selected
// container.
func (s Snapshot) Controls() []CommandKind {
	if s.Selected == nil {
		return nil
	}
	return s.Selected.State.Controls()
}

// Snapshot copies the registry, view state and error slot, taking each lock
// in turn and never more than one at once.
func (s *Store) Snapshot() Snapshot {
	reg := s.Registry.snapshot()
	view := s.View.snapshot()

	snap := Snapshot{
		Rows:     reg.rows,
		Total:    reg.total,
		Selected: reg.selected,
		Inspect:  reg.inspect,
		Sort:     reg.sort,
		View:     view,
	}

	if e, ok := s.Errors.Current(); ok {
		snap.Error = &e
	}
	snap.Countdown, snap.Counting = s.Errors.Countdown()
	return snap
}
