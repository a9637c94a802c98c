package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sortFixture() *Registry {
	r := NewRegistry(10)
	r.Reconcile([]Observed{
		{ID: "c3", Name: "cache", Image: "redis", State: StateRunning, Stats: stats(5, 300, 10, 90)},
		{ID: "a1", Name: "api", Image: "node", State: StateExited},
		{ID: "b2", Name: "batch", Image: "python", State: StatePaused, Stats: stats(50, 100, 70, 20)},
		{ID: "d4", Name: "db", Image: "postgres", State: StateRunning, Stats: stats(5, 900, 40, 40)},
	})
	return r
}

func TestSort_Keys(t *testing.T) {
	tests := []struct {
		name     string
		cfg      SortConfig
		expected []ContainerID
	}{
		{"none keeps discovery order", SortConfig{}, []ContainerID{"c3", "a1", "b2", "d4"}},
		{"name ascending", SortConfig{Key: SortName}, []ContainerID{"a1", "b2", "c3", "d4"}},
		{"name descending", SortConfig{Key: SortName, Direction: Descending}, []ContainerID{"d4", "c3", "b2", "a1"}},
		{"state ranks running first", SortConfig{Key: SortState}, []ContainerID{"c3", "d4", "b2", "a1"}},
		{"cpu ties broken by id", SortConfig{Key: SortCPU, Direction: Descending}, []ContainerID{"b2", "c3", "d4", "a1"}},
		{"memory ascending", SortConfig{Key: SortMemory}, []ContainerID{"a1", "b2", "c3", "d4"}},
		{"id", SortConfig{Key: SortID}, []ContainerID{"a1", "b2", "c3", "d4"}},
		{"image", SortConfig{Key: SortImage}, []ContainerID{"a1", "d4", "b2", "c3"}},
		{"rx", SortConfig{Key: SortRX, Direction: Descending}, []ContainerID{"b2", "d4", "c3", "a1"}},
		{"tx", SortConfig{Key: SortTX}, []ContainerID{"a1", "b2", "d4", "c3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sortFixture()
			r.SetSort(tt.cfg)
			assert.Equal(t, tt.expected, r.IDs())
		})
	}
}

func TestSort_Deterministic(t *testing.T) {
	a := sortFixture()
	b := sortFixture()
	cfg := SortConfig{Key: SortCPU}
	a.SetSort(cfg)
	b.SetSort(cfg)
	assert.Equal(t, a.IDs(), b.IDs())
}

func TestSortConfig_Cycle(t *testing.T) {
	var cfg SortConfig

	cfg = cfg.next(SortCPU)
	assert.Equal(t, SortConfig{Key: SortCPU, Direction: Ascending}, cfg)
	cfg = cfg.next(SortCPU)
	assert.Equal(t, SortConfig{Key: SortCPU, Direction: Descending}, cfg)
	cfg = cfg.next(SortCPU)
	assert.True(t, cfg.IsNone())

	cfg = cfg.next(SortCPU).next(SortCPU).next(SortName)
	assert.Equal(t, SortConfig{Key: SortName, Direction: Ascending}, cfg, "a different key resets to ascending")

	assert.True(t, cfg.next(SortNone).IsNone())
}

func TestSortConfig_String(t *testing.T) {
	assert.Equal(t, "", SortConfig{}.String())
	assert.Equal(t, "cpu ▲", SortConfig{Key: SortCPU}.String())
	assert.Equal(t, "name ▼", SortConfig{Key: SortName, Direction: Descending}.String())
}

func TestStore_SortCycleRestoresOrder(t *testing.T) {
	s := NewStore(Options{})
	s.Registry.Reconcile([]Observed{
		{ID: "z", Name: "zulu"},
		{ID: "m", Name: "mike"},
		{ID: "a", Name: "alpha"},
	})
	before := s.Registry.IDs()

	s.SelectSort(SortName)
	assert.Equal(t, []ContainerID{"a", "m", "z"}, s.Registry.IDs())
	s.SelectSort(SortName)
	assert.Equal(t, []ContainerID{"z", "m", "a"}, s.Registry.IDs())
	cfg := s.SelectSort(SortName)
	assert.True(t, cfg.IsNone())
	assert.Equal(t, before, s.Registry.IDs())
	assert.Equal(t, s.Registry.Sort(), s.Snapshot().Sort)
}

func TestRegistry_SelectSort(t *testing.T) {
	r := NewRegistry(10)
	r.Reconcile([]Observed{
		{ID: "b", Name: "bravo", Image: "zz"},
		{ID: "a", Name: "alpha", Image: "aa"},
	})

	assert.Equal(t, SortConfig{Key: SortMemory}, r.SelectSort(SortMemory))
	assert.Equal(t, SortConfig{Key: SortMemory, Direction: Descending}, r.SelectSort(SortMemory))

	assert.Equal(t, SortConfig{Key: SortImage}, r.SelectSort(SortImage))
	assert.Equal(t, []ContainerID{"a", "b"}, r.IDs())

	assert.True(t, r.SelectSort(SortNone).IsNone())
	assert.True(t, r.Sort().IsNone())
}

func TestStore_SnapshotSortMatchesRowOrder(t *testing.T) {
	s := NewStore(Options{})
	s.Registry.Reconcile([]Observed{
		{ID: "a", Name: "alpha"},
		{ID: "b", Name: "bravo"},
	})

	// Sorting straight on the registry still shows in the snapshot.
	s.Registry.SelectSort(SortName)
	s.Registry.SelectSort(SortName)

	snap := s.Snapshot()
	assert.Equal(t, SortConfig{Key: SortName, Direction: Descending}, snap.Sort)
	assert.Equal(t, ContainerName("bravo"), snap.Rows[0].Name)
}
