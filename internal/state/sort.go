package state

import (
	"sort"
	"strings"
)

// SortKey selects the column containers are ordered by.
type SortKey int

const (
	SortNone SortKey = iota
	SortName
	SortState
	SortStatus
	SortCPU
	SortMemory
	SortID
	SortImage
	SortRX
	SortTX
)

// String returns the column label for the key.
func (k SortKey) String() string {
	switch k {
	case SortName:
		return "name"
	case SortState:
		return "state"
	case SortStatus:
		return "status"
	case SortCPU:
		return "cpu"
	case SortMemory:
		return "memory"
	case SortID:
		return "id"
	case SortImage:
		return "image"
	case SortRX:
		return "rx"
	case SortTX:
		return "tx"
	default:
		return "none"
	}
}

// Direction is the sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// SortConfig is the active sort. The zero value means no sort: containers
// appear in discovery order.
type SortConfig struct {
	Key       SortKey
	Direction Direction
}

// IsNone reports whether no sort key is active.
func (c SortConfig) IsNone() bool {
	return c.Key == SortNone
}

// String renders the config for the header, e.g. "cpu ▼".
func (c SortConfig) String() string {
	if c.IsNone() {
		return ""
	}
	if c.Direction == Descending {
		return c.Key.String() + " ▼"
	}
	return c.Key.String() + " ▲"
}

// next returns the config after key is selected: the same key cycles
// ascending, descending, none; a different key starts ascending.
func (c SortConfig) next(key SortKey) SortConfig {
	if key == SortNone {
		return SortConfig{}
	}
	if c.Key != key {
		return SortConfig{Key: key, Direction: Ascending}
	}
	if c.Direction == Ascending {
		return SortConfig{Key: key, Direction: Descending}
	}
	return SortConfig{}
}

// compareBy returns <0, 0, >0 comparing a and b on the key alone.
func compareBy(key SortKey, a, b *Container) int {
	switch key {
	case SortName:
		return strings.Compare(strings.ToLower(string(a.Name)), strings.ToLower(string(b.Name)))
	case SortState:
		return a.State.rank() - b.State.rank()
	case SortStatus:
		return strings.Compare(a.Status, b.Status)
	case SortCPU:
		return cmpOrdered(a.CPU, b.CPU)
	case SortMemory:
		return cmpOrdered(a.MemoryUsage, b.MemoryUsage)
	case SortID:
		return strings.Compare(string(a.ID), string(b.ID))
	case SortImage:
		return strings.Compare(string(a.Image), string(b.Image))
	case SortRX:
		return cmpOrdered(a.RX.Current(), b.RX.Current())
	case SortTX:
		return cmpOrdered(a.TX.Current(), b.TX.Current())
	default:
		return cmpOrdered(a.seq, b.seq)
	}
}

func cmpOrdered[T int | uint64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// orderContainers derives the display order from the mapping and config.
// Ties are broken by id, ascending, regardless of direction.
func orderContainers(containers map[ContainerID]*Container, cfg SortConfig) []ContainerID {
	list := make([]*Container, 0, len(containers))
	for _, c := range containers {
		list = append(list, c)
	}

	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		c := compareBy(cfg.Key, a, b)
		if cfg.Direction == Descending && !cfg.IsNone() {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})

	ids := make([]ContainerID, len(list))
	for i, c := range list {
		ids[i] = c.ID
	}
	return ids
}
