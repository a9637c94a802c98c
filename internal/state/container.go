package state

import "time"

// Stats is the normalised resource usage of one container for one tick.
type Stats struct {
	CPUPercent  float64
	MemoryUsage uint64
	MemoryLimit uint64
	// RX and TX are cumulative byte counters summed over all interfaces.
	RX uint64
	TX uint64
}

// Observed is one container as reported by the daemon during a tick.
// A nil Stats means the stats fetch failed for this container only.
type Observed struct {
	ID      ContainerID
	Name    ContainerName
	Image   ContainerImage
	State   State
	Status  string
	Created time.Time
	Stats   *Stats
}

// Container is a registry entry.
type Container struct {
	ID      ContainerID
	Name    ContainerName
	Image   ContainerImage
	State   State
	Status  string
	Created time.Time

	CPU         float64
	MemoryUsage uint64
	MemoryLimit uint64
	// HasStats is false until the first successful stats fetch.
	HasStats bool

	RX         *NetworkBandwidth
	TX         *NetworkBandwidth
	CPUHistory *Series
	MemHistory *Series
	Logs       *LogBuffer

	// LastLogTime is the newest log timestamp seen, used to fetch logs
	// incrementally.
	LastLogTime time.Time

	seq uint64
}

func newContainer(o Observed, seq uint64, logCapacity int) *Container {
	c := &Container{
		ID:         o.ID,
		Created:    o.Created,
		RX:         NewNetworkBandwidth(),
		TX:         NewNetworkBandwidth(),
		CPUHistory: NewSeries(),
		MemHistory: NewSeries(),
		Logs:       NewLogBuffer(logCapacity),
		seq:        seq,
	}
	c.update(o)
	return c
}

// update applies the mutable fields of an observation. Identity-stable
// fields (logs, creation time, bandwidth windows) are left alone.
func (c *Container) update(o Observed) {
	c.Name = o.Name
	c.Image = o.Image
	c.State = o.State
	c.Status = o.Status

	if o.Stats == nil {
		return
	}
	c.HasStats = true
	c.CPU = o.Stats.CPUPercent
	c.MemoryUsage = o.Stats.MemoryUsage
	c.MemoryLimit = o.Stats.MemoryLimit
	c.CPUHistory.Push(o.Stats.CPUPercent)
	c.MemHistory.Push(float64(o.Stats.MemoryUsage))
	c.RX.Push(o.Stats.RX)
	c.TX.Push(o.Stats.TX)
}

// Clone returns a deep copy safe to hand to the renderer.
func (c *Container) Clone() *Container {
	out := *c
	out.RX = c.RX.Clone()
	out.TX = c.TX.Clone()
	out.CPUHistory = c.CPUHistory.Clone()
	out.MemHistory = c.MemHistory.Clone()
	out.Logs = c.Logs.Clone()
	return &out
}

// Row is the flat summary of a container used for the list table.
type Row struct {
	ID          ContainerID
	Name        ContainerName
	Image       ContainerImage
	State       State
	Status      string
	Created     time.Time
	CPU         float64
	MemoryUsage uint64
	MemoryLimit uint64
	HasStats    bool
	RX          uint64
	TX          uint64
}

func (c *Container) row() Row {
	return Row{
		ID:          c.ID,
		Name:        c.Name,
		Image:       c.Image,
		State:       c.State,
		Status:      c.Status,
		Created:     c.Created,
		CPU:         c.CPU,
		MemoryUsage: c.MemoryUsage,
		MemoryLimit: c.MemoryLimit,
		HasStats:    c.HasStats,
		RX:          c.RX.Current(),
		TX:          c.TX.Current(),
	}
}
