package state

// BandwidthCapacity is the number of throughput samples retained.
const BandwidthCapacity = HistorySize

// Point is one (index, rate) pair of a bandwidth dataset.
type Point struct {
	Index int
	Rate  uint64
}

// NetworkBandwidth turns cumulative byte counters into a bounded series of
// per-tick deltas.
type NetworkBandwidth struct {
	samples *ring[uint64]
	last    uint64
	current uint64
	max     uint64
}

// NewNetworkBandwidth returns an empty sampler.
func NewNetworkBandwidth() *NetworkBandwidth {
	return &NetworkBandwidth{samples: newRing[uint64](BandwidthCapacity)}
}

// Push records a cumulative counter value. The first push is measured
// against zero. A counter that went backwards (container restart) records 0.
func (b *NetworkBandwidth) Push(cumulative uint64) {
	var delta uint64
	if cumulative > b.last {
		delta = cumulative - b.last
	}
	b.last = cumulative
	b.samples.push(delta)
	b.current = delta

	b.max = 0
	for _, v := range b.samples.values() {
		if v > b.max {
			b.max = v
		}
	}
}

// Dataset returns the retained samples as (index, rate) points, oldest first.
func (b *NetworkBandwidth) Dataset() []Point {
	vals := b.samples.values()
	out := make([]Point, len(vals))
	for i, v := range vals {
		out[i] = Point{Index: i, Rate: v}
	}
	return out
}

// Rates returns the retained samples, oldest first.
func (b *NetworkBandwidth) Rates() []uint64 {
	return b.samples.values()
}

// Len returns the number of retained samples.
func (b *NetworkBandwidth) Len() int {
	return b.samples.len()
}

// Current returns the most recent delta.
func (b *NetworkBandwidth) Current() uint64 {
	return b.current
}

// Max returns the largest delta in the retained window.
func (b *NetworkBandwidth) Max() uint64 {
	return b.max
}

// Clone returns an independent copy.
func (b *NetworkBandwidth) Clone() *NetworkBandwidth {
	return &NetworkBandwidth{
		samples: b.samples.clone(),
		last:    b.last,
		current: b.current,
		max:     b.max,
	}
}
