package state

// HistorySize is the number of samples retained for every chart.
const HistorySize = 60

// ring is a fixed-size circular buffer.
type ring[T any] struct {
	data  []T
	head  int
	count int
}

func newRing[T any](size int) *ring[T] {
	if size <= 0 {
		size = HistorySize
	}
	return &ring[T]{data: make([]T, size)}
}

// push adds a value, overwriting the oldest once full.
func (r *ring[T]) push(v T) {
	r.data[r.head] = v
	r.head = (r.head + 1) % len(r.data)
	if r.count < len(r.data) {
		r.count++
	}
}

// values returns the retained values in chronological order (oldest first).
func (r *ring[T]) values() []T {
	if r.count == 0 {
		return nil
	}
	out := make([]T, r.count)
	start := (r.head - r.count + len(r.data)) % len(r.data)
	for i := 0; i < r.count; i++ {
		out[i] = r.data[(start+i)%len(r.data)]
	}
	return out
}

func (r *ring[T]) len() int { return r.count }

func (r *ring[T]) clone() *ring[T] {
	c := &ring[T]{data: make([]T, len(r.data)), head: r.head, count: r.count}
	copy(c.data, r.data)
	return c
}

// Series is a bounded history of float samples used for the CPU and memory
// sparklines.
type Series struct {
	r *ring[float64]
}

// NewSeries returns an empty series holding HistorySize samples.
func NewSeries() *Series {
	return &Series{r: newRing[float64](HistorySize)}
}

// Push appends a sample.
func (s *Series) Push(v float64) {
	if v < 0 {
		v = 0
	}
	s.r.push(v)
}

// Values returns the retained samples, oldest first.
func (s *Series) Values() []float64 {
	return s.r.values()
}

// Len returns the number of retained samples.
func (s *Series) Len() int {
	return s.r.len()
}

// Current returns the newest sample, or 0 if empty.
func (s *Series) Current() float64 {
	vals := s.r.values()
	if len(vals) == 0 {
		return 0
	}
	return vals[len(vals)-1]
}

// Max returns the largest retained sample.
func (s *Series) Max() float64 {
	var m float64
	for _, v := range s.r.values() {
		if v > m {
			m = v
		}
	}
	return m
}

// Clone returns an independent copy.
func (s *Series) Clone() *Series {
	return &Series{r: s.r.clone()}
}
