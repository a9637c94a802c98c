package docker

import (
	"testing"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeStats(t *testing.T) {
	var s types.StatsJSON
	s.Read = time.Unix(1700000000, 0)
	s.CPUStats.CPUUsage.TotalUsage = 150
	s.CPUStats.SystemUsage = 2000
	s.CPUStats.OnlineCPUs = 2
	s.MemoryStats.Usage = 1000
	s.MemoryStats.Limit = 4000
	s.MemoryStats.Stats = map[string]uint64{"inactive_file": 300}
	s.Networks = map[string]types.NetworkStats{
		"eth0": {RxBytes: 10, TxBytes: 20},
		"eth1": {RxBytes: 5, TxBytes: 1},
	}

	got := normalizeStats(s)

	assert.Equal(t, s.Read, got.Read)
	assert.Equal(t, uint64(150), got.CPUTotal)
	assert.Equal(t, uint64(2000), got.SystemCPU)
	assert.Equal(t, uint32(2), got.OnlineCPUs)
	assert.Equal(t, uint64(700), got.MemoryUsage, "inactive file cache is excluded")
	assert.Equal(t, uint64(4000), got.MemoryLimit)
	assert.Equal(t, uint64(15), got.RX)
	assert.Equal(t, uint64(21), got.TX)
}

func TestNormalizeStats_PerCPUFallback(t *testing.T) {
	var s types.StatsJSON
	s.CPUStats.CPUUsage.PercpuUsage = []uint64{1, 2, 3, 4}

	got := normalizeStats(s)
	assert.Equal(t, uint32(4), got.OnlineCPUs)
	assert.False(t, got.Read.IsZero())
}

func TestMemoryUsage(t *testing.T) {
	tests := []struct {
		name  string
		stats types.MemoryStats
		want  uint64
	}{
		{
			name:  "cgroup v1",
			stats: types.MemoryStats{Usage: 500, Stats: map[string]uint64{"total_inactive_file": 100}},
			want:  400,
		},
		{
			name:  "cgroup v2",
			stats: types.MemoryStats{Usage: 500, Stats: map[string]uint64{"inactive_file": 50}},
			want:  450,
		},
		{
			name:  "cache larger than usage",
			stats: types.MemoryStats{Usage: 500, Stats: map[string]uint64{"inactive_file": 900}},
			want:  500,
		},
		{
			name:  "no breakdown",
			stats: types.MemoryStats{Usage: 500},
			want:  500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, memoryUsage(tt.stats))
		})
	}
}

func TestCPUPercent(t *testing.T) {
	tests := []struct {
		name string
		prev StatsSample
		cur  StatsSample
		want float64
	}{
		{
			name: "two cpus",
			prev: StatsSample{CPUTotal: 100, SystemCPU: 100},
			cur:  StatsSample{CPUTotal: 150, SystemCPU: 200, OnlineCPUs: 2},
			want: 100,
		},
		{
			name: "single cpu quarter load",
			prev: StatsSample{CPUTotal: 0, SystemCPU: 0},
			cur:  StatsSample{CPUTotal: 25, SystemCPU: 100, OnlineCPUs: 1},
			want: 25,
		},
		{
			name: "unknown cpu count treated as one",
			prev: StatsSample{CPUTotal: 0, SystemCPU: 0},
			cur:  StatsSample{CPUTotal: 10, SystemCPU: 100},
			want: 10,
		},
		{
			name: "counter reset",
			prev: StatsSample{CPUTotal: 500, SystemCPU: 100},
			cur:  StatsSample{CPUTotal: 10, SystemCPU: 200, OnlineCPUs: 1},
			want: 0,
		},
		{
			name: "no system progress",
			prev: StatsSample{CPUTotal: 100, SystemCPU: 100},
			cur:  StatsSample{CPUTotal: 120, SystemCPU: 100, OnlineCPUs: 1},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CPUPercent(tt.prev, tt.cur), 0.0001)
		})
	}
}
