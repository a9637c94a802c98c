package docker

import (
	"time"

	"github.com/docker/docker/api/types"
)

// cgroup v1 and v2 report the reclaimable page cache under different keys.
var inactiveFileKeys = []string{"total_inactive_file", "inactive_file"}

// normalizeStats flattens the Engine stats document into a StatsSample.
func normalizeStats(s types.StatsJSON) StatsSample {
	cpus := s.CPUStats.OnlineCPUs
	if cpus == 0 {
		cpus = uint32(len(s.CPUStats.CPUUsage.PercpuUsage))
	}

	var rx, tx uint64
	for _, n := range s.Networks {
		rx += n.RxBytes
		tx += n.TxBytes
	}

	read := s.Read
	if read.IsZero() {
		read = time.Now()
	}

	return StatsSample{
		Read:        read,
		CPUTotal:    s.CPUStats.CPUUsage.TotalUsage,
		SystemCPU:   s.CPUStats.SystemUsage,
		OnlineCPUs:  cpus,
		MemoryUsage: memoryUsage(s.MemoryStats),
		MemoryLimit: s.MemoryStats.Limit,
		RX:          rx,
		TX:          tx,
	}
}

// memoryUsage matches what `docker stats` shows: usage minus the inactive
// file cache, which the kernel can reclaim.
func memoryUsage(m types.MemoryStats) uint64 {
	for _, k := range inactiveFileKeys {
		if v, ok := m.Stats[k]; ok && v < m.Usage {
			return m.Usage - v
		}
	}
	return m.Usage
}

// CPUPercent computes usage between two samples of the same container.
// Counters that went backwards (container restarted) give 0.
func CPUPercent(prev, cur StatsSample) float64 {
	if cur.CPUTotal < prev.CPUTotal || cur.SystemCPU <= prev.SystemCPU {
		return 0
	}
	cpuDelta := float64(cur.CPUTotal - prev.CPUTotal)
	sysDelta := float64(cur.SystemCPU - prev.SystemCPU)

	cpus := float64(cur.OnlineCPUs)
	if cpus == 0 {
		cpus = 1
	}
	return cpuDelta / sysDelta * cpus * 100
}
