package syncer

import (
	"context"
	"sync"

	"github.com/rileyhilliard/dockmon/internal/docker"
	"github.com/rileyhilliard/dockmon/internal/state"
)

// sampleCache keeps the previous stats sample per container so CPU usage
// can be computed from one-shot reads.
type sampleCache struct {
	mu   sync.Mutex
	prev map[state.ContainerID]docker.StatsSample
}

func newSampleCache() *sampleCache {
	return &sampleCache{prev: make(map[state.ContainerID]docker.StatsSample)}
}

// observe stores cur and returns the CPU percentage since the previous
// sample. The first sample of a container reports 0.
func (c *sampleCache) observe(id state.ContainerID, cur docker.StatsSample) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, ok := c.prev[id]
	c.prev[id] = cur
	if !ok {
		return 0
	}
	return docker.CPUPercent(prev, cur)
}

// retain drops samples for containers not in keep.
func (c *sampleCache) retain(keep map[state.ContainerID]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range c.prev {
		if !keep[id] {
			delete(c.prev, id)
		}
	}
}

// tick runs one list, stats, reconcile and logs pass.
func (l *Loop) tick(ctx context.Context) {
	if l.stopping(ctx) {
		return
	}

	listCtx, cancel := context.WithTimeout(ctx, l.opts.CallTimeout)
	list, err := l.daemon.ListContainers(listCtx, l.opts.ShowAll)
	cancel()
	if err != nil {
		if l.stopping(ctx) {
			return
		}
		l.log.Warn("list containers: %v", err)
		l.store.Errors.Set(state.AppError{Kind: state.ErrDockerList, Err: err})
		return
	}

	observed := l.collectStats(ctx, list)
	if l.stopping(ctx) {
		return
	}

	res := l.store.Registry.Reconcile(observed)
	for _, id := range res.Removed {
		delete(l.logStates, id)
	}
	if len(res.Added) > 0 || len(res.Removed) > 0 {
		l.log.Debug("reconciled: %d added, %d removed", len(res.Added), len(res.Removed))
	}
	l.store.View.SetStatus(state.StatusInit, false)

	l.fetchLogs(ctx)
}

// collectStats samples every running or paused container on the fetch
// pool. A failed sample leaves that container's Stats nil and nothing else.
func (l *Loop) collectStats(ctx context.Context, list []docker.Summary) []state.Observed {
	observed := make([]state.Observed, len(list))
	keep := make(map[state.ContainerID]bool, len(list))

	group := l.fetchPool.Group()
	for i, s := range list {
		observed[i] = state.Observed{
			ID:      s.ID,
			Name:    s.Name,
			Image:   s.Image,
			State:   s.State,
			Status:  s.Status,
			Created: s.Created,
		}
		if s.State != state.StateRunning && s.State != state.StatePaused {
			// Stopped containers use nothing; zeros keep the charts honest.
			observed[i].Stats = &state.Stats{}
			continue
		}
		keep[s.ID] = true

		i, id := i, s.ID // per-iteration copies for pre-Go 1.22 loop semantics
		group.Submit(func() {
			if l.stopping(ctx) {
				return
			}
			callCtx, cancel := context.WithTimeout(ctx, l.opts.CallTimeout)
			defer cancel()

			sample, err := l.daemon.Stats(callCtx, id)
			if err != nil {
				l.log.Debug("stats %s: %v", id.Short(), err)
				return
			}
			observed[i].Stats = &state.Stats{
				CPUPercent:  l.samples.observe(id, sample),
				MemoryUsage: sample.MemoryUsage,
				MemoryLimit: sample.MemoryLimit,
				RX:          sample.RX,
				TX:          sample.TX,
			}
		})
	}
	group.Wait()

	l.samples.retain(keep)
	return observed
}

// fetchLogs pulls new lines for running containers. Any other container is
// fetched once when first seen and once more after it stops running, which
// picks up whatever it printed between the last tick and its exit.
func (l *Loop) fetchLogs(ctx context.Context) {
	group := l.fetchPool.Group()
	for _, t := range l.store.Registry.LogTargets() {
		prev, seen := l.logStates[t.ID]
		l.logStates[t.ID] = t.State
		if seen && t.State != state.StateRunning && prev != state.StateRunning {
			continue
		}

		t := t // per-iteration copy for pre-Go 1.22 loop semantics
		opts := docker.LogOptions{Since: t.Since, Stderr: l.opts.ShowStdErr}
		if t.Since.IsZero() {
			opts.Tail = l.opts.LogCapacity
		}

		group.Submit(func() {
			if l.stopping(ctx) {
				return
			}
			callCtx, cancel := context.WithTimeout(ctx, l.opts.CallTimeout)
			defer cancel()

			lines, err := l.daemon.Logs(callCtx, t.ID, opts)
			if err != nil {
				if l.stopping(ctx) {
					return
				}
				// A container removed since the list is not worth a popup.
				if _, ok := l.store.Registry.Name(t.ID); ok {
					l.store.Errors.Set(state.AppError{Kind: state.ErrDockerLogs, Err: err, Container: t.Name})
				}
				return
			}
			if len(lines) > 0 {
				l.store.Registry.AppendLogs(t.ID, lines)
			}
		})
	}
	group.Wait()
}
