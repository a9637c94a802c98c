package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/rileyhilliard/dockmon/internal/state"
	"github.com/rileyhilliard/dockmon/internal/ui"
)

// headless prints a one-line summary per refresh instead of drawing the
// dashboard. Errors are printed once; recoverable ones are then cleared,
// a fatal one counts down to exit exactly like the dashboard.
type headless struct {
	store    *state.Store
	out      io.Writer
	interval time.Duration
	now      func() time.Time

	fatalShown bool
}

func newHeadless(store *state.Store, out io.Writer, interval time.Duration) *headless {
	return &headless{
		store:    store,
		out:      out,
		interval: interval,
		now:      time.Now,
	}
}

// run reports until ctx is done, shutdown is signalled or the fatal
// countdown expires.
func (h *headless) run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	countdown := time.NewTicker(time.Second)
	defer countdown.Stop()

	h.report()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.store.Shutdown.Done():
			return nil
		case <-ticker.C:
			h.report()
		case <-countdown.C:
			if h.tickCountdown() {
				h.store.Shutdown.Signal()
				return nil
			}
		}
	}
}

// report prints the pending error, if any, then the summary line.
func (h *headless) report() {
	snap := h.store.Snapshot()

	if e := snap.Error; e != nil {
		switch {
		case e.Kind.Fatal():
			if !h.fatalShown {
				h.fatalShown = true
				fmt.Fprintln(h.out, h.errorLine(*e))
			}
			return
		default:
			fmt.Fprintln(h.out, h.errorLine(*e))
			h.store.Errors.Clear()
		}
	}

	if !snap.Initialised() {
		return
	}
	fmt.Fprintln(h.out, h.summary(snap.Rows))
}

// tickCountdown advances the fatal countdown and reports whether it expired.
func (h *headless) tickCountdown() bool {
	if !h.store.Errors.IsFatal() {
		return false
	}
	if !h.fatalShown {
		h.report()
	}
	left, expired := h.store.Errors.TickCountdown()
	if !expired {
		fmt.Fprintln(h.out, ui.MutedStyle.Render(fmt.Sprintf("closing in %02d seconds", left)))
	}
	return expired
}

func (h *headless) errorLine(e state.AppError) string {
	parts := []string{e.Kind.String()}
	if e.Container != "" {
		parts = append(parts, string(e.Container))
	}
	if e.Kind == state.ErrDockerCommand {
		parts = append(parts, e.Command.String())
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return ui.ErrorStyle.Render(ui.SymbolFail) + " " + strings.Join(parts, ": ")
}

// summary aggregates the visible rows into one line.
func (h *headless) summary(rows []state.Row) string {
	var running, paused int
	var cpu float64
	var mem, rx, tx uint64
	for _, r := range rows {
		switch r.State {
		case state.StateRunning:
			running++
		case state.StatePaused:
			paused++
		}
		if r.HasStats {
			cpu += r.CPU
			mem += r.MemoryUsage
		}
		rx += r.RX
		tx += r.TX
	}

	counts := fmt.Sprintf("%d containers, %d running", len(rows), running)
	if paused > 0 {
		counts += fmt.Sprintf(", %d paused", paused)
	}

	return fmt.Sprintf("%s  %s  cpu %.2f%%  mem %s  ↓ %s  ↑ %s",
		ui.MutedStyle.Render(h.now().Format("15:04:05")),
		counts,
		cpu,
		units.BytesSize(float64(mem)),
		units.BytesSize(float64(rx)),
		units.BytesSize(float64(tx)),
	)
}
