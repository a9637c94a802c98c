package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/dockmon/internal/config"
	"github.com/rileyhilliard/dockmon/internal/dashboard"
	"github.com/rileyhilliard/dockmon/internal/docker"
	"github.com/rileyhilliard/dockmon/internal/errors"
	"github.com/rileyhilliard/dockmon/internal/logger"
	"github.com/rileyhilliard/dockmon/internal/state"
	"github.com/rileyhilliard/dockmon/internal/syncer"
	"github.com/rileyhilliard/dockmon/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// runCommand loads the config, connects to the daemon and runs either the
// dashboard or the headless reporter until the user quits, a signal
// arrives or the fatal error countdown expires.
func runCommand(cmd *cobra.Command) error {
	cfg, path, err := config.LoadWithFlags(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if noGUIFlag {
		cfg.GUI = false
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	keys, err := config.NewKeymap(cfg.Keymap)
	if err != nil {
		return err
	}

	closeLog, err := setupLogging(logFile, debugFlag, cfg.GUI)
	if err != nil {
		return err
	}
	defer closeLog()

	log := logger.NewEnvLogger("[cli]")
	if path != "" {
		log.Info("loaded config from %s", path)
	}

	stdoutTTY := term.IsTerminal(int(os.Stdout.Fd()))
	lipgloss.SetColorProfile(colorProfile(cfg.Color, stdoutTTY, termenv.NewOutput(os.Stdout).EnvColorProfile()))

	daemon, err := docker.NewClient(cfg.Host, logger.NewEnvLogger("[docker]"))
	if err != nil {
		return err
	}
	host := daemon.Host()

	store := state.NewStore(state.Options{
		LogCapacity: cfg.LogBuffer,
		ScrollStep:  cfg.ScrollStep,
		Countdown:   state.DefaultCountdown,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		select {
		case <-ctx.Done():
			log.Info("signal received, shutting down")
			store.Shutdown.Signal()
		case <-store.Shutdown.Done():
		}
	}()

	loop, startErr := connect(ctx, daemon, store, cfg, host)
	if startErr == nil {
		go loop.Run(ctx)
	}

	if cfg.GUI {
		err = runDashboard(store, loop, keys, cfg, host)
	} else {
		err = newHeadless(store, os.Stdout, cfg.Interval).run(ctx)
	}

	store.Shutdown.Signal()
	if loop != nil {
		<-loop.Done()
	}

	if startErr != nil {
		return errors.WrapWithCode(startErr, errors.ErrDocker,
			"Unable to reach the docker daemon at "+host,
			"Check the daemon is running and that --host or DOCKER_HOST points at it.")
	}
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrExec,
			"dockmon stopped unexpectedly",
			"Run with --debug and check the log file for details.")
	}
	return nil
}

// connect pings the daemon behind a spinner when stderr is a terminal.
// On failure the store already holds the fatal error and its countdown.
func connect(ctx context.Context, daemon docker.Daemon, store *state.Store, cfg *config.Config, host string) (*syncer.Loop, error) {
	var spinner *ui.Spinner
	if term.IsTerminal(int(os.Stderr.Fd())) {
		spinner = ui.NewSpinner("Connecting to "+host, os.Stderr)
		spinner.Start()
	}

	loop, err := syncer.Start(ctx, daemon, store, syncer.Options{
		Interval:    cfg.Interval,
		ShowAll:     cfg.ShowAll,
		ShowStdErr:  cfg.ShowStdErr,
		LogCapacity: cfg.LogBuffer,
		SaveDir:     cfg.SaveDir,
	}, logger.NewEnvLogger("[syncer]"))

	if spinner != nil {
		spinner.Finish(err)
	}
	return loop, err
}

// runDashboard hands the terminal to the dashboard until it quits.
func runDashboard(store *state.Store, loop *syncer.Loop, keys *config.Keymap, cfg *config.Config, host string) error {
	var execs <-chan docker.Session
	if loop != nil {
		execs = loop.ExecSessions()
	}

	model := dashboard.New(store, dashboard.Options{
		Keymap:     keys,
		Execs:      execs,
		Host:       host,
		Timestamps: cfg.Timestamps,
		ColorLogs:  cfg.ColorLogs,
		ScrollStep: cfg.ScrollStep,
		Log:        logger.NewEnvLogger("[dashboard]"),
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// setupLogging points the shared logger at the log file, or at stderr for
// "-". The dashboard owns the terminal, so "-" is refused with the GUI.
func setupLogging(path string, debug, gui bool) (func(), error) {
	if path == "-" {
		if gui {
			return nil, errors.New(errors.ErrConfig,
				"Cannot log to stderr while the dashboard is running",
				"Use --log-file with a path, or add --no-gui.")
		}
		logger.SetupWriter(os.Stderr, debug)
		return func() {}, nil
	}

	if path == "" {
		path = config.DefaultLogFile()
	}
	closer, err := logger.Setup(config.ExpandTilde(path), debug)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Cannot open log file %s", path),
			"Pick a writable location with --log-file.")
	}
	return func() { closeQuietly(closer) }, nil
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}

// colorProfile resolves the color mode. "auto" follows the environment and
// drops color when stdout is not a terminal; "always" keeps at least 256
// colors even when the environment reports none.
func colorProfile(mode string, tty bool, env termenv.Profile) termenv.Profile {
	switch mode {
	case config.ColorNever:
		return termenv.Ascii
	case config.ColorAlways:
		if env == termenv.Ascii {
			return termenv.ANSI256
		}
		return env
	default:
		if !tty {
			return termenv.Ascii
		}
		return env
	}
}
