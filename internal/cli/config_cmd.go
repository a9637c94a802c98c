package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/dockmon/internal/config"
	"github.com/rileyhilliard/dockmon/internal/docker"
	"github.com/rileyhilliard/dockmon/internal/errors"
	"github.com/rileyhilliard/dockmon/internal/logger"
	"github.com/rileyhilliard/dockmon/internal/ui"
	"github.com/rileyhilliard/dockmon/pkg/sshutil"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// probeTimeout bounds the connection test in config init.
const probeTimeout = 10 * time.Second

// Command-specific flags
var (
	configInitHost   string
	configInitGlobal bool
	configInitForce  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or inspect the dockmon config",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file with the defaults",
	Long: `Write a commented config file with every key at its default.

Without --host, an interactive prompt offers the local daemon and the
aliases found in ~/.ssh/config, then tests the connection.

Examples:
  dockmon config init
  dockmon config init --global
  dockmon config init --host ssh://deploy@prod --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(InitOptions{
			Host:           configInitHost,
			Global:         configInitGlobal,
			Overwrite:      configInitForce,
			NonInteractive: configInitHost != "" || !term.IsTerminal(int(os.Stdin.Fd())),
			Out:            cmd.OutOrStdout(),
		})
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration dockmon would run with: the config file found
by the search order, DOCKMON_* environment overrides and defaults.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := config.LoadOrDefault(cfgFile)
		if err != nil {
			return err
		}
		return showConfig(cmd.OutOrStdout(), cfg, path)
	},
}

func init() {
	configInitCmd.Flags().StringVar(&configInitHost, "host", "", "daemon endpoint to write (skips the prompt)")
	configInitCmd.Flags().BoolVar(&configInitGlobal, "global", false, "write the global config instead of ./"+config.ConfigFileName)
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing config")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

// InitOptions holds options for config init.
type InitOptions struct {
	Host           string // Daemon endpoint, prompted for when empty
	Global         bool   // Write the global config file
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts and the connection test
	Out            io.Writer
}

// Init writes a new config file.
func Init(opts InitOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	path := filepath.Join(".", config.ConfigFileName)
	if opts.Global {
		path = config.GlobalConfigPath()
		if path == "" {
			return errors.New(errors.ErrConfig,
				"Cannot determine the global config location",
				"Set XDG_CONFIG_HOME or HOME, or write a local config without --global.")
		}
	}

	if _, err := os.Stat(path); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", path),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", path)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(opts.Out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	cfg.Host = opts.Host

	if !opts.NonInteractive {
		host, err := pickHost()
		if err != nil {
			return err
		}
		cfg.Host = host

		if !probeHost(cfg.Host, opts.Out) {
			var saveAnyway bool
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title("Save config anyway? (You can fix the connection later)").
						Value(&saveAnyway),
				),
			)
			if err := form.Run(); err != nil || !saveAnyway {
				return errors.New(errors.ErrDocker,
					"Connection test failed, config not written",
					"Check the daemon is reachable, then run 'dockmon config init' again.")
			}
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.WriteFile(path, cfg, true); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", path),
			"Check directory permissions")
	}

	fmt.Fprintf(opts.Out, "%s Created %s\n", ui.SuccessStyle.Render(ui.SymbolSuccess), path)
	return nil
}

// localDaemon is the select option for the default endpoint.
const localDaemon = "local daemon (DOCKER_HOST or the default socket)"

// pickHost asks which daemon to use. An empty result means the default.
func pickHost() (string, error) {
	hosts, err := sshutil.ListHosts()
	if err != nil {
		logger.Default().Warn("reading ssh config: %v", err)
	}

	options := []huh.Option[string]{huh.NewOption(localDaemon, "")}
	for _, h := range hosts {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", h.Alias, h.Description()), h.DockerURL()))
	}

	var host string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which docker daemon should dockmon watch?").
				Options(options...).
				Value(&host),
		),
	)
	if err := form.Run(); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Pass the daemon with --host instead")
	}
	return host, nil
}

// probeHost pings the daemon behind a spinner and reports success.
func probeHost(host string, out io.Writer) bool {
	label := "Testing connection to " + host
	if host == "" {
		label = "Testing connection to the local daemon"
	}
	spinner := ui.NewSpinner(label, out)
	spinner.Start()

	client, err := docker.NewClient(host, logger.Default())
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		err = client.Ping(ctx)
		cancel()
		closeQuietly(client)
	}

	spinner.Finish(err)
	if err != nil {
		fmt.Fprintf(out, "\n  %s\n\n", ui.MutedStyle.Render(err.Error()))
		return false
	}
	return true
}

// showConfig prints cfg as aligned key/value lines.
func showConfig(w io.Writer, cfg *config.Config, path string) error {
	source := path
	if source == "" {
		source = "defaults (no config file found)"
	}
	host := cfg.Host
	if host == "" {
		host = "(default socket)"
	}

	pairs := []ui.KeyValue{
		{Key: "source", Value: source},
		{Key: "host", Value: host},
		{Key: "interval", Value: cfg.Interval.String()},
		{Key: "show_all", Value: fmt.Sprint(cfg.ShowAll)},
		{Key: "timestamps", Value: fmt.Sprint(cfg.Timestamps)},
		{Key: "show_std_err", Value: fmt.Sprint(cfg.ShowStdErr)},
		{Key: "color", Value: cfg.Color},
		{Key: "color_logs", Value: fmt.Sprint(cfg.ColorLogs)},
		{Key: "save_dir", Value: cfg.SaveDir},
		{Key: "log_buffer", Value: fmt.Sprint(cfg.LogBuffer)},
		{Key: "scroll_step", Value: fmt.Sprint(cfg.ScrollStep)},
		{Key: "gui", Value: fmt.Sprint(cfg.GUI)},
	}

	names := make([]string, 0, len(cfg.Keymap))
	for action := range cfg.Keymap {
		names = append(names, action)
	}
	sort.Strings(names)
	for _, action := range names {
		pairs = append(pairs, ui.KeyValue{
			Key:   "keymap." + action,
			Value: strings.Join(cfg.Keymap[action], ", "),
		})
	}

	_, err := fmt.Fprint(w, ui.RenderKeyValues(pairs))
	return err
}
