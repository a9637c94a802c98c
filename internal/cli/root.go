package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rileyhilliard/dockmon/internal/config"
	"github.com/rileyhilliard/dockmon/internal/errors"
	"github.com/rileyhilliard/dockmon/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile   string
	debugFlag bool
	logFile   string
	noGUIFlag bool
)

// rootCmd runs the dashboard when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "dockmon",
	Short: "Terminal dashboard for Docker containers",
	Long: `dockmon shows the containers of one Docker daemon with live CPU, memory
and network usage, follows their logs and runs lifecycle commands
(start, stop, pause, restart, delete), exec and inspect from the keyboard.

The daemon can be local (unix socket, named pipe), remote over TCP, or
remote over SSH using an alias from ~/.ssh/config.

Examples:
  dockmon
  dockmon --host ssh://deploy@prod
  dockmon --interval 2s --timestamps
  dockmon --no-gui`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./.dockmon.yaml, then ~/.config/dockmon/config.yaml)")
	pf.BoolVar(&debugFlag, "debug", false, "log at debug level")
	pf.StringVar(&logFile, "log-file", "", "log file, or - for stderr (default $XDG_STATE_HOME/dockmon/dockmon.log)")

	def := config.DefaultConfig()
	f := rootCmd.Flags()
	f.String("host", "", "daemon endpoint: unix://, tcp://, npipe:// or ssh://user@host")
	f.Duration("interval", def.Interval, "refresh interval (e.g. 500ms, 2s)")
	f.Bool("all", def.ShowAll, "include stopped containers")
	f.Bool("timestamps", def.Timestamps, "prefix log lines with their timestamp")
	f.String("color", def.Color, "color output: auto, always or never")
	f.Bool("color-logs", def.ColorLogs, "keep ANSI colors found in container logs")
	f.String("save-dir", "", "directory for saved logs (default ~)")
	f.Int("log-buffer", def.LogBuffer, "log lines kept per container")
	f.Int("scroll-step", def.ScrollStep, "lines moved per log scroll")
	f.BoolVar(&noGUIFlag, "no-gui", false, "run without the dashboard, printing a summary per refresh")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError renders err for the terminal. Structured errors carry their
// own layout; anything else gets the failure symbol.
func printError(w io.Writer, err error) {
	if isUnknownCommandError(err) {
		if name := extractUnknownCommand(err); name != "" {
			fmt.Fprintf(w, "%s Unknown command %q\n\n  Run 'dockmon --help' to see what's available.\n",
				ui.ErrorStyle.Render(ui.SymbolFail), name)
			return
		}
		fmt.Fprintf(w, "%s %s\n\n  Run 'dockmon --help' for usage.\n", ui.ErrorStyle.Render(ui.SymbolFail), err)
		return
	}

	var dmErr *errors.Error
	if stderrors.As(err, &dmErr) {
		fmt.Fprint(w, dmErr.Error())
		return
	}
	fmt.Fprintf(w, "%s %s\n", ui.ErrorStyle.Render(ui.SymbolFail), err)
}

// isUnknownCommandError reports whether cobra rejected the command line.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// extractUnknownCommand pulls the quoted command name out of cobra's
// `unknown command "foo" for "dockmon"` message.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
