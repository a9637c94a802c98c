package cli

import (
	"fmt"
	"io"

	"github.com/rileyhilliard/dockmon/internal/errors"
	"github.com/rileyhilliard/dockmon/internal/ui"
	"github.com/rileyhilliard/dockmon/pkg/sshutil"
	"github.com/spf13/cobra"
)

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "List SSH aliases usable as --host",
	Long: `List the concrete Host entries of ~/.ssh/config together with the
ssh:// endpoint to pass to --host.

Examples:
  dockmon hosts
  dockmon --host "$(dockmon hosts | awk '/prod/ {print $2}')"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		hosts, err := sshutil.ListHosts()
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrSSH,
				"Cannot read ~/.ssh/config",
				"Check the file exists and is readable.")
		}
		return printHosts(cmd.OutOrStdout(), hosts)
	},
}

func init() {
	rootCmd.AddCommand(hostsCmd)
}

func printHosts(w io.Writer, hosts []sshutil.HostEntry) error {
	if len(hosts) == 0 {
		_, err := fmt.Fprintln(w, ui.MutedStyle.Render("No hosts found in ~/.ssh/config"))
		return err
	}

	rows := make([][]string, 0, len(hosts))
	for _, h := range hosts {
		key := ui.SymbolFail
		if h.HasKey() {
			key = ui.SymbolSuccess
		}
		rows = append(rows, []string{h.Alias, h.DockerURL(), h.Description(), key})
	}

	columns := []ui.TableColumn{
		{Title: "ALIAS", Width: 5},
		{Title: "HOST", Width: 4},
		{Title: "TARGET", Width: 6},
		{Title: "KEY", Width: 3},
	}
	_, err := fmt.Fprintln(w, ui.RenderSimpleTable(columns, rows))
	return err
}
