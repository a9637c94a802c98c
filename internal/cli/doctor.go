package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/dockmon/internal/config"
	"github.com/rileyhilliard/dockmon/internal/doctor"
	"github.com/rileyhilliard/dockmon/internal/errors"
	"github.com/rileyhilliard/dockmon/internal/ui"
	"github.com/spf13/cobra"
)

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose config, daemon and SSH problems",
	Long: `Run diagnostic checks: the config file and its values, whether the
daemon answers, SSH prerequisites for ssh:// hosts, and the log and
save directories.

Exits non-zero when any check fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand(cmd.OutOrStdout())
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(doctorCmd)
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	AllClear bool `json:"all_clear"`
}

func doctorCommand(w io.Writer) error {
	checks := collectChecks()
	results := doctor.RunAllParallel(checks)

	var err error
	if doctorJSON {
		err = outputDoctorJSON(w, checks, results)
	} else {
		err = outputDoctorText(w, checks, results)
	}
	if err != nil {
		return err
	}

	if doctor.HasFailures(results) {
		return errors.New(errors.ErrConfig,
			doctor.Summary(results),
			"Fix the failing checks above and run 'dockmon doctor' again.")
	}
	return nil
}

// collectChecks builds the checks for the effective config. A config that
// fails to load still gets the config checks, which report why.
func collectChecks() []doctor.Check {
	checks := doctor.NewConfigChecks(cfgFile)

	cfg, _, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	checks = append(checks, &doctor.DaemonCheck{Host: cfg.Host})
	checks = append(checks, doctor.NewSSHChecks(cfg.Host)...)

	path := logFile
	if path == "" {
		path = config.DefaultLogFile()
	}
	checks = append(checks, doctor.NewFileChecks(path, cfg.SaveDir)...)
	return checks
}

func outputDoctorJSON(w io.Writer, checks []doctor.Check, results []doctor.CheckResult) error {
	grouped := doctor.GroupByCategory(checks)
	output := DoctorOutput{}

	for _, cat := range doctor.Categories {
		indices := grouped[cat]
		if len(indices) == 0 {
			continue
		}
		co := CategoryOutput{Name: cat}
		for _, idx := range indices {
			co.Results = append(co.Results, results[idx])
		}
		output.Categories = append(output.Categories, co)
	}

	counts := doctor.CountByStatus(results)
	output.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		AllClear: !doctor.HasIssues(results),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func outputDoctorText(w io.Writer, checks []doctor.Check, results []doctor.CheckResult) error {
	headerStyle := lipgloss.NewStyle().Bold(true)

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("dockmon diagnostic report"))
	fmt.Fprintln(w)

	grouped := doctor.GroupByCategory(checks)
	for _, cat := range doctor.Categories {
		indices := grouped[cat]
		if len(indices) == 0 {
			continue
		}
		fmt.Fprintln(w, headerStyle.Render(cat))
		for _, idx := range indices {
			renderCheckResult(w, results[idx])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("━", 60))
	fmt.Fprintln(w)

	if doctor.HasIssues(results) {
		fmt.Fprintf(w, "%s %s\n", ui.ErrorStyle.Render(ui.SymbolFail), doctor.Summary(results))
	} else {
		fmt.Fprintf(w, "%s %s\n", ui.SuccessStyle.Render(ui.SymbolSuccess), doctor.Summary(results))
	}
	fmt.Fprintln(w)
	return nil
}

func renderCheckResult(w io.Writer, result doctor.CheckResult) {
	var symbol string
	var style lipgloss.Style

	switch result.Status {
	case doctor.StatusPass:
		symbol, style = ui.SymbolSuccess, ui.SuccessStyle
	case doctor.StatusWarn:
		symbol, style = ui.SymbolSuccess, ui.WarningStyle
	case doctor.StatusSkip:
		symbol, style = ui.SymbolSkipped, ui.MutedStyle
	default:
		symbol, style = ui.SymbolFail, ui.ErrorStyle
	}

	fmt.Fprintf(w, "  %s %s\n", style.Render(symbol), result.Message)

	if result.Suggestion != "" && result.Status != doctor.StatusPass {
		for _, line := range strings.Split(result.Suggestion, "\n") {
			fmt.Fprintf(w, "    %s\n", ui.MutedStyle.Render(line))
		}
	}
}
