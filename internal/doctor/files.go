package doctor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/dockmon/internal/config"
)

// LogFileCheck verifies the log file's directory can be created and
// written.
type LogFileCheck struct {
	Path string
}

func (c *LogFileCheck) Name() string     { return "log_file" }
func (c *LogFileCheck) Category() string { return "FILES" }

func (c *LogFileCheck) Run() CheckResult {
	if c.Path == "-" {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "Logging to stderr",
		}
	}

	path := config.ExpandTilde(c.Path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot create log directory %s", dir),
			Suggestion: "Pick a writable location with --log-file",
		}
	}

	probe, err := os.CreateTemp(dir, ".dockmon-doctor-*")
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Log directory %s is not writable", dir),
			Suggestion: "Pick a writable location with --log-file",
		}
	}
	probe.Close()           //nolint:errcheck // Probe only
	os.Remove(probe.Name()) //nolint:errcheck // Probe only

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Log file: %s", path),
	}
}

// SaveDirCheck verifies saved logs have somewhere to go.
type SaveDirCheck struct {
	Dir string
}

func (c *SaveDirCheck) Name() string     { return "save_dir" }
func (c *SaveDirCheck) Category() string { return "FILES" }

func (c *SaveDirCheck) Run() CheckResult {
	dir := config.ExpandTilde(c.Dir)
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Save directory %s does not exist yet", dir),
			Suggestion: "It is created on the first save; check the parent is writable",
		}
	case err != nil:
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Cannot access save directory %s", dir),
			Suggestion: "Check permissions or change save_dir",
		}
	case !info.IsDir():
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Save directory %s is a file", dir),
			Suggestion: "Point save_dir at a directory",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Saved logs go to %s", dir),
	}
}

// NewFileChecks returns the file checks.
func NewFileChecks(logFile, saveDir string) []Check {
	return []Check{
		&LogFileCheck{Path: logFile},
		&SaveDirCheck{Dir: saveDir},
	}
}
