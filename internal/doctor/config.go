package doctor

import (
	"fmt"

	"github.com/rileyhilliard/dockmon/internal/config"
)

// ConfigFileCheck reports which config file is in effect. Running on
// defaults is only a warning.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return "CONFIG" }

func (c *ConfigFileCheck) Run() CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Error finding config: %v", errorLine(err)),
			Suggestion: "Check the --config path and its permissions",
		}
	}

	if path == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "No config file found, using defaults",
			Suggestion: "Run 'dockmon config init' to create " + config.ConfigFileName,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Config file: %s", path),
	}
}

// ConfigValidCheck loads and validates the config, including the keymap.
type ConfigValidCheck struct {
	ConfigPath string
}

func (c *ConfigValidCheck) Name() string     { return "config_valid" }
func (c *ConfigValidCheck) Category() string { return "CONFIG" }

func (c *ConfigValidCheck) Run() CheckResult {
	cfg, _, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Failed to load config: %s", errorLine(err)),
			Suggestion: "Check the YAML syntax and DOCKMON_* environment variables",
		}
	}

	if err := config.Validate(cfg); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Invalid config: %s", errorLine(err)),
			Suggestion: "Fix the value, or run 'dockmon config show' to see what is in effect",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Config valid (interval %s, log buffer %d)", cfg.Interval, cfg.LogBuffer),
	}
}

// NewConfigChecks returns the config checks for path.
func NewConfigChecks(path string) []Check {
	return []Check{
		&ConfigFileCheck{ConfigPath: path},
		&ConfigValidCheck{ConfigPath: path},
	}
}
