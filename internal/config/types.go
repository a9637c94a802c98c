package config

import "time"

// Color modes accepted by the color key.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// MinInterval is the shortest polling interval accepted. Anything faster
// floods the daemon with stats requests.
const MinInterval = 100 * time.Millisecond

// Config represents the complete dockmon configuration. It is read once at
// startup and treated as immutable afterwards.
type Config struct {
	// Host is the daemon endpoint: unix://, tcp://, npipe:// or ssh://user@host.
	// Empty means DOCKER_HOST, then the platform default socket.
	Host string `yaml:"host" mapstructure:"host"`

	// Interval between container list/stats refreshes.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// ShowAll includes stopped containers in the list.
	ShowAll bool `yaml:"show_all" mapstructure:"show_all"`

	// Timestamps shows the daemon timestamp in front of each log line.
	Timestamps bool `yaml:"timestamps" mapstructure:"timestamps"`

	// ShowStdErr includes stderr lines in the logs panel.
	ShowStdErr bool `yaml:"show_std_err" mapstructure:"show_std_err"`

	// Color mode: "auto", "always", or "never".
	// "auto" disables color when stdout is not a terminal.
	Color string `yaml:"color" mapstructure:"color"`

	// ColorLogs keeps ANSI escapes found in container logs instead of stripping them.
	ColorLogs bool `yaml:"color_logs" mapstructure:"color_logs"`

	// SaveDir is where exported log files are written. Supports ~ and ${HOME}.
	SaveDir string `yaml:"save_dir" mapstructure:"save_dir"`

	// LogBuffer is the number of log lines retained per container.
	LogBuffer int `yaml:"log_buffer" mapstructure:"log_buffer"`

	// ScrollStep is how many lines/columns a single scroll moves.
	ScrollStep int `yaml:"scroll_step" mapstructure:"scroll_step"`

	// GUI runs the terminal dashboard. When false dockmon runs headless.
	GUI bool `yaml:"gui" mapstructure:"gui"`

	// Keymap overrides default key bindings, action name to up to two keys.
	Keymap map[string][]string `yaml:"keymap" mapstructure:"keymap"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Interval:   time.Second,
		ShowAll:    true,
		Timestamps: false,
		ShowStdErr: true,
		Color:      ColorAuto,
		ColorLogs:  false,
		SaveDir:    "~",
		LogBuffer:  1000,
		ScrollStep: 1,
		GUI:        true,
		Keymap:     make(map[string][]string),
	}
}
