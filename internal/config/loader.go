package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/dockmon/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the per-directory config file name.
	ConfigFileName = ".dockmon.yaml"
	// GlobalConfigDir is the directory under XDG_CONFIG_HOME for global config.
	GlobalConfigDir = "dockmon"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. DOCKMON_HOST.
	EnvPrefix = "DOCKMON"
)

// Load reads config from the specified path, layered over defaults and
// DOCKMON_* environment overrides. An empty path loads defaults plus env only.
func Load(path string) (*Config, error) {
	return load(path, nil)
}

// FlagKeys maps command-line flag names to the config keys they override.
var FlagKeys = map[string]string{
	"host":        "host",
	"interval":    "interval",
	"all":         "show_all",
	"timestamps":  "timestamps",
	"color":       "color",
	"color-logs":  "color_logs",
	"save-dir":    "save_dir",
	"log-buffer":  "log_buffer",
	"scroll-step": "scroll_step",
}

// LoadWithFlags is LoadOrDefault with command-line flags layered on top.
// Only flags the user set take precedence over the file and environment.
func LoadWithFlags(explicit string, flags *pflag.FlagSet) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}
	cfg, err := load(path, flags)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := newViper()

	if flags != nil {
		for name, key := range FlagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Failed to bind --"+name,
					"This is a bug, please report it")
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Config file not found",
					"Run 'dockmon config init' to create one, or specify one with --config")
			}
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the file exists and is valid YAML")
		}
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .dockmon.yaml in current directory
// 3. $XDG_CONFIG_HOME/dockmon/config.yaml (or ~/.config/dockmon/config.yaml)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	if global := GlobalConfigPath(); global != "" {
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// LoadOrDefault finds and loads the config, falling back to defaults (plus
// env overrides) when no file exists. The returned path is empty in that case.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// GlobalConfigPath returns where the global config lives, honouring
// XDG_CONFIG_HOME. Empty if no home directory can be determined.
func GlobalConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, GlobalConfigDir, GlobalConfigFile)
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".config", GlobalConfigDir, GlobalConfigFile)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// setDefaults registers every key so AutomaticEnv picks up overrides during
// Unmarshal even when the file omits the key.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("host", def.Host)
	v.SetDefault("interval", def.Interval.String())
	v.SetDefault("show_all", def.ShowAll)
	v.SetDefault("timestamps", def.Timestamps)
	v.SetDefault("show_std_err", def.ShowStdErr)
	v.SetDefault("color", def.Color)
	v.SetDefault("color_logs", def.ColorLogs)
	v.SetDefault("save_dir", def.SaveDir)
	v.SetDefault("log_buffer", def.LogBuffer)
	v.SetDefault("scroll_step", def.ScrollStep)
	v.SetDefault("gui", def.GUI)
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		source := "environment overrides"
		if path != "" {
			source = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the values in "+source)
	}

	if cfg.Host == "" {
		cfg.Host = os.Getenv("DOCKER_HOST")
	}
	cfg.SaveDir = ExpandTilde(Expand(cfg.SaveDir))
	if cfg.Keymap == nil {
		cfg.Keymap = make(map[string][]string)
	}

	return cfg, nil
}
