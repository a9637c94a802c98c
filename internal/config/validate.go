package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rileyhilliard/dockmon/internal/errors"
)

// supportedSchemes are the daemon host schemes dockmon can dial.
var supportedSchemes = map[string]bool{
	"unix":  true,
	"tcp":   true,
	"npipe": true,
	"ssh":   true,
	"http":  true,
	"https": true,
}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Host != "" {
		if err := validateHost(cfg.Host); err != nil {
			return err
		}
	}

	if cfg.Interval < MinInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Interval %s is too short", cfg.Interval),
			fmt.Sprintf("Use %s or longer to avoid hammering the daemon.", MinInterval))
	}

	if err := validateColor(cfg.Color); err != nil {
		return err
	}

	if cfg.LogBuffer < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("log_buffer must be at least 1, got %d", cfg.LogBuffer),
			"The default is 1000 lines per container.")
	}

	if cfg.ScrollStep < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("scroll_step must be at least 1, got %d", cfg.ScrollStep),
			"The default is 1.")
	}

	if _, err := resolveKeys(cfg.Keymap); err != nil {
		return err
	}

	return nil
}

func validateHost(host string) error {
	u, err := url.Parse(host)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Host '%s' isn't a valid URL", host),
			"Use something like unix:///var/run/docker.sock or ssh://user@server.")
	}
	if !supportedSchemes[strings.ToLower(u.Scheme)] {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unsupported host scheme '%s'", u.Scheme),
			"Supported schemes: unix, tcp, npipe, ssh, http, https.")
	}
	if u.Scheme == "ssh" && u.Hostname() == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("SSH host '%s' has no hostname", host),
			"Use ssh://user@server or ssh://server-alias.")
	}
	return nil
}

func validateColor(mode string) error {
	switch mode {
	case ColorAuto, ColorAlways, ColorNever:
		return nil
	}
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("Unknown color mode '%s'", mode),
		"Use one of: auto, always, never.")
}
