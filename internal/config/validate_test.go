package config

import (
	"testing"
	"time"

	"github.com/rileyhilliard/dockmon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			modify: func(*Config) {},
		},
		{
			name:   "unix socket host",
			modify: func(c *Config) { c.Host = "unix:///var/run/docker.sock" },
		},
		{
			name:   "ssh host",
			modify: func(c *Config) { c.Host = "ssh://deploy@build-box:2222" },
		},
		{
			name:    "ssh host without hostname",
			modify:  func(c *Config) { c.Host = "ssh://" },
			wantErr: "has no hostname",
		},
		{
			name:    "unsupported scheme",
			modify:  func(c *Config) { c.Host = "ftp://example.com" },
			wantErr: "Unsupported host scheme",
		},
		{
			name:   "interval at minimum",
			modify: func(c *Config) { c.Interval = MinInterval },
		},
		{
			name:    "interval below minimum",
			modify:  func(c *Config) { c.Interval = 50 * time.Millisecond },
			wantErr: "too short",
		},
		{
			name:    "unknown color mode",
			modify:  func(c *Config) { c.Color = "rainbow" },
			wantErr: "Unknown color mode",
		},
		{
			name:    "zero log buffer",
			modify:  func(c *Config) { c.LogBuffer = 0 },
			wantErr: "log_buffer",
		},
		{
			name:    "zero scroll step",
			modify:  func(c *Config) { c.ScrollStep = 0 },
			wantErr: "scroll_step",
		},
		{
			name:    "unknown keymap action",
			modify:  func(c *Config) { c.Keymap["explode"] = []string{"x"} },
			wantErr: "Unknown keymap action",
		},
		{
			name:    "key bound twice",
			modify:  func(c *Config) { c.Keymap["exec"] = []string{"q"} },
			wantErr: "bound to both",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
		})
	}
}
