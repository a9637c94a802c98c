package cli

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/rileyhilliard/dockmon/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsUnknownCommandError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{`unknown command "foo" for "dockmon"`, true},
		{"unknown flag: --bogus", true},
		{"unknown shorthand flag: 'z' in -z", true},
		{"connection refused", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, isUnknownCommandError(stderrors.New(tt.msg)))
		})
	}
}

func TestExtractUnknownCommand(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want string
	}{
		{"quoted name", `unknown command "statz" for "dockmon"`, "statz"},
		{"no quotes", "unknown flag: --bogus", ""},
		{"unterminated", `unknown command "statz`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractUnknownCommand(stderrors.New(tt.msg)))
		})
	}
}

func TestPrintError(t *testing.T) {
	t.Run("unknown command", func(t *testing.T) {
		var buf bytes.Buffer
		printError(&buf, stderrors.New(`unknown command "statz" for "dockmon"`))
		assert.Contains(t, buf.String(), `Unknown command "statz"`)
		assert.Contains(t, buf.String(), "dockmon --help")
	})

	t.Run("unknown flag", func(t *testing.T) {
		var buf bytes.Buffer
		printError(&buf, stderrors.New("unknown flag: --bogus"))
		assert.Contains(t, buf.String(), "unknown flag: --bogus")
		assert.Contains(t, buf.String(), "for usage")
	})

	t.Run("structured error keeps its layout", func(t *testing.T) {
		var buf bytes.Buffer
		err := errors.New(errors.ErrConfig, "Bad interval", "Use a duration like 1s")
		printError(&buf, err)
		assert.Equal(t, err.Error(), buf.String())
	})

	t.Run("plain error", func(t *testing.T) {
		var buf bytes.Buffer
		printError(&buf, stderrors.New("boom"))
		assert.Contains(t, buf.String(), "boom\n")
	})
}

func TestRootCommandFlags(t *testing.T) {
	for _, name := range []string{"host", "interval", "all", "timestamps", "color", "color-logs", "save-dir", "log-buffer", "scroll-step", "no-gui"} {
		assert.NotNil(t, rootCmd.Flags().Lookup(name), name)
	}
	for _, name := range []string{"config", "debug", "log-file"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"config", "hosts", "version", "completion"} {
		assert.True(t, names[want], want)
	}
}
