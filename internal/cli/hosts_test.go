package cli

import (
	"bytes"
	"testing"

	"github.com/rileyhilliard/dockmon/pkg/sshutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintHosts(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printHosts(&buf, nil))
		assert.Contains(t, buf.String(), "No hosts found")
	})

	t.Run("entries", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		hosts := []sshutil.HostEntry{
			{Alias: "prod", Hostname: "10.0.0.5", User: "deploy"},
			{Alias: "staging", IdentityFile: "/nonexistent/key"},
		}

		var buf bytes.Buffer
		require.NoError(t, printHosts(&buf, hosts))
		out := buf.String()

		assert.Contains(t, out, "ALIAS")
		assert.Contains(t, out, "ssh://prod")
		assert.Contains(t, out, "10.0.0.5, user: deploy")
		assert.Contains(t, out, "ssh://staging")
	})
}
