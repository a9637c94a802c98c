package sshutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/dockmon/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSSHConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestResolveEndpoint(t *testing.T) {
	t.Setenv("USER", "tester")

	tests := []struct {
		name     string
		dest     string
		hostname string
		port     string
		user     string
	}{
		{name: "simple host", dest: "example.com", hostname: "example.com", port: "22", user: "tester"},
		{name: "user at host", dest: "deploy@example.com", hostname: "example.com", port: "22", user: "deploy"},
		{name: "host with port", dest: "example.com:2222", hostname: "example.com", port: "2222", user: "tester"},
		{name: "full form", dest: "admin@server.example.com:2222", hostname: "server.example.com", port: "2222", user: "admin"},
		{name: "non-numeric suffix is not a port", dest: "odd:name", hostname: "odd:name", port: "22", user: "tester"},
		{name: "out of range port", dest: "box:70000", hostname: "box:70000", port: "22", user: "tester"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ep := resolveEndpoint(tt.dest, "/nonexistent/config")
			assert.Equal(t, tt.hostname, ep.hostname)
			assert.Equal(t, tt.port, ep.port)
			assert.Equal(t, tt.user, ep.user)
		})
	}
}

func TestResolveEndpointFromConfig(t *testing.T) {
	t.Setenv("USER", "tester")
	path := writeSSHConfig(t, `
Host buildbox
    HostName 10.1.2.3
    User ci
    Port 2200
    IdentityFile /keys/buildbox
`)

	t.Run("alias resolves", func(t *testing.T) {
		ep := resolveEndpoint("buildbox", path)
		assert.Equal(t, "10.1.2.3", ep.hostname)
		assert.Equal(t, "ci", ep.user)
		assert.Equal(t, "2200", ep.port)
		assert.Equal(t, "/keys/buildbox", ep.identityFile)
		assert.Equal(t, "10.1.2.3:2200", ep.address())
	})

	t.Run("explicit user and port win", func(t *testing.T) {
		ep := resolveEndpoint("root@buildbox:22", path)
		assert.Equal(t, "10.1.2.3", ep.hostname)
		assert.Equal(t, "root", ep.user)
		assert.Equal(t, "22", ep.port)
	})
}

func TestResolveEndpointIgnoresEntriesAfterMatch(t *testing.T) {
	buf := logger.NewBufferLogger()
	logger.SetDefault(buf)
	t.Cleanup(func() { logger.SetDefault(logger.NewEnvLogger("")) })

	path := writeSSHConfig(t, `
Host early
    HostName early.example.com

Match host *.example.com
    User matched

Host late
    HostName late.example.com
`)

	assert.Equal(t, "early.example.com", resolveEndpoint("early", path).hostname)
	assert.Equal(t, "late", resolveEndpoint("late", path).hostname, "hosts after a Match block are not visible")
}

func TestReadSSHConfig(t *testing.T) {
	t.Run("stops at match", func(t *testing.T) {
		path := writeSSHConfig(t, "Host a\n  HostName a.example\n  Match all\nHost b\n")
		content, line, err := readSSHConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 3, line)
		assert.NotContains(t, string(content), "Host b")
	})

	t.Run("no match", func(t *testing.T) {
		path := writeSSHConfig(t, "Host a\n  MatchingIsNotAKeyword yes\n")
		content, line, err := readSSHConfig(path)
		require.NoError(t, err)
		assert.Zero(t, line)
		assert.Contains(t, string(content), "MatchingIsNotAKeyword")
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := readSSHConfig(filepath.Join(t.TempDir(), "nope"))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestExpandPath(t *testing.T) {
	home := homeDir()

	assert.Equal(t, filepath.Join(home, "test"), expandPath("~/test"))
	assert.Equal(t, "/absolute/path", expandPath("/absolute/path"))
	assert.Equal(t, "relative/path", expandPath("relative/path"))
}
