package doctor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFileCheck(t *testing.T) {
	t.Run("stderr", func(t *testing.T) {
		assert.Equal(t, StatusPass, (&LogFileCheck{Path: "-"}).Run().Status)
	})

	t.Run("creates the directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "state", "dockmon")
		result := (&LogFileCheck{Path: filepath.Join(dir, "dockmon.log")}).Run()
		assert.Equal(t, StatusPass, result.Status)
		assert.DirExists(t, dir)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "probe file should be removed")
	})

	t.Run("parent is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(file, nil, 0o644))
		result := (&LogFileCheck{Path: filepath.Join(file, "dockmon.log")}).Run()
		assert.Equal(t, StatusFail, result.Status)
	})
}

func TestSaveDirCheck(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	tests := []struct {
		name   string
		dir    string
		status CheckStatus
	}{
		{"existing directory", dir, StatusPass},
		{"missing directory", filepath.Join(dir, "later"), StatusWarn},
		{"is a file", file, StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, (&SaveDirCheck{Dir: tt.dir}).Run().Status)
		})
	}
}
