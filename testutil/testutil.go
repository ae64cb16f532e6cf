package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/grovetools/cyclenext/logging"
	"github.com/stretchr/testify/require"
)

// IsolateHome points every config, state and log lookup at a fresh
// directory and disables colors. Log files are closed at cleanup. It
// returns the directory.
func IsolateHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("CYCLENEXT_HOME", home)
	t.Setenv("CYCLENEXT_CONFIG", "")
	t.Setenv("CYCLENEXT_LOG_LEVEL", "")
	t.Setenv("NO_COLOR", "1")
	t.Cleanup(logging.Close)
	return home
}

// RequireShell skips the test if no POSIX shell is available
func RequireShell(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell not available on windows")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

// CreateTaskDir creates a task data directory holding files, keyed by name.
func CreateTaskDir(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		WriteFile(t, dir, name, content)
	}
	return dir
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// WriteScript creates an executable shell script standing in for the task
// command and returns its path.
func WriteScript(t *testing.T, body string) string {
	t.Helper()
	RequireShell(t)

	path := filepath.Join(t.TempDir(), "task")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

// SetModTime sets both access and modification time of path.
func SetModTime(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}
