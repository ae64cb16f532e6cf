package errors

import (
	"fmt"
	"os/exec"
	"strings"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *Error {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *Error {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// TaskDirUnreadable is returned when the task storage directory cannot be listed.
func TaskDirUnreadable(dir string, err error) *Error {
	return Wrap(err, ErrCodeTaskDirUnreadable, fmt.Sprintf("cannot read task directory %s", dir)).
		WithDetail("dir", dir)
}

// NoWatchedFiles is returned when none of the candidate files exist.
func NoWatchedFiles(dir string, candidates []string) *Error {
	return New(ErrCodeNoWatchedFiles,
		fmt.Sprintf("none of %s exist in %s", strings.Join(candidates, ", "), dir)).
		WithDetail("dir", dir).
		WithDetail("candidates", candidates)
}

// WatchedFileVanished is returned when a watched file can no longer be stat'ed.
func WatchedFileVanished(path string, err error) *Error {
	return Wrap(err, ErrCodeWatchedFileVanished, fmt.Sprintf("watched file disappeared: %s", path)).
		WithDetail("path", path)
}

// BacklogCorrupt signals a backlog file without its header line.
func BacklogCorrupt(path string, count int) *Error {
	return New(ErrCodeBacklogCorrupt,
		fmt.Sprintf("backlog file %s yields a negative item count (%d)", path, count)).
		WithDetail("path", path).
		WithDetail("count", count)
}

// CommandNotFound creates a missing executable error
func CommandNotFound(cmd string, err error) *Error {
	return Wrap(err, ErrCodeCommandNotFound, fmt.Sprintf("command not found: %s", cmd)).
		WithDetail("command", cmd)
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, err error) *Error {
	cycleErr := Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("command failed: %s", cmd)).
		WithDetail("command", cmd)

	// Extract exit code if available
	if exitErr, ok := err.(*exec.ExitError); ok {
		cycleErr = cycleErr.WithDetail("exitCode", exitErr.ExitCode())
	}

	return cycleErr
}

// Interrupted reports a command killed by an interrupt or termination
// signal. The user asked to stop, so callers treat it as a clean exit.
func Interrupted(cmd string, err error) *Error {
	return Wrap(err, ErrCodeInterrupted, fmt.Sprintf("command interrupted: %s", cmd)).
		WithDetail("command", cmd)
}
