package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Expand expands home directory (~) and environment variables in a path.
// It returns an absolute path.
func Expand(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not get user home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	path = os.ExpandEnv(path)

	return filepath.Abs(path)
}

// ExpandCommand expands a command name the same way as Expand, but leaves bare
// names such as "task" untouched so they are resolved on PATH.
func ExpandCommand(name string) (string, error) {
	if !strings.ContainsRune(name, filepath.Separator) && !strings.HasPrefix(name, "~") && !strings.Contains(name, "$") {
		return name, nil
	}
	return Expand(name)
}
