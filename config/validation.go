package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/grovetools/cyclenext/errors"
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TaskCommand) == "" {
		return errors.New(errors.ErrCodeConfigValidation, "task_command cannot be empty")
	}

	for _, name := range c.WatchedFiles {
		if err := validateFileName(name); err != nil {
			return errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid watched_files entry").
				WithDetail("file", name)
		}
	}
	if err := validateFileName(c.BacklogFile); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigValidation, "invalid backlog_file").
			WithDetail("file", c.BacklogFile)
	}

	if c.LazyFactor < 1 {
		return errors.New(errors.ErrCodeConfigValidation,
			fmt.Sprintf("lazy_factor must be at least 1, got %d", c.LazyFactor))
	}

	for key, value := range map[string]float64{
		"lazy_after_secs":      c.LazyAfterSecs,
		"force_redraw_secs":    c.ForceRedrawSecs,
		"loop_delay_secs":      c.LoopDelaySecs,
		"freshness_margin":     c.FreshnessMargin,
		"command_timeout_secs": c.CommandTimeoutSecs,
	} {
		if value <= 0 {
			return errors.New(errors.ErrCodeConfigValidation,
				fmt.Sprintf("%s must be positive, got %v", key, value)).
				WithDetail("key", key)
		}
	}

	if strings.ContainsAny(c.Limit, " \t") {
		return errors.New(errors.ErrCodeConfigValidation, "limit cannot contain whitespace").
			WithDetail("limit", c.Limit)
	}

	return nil
}

// validateFileName accepts plain file names inside the task directory.
func validateFileName(name string) error {
	if name == "" {
		return fmt.Errorf("file name cannot be empty")
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("%q must be a file name inside task_dir, not a path", name)
	}
	return nil
}
