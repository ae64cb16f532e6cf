package config

import (
	"fmt"
	"math"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Default values used when a key is absent from the config file.
const (
	DefaultTaskDir            = "~/.task"
	DefaultTaskCommand        = "task"
	DefaultBacklogFile        = "backlog.data"
	DefaultLazyAfterSecs      = 3 * 60
	DefaultLazyFactor         = 5
	DefaultForceRedrawSecs    = 10
	DefaultLoopDelaySecs      = 0.33
	DefaultFreshnessMargin    = 1.8
	DefaultCommandTimeoutSecs = 120
)

// DefaultWatchedFiles are the Taskwarrior files touched by every local
// operation and by a sync of remote changes.
var DefaultWatchedFiles = []string{"undo.data", "backlog.data"}

// DefaultFilter is used when no filter is given on the command line.
var DefaultFilter = []string{"ready"}

// Config is the cyclenext configuration. It is loaded once at startup and
// passed by value afterwards.
type Config struct {
	TaskDir      string   `yaml:"task_dir,omitempty" toml:"task_dir,omitempty" json:"task_dir,omitempty" jsonschema:"description=Taskwarrior data directory (default ~/.task)"`
	TaskCommand  string   `yaml:"task_command,omitempty" toml:"task_command,omitempty" json:"task_command,omitempty" jsonschema:"description=Task executable; bare names are looked up on PATH"`
	WatchedFiles []string `yaml:"watched_files,omitempty" toml:"watched_files,omitempty" json:"watched_files,omitempty" jsonschema:"description=File names inside task_dir whose modification time signals activity"`
	BacklogFile  string   `yaml:"backlog_file,omitempty" toml:"backlog_file,omitempty" json:"backlog_file,omitempty" jsonschema:"description=File inside task_dir holding unsynced changes after one header line"`

	DefaultFilter []string `yaml:"default_filter,omitempty" toml:"default_filter,omitempty" json:"default_filter,omitempty" jsonschema:"description=Filter tokens used when none are given on the command line"`
	// Limit overrides the computed row limit, e.g. "page". Empty means computed.
	Limit string `yaml:"limit,omitempty" toml:"limit,omitempty" json:"limit,omitempty" jsonschema:"description=Fixed value for the task limit: argument; empty derives it from the terminal size"`

	LazyAfterSecs   float64 `yaml:"lazy_after_secs,omitempty" toml:"lazy_after_secs,omitempty" json:"lazy_after_secs,omitempty" jsonschema:"minimum=0,description=Seconds without file activity before polling slows down"`
	LazyFactor      int     `yaml:"lazy_factor,omitempty" toml:"lazy_factor,omitempty" json:"lazy_factor,omitempty" jsonschema:"minimum=1,description=Multiplier applied to the redraw and loop intervals while lazy"`
	ForceRedrawSecs float64 `yaml:"force_redraw_secs,omitempty" toml:"force_redraw_secs,omitempty" json:"force_redraw_secs,omitempty" jsonschema:"minimum=0,description=Base interval after which a redraw is forced"`
	LoopDelaySecs   float64 `yaml:"loop_delay_secs,omitempty" toml:"loop_delay_secs,omitempty" json:"loop_delay_secs,omitempty" jsonschema:"minimum=0,description=Base sleep between two ticks"`
	FreshnessMargin float64 `yaml:"freshness_margin,omitempty" toml:"freshness_margin,omitempty" json:"freshness_margin,omitempty" jsonschema:"minimum=0,description=A file younger than loop delay times this margin triggers a redraw"`

	WakeOnChange       bool    `yaml:"wake_on_change,omitempty" toml:"wake_on_change,omitempty" json:"wake_on_change,omitempty" jsonschema:"description=Use filesystem notifications to cut sleeps short"`
	CommandTimeoutSecs float64 `yaml:"command_timeout_secs,omitempty" toml:"command_timeout_secs,omitempty" json:"command_timeout_secs,omitempty" jsonschema:"minimum=0,description=Upper bound for one task invocation"`
	Debug              bool    `yaml:"debug,omitempty" toml:"debug,omitempty" json:"debug,omitempty" jsonschema:"description=Keep Taskwarrior's verbose output"`

	Logging map[string]interface{} `yaml:"logging,omitempty" toml:"logging,omitempty" json:"logging,omitempty" jsonschema:"description=Logging section decoded by the logging package"`
}

// Default returns a Config with every default applied.
func Default() Config {
	var c Config
	c.SetDefaults()
	return c
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	if c.TaskDir == "" {
		c.TaskDir = DefaultTaskDir
	}
	if c.TaskCommand == "" {
		c.TaskCommand = DefaultTaskCommand
	}
	if len(c.WatchedFiles) == 0 {
		c.WatchedFiles = append([]string(nil), DefaultWatchedFiles...)
	}
	if c.BacklogFile == "" {
		c.BacklogFile = DefaultBacklogFile
	}
	if len(c.DefaultFilter) == 0 {
		c.DefaultFilter = append([]string(nil), DefaultFilter...)
	}
	if c.LazyAfterSecs == 0 {
		c.LazyAfterSecs = DefaultLazyAfterSecs
	}
	if c.LazyFactor == 0 {
		c.LazyFactor = DefaultLazyFactor
	}
	if c.ForceRedrawSecs == 0 {
		c.ForceRedrawSecs = DefaultForceRedrawSecs
	}
	if c.LoopDelaySecs == 0 {
		c.LoopDelaySecs = DefaultLoopDelaySecs
	}
	if c.FreshnessMargin == 0 {
		c.FreshnessMargin = DefaultFreshnessMargin
	}
	if c.CommandTimeoutSecs == 0 {
		c.CommandTimeoutSecs = DefaultCommandTimeoutSecs
	}
}

// LazyAfter is the inactivity threshold above which the scheduler gets lazy.
func (c Config) LazyAfter() time.Duration { return seconds(c.LazyAfterSecs) }

// ForceRedraw is the base forced redraw interval.
func (c Config) ForceRedraw() time.Duration { return seconds(c.ForceRedrawSecs) }

// LoopDelay is the base sleep between ticks.
func (c Config) LoopDelay() time.Duration { return seconds(c.LoopDelaySecs) }

// CommandTimeout bounds a single task invocation.
func (c Config) CommandTimeout() time.Duration { return seconds(c.CommandTimeoutSecs) }

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// Filter returns args when given, the configured default filter otherwise.
func (c Config) Filter(args []string) []string {
	if len(args) > 0 {
		return append([]string(nil), args...)
	}
	return append([]string(nil), c.DefaultFilter...)
}

// UnmarshalLogging decodes the logging section into target, which must be a
// pointer. A missing section leaves target untouched.
func (c Config) UnmarshalLogging(target interface{}) error {
	if c.Logging == nil {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(c.Logging); err != nil {
		return fmt.Errorf("failed to decode logging config: %w", err)
	}

	return nil
}
