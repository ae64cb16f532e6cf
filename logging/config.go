package logging

import (
	"github.com/grovetools/cyclenext/config"
)

// Config defines the structure of the logging section in cyclenext.yml.
type Config struct {
	// Level is the minimum log level to output (e.g., "debug", "info", "warn", "error").
	// Can be overridden by the CYCLENEXT_LOG_LEVEL environment variable.
	Level string `yaml:"level"`

	// ReportCaller, if true, includes the file, line, and function name in the log output.
	// Can be enabled with the CYCLENEXT_LOG_CALLER=true environment variable.
	ReportCaller bool `yaml:"report_caller"`

	// File configures logging to a file.
	File FileSinkConfig `yaml:"file"`

	// Format configures the appearance of the log output.
	Format FormatConfig `yaml:"format"`
}

// FileSinkConfig configures the file logging sink.
type FileSinkConfig struct {
	// Disabled turns off the default file under the state directory.
	Disabled bool `yaml:"disabled"`
	// Path is the full path to the log file. Empty means
	// <state dir>/logs/<component>-<date>.log.
	Path string `yaml:"path"`
}

// FormatConfig controls the log output format.
type FormatConfig struct {
	// Preset can be "default" (rich text), "simple" (minimal text), or "json".
	Preset string `yaml:"preset"`
	// DisableTimestamp disables the timestamp from the "default" and "simple" formats.
	DisableTimestamp bool `yaml:"disable_timestamp"`
	// DisableComponent disables the component name from the "default" and "simple" formats.
	DisableComponent bool `yaml:"disable_component"`
	// StructuredToStderr controls when structured logs are sent to stderr.
	// Can be "auto" (default), "always", or "never". In auto mode logs only
	// reach stderr when it is not a terminal, so they never overwrite the
	// task list.
	StructuredToStderr string `yaml:"structured_to_stderr"`
}

// FromConfig extracts the logging section of the application config.
func FromConfig(cfg config.Config) (Config, error) {
	var logCfg Config
	if err := cfg.UnmarshalLogging(&logCfg); err != nil {
		return Config{}, err
	}
	return logCfg, nil
}
