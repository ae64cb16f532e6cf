package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/grovetools/cyclenext/pkg/paths"
	"github.com/grovetools/cyclenext/util/pathutil"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	logFiles  = make(map[string]*os.File)
	baseCfg   Config
	loggersMu sync.Mutex
)

// Configure sets the configuration used by loggers created afterwards. It
// drops every cached logger and closes their log files.
func Configure(cfg Config) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	closeLogFiles()
	baseCfg = cfg
	loggers = make(map[string]*logrus.Entry)
}

// Close closes every open log file. Loggers created before stay usable but
// stop writing to their file sink.
func Close() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	closeLogFiles()
	loggers = make(map[string]*logrus.Entry)
}

func closeLogFiles() {
	for path, file := range logFiles {
		file.Close()
		delete(logFiles, path)
	}
}

// NewLogger creates and returns a pre-configured logger for a specific component.
// It uses a singleton pattern per component to avoid re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logCfg := baseCfg
	logger := logrus.New()

	// Configure Level
	levelStr := "info"
	if env := os.Getenv("CYCLENEXT_LOG_LEVEL"); env != "" {
		levelStr = env
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if os.Getenv("CYCLENEXT_LOG_CALLER") == "true" || logCfg.ReportCaller {
		logger.SetReportCaller(true)
	}

	switch logCfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{Config: logCfg.Format})
	}

	var writers []io.Writer

	if file := openLogFile(component, logCfg.File); file != nil {
		writers = append(writers, file)
	}

	if shouldLogToStderr(logCfg.Format.StructuredToStderr) {
		writers = append(writers, os.Stderr)
	}

	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

// openLogFile returns the file sink, or nil when there is none. Loggers
// writing to the same path share one handle. Callers hold loggersMu.
func openLogFile(component string, cfg FileSinkConfig) io.Writer {
	if cfg.Disabled {
		return nil
	}

	logFilePath := cfg.Path
	if logFilePath != "" {
		expanded, err := pathutil.Expand(logFilePath)
		if err == nil {
			logFilePath = expanded
		}
	} else if dir := paths.LogDir(); dir != "" {
		dateStr := time.Now().Format("2006-01-02")
		logFilePath = filepath.Join(dir, fmt.Sprintf("%s-%s.log", component, dateStr))
	}
	if logFilePath == "" {
		return nil
	}

	// A missing log file must never keep the display from running.
	if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
		return nil
	}
	if file, ok := logFiles[logFilePath]; ok {
		return file
	}
	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil
	}
	logFiles[logFilePath] = file
	return file
}

// shouldLogToStderr applies the structured_to_stderr mode.
func shouldLogToStderr(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		// A debug level alone does not qualify: stderr shares the terminal
		// with the task list.
		isDebug := os.Getenv("CYCLENEXT_DEBUG") == "1"
		isInteractive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		return isDebug || !isInteractive
	}
}
