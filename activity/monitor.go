package activity

import (
	"os"
	"path/filepath"
	"time"

	"github.com/grovetools/cyclenext/config"
	"github.com/grovetools/cyclenext/errors"
	"github.com/grovetools/cyclenext/util/pathutil"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Monitor reports file activity for a fixed set of watched files.
type Monitor struct {
	fs          afero.Fs
	dir         string
	paths       []string
	backlogPath string
	now         func() time.Time
	logger      *logrus.Entry
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// WithLogger sets the logger used for startup diagnostics.
func WithLogger(logger *logrus.Entry) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

// New lists the task directory once and keeps the configured watched files
// that exist as regular files, in configured order. It fails when the
// directory cannot be read or when no watched file exists.
func New(fs afero.Fs, cfg config.Config, opts ...Option) (*Monitor, error) {
	dir, err := pathutil.Expand(cfg.TaskDir)
	if err != nil {
		return nil, errors.TaskDirUnreadable(cfg.TaskDir, err)
	}

	m := &Monitor{
		fs:          fs,
		dir:         dir,
		backlogPath: filepath.Join(dir, cfg.BacklogFile),
		now:         time.Now,
		logger:      logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(m)
	}

	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, errors.TaskDirUnreadable(dir, err)
	}
	regular := make(map[string]bool, len(entries))
	for _, entry := range entries {
		regular[entry.Name()] = entry.Mode().IsRegular()
	}

	for _, name := range cfg.WatchedFiles {
		if !regular[name] {
			m.logger.WithField("file", name).Debug("Watched file candidate not present")
			continue
		}
		m.paths = append(m.paths, filepath.Join(dir, name))
	}
	if len(m.paths) == 0 {
		return nil, errors.NoWatchedFiles(dir, cfg.WatchedFiles)
	}

	m.logger.WithField("paths", m.paths).Debug("Watching task data files")
	return m, nil
}

// Dir returns the expanded task directory.
func (m *Monitor) Dir() string {
	return m.dir
}

// WatchedPaths returns the watched files fixed at construction.
func (m *Monitor) WatchedPaths() []string {
	return append([]string(nil), m.paths...)
}

// MinimalAge returns the time since the most recent modification of any
// watched file. A watched file that disappeared is an error.
func (m *Monitor) MinimalAge() (time.Duration, error) {
	now := m.now()
	var minimal time.Duration
	for i, path := range m.paths {
		age, err := m.fileAge(path, now)
		if err != nil {
			return 0, err
		}
		if i == 0 || age < minimal {
			minimal = age
		}
	}
	return minimal, nil
}

func (m *Monitor) fileAge(path string, now time.Time) (time.Duration, error) {
	info, err := m.fs.Stat(path)
	if err != nil {
		return 0, errors.WatchedFileVanished(path, err)
	}
	age := now.Sub(info.ModTime())
	if age < 0 {
		// mtime in the future: the file was just written by a host with a
		// clock ahead of ours.
		age = 0
	}
	return age, nil
}

// UnsyncedBacklog returns the number of lines of the backlog file minus its
// header line. ok is false when the file does not exist. A file without the
// header line is reported as BACKLOG_CORRUPT.
func (m *Monitor) UnsyncedBacklog() (count int, ok bool, err error) {
	info, err := m.fs.Stat(m.backlogPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, errors.ErrCodeInternal, "cannot stat backlog file").
			WithDetail("path", m.backlogPath)
	}
	if !info.Mode().IsRegular() {
		return 0, false, nil
	}

	f, err := m.fs.Open(m.backlogPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, errors.ErrCodeInternal, "cannot open backlog file").
			WithDetail("path", m.backlogPath)
	}
	defer f.Close()

	lines, err := countLines(f)
	if err != nil {
		return 0, false, errors.Wrap(err, errors.ErrCodeInternal, "cannot read backlog file").
			WithDetail("path", m.backlogPath)
	}

	count = lines - 1
	if count < 0 {
		return 0, false, errors.BacklogCorrupt(m.backlogPath, count)
	}
	return count, true, nil
}
