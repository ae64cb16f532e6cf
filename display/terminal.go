package display

import (
	"os"
	"strconv"

	"github.com/grovetools/cyclenext/pkg/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// FallbackSize is used when neither the terminal nor the environment knows
// the size.
var FallbackSize = models.TerminalSize{Rows: 24, Cols: 80}

// TerminalSizer queries the size of the terminal attached to a file
// descriptor. It never reports the zero size.
type TerminalSizer struct {
	fd      int
	getSize func(fd int) (width, height int, err error)
	getenv  func(string) string
	last    models.TerminalSize
	logger  *logrus.Entry
}

// NewTerminalSizer measures the terminal behind stdout.
func NewTerminalSizer(logger *logrus.Entry) *TerminalSizer {
	return &TerminalSizer{
		fd:      int(os.Stdout.Fd()),
		getSize: term.GetSize,
		getenv:  os.Getenv,
		logger:  logger,
	}
}

// Size returns the current size. When the query fails it falls back to the
// last known size, then to LINES and COLUMNS, then to FallbackSize.
func (t *TerminalSizer) Size() models.TerminalSize {
	width, height, err := t.getSize(t.fd)
	if err == nil && width > 0 && height > 0 {
		t.last = models.TerminalSize{Rows: height, Cols: width}
		return t.last
	}

	if t.last != (models.TerminalSize{}) {
		return t.last
	}

	size := FallbackSize
	if rows, ok := positiveEnv(t.getenv("LINES")); ok {
		size.Rows = rows
	}
	if cols, ok := positiveEnv(t.getenv("COLUMNS")); ok {
		size.Cols = cols
	}
	if t.logger != nil {
		t.logger.WithError(err).WithField("size", size.String()).Debug("Terminal size unavailable, using fallback")
	}
	return size
}

func positiveEnv(value string) (int, bool) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
