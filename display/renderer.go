package display

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/grovetools/cyclenext/command"
	"github.com/grovetools/cyclenext/config"
	"github.com/grovetools/cyclenext/pkg/models"
	"github.com/grovetools/cyclenext/tui/theme"
	"github.com/sirupsen/logrus"
)

// TaskArgs returns the arguments passed to the task command for filter.
// A limit is appended unless a filter token already mentions "limit:", a
// substring check rather than a parse of the task command's syntax.
func TaskArgs(cfg config.Config, filter []string, rowLimit int) []string {
	args := append([]string(nil), filter...)
	args = append(args, "rc.gc=off", "rc.reserved.lines=2")
	if !cfg.Debug {
		args = append(args, "rc.verbose=nothing")
	}

	if !HasLimit(filter) {
		limit := cfg.Limit
		if limit == "" {
			limit = strconv.Itoa(rowLimit)
		}
		args = append(args, "limit:"+limit)
	}
	return args
}

// HasLimit reports whether any filter token contains "limit:".
func HasLimit(filter []string) bool {
	for _, token := range filter {
		if strings.Contains(token, "limit:") {
			return true
		}
	}
	return false
}

// Renderer redraws the screen: clear, status line, task list.
type Renderer struct {
	cfg     config.Config
	taskCmd string
	builder *command.SafeBuilder
	clearer *Clearer
	theme   *theme.Theme
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	logger  *logrus.Entry
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithOutput replaces the process stdio.
func WithOutput(stdin io.Reader, stdout, stderr io.Writer) RendererOption {
	return func(r *Renderer) {
		r.stdin = stdin
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithTheme sets the status line styles.
func WithTheme(t *theme.Theme) RendererOption {
	return func(r *Renderer) {
		r.theme = t
	}
}

// WithClearer replaces the platform clearer.
func WithClearer(c *Clearer) RendererOption {
	return func(r *Renderer) {
		r.clearer = c
	}
}

// WithRendererLogger sets the logger.
func WithRendererLogger(logger *logrus.Entry) RendererOption {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// NewRenderer creates a Renderer running taskCmd, a path already resolved
// by the builder.
func NewRenderer(cfg config.Config, taskCmd string, builder *command.SafeBuilder, opts ...RendererOption) *Renderer {
	r := &Renderer{
		cfg:     cfg,
		taskCmd: taskCmd,
		builder: builder,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		logger:  logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.clearer == nil {
		r.clearer = NewClearer(builder)
	}
	if r.theme == nil {
		r.theme = theme.ForWriter(r.stdout)
	}
	return r
}

// Redraw replaces the terminal content with the task list for frame. A
// failing clear is logged, a failing task command is returned.
func (r *Renderer) Redraw(ctx context.Context, frame models.Frame) error {
	if err := r.clearer.Clear(ctx, r.stdout); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.logger.WithError(err).Warn("Failed to clear terminal")
	}

	fmt.Fprintln(r.stdout, StyledStatusLine(r.theme, frame))

	cmd, err := r.builder.Build(ctx, r.taskCmd, TaskArgs(r.cfg, frame.Filter, RowLimit(frame.Size))...)
	if err != nil {
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"command": cmd.String(),
		"size":    frame.Size.String(),
	}).Debug("Running task command")

	return cmd.Run(r.stdin, r.stdout, r.stderr)
}
