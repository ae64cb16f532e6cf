package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/grovetools/cyclenext/errors"
	"github.com/grovetools/cyclenext/tui/theme"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
	theme   *theme.Theme
}

// NewErrorHandler creates a new error handler writing to stderr
func NewErrorHandler(verbose bool) *ErrorHandler {
	return NewErrorHandlerWithWriter(verbose, os.Stderr)
}

// NewErrorHandlerWithWriter creates an error handler writing to w.
func NewErrorHandlerWithWriter(verbose bool, w io.Writer) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     w,
		theme:   theme.ForWriter(w),
	}
}

// Handle prints a message for err based on its code and returns err.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}

	details := map[string]interface{}{}
	if e, ok := errors.As(err); ok && e.Details != nil {
		details = e.Details
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		h.fail("Configuration file %v not found", details["path"])
		h.hint("Drop --config or create the file. 'cyclenext config show' prints the defaults.")

	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigValidation:
		h.fail("Invalid configuration: %v", err)
		h.hint("'cyclenext config schema' prints the accepted keys.")

	case errors.ErrCodeTaskDirUnreadable:
		h.fail("Cannot read the task directory %v", details["dir"])
		h.hint("Set task_dir in the config file if your tasks live elsewhere.")

	case errors.ErrCodeNoWatchedFiles:
		h.fail("None of %v exist in %v", details["candidates"], details["dir"])
		h.hint("Run the task command once so that it creates its data files.")

	case errors.ErrCodeWatchedFileVanished:
		h.fail("Watched file %v disappeared", details["path"])

	case errors.ErrCodeBacklogCorrupt:
		h.fail("Backlog file %v looks truncated", details["path"])

	case errors.ErrCodeCommandNotFound:
		h.fail("Command %v not found", details["command"])
		h.hint("Install Taskwarrior or set task_command in the config file.")

	case errors.ErrCodeCommandFailed:
		h.fail("%v", err)

	default:
		h.fail("Error: %v", err)
	}

	if h.Verbose {
		if e, ok := errors.As(err); ok {
			fmt.Fprintf(h.Out, "\nError details:\n%s\n", e.ToJSON())
		}
	}
	return err
}

func (h *ErrorHandler) fail(format string, args ...interface{}) {
	fmt.Fprintf(h.Out, "%s %s\n", h.theme.Error.Render("✗"), fmt.Sprintf(format, args...))
}

func (h *ErrorHandler) hint(message string) {
	fmt.Fprintln(h.Out, h.theme.Muted.Render(message))
}
