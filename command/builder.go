package command

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/grovetools/cyclenext/errors"
)

const (
	// DefaultTimeout is the default command execution timeout
	DefaultTimeout = 2 * time.Minute

	// MaxTimeout is the maximum allowed timeout
	MaxTimeout = 10 * time.Minute
)

// SafeBuilder builds validated, time-bounded commands.
type SafeBuilder struct {
	defaultTimeout time.Duration
	executor       Executor
}

// NewSafeBuilder creates a new SafeBuilder instance with a RealExecutor
func NewSafeBuilder() *SafeBuilder {
	return NewSafeBuilderWithExecutor(&RealExecutor{})
}

// NewSafeBuilderWithExecutor creates a new SafeBuilder with a custom Executor
func NewSafeBuilderWithExecutor(exec Executor) *SafeBuilder {
	return &SafeBuilder{
		defaultTimeout: DefaultTimeout,
		executor:       exec,
	}
}

// WithTimeout sets the timeout applied to every built command. Values above
// MaxTimeout are capped, non-positive values restore the default.
func (sb *SafeBuilder) WithTimeout(timeout time.Duration) *SafeBuilder {
	switch {
	case timeout <= 0:
		timeout = DefaultTimeout
	case timeout > MaxTimeout:
		timeout = MaxTimeout
	}
	sb.defaultTimeout = timeout
	return sb
}

// Timeout returns the timeout applied to built commands.
func (sb *SafeBuilder) Timeout() time.Duration {
	return sb.defaultTimeout
}

// Resolve checks that name can be executed and returns its path.
func (sb *SafeBuilder) Resolve(name string) (string, error) {
	path, err := sb.executor.LookPath(name)
	if err != nil {
		return "", errors.CommandNotFound(name, err)
	}
	return path, nil
}

// validateArg rejects arguments that cannot be passed to exec.
func validateArg(arg string) error {
	if strings.ContainsRune(arg, 0) {
		return fmt.Errorf("argument %q contains a NUL byte", arg)
	}
	return nil
}

// Command represents a safe command configuration
type Command struct {
	ctx      context.Context
	name     string
	args     []string
	timeout  time.Duration
	executor Executor
}

// Build creates a new command with validation
func (sb *SafeBuilder) Build(ctx context.Context, name string, args ...string) (*Command, error) {
	if name == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "command name cannot be empty")
	}
	for _, arg := range args {
		if err := validateArg(arg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid command argument").
				WithDetail("command", name)
		}
	}

	return &Command{
		ctx:      ctx,
		name:     name,
		args:     append([]string(nil), args...),
		timeout:  sb.defaultTimeout,
		executor: sb.executor,
	}, nil
}

// Args returns the arguments passed to the executable.
func (c *Command) Args() []string {
	return append([]string(nil), c.args...)
}

// String renders the command line for logs and error messages.
func (c *Command) String() string {
	return strings.TrimSpace(c.name + " " + strings.Join(c.args, " "))
}

// Exec creates and returns an exec.Cmd together with the cancel function of
// its timeout context. The caller must call cancel once the command is done.
func (c *Command) Exec() (*exec.Cmd, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	return c.executor.CommandContext(ctx, c.name, c.args...), cancel //nolint:gosec // arguments are validated by Build
}

// Run runs the command with the given stdio and waits for it. Failures are
// reported as COMMAND_NOT_FOUND, INTERRUPTED or COMMAND_FAILED errors.
func (c *Command) Run(stdin io.Reader, stdout, stderr io.Writer) error {
	cmd, cancel := c.Exec()
	defer cancel()

	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		if stderrors.Is(err, exec.ErrNotFound) {
			return errors.CommandNotFound(c.name, err)
		}
		if killedByInterrupt(err) {
			return errors.Interrupted(c.String(), err)
		}
		return errors.CommandFailed(c.String(), err)
	}
	return nil
}

// killedByInterrupt reports whether err is the exit of a process that died
// from SIGINT or SIGTERM. A Ctrl-C reaches the child and this process at
// once, and the child may exit before our own handler runs.
func killedByInterrupt(err error) bool {
	var exitErr *exec.ExitError
	if !stderrors.As(err, &exitErr) {
		return false
	}
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok || !status.Signaled() {
		return false
	}
	sig := status.Signal()
	return sig == syscall.SIGINT || sig == syscall.SIGTERM
}
