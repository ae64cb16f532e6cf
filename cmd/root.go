package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grovetools/cyclenext/activity"
	"github.com/grovetools/cyclenext/cli"
	"github.com/grovetools/cyclenext/command"
	"github.com/grovetools/cyclenext/config"
	"github.com/grovetools/cyclenext/display"
	"github.com/grovetools/cyclenext/logging"
	"github.com/grovetools/cyclenext/scheduler"
	"github.com/grovetools/cyclenext/util/pathutil"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Farewell is printed when the user interrupts the display.
const Farewell = "   bye!"

// NewRootCmd builds the cyclenext command tree. verbose is set once the
// root command has parsed its options.
func NewRootCmd(verbose *bool) *cobra.Command {
	root := cli.NewStandardCommand(
		"cyclenext [filter...]",
		"Keep a Taskwarrior report on screen, redrawn when the task data changes",
	)
	root.Long = `Runs the task command with the given filter and redraws its output when
the terminal is resized, when the task data files change, or after a
forced interval. Without recent changes the polling slows down.

Arguments are passed to the task command as filter tokens, "ready" by
default. Options are only recognised before a "--" separator.`
	root.Example = `# Show the ready report
cyclenext

# Show work tasks with debug output
cyclenext --debug -- +work project:home`

	root.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 && (args[0] == "-h" || args[0] == "--help") {
			return cmd.Help()
		}

		opts, filter, err := cli.ParseOptions(args)
		if err != nil {
			return err
		}
		if verbose != nil {
			*verbose = opts.Verbose || opts.Debug
		}
		if opts.Help {
			return cmd.Help()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runWatch(ctx, opts, filter, os.Stdin, cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	root.AddCommand(cli.NewVersionCommand("cyclenext"))
	root.AddCommand(NewConfigCmd())
	root.AddCommand(NewPathsCmd())

	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	var verbose bool
	root := NewRootCmd(&verbose)
	root.SetArgs(args)
	defer logging.Close()

	if err := root.ExecuteContext(ctx); err != nil {
		cli.NewErrorHandler(verbose).Handle(err)
		return 1
	}
	return 0
}

// runWatch wires the collaborators and runs the scheduler until ctx is done.
func runWatch(ctx context.Context, opts cli.CommandOptions, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.LoadDefault(opts.ConfigFile, logging.NewLogger("config"))
	if err != nil {
		return err
	}
	cfg = cli.ApplyOptions(cfg, opts)

	logger, err := cli.ConfigureLogging(cfg, opts, "cyclenext")
	if err != nil {
		return err
	}

	filter := cfg.Filter(args)

	monitor, err := activity.New(afero.NewOsFs(), cfg, activity.WithLogger(logging.NewLogger("activity")))
	if err != nil {
		return err
	}

	builder := command.NewSafeBuilder().WithTimeout(cfg.CommandTimeout())
	taskCmd, err := pathutil.ExpandCommand(cfg.TaskCommand)
	if err != nil {
		return err
	}
	taskPath, err := builder.Resolve(taskCmd)
	if err != nil {
		return err
	}

	renderer := display.NewRenderer(cfg, taskPath, builder,
		display.WithOutput(stdin, stdout, stderr),
		display.WithRendererLogger(logging.NewLogger("display")),
	)

	var wake <-chan struct{}
	if cfg.WakeOnChange {
		notifier, err := activity.NewChangeNotifier(monitor.WatchedPaths(), logging.NewLogger("activity"))
		if err != nil {
			logger.WithError(err).Warn("File notifications unavailable, polling only")
		} else {
			defer notifier.Close()
			wake = notifier.Changes()
		}
	}

	logger.WithFields(logrus.Fields{
		"task":    taskPath,
		"filter":  filter,
		"watched": monitor.WatchedPaths(),
	}).Info("Starting display")

	sched := scheduler.New(
		scheduler.NewPolicy(cfg),
		filter,
		display.NewTerminalSizer(logger),
		monitor,
		renderer,
		scheduler.WithClock(scheduler.NewClock(wake)),
		scheduler.WithLogger(logging.NewLogger("scheduler")),
		scheduler.WithObserver(logTick(logging.NewLogger("scheduler"))),
	)

	if err := sched.Run(ctx); err != nil {
		return err
	}

	fmt.Fprintln(stdout, Farewell)
	return nil
}

func logTick(logger *logrus.Entry) func(scheduler.TickReport) {
	return func(r scheduler.TickReport) {
		if !logger.Logger.IsLevelEnabled(logrus.DebugLevel) {
			return
		}
		logger.WithFields(logrus.Fields{
			"tick":         r.Tick,
			"size":         r.Size.String(),
			"age":          r.MinimalAge.Round(time.Millisecond).String(),
			"since_redraw": r.State.SinceRedraw.Round(time.Millisecond).String(),
			"lazy":         r.Decision.Lazy,
			"triggers":     r.Decision.Triggers(),
		}).Debug("Tick")
	}
}
