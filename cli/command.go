package cli

import (
	"strings"

	"github.com/grovetools/cyclenext/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Separator ends the options of the root command. Options are only
// recognised before it; everything after it is passed on as filter tokens.
const Separator = "--"

// CommandOptions holds the options shared by every cyclenext command.
type CommandOptions struct {
	ConfigFile string
	Debug      bool
	Verbose    bool
	Help       bool
}

// NewStandardCommand creates a root command that receives its arguments
// untouched, so filter tokens such as "-tag" never reach the flag parser.
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:                use,
		Short:              short,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
	}

	SetStyledHelp(cmd, OptionFlags(&CommandOptions{}))

	return cmd
}

// OptionFlags returns the flag set of the shared options, bound to opts.
func OptionFlags(opts *CommandOptions) *pflag.FlagSet {
	fs := pflag.NewFlagSet("cyclenext", pflag.ContinueOnError)
	fs.StringVarP(&opts.ConfigFile, "config", "c", "", "Path to a cyclenext.yml or cyclenext.toml config file")
	fs.BoolVar(&opts.Debug, "debug", false, "Show the task command's own messages and log at debug level")
	fs.BoolVarP(&opts.Verbose, "verbose", "v", false, "Log at debug level")
	fs.BoolVarP(&opts.Help, "help", "h", false, "Show this help")
	fs.SortFlags = false
	return fs
}

// ParseOptions splits args at the first Separator. Without a separator all
// args are filter tokens and the options keep their defaults. Before the
// separator, tokens naming a known option are parsed as options and every
// other token, "-home" included, stays a filter token.
func ParseOptions(args []string) (CommandOptions, []string, error) {
	var opts CommandOptions

	split := -1
	for i, arg := range args {
		if arg == Separator {
			split = i
			break
		}
	}
	if split < 0 {
		return opts, append([]string(nil), args...), nil
	}

	fs := OptionFlags(&opts)
	fs.Usage = func() {}
	optionArgs, filter := splitOptionArgs(fs, args[:split])
	if err := fs.Parse(optionArgs); err != nil {
		return CommandOptions{}, nil, err
	}

	filter = append(filter, fs.Args()...)
	filter = append(filter, args[split+1:]...)
	return opts, filter, nil
}

// splitOptionArgs separates the tokens fs knows, with the values of
// non-boolean options, from the rest.
func splitOptionArgs(fs *pflag.FlagSet, args []string) (options, rest []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		flag := lookupOption(fs, arg)
		if flag == nil {
			rest = append(rest, arg)
			continue
		}

		options = append(options, arg)
		if flag.NoOptDefVal == "" && !strings.Contains(arg, "=") && i+1 < len(args) {
			i++
			options = append(options, args[i])
		}
	}
	return options, rest
}

// lookupOption returns the flag named by arg in "--name", "--name=value" or
// "-x" form, or nil.
func lookupOption(fs *pflag.FlagSet, arg string) *pflag.Flag {
	switch {
	case strings.HasPrefix(arg, "--") && len(arg) > 2:
		name, _, _ := strings.Cut(arg[2:], "=")
		return fs.Lookup(name)
	case strings.HasPrefix(arg, "-") && len(arg) == 2:
		return fs.ShorthandLookup(arg[1:])
	}
	return nil
}

// ApplyOptions folds command-line options into a loaded config.
func ApplyOptions(cfg config.Config, opts CommandOptions) config.Config {
	if opts.Debug {
		cfg.Debug = true
	}
	return cfg
}
