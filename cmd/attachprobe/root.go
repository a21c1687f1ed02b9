package main

import (
	"github.com/spf13/cobra"

	"digital.vasic.attachprobe/pkg/logging"
)

// globalOptions holds flags shared by every subcommand.
type globalOptions struct {
	verbose bool
	console bool
	logFile string
}

func (o *globalOptions) logger() (logging.Logger, error) {
	l, err := logging.NewZapLogger(logging.Config{
		OutputPath: o.logFile,
		Verbose:    o.verbose,
		Console:    o.console,
		Fields:     map[string]any{"component": "attachprobe"},
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "attachprobe",
		Short: "Probe attachment validation rules declared in suite files",
		Long: `attachprobe loads suite files describing models, their attachment
validations and the behaviour expected of them, then probes each
rule with synthetic uploads and reports whether it holds.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&opts.console, "console", false, "Log in human-readable form instead of JSON lines")
	flags.StringVar(&opts.logFile, "log-file", "", "Write logs to this file instead of stderr")

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newValidateCommand())
	return cmd
}
