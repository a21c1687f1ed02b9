package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"digital.vasic.attachprobe/pkg/bank"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check suite files for schema and reference errors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			invalid := 0
			for _, path := range args {
				errs := bank.ValidateFile(path)
				if len(errs) == 0 {
					fmt.Fprintf(out, "%s: ok\n", path)
					continue
				}
				invalid++
				fmt.Fprintf(out, "%s: %d problem(s)\n", path, len(errs))
				for _, e := range errs {
					fmt.Fprintf(out, "  %s\n", e.Error())
				}
			}
			if invalid > 0 {
				return &ExitError{
					Code: ExitFailures,
					Err:  fmt.Errorf("%d of %d suite files are invalid", invalid, len(args)),
				}
			}
			return nil
		},
	}
}
