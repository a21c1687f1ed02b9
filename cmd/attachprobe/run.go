package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"digital.vasic.attachprobe/pkg/bank"
	"digital.vasic.attachprobe/pkg/logging"
	"digital.vasic.attachprobe/pkg/metrics"
	"digital.vasic.attachprobe/pkg/report"
	"digital.vasic.attachprobe/pkg/runner"
)

const metricsNamespace = "attachprobe"

type runOptions struct {
	resultsDir  string
	metricsFile string
	history     string
	format      string
}

func newRunCommand(global *globalOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <file|dir>...",
		Short: "Run every expectation in the given suites",
		Long: `run loads suite files, and every suite file directly inside the
given directories, then probes each expectation in load order.
The command exits non-zero when any expectation fails or errors.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != "markdown" && opts.format != "json" {
				return &ExitError{
					Code: ExitUsage,
					Err:  fmt.Errorf("unknown format %q", opts.format),
				}
			}
			logger, err := global.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Close() }()
			return runSuites(cmd, args, opts, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.resultsDir, "results-dir", "", "Directory for JSON and Markdown summaries")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics in textfile format")
	flags.StringVar(&opts.history, "history", "", "Append one JSON line per expectation to this file")
	flags.StringVar(&opts.format, "format", "markdown", "Summary printed to stdout: markdown or json")
	return cmd
}

func runSuites(
	cmd *cobra.Command,
	paths []string,
	opts *runOptions,
	logger logging.Logger,
) error {
	b := bank.New()
	for _, path := range paths {
		if err := loadPath(b, path); err != nil {
			return err
		}
	}
	logger.Info("suites_loaded",
		logging.IntField("files", len(b.Sources())),
		logging.IntField("expectations", b.Count()),
	)

	reg := prometheus.NewRegistry()
	r := runner.NewRunner(
		runner.WithBank(b),
		runner.WithLogger(logger),
		runner.WithMetrics(metrics.NewPrometheusMetrics(reg, metricsNamespace)),
	)

	results, err := r.RunAll(cmd.Context())
	if err != nil {
		return err
	}

	summary := report.BuildMasterSummary(results)
	if err := printSummary(cmd, opts.format, summary); err != nil {
		return err
	}

	if opts.resultsDir != "" {
		if err := report.SaveMasterSummary(summary, opts.resultsDir); err != nil {
			return err
		}
	}
	if opts.history != "" {
		if err := report.AppendToHistory(opts.history, results); err != nil {
			return err
		}
	}
	if opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.metricsFile, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	if !summary.Succeeded() {
		return &ExitError{
			Code: ExitFailures,
			Err: fmt.Errorf("%d failed, %d errors out of %d expectations",
				summary.Failed, summary.Errors, summary.Total),
		}
	}
	return nil
}

func loadPath(b *bank.Bank, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return b.LoadDir(path)
	}
	return b.LoadFile(filepath.Clean(path))
}

func printSummary(
	cmd *cobra.Command,
	format string,
	summary *report.MasterSummary,
) error {
	out := cmd.OutOrStdout()
	if format == "json" {
		return report.NewJSONReporter(true).WriteSummary(out, summary)
	}
	_, err := fmt.Fprint(out, report.GenerateSummaryMarkdown(summary))
	return err
}
