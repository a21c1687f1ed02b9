// Package report renders expectation results as JSON and Markdown,
// per result and as a run summary.
package report

import (
	"io"

	"digital.vasic.attachprobe/pkg/runner"
)

// Reporter defines the interface for generating reports.
type Reporter interface {
	// GenerateReport creates a report for a single expectation
	// result.
	GenerateReport(result *runner.Result) ([]byte, error)

	// GenerateMasterSummary creates a summary of a run.
	GenerateMasterSummary(results []*runner.Result) ([]byte, error)

	// WriteReport writes a report to the specified writer.
	WriteReport(w io.Writer, result *runner.Result) error
}
