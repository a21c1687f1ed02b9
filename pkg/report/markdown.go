package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"digital.vasic.attachprobe/pkg/runner"
)

// MarkdownReporter generates Markdown reports.
type MarkdownReporter struct{}

// NewMarkdownReporter creates a new Markdown reporter.
func NewMarkdownReporter() *MarkdownReporter {
	return &MarkdownReporter{}
}

// GenerateReport creates a Markdown report for a single result.
func (r *MarkdownReporter) GenerateReport(
	result *runner.Result,
) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.WriteReport(&buf, result); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateMasterSummary creates a Markdown summary of a run.
func (r *MarkdownReporter) GenerateMasterSummary(
	results []*runner.Result,
) ([]byte, error) {
	return []byte(GenerateSummaryMarkdown(BuildMasterSummary(results))), nil
}

// WriteReport writes a Markdown report to w.
func (r *MarkdownReporter) WriteReport(
	w io.Writer,
	result *runner.Result,
) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Expectation Report: %s\n\n", result.ExpectationID)
	if result.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", result.Description)
	}

	sb.WriteString("| Property | Value |\n")
	sb.WriteString("|----------|-------|\n")
	fmt.Fprintf(&sb, "| Target | %s.%s |\n", result.Model, result.Field)
	fmt.Fprintf(&sb, "| Kind | %s |\n", result.Kind)
	fmt.Fprintf(&sb, "| Status | %s |\n", strings.ToUpper(result.Status))
	fmt.Fprintf(&sb, "| Expected | %s |\n", expectation(result.Expected))
	fmt.Fprintf(&sb, "| Observed | %s |\n", expectation(result.Matched))
	fmt.Fprintf(&sb, "| Trials | %d |\n", result.Trials)
	fmt.Fprintf(&sb, "| Duration | %v |\n", result.Duration)
	if !result.EndTime.IsZero() {
		fmt.Fprintf(&sb, "| Finished | %s |\n",
			result.EndTime.Format(time.RFC3339))
	}

	if len(result.Mismatches) > 0 {
		sb.WriteString("\n## Mismatched Trials\n\n")
		for _, label := range result.Mismatches {
			fmt.Fprintf(&sb, "- `%s`\n", label)
		}
	}
	if result.FailureMessage != "" {
		fmt.Fprintf(&sb, "\n## Diagnostic\n\n```\n%s\n```\n",
			result.FailureMessage)
	}
	if result.Error != "" {
		fmt.Fprintf(&sb, "\n## Error\n\n```\n%s\n```\n", result.Error)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func expectation(pass bool) string {
	if pass {
		return "pass"
	}
	return "fail"
}
