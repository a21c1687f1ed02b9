package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"digital.vasic.attachprobe/pkg/runner"
)

// MasterSummary aggregates the results of a run.
type MasterSummary struct {
	ID            string               `json:"id"`
	RunID         string               `json:"run_id,omitempty"`
	GeneratedAt   time.Time            `json:"generated_at"`
	Expectations  []ExpectationSummary `json:"expectations"`
	Total         int                  `json:"total"`
	Passed        int                  `json:"passed"`
	Failed        int                  `json:"failed"`
	Errors        int                  `json:"errors"`
	TotalTrials   int                  `json:"total_trials"`
	TotalDuration time.Duration        `json:"total_duration"`
	PassRate      float64              `json:"pass_rate"`
}

// ExpectationSummary is one row of a MasterSummary.
type ExpectationSummary struct {
	ExpectationID  string        `json:"expectation_id"`
	Model          string        `json:"model"`
	Field          string        `json:"field"`
	Kind           string        `json:"kind"`
	Status         string        `json:"status"`
	Trials         int           `json:"trials"`
	Mismatches     int           `json:"mismatches"`
	Duration       time.Duration `json:"duration"`
	FailureMessage string        `json:"failure_message,omitempty"`
	Error          string        `json:"error,omitempty"`
}

// BuildMasterSummary creates a master summary from results.
func BuildMasterSummary(results []*runner.Result) *MasterSummary {
	summary := &MasterSummary{
		ID:           uuid.NewString(),
		GeneratedAt:  time.Now(),
		Expectations: make([]ExpectationSummary, 0, len(results)),
	}

	for _, r := range results {
		if summary.RunID == "" {
			summary.RunID = r.RunID
		}
		summary.Expectations = append(summary.Expectations, ExpectationSummary{
			ExpectationID:  r.ExpectationID,
			Model:          r.Model,
			Field:          r.Field,
			Kind:           string(r.Kind),
			Status:         r.Status,
			Trials:         r.Trials,
			Mismatches:     len(r.Mismatches),
			Duration:       r.Duration,
			FailureMessage: failureDetail(r),
			Error:          r.Error,
		})
		summary.Total++
		summary.TotalTrials += r.Trials
		summary.TotalDuration += r.Duration

		switch r.Status {
		case runner.StatusPassed:
			summary.Passed++
		case runner.StatusError:
			summary.Errors++
		default:
			summary.Failed++
		}
	}

	if summary.Total > 0 {
		summary.PassRate = float64(summary.Passed) / float64(summary.Total)
	}
	return summary
}

// failureDetail explains a failed result. A result expected to fail
// that did pass has no matcher diagnostic of its own.
func failureDetail(r *runner.Result) string {
	if r.Status != runner.StatusFailed {
		return ""
	}
	if r.Matched && !r.Expected {
		return "expected the assertion to fail, but it passed"
	}
	return r.FailureMessage
}

// Succeeded reports whether every expectation passed.
func (s *MasterSummary) Succeeded() bool {
	return s.Failed == 0 && s.Errors == 0
}

// SaveMasterSummary saves the summary as JSON and Markdown in
// outputDir and points latest_summary.{json,md} at them.
func SaveMasterSummary(summary *MasterSummary, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ts := summary.GeneratedAt.Format("20060102_150405")

	jsonPath := filepath.Join(outputDir, fmt.Sprintf("summary_%s.json", ts))
	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(jsonPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON summary: %w", err)
	}

	mdPath := filepath.Join(outputDir, fmt.Sprintf("summary_%s.md", ts))
	if err := os.WriteFile(
		mdPath, []byte(GenerateSummaryMarkdown(summary)), 0644,
	); err != nil {
		return fmt.Errorf("failed to write Markdown summary: %w", err)
	}

	latestJSON := filepath.Join(outputDir, "latest_summary.json")
	latestMD := filepath.Join(outputDir, "latest_summary.md")

	_ = os.Remove(latestJSON)
	_ = os.Remove(latestMD)
	_ = os.Symlink(filepath.Base(jsonPath), latestJSON)
	_ = os.Symlink(filepath.Base(mdPath), latestMD)

	return nil
}

// GenerateSummaryMarkdown renders a summary as Markdown.
func GenerateSummaryMarkdown(summary *MasterSummary) string {
	var sb strings.Builder

	sb.WriteString("# Attachment Validation Probe - Summary\n\n")
	fmt.Fprintf(&sb, "**Summary ID:** %s\n\n", summary.ID)
	if summary.RunID != "" {
		fmt.Fprintf(&sb, "**Run ID:** %s\n\n", summary.RunID)
	}
	fmt.Fprintf(&sb, "**Generated:** %s\n\n",
		summary.GeneratedAt.Format(time.RFC3339))

	sb.WriteString("## Overview\n\n")
	sb.WriteString("| Expectation | Target | Kind | Status | Trials | Duration |\n")
	sb.WriteString("|-------------|--------|------|--------|--------|----------|\n")
	for _, e := range summary.Expectations {
		fmt.Fprintf(&sb, "| %s | %s.%s | %s | %s | %d | %v |\n",
			e.ExpectationID, e.Model, e.Field, e.Kind,
			strings.ToUpper(e.Status), e.Trials, e.Duration)
	}

	var failures []ExpectationSummary
	for _, e := range summary.Expectations {
		if e.Status != runner.StatusPassed {
			failures = append(failures, e)
		}
	}
	if len(failures) > 0 {
		sb.WriteString("\n## Failures\n\n")
		for _, e := range failures {
			fmt.Fprintf(&sb, "### %s\n\n", e.ExpectationID)
			detail := e.FailureMessage
			if e.Error != "" {
				detail = e.Error
			}
			fmt.Fprintf(&sb, "```\n%s\n```\n\n", detail)
		}
	} else {
		sb.WriteString("\n")
	}

	sb.WriteString("## Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(&sb, "| Total Expectations | %d |\n", summary.Total)
	fmt.Fprintf(&sb, "| Passed | %d |\n", summary.Passed)
	fmt.Fprintf(&sb, "| Failed | %d |\n", summary.Failed)
	fmt.Fprintf(&sb, "| Errors | %d |\n", summary.Errors)
	fmt.Fprintf(&sb, "| Trials | %d |\n", summary.TotalTrials)
	fmt.Fprintf(&sb, "| Pass Rate | %.0f%% |\n", summary.PassRate*100)
	fmt.Fprintf(&sb, "| Total Duration | %v |\n", summary.TotalDuration)

	return sb.String()
}
