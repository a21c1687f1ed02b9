package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"digital.vasic.attachprobe/pkg/runner"
)

// HistoricalEntry is one expectation outcome in the history log.
type HistoricalEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	RunID         string    `json:"run_id"`
	ExpectationID string    `json:"expectation_id"`
	Status        string    `json:"status"`
	Duration      string    `json:"duration"`
	Trials        int       `json:"trials"`
	Mismatches    int       `json:"mismatches"`
}

// AppendToHistory adds one line per result to the history log at
// historyPath. Each entry is a single JSON line.
func AppendToHistory(historyPath string, results []*runner.Result) error {
	file, err := os.OpenFile(
		historyPath,
		os.O_CREATE|os.O_APPEND|os.O_WRONLY,
		0644,
	)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer func() { _ = file.Close() }()

	for _, r := range results {
		data, err := json.Marshal(HistoricalEntry{
			Timestamp:     r.EndTime,
			RunID:         r.RunID,
			ExpectationID: r.ExpectationID,
			Status:        r.Status,
			Duration:      r.Duration.String(),
			Trials:        r.Trials,
			Mismatches:    len(r.Mismatches),
		})
		if err != nil {
			return fmt.Errorf("failed to marshal history entry: %w", err)
		}
		if _, err := fmt.Fprintln(file, string(data)); err != nil {
			return err
		}
	}
	return nil
}
