package report

import (
	"encoding/json"
	"io"

	"digital.vasic.attachprobe/pkg/runner"
)

// JSONReporter generates JSON reports from expectation results.
type JSONReporter struct {
	pretty bool
}

// NewJSONReporter creates a new JSON reporter. When pretty is
// true, output is indented for readability.
func NewJSONReporter(pretty bool) *JSONReporter {
	return &JSONReporter{pretty: pretty}
}

// GenerateReport creates a JSON report for a single result.
func (r *JSONReporter) GenerateReport(
	result *runner.Result,
) ([]byte, error) {
	return r.marshal(result)
}

// GenerateMasterSummary creates a JSON summary of a run.
func (r *JSONReporter) GenerateMasterSummary(
	results []*runner.Result,
) ([]byte, error) {
	return r.marshal(BuildMasterSummary(results))
}

// WriteReport writes a JSON report to the specified writer.
func (r *JSONReporter) WriteReport(
	w io.Writer,
	result *runner.Result,
) error {
	data, err := r.GenerateReport(result)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteSummary writes an already built summary to w.
func (r *JSONReporter) WriteSummary(w io.Writer, s *MasterSummary) error {
	data, err := r.marshal(s)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func (r *JSONReporter) marshal(v any) ([]byte, error) {
	if r.pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
