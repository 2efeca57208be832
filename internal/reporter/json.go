package reporter

import (
	"encoding/json"
	"io"

	"github.com/pthm/widgetlint/internal/report"
)

// JSONReporter outputs the report in its canonical JSON shape
type JSONReporter struct {
	w io.Writer
}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{w: w}
}

// Report outputs the report as indented JSON
func (r *JSONReporter) Report(rep *report.Report) error {
	encoder := json.NewEncoder(r.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rep)
}
