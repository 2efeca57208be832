// Package reporter renders analysis reports for people and machines.
package reporter

import (
	"fmt"
	"io"

	"github.com/pthm/widgetlint/internal/report"
	"github.com/pthm/widgetlint/internal/rules"
	"github.com/pthm/widgetlint/internal/ui"
)

// Reporter defines the interface for outputting analysis results
type Reporter interface {
	// Report outputs one analysis report
	Report(r *report.Report) error
}

// Formats lists the names accepted by New.
var Formats = []string{"terminal", "json", "markdown", "html"}

// New returns the reporter for format. Styles are only used by the terminal
// reporter and may be nil.
func New(format string, w io.Writer, styles *ui.Styles) (Reporter, error) {
	switch format {
	case "", "terminal":
		if styles == nil {
			styles = ui.NewStyles(false)
		}
		return NewTerminalReporter(w, styles), nil
	case "json":
		return NewJSONReporter(w), nil
	case "markdown", "md":
		return NewMarkdownReporter(w), nil
	case "html":
		return NewHTMLReporter(w), nil
	}
	return nil, fmt.Errorf("unknown format %q (want one of %v)", format, Formats)
}

// Summary holds summary statistics for an analysis pass
type Summary struct {
	TotalIssues int
	Critical    int
	High        int
	Medium      int
	Low         int
	Widgets     int
}

// ComputeSummary computes summary statistics from a report
func ComputeSummary(r *report.Report) Summary {
	s := Summary{}

	widgets := make(map[string]bool)
	for _, v := range r.Violations() {
		s.TotalIssues++
		widgets[v.WidgetID] = true
		switch v.Severity {
		case rules.Critical:
			s.Critical++
		case rules.High:
			s.High++
		case rules.Medium:
			s.Medium++
		case rules.Low:
			s.Low++
		}
	}
	s.Widgets = len(widgets)

	return s
}

// section pairs a category with its report heading.
type section struct {
	Category rules.Category
	Title    string
}

var sections = []section{
	{rules.CategoryLayout, "Layout"},
	{rules.CategoryContrast, "Contrast"},
	{rules.CategoryAccessibility, "Accessibility"},
	{rules.CategoryUX, "UX"},
	{rules.CategoryConsistency, "Consistency"},
	{rules.CategoryRule, "Custom rules"},
}

func measurement(v rules.Violation) string {
	switch {
	case v.ContrastDetail != nil:
		s := fmt.Sprintf("%s on %s: %.2f:1, needs %.1f:1 (%s)",
			v.FgColor, v.BgColor, v.ContrastRatio, v.RequiredRatio, v.WCAGLevel)
		if v.SuggestedColor != "" {
			s += fmt.Sprintf(", try %s", v.SuggestedColor)
		}
		return s
	case v.MeasuredValue != nil && v.Threshold != nil:
		return fmt.Sprintf("measured %g, threshold %g", *v.MeasuredValue, *v.Threshold)
	}
	return ""
}
