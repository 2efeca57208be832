package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/pthm/widgetlint/internal/report"
	"github.com/pthm/widgetlint/internal/rules"
)

// MarkdownReporter outputs the report as a Markdown document
type MarkdownReporter struct {
	w io.Writer
}

// NewMarkdownReporter creates a new Markdown reporter
func NewMarkdownReporter(w io.Writer) *MarkdownReporter {
	return &MarkdownReporter{w: w}
}

// Report writes the report as Markdown
func (r *MarkdownReporter) Report(rep *report.Report) error {
	_, err := io.WriteString(r.w, Markdown(rep))
	return err
}

// Markdown renders rep as a Markdown document with one table per category.
func Markdown(rep *report.Report) string {
	var sb strings.Builder
	md := rep.Metadata

	sb.WriteString("# Widget analysis report\n\n")
	fmt.Fprintf(&sb, "- **Tool:** %s %s\n", md.Tool, md.Version)
	fmt.Fprintf(&sb, "- **Report:** `%s`\n", md.ReportID)
	fmt.Fprintf(&sb, "- **Generated:** %s\n", md.Timestamp)
	fmt.Fprintf(&sb, "- **Appearance mode:** %s\n", md.AppearanceMode)
	fmt.Fprintf(&sb, "- **Widgets:** %d (%d focusable)\n\n", md.Metrics.TotalWidgets, md.Metrics.FocusableWidgets)

	sc := rep.SummaryScore
	sb.WriteString("## Scores\n\n")
	fmt.Fprintf(&sb, "Scoring policy: `%s`\n\n", md.ScoringPolicy)
	sb.WriteString("| Score | Value |\n|---|---:|\n")
	fmt.Fprintf(&sb, "| Layout | %.2f |\n", sc.Layout)
	fmt.Fprintf(&sb, "| Accessibility | %.2f |\n", sc.Accessibility)
	fmt.Fprintf(&sb, "| UX | %.2f |\n", sc.UX)
	fmt.Fprintf(&sb, "| Interaction | %.2f |\n", sc.Interaction)
	fmt.Fprintf(&sb, "| **Overall** | **%.2f** |\n\n", sc.Overall)

	if rep.Total() == 0 {
		sb.WriteString("No issues found.\n")
	}
	for _, sec := range sections {
		vs := rep.Category(sec.Category)
		if len(vs) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "## %s (%d)\n\n", sec.Title, len(vs))
		sb.WriteString("| Severity | Widget | Rule | Description | Fix |\n|---|---|---|---|---|\n")
		for _, v := range vs {
			fmt.Fprintf(&sb, "| %s | %s | `%s` | %s | %s |\n",
				v.Severity, cell(widgetCell(v)), v.RuleID, cell(description(v)), cell(v.RecommendedFix))
		}
		sb.WriteString("\n")
	}

	if len(rep.Diagnostics) > 0 {
		sb.WriteString("## Diagnostics\n\n")
		for _, d := range rep.Diagnostics {
			if d.RuleID != "" {
				fmt.Fprintf(&sb, "- `%s`: %s\n", d.RuleID, d.Message)
			} else {
				fmt.Fprintf(&sb, "- %s\n", d.Message)
			}
		}
		sb.WriteString("\n")
	}

	if len(rep.InteractionResults) > 0 {
		sb.WriteString("## Interactions\n\n")
		sb.WriteString("| Action | Widget | Result |\n|---|---|---|\n")
		for _, in := range rep.InteractionResults {
			result := "ok"
			if !in.Success {
				result = "failed"
				if in.Error != "" {
					result += ": " + in.Error
				}
			}
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", cell(in.Action), cell(in.WidgetID), cell(result))
		}
	}

	return sb.String()
}

func widgetCell(v rules.Violation) string {
	if v.RelatedWidgetID != "" {
		return v.WidgetID + ", " + v.RelatedWidgetID
	}
	return v.WidgetID
}

func description(v rules.Violation) string {
	if m := measurement(v); m != "" {
		return v.Description + " (" + m + ")"
	}
	return v.Description
}

// cell escapes text for a single Markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
