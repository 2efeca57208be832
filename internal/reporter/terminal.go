package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pthm/widgetlint/internal/report"
	"github.com/pthm/widgetlint/internal/rules"
	"github.com/pthm/widgetlint/internal/ui"
)

// TerminalReporter outputs results to the terminal with colors
type TerminalReporter struct {
	w      io.Writer
	styles *ui.Styles
}

// NewTerminalReporter creates a new terminal reporter
func NewTerminalReporter(w io.Writer, styles *ui.Styles) *TerminalReporter {
	return &TerminalReporter{w: w, styles: styles}
}

// Report outputs findings grouped by category, then the scores
func (r *TerminalReporter) Report(rep *report.Report) error {
	s := r.styles

	if rep.Total() == 0 {
		fmt.Fprintln(r.w, s.Success.Render(s.IconSuccess+" No issues found"))
	}

	for _, sec := range sections {
		vs := rep.Category(sec.Category)
		if len(vs) == 0 {
			continue
		}
		fmt.Fprintln(r.w)
		fmt.Fprintln(r.w, s.Header.Render(fmt.Sprintf("%s (%d)", sec.Title, len(vs))))
		for _, v := range vs {
			r.printViolation(v)
		}
	}

	if len(rep.Diagnostics) > 0 {
		fmt.Fprintln(r.w)
		fmt.Fprintln(r.w, s.Header.Render("Diagnostics"))
		for _, d := range rep.Diagnostics {
			line := d.Message
			if d.RuleID != "" {
				line = fmt.Sprintf("[%s] %s", d.RuleID, d.Message)
			}
			fmt.Fprintln(r.w, "  "+s.Warning.Render(s.IconWarning)+" "+line)
		}
	}

	r.printSummary(rep)
	return nil
}

func (r *TerminalReporter) severityStyle(sev rules.Severity) (lipgloss.Style, string) {
	s := r.styles
	switch sev {
	case rules.Critical:
		return s.Critical, s.IconCritical
	case rules.High:
		return s.High, s.IconHigh
	case rules.Medium:
		return s.Medium, s.IconMedium
	default:
		return s.Low, s.IconLow
	}
}

func (r *TerminalReporter) printViolation(v rules.Violation) {
	s := r.styles
	style, icon := r.severityStyle(v.Severity)

	target := v.WidgetID
	if v.RelatedWidgetID != "" {
		target += " ↔ " + v.RelatedWidgetID
	}

	fmt.Fprintf(r.w, "  %s %s %s\n",
		style.Render(icon),
		s.Widget.Render(target),
		s.Rule.Render("["+v.RuleID+"]"),
	)
	fmt.Fprintf(r.w, "    %s\n", v.Description)
	if m := measurement(v); m != "" {
		fmt.Fprintf(r.w, "    %s\n", s.Subheader.Render(m))
	}
	if v.RecommendedFix != "" {
		fmt.Fprintf(r.w, "    %s\n", s.Fix.Render("→ "+v.RecommendedFix))
	}
}

func (r *TerminalReporter) printSummary(rep *report.Report) {
	s := r.styles
	summary := ComputeSummary(rep)

	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, s.Separator.Render(strings.Repeat("─", 37)))

	var parts []string
	if summary.Critical > 0 {
		parts = append(parts, s.Critical.Render(fmt.Sprintf("%d critical", summary.Critical)))
	}
	if summary.High > 0 {
		parts = append(parts, s.High.Render(fmt.Sprintf("%d high", summary.High)))
	}
	if summary.Medium > 0 {
		parts = append(parts, s.Medium.Render(fmt.Sprintf("%d medium", summary.Medium)))
	}
	if summary.Low > 0 {
		parts = append(parts, s.Low.Render(fmt.Sprintf("%d low", summary.Low)))
	}

	fmt.Fprintf(r.w, "Found %d issues on %d widgets", summary.TotalIssues, summary.Widgets)
	if len(parts) > 0 {
		fmt.Fprint(r.w, ": "+strings.Join(parts, ", "))
	}
	fmt.Fprintln(r.w)

	sc := rep.SummaryScore
	fmt.Fprintf(r.w, "Scores (%s): layout %.2f · accessibility %.2f · ux %.2f · interaction %.2f\n",
		rep.Metadata.ScoringPolicy, sc.Layout, sc.Accessibility, sc.UX, sc.Interaction)
	fmt.Fprintln(r.w, s.Header.Render(fmt.Sprintf("Overall %.2f / 100", sc.Overall)))
}
