package reporter

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/pthm/widgetlint/internal/report"
	"github.com/pthm/widgetlint/internal/rules"
	"github.com/pthm/widgetlint/internal/score"
	"github.com/pthm/widgetlint/internal/ui"
	"github.com/pthm/widgetlint/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport(t *testing.T, vs []rules.Violation, diags []rules.Diagnostic) *report.Report {
	t.Helper()
	root := &widget.Node{
		ID: "root", Type: "CTk", Width: 400, Height: 300, Enabled: true, Visible: true,
		Children: []*widget.Node{
			{ID: "save", Type: "CTkButton", X: 10, Y: 10, AbsX: 10, AbsY: 10, Width: 100, Height: 30, Enabled: true, Visible: true},
			{ID: "name", Type: "CTkEntry", X: 10, Y: 50, AbsX: 10, AbsY: 50, Width: 200, Height: 30, Enabled: true, Visible: true},
		},
	}
	tree, err := widget.NewTree(root, widget.Options{ContainerTypes: []string{"CTk"}})
	require.NoError(t, err)

	rep, err := report.Assemble(report.Input{
		Tree:   tree,
		Result: rules.Result{Violations: vs, Diagnostics: diags},
		Interactions: []widget.Interaction{
			{Action: "click", WidgetID: "save", Success: false, Error: "widget disabled"},
		},
		Mode:   "light",
		Policy: score.V2,
		Now:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return rep
}

func sampleViolations() []rules.Violation {
	return []rules.Violation{
		{
			RuleID: "overlap_detection", Category: rules.CategoryLayout, Severity: rules.Critical,
			WidgetID: "save", RelatedWidgetID: "name",
			Description: "save overlaps name", RecommendedFix: "Move one of the widgets",
		},
		{
			RuleID: "insufficient_contrast", Category: rules.CategoryContrast, Severity: rules.High,
			WidgetID: "save", Description: "Text contrast | too low", RecommendedFix: "Darken the text",
			ContrastDetail: &rules.ContrastDetail{
				FgColor: "#777777", BgColor: "#888888", ContrastRatio: 1.25, RequiredRatio: 4.5, WCAGLevel: "AA",
			},
		},
		rules.Violation{
			RuleID: "missing_placeholder", Category: rules.CategoryUX, Severity: rules.Low,
			WidgetID: "name", Description: "Entry has no placeholder",
		}.Measure(0, 1),
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	for _, f := range Formats {
		r, err := New(f, &buf, nil)
		require.NoError(t, err, f)
		assert.NotNil(t, r)
	}
	_, err := New("pdf", &buf, nil)
	assert.Error(t, err)
}

func TestComputeSummary(t *testing.T) {
	s := ComputeSummary(testReport(t, sampleViolations(), nil))
	assert.Equal(t, Summary{TotalIssues: 3, Critical: 1, High: 1, Low: 1, Widgets: 2}, s)
}

func TestJSONReporter(t *testing.T) {
	rep := testReport(t, sampleViolations(), nil)
	var buf bytes.Buffer
	require.NoError(t, NewJSONReporter(&buf).Report(rep))

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	for _, key := range []string{"metadata", "widget_tree", "layout_violations", "contrast_issues", "summary_score"} {
		assert.Contains(t, raw, key)
	}

	var layout []map[string]any
	require.NoError(t, json.Unmarshal(raw["layout_violations"], &layout))
	require.Len(t, layout, 1)
	assert.Equal(t, "critical", layout[0]["severity"])
	assert.Equal(t, "name", layout[0]["related_widget_id"])
}

func TestTerminalReporter(t *testing.T) {
	rep := testReport(t, sampleViolations(), []rules.Diagnostic{{RuleID: "slow_rule", Message: "rule failed: boom"}})
	var buf bytes.Buffer
	require.NoError(t, NewTerminalReporter(&buf, ui.NewStyles(false)).Report(rep))

	out := buf.String()
	assert.Contains(t, out, "Layout (1)")
	assert.Contains(t, out, "CRITICAL: save ↔ name [overlap_detection]")
	assert.Contains(t, out, "#777777 on #888888: 1.25:1, needs 4.5:1 (AA)")
	assert.Contains(t, out, "measured 0, threshold 1")
	assert.Contains(t, out, "→ Darken the text")
	assert.Contains(t, out, "[slow_rule] rule failed: boom")
	assert.Contains(t, out, "Found 3 issues on 2 widgets: 1 critical, 1 high, 1 low")
	assert.NotContains(t, out, "Consistency")
}

func TestTerminalReporter_Clean(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTerminalReporter(&buf, ui.NewStyles(false)).Report(testReport(t, nil, nil)))
	assert.Contains(t, buf.String(), "OK: No issues found")
	assert.Contains(t, buf.String(), "Found 0 issues on 0 widgets\n")
}

func TestMarkdown(t *testing.T) {
	md := Markdown(testReport(t, sampleViolations(), nil))

	assert.Contains(t, md, "# Widget analysis report")
	assert.Contains(t, md, "## Contrast (1)")
	assert.Contains(t, md, "| critical | save, name | `overlap_detection` |")
	assert.Contains(t, md, `Text contrast \| too low`, "pipes are escaped inside cells")
	assert.Contains(t, md, "| click | save | failed: widget disabled |")
	assert.NotContains(t, md, "## Diagnostics")
}

func TestHTMLReporter(t *testing.T) {
	rep := testReport(t, sampleViolations(), nil)
	var buf bytes.Buffer
	require.NoError(t, NewHTMLReporter(&buf).Report(rep))

	out := buf.String()
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "<h1>Widget analysis report</h1>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<code>overlap_detection</code>")
	assert.Contains(t, out, rep.Metadata.ReportID)
}
