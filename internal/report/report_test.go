package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pthm/widgetlint/internal/rules"
	"github.com/pthm/widgetlint/internal/score"
	"github.com/pthm/widgetlint/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree(t *testing.T) *widget.Tree {
	t.Helper()
	root := &widget.Node{
		ID: "root", Type: "CTk", Width: 400, Height: 300, Enabled: true, Visible: true,
		Children: []*widget.Node{
			{ID: "ok", Type: "CTkButton", X: 10, Y: 10, AbsX: 10, AbsY: 10, Width: 100, Height: 30, Enabled: true, Visible: true},
			{ID: "name", Type: "CTkEntry", X: 10, Y: 50, AbsX: 10, AbsY: 50, Width: 200, Height: 30, Enabled: true, Visible: true},
		},
	}
	tree, err := widget.NewTree(root, widget.Options{ContainerTypes: []string{"CTk"}})
	require.NoError(t, err)
	return tree
}

var clock = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestAssemble_EmptyArraysAreNotNull(t *testing.T) {
	r, err := Assemble(Input{Tree: testTree(t), Policy: score.V2, Mode: "light", Now: clock})
	require.NoError(t, err)

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{
		"layout_violations", "contrast_issues", "accessibility_issues",
		"ux_issues", "consistency_issues", "rule_violations",
		"interaction_results", "diagnostics",
	} {
		assert.Equal(t, "[]", string(raw[key]), key)
	}
	assert.Equal(t, 100.0, r.SummaryScore.Overall)
	assert.Equal(t, "2026-03-01T12:00:00Z", r.Metadata.Timestamp)
	assert.Equal(t, "widgetlint", r.Metadata.Tool)
	assert.Equal(t, "v2", r.Metadata.ScoringPolicy)
	assert.Equal(t, []string{}, r.Metadata.TabOrder)
}

func TestAssemble_SplitsByCategory(t *testing.T) {
	res := rules.Result{Violations: []rules.Violation{
		{RuleID: "overlap_detection", Category: rules.CategoryLayout, Severity: rules.Critical, WidgetID: "ok"},
		{RuleID: "missing_label", Category: rules.CategoryAccessibility, Severity: rules.High, WidgetID: "name"},
		{RuleID: "missing_placeholder", Category: rules.CategoryUX, Severity: rules.Low, WidgetID: "name"},
	}}
	r, err := Assemble(Input{Tree: testTree(t), Result: res, Policy: score.V2, Now: clock})
	require.NoError(t, err)

	assert.Len(t, r.LayoutViolations, 1)
	assert.Len(t, r.AccessibilityIssues, 1)
	assert.Len(t, r.UXIssues, 1)
	assert.Empty(t, r.ContrastIssues)
	assert.Equal(t, 3, r.Total())

	worst, ok := r.Worst()
	assert.True(t, ok)
	assert.Equal(t, rules.Critical, worst)

	assert.Equal(t, 1, r.Metadata.Metrics.ViolationsBySeverity["critical"])
	assert.Equal(t, 0, r.Metadata.Metrics.ViolationsBySeverity["medium"])
	assert.Equal(t, 3, r.Metadata.Metrics.TotalWidgets)
	assert.Equal(t, 2, r.Metadata.Metrics.FocusableWidgets)
}

func TestAssemble_UncategorisedFindingsAreKept(t *testing.T) {
	res := rules.Result{Violations: []rules.Violation{
		{RuleID: "house_style", Severity: rules.High, WidgetID: "ok"},
		{RuleID: "legacy", Category: "typography", Severity: rules.Low, WidgetID: "name"},
	}}
	r, err := Assemble(Input{Tree: testTree(t), Result: res, Policy: score.V2, Now: clock})
	require.NoError(t, err)

	require.Len(t, r.RuleViolations, 2)
	assert.Equal(t, rules.CategoryRule, r.RuleViolations[0].Category)
	assert.Equal(t, rules.CategoryRule, r.RuleViolations[1].Category)
	assert.Equal(t, 2, r.Total())
	assert.Equal(t, 1, r.Metadata.Metrics.ViolationsBySeverity["high"])
}

func TestAssemble_ReportIDIgnoresTimestamp(t *testing.T) {
	tree := testTree(t)
	a, err := Assemble(Input{Tree: tree, Policy: score.V2, Now: clock})
	require.NoError(t, err)
	b, err := Assemble(Input{Tree: tree, Policy: score.V2, Now: clock.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, a.Metadata.ReportID, b.Metadata.ReportID)

	c, err := Assemble(Input{Tree: tree, Policy: score.V1, Now: clock})
	require.NoError(t, err)
	assert.NotEqual(t, a.Metadata.ReportID, c.Metadata.ReportID)
}

func TestWorst_Empty(t *testing.T) {
	r, err := Assemble(Input{Tree: testTree(t), Policy: score.V2, Now: clock})
	require.NoError(t, err)
	_, ok := r.Worst()
	assert.False(t, ok)
}
