package engine

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pthm/widgetlint/internal/color"
	"github.com/pthm/widgetlint/internal/config"
	"github.com/pthm/widgetlint/internal/rules"
	"github.com/pthm/widgetlint/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixed = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixed }

func node(id, typ string, x, y, w, h int, children ...*widget.Node) *widget.Node {
	return &widget.Node{
		ID: id, Type: typ,
		X: x, Y: y, Width: w, Height: h, AbsX: x, AbsY: y,
		Enabled: true, Visible: true,
		Children: children,
	}
}

// formTree has an unlabeled entry, an overlapping button pair and a
// low-contrast label.
func formTree(t *testing.T) *widget.Tree {
	t.Helper()
	faint := node("hint", "CTkLabel", 10, 200, 200, 20)
	faint.Text = "Optional"
	faint.FgColor = "#555555"
	faint.BgColor = "#444444"

	save := node("save", "CTkButton", 10, 100, 100, 30)
	save.Text = "Save"
	save.HasCommand = true
	cancel := node("cancel", "CTkButton", 40, 100, 100, 30)
	cancel.Text = "Cancel"
	cancel.HasCommand = true

	root := node("root", "CTk", 0, 0, 600, 400,
		node("email", "CTkEntry", 10, 10, 200, 30),
		save, cancel, faint,
	)
	root.Title = "Sign up"

	tree, err := widget.NewTree(root, widget.Options{ContainerTypes: config.Default().Structure.ContainerTypes})
	require.NoError(t, err)
	return tree
}

func ruleIDs(vs []rules.Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.RuleID
	}
	return out
}

func TestAnalyze_Form(t *testing.T) {
	e, err := New(config.Default(), WithClock(clock))
	require.NoError(t, err)

	r, err := e.Analyze(context.Background(), Input{Tree: formTree(t), Mode: color.Light})
	require.NoError(t, err)

	assert.Contains(t, ruleIDs(r.LayoutViolations), "overlap_detection")
	assert.Contains(t, ruleIDs(r.ContrastIssues), "insufficient_contrast")
	assert.Contains(t, ruleIDs(r.AccessibilityIssues), "missing_label")
	assert.Less(t, r.SummaryScore.Overall, 100.0)
	assert.Equal(t, "light", r.Metadata.AppearanceMode)
	assert.Equal(t, []string{"email", "save", "cancel"}, r.Metadata.TabOrder)
	assert.Empty(t, r.Diagnostics)
}

func TestAnalyze_Idempotent(t *testing.T) {
	e, err := New(config.Default(), WithClock(clock))
	require.NoError(t, err)
	tree := formTree(t)

	a, err := e.Analyze(context.Background(), Input{Tree: tree})
	require.NoError(t, err)
	b, err := e.Analyze(context.Background(), Input{Tree: tree})
	require.NoError(t, err)

	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, string(ja), string(jb))
}

func TestAnalyze_Concurrent(t *testing.T) {
	e, err := New(config.Default(), WithClock(clock))
	require.NoError(t, err)

	trees := make([]*widget.Tree, 8)
	for i := range trees {
		trees[i] = formTree(t)
	}

	var wg sync.WaitGroup
	ids := make([]string, len(trees))
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := e.Analyze(context.Background(), Input{Tree: trees[i]})
			if err == nil {
				ids[i] = r.Metadata.ReportID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}
}

func TestAnalyze_NilTree(t *testing.T) {
	e, err := New(config.Default())
	require.NoError(t, err)
	_, err = e.Analyze(context.Background(), Input{})
	assert.True(t, errors.Is(err, ErrNoTree))
}

func TestAnalyze_Cancelled(t *testing.T) {
	e, err := New(config.Default(), WithClock(clock))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, err := e.Analyze(ctx, Input{Tree: formTree(t)})
	require.NoError(t, err)
	assert.Zero(t, r.Total())
	require.Len(t, r.Diagnostics, 1)
	assert.Contains(t, r.Diagnostics[0].Message, "analysis stopped")
}

func TestAnalyze_CoordinateMismatchDiagnostic(t *testing.T) {
	child := node("child", "CTkLabel", 10, 10, 50, 20)
	child.AbsX = 99
	child.Text = "x"
	tree, err := widget.NewTree(node("root", "CTk", 0, 0, 200, 200, child), widget.Options{})
	require.NoError(t, err)

	e, err := New(config.Default(), WithClock(clock))
	require.NoError(t, err)
	r, err := e.Analyze(context.Background(), Input{Tree: tree})
	require.NoError(t, err)
	require.NotEmpty(t, r.Diagnostics)
	assert.Contains(t, r.Diagnostics[0].Message, "child")
}

func TestNew_DisabledRules(t *testing.T) {
	cfg := config.Default()
	cfg.Rules.Disabled = []string{"overlap_detection", "missing_label"}
	e, err := New(cfg, WithClock(clock))
	require.NoError(t, err)

	r, err := e.Analyze(context.Background(), Input{Tree: formTree(t)})
	require.NoError(t, err)
	assert.NotContains(t, ruleIDs(r.LayoutViolations), "overlap_detection")
	assert.NotContains(t, ruleIDs(r.AccessibilityIssues), "missing_label")

	cfg.Rules.Disabled = []string{"no_such_rule"}
	_, err = New(cfg)
	assert.Error(t, err)
}

type userRule struct{ name string }

func (r userRule) Name() string        { return r.name }
func (r userRule) Description() string { return "user rule" }
func (r userRule) Config() rules.RuleConfig {
	return rules.RuleConfig{Category: rules.CategoryRule, Severity: rules.Low}
}
func (r userRule) Run(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	return []rules.Violation{{WidgetID: ctx.Tree.Root.ID, Severity: rules.Low, Description: "custom"}}, nil
}

func TestNew_UserRules(t *testing.T) {
	e, err := New(config.Default(), WithClock(clock), WithRules(userRule{name: "house_style"}))
	require.NoError(t, err)

	plan := e.Plan()
	assert.Equal(t, "house_style", plan[len(plan)-1].Name())

	r, err := e.Analyze(context.Background(), Input{Tree: formTree(t)})
	require.NoError(t, err)
	assert.Contains(t, ruleIDs(r.RuleViolations), "house_style")

	_, err = New(config.Default(), WithRules(userRule{name: "overlap_detection"}))
	assert.Error(t, err, "user rules may not shadow built-ins")
}

func TestNew_UncategorisedUserRule(t *testing.T) {
	meta := rules.Meta{ID: "house_style", Severity: rules.High}
	house := rules.New(meta, func(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
		return []rules.Violation{meta.Violation(ctx.Tree.Root.ID, "Window uses the legacy palette", "Switch to the brand palette")}, nil
	})
	e, err := New(config.Default(), WithClock(clock), WithRules(house))
	require.NoError(t, err)

	r, err := e.Analyze(context.Background(), Input{Tree: formTree(t)})
	require.NoError(t, err)
	assert.Contains(t, ruleIDs(r.RuleViolations), "house_style")
	assert.Contains(t, ruleIDs(r.Violations()), "house_style")

	high := 0
	for _, v := range r.Violations() {
		if v.Severity == rules.High {
			high++
		}
	}
	assert.Equal(t, high, r.Metadata.Metrics.ViolationsBySeverity["high"])
}

type stubReviewer struct{}

func (stubReviewer) Review(context.Context, string) (string, error) {
	return `{"issues":[{"rule_id":"missing_window_title","widget_id":"root","severity":"low","description":"d"}]}`, nil
}

func TestNew_Reviewer(t *testing.T) {
	plain, err := New(config.Default())
	require.NoError(t, err)
	deep, err := New(config.Default(), WithReviewer(stubReviewer{}), WithClock(clock))
	require.NoError(t, err)
	assert.Len(t, deep.Plan(), len(plain.Plan())+1)

	r, err := deep.Analyze(context.Background(), Input{Tree: formTree(t)})
	require.NoError(t, err)
	assert.Contains(t, ruleIDs(r.UXIssues), "missing_window_title")
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.UX.MaxWidgetsPerContainer = 0
	_, err := New(cfg)
	var verr *config.ValidationError
	assert.True(t, errors.As(err, &verr))
}

type counter struct{ starts, dones, found int }

func (c *counter) RuleStart(string, rules.Category) { c.starts++ }
func (c *counter) RuleDone(found int) {
	c.dones++
	c.found += found
}

func TestWithProgress(t *testing.T) {
	c := &counter{}
	e, err := New(config.Default(), WithProgress(c), WithClock(clock))
	require.NoError(t, err)
	r, err := e.Analyze(context.Background(), Input{Tree: formTree(t)})
	require.NoError(t, err)
	assert.Equal(t, len(e.Plan()), c.starts)
	assert.Equal(t, c.starts, c.dones)
	assert.Equal(t, r.Total(), c.found)
}
