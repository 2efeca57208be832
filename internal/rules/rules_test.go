package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/pthm/widgetlint/internal/config"
	"github.com/pthm/widgetlint/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id, typ string, x, y, w, h int, children ...*widget.Node) *widget.Node {
	return &widget.Node{
		ID: id, Type: typ,
		X: x, Y: y, Width: w, Height: h, AbsX: x, AbsY: y,
		Enabled: true, Visible: true,
		Children: children,
	}
}

func testContext(t *testing.T, root *widget.Node) *AnalysisContext {
	t.Helper()
	cfg := config.Default()
	tree, err := widget.NewTree(root, widget.Options{ContainerTypes: cfg.Structure.ContainerTypes})
	require.NoError(t, err)
	return &AnalysisContext{Context: context.Background(), Tree: tree, Config: cfg}
}

func staticRule(id string, category Category, vs ...Violation) Rule {
	return New(Meta{ID: id, Category: category, Severity: Low}, func(*AnalysisContext) ([]Violation, error) {
		return vs, nil
	})
}

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		sev  Severity
		want string
	}{
		{Low, "low"},
		{Medium, "medium"},
		{High, "high"},
		{Critical, "critical"},
		{Severity(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.sev.String(); got != tt.want {
			t.Errorf("Severity(%d).String() = %q, want %q", tt.sev, got, tt.want)
		}
	}
}

func TestSeverity_Ordering(t *testing.T) {
	assert.Less(t, Low, Medium)
	assert.Less(t, Medium, High)
	assert.Less(t, High, Critical)
	assert.Equal(t, 25.0, Critical.Deduction())
	assert.Equal(t, 15.0, High.Deduction())
	assert.Equal(t, 10.0, Medium.Deduction())
	assert.Equal(t, 5.0, Low.Deduction())
}

func TestSeverity_JSON(t *testing.T) {
	data, err := json.Marshal(High)
	require.NoError(t, err)
	assert.Equal(t, `"high"`, string(data))

	var s Severity
	require.NoError(t, json.Unmarshal([]byte(`"critical"`), &s))
	assert.Equal(t, Critical, s)
	assert.Error(t, json.Unmarshal([]byte(`"fatal"`), &s))
}

func TestViolation_JSON(t *testing.T) {
	v := Meta{ID: "insufficient_contrast", Category: CategoryContrast, Severity: Critical}.
		Violation("lbl", "too faint", "darken it")
	v.ContrastDetail = &ContrastDetail{FgColor: "#555555", BgColor: "#444444", ContrastRatio: 1.31, RequiredRatio: 4.5, WCAGLevel: "AA"}

	data, err := json.Marshal(v)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "insufficient_contrast", decoded["rule_id"])
	assert.Equal(t, "critical", decoded["severity"])
	assert.Equal(t, "#555555", decoded["fg_color"])
	assert.Equal(t, 4.5, decoded["required_ratio"])
	assert.NotContains(t, decoded, "measured_value")

	plain, err := json.Marshal(Meta{ID: "x"}.Violation("w", "d", "f").Measure(3, 4))
	require.NoError(t, err)
	assert.Contains(t, string(plain), `"measured_value":3`)
	assert.NotContains(t, string(plain), "fg_color")
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(staticRule("a", CategoryUX)))

	err := r.Register(staticRule("a", CategoryLayout))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.Len(t, r.All(), 1)
	assert.Equal(t, CategoryUX, r.Get("a").Config().Category)
}

func TestRegistry_RejectsWholeBatch(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(staticRule("a", CategoryUX)))

	err := r.Register(staticRule("b", CategoryUX), nil, staticRule("a", CategoryLayout))
	require.Error(t, err)
	assert.Len(t, r.All(), 1)
	assert.Nil(t, r.Get("b"))

	err = r.Register(staticRule("c", CategoryUX), staticRule("c", CategoryLayout))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"c"`)
	assert.Nil(t, r.Get("c"))

	err = r.Register(staticRule("d", CategoryUX), staticRule("", CategoryUX))
	require.Error(t, err)
	assert.Nil(t, r.Get("d"))

	require.NoError(t, r.Register(staticRule("b", CategoryUX), nil, staticRule("c", CategoryUX)))
	assert.Equal(t, []string{"a", "b", "c"}, ruleNames(r.All()))
}

func ruleNames(list []Rule) []string {
	out := make([]string, len(list))
	for i, rule := range list {
		out[i] = rule.Name()
	}
	return out
}

func TestRegistry_EnableDisable(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(staticRule("a", CategoryUX), staticRule("b", CategoryUX)))

	require.NoError(t, r.Disable("a"))
	assert.False(t, r.Enabled("a"))
	assert.Len(t, r.Rules(false), 1)

	require.NoError(t, r.Enable("a"))
	assert.True(t, r.Enabled("a"))
	assert.Len(t, r.Rules(false), 2)

	assert.Error(t, r.Disable("missing"))
	assert.Nil(t, r.Get("missing"))
}

func TestRegistry_FiltersAIRules(t *testing.T) {
	r := NewRegistry()
	ai := New(Meta{ID: "ai", RequiresAI: true}, func(*AnalysisContext) ([]Violation, error) { return nil, nil })
	require.NoError(t, r.Register(staticRule("plain", CategoryUX), ai))

	assert.Len(t, r.Rules(false), 1)
	assert.Len(t, r.Rules(true), 2)
}

type recorder struct {
	started    []string
	categories []Category
	done       int
	found      int
}

func (r *recorder) RuleStart(name string, cat Category) {
	r.started = append(r.started, name)
	r.categories = append(r.categories, cat)
}

func (r *recorder) RuleDone(found int) {
	r.done++
	r.found += found
}

func TestEvaluate_IsolatesFailingRules(t *testing.T) {
	ctx := testContext(t, node("root", "CTk", 0, 0, 100, 100))

	good := staticRule("good", CategoryLayout, Violation{WidgetID: "root", Severity: Low})
	failing := New(Meta{ID: "failing", Category: CategoryUX}, func(*AnalysisContext) ([]Violation, error) {
		return []Violation{{WidgetID: "root"}}, errors.New("boom")
	})
	panicking := New(Meta{ID: "panicking", Category: CategoryUX}, func(*AnalysisContext) ([]Violation, error) {
		panic("index out of range")
	})
	partial := New(Meta{ID: "partial", Category: CategoryLayout}, func(*AnalysisContext) ([]Violation, error) {
		return []Violation{{WidgetID: "root"}}, fmt.Errorf("%w: deadline", ErrPartial)
	})
	after := staticRule("after", CategoryRule, Violation{WidgetID: "root"})

	obs := &recorder{}
	res := Evaluate(ctx, []Rule{good, failing, panicking, partial, after}, obs)

	require.Len(t, res.Violations, 3)
	assert.Equal(t, "good", res.Violations[0].RuleID)
	assert.Equal(t, "partial", res.Violations[1].RuleID)
	assert.Equal(t, "after", res.Violations[2].RuleID)
	assert.Equal(t, CategoryRule, res.Violations[2].Category)

	require.Len(t, res.Diagnostics, 3)
	assert.Equal(t, "failing", res.Diagnostics[0].RuleID)
	assert.Contains(t, res.Diagnostics[0].Message, "boom")
	assert.Equal(t, "panicking", res.Diagnostics[1].RuleID)
	assert.Contains(t, res.Diagnostics[1].Message, "panic")
	assert.Equal(t, "partial", res.Diagnostics[2].RuleID)

	assert.Equal(t, []string{"good", "failing", "panicking", "partial", "after"}, obs.started)
	assert.Equal(t, []Category{CategoryLayout, CategoryUX, CategoryUX, CategoryLayout, CategoryRule}, obs.categories)
	assert.Equal(t, 5, obs.done)
	assert.Equal(t, 3, obs.found)
}

func TestEvaluate_UncategorisedRuleFilesUnderRule(t *testing.T) {
	ctx := testContext(t, node("root", "CTk", 0, 0, 100, 100))

	meta := Meta{ID: "house_style", Severity: High}
	bare := New(meta, func(*AnalysisContext) ([]Violation, error) {
		return []Violation{meta.Violation("root", "Logo is off-brand", "Use the brand asset")}, nil
	})
	odd := New(Meta{ID: "odd", Category: "typography"}, func(*AnalysisContext) ([]Violation, error) {
		return []Violation{{WidgetID: "root", Category: "typography"}}, nil
	})

	obs := &recorder{}
	res := Evaluate(ctx, []Rule{bare, odd}, obs)
	require.Len(t, res.Violations, 2)
	assert.Equal(t, CategoryRule, res.Violations[0].Category)
	assert.Equal(t, High, res.Violations[0].Severity)
	assert.Equal(t, CategoryRule, res.Violations[1].Category)
	assert.Equal(t, []Category{CategoryRule, CategoryRule}, obs.categories)

	assert.Equal(t, CategoryRule, CategoryOf(bare))
	assert.True(t, CategoryUX.Known())
	assert.False(t, Category("").Known())
}

func TestEvaluate_StopsOnCancel(t *testing.T) {
	ctx := testContext(t, node("root", "CTk", 0, 0, 100, 100))
	cctx, cancel := context.WithCancel(context.Background())
	ctx.Context = cctx

	first := New(Meta{ID: "first"}, func(*AnalysisContext) ([]Violation, error) {
		cancel()
		return []Violation{{WidgetID: "root"}}, nil
	})
	second := staticRule("second", CategoryUX, Violation{WidgetID: "root"})

	res := Evaluate(ctx, []Rule{first, second}, nil)
	require.Len(t, res.Violations, 1)
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0].Message, "1 of 2 rules")
}

func TestEvaluate_EmptyResultIsNotNil(t *testing.T) {
	ctx := testContext(t, node("root", "CTk", 0, 0, 100, 100))
	res := Evaluate(ctx, nil, nil)
	assert.NotNil(t, res.Violations)
	assert.Empty(t, res.Violations)
}

func runBuiltin(t *testing.T, id string, root *widget.Node) []Violation {
	t.Helper()
	ctx := testContext(t, root)
	for _, r := range Builtins() {
		if r.Name() == id {
			vs, err := r.Run(ctx)
			require.NoError(t, err)
			return vs
		}
	}
	t.Fatalf("no builtin rule %q", id)
	return nil
}

func TestBuiltin_DisabledWithoutReason(t *testing.T) {
	cancel := node("cancel", "CTkButton", 10, 10, 100, 30)
	cancel.Text = "Cancel"
	cancel.Enabled = false
	submit := node("submit", "CTkButton", 120, 10, 100, 30)
	submit.Text = "Submit"
	submit.Enabled = false

	vs := runBuiltin(t, "disabled_without_reason", node("root", "CTk", 0, 0, 400, 300, cancel, submit))
	require.Len(t, vs, 1)
	assert.Equal(t, "submit", vs[0].WidgetID)
	assert.Equal(t, Low, vs[0].Severity)

	hint := node("hint", "CTkLabel", 10, 50, 200, 20)
	hint.Text = "Fill in all fields to continue"
	submit2 := node("submit", "CTkButton", 120, 10, 100, 30)
	submit2.Enabled = false
	vs = runBuiltin(t, "disabled_without_reason", node("root", "CTk", 0, 0, 400, 300, submit2, hint))
	assert.Empty(t, vs)
}

func TestBuiltin_HiddenInteractive(t *testing.T) {
	hidden := node("hidden", "CTkButton", 10, 10, 100, 30)
	hidden.Visible = false
	tabbed := node("tabbed", "CTkButton", 10, 10, 100, 30)
	tabbed.Visible = false
	tabbed.Suppressed = true

	vs := runBuiltin(t, "hidden_interactive", node("root", "CTk", 0, 0, 400, 300, hidden, tabbed))
	require.Len(t, vs, 1)
	assert.Equal(t, "hidden", vs[0].WidgetID)
	assert.Equal(t, High, vs[0].Severity)
}

func TestBuiltin_EmptyTextButton(t *testing.T) {
	icon := node("icon", "CTkButton", 10, 10, 30, 30)
	icon.HasImage = true
	blank := node("blank", "CTkButton", 50, 10, 30, 30)
	blank.Text = "   "

	vs := runBuiltin(t, "empty_text_button", node("root", "CTk", 0, 0, 400, 300, icon, blank))
	require.Len(t, vs, 1)
	assert.Equal(t, "blank", vs[0].WidgetID)
}

func TestBuiltin_ExcessiveNesting(t *testing.T) {
	leaf := node("n11", "CTkLabel", 0, 0, 10, 10)
	cur := leaf
	for i := 10; i >= 1; i-- {
		cur = node(fmt.Sprintf("n%d", i), "CTkFrame", 0, 0, 10, 10, cur)
	}
	root := node("root", "CTk", 0, 0, 10, 10, cur)

	vs := runBuiltin(t, "excessive_nesting", root)
	require.Len(t, vs, 1)
	assert.Equal(t, "n11", vs[0].WidgetID)
	assert.Equal(t, 11.0, *vs[0].MeasuredValue)
}

func TestBuiltin_ZeroDimension(t *testing.T) {
	vs := runBuiltin(t, "zero_dimension_widget", node("root", "CTk", 0, 0, 400, 300,
		node("flat", "CTkLabel", 0, 0, 100, 0),
		node("fine", "CTkLabel", 0, 10, 100, 20),
	))
	require.Len(t, vs, 1)
	assert.Equal(t, "flat", vs[0].WidgetID)
}

func TestBuiltin_TextContentQuality(t *testing.T) {
	lorem := node("lorem", "CTkLabel", 0, 0, 100, 20)
	lorem.Text = "Lorem ipsum dolor sit amet"
	btn := node("btn", "CTkButton", 0, 30, 100, 30)
	btn.Text = "Button"
	ok := node("ok", "CTkButton", 0, 70, 100, 30)
	ok.Text = "Save changes"

	vs := runBuiltin(t, "text_content_quality", node("root", "CTk", 0, 0, 400, 300, lorem, btn, ok))
	require.Len(t, vs, 2)
	assert.Equal(t, "lorem", vs[0].WidgetID)
	assert.Equal(t, "btn", vs[1].WidgetID)
}

func TestIsTransientAction(t *testing.T) {
	for _, s := range []string{"Cancel", "STOP", " undo ", "Abort!", "Pause"} {
		assert.True(t, IsTransientAction(s), s)
	}
	for _, s := range []string{"Submit", "Cancel order", ""} {
		assert.False(t, IsTransientAction(s), s)
	}
}
