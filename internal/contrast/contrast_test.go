package contrast

import (
	"context"
	"testing"

	"github.com/pthm/widgetlint/internal/config"
	"github.com/pthm/widgetlint/internal/rules"
	"github.com/pthm/widgetlint/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func label(id, text, fg, bg string) *widget.Node {
	return &widget.Node{
		ID: id, Type: "CTkLabel", Width: 100, Height: 20,
		Text: text, FgColor: fg, BgColor: bg,
		Enabled: true, Visible: true,
	}
}

func window(bg string, children ...*widget.Node) *widget.Node {
	return &widget.Node{
		ID: "root", Type: "CTk", Width: 400, Height: 300, BgColor: bg,
		Enabled: true, Visible: true, Children: children,
	}
}

func evaluate(t *testing.T, root *widget.Node, tweak ...func(*config.Config)) []rules.Violation {
	t.Helper()
	cfg := config.Default()
	for _, fn := range tweak {
		fn(cfg)
	}
	tree, err := widget.NewTree(root, widget.Options{ContainerTypes: cfg.Structure.ContainerTypes})
	require.NoError(t, err)
	ctx := &rules.AnalysisContext{Context: context.Background(), Tree: tree, Config: cfg}
	res := rules.Evaluate(ctx, Rules(cfg), nil)
	require.Empty(t, res.Diagnostics)
	return res.Violations
}

func TestInsufficientContrast_Scenario(t *testing.T) {
	vs := evaluate(t, window("#ffffff", label("status", "Connected", "#555555", "#444444")))

	require.Len(t, vs, 1)
	v := vs[0]
	assert.Equal(t, "insufficient_contrast", v.RuleID)
	assert.Equal(t, rules.CategoryContrast, v.Category)
	assert.Equal(t, rules.Critical, v.Severity)
	require.NotNil(t, v.ContrastDetail)
	assert.Equal(t, "#555555", v.FgColor)
	assert.Equal(t, "#444444", v.BgColor)
	assert.InDelta(t, 1.31, v.ContrastRatio, 0.01)
	assert.Equal(t, 4.5, v.RequiredRatio)
	assert.Equal(t, "AA", v.WCAGLevel)
	assert.NotEmpty(t, v.SuggestedColor)
}

func TestInsufficientContrast_LargeText(t *testing.T) {
	small := label("small", "Caption", "#777777", "#ffffff")
	small.FontSize = 12
	large := label("large", "Heading", "#777777", "#ffffff")
	large.FontSize = 18
	bold := label("bold", "Subheading", "#777777", "#ffffff")
	bold.FontSize = 14
	bold.FontWeight = "bold"

	vs := evaluate(t, window("#ffffff", small, large, bold))
	require.Len(t, vs, 1)
	assert.Equal(t, "small", vs[0].WidgetID)
	assert.Equal(t, rules.Medium, vs[0].Severity)
}

func TestInsufficientContrast_SeverityBands(t *testing.T) {
	tests := []struct {
		fg   string
		want rules.Severity
	}{
		{"#eeeeee", rules.Critical},
		{"#aaaaaa", rules.High},
		{"#888888", rules.Medium},
	}

	for _, tt := range tests {
		t.Run(tt.fg, func(t *testing.T) {
			vs := evaluate(t, window("#ffffff", label("l", "Text", tt.fg, "#ffffff")))
			require.Len(t, vs, 1)
			assert.Equal(t, tt.want, vs[0].Severity)
		})
	}
}

func TestInsufficientContrast_InheritsBackground(t *testing.T) {
	frame := &widget.Node{
		ID: "frame", Type: "CTkFrame", Width: 300, Height: 200, BgColor: "#444444",
		Enabled: true, Visible: true,
		Children: []*widget.Node{label("l", "Text", "#555555", "transparent")},
	}
	vs := evaluate(t, window("#ffffff", frame))
	require.Len(t, vs, 1)
	assert.Equal(t, "#444444", vs[0].BgColor)
}

func TestInsufficientContrast_SkipsUnknownColors(t *testing.T) {
	vs := evaluate(t, window("", label("l", "Text", "#555555", ""), label("m", "Text", "", "#ffffff")))
	assert.Empty(t, vs)
}

func TestEnhancedContrast_OnlyWhenEnabled(t *testing.T) {
	large := label("large", "Heading", "#777777", "#ffffff")
	large.FontSize = 20

	assert.Empty(t, evaluate(t, window("#ffffff", large)))

	vs := evaluate(t, window("#ffffff", large), func(c *config.Config) { c.Contrast.EnableAAA = true })
	require.Len(t, vs, 1)
	assert.Equal(t, "enhanced_contrast", vs[0].RuleID)
	assert.Equal(t, "AAA", vs[0].WCAGLevel)
	assert.Equal(t, rules.Low, vs[0].Severity)
	assert.Equal(t, 4.5, vs[0].RequiredRatio)
}

func TestNonTextContrast(t *testing.T) {
	check := func(id, border string) *widget.Node {
		return &widget.Node{
			ID: id, Type: "CTkCheckBox", Width: 24, Height: 24, BorderColor: border,
			Enabled: true, Visible: true,
		}
	}

	vs := evaluate(t, window("#ffffff",
		check("faint", "#aaaaaa"),
		check("blended", "#eeeeee"),
		check("strong", "#333333"),
	))
	require.Len(t, vs, 1)
	assert.Equal(t, "non_text_contrast", vs[0].RuleID)
	assert.Equal(t, "faint", vs[0].WidgetID)
	assert.Equal(t, "root", vs[0].RelatedWidgetID)
	assert.Equal(t, "non-text", vs[0].WCAGLevel)
	assert.Equal(t, 3.0, vs[0].RequiredRatio)
}

func TestIsLarge(t *testing.T) {
	cfg := config.Default()
	tests := []struct {
		size   int
		weight string
		want   bool
	}{
		{0, "", false},
		{12, "", false},
		{18, "", true},
		{14, "bold", true},
		{13, "bold", false},
		{-24, "", true},
	}

	for _, tt := range tests {
		n := &widget.Node{FontSize: tt.size, FontWeight: tt.weight}
		assert.Equal(t, tt.want, IsLarge(cfg, n), "size=%d weight=%q", tt.size, tt.weight)
	}
}
