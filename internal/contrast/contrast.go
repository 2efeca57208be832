// Package contrast checks foreground/background pairs against the WCAG 2.1
// contrast thresholds.
package contrast

import (
	"fmt"
	"math"

	"github.com/pthm/widgetlint/internal/color"
	"github.com/pthm/widgetlint/internal/config"
	"github.com/pthm/widgetlint/internal/rules"
	"github.com/pthm/widgetlint/internal/widget"
)

var (
	aaMeta = rules.Meta{
		ID:          "insufficient_contrast",
		Description: "Text contrast is below WCAG AA",
		Category:    rules.CategoryContrast,
		Severity:    rules.Medium,
	}
	aaaMeta = rules.Meta{
		ID:          "enhanced_contrast",
		Description: "Text contrast is below WCAG AAA",
		Category:    rules.CategoryContrast,
		Severity:    rules.Low,
	}
	nonTextMeta = rules.Meta{
		ID:          "non_text_contrast",
		Description: "Control outline contrast is below WCAG non-text minimum",
		Category:    rules.CategoryContrast,
		Severity:    rules.Medium,
	}
)

// Rules returns the contrast rules. The AAA rule is included only when the
// profile enables it.
func Rules(cfg *config.Config) []rules.Rule {
	list := []rules.Rule{rules.New(aaMeta, checkAA)}
	if cfg.Contrast.EnableAAA {
		list = append(list, rules.New(aaaMeta, checkAAA))
	}
	return append(list, rules.New(nonTextMeta, checkNonText))
}

// Pair is a resolved text color pair for one widget.
type Pair struct {
	Node   *widget.Node
	Fg, Bg color.RGB
	FgHex  string
	BgHex  string
	Ratio  float64
	Large  bool
}

// IsLarge reports whether text of this size and weight counts as WCAG large text.
func IsLarge(cfg *config.Config, n *widget.Node) bool {
	pts := n.FontPoints()
	if pts <= 0 {
		return false
	}
	return pts >= cfg.Contrast.LargeTextPt || (n.IsBold() && pts >= cfg.Contrast.LargeBoldTextPt)
}

// TextPairs returns the text/background pair of every visible widget that
// renders text and has parseable colors. The background is inherited from the
// nearest ancestor when the widget is transparent.
func TextPairs(ctx *rules.AnalysisContext) []Pair {
	var out []Pair
	for _, n := range ctx.Tree.Nodes() {
		if !n.Kind().CarriesText() || !ctx.Tree.Active(n) {
			continue
		}
		if n.Text == "" && !n.Kind().IsEntryLike() {
			continue
		}
		fg, err := color.Parse(n.FgColor)
		if err != nil {
			continue
		}
		bg, bgHex, ok := background(ctx.Tree, n)
		if !ok {
			continue
		}
		out = append(out, Pair{
			Node:  n,
			Fg:    fg,
			Bg:    bg,
			FgHex: fg.Hex(),
			BgHex: bgHex,
			Ratio: color.ContrastRatio(fg, bg),
			Large: IsLarge(ctx.Config, n),
		})
	}
	return out
}

// background walks from n up to the root looking for a parseable bg color.
func background(tree *widget.Tree, n *widget.Node) (color.RGB, string, bool) {
	for cur := n; cur != nil; cur = tree.Parent(cur) {
		if c, err := color.Parse(cur.BgColor); err == nil {
			return c, c.Hex(), true
		}
	}
	return color.RGB{}, "", false
}

func checkAA(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	var out []rules.Violation
	for _, p := range TextPairs(ctx) {
		required := ctx.Config.Contrast.AANormal
		if p.Large {
			required = ctx.Config.Contrast.AALarge
		}
		if p.Ratio >= required {
			continue
		}
		v := violation(aaMeta, p, required, "AA")
		switch {
		case p.Ratio < 2:
			v.Severity = rules.Critical
		case p.Ratio < 3:
			v.Severity = rules.High
		}
		out = append(out, v)
	}
	return out, nil
}

func checkAAA(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	var out []rules.Violation
	for _, p := range TextPairs(ctx) {
		required := ctx.Config.Contrast.AAANormal
		if p.Large {
			required = ctx.Config.Contrast.AAALarge
		}
		if p.Ratio >= required {
			continue
		}
		out = append(out, violation(aaaMeta, p, required, "AAA"))
	}
	return out, nil
}

func violation(meta rules.Meta, p Pair, required float64, level string) rules.Violation {
	size := "normal"
	if p.Large {
		size = "large"
	}
	v := meta.Violation(p.Node.ID,
		fmt.Sprintf("Contrast between %s and %s on %q is %.2f:1; WCAG %s requires %.1f:1 for %s text.",
			p.FgHex, p.BgHex, p.Node.ID, p.Ratio, level, required, size),
		fixText(p, required),
	)
	v.ContrastDetail = detail(p, required, level)
	return v
}

func detail(p Pair, required float64, level string) *rules.ContrastDetail {
	d := &rules.ContrastDetail{
		FgColor:       p.FgHex,
		BgColor:       p.BgHex,
		ContrastRatio: round2(p.Ratio),
		RequiredRatio: required,
		WCAGLevel:     level,
	}
	if s, ok := color.Suggest(p.Fg, p.Bg, required); ok {
		d.SuggestedColor = s.Hex()
	}
	return d
}

func fixText(p Pair, required float64) string {
	if s, ok := color.Suggest(p.Fg, p.Bg, required); ok {
		return fmt.Sprintf("Change the foreground of %q to %s or another color with at least %.1f:1 contrast.", p.Node.ID, s.Hex(), required)
	}
	return fmt.Sprintf("Change the background behind %q; no foreground reaches %.1f:1 against %s.", p.Node.ID, required, p.BgHex)
}

// chrome returns the color that outlines an interactive control: its
// border when it has one, otherwise the fill of a control without text.
func chrome(n *widget.Node) (color.RGB, bool) {
	if n.BorderColor != "" && (n.BorderWidth == nil || *n.BorderWidth > 0) {
		if c, err := color.Parse(n.BorderColor); err == nil {
			return c, true
		}
	}
	switch n.Kind() {
	case widget.KindSlider, widget.KindSwitch, widget.KindProgress, widget.KindCheckbox, widget.KindRadio:
		if c, err := color.Parse(n.FgColor); err == nil {
			return c, true
		}
	}
	return color.RGB{}, false
}

func checkNonText(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	cfg := ctx.Config.Contrast
	var out []rules.Violation
	for _, n := range ctx.Tree.Nodes() {
		if !n.Kind().IsInteractive() || !ctx.Tree.Active(n) {
			continue
		}
		parent := ctx.Tree.Parent(n)
		if parent == nil {
			continue
		}
		fg, ok := chrome(n)
		if !ok {
			continue
		}
		bg, bgHex, ok := background(ctx.Tree, parent)
		if !ok {
			continue
		}
		ratio := color.ContrastRatio(fg, bg)
		if ratio >= cfg.NonText || ratio < cfg.NonTextFloor {
			continue
		}
		p := Pair{Node: n, Fg: fg, Bg: bg, FgHex: fg.Hex(), BgHex: bgHex, Ratio: ratio}
		v := nonTextMeta.Violation(n.ID,
			fmt.Sprintf("The outline of %q (%s) has %.2f:1 contrast against %s; controls need %.1f:1.",
				n.ID, p.FgHex, ratio, bgHex, cfg.NonText),
			fixText(p, cfg.NonText),
		)
		v.RelatedWidgetID = parent.ID
		v.ContrastDetail = detail(p, cfg.NonText, "non-text")
		out = append(out, v)
	}
	return out, nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
