// Package accessibility checks keyboard reachability, labelling and text
// legibility.
package accessibility

import (
	"fmt"
	"math"
	"strings"

	"github.com/pthm/widgetlint/internal/geometry"
	"github.com/pthm/widgetlint/internal/rules"
	"github.com/pthm/widgetlint/internal/widget"
)

// RootWidgetID is reported for findings about the window as a whole.
const RootWidgetID = "<root>"

var (
	focusChainMeta = rules.Meta{
		ID:          "empty_focus_chain",
		Description: "No widget can receive keyboard focus",
		Category:    rules.CategoryAccessibility,
		Severity:    rules.Critical,
	}
	missingLabelMeta = rules.Meta{
		ID:          "missing_label",
		Description: "Input field has no adjacent label",
		Category:    rules.CategoryAccessibility,
		Severity:    rules.High,
	}
	disabledPrimaryMeta = rules.Meta{
		ID:          "disabled_primary_action",
		Description: "Primary action is disabled without explanation",
		Category:    rules.CategoryAccessibility,
		Severity:    rules.Medium,
	}
	unreachableMeta = rules.Meta{
		ID:          "unreachable_focusable",
		Description: "Interactive widget cannot be reached with the keyboard",
		Category:    rules.CategoryAccessibility,
		Severity:    rules.Medium,
	}
	smallTextMeta = rules.Meta{
		ID:          "small_text",
		Description: "Text is smaller than the minimum legible size",
		Category:    rules.CategoryAccessibility,
		Severity:    rules.Medium,
	}
	tabOrderMeta = rules.Meta{
		ID:          "tab_order_mismatch",
		Description: "Tab order diverges from reading order",
		Category:    rules.CategoryAccessibility,
		Severity:    rules.Low,
	}
)

// Rules returns the accessibility rules in evaluation order.
func Rules() []rules.Rule {
	return []rules.Rule{
		rules.New(focusChainMeta, checkFocusChain),
		rules.New(missingLabelMeta, checkMissingLabels),
		rules.New(disabledPrimaryMeta, checkDisabledPrimary),
		rules.New(unreachableMeta, checkUnreachable),
		rules.New(smallTextMeta, checkSmallText),
		rules.New(tabOrderMeta, checkTabOrder),
	}
}

// TabOrder returns the keyboard traversal order: the supplied chain when
// there is one, otherwise focusable widgets in reading order.
func TabOrder(ctx *rules.AnalysisContext) []*widget.Node {
	if len(ctx.TabOrder) == 0 {
		return geometry.FocusOrder(ctx.Tree)
	}
	return supplied(ctx)
}

// supplied resolves the external tab order, dropping unknown ids and repeats.
func supplied(ctx *rules.AnalysisContext) []*widget.Node {
	seen := make(map[string]bool, len(ctx.TabOrder))
	var out []*widget.Node
	for _, id := range ctx.TabOrder {
		n := ctx.Tree.Node(id)
		if n == nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, n)
	}
	return out
}

// TabOrderIDs returns TabOrder as widget ids.
func TabOrderIDs(ctx *rules.AnalysisContext) []string {
	order := TabOrder(ctx)
	ids := make([]string, len(order))
	for i, n := range order {
		ids[i] = n.ID
	}
	return ids
}

func checkFocusChain(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	for _, n := range ctx.Tree.Nodes() {
		if ctx.Tree.IsFocusable(n) {
			return nil, nil
		}
	}
	return []rules.Violation{focusChainMeta.Violation(RootWidgetID,
		"No widget in the window can receive keyboard focus; keyboard users cannot operate it.",
		"Make sure at least one enabled, visible control accepts focus (takefocus is not disabled).",
	)}, nil
}

func checkMissingLabels(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	var out []rules.Violation
	for _, g := range ctx.Tree.SiblingGroups() {
		// Each label names at most one field; labels are paired with the
		// fields that follow them in creation order.
		unpaired := 0
		for _, n := range g.Members {
			k := n.Kind()
			if k.IsLabelLike() && strings.TrimSpace(n.Text) != "" {
				unpaired++
				continue
			}
			if !k.IsEntryLike() {
				continue
			}
			if unpaired > 0 {
				unpaired--
				continue
			}
			if labelOnSameRow(g.Members, n) {
				continue
			}
			out = append(out, missingLabelMeta.Violation(n.ID,
				fmt.Sprintf("%s %q has no label before it or on its row in %q.", k, n.ID, g.Parent.ID),
				fmt.Sprintf("Add a descriptive label immediately before %q in the same container.", n.ID)))
		}
	}
	return out, nil
}

// labelOnSameRow reports whether a text label sits to the left of entry with
// vertical centres within half the entry's height.
func labelOnSameRow(members []*widget.Node, entry *widget.Node) bool {
	eb := geometry.BoxOf(entry)
	for _, m := range members {
		if m == entry || !m.Kind().IsLabelLike() || strings.TrimSpace(m.Text) == "" {
			continue
		}
		lb := geometry.BoxOf(m)
		if lb.X >= eb.X {
			continue
		}
		if math.Abs(lb.CenterY()-eb.CenterY()) <= float64(eb.H)/2 {
			return true
		}
	}
	return false
}

var primaryVerbs = map[string]bool{
	"start": true, "run": true, "submit": true, "save": true, "confirm": true,
	"login": true, "log in": true, "sign in": true, "sign up": true, "register": true,
	"ok": true, "send": true, "apply": true, "continue": true, "next": true,
	"finish": true, "done": true, "create": true, "add": true, "upload": true,
	"download": true, "export": true, "import": true, "generate": true, "analyze": true,
	"analyse": true, "process": true, "execute": true, "launch": true, "connect": true,
	"search": true, "pay": true, "checkout": true, "buy": true, "order": true,
	"book": true, "publish": true, "post": true, "share": true, "install": true,
	"update": true, "sync": true, "build": true, "deploy": true, "accept": true,
	"proceed": true, "validate": true, "calculate": true, "convert": true, "print": true,
}

// IsPrimaryVerb reports whether button text begins with a primary action verb.
func IsPrimaryVerb(text string) bool {
	words := strings.Fields(strings.ToLower(strings.Trim(strings.TrimSpace(text), ".!…")))
	if len(words) == 0 {
		return false
	}
	if primaryVerbs[words[0]] {
		return true
	}
	return len(words) > 1 && primaryVerbs[words[0]+" "+words[1]]
}

func checkDisabledPrimary(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	var out []rules.Violation
	tree := ctx.Tree
	for _, n := range tree.Nodes() {
		if !n.Kind().IsButton() || n.Enabled || !tree.Active(n) {
			continue
		}
		if rules.IsTransientAction(n.Text) || !isPrimary(tree, n) || rules.ExplainedBySibling(tree, n) {
			continue
		}
		out = append(out, disabledPrimaryMeta.Violation(n.ID,
			fmt.Sprintf("Primary action %q (%q) is disabled and nothing nearby says why.", n.ID, n.Text),
			fmt.Sprintf("Enable %q when the action is available, or add a hint label explaining what is missing.", n.ID)))
	}
	return out, nil
}

func isPrimary(tree *widget.Tree, n *widget.Node) bool {
	if IsPrimaryVerb(n.Text) {
		return true
	}
	parent := tree.Parent(n)
	if parent == nil {
		return false
	}
	for _, sib := range tree.ActiveChildren(parent) {
		if sib != n && sib.Kind().IsInteractive() {
			return false
		}
	}
	return true
}

func checkUnreachable(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	inOrder := make(map[string]bool)
	for _, n := range TabOrder(ctx) {
		inOrder[n.ID] = true
	}

	var out []rules.Violation
	for _, n := range ctx.Tree.Nodes() {
		k := n.Kind()
		if !k.IsInteractive() || ctx.Tree.IsSuppressed(n) || inOrder[n.ID] {
			continue
		}
		refused := n.TakeFocus != nil && !*n.TakeFocus
		switch {
		case refused && n.Enabled && n.Visible && (n.HasCommand || k.IsEntryLike()):
			v := unreachableMeta.Violation(n.ID,
				fmt.Sprintf("%s %q has takefocus disabled and cannot be reached with the keyboard.", k, n.ID),
				fmt.Sprintf("Set takefocus=True on %q or provide another keyboard path to it.", n.ID))
			v.Severity = rules.High
			out = append(out, v)
		case (!n.Enabled || !n.Visible) && (n.HasCommand || (n.TakeFocus != nil && *n.TakeFocus)):
			out = append(out, unreachableMeta.Violation(n.ID,
				fmt.Sprintf("%s %q is meant to be used but is left out of the tab order while %s.", k, n.ID, state(n)),
				fmt.Sprintf("Check that %q becomes enabled and visible when it is needed.", n.ID)))
		}
	}
	return out, nil
}

func state(n *widget.Node) string {
	if !n.Visible {
		return "hidden"
	}
	return "disabled"
}

func checkSmallText(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	minPt := ctx.Config.Accessibility.MinFontSizePt
	var out []rules.Violation
	for _, n := range ctx.Tree.Nodes() {
		if !n.Kind().CarriesText() || !ctx.Tree.Active(n) {
			continue
		}
		pts := n.FontPoints()
		if pts <= 0 || pts >= minPt {
			continue
		}
		out = append(out, smallTextMeta.Violation(n.ID,
			fmt.Sprintf("%q uses %.1fpt text, below the %.0fpt minimum.", n.ID, pts, minPt),
			fmt.Sprintf("Increase the font size of %q to at least %.0fpt.", n.ID, minPt),
		).Measure(pts, minPt))
	}
	return out, nil
}

func checkTabOrder(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	if len(ctx.TabOrder) == 0 {
		return nil, nil
	}
	var chain []*widget.Node
	for _, n := range supplied(ctx) {
		if ctx.Tree.Active(n) {
			chain = append(chain, n)
		}
	}
	visual := geometry.VisualOrder(ctx.Tree, chain)
	tol := float64(ctx.Config.Accessibility.TabVisualOrderTolerancePx)

	var out []rules.Violation
	for i, n := range chain {
		expected := visual[i]
		if expected == n {
			continue
		}
		a, b := geometry.BoxOf(n), geometry.BoxOf(expected)
		dist := math.Hypot(a.CenterX()-b.CenterX(), a.CenterY()-b.CenterY())
		if dist <= tol {
			continue
		}
		v := tabOrderMeta.Violation(n.ID,
			fmt.Sprintf("%q is stop %d in the tab order, where reading order expects %q (%.0fpx away).", n.ID, i+1, expected.ID, dist),
			fmt.Sprintf("Create or lift widgets so %q is reached in the order it appears on screen.", n.ID),
		).Measure(math.Round(dist*100)/100, tol)
		v.RelatedWidgetID = expected.ID
		out = append(out, v)
	}
	return out, nil
}
