package rules

import (
	"fmt"
	"strings"

	"github.com/pthm/widgetlint/internal/widget"
)

var (
	hiddenInteractive = Meta{
		ID:          "hidden_interactive",
		Description: "Interactive widget is hidden while its parent is shown",
		Category:    CategoryRule,
		Severity:    High,
	}
	emptyTextButton = Meta{
		ID:          "empty_text_button",
		Description: "Button has neither text nor an image",
		Category:    CategoryRule,
		Severity:    Medium,
	}
	excessiveNesting = Meta{
		ID:          "excessive_nesting",
		Description: "Widget hierarchy is nested too deeply",
		Category:    CategoryRule,
		Severity:    Low,
	}
	zeroDimension = Meta{
		ID:          "zero_dimension_widget",
		Description: "Visible widget has zero or negative width or height",
		Category:    CategoryRule,
		Severity:    Medium,
	}
	disabledWithoutReason = Meta{
		ID:          "disabled_without_reason",
		Description: "Disabled control has no nearby text explaining why",
		Category:    CategoryRule,
		Severity:    Low,
	}
	textContentQuality = Meta{
		ID:          "text_content_quality",
		Description: "Widget shows placeholder or development text",
		Category:    CategoryRule,
		Severity:    Medium,
	}
)

// Builtins returns the ad-hoc rules that do not belong to an analyzer.
func Builtins() []Rule {
	return []Rule{
		New(hiddenInteractive, checkHiddenInteractive),
		New(emptyTextButton, checkEmptyTextButton),
		New(excessiveNesting, checkExcessiveNesting),
		New(zeroDimension, checkZeroDimension),
		New(disabledWithoutReason, checkDisabledWithoutReason),
		New(textContentQuality, checkTextContentQuality),
	}
}

func checkHiddenInteractive(ctx *AnalysisContext) ([]Violation, error) {
	var out []Violation
	tree := ctx.Tree
	for _, n := range tree.Nodes() {
		if !n.Kind().IsInteractive() || n.Visible || tree.IsSuppressed(n) {
			continue
		}
		parent := tree.Parent(n)
		if parent == nil || !tree.Active(parent) {
			continue
		}
		out = append(out, hiddenInteractive.Violation(n.ID,
			fmt.Sprintf("%s %q is not visible although %q is shown.", n.Kind(), n.ID, parent.ID),
			fmt.Sprintf("Show %q, or remove it from the layout if it is not needed.", n.ID)))
	}
	return out, nil
}

func checkEmptyTextButton(ctx *AnalysisContext) ([]Violation, error) {
	var out []Violation
	for _, n := range ctx.Tree.Nodes() {
		if !n.Kind().IsButton() || !ctx.Tree.Active(n) {
			continue
		}
		if strings.TrimSpace(n.Text) != "" || n.HasImage {
			continue
		}
		out = append(out, emptyTextButton.Violation(n.ID,
			fmt.Sprintf("Button %q has no text and no image; users cannot tell what it does.", n.ID),
			"Give the button a short text label or an icon with a tooltip."))
	}
	return out, nil
}

func checkExcessiveNesting(ctx *AnalysisContext) ([]Violation, error) {
	limit := ctx.Config.Structure.ExcessiveNestingDepth
	var out []Violation
	for _, n := range ctx.Tree.Nodes() {
		depth := ctx.Tree.Depth(n)
		if depth != limit+1 {
			continue
		}
		out = append(out, excessiveNesting.Violation(n.ID,
			fmt.Sprintf("Widget %q is nested %d levels deep (limit %d).", n.ID, depth, limit),
			"Flatten intermediate frames or split the view into separate screens.",
		).Measure(float64(depth), float64(limit)))
	}
	return out, nil
}

func checkZeroDimension(ctx *AnalysisContext) ([]Violation, error) {
	var out []Violation
	for _, n := range ctx.Tree.Nodes() {
		if !ctx.Tree.Active(n) || (n.Width > 0 && n.Height > 0) {
			continue
		}
		out = append(out, zeroDimension.Violation(n.ID,
			fmt.Sprintf("Widget %q is visible but measures %dx%d pixels.", n.ID, n.Width, n.Height),
			"Check the geometry manager options; the widget may be squeezed out by its siblings.",
		).Measure(float64(min(n.Width, n.Height)), 1))
	}
	return out, nil
}

func checkDisabledWithoutReason(ctx *AnalysisContext) ([]Violation, error) {
	var out []Violation
	tree := ctx.Tree
	for _, n := range tree.Nodes() {
		if !n.Kind().IsInteractive() || n.Enabled || !tree.Active(n) {
			continue
		}
		if IsTransientAction(n.Text) || ExplainedBySibling(tree, n) {
			continue
		}
		out = append(out, disabledWithoutReason.Violation(n.ID,
			fmt.Sprintf("%s %q is disabled with no nearby text explaining how to enable it.", n.Kind(), n.ID),
			"Add a hint label next to the control, e.g. \"Fill in all fields to continue\"."))
	}
	return out, nil
}

var placeholderTexts = map[string]bool{
	"button":      true,
	"label":       true,
	"text":        true,
	"entry":       true,
	"ctkbutton":   true,
	"ctklabel":    true,
	"placeholder": true,
	"todo":        true,
	"fixme":       true,
	"tbd":         true,
	"xxx":         true,
	"test":        true,
	"sample text": true,
	"new button":  true,
	"click me":    true,
}

func checkTextContentQuality(ctx *AnalysisContext) ([]Violation, error) {
	var out []Violation
	for _, n := range ctx.Tree.Nodes() {
		if !ctx.Tree.Active(n) {
			continue
		}
		for _, text := range []string{n.Text, n.PlaceholderText} {
			t := strings.ToLower(strings.TrimSpace(text))
			if t == "" {
				continue
			}
			if placeholderTexts[t] || strings.Contains(t, "lorem ipsum") {
				out = append(out, textContentQuality.Violation(n.ID,
					fmt.Sprintf("Widget %q displays placeholder text %q.", n.ID, text),
					"Replace the development text with the final user-facing wording."))
				break
			}
		}
	}
	return out, nil
}

var transientActions = map[string]bool{
	"cancel": true,
	"stop":   true,
	"abort":  true,
	"pause":  true,
	"undo":   true,
	"redo":   true,
	"close":  true,
	"back":   true,
}

// IsTransientAction reports whether text names an action that is expected
// to start disabled (Cancel, Stop, Undo, ...).
func IsTransientAction(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.TrimRight(t, ".!…")
	return transientActions[t]
}

var hintKeywords = []string{
	"requires", "required", "complete", "until", "fill", "select",
	"enter", "choose", "must", "first", "unavailable", "disabled",
	"please", "need",
}

// ExplainedBySibling reports whether a visible label next to n explains
// why n is unavailable.
func ExplainedBySibling(tree *widget.Tree, n *widget.Node) bool {
	parent := tree.Parent(n)
	if parent == nil {
		return false
	}
	for _, sib := range tree.ActiveChildren(parent) {
		if sib == n || !sib.Kind().IsLabelLike() {
			continue
		}
		text := strings.ToLower(sib.Text)
		for _, kw := range hintKeywords {
			if strings.Contains(text, kw) {
				return true
			}
		}
	}
	return false
}
