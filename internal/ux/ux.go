// Package ux implements usability heuristics that look at widget content and
// grouping rather than geometry or color.
package ux

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pthm/widgetlint/internal/rules"
	"github.com/pthm/widgetlint/internal/widget"
)

func meta(id, desc string, sev rules.Severity) rules.Meta {
	return rules.Meta{ID: id, Description: desc, Category: rules.CategoryUX, Severity: sev}
}

var (
	overloadMeta       = meta("cognitive_overload", "Container holds too many widgets", rules.Medium)
	duplicateLabelMeta = meta("duplicate_button_label", "Sibling buttons share a label", rules.Medium)
	longTextMeta       = meta("long_button_text", "Button label is too long", rules.Low)
	casingMeta         = meta("inconsistent_button_casing", "Sibling buttons mix casing styles", rules.Low)
	placeholderMeta    = meta("missing_placeholder", "Entry has no placeholder text", rules.Low)
	orphanedLabelMeta  = meta("orphaned_label", "Field label has no input next to it", rules.Low)
	singleChildMeta    = meta("single_child_container", "Container wraps a single widget", rules.Low)
	windowTitleMeta    = meta("missing_window_title", "Window has no meaningful title", rules.Medium)
	emptySelectionMeta = meta("empty_selection_widget", "Selection widget has no values", rules.Medium)
	ungroupedRadioMeta = meta("ungrouped_radio_button", "Radio button is not grouped with its peers", rules.Medium)
	noPrimaryMeta      = meta("no_primary_action", "No button stands out as the primary action", rules.High)
	noCommandMeta      = meta("button_no_command", "Button does nothing when clicked", rules.High)
	deepNestingMeta    = meta("deep_single_nesting", "Chain of single-child containers", rules.Low)
)

// Rules returns the UX heuristics in evaluation order.
func Rules() []rules.Rule {
	return []rules.Rule{
		rules.New(overloadMeta, checkOverload),
		rules.New(duplicateLabelMeta, checkDuplicateLabels),
		rules.New(longTextMeta, checkLongText),
		rules.New(casingMeta, checkCasing),
		rules.New(placeholderMeta, checkPlaceholder),
		rules.New(orphanedLabelMeta, checkOrphanedLabels),
		rules.New(singleChildMeta, checkSingleChild),
		rules.New(windowTitleMeta, checkWindowTitle),
		rules.New(emptySelectionMeta, checkEmptySelection),
		rules.New(ungroupedRadioMeta, checkUngroupedRadio),
		rules.New(noPrimaryMeta, checkNoPrimary),
		rules.New(noCommandMeta, checkNoCommand),
		rules.New(deepNestingMeta, checkDeepNesting),
	}
}

// IDs returns the rule ids this package can emit.
func IDs() []string {
	list := Rules()
	ids := make([]string, len(list))
	for i, r := range list {
		ids[i] = r.Name()
	}
	return ids
}

func checkOverload(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	limit := ctx.Config.UX.MaxWidgetsPerContainer
	var out []rules.Violation
	for _, n := range ctx.Tree.Nodes() {
		if !ctx.Tree.IsContainer(n) || !ctx.Tree.Active(n) {
			continue
		}
		count := len(ctx.Tree.ActiveChildren(n))
		if count <= limit {
			continue
		}
		out = append(out, overloadMeta.Violation(n.ID,
			fmt.Sprintf("%q shows %d widgets at once (recommended max %d).", n.ID, count, limit),
			fmt.Sprintf("Split the content of %q into sub-frames, tabs or collapsible sections.", n.ID),
		).Measure(float64(count), float64(limit)))
	}
	return out, nil
}

// buttons returns the active buttons of a sibling group.
func buttons(g widget.Group) []*widget.Node {
	var out []*widget.Node
	for _, m := range g.Members {
		if m.Kind().IsButton() {
			out = append(out, m)
		}
	}
	return out
}

func checkDuplicateLabels(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	var out []rules.Violation
	for _, g := range ctx.Tree.SiblingGroups() {
		first := make(map[string]*widget.Node)
		for _, b := range buttons(g) {
			key := strings.ToLower(strings.TrimSpace(b.Text))
			if key == "" {
				continue
			}
			orig, seen := first[key]
			if !seen {
				first[key] = b
				continue
			}
			v := duplicateLabelMeta.Violation(b.ID,
				fmt.Sprintf("%q repeats the label %q already used by %q in the same container.", b.ID, b.Text, orig.ID),
				"Give each button a distinct label that names its specific action.")
			v.RelatedWidgetID = orig.ID
			out = append(out, v)
		}
	}
	return out, nil
}

func checkLongText(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	limit := ctx.Config.UX.MaxButtonTextLength
	var out []rules.Violation
	for _, n := range ctx.Tree.Nodes() {
		if !n.Kind().IsButton() || !ctx.Tree.Active(n) {
			continue
		}
		length := utf8.RuneCountInString(strings.TrimSpace(n.Text))
		if length <= limit {
			continue
		}
		out = append(out, longTextMeta.Violation(n.ID,
			fmt.Sprintf("Button %q has a %d-character label (max %d).", n.ID, length, limit),
			"Shorten the label to a verb or short phrase such as \"Save\" or \"Export data\".",
		).Measure(float64(length), float64(limit)))
	}
	return out, nil
}

func checkPlaceholder(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	var out []rules.Violation
	for _, n := range ctx.Tree.Nodes() {
		if n.Kind() != widget.KindEntry || !ctx.Tree.Active(n) {
			continue
		}
		if strings.TrimSpace(n.PlaceholderText) != "" || strings.TrimSpace(n.Text) != "" {
			continue
		}
		out = append(out, placeholderMeta.Violation(n.ID,
			fmt.Sprintf("Entry %q has no placeholder text describing the expected input.", n.ID),
			fmt.Sprintf("Set placeholder_text on %q, e.g. an example value or format.", n.ID)))
	}
	return out, nil
}

func checkOrphanedLabels(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	var out []rules.Violation
	for _, g := range ctx.Tree.SiblingGroups() {
		for i, m := range g.Members {
			if !m.Kind().IsLabelLike() || !strings.HasSuffix(strings.TrimSpace(m.Text), ":") {
				continue
			}
			if i+1 < len(g.Members) && g.Members[i+1].Kind().IsInteractive() {
				continue
			}
			if interactiveOnRow(g.Members, m) {
				continue
			}
			out = append(out, orphanedLabelMeta.Violation(m.ID,
				fmt.Sprintf("Label %q (%q) looks like a field label but no input follows it.", m.ID, m.Text),
				fmt.Sprintf("Place the input %q describes right after it, or drop the trailing colon.", m.ID)))
		}
	}
	return out, nil
}

func interactiveOnRow(members []*widget.Node, label *widget.Node) bool {
	mid := float64(label.AbsY) + float64(label.Height)/2
	for _, m := range members {
		if m == label || !m.Kind().IsInteractive() {
			continue
		}
		half := float64(max(m.Height, label.Height)) / 2
		c := float64(m.AbsY) + float64(m.Height)/2
		if c-mid <= half && mid-c <= half {
			return true
		}
	}
	return false
}

// structural reports whether n is a plain container: not a window and not a
// toolkit wrapper such as a scroll area or tab view.
func structural(tree *widget.Tree, n *widget.Node) bool {
	k := n.Kind()
	return tree.IsContainer(n) && !k.IsWindow() && !k.IsWrapper()
}

func checkSingleChild(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	var out []rules.Violation
	for _, n := range ctx.Tree.Nodes() {
		if n == ctx.Tree.Root || !structural(ctx.Tree, n) || !ctx.Tree.Active(n) || len(n.Children) != 1 {
			continue
		}
		child := n.Children[0]
		if child.Kind().IsWrapper() {
			continue
		}
		v := singleChildMeta.Violation(n.ID,
			fmt.Sprintf("Container %q holds only %q; the extra level adds nesting without grouping anything.", n.ID, child.ID),
			fmt.Sprintf("Place %q directly in the parent of %q, or merge the two.", child.ID, n.ID))
		v.RelatedWidgetID = child.ID
		out = append(out, v)
	}
	return out, nil
}

func checkWindowTitle(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	root := ctx.Tree.Root
	if !root.Kind().IsWindow() {
		return nil, nil
	}
	switch strings.ToLower(strings.TrimSpace(root.Title)) {
	case "", "tk", "ctk":
	default:
		return nil, nil
	}
	return []rules.Violation{windowTitleMeta.Violation(root.ID,
		fmt.Sprintf("Window %q has no meaningful title (%q).", root.ID, root.Title),
		"Set a descriptive title, e.g. app.title(\"Invoice Manager\").",
	)}, nil
}

func checkEmptySelection(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	var out []rules.Violation
	for _, n := range ctx.Tree.Nodes() {
		if n.Kind() != widget.KindSelection || ctx.Tree.IsSuppressed(n) || len(n.Values) > 0 {
			continue
		}
		out = append(out, emptySelectionMeta.Violation(n.ID,
			fmt.Sprintf("Selection widget %q (%s) has no values to choose from.", n.ID, n.Type),
			fmt.Sprintf("Populate the values of %q, or disable it until options are available.", n.ID)))
	}
	return out, nil
}

func checkUngroupedRadio(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	var out []rules.Violation
	for _, n := range ctx.Tree.Nodes() {
		if n.Kind() != widget.KindRadio || ctx.Tree.IsSuppressed(n) {
			continue
		}
		parent := ctx.Tree.Parent(n)
		if parent == nil {
			continue
		}
		reason := ""
		if parent.Kind().IsWindow() {
			reason = "sits directly in the window"
		} else if countKind(parent.Children, widget.KindRadio) == 1 {
			reason = "is the only radio button in its container"
		}
		if reason == "" {
			continue
		}
		out = append(out, ungroupedRadioMeta.Violation(n.ID,
			fmt.Sprintf("Radio button %q %s, so its choice group is unclear.", n.ID, reason),
			fmt.Sprintf("Put %q and its alternatives in a dedicated frame, or use a checkbox for a single option.", n.ID)))
	}
	return out, nil
}

func countKind(nodes []*widget.Node, k widget.Kind) int {
	c := 0
	for _, n := range nodes {
		if n.Kind() == k {
			c++
		}
	}
	return c
}

func checkNoPrimary(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	var out []rules.Violation
	for _, g := range ctx.Tree.SiblingGroups() {
		var enabled []*widget.Node
		for _, b := range buttons(g) {
			if b.Enabled {
				enabled = append(enabled, b)
			}
		}
		if len(enabled) < 2 || anyEmphasised(enabled) {
			continue
		}
		out = append(out, noPrimaryMeta.Violation(g.Parent.ID,
			fmt.Sprintf("%q has %d buttons styled identically; none reads as the main action.", g.Parent.ID, len(enabled)),
			"Emphasise the main action with a bold font or an accent background color."))
	}
	return out, nil
}

// anyEmphasised reports whether one button is bold or has a background that
// differs from the others. With a single shared background nothing stands out.
func anyEmphasised(btns []*widget.Node) bool {
	bg := btns[0].BgColor
	for _, b := range btns {
		if b.IsBold() || !strings.EqualFold(b.BgColor, bg) {
			return true
		}
	}
	return false
}

func checkNoCommand(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	var out []rules.Violation
	for _, n := range ctx.Tree.Nodes() {
		if !n.Kind().IsButton() || !n.Enabled || !ctx.Tree.Active(n) || n.HasCommand {
			continue
		}
		out = append(out, noCommandMeta.Violation(n.ID,
			fmt.Sprintf("Button %q is enabled but has no command; clicking it does nothing.", n.ID),
			fmt.Sprintf("Bind a command to %q, or disable it until it has something to do.", n.ID)))
	}
	return out, nil
}

func checkDeepNesting(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	chain := ctx.Config.UX.DeepNestingChain
	var out []rules.Violation

	var walk func(n *widget.Node, depth int, start *widget.Node)
	walk = func(n *widget.Node, depth int, start *widget.Node) {
		if !structural(ctx.Tree, n) || len(n.Children) != 1 {
			for _, c := range n.Children {
				walk(c, 0, nil)
			}
			return
		}
		depth++
		if start == nil {
			start = n
		}
		if depth >= chain {
			v := deepNestingMeta.Violation(n.ID,
				fmt.Sprintf("%q is level %d of a chain of single-child containers starting at %q.", n.ID, depth, start.ID),
				fmt.Sprintf("Flatten the chain under %q into a single container.", start.ID),
			).Measure(float64(depth), float64(chain))
			v.RelatedWidgetID = start.ID
			out = append(out, v)
		}
		walk(n.Children[0], depth, start)
	}
	walk(ctx.Tree.Root, 0, nil)
	return out, nil
}
