// Package geometry implements the spatial layout checks: overlap, spacing,
// touch targets, alignment, symmetry, containment and text truncation.
package geometry

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/pthm/widgetlint/internal/rules"
	"github.com/pthm/widgetlint/internal/widget"
)

var (
	paddingMeta = rules.Meta{
		ID:          "insufficient_padding",
		Description: "Adjacent siblings are closer than the minimum padding",
		Category:    rules.CategoryLayout,
		Severity:    rules.Medium,
	}
	touchTargetMeta = rules.Meta{
		ID:          "small_touch_target",
		Description: "Interactive widget is smaller than the minimum touch target",
		Category:    rules.CategoryLayout,
		Severity:    rules.Medium,
	}
	alignmentMeta = rules.Meta{
		ID:          "alignment_inconsistency",
		Description: "Widget is out of line with its siblings",
		Category:    rules.CategoryLayout,
		Severity:    rules.Low,
	}
	symmetryMeta = rules.Meta{
		ID:          "symmetry_deviation",
		Description: "Widget is off the shared centre axis of its siblings",
		Category:    rules.CategoryLayout,
		Severity:    rules.Low,
	}
	outsideBoundsMeta = rules.Meta{
		ID:          "widget_outside_bounds",
		Description: "Widget extends beyond its parent",
		Category:    rules.CategoryLayout,
		Severity:    rules.Medium,
	}
	truncationMeta = rules.Meta{
		ID:          "content_truncation_risk",
		Description: "Widget text is likely wider than the widget",
		Category:    rules.CategoryLayout,
		Severity:    rules.Low,
	}
)

// Rules returns the layout rules in evaluation order.
func Rules() []rules.Rule {
	return []rules.Rule{
		&OverlapRule{},
		rules.New(paddingMeta, checkPadding),
		rules.New(touchTargetMeta, checkTouchTargets),
		rules.New(alignmentMeta, checkAlignment),
		rules.New(symmetryMeta, checkSymmetry),
		rules.New(outsideBoundsMeta, checkOutsideBounds),
		rules.New(truncationMeta, checkTruncation),
	}
}

func checkPadding(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	minPad := ctx.Config.Layout.MinPaddingPx
	var out []rules.Violation

	for _, g := range ctx.Tree.SiblingGroups() {
		if len(g.Members) < 2 {
			continue
		}
		for _, gp := range groupGaps(ctx.Tree, g.Members) {
			if gp.Px < 0 || gp.Px >= minPad {
				continue
			}
			v := paddingMeta.Violation(gp.From.ID,
				fmt.Sprintf("Spacing between %q and %q is %dpx (minimum %dpx).", gp.From.ID, gp.To.ID, gp.Px, minPad),
				fmt.Sprintf("Add at least %dpx of padding between %q and %q.", minPad-gp.Px, gp.From.ID, gp.To.ID),
			).Measure(float64(gp.Px), float64(minPad))
			v.RelatedWidgetID = gp.To.ID
			out = append(out, v)
		}
	}
	return out, nil
}

// groupGaps returns consecutive gaps for a sibling group. Grid groups are
// measured along each row and each column; other groups along their
// dominant axis.
func groupGaps(tree *widget.Tree, members []*widget.Node) []Gap {
	if !IsGrid(members) {
		return Gaps(tree, members, DominantAxis(members))
	}
	var out []Gap
	for _, row := range gridLines(members, "row") {
		out = append(out, Gaps(tree, row, Horizontal)...)
	}
	for _, col := range gridLines(members, "column", "col") {
		out = append(out, Gaps(tree, col, Vertical)...)
	}
	return out
}

// gridLines partitions members by the first present grid detail key, keeping
// first-seen order.
func gridLines(members []*widget.Node, keys ...string) [][]*widget.Node {
	var order []string
	lines := make(map[string][]*widget.Node)
	for _, m := range members {
		val := "0"
		for _, k := range keys {
			if d := m.Detail(k); d != "" {
				val = d
				break
			}
		}
		if _, seen := lines[val]; !seen {
			order = append(order, val)
		}
		lines[val] = append(lines[val], m)
	}
	out := make([][]*widget.Node, 0, len(order))
	for _, k := range order {
		out = append(out, lines[k])
	}
	return out
}

func checkTouchTargets(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	minSize := ctx.Config.Layout.MinTouchTargetPx
	var out []rules.Violation

	for _, n := range ctx.Tree.Nodes() {
		if !n.Kind().IsInteractive() || !n.Enabled || !ctx.Tree.Active(n) {
			continue
		}
		if BoxOf(n).Empty() || (n.Width >= minSize && n.Height >= minSize) {
			continue
		}
		out = append(out, touchTargetMeta.Violation(n.ID,
			fmt.Sprintf("%q is %dx%dpx, below the minimum touch target of %dpx.", n.ID, n.Width, n.Height, minSize),
			fmt.Sprintf("Increase %q to at least %dx%dpx.", n.ID, minSize, minSize),
		).Measure(float64(min(n.Width, n.Height)), float64(minSize)))
	}
	return out, nil
}

func checkAlignment(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	var out []rules.Violation

	for _, g := range ctx.Tree.SiblingGroups() {
		if IsGrid(g.Members) {
			tol := ctx.Config.GridAlignmentTolerancePx()
			for _, col := range gridLines(g.Members, "column", "col") {
				out = append(out, alignGroup(col, Vertical, false, tol)...)
			}
			continue
		}
		axis := DominantAxis(g.Members)
		out = append(out, alignGroup(g.Members, axis, centredPack(g.Members), ctx.Config.Layout.AlignmentTolerancePx)...)
	}
	return out, nil
}

// centredPack reports whether every member was packed with the default
// centre anchor and no horizontal fill, so their centres line up rather than
// their left edges.
func centredPack(members []*widget.Node) bool {
	for _, m := range members {
		if m.LayoutManager != widget.LayoutPack {
			return false
		}
		if a := m.Detail("anchor"); a != "" && a != "center" {
			return false
		}
		if f := m.Detail("fill"); f == "x" || f == "both" {
			return false
		}
	}
	return len(members) > 0
}

func alignGroup(members []*widget.Node, axis Axis, centred bool, tol int) []rules.Violation {
	type point struct {
		n     *widget.Node
		coord int
	}
	var pts []point
	for _, m := range members {
		if BoxOf(m).Empty() {
			continue
		}
		c := m.AbsX
		switch {
		case axis == Horizontal:
			c = m.AbsY
		case centred:
			c = m.AbsX + m.Width/2
		}
		pts = append(pts, point{m, c})
	}
	if len(pts) < 3 {
		return nil
	}

	coords := make([]int, len(pts))
	for i, p := range pts {
		coords[i] = p.coord
	}
	mode, count := modeInt(coords)
	if count < 2 {
		return nil
	}

	edge := "left edge"
	if axis == Horizontal {
		edge = "top edge"
	} else if centred {
		edge = "centre"
	}
	var out []rules.Violation
	for _, p := range pts {
		diff := abs(p.coord - mode)
		if diff <= tol {
			continue
		}
		out = append(out, alignmentMeta.Violation(p.n.ID,
			fmt.Sprintf("%q %s at %d deviates %dpx from the common alignment at %d.", p.n.ID, edge, p.coord, diff, mode),
			fmt.Sprintf("Align %q with its siblings at %d.", p.n.ID, mode),
		).Measure(float64(diff), float64(tol)))
	}
	return out
}

// modeInt returns the most frequent value and its count. Ties go to the
// smaller value.
func modeInt(vals []int) (int, int) {
	counts := make(map[int]int, len(vals))
	for _, v := range vals {
		counts[v]++
	}
	best, bestCount := 0, 0
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best, bestCount = v, c
		}
	}
	return best, bestCount
}

// checkSymmetry measures each row of a sibling group against the group's
// vertical axis, the mean of the row centres. Siblings sharing vertical
// extent form one row and are centred as a unit.
func checkSymmetry(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	tol := float64(ctx.Config.Layout.SymmetryTolerancePx)
	alignTol := ctx.Config.Layout.AlignmentTolerancePx
	var out []rules.Violation

	for _, g := range ctx.Tree.SiblingGroups() {
		parent := g.Parent
		if !ctx.Tree.IsContainer(parent) || parent.Width <= 0 {
			continue
		}
		var sized []*widget.Node
		for _, m := range g.Members {
			if !BoxOf(m).Empty() {
				sized = append(sized, m)
			}
		}
		if len(sized) < 2 || IsGrid(sized) || anchoredSideways(sized) || leftAligned(sized, alignTol) {
			continue
		}

		rows := symmetryRows(ctx.Tree, sized)
		if len(rows) < 2 {
			continue
		}
		axis := 0.0
		for _, r := range rows {
			axis += r.box.CenterX()
		}
		axis /= float64(len(rows))

		for _, r := range rows {
			dev := math.Abs(r.box.CenterX() - axis)
			if dev <= tol {
				continue
			}
			for _, m := range r.members {
				v := symmetryMeta.Violation(m.ID,
					fmt.Sprintf("%q is centred %.0fpx off the shared axis of its siblings in %q.", m.ID, dev, parent.ID),
					fmt.Sprintf("Centre %q on x=%.0f or give the contents of %q matching margins.", m.ID, axis, parent.ID),
				).Measure(round2(dev), tol)
				v.RelatedWidgetID = parent.ID
				out = append(out, v)
			}
		}
	}
	return out, nil
}

type symmetryRow struct {
	box     Box
	members []*widget.Node
}

func symmetryRows(tree *widget.Tree, members []*widget.Node) []symmetryRow {
	var rows []symmetryRow
	for _, m := range VisualOrder(tree, members) {
		b := BoxOf(m)
		if n := len(rows); n > 0 && crossOverlap(rows[n-1].box, b, Horizontal) {
			rows[n-1].box = rows[n-1].box.Union(b)
			rows[n-1].members = append(rows[n-1].members, m)
			continue
		}
		rows = append(rows, symmetryRow{box: b, members: []*widget.Node{m}})
	}
	return rows
}

// anchoredSideways reports whether any member is deliberately pinned to the
// left or right edge.
func anchoredSideways(members []*widget.Node) bool {
	for _, m := range members {
		if s := m.Detail("sticky"); strings.ContainsAny(s, "ew") && !(strings.Contains(s, "e") && strings.Contains(s, "w")) {
			return true
		}
		switch m.Detail("anchor") {
		case "e", "w", "ne", "nw", "se", "sw":
			return true
		}
		switch m.Detail("side") {
		case "left", "right":
			if m.LayoutManager == widget.LayoutPack {
				return true
			}
		}
	}
	return false
}

// leftAligned reports whether members share a left edge but not a right
// edge, the usual shape of a left-aligned form column.
func leftAligned(members []*widget.Node, tol int) bool {
	left, right := members[0].AbsX, members[0].AbsX+members[0].Width
	ragged := false
	for _, m := range members[1:] {
		if abs(m.AbsX-left) > tol {
			return false
		}
		if abs(m.AbsX+m.Width-right) > tol {
			ragged = true
		}
	}
	return ragged
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func checkOutsideBounds(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	tol := ctx.Config.Layout.OutsideBoundsTolerancePx
	var out []rules.Violation

	for _, n := range ctx.Tree.Nodes() {
		parent := ctx.Tree.Parent(n)
		if parent == nil || !ctx.Tree.Active(n) || parent.Kind() == widget.KindScrollable {
			continue
		}
		pb, cb := BoxOf(parent), BoxOf(n)
		if pb.Empty() || cb.Empty() {
			continue
		}
		overflow := max(
			cb.Right()-pb.Right(),
			cb.Bottom()-pb.Bottom(),
			pb.X-cb.X,
			pb.Y-cb.Y,
		)
		if overflow <= tol {
			continue
		}
		v := outsideBoundsMeta.Violation(n.ID,
			fmt.Sprintf("%q extends %dpx beyond its parent %q.", n.ID, overflow, parent.ID),
			fmt.Sprintf("Resize or reposition %q to fit within %q, or enlarge the parent.", n.ID, parent.ID),
		).Measure(float64(overflow), float64(tol))
		v.RelatedWidgetID = parent.ID
		out = append(out, v)
	}
	return out, nil
}

func checkTruncation(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	var out []rules.Violation

	for _, n := range ctx.Tree.Nodes() {
		k := n.Kind()
		if !(k.IsLabelLike() || k.IsButton()) || !ctx.Tree.Active(n) {
			continue
		}
		if utf8.RuneCountInString(n.Text) < 5 || n.Width <= 0 {
			continue
		}
		charWidth := 8.0
		if n.FontSize != 0 {
			charWidth = max(5, math.Abs(float64(n.FontSize))*0.6)
		}
		estimate := float64(runewidth.StringWidth(n.Text)) * charWidth
		available := float64(n.Width - 16)
		if available <= 0 || estimate <= available*1.2 {
			continue
		}
		out = append(out, truncationMeta.Violation(n.ID,
			fmt.Sprintf("Text of %q (%q) needs about %.0fpx but only %.0fpx are available.", n.ID, abbreviate(n.Text, 30), estimate, available),
			fmt.Sprintf("Widen %q or shorten its text.", n.ID),
		).Measure(round2(estimate), available))
	}
	return out, nil
}

func abbreviate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// FocusOrder returns the focusable widgets of tree in visual order. It is
// the fallback tab order when the toolkit did not report one.
func FocusOrder(tree *widget.Tree) []*widget.Node {
	var focusable []*widget.Node
	for _, n := range tree.Nodes() {
		if tree.IsFocusable(n) {
			focusable = append(focusable, n)
		}
	}
	return VisualOrder(tree, focusable)
}
