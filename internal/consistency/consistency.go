// Package consistency looks for siblings of the same type that are styled or
// sized differently from the rest of their cluster.
package consistency

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pthm/widgetlint/internal/geometry"
	"github.com/pthm/widgetlint/internal/rules"
	"github.com/pthm/widgetlint/internal/widget"
)

func meta(id, desc string, sev rules.Severity) rules.Meta {
	return rules.Meta{ID: id, Description: desc, Category: rules.CategoryConsistency, Severity: sev}
}

var (
	sizeMeta    = meta("inconsistent_size", "Widget size differs from its siblings of the same type", rules.Low)
	fontMeta    = meta("inconsistent_font", "Widget font differs from its siblings of the same type", rules.Low)
	paddingMeta = meta("inconsistent_padding", "Widget padding differs from its siblings of the same type", rules.Low)
	radiusMeta  = meta("inconsistent_corner_radius", "Widget corner radius differs from its siblings", rules.Low)
	spacingMeta = meta("inconsistent_spacing", "Spacing between siblings is uneven", rules.Low)
	managerMeta = meta("mixed_layout_managers", "Siblings use different geometry managers", rules.Medium)
)

// Rules returns the consistency rules in evaluation order.
func Rules() []rules.Rule {
	return []rules.Rule{
		rules.New(sizeMeta, checkSize),
		rules.New(fontMeta, checkFont),
		rules.New(paddingMeta, checkPadding),
		rules.New(radiusMeta, checkCornerRadius),
		rules.New(spacingMeta, checkSpacing),
		rules.New(managerMeta, checkLayoutManagers),
	}
}

// Cluster is a set of same-type siblings.
type Cluster struct {
	Parent  *widget.Node
	Type    string
	Members []*widget.Node
}

// Clusters groups each parent's active children by widget type, keeping
// clusters of two or more in first-seen order.
func Clusters(tree *widget.Tree) []Cluster {
	var out []Cluster
	for _, g := range tree.SiblingGroups() {
		byType := make(map[string][]*widget.Node)
		var order []string
		for _, m := range g.Members {
			if _, seen := byType[m.Type]; !seen {
				order = append(order, m.Type)
			}
			byType[m.Type] = append(byType[m.Type], m)
		}
		for _, t := range order {
			if len(byType[t]) >= 2 {
				out = append(out, Cluster{Parent: g.Parent, Type: t, Members: byType[t]})
			}
		}
	}
	return out
}

// mode returns the most frequent key, the first-seen one on ties, and its count.
func mode(keys []string) (string, int) {
	counts := make(map[string]int, len(keys))
	best, bestCount := "", 0
	for _, k := range keys {
		counts[k]++
	}
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best, bestCount
}

func checkSize(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	tol := ctx.Config.Consistency.SizeTolerancePct
	var out []rules.Violation
	for _, c := range Clusters(ctx.Tree) {
		if !c.Members[0].Kind().IsInteractive() {
			continue
		}
		var sized []*widget.Node
		var sumW, sumH float64
		for _, m := range c.Members {
			if m.Width > 0 && m.Height > 0 {
				sized = append(sized, m)
				sumW += float64(m.Width)
				sumH += float64(m.Height)
			}
		}
		if len(sized) < 2 {
			continue
		}
		avgW, avgH := sumW/float64(len(sized)), sumH/float64(len(sized))
		for _, m := range sized {
			dev := 100 * math.Max(
				math.Abs(float64(m.Width)-avgW)/avgW,
				math.Abs(float64(m.Height)-avgH)/avgH,
			)
			if dev <= tol {
				continue
			}
			out = append(out, sizeMeta.Violation(m.ID,
				fmt.Sprintf("%s %q is %dx%dpx, %.0f%% off the sibling average of %.0fx%.0fpx.", c.Type, m.ID, m.Width, m.Height, dev, avgW, avgH),
				fmt.Sprintf("Give %q the same size as the other %s widgets in %q.", m.ID, c.Type, c.Parent.ID),
			).Measure(math.Round(dev*100)/100, tol))
		}
	}
	return out, nil
}

func fontKey(n *widget.Node) string {
	return fmt.Sprintf("%s/%d/%s", strings.ToLower(n.FontFamily), n.FontSize, strings.ToLower(n.FontWeight))
}

func describeFont(n *widget.Node) string {
	family := n.FontFamily
	if family == "" {
		family = "default"
	}
	s := fmt.Sprintf("%s %d", family, n.FontSize)
	if n.FontWeight != "" {
		s += " " + n.FontWeight
	}
	return s
}

func checkFont(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	var out []rules.Violation
	for _, c := range Clusters(ctx.Tree) {
		if c.Members[0].Kind().IsLabelLike() {
			continue
		}
		var known []*widget.Node
		var keys []string
		for _, m := range c.Members {
			if m.FontFamily == "" && m.FontSize == 0 {
				continue
			}
			known = append(known, m)
			keys = append(keys, fontKey(m))
		}
		common, count := mode(keys)
		if count < 2 {
			continue
		}
		ref := known[indexOf(keys, common)]
		for i, m := range known {
			if keys[i] == common {
				continue
			}
			v := fontMeta.Violation(m.ID,
				fmt.Sprintf("%q uses %s while its sibling %s widgets use %s.", m.ID, describeFont(m), c.Type, describeFont(ref)),
				fmt.Sprintf("Use the same font as %q.", ref.ID))
			v.RelatedWidgetID = ref.ID
			out = append(out, v)
		}
	}
	return out, nil
}

func indexOf(keys []string, k string) int {
	for i, s := range keys {
		if s == k {
			return i
		}
	}
	return -1
}

func checkPadding(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	var out []rules.Violation
	for _, c := range Clusters(ctx.Tree) {
		xs := make([]string, len(c.Members))
		ys := make([]string, len(c.Members))
		for i, m := range c.Members {
			xs[i] = strconv.Itoa(m.Padding.PadX)
			ys[i] = strconv.Itoa(m.Padding.PadY)
		}
		modeX, _ := mode(xs)
		modeY, _ := mode(ys)
		checkX, checkY := distinct(xs) > 2, distinct(ys) > 2

		for i, m := range c.Members {
			var off []string
			if checkX && xs[i] != modeX {
				off = append(off, fmt.Sprintf("padx %s (usual %s)", xs[i], modeX))
			}
			if checkY && ys[i] != modeY {
				off = append(off, fmt.Sprintf("pady %s (usual %s)", ys[i], modeY))
			}
			if len(off) == 0 {
				continue
			}
			out = append(out, paddingMeta.Violation(m.ID,
				fmt.Sprintf("%q has %s among %d %s siblings.", m.ID, strings.Join(off, " and "), len(c.Members), c.Type),
				fmt.Sprintf("Use one padding value for every %s in %q.", c.Type, c.Parent.ID)))
		}
	}
	return out, nil
}

func distinct(vals []string) int {
	seen := make(map[string]bool, len(vals))
	for _, v := range vals {
		seen[v] = true
	}
	return len(seen)
}

func checkCornerRadius(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	var out []rules.Violation
	for _, c := range Clusters(ctx.Tree) {
		var known []*widget.Node
		var keys []string
		for _, m := range c.Members {
			if m.CornerRadius != nil {
				known = append(known, m)
				keys = append(keys, strconv.Itoa(*m.CornerRadius))
			}
		}
		common, count := mode(keys)
		if count < 2 {
			continue
		}
		for i, m := range known {
			if keys[i] == common {
				continue
			}
			out = append(out, radiusMeta.Violation(m.ID,
				fmt.Sprintf("%q has corner radius %s while its sibling %s widgets use %s.", m.ID, keys[i], c.Type, common),
				fmt.Sprintf("Set corner_radius=%s on %q.", common, m.ID)))
		}
	}
	return out, nil
}

func checkSpacing(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	pct := ctx.Config.Consistency.SpacingTolerancePct
	var out []rules.Violation
	for _, c := range Clusters(ctx.Tree) {
		gaps := geometry.Gaps(ctx.Tree, c.Members, geometry.DominantAxis(c.Members))
		if len(gaps) < 2 {
			continue
		}
		floor := 10.0
		if geometry.IsGrid(c.Members) {
			floor = float64(ctx.Config.GridAlignmentTolerancePx())
		}
		var sum float64
		for _, g := range gaps {
			sum += float64(g.Px)
		}
		mean := sum / float64(len(gaps))
		if mean <= 0 {
			continue
		}
		for _, g := range gaps {
			dev := math.Abs(float64(g.Px) - mean)
			if dev <= mean*pct/100 || dev <= floor {
				continue
			}
			v := spacingMeta.Violation(g.To.ID,
				fmt.Sprintf("The gap between %q and %q is %dpx; other %s gaps in %q average %.0fpx.", g.From.ID, g.To.ID, g.Px, c.Type, c.Parent.ID, mean),
				fmt.Sprintf("Use the same spacing between every %s in %q.", c.Type, c.Parent.ID),
			).Measure(float64(g.Px), math.Round(mean*100)/100)
			v.RelatedWidgetID = g.From.ID
			out = append(out, v)
		}
	}
	return out, nil
}

func checkLayoutManagers(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	var out []rules.Violation
	for _, g := range ctx.Tree.SiblingGroups() {
		used := make(map[widget.LayoutManager]bool)
		for _, m := range g.Members {
			if m.LayoutManager != widget.LayoutNone && m.LayoutManager != widget.LayoutWindow {
				used[m.LayoutManager] = true
			}
		}
		if len(used) < 2 {
			continue
		}
		names := make([]string, 0, len(used))
		for lm := range used {
			names = append(names, string(lm))
		}
		sort.Strings(names)

		v := managerMeta.Violation(g.Parent.ID,
			fmt.Sprintf("Children of %q mix geometry managers (%s).", g.Parent.ID, strings.Join(names, ", ")),
			fmt.Sprintf("Use a single geometry manager for all children of %q.", g.Parent.ID))
		if used[widget.LayoutPack] && used[widget.LayoutGrid] {
			v.Severity = rules.High
			v.Description += " Tk refuses to manage pack and grid siblings together."
		}
		out = append(out, v)
	}
	return out, nil
}
