package geometry

import (
	"fmt"

	"github.com/pthm/widgetlint/internal/rules"
)

var overlapMeta = rules.Meta{
	ID:          "overlap_detection",
	Description: "Sibling widgets overlap each other",
	Category:    rules.CategoryLayout,
	Severity:    rules.High,
}

// OverlapRule flags every unordered pair of overlapping siblings.
type OverlapRule struct{}

func (r *OverlapRule) Name() string {
	return overlapMeta.ID
}

func (r *OverlapRule) Description() string {
	return overlapMeta.Description
}

func (r *OverlapRule) Config() rules.RuleConfig {
	return rules.RuleConfig{Category: overlapMeta.Category, Severity: overlapMeta.Severity}
}

// Run compares siblings pairwise. On large trees the pass runs under the
// configured soft deadline and returns what it found so far when it expires.
func (r *OverlapRule) Run(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	cfg := ctx.Config.Layout
	guarded := cfg.OverlapSoftLimit > 0 && cfg.OverlapDeadline > 0 && ctx.Tree.NodeCount() >= cfg.OverlapSoftLimit
	start := ctx.Clock()

	var out []rules.Violation
	groups := ctx.Tree.SiblingGroups()
	for gi, g := range groups {
		if guarded && ctx.Clock().Sub(start) > cfg.OverlapDeadline {
			return out, fmt.Errorf("%w: overlap pass exceeded %s after %d of %d sibling groups",
				rules.ErrPartial, cfg.OverlapDeadline, gi, len(groups))
		}
		if err := ctx.Ctx().Err(); err != nil {
			return out, fmt.Errorf("%w: %v", rules.ErrPartial, err)
		}

		for i, a := range g.Members {
			ba := BoxOf(a)
			if ba.Empty() {
				continue
			}
			for _, b := range g.Members[i+1:] {
				bb := BoxOf(b)
				if bb.Empty() {
					continue
				}
				if ctx.Tree.IsAncestor(a, b) || ctx.Tree.IsAncestor(b, a) {
					continue
				}
				if ba.Shrink(cfg.OverlapTolerancePx).Intersect(bb.Shrink(cfg.OverlapTolerancePx)).Empty() {
					continue
				}
				out = append(out, overlapViolation(a.ID, b.ID, ba, bb))
			}
		}
	}
	return out, nil
}

func overlapViolation(aID, bID string, a, b Box) rules.Violation {
	inter := a.Intersect(b)
	smaller := min(a.Area(), b.Area())
	pct := 100 * float64(inter.Area()) / float64(smaller)

	v := overlapMeta.Violation(aID,
		fmt.Sprintf("%q overlaps %q by %dx%dpx (%.0f%% of the smaller widget).", aID, bID, inter.W, inter.H, pct),
		fmt.Sprintf("Move %q or %q apart, or reduce their size so they no longer share space.", aID, bID),
	).Measure(round2(pct), 50)
	v.RelatedWidgetID = bID
	if pct >= 50 {
		v.Severity = rules.Critical
	}
	return v
}
