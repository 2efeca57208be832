// Package score turns violation lists into category and overall scores.
package score

import (
	"fmt"
	"math"

	"github.com/pthm/widgetlint/internal/rules"
	"github.com/pthm/widgetlint/internal/widget"
)

// Policy is a versioned set of overall-score weights.
type Policy struct {
	Name          string
	Layout        float64
	Accessibility float64
	Interaction   float64
	// UXPenalty scales (100 - ux) before it is subtracted.
	UXPenalty float64
}

var (
	// V1 weights the three positive terms equally. A clean report scores 90.
	V1 = Policy{Name: "v1", Layout: 0.3, Accessibility: 0.3, Interaction: 0.3, UXPenalty: 0.15}
	// V2 gives accessibility the remaining tenth so a clean report scores 100.
	V2 = Policy{Name: "v2", Layout: 0.3, Accessibility: 0.4, Interaction: 0.3, UXPenalty: 0.15}
)

// Default is the policy used when configuration names none.
var Default = V2

var policies = map[string]Policy{V1.Name: V1, V2.Name: V2}

// LookupPolicy returns the policy registered under name.
func LookupPolicy(name string) (Policy, error) {
	if name == "" {
		return Default, nil
	}
	p, ok := policies[name]
	if !ok {
		return Policy{}, fmt.Errorf("unknown scoring policy %q", name)
	}
	return p, nil
}

// Summary is the report's summary_score block.
type Summary struct {
	Layout        float64 `json:"layout_score"`
	Accessibility float64 `json:"accessibility_score"`
	UX            float64 `json:"ux_score"`
	Interaction   float64 `json:"interaction_score"`
	Overall       float64 `json:"overall_score"`
}

// CategoryScore is 100 minus the summed severity deductions, floored at 0.
func CategoryScore(vs ...[]rules.Violation) float64 {
	total := 100.0
	for _, list := range vs {
		for _, v := range list {
			total -= v.Severity.Deduction()
		}
	}
	return math.Max(0, total)
}

// InteractionRate is the percentage of successful interactions, 100 when
// none were recorded.
func InteractionRate(results []widget.Interaction) float64 {
	if len(results) == 0 {
		return 100
	}
	ok := 0
	for _, r := range results {
		if r.Success {
			ok++
		}
	}
	return round2(100 * float64(ok) / float64(len(results)))
}

// Aggregate scores violations grouped by category. Layout covers layout and
// consistency findings, accessibility covers contrast and accessibility,
// and ux covers ux and ad-hoc rule findings.
func Aggregate(p Policy, byCategory map[rules.Category][]rules.Violation, interactions []widget.Interaction) Summary {
	layout := CategoryScore(byCategory[rules.CategoryLayout], byCategory[rules.CategoryConsistency])
	access := CategoryScore(byCategory[rules.CategoryContrast], byCategory[rules.CategoryAccessibility])
	ux := CategoryScore(byCategory[rules.CategoryUX], byCategory[rules.CategoryRule])
	interaction := InteractionRate(interactions)

	overall := p.Layout*layout + p.Accessibility*access + p.Interaction*interaction - p.UXPenalty*(100-ux)

	return Summary{
		Layout:        round2(layout),
		Accessibility: round2(access),
		UX:            round2(ux),
		Interaction:   interaction,
		Overall:       round2(math.Min(100, math.Max(0, overall))),
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
