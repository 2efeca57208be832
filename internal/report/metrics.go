package report

import (
	"github.com/pthm/widgetlint/internal/rules"
	"github.com/pthm/widgetlint/internal/widget"
)

// Metrics contains computed metrics about the analysed tree
type Metrics struct {
	TotalWidgets         int            `json:"total_widgets"`
	WidgetsByKind        map[string]int `json:"widgets_by_kind"`
	MaxDepth             int            `json:"max_depth"`
	FocusableWidgets     int            `json:"focusable_widgets"`
	SuppressedWidgets    int            `json:"suppressed_widgets"`
	ViolationsBySeverity map[string]int `json:"violations_by_severity"`
}

// ComputeMetrics computes metrics for a widget tree and its findings
func ComputeMetrics(tree *widget.Tree, vs []rules.Violation) Metrics {
	m := Metrics{
		WidgetsByKind:        make(map[string]int),
		ViolationsBySeverity: make(map[string]int),
		MaxDepth:             tree.MaxDepth(),
	}

	for _, n := range tree.Nodes() {
		m.TotalWidgets++
		m.WidgetsByKind[n.Kind().String()]++

		if tree.IsSuppressed(n) {
			m.SuppressedWidgets++
		}
		if tree.IsFocusable(n) {
			m.FocusableWidgets++
		}
	}

	for _, s := range []rules.Severity{rules.Critical, rules.High, rules.Medium, rules.Low} {
		m.ViolationsBySeverity[s.String()] = 0
	}
	for _, v := range vs {
		m.ViolationsBySeverity[v.Severity.String()]++
	}

	return m
}
