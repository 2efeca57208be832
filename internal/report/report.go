// Package report assembles analysis results into the canonical report shape.
package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pthm/widgetlint/internal/rules"
	"github.com/pthm/widgetlint/internal/score"
	"github.com/pthm/widgetlint/internal/version"
	"github.com/pthm/widgetlint/internal/widget"
)

// namespace scopes report ids so equal content always hashes to the same id.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/pthm/widgetlint/report"))

// Metadata describes the pass that produced a report.
type Metadata struct {
	Tool           string   `json:"tool"`
	Version        string   `json:"version"`
	Timestamp      string   `json:"timestamp"`
	ReportID       string   `json:"report_id"`
	ScoringPolicy  string   `json:"scoring_policy"`
	AppearanceMode string   `json:"appearance_mode"`
	TabOrder       []string `json:"tab_order"`
	Metrics        Metrics  `json:"metrics"`
}

// Report is the full result of one analysis pass.
type Report struct {
	Metadata            Metadata             `json:"metadata"`
	WidgetTree          *widget.Node         `json:"widget_tree"`
	LayoutViolations    []rules.Violation    `json:"layout_violations"`
	ContrastIssues      []rules.Violation    `json:"contrast_issues"`
	AccessibilityIssues []rules.Violation    `json:"accessibility_issues"`
	UXIssues            []rules.Violation    `json:"ux_issues"`
	ConsistencyIssues   []rules.Violation    `json:"consistency_issues"`
	RuleViolations      []rules.Violation    `json:"rule_violations"`
	InteractionResults  []widget.Interaction `json:"interaction_results"`
	SummaryScore        score.Summary        `json:"summary_score"`
	Diagnostics         []rules.Diagnostic   `json:"diagnostics"`
}

// Input is everything Assemble needs from one pass.
type Input struct {
	Tree         *widget.Tree
	Result       rules.Result
	Interactions []widget.Interaction
	TabOrder     []string
	Mode         string
	Policy       score.Policy
	Now          time.Time
}

// Assemble splits violations into their category arrays, scores them and
// stamps metadata. None of the arrays in the result is nil.
func Assemble(in Input) (*Report, error) {
	by := GroupByCategory(in.Result.Violations)

	r := &Report{
		WidgetTree:          in.Tree.Root,
		LayoutViolations:    nonNil(by[rules.CategoryLayout]),
		ContrastIssues:      nonNil(by[rules.CategoryContrast]),
		AccessibilityIssues: nonNil(by[rules.CategoryAccessibility]),
		UXIssues:            nonNil(by[rules.CategoryUX]),
		ConsistencyIssues:   nonNil(by[rules.CategoryConsistency]),
		RuleViolations:      nonNil(by[rules.CategoryRule]),
		InteractionResults:  in.Interactions,
		SummaryScore:        score.Aggregate(in.Policy, by, in.Interactions),
		Diagnostics:         in.Result.Diagnostics,
	}
	if r.InteractionResults == nil {
		r.InteractionResults = []widget.Interaction{}
	}
	if r.Diagnostics == nil {
		r.Diagnostics = []rules.Diagnostic{}
	}

	tabOrder := in.TabOrder
	if tabOrder == nil {
		tabOrder = []string{}
	}
	r.Metadata = Metadata{
		Tool:           version.Tool,
		Version:        version.Short(),
		Timestamp:      in.Now.UTC().Format(time.RFC3339),
		ScoringPolicy:  in.Policy.Name,
		AppearanceMode: in.Mode,
		TabOrder:       tabOrder,
		Metrics:        ComputeMetrics(in.Tree, in.Result.Violations),
	}

	id, err := contentID(r)
	if err != nil {
		return nil, fmt.Errorf("computing report id: %w", err)
	}
	r.Metadata.ReportID = id
	return r, nil
}

// contentID hashes the tree, the findings and the scores. The timestamp is
// left out so re-running on an unchanged snapshot keeps the id.
func contentID(r *Report) (string, error) {
	canonical, err := json.Marshal(struct {
		Tree        *widget.Node       `json:"widget_tree"`
		Violations  []rules.Violation  `json:"violations"`
		Diagnostics []rules.Diagnostic `json:"diagnostics"`
		Scores      score.Summary      `json:"summary_score"`
		Policy      string             `json:"scoring_policy"`
	}{r.WidgetTree, r.Violations(), r.Diagnostics, r.SummaryScore, r.Metadata.ScoringPolicy})
	if err != nil {
		return "", err
	}
	return uuid.NewSHA1(namespace, canonical).String(), nil
}

// GroupByCategory buckets violations, keeping their order within a category.
// A finding with no recognised category lands in the rule bucket.
func GroupByCategory(vs []rules.Violation) map[rules.Category][]rules.Violation {
	by := make(map[rules.Category][]rules.Violation)
	for _, v := range vs {
		if !v.Category.Known() {
			v.Category = rules.CategoryRule
		}
		by[v.Category] = append(by[v.Category], v)
	}
	return by
}

func nonNil(vs []rules.Violation) []rules.Violation {
	if vs == nil {
		return []rules.Violation{}
	}
	return vs
}

// Violations returns every finding in category order.
func (r *Report) Violations() []rules.Violation {
	var out []rules.Violation
	for _, cat := range rules.Categories() {
		out = append(out, r.Category(cat)...)
	}
	return out
}

// Category returns the array holding cat's findings.
func (r *Report) Category(cat rules.Category) []rules.Violation {
	switch cat {
	case rules.CategoryLayout:
		return r.LayoutViolations
	case rules.CategoryContrast:
		return r.ContrastIssues
	case rules.CategoryAccessibility:
		return r.AccessibilityIssues
	case rules.CategoryUX:
		return r.UXIssues
	case rules.CategoryConsistency:
		return r.ConsistencyIssues
	case rules.CategoryRule:
		return r.RuleViolations
	}
	return nil
}

// Worst returns the highest severity in the report and whether there was
// any finding at all.
func (r *Report) Worst() (rules.Severity, bool) {
	worst, found := rules.Low, false
	for _, v := range r.Violations() {
		if !found || v.Severity > worst {
			worst, found = v.Severity, true
		}
	}
	return worst, found
}

// Total returns the number of findings.
func (r *Report) Total() int {
	return len(r.Violations())
}
