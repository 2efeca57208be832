package rules

import (
	"errors"
	"fmt"
)

// ErrPartial marks a rule error that still carries valid violations, such as
// a pass stopped by its soft deadline.
var ErrPartial = errors.New("partial result")

// Diagnostic is an engine-level note about the pass itself.
type Diagnostic struct {
	RuleID  string `json:"rule_id,omitempty"`
	Message string `json:"message"`
}

// Observer is told about each rule as it runs. Progress displays implement it.
// RuleDone receives the number of findings the rule contributed.
type Observer interface {
	RuleStart(name string, category Category)
	RuleDone(found int)
}

// Result is the outcome of one evaluation pass.
type Result struct {
	Violations  []Violation
	Diagnostics []Diagnostic
}

// Evaluate runs rules in order and concatenates their violations. A rule that
// fails contributes nothing and is recorded as a diagnostic; the remaining
// rules still run. Cancellation of ctx stops the pass between rules.
func Evaluate(ctx *AnalysisContext, list []Rule, obs Observer) Result {
	res := Result{Violations: make([]Violation, 0)}

	for i, rule := range list {
		if err := ctx.Ctx().Err(); err != nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Message: fmt.Sprintf("analysis stopped before %d of %d rules: %v", len(list)-i, len(list), err),
			})
			break
		}

		category := CategoryOf(rule)
		if obs != nil {
			obs.RuleStart(rule.Name(), category)
		}

		violations, err := runRule(rule, ctx)
		switch {
		case err == nil:
		case errors.Is(err, ErrPartial):
			res.Diagnostics = append(res.Diagnostics, Diagnostic{RuleID: rule.Name(), Message: err.Error()})
		default:
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				RuleID:  rule.Name(),
				Message: fmt.Sprintf("rule failed: %v", err),
			})
			violations = nil
		}

		for _, v := range violations {
			if v.RuleID == "" {
				v.RuleID = rule.Name()
			}
			if !v.Category.Known() {
				v.Category = category
			}
			res.Violations = append(res.Violations, v)
		}

		if obs != nil {
			obs.RuleDone(len(violations))
		}
	}

	return res
}

// Evaluate runs the registry's enabled rules.
func (r *Registry) Evaluate(ctx *AnalysisContext, includeAI bool, obs Observer) Result {
	return Evaluate(ctx, r.Rules(includeAI), obs)
}

func runRule(rule Rule, ctx *AnalysisContext) (violations []Violation, err error) {
	defer func() {
		if p := recover(); p != nil {
			violations = nil
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return rule.Run(ctx)
}
