package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pthm/widgetlint/internal/rules"
	"github.com/pthm/widgetlint/internal/ux"
)

// RuleID is the id of the model-backed review rule.
const RuleID = "llm-ux-review"

// ReviewRule asks a model to look for UX problems the deterministic
// heuristics describe but may have missed. Only findings that name a known
// UX rule id and an existing widget are kept.
type ReviewRule struct {
	reviewer Reviewer
}

// NewReviewRule creates the review rule around reviewer.
func NewReviewRule(reviewer Reviewer) *ReviewRule {
	return &ReviewRule{reviewer: reviewer}
}

func (r *ReviewRule) Name() string {
	return RuleID
}

func (r *ReviewRule) Description() string {
	return "Uses Claude to review the widget tree against the UX heuristics"
}

func (r *ReviewRule) Config() rules.RuleConfig {
	return rules.RuleConfig{
		Category:   rules.CategoryUX,
		Severity:   rules.Medium,
		RequiresAI: true,
	}
}

type reviewIssue struct {
	RuleID         string `json:"rule_id"`
	WidgetID       string `json:"widget_id"`
	Severity       string `json:"severity"`
	Description    string `json:"description"`
	RecommendedFix string `json:"recommended_fix"`
}

type reviewResponse struct {
	Issues []reviewIssue `json:"issues"`
}

func (r *ReviewRule) Run(ctx *rules.AnalysisContext) ([]rules.Violation, error) {
	if r == nil || r.reviewer == nil {
		return nil, ErrUnavailable
	}

	known := make(map[string]rules.Severity)
	var catalogue strings.Builder
	for _, rule := range ux.Rules() {
		known[rule.Name()] = rule.Config().Severity
		fmt.Fprintf(&catalogue, "- %s: %s\n", rule.Name(), rule.Description())
	}

	var outline bytes.Buffer
	ctx.Tree.PrintTree(&outline)

	reply, err := r.reviewer.Review(ctx.Ctx(), buildPrompt(catalogue.String(), outline.String()))
	if err != nil {
		return nil, err
	}

	var resp reviewResponse
	if err := json.Unmarshal([]byte(ExtractJSON(reply)), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse review response: %w (response: %s)", err, truncate(reply, 200))
	}

	seen := make(map[string]bool)
	var out []rules.Violation
	for _, is := range resp.Issues {
		def, ok := known[is.RuleID]
		if !ok || ctx.Tree.Node(is.WidgetID) == nil {
			continue
		}
		key := is.RuleID + "\x00" + is.WidgetID
		if seen[key] {
			continue
		}
		seen[key] = true

		sev, err := rules.ParseSeverity(is.Severity)
		if err != nil {
			sev = def
		}
		out = append(out, rules.Violation{
			RuleID:         is.RuleID,
			Category:       rules.CategoryUX,
			Severity:       sev,
			WidgetID:       is.WidgetID,
			Description:    is.Description,
			RecommendedFix: is.RecommendedFix,
		})
	}
	return out, nil
}

func buildPrompt(catalogue, outline string) string {
	return fmt.Sprintf(`Review this desktop GUI widget tree for usability problems.

Report only problems that match one of these rule ids:
%s
Widget tree (id, type, geometry, text):
%s

Provide a JSON response with the following structure:
{
  "issues": [
    {
      "rule_id": "one of the ids above",
      "widget_id": "id of the widget at fault",
      "severity": "low|medium|high|critical",
      "description": "what is wrong",
      "recommended_fix": "how to fix it"
    }
  ]
}

Return ONLY the JSON, no other text.`, catalogue, truncate(outline, 12000))
}
