package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pthm/widgetlint/internal/color"
	"github.com/pthm/widgetlint/internal/config"
	"github.com/pthm/widgetlint/internal/widget"
)

// Severity represents the severity level of a violation
type Severity int

const (
	Low Severity = iota
	Medium
	High
	Critical
)

func (s Severity) String() string {
	switch s {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// Deduction is the score penalty for one violation of this severity.
func (s Severity) Deduction() float64 {
	switch s {
	case Critical:
		return 25
	case High:
		return 15
	case Medium:
		return 10
	default:
		return 5
	}
}

// ParseSeverity converts a severity name to Severity
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low, nil
	case "medium":
		return Medium, nil
	case "high":
		return High, nil
	case "critical":
		return Critical, nil
	}
	return Low, fmt.Errorf("unknown severity %q", s)
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Category groups violations into the report's arrays.
type Category string

const (
	CategoryLayout        Category = "layout"
	CategoryContrast      Category = "contrast"
	CategoryAccessibility Category = "accessibility"
	CategoryUX            Category = "ux"
	CategoryConsistency   Category = "consistency"
	CategoryRule          Category = "rule"
)

// Categories returns every category in evaluation order.
func Categories() []Category {
	return []Category{
		CategoryLayout,
		CategoryContrast,
		CategoryAccessibility,
		CategoryUX,
		CategoryConsistency,
		CategoryRule,
	}
}

// Known reports whether c is one of Categories.
func (c Category) Known() bool {
	for _, k := range Categories() {
		if c == k {
			return true
		}
	}
	return false
}

// CategoryOf returns the category rule's findings are filed under. Rules
// with no category, or one the report has no array for, file under
// CategoryRule.
func CategoryOf(rule Rule) Category {
	if c := rule.Config().Category; c.Known() {
		return c
	}
	return CategoryRule
}

// ContrastDetail carries the color pair behind a contrast violation.
type ContrastDetail struct {
	FgColor       string  `json:"fg_color"`
	BgColor       string  `json:"bg_color"`
	ContrastRatio float64 `json:"contrast_ratio"`
	RequiredRatio float64 `json:"required_ratio"`
	WCAGLevel     string  `json:"wcag_level"`
	// SuggestedColor is a nearby foreground that meets RequiredRatio.
	SuggestedColor string `json:"suggested_color,omitempty"`
}

// Violation is one finding about one widget.
type Violation struct {
	RuleID          string   `json:"rule_id"`
	Category        Category `json:"category"`
	Severity        Severity `json:"severity"`
	WidgetID        string   `json:"widget_id"`
	RelatedWidgetID string   `json:"related_widget_id,omitempty"`
	Description     string   `json:"description"`
	RecommendedFix  string   `json:"recommended_fix"`
	MeasuredValue   *float64 `json:"measured_value,omitempty"`
	Threshold       *float64 `json:"threshold,omitempty"`

	*ContrastDetail
}

// Measure attaches a measured value / threshold pair.
func (v Violation) Measure(measured, threshold float64) Violation {
	v.MeasuredValue = &measured
	v.Threshold = &threshold
	return v
}

// AnalysisContext provides the read-only inputs of one analysis pass
type AnalysisContext struct {
	Context context.Context
	Tree    *widget.Tree
	Config  *config.Config
	Mode    color.Mode
	// TabOrder is the externally supplied focus chain; empty when the
	// extractor could not read one.
	TabOrder []string
	// Now is the clock used for soft deadlines.
	Now func() time.Time
}

// Ctx returns the pass context, never nil.
func (ctx *AnalysisContext) Ctx() context.Context {
	if ctx.Context == nil {
		return context.Background()
	}
	return ctx.Context
}

// Clock returns ctx.Now or time.Now.
func (ctx *AnalysisContext) Clock() time.Time {
	if ctx.Now == nil {
		return time.Now()
	}
	return ctx.Now()
}

// RuleConfig defines how a rule should be invoked
type RuleConfig struct {
	// Category is the report array the rule's violations land in.
	Category Category

	// Severity is the default severity for violations that do not set one.
	Severity Severity

	// RequiresAI indicates this rule calls out to a model.
	// AI rules only run when --deep flag is enabled.
	RequiresAI bool
}

// Rule defines the interface for analysis rules
type Rule interface {
	// Name returns the unique identifier for this rule
	Name() string

	// Description returns a human-readable description
	Description() string

	// Config returns the rule's configuration
	Config() RuleConfig

	// Run executes the rule and returns any violations found.
	// Returning an error wrapping ErrPartial keeps the violations found so far.
	Run(ctx *AnalysisContext) ([]Violation, error)
}

// CheckFunc is the body of a rule built with New.
type CheckFunc func(ctx *AnalysisContext) ([]Violation, error)

// Meta describes a rule built from a CheckFunc.
type Meta struct {
	ID          string
	Description string
	Category    Category
	Severity    Severity
	RequiresAI  bool
}

// Violation builds a finding carrying the rule's id, category and default severity.
func (m Meta) Violation(widgetID, description, fix string) Violation {
	return Violation{
		RuleID:         m.ID,
		Category:       m.Category,
		Severity:       m.Severity,
		WidgetID:       widgetID,
		Description:    description,
		RecommendedFix: fix,
	}
}

type funcRule struct {
	meta  Meta
	check CheckFunc
}

// New builds a Rule from its metadata and check function.
func New(meta Meta, check CheckFunc) Rule {
	return &funcRule{meta: meta, check: check}
}

func (r *funcRule) Name() string        { return r.meta.ID }
func (r *funcRule) Description() string { return r.meta.Description }

func (r *funcRule) Config() RuleConfig {
	return RuleConfig{
		Category:   r.meta.Category,
		Severity:   r.meta.Severity,
		RequiresAI: r.meta.RequiresAI,
	}
}

func (r *funcRule) Run(ctx *AnalysisContext) ([]Violation, error) {
	return r.check(ctx)
}
