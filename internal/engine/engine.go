// Package engine runs one analysis pass over a widget tree and assembles
// the report.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pthm/widgetlint/internal/accessibility"
	"github.com/pthm/widgetlint/internal/color"
	"github.com/pthm/widgetlint/internal/config"
	"github.com/pthm/widgetlint/internal/consistency"
	"github.com/pthm/widgetlint/internal/contrast"
	"github.com/pthm/widgetlint/internal/geometry"
	"github.com/pthm/widgetlint/internal/llm"
	"github.com/pthm/widgetlint/internal/report"
	"github.com/pthm/widgetlint/internal/rules"
	"github.com/pthm/widgetlint/internal/score"
	"github.com/pthm/widgetlint/internal/ux"
	"github.com/pthm/widgetlint/internal/widget"
)

// ErrNoTree is returned by Analyze when the input carries no tree.
var ErrNoTree = errors.New("no widget tree to analyze")

// Input is one snapshot to analyze.
type Input struct {
	Tree *widget.Tree
	// TabOrder is the focus chain recorded by the extractor, if any.
	TabOrder     []string
	Interactions []widget.Interaction
	Mode         color.Mode
}

// Engine holds the configuration and rule set shared by every pass. It is
// safe for concurrent use once New returns.
type Engine struct {
	cfg      *config.Config
	policy   score.Policy
	registry *rules.Registry
	now      func() time.Time
	observer rules.Observer
	reviewer llm.Reviewer
	extra    []rules.Rule
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now for report timestamps and soft deadlines.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRules appends user rules after the built-in ones.
func WithRules(rs ...rules.Rule) Option {
	return func(e *Engine) { e.extra = append(e.extra, rs...) }
}

// WithReviewer enables the model-backed UX review.
func WithReviewer(r llm.Reviewer) Option {
	return func(e *Engine) { e.reviewer = r }
}

// WithProgress reports each rule as it runs.
func WithProgress(obs rules.Observer) Option {
	return func(e *Engine) { e.observer = obs }
}

// New validates cfg and registers every rule.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	policy, err := score.LookupPolicy(cfg.Scoring.Policy)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		policy:   policy,
		registry: rules.NewRegistry(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	groups := [][]rules.Rule{
		geometry.Rules(),
		contrast.Rules(cfg),
		accessibility.Rules(),
		ux.Rules(),
		consistency.Rules(),
		rules.Builtins(),
	}
	if e.reviewer != nil {
		groups = append(groups, []rules.Rule{llm.NewReviewRule(e.reviewer)})
	}
	groups = append(groups, e.extra)

	for _, g := range groups {
		if err := e.registry.Register(g...); err != nil {
			return nil, err
		}
	}
	for _, id := range cfg.Rules.Disabled {
		if err := e.registry.Disable(id); err != nil {
			return nil, fmt.Errorf("rules.disabled: %w", err)
		}
	}
	return e, nil
}

// Config returns the validated configuration.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Registry exposes the registered rules for listing.
func (e *Engine) Registry() *rules.Registry {
	return e.registry
}

// Plan returns the rules a pass will run, in order.
func (e *Engine) Plan() []rules.Rule {
	return e.registry.Rules(e.reviewer != nil)
}

// Analyze runs every enabled rule over in.Tree. Rule failures and
// cancellation are recorded as diagnostics on the returned report; the only
// error is a missing tree.
func (e *Engine) Analyze(ctx context.Context, in Input) (*report.Report, error) {
	if in.Tree == nil {
		return nil, ErrNoTree
	}
	now := e.now()

	actx := &rules.AnalysisContext{
		Context:  ctx,
		Tree:     in.Tree,
		Config:   e.cfg,
		Mode:     in.Mode,
		TabOrder: in.TabOrder,
		Now:      e.now,
	}

	res := rules.Evaluate(actx, e.Plan(), e.observer)
	if ids := in.Tree.CoordinateMismatches(); len(ids) > 0 {
		res.Diagnostics = append([]rules.Diagnostic{{
			Message: fmt.Sprintf("absolute coordinates disagree with parent offsets for %d widget(s): %s",
				len(ids), strings.Join(ids, ", ")),
		}}, res.Diagnostics...)
	}

	return report.Assemble(report.Input{
		Tree:         in.Tree,
		Result:       res,
		Interactions: in.Interactions,
		TabOrder:     accessibility.TabOrderIDs(actx),
		Mode:         in.Mode.String(),
		Policy:       e.policy,
		Now:          now,
	})
}
