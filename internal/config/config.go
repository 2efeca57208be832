package config

import "time"

// Config holds every threshold and policy the analysis engine consumes.
// A Config is immutable once validated and may be shared by concurrent runs.
type Config struct {
	// Name identifies the profile (e.g. "default", "strict")
	Name string `yaml:"name" validate:"required"`

	Contrast      ContrastConfig      `yaml:"contrast"`
	Layout        LayoutConfig        `yaml:"layout"`
	Accessibility AccessibilityConfig `yaml:"accessibility"`
	UX            UXConfig            `yaml:"ux"`
	Consistency   ConsistencyConfig   `yaml:"consistency"`
	Structure     StructureConfig     `yaml:"structure"`
	Scoring       ScoringConfig       `yaml:"scoring"`
	Rules         RulesConfig         `yaml:"rules"`
}

// ContrastConfig holds WCAG ratio thresholds.
type ContrastConfig struct {
	AANormal  float64 `yaml:"aa_normal" validate:"gte=1,lte=21"`
	AALarge   float64 `yaml:"aa_large" validate:"gte=1,lte=21"`
	AAANormal float64 `yaml:"aaa_normal" validate:"gte=1,lte=21"`
	AAALarge  float64 `yaml:"aaa_large" validate:"gte=1,lte=21"`
	NonText   float64 `yaml:"non_text" validate:"gte=1,lte=21"`
	// NonTextFloor suppresses non-text findings below this ratio; canvas-drawn
	// controls report their parent's color as their own.
	NonTextFloor float64 `yaml:"non_text_floor" validate:"gte=1,lte=21"`
	// LargeTextPt and LargeBoldTextPt define WCAG "large text".
	LargeTextPt     float64 `yaml:"large_text_pt" validate:"gt=0"`
	LargeBoldTextPt float64 `yaml:"large_bold_text_pt" validate:"gt=0"`
	EnableAAA       bool    `yaml:"enable_aaa"`
}

// LayoutConfig holds geometry tolerances in pixels.
type LayoutConfig struct {
	MinTouchTargetPx         int `yaml:"min_touch_target_px" validate:"gte=0"`
	MinPaddingPx             int `yaml:"min_padding_px" validate:"gte=0"`
	OverlapTolerancePx       int `yaml:"overlap_tolerance_px" validate:"gte=0"`
	AlignmentTolerancePx     int `yaml:"alignment_tolerance_px" validate:"gte=0"`
	SymmetryTolerancePx      int `yaml:"symmetry_tolerance_px" validate:"gte=0"`
	OutsideBoundsTolerancePx int `yaml:"outside_bounds_tolerance_px" validate:"gte=0"`
	// OverlapSoftLimit is the widget count from which the overlap pass runs
	// under OverlapDeadline.
	OverlapSoftLimit int           `yaml:"overlap_soft_limit" validate:"gte=0"`
	OverlapDeadline  time.Duration `yaml:"overlap_deadline" validate:"gte=0"`
}

// AccessibilityConfig holds focus and text-size thresholds.
type AccessibilityConfig struct {
	MinFontSizePt             float64 `yaml:"min_font_size_pt" validate:"gte=0"`
	TabVisualOrderTolerancePx int     `yaml:"tab_visual_order_tolerance_px" validate:"gte=0"`
}

// UXConfig holds heuristic ceilings.
type UXConfig struct {
	MaxWidgetsPerContainer int `yaml:"max_widgets_per_container" validate:"gt=0"`
	MaxButtonTextLength    int `yaml:"max_button_text_length" validate:"gt=0"`
	DeepNestingChain       int `yaml:"deep_nesting_chain" validate:"gte=2"`
}

// ConsistencyConfig holds sibling-cluster tolerances, as percentages.
type ConsistencyConfig struct {
	SizeTolerancePct    float64 `yaml:"size_tolerance_pct" validate:"gte=0"`
	SpacingTolerancePct float64 `yaml:"spacing_tolerance_pct" validate:"gte=0"`
}

// StructureConfig describes the widget tree itself.
type StructureConfig struct {
	MaxTreeDepth          int `yaml:"max_tree_depth" validate:"gt=0"`
	ExcessiveNestingDepth int `yaml:"excessive_nesting_depth" validate:"gt=0"`
	// ContainerTypes are the widget type names that may hold children.
	ContainerTypes []string `yaml:"container_types" validate:"min=1,dive,required"`
	// InternalAttrNames are toolkit-private sub-widget attributes the
	// extractor skips. The engine only passes them through.
	InternalAttrNames []string `yaml:"internal_attr_names" validate:"dive,required"`
}

// ScoringConfig selects the versioned overall-score policy.
type ScoringConfig struct {
	Policy string `yaml:"policy" validate:"oneof=v1 v2"`
}

// RulesConfig toggles individual rules.
type RulesConfig struct {
	Disabled []string `yaml:"disabled"`
}

// GridAlignmentTolerancePx widens the alignment tolerance for grid-managed
// groups, where cell padding shifts widgets by a few pixels.
func (c *Config) GridAlignmentTolerancePx() int {
	tol := c.Layout.AlignmentTolerancePx * 3
	if tol < 10 {
		tol = 10
	}
	return tol
}

// Clone returns a deep copy, so overlays never touch a shared profile.
func (c *Config) Clone() *Config {
	out := *c
	out.Structure.ContainerTypes = append([]string(nil), c.Structure.ContainerTypes...)
	out.Structure.InternalAttrNames = append([]string(nil), c.Structure.InternalAttrNames...)
	out.Rules.Disabled = append([]string(nil), c.Rules.Disabled...)
	return &out
}
