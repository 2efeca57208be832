package widget

import (
	"fmt"
	"io"
	"strings"
)

// LayoutManager is the geometry manager that placed a widget.
type LayoutManager string

const (
	LayoutNone   LayoutManager = ""
	LayoutPack   LayoutManager = "pack"
	LayoutGrid   LayoutManager = "grid"
	LayoutPlace  LayoutManager = "place"
	LayoutWindow LayoutManager = "window"
)

// Padding holds the external and internal padding a layout manager applied.
type Padding struct {
	PadX  int `json:"padx" yaml:"padx"`
	PadY  int `json:"pady" yaml:"pady"`
	IPadX int `json:"ipadx" yaml:"ipadx"`
	IPadY int `json:"ipady" yaml:"ipady"`
}

// Node is one widget in a snapshot. Colors are already resolved to a single
// value for the active appearance mode.
type Node struct {
	ID   string `json:"id" yaml:"id"`
	Type string `json:"widget_type" yaml:"widget_type"`

	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
	AbsX   int `json:"abs_x" yaml:"abs_x"`
	AbsY   int `json:"abs_y" yaml:"abs_y"`

	FgColor      string `json:"fg_color,omitempty" yaml:"fg_color,omitempty"`
	BgColor      string `json:"bg_color,omitempty" yaml:"bg_color,omitempty"`
	BorderColor  string `json:"border_color,omitempty" yaml:"border_color,omitempty"`
	FontFamily   string `json:"font_family,omitempty" yaml:"font_family,omitempty"`
	FontSize     int    `json:"font_size,omitempty" yaml:"font_size,omitempty"`
	FontWeight   string `json:"font_weight,omitempty" yaml:"font_weight,omitempty"`
	CornerRadius *int   `json:"corner_radius,omitempty" yaml:"corner_radius,omitempty"`
	BorderWidth  *int   `json:"border_width,omitempty" yaml:"border_width,omitempty"`

	Text            string   `json:"text,omitempty" yaml:"text,omitempty"`
	PlaceholderText string   `json:"placeholder_text,omitempty" yaml:"placeholder_text,omitempty"`
	HasCommand      bool     `json:"has_command" yaml:"has_command"`
	HasImage        bool     `json:"has_image" yaml:"has_image"`
	Values          []string `json:"values,omitempty" yaml:"values,omitempty"`
	Enabled         bool     `json:"enabled" yaml:"enabled"`
	Visible         bool     `json:"visible" yaml:"visible"`
	Suppressed      bool     `json:"suppressed,omitempty" yaml:"suppressed,omitempty"`
	TakeFocus       *bool    `json:"take_focus,omitempty" yaml:"take_focus,omitempty"`
	Title           string   `json:"title,omitempty" yaml:"title,omitempty"`
	ActiveTab       string   `json:"active_tab,omitempty" yaml:"active_tab,omitempty"`
	TabName         string   `json:"tab_name,omitempty" yaml:"tab_name,omitempty"`

	ParentID      string         `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	LayoutManager LayoutManager  `json:"layout_manager,omitempty" yaml:"layout_manager,omitempty"`
	LayoutDetail  map[string]any `json:"layout_detail,omitempty" yaml:"layout_detail,omitempty"`
	Padding       Padding        `json:"padding" yaml:"padding"`
	Children      []*Node        `json:"children" yaml:"children"`
}

// Kind classifies the node's toolkit type.
func (n *Node) Kind() Kind {
	return KindOf(n.Type)
}

// IsBold reports whether the font weight is bold.
func (n *Node) IsBold() bool {
	return strings.EqualFold(n.FontWeight, "bold")
}

// FontPoints returns the font size in points. Tk uses negative sizes for
// pixel units; those are converted at 96 dpi. Zero means unknown.
func (n *Node) FontPoints() float64 {
	if n.FontSize < 0 {
		return float64(-n.FontSize) * 0.75
	}
	return float64(n.FontSize)
}

// Detail returns a layout detail attribute as a lower-cased string.
func (n *Node) Detail(key string) string {
	v, ok := n.LayoutDetail[key]
	if !ok || v == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(fmt.Sprint(v)))
}

// TreeError reports a structural problem found while building a Tree.
type TreeError struct {
	ID     string
	Reason string
}

func (e *TreeError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid widget tree: %s", e.Reason)
	}
	return fmt.Sprintf("invalid widget tree at %q: %s", e.ID, e.Reason)
}

// Options controls how derived flags are computed.
type Options struct {
	// ContainerTypes lists the widget type names treated as containers.
	ContainerTypes []string
	// MaxDepth rejects trees nested deeper than this. Zero disables the check.
	MaxDepth int
}

// Group is one parent's ordered set of visible, non-suppressed children.
type Group struct {
	Parent  *Node
	Members []*Node
}

// Tree is an indexed, read-only view of a widget snapshot.
// The nodes themselves are never modified after NewTree returns.
type Tree struct {
	Root *Node

	nodes      []*Node
	index      map[string]int
	parents    []int
	depths     []int
	containers []bool
	suppressed []bool
	mismatched []string
}

// NewTree validates the snapshot rooted at root and computes derived flags.
func NewTree(root *Node, opts Options) (*Tree, error) {
	if root == nil {
		return nil, &TreeError{Reason: "no root widget"}
	}

	containerSet := make(map[string]bool, len(opts.ContainerTypes))
	for _, t := range opts.ContainerTypes {
		containerSet[t] = true
	}

	t := &Tree{
		Root:  root,
		index: make(map[string]int),
	}
	if err := t.add(root, -1, 0, containerSet, opts.MaxDepth); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) add(n *Node, parent, depth int, containerSet map[string]bool, maxDepth int) error {
	if n == nil {
		return &TreeError{ID: t.nodes[parent].ID, Reason: "nil child"}
	}
	if n.ID == "" {
		return &TreeError{Reason: fmt.Sprintf("widget of type %q has no id", n.Type)}
	}
	if _, dup := t.index[n.ID]; dup {
		return &TreeError{ID: n.ID, Reason: "duplicate id"}
	}
	if maxDepth > 0 && depth > maxDepth {
		return &TreeError{ID: n.ID, Reason: fmt.Sprintf("nesting depth %d exceeds %d", depth, maxDepth)}
	}

	suppressed := n.Suppressed
	if parent >= 0 {
		p := t.nodes[parent]
		if n.ParentID != "" && n.ParentID != p.ID {
			return &TreeError{ID: n.ID, Reason: fmt.Sprintf("parent_id %q but listed under %q", n.ParentID, p.ID)}
		}
		if t.suppressed[parent] {
			suppressed = true
		}
		if p.Kind() == KindTabView && p.ActiveTab != "" && n.TabName != "" && n.TabName != p.ActiveTab {
			suppressed = true
		}
		if n.AbsX != p.AbsX+n.X || n.AbsY != p.AbsY+n.Y {
			t.mismatched = append(t.mismatched, n.ID)
		}
	}

	idx := len(t.nodes)
	t.index[n.ID] = idx
	t.nodes = append(t.nodes, n)
	t.parents = append(t.parents, parent)
	t.depths = append(t.depths, depth)
	t.containers = append(t.containers, containerSet[n.Type])
	t.suppressed = append(t.suppressed, suppressed)

	for _, c := range n.Children {
		if err := t.add(c, idx, depth+1, containerSet, maxDepth); err != nil {
			return err
		}
	}
	return nil
}

// NodeCount returns the number of widgets in the tree.
func (t *Tree) NodeCount() int {
	return len(t.nodes)
}

// Nodes returns every widget in pre-order. Callers must not modify the slice.
func (t *Tree) Nodes() []*Node {
	return t.nodes
}

// Node looks up a widget by id.
func (t *Tree) Node(id string) *Node {
	if i, ok := t.index[id]; ok {
		return t.nodes[i]
	}
	return nil
}

// Index returns the pre-order position of n, or -1 if n is not in the tree.
func (t *Tree) Index(n *Node) int {
	if n == nil {
		return -1
	}
	if i, ok := t.index[n.ID]; ok && t.nodes[i] == n {
		return i
	}
	return -1
}

// Parent returns the parent of n, or nil for the root.
func (t *Tree) Parent(n *Node) *Node {
	i := t.Index(n)
	if i < 0 || t.parents[i] < 0 {
		return nil
	}
	return t.nodes[t.parents[i]]
}

func (t *Tree) Depth(n *Node) int {
	if i := t.Index(n); i >= 0 {
		return t.depths[i]
	}
	return 0
}

// IsContainer reports whether n's type is in the configured container set.
func (t *Tree) IsContainer(n *Node) bool {
	if i := t.Index(n); i >= 0 {
		return t.containers[i]
	}
	return false
}

// IsSuppressed reports whether n is hidden by a toolkit mechanism such as an
// inactive tab, either directly or through an ancestor.
func (t *Tree) IsSuppressed(n *Node) bool {
	if i := t.Index(n); i >= 0 {
		return t.suppressed[i]
	}
	return false
}

// IsFocusable reports whether n can currently receive keyboard focus.
func (t *Tree) IsFocusable(n *Node) bool {
	if !n.Kind().IsFocusable() || !n.Enabled || !n.Visible {
		return false
	}
	if n.TakeFocus != nil && !*n.TakeFocus {
		return false
	}
	return !t.IsSuppressed(n)
}

// IsAncestor reports whether a is a proper ancestor of b.
func (t *Tree) IsAncestor(a, b *Node) bool {
	ai := t.Index(a)
	bi := t.Index(b)
	if ai < 0 || bi < 0 {
		return false
	}
	for p := t.parents[bi]; p >= 0; p = t.parents[p] {
		if p == ai {
			return true
		}
	}
	return false
}

// Active reports whether n takes part in spatial and state checks.
func (t *Tree) Active(n *Node) bool {
	return n.Visible && !t.IsSuppressed(n)
}

// ActiveChildren returns the visible, non-suppressed children of n in order.
func (t *Tree) ActiveChildren(n *Node) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if t.Active(c) {
			out = append(out, c)
		}
	}
	return out
}

// SiblingGroups returns one Group per parent with at least one active child,
// in pre-order of the parents.
func (t *Tree) SiblingGroups() []Group {
	var groups []Group
	for _, n := range t.nodes {
		if len(n.Children) == 0 {
			continue
		}
		members := t.ActiveChildren(n)
		if len(members) == 0 {
			continue
		}
		groups = append(groups, Group{Parent: n, Members: members})
	}
	return groups
}

// CoordinateMismatches lists widgets whose absolute position is not the
// parent's absolute position plus their local offset.
func (t *Tree) CoordinateMismatches() []string {
	return t.mismatched
}

// MaxDepth returns the deepest nesting level in the tree.
func (t *Tree) MaxDepth() int {
	deepest := 0
	for _, d := range t.depths {
		if d > deepest {
			deepest = d
		}
	}
	return deepest
}

// PrintTree writes an indented outline of the tree to w.
func (t *Tree) PrintTree(w io.Writer) {
	fmt.Fprintln(w, describe(t.Root))
	t.printChildren(w, t.Root, "")
}

func (t *Tree) printChildren(w io.Writer, n *Node, prefix string) {
	for i, child := range n.Children {
		isLast := i == len(n.Children)-1

		connector := "├─ "
		childPrefix := prefix + "│  "
		if isLast {
			connector = "└─ "
			childPrefix = prefix + "   "
		}

		line := describe(child)
		if t.IsSuppressed(child) {
			line += " (suppressed)"
		} else if !child.Visible {
			line += " (hidden)"
		}
		fmt.Fprintf(w, "%s%s%s\n", prefix, connector, line)
		t.printChildren(w, child, childPrefix)
	}
}

func describe(n *Node) string {
	s := fmt.Sprintf("%s [%s] %dx%d@%d,%d", n.ID, n.Type, n.Width, n.Height, n.AbsX, n.AbsY)
	if n.Text != "" {
		s += fmt.Sprintf(" %q", n.Text)
	}
	return s
}
