package geometry

import (
	"sort"

	"github.com/pthm/widgetlint/internal/widget"
)

// Box is an axis-aligned rectangle in absolute window coordinates.
// Intervals are half-open: [X, X+W) by [Y, Y+H).
type Box struct {
	X, Y, W, H int
}

// BoxOf returns the absolute bounding box of n.
func BoxOf(n *widget.Node) Box {
	return Box{X: n.AbsX, Y: n.AbsY, W: n.Width, H: n.Height}
}

func (b Box) Right() int  { return b.X + b.W }
func (b Box) Bottom() int { return b.Y + b.H }

func (b Box) CenterX() float64 { return float64(b.X) + float64(b.W)/2 }
func (b Box) CenterY() float64 { return float64(b.Y) + float64(b.H)/2 }

// Empty reports whether the box has no area.
func (b Box) Empty() bool {
	return b.W <= 0 || b.H <= 0
}

func (b Box) Area() int {
	if b.Empty() {
		return 0
	}
	return b.W * b.H
}

// Shrink moves every edge inward by px.
func (b Box) Shrink(px int) Box {
	return Box{X: b.X + px, Y: b.Y + px, W: b.W - 2*px, H: b.H - 2*px}
}

// Intersect returns the overlapping region of a and b. The result is empty
// when the boxes only touch.
func (b Box) Intersect(o Box) Box {
	x0, y0 := max(b.X, o.X), max(b.Y, o.Y)
	x1, y1 := min(b.Right(), o.Right()), min(b.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Box{}
	}
	return Box{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Union returns the smallest box containing both.
func (b Box) Union(o Box) Box {
	x0, y0 := min(b.X, o.X), min(b.Y, o.Y)
	x1, y1 := max(b.Right(), o.Right()), max(b.Bottom(), o.Bottom())
	return Box{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Axis is the direction siblings are laid out along.
type Axis int

const (
	Vertical Axis = iota
	Horizontal
)

// gap is the distance between a and the following box b along axis.
// Negative when they overlap on that axis.
func gap(a, b Box, axis Axis) int {
	if axis == Horizontal {
		return b.X - a.Right()
	}
	return b.Y - a.Bottom()
}

// crossOverlap reports whether a and b share extent on the axis
// perpendicular to axis.
func crossOverlap(a, b Box, axis Axis) bool {
	if axis == Horizontal {
		return min(a.Bottom(), b.Bottom()) > max(a.Y, b.Y)
	}
	return min(a.Right(), b.Right()) > max(a.X, b.X)
}

// VisualOrder sorts nodes into reading order: top to bottom, then left to
// right, ties broken by position in the tree. The input is not modified.
func VisualOrder(tree *widget.Tree, nodes []*widget.Node) []*widget.Node {
	out := append([]*widget.Node(nil), nodes...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.AbsY != b.AbsY {
			return a.AbsY < b.AbsY
		}
		if a.AbsX != b.AbsX {
			return a.AbsX < b.AbsX
		}
		return tree.Index(a) < tree.Index(b)
	})
	return out
}

// DominantAxis infers the direction a sibling group is laid out along. Pack
// side wins when every member agrees; otherwise the larger spread of centres
// decides.
func DominantAxis(members []*widget.Node) Axis {
	side := ""
	agreed := true
	for _, m := range members {
		if m.LayoutManager != widget.LayoutPack {
			agreed = false
			break
		}
		s := m.Detail("side")
		if s == "" {
			s = "top"
		}
		if side == "" {
			side = s
		} else if s != side {
			agreed = false
			break
		}
	}
	if agreed && side != "" {
		if side == "left" || side == "right" {
			return Horizontal
		}
		return Vertical
	}

	if len(members) < 2 {
		return Vertical
	}
	minX, maxX := BoxOf(members[0]).CenterX(), BoxOf(members[0]).CenterX()
	minY, maxY := BoxOf(members[0]).CenterY(), BoxOf(members[0]).CenterY()
	for _, m := range members[1:] {
		b := BoxOf(m)
		minX, maxX = min(minX, b.CenterX()), max(maxX, b.CenterX())
		minY, maxY = min(minY, b.CenterY()), max(maxY, b.CenterY())
	}
	if maxX-minX > maxY-minY {
		return Horizontal
	}
	return Vertical
}

// SortAlong orders members by their leading edge on axis.
func SortAlong(tree *widget.Tree, members []*widget.Node, axis Axis) []*widget.Node {
	out := append([]*widget.Node(nil), members...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if axis == Horizontal && a.AbsX != b.AbsX {
			return a.AbsX < b.AbsX
		}
		if axis == Vertical && a.AbsY != b.AbsY {
			return a.AbsY < b.AbsY
		}
		return tree.Index(a) < tree.Index(b)
	})
	return out
}

// Gaps returns the consecutive gaps of members along axis, skipping empty
// boxes and pairs that do not share extent on the other axis.
func Gaps(tree *widget.Tree, members []*widget.Node, axis Axis) []Gap {
	var sized []*widget.Node
	for _, m := range members {
		if !BoxOf(m).Empty() {
			sized = append(sized, m)
		}
	}
	ordered := SortAlong(tree, sized, axis)

	var out []Gap
	for i := 1; i < len(ordered); i++ {
		a, b := BoxOf(ordered[i-1]), BoxOf(ordered[i])
		if !crossOverlap(a, b, axis) {
			continue
		}
		out = append(out, Gap{From: ordered[i-1], To: ordered[i], Px: gap(a, b, axis)})
	}
	return out
}

// Gap is the space between two consecutive siblings.
type Gap struct {
	From, To *widget.Node
	Px       int
}

// IsGrid reports whether any member of the group is grid-managed.
func IsGrid(members []*widget.Node) bool {
	for _, m := range members {
		if m.LayoutManager == widget.LayoutGrid {
			return true
		}
	}
	return false
}
