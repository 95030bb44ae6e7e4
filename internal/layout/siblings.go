package layout

import (
	"math"

	"github.com/thetronjohnson/layrr/internal/dom"
	"github.com/thetronjohnson/layrr/internal/geometry"
	"github.com/thetronjohnson/layrr/internal/shared/id"
)

// ArrangementKind classifies how visible siblings are positioned relative to
// each other, independent of the declared flow mode.
type ArrangementKind string

const (
	VerticalStack ArrangementKind = "vertical-stack"
	HorizontalRow ArrangementKind = "horizontal-row"
	MixedFlow     ArrangementKind = "mixed"
)

// Sibling is one visible non-editor sibling in an arrangement snapshot.
type Sibling struct {
	Ref      id.NodeID     `json:"ref"`
	Tag      string        `json:"tag"`
	Selector string        `json:"selector"`
	Rect     geometry.Rect `json:"rect"`
}

// Arrangement is the sibling snapshot captured once at gesture start.
type Arrangement struct {
	Siblings []Sibling       `json:"siblings"`
	Kind     ArrangementKind `json:"kind"`
}

// Snapshot captures the visible non-editor siblings of n (n included) with
// their rects and a stack/row classification.
func Snapshot(arena *dom.Arena, n *dom.Node) Arrangement {
	nodes := arena.VisibleSiblings(n)
	sibs := make([]Sibling, 0, len(nodes))
	for _, s := range nodes {
		sibs = append(sibs, Sibling{
			Ref:      s.Ref,
			Tag:      s.Tag,
			Selector: arena.Selector(s),
			Rect:     s.Rect,
		})
	}
	return Arrangement{Siblings: sibs, Kind: classify(sibs)}
}

// classify votes pairwise over consecutive siblings: a pair whose centers
// differ more vertically than horizontally votes for a stack, and vice versa.
func classify(sibs []Sibling) ArrangementKind {
	if len(sibs) < 2 {
		return MixedFlow
	}
	vertical, horizontal := 0, 0
	for i := 1; i < len(sibs); i++ {
		prev, cur := sibs[i-1].Rect.Center(), sibs[i].Rect.Center()
		dx := math.Abs(cur.X - prev.X)
		dy := math.Abs(cur.Y - prev.Y)
		if dy > dx {
			vertical++
		} else if dx > dy {
			horizontal++
		}
	}
	switch {
	case vertical > 0 && horizontal == 0:
		return VerticalStack
	case horizontal > 0 && vertical == 0:
		return HorizontalRow
	default:
		return MixedFlow
	}
}

// Others returns the arrangement's siblings excluding one ref. The dragged
// element does not count toward reorder qualification.
func (a Arrangement) Others(exclude id.NodeID) []Sibling {
	out := make([]Sibling, 0, len(a.Siblings))
	for _, s := range a.Siblings {
		if s.Ref != exclude {
			out = append(out, s)
		}
	}
	return out
}

// IndexOf returns a ref's position within the snapshot, or -1.
func (a Arrangement) IndexOf(ref id.NodeID) int {
	for i, s := range a.Siblings {
		if s.Ref == ref {
			return i
		}
	}
	return -1
}
