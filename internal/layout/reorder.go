package layout

import (
	"math"

	"github.com/thetronjohnson/layrr/internal/geometry"
	"github.com/thetronjohnson/layrr/internal/shared/id"
)

// MinReorderSiblings is the smallest sibling count (excluding the dragged
// element) for which reordering is meaningful.
const MinReorderSiblings = 2

// Qualifies reports whether a drag may enter reorder mode. The free-drag
// modifier always wins; otherwise at least two other siblings must exist.
func Qualifies(arr Arrangement, dragged id.NodeID, modifierHeld bool) bool {
	if modifierHeld {
		return false
	}
	return len(arr.Others(dragged)) >= MinReorderSiblings
}

// AxisFor picks the reorder axis. Flex follows its declared direction; grid
// and block flow follow the observed arrangement, defaulting to vertical
// when siblings are stacked or ambiguous.
func AxisFor(ctx Context, arr Arrangement) Axis {
	if ctx.Mode == FlowFlex {
		return ctx.Axis
	}
	if arr.Kind == HorizontalRow {
		return AxisHorizontal
	}
	return AxisVertical
}

// Candidate is a resolved reorder target: the sibling under the dragged
// element's center and which side of it to insert on.
type Candidate struct {
	Target Sibling `json:"target"`
	Before bool    `json:"before"`
}

// ResolveTarget locates the sibling whose rect contains the dragged center
// and derives insert-before/after from the target's center along the axis.
// Within tol of the target center on the primary axis, the cross axis breaks
// the tie. Returns ok=false when no sibling contains the center.
func ResolveTarget(arr Arrangement, dragged id.NodeID, center geometry.Point, axis Axis, tol float64) (Candidate, bool) {
	for _, s := range arr.Others(dragged) {
		if !s.Rect.Contains(center) {
			continue
		}
		return Candidate{Target: s, Before: insertBefore(center, s.Rect.Center(), axis, tol)}, true
	}
	return Candidate{}, false
}

func insertBefore(dragged, target geometry.Point, axis Axis, tol float64) bool {
	primary, cross := dragged.Y-target.Y, dragged.X-target.X
	if axis == AxisHorizontal {
		primary, cross = cross, primary
	}
	if math.Abs(primary) <= tol {
		return cross < 0
	}
	return primary < 0
}
