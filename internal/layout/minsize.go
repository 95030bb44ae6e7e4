package layout

import (
	"github.com/thetronjohnson/layrr/internal/dom"
	"github.com/thetronjohnson/layrr/internal/geometry"
)

const (
	// MinImageEdge is the smallest edge an image may be resized to.
	MinImageEdge = 100
	// DefaultMinEdge is the floor for elements with no content-derived rule.
	DefaultMinEdge = 20
)

// MinSize returns the element's computed minimum box for resize clamping:
// images keep at least 100x100, text elements keep one line of text plus
// vertical padding, everything else keeps the fixed floor.
func MinSize(n *dom.Node) geometry.Size {
	switch {
	case n.Tag == "img":
		return geometry.Size{W: MinImageEdge, H: MinImageEdge}
	case n.HasText():
		h := n.Style.LineHeight + n.Style.PaddingTop + n.Style.PaddingBottom
		if h < DefaultMinEdge {
			h = DefaultMinEdge
		}
		return geometry.Size{W: DefaultMinEdge, H: h}
	default:
		return geometry.Size{W: DefaultMinEdge, H: DefaultMinEdge}
	}
}
