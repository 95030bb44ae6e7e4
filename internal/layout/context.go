package layout

import (
	"strings"

	"github.com/thetronjohnson/layrr/internal/dom"
)

// FlowMode classifies a parent's layout model.
type FlowMode string

const (
	FlowFlex  FlowMode = "flex"
	FlowGrid  FlowMode = "grid"
	FlowBlock FlowMode = "block"
)

// Axis is the primary direction children are laid out along.
type Axis string

const (
	AxisVertical   Axis = "vertical"
	AxisHorizontal Axis = "horizontal"
)

// Context is a parent's flow model, snapshotted once at gesture start.
type Context struct {
	Mode FlowMode `json:"mode"`
	Axis Axis     `json:"axis"`
	Gap  float64  `json:"gap"`
}

// Detect derives the flow context from a parent's computed style.
func Detect(parent dom.Style) Context {
	ctx := Context{Mode: FlowBlock, Axis: AxisVertical, Gap: parent.Gap}

	switch {
	case strings.Contains(parent.Display, "flex"):
		ctx.Mode = FlowFlex
		if strings.HasPrefix(parent.FlexDirection, "row") {
			ctx.Axis = AxisHorizontal
		}
	case strings.Contains(parent.Display, "grid"):
		ctx.Mode = FlowGrid
	}
	return ctx
}
