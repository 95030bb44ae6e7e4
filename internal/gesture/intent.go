package gesture

import (
	"fmt"

	"github.com/thetronjohnson/layrr/internal/geometry"
)

// IntentKind tags a committed edit intent.
type IntentKind string

const (
	IntentReorder    IntentKind = "reorder"
	IntentResize     IntentKind = "resize"
	IntentReposition IntentKind = "reposition"
)

// Intent is the semantic edit a completed gesture commits. It carries
// selectors rather than node refs because it crosses the process boundary.
type Intent struct {
	Kind     IntentKind `json:"kind"`
	Selector string     `json:"selector"`

	// Reorder fields.
	TargetSelector string `json:"targetSelector,omitempty"`
	Before         bool   `json:"before,omitempty"`

	// Resize field.
	Box geometry.Rect `json:"box,omitempty"`

	// Reposition field.
	Position geometry.Point `json:"position,omitempty"`
}

// Describe renders the intent as the instruction text sent over the command
// channel, doubling as the change-history description. The text is the whole
// payload, so geometry intents spell out their committed box or position.
func (i Intent) Describe() string {
	switch i.Kind {
	case IntentReorder:
		side := "after"
		if i.Before {
			side = "before"
		}
		return "Moved " + i.Selector + " " + side + " " + i.TargetSelector
	case IntentResize:
		return fmt.Sprintf("Resized %s to %gx%g at (%g, %g)",
			i.Selector, i.Box.W, i.Box.H, i.Box.X, i.Box.Y)
	case IntentReposition:
		return fmt.Sprintf("Repositioned %s to (%g, %g)",
			i.Selector, i.Position.X, i.Position.Y)
	}
	return string(i.Kind) + " " + i.Selector
}
