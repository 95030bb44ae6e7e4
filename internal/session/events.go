package session

import (
	"time"

	"github.com/thetronjohnson/layrr/internal/channel"
	"github.com/thetronjohnson/layrr/internal/dom"
	"github.com/thetronjohnson/layrr/internal/geometry"
	"github.com/thetronjohnson/layrr/internal/selection"
)

// Event is an input consumed by the session's dispatch loop. Bridge frames
// and channel callbacks both arrive as events; the state machines never see
// concurrent calls.
type Event interface {
	isEvent()
}

// HandleMove is the grab handle that starts a drag rather than a resize.
const HandleMove = "move"

// PointerDown starts a pointer sequence. Handle is empty for a press on the
// page itself, HandleMove for the move handle, or a geometry.Direction string
// for one of the eight resize handles.
type PointerDown struct {
	Point    geometry.Point
	At       time.Time
	Modifier bool
	Handle   string
}

// PointerMove advances a pointer sequence or drives hover.
type PointerMove struct {
	Point    geometry.Point
	At       time.Time
	Modifier bool
}

// PointerUp ends a pointer sequence.
type PointerUp struct {
	Point geometry.Point
	At    time.Time
}

// KeyPress is a keyboard event forwarded by the bridge.
type KeyPress struct {
	Key string
}

// PageSnapshot replaces the tracked page: parsed HTML plus the bridge's
// layout report.
type PageSnapshot struct {
	HTML   []byte
	Layout []dom.LayoutEntry
}

// SetMode switches the selection engine's interpretation mode.
type SetMode struct {
	Mode selection.Mode
}

// Highlight selects an element by selector on behalf of an external caller.
type Highlight struct {
	Selector string
}

// MessageKind tags the three instruction submission surfaces.
type MessageKind string

const (
	MessageElement    MessageKind = "element"
	MessageVision     MessageKind = "vision"
	MessageAttachment MessageKind = "attachment"
)

// SubmitMessage converts an editing-surface submission into an instruction
// envelope on the command channel.
type SubmitMessage struct {
	Kind        MessageKind
	Selector    string
	Instruction string
	Screenshot  []byte // raw image bytes, already base64-decoded by the bridge handler
	ImagePath   string
	BatchNumber *int
}

// ChannelResponse carries an instruction status frame from the backend.
type ChannelResponse struct {
	Response channel.Response
}

// ChannelReload carries a backend reload, already past the deferral rules.
type ChannelReload struct{}

// ChannelStatusChanged carries a command channel lifecycle transition.
type ChannelStatusChanged struct {
	Channel string
	Status  channel.ConnStatus
}

// BatchSettled carries a resolved batch acknowledgment.
type BatchSettled struct {
	Ack channel.BatchComplete
}

func (PointerDown) isEvent()          {}
func (PointerMove) isEvent()          {}
func (PointerUp) isEvent()            {}
func (KeyPress) isEvent()             {}
func (PageSnapshot) isEvent()         {}
func (SetMode) isEvent()              {}
func (Highlight) isEvent()            {}
func (SubmitMessage) isEvent()        {}
func (ChannelResponse) isEvent()      {}
func (ChannelReload) isEvent()        {}
func (ChannelStatusChanged) isEvent() {}
func (BatchSettled) isEvent()         {}
