package session

import (
	"github.com/thetronjohnson/layrr/internal/channel"
	"github.com/thetronjohnson/layrr/internal/dom"
	"github.com/thetronjohnson/layrr/internal/geometry"
	"github.com/thetronjohnson/layrr/internal/gesture"
	"github.com/thetronjohnson/layrr/internal/selection"
)

// Emitter delivers engine events to the bridge. Implementations must be safe
// for concurrent use; history notifications arrive off the dispatch loop.
type Emitter interface {
	Emit(v any)
}

// Outbound frame types on the bridge socket.
const (
	TypeElementSelected  = "ELEMENT_SELECTED"
	TypeSelectionChanged = "SELECTION_CHANGED"
	TypeColorPicked      = "COLOR_PICKED"
	TypeHoverChanged     = "HOVER_CHANGED"
	TypeMarquee          = "MARQUEE"
	TypeGestureUpdate    = "GESTURE_UPDATE"
	TypeEditCancelled    = "EDIT_CANCELLED"
	TypeMessageResponse  = "MESSAGE_RESPONSE"
	TypeBatchSettled     = "BATCH_COMPLETE"
	TypeChannelStatus    = "CHANNEL_STATUS"
	TypeHistoryChanged   = "HISTORY_CHANGED"
	TypeReload           = "reload"
)

// ElementSelected publishes the primary selection.
type ElementSelected struct {
	Type    string       `json:"type"`
	Element dom.NodeInfo `json:"element"`
}

// SelectionChanged publishes a marquee result set.
type SelectionChanged struct {
	Type     string         `json:"type"`
	Elements []dom.NodeInfo `json:"elements"`
}

// ColorPicked publishes the colors read from a color-pick click.
type ColorPicked struct {
	Type string `json:"type"`
	selection.Colors
}

// HoverChanged publishes the hovered element; nil clears the hover overlay.
type HoverChanged struct {
	Type    string        `json:"type"`
	Element *dom.NodeInfo `json:"element"`
}

// Marquee publishes the live marquee rect during a selection drag.
type Marquee struct {
	Type string        `json:"type"`
	Rect geometry.Rect `json:"rect"`
}

// GestureUpdate publishes per-move manipulation feedback: the live box, the
// reorder placeholder candidate, and any drop violation warning.
type GestureUpdate struct {
	Type string `json:"type"`
	gesture.Update
}

// EditCancelled tells the bridge to dismiss active overlays and surfaces.
type EditCancelled struct {
	Type string `json:"type"`
}

// MessageResponse publishes an instruction's settlement to the bridge.
// UserMessage carries the classified copy when Status is error.
type MessageResponse struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	UserMessage string `json:"userMessage,omitempty"`
}

// BatchNotice publishes a resolved batch acknowledgment.
type BatchNotice struct {
	Type        string `json:"type"`
	BatchNumber int    `json:"batchNumber"`
	MessageID   string `json:"messageId"`
}

// ChannelNotice publishes command channel connectivity to the bridge.
type ChannelNotice struct {
	Type    string             `json:"type"`
	Channel string             `json:"channel"`
	Status  channel.ConnStatus `json:"status"`
}

// HistoryChanged publishes ledger depths after an append, undo, or redo.
type HistoryChanged struct {
	Type        string `json:"type"`
	Undo        int    `json:"undo"`
	Redo        int    `json:"redo"`
	Description string `json:"description,omitempty"`
}

// Reload tells the bridge to reload the page.
type Reload struct {
	Type string `json:"type"`
}
