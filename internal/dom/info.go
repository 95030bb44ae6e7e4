package dom

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/thetronjohnson/layrr/internal/geometry"
	"github.com/thetronjohnson/layrr/internal/shared/id"
)

const (
	// maxInfoText bounds the inner text carried in element info.
	maxInfoText = 200
	// maxInfoMarkup bounds the outer markup carried in element info.
	maxInfoMarkup = 500
)

// sanitizer strips scripts and event handlers from captured markup before it
// leaves the engine. Shared; bluemonday policies are safe for concurrent use.
var sanitizer = bluemonday.UGCPolicy()

// NodeInfo is the derived, wire-ready description of a tracked node. It is
// computed fresh on every request and never cached; the arena node is the
// only source of truth.
type NodeInfo struct {
	Ref      id.NodeID     `json:"ref"`
	Tag      string        `json:"tag"`
	ID       string        `json:"id,omitempty"`
	Classes  []string      `json:"classes,omitempty"`
	Selector string        `json:"selector"`
	Rect     geometry.Rect `json:"rect"`
	Text     string        `json:"text,omitempty"`
	Markup   string        `json:"markup,omitempty"`
}

// Info derives the wire description for a tracked node.
func (a *Arena) Info(n *Node) NodeInfo {
	return NodeInfo{
		Ref:      n.Ref,
		Tag:      n.Tag,
		ID:       n.ID,
		Classes:  n.Classes,
		Selector: a.Selector(n),
		Rect:     n.Rect,
		Text:     truncate(textContent(n), maxInfoText),
		Markup:   truncate(outerMarkup(n), maxInfoMarkup),
	}
}

// outerMarkup renders the node's sanitized outer HTML.
func outerMarkup(n *Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n.raw); err != nil {
		return ""
	}
	return strings.TrimSpace(sanitizer.Sanitize(buf.String()))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
