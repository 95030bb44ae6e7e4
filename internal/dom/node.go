package dom

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/thetronjohnson/layrr/internal/geometry"
	"github.com/thetronjohnson/layrr/internal/shared/id"
)

// EditorUIAttr marks elements belonging to the editor's own overlay; subtrees
// carrying it never participate in hit-testing or sibling snapshots.
const EditorUIAttr = "data-layrr-ui"

// Style is the computed-style subset the bridge measures per element. Only
// the properties the edit semantics depend on are carried.
type Style struct {
	Display         string  `json:"display"`
	FlexDirection   string  `json:"flexDirection"`
	Gap             float64 `json:"gap"`
	Position        string  `json:"position"`
	LineHeight      float64 `json:"lineHeight"`
	PaddingTop      float64 `json:"paddingTop"`
	PaddingBottom   float64 `json:"paddingBottom"`
	BackgroundColor string  `json:"backgroundColor"`
	Color           string  `json:"color"`
}

// Node is one tracked element. Fields are populated at snapshot load; the
// struct itself is the arena's internal representation and is only handed out
// by pointer within the engine.
type Node struct {
	Ref     id.NodeID
	Tag     string
	ID      string
	Classes []string
	Rect    geometry.Rect
	Style   Style

	// EditorUI marks nodes inside the editor's own overlay subtree.
	EditorUI bool

	parent   *Node
	children []*Node
	raw      *html.Node
}

// Parent returns the node's parent element, or nil at the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's element children in document order.
func (n *Node) Children() []*Node { return n.children }

// Index returns the node's 1-based position among its parent's element
// children (the CSS :nth-child index), or 0 at the root.
func (n *Node) Index() int {
	if n.parent == nil {
		return 0
	}
	for i, c := range n.parent.children {
		if c == n {
			return i + 1
		}
	}
	return 0
}

// Visible reports whether the node occupies space on the page.
func (n *Node) Visible() bool {
	return n.Style.Display != "none" && !n.Rect.Empty()
}

// HasClass reports whether the node carries the given class.
func (n *Node) HasClass(class string) bool {
	for _, c := range n.Classes {
		if c == class {
			return true
		}
	}
	return false
}

func newNode(raw *html.Node, parent *Node) *Node {
	n := &Node{
		Ref:    id.NewNodeID(),
		Tag:    strings.ToLower(raw.Data),
		parent: parent,
		raw:    raw,
	}
	for _, attr := range raw.Attr {
		switch attr.Key {
		case "id":
			n.ID = attr.Val
		case "class":
			n.Classes = strings.Fields(attr.Val)
		case EditorUIAttr:
			n.EditorUI = true
		}
	}
	if parent != nil && parent.EditorUI {
		n.EditorUI = true
	}
	return n
}
