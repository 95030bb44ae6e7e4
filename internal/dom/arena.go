package dom

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/thetronjohnson/layrr/internal/geometry"
	"github.com/thetronjohnson/layrr/internal/shared/id"
)

// MaxSnapshotSize limits page snapshots to 10MB to prevent memory exhaustion.
const MaxSnapshotSize = 10 * 1024 * 1024

var (
	ErrSnapshotTooLarge = fmt.Errorf("page snapshot exceeds %d bytes", MaxSnapshotSize)
	ErrNodeNotFound     = fmt.Errorf("node not tracked in arena")
)

// LayoutEntry is one measured element in the bridge's layout report.
type LayoutEntry struct {
	Selector string        `json:"selector"`
	Rect     geometry.Rect `json:"rect"`
	Style    Style         `json:"style"`
}

// Arena tracks the nodes of one page snapshot. It is rebuilt wholesale on
// every snapshot; node refs from a previous snapshot resolve to nothing.
type Arena struct {
	root  *Node
	nodes map[id.NodeID]*Node
	byRaw map[*html.Node]*Node
	doc   *goquery.Document
}

// Load parses a page snapshot into a fresh arena. Input bytes may be in any
// encoding; the charset is detected and the content converted to UTF-8.
func Load(raw []byte) (*Arena, error) {
	if len(raw) > MaxSnapshotSize {
		return nil, ErrSnapshotTooLarge
	}

	reader, err := decodeReader(raw)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	doc, err := html.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	a := &Arena{
		nodes: make(map[id.NodeID]*Node),
		byRaw: make(map[*html.Node]*Node),
	}
	a.root = a.build(findBody(doc), nil)
	if a.root == nil {
		return nil, fmt.Errorf("snapshot has no body element")
	}
	a.doc = goquery.NewDocumentFromNode(doc)
	return a, nil
}

// decodeReader detects the input charset and returns a UTF-8 reader.
func decodeReader(raw []byte) (*bytes.Reader, error) {
	result, err := chardet.NewTextDetector().DetectBest(raw)
	if err != nil || result.Charset == "UTF-8" {
		return bytes.NewReader(raw), nil
	}
	r, err := charset.NewReaderLabel(result.Charset, bytes.NewReader(raw))
	if err != nil {
		return bytes.NewReader(raw), nil
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	return bytes.NewReader(buf.Bytes()), nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if body := findBody(c); body != nil {
			return body
		}
	}
	return nil
}

func (a *Arena) build(raw *html.Node, parent *Node) *Node {
	if raw == nil || raw.Type != html.ElementNode {
		return nil
	}
	n := newNode(raw, parent)
	a.nodes[n.Ref] = n
	a.byRaw[raw] = n
	for c := raw.FirstChild; c != nil; c = c.NextSibling {
		if child := a.build(c, n); child != nil {
			n.children = append(n.children, child)
		}
	}
	return n
}

// ApplyLayout attaches measured rects and styles to tracked nodes. Entries
// whose selector resolves to nothing are skipped; the bridge measures against
// the same snapshot, so misses only happen on races and are harmless.
func (a *Arena) ApplyLayout(entries []LayoutEntry) int {
	applied := 0
	for _, e := range entries {
		sel := a.find(e.Selector)
		if sel.Length() == 0 {
			continue
		}
		if n, ok := a.byRaw[sel.Get(0)]; ok {
			n.Rect = e.Rect
			n.Style = e.Style
			applied++
		}
	}
	return applied
}

// Root returns the body node.
func (a *Arena) Root() *Node { return a.root }

// Get returns the tracked node for a ref.
func (a *Arena) Get(ref id.NodeID) (*Node, bool) {
	n, ok := a.nodes[ref]
	return n, ok
}

// Len returns the number of tracked nodes.
func (a *Arena) Len() int { return len(a.nodes) }

// NodeAt returns the deepest visible non-editor node containing p, or nil.
// Later siblings win over earlier ones, matching paint order for the common
// static-flow case.
func (a *Arena) NodeAt(p geometry.Point) *Node {
	return deepestAt(a.root, p)
}

// deepestAt searches all branches: an unmeasured ancestor must not hide a
// measured descendant, so recursion does not require the parent to contain p.
func deepestAt(n *Node, p geometry.Point) *Node {
	if n == nil || n.EditorUI {
		return nil
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		if hit := deepestAt(n.children[i], p); hit != nil {
			return hit
		}
	}
	if n.Visible() && n.Rect.Contains(p) {
		return n
	}
	return nil
}

// VisibleSiblings returns the node's visible non-editor element siblings,
// including the node itself, in document order.
func (a *Arena) VisibleSiblings(n *Node) []*Node {
	if n.parent == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.parent.children))
	for _, c := range n.parent.children {
		if !c.EditorUI && c.Visible() {
			out = append(out, c)
		}
	}
	return out
}

// Intersecting returns all visible non-editor nodes whose rects overlap r.
// Used to finalize marquee selections.
func (a *Arena) Intersecting(r geometry.Rect) []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil || n.EditorUI {
			return
		}
		if n.Visible() && n.Rect.Intersects(r) {
			out = append(out, n)
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(a.root)
	return out
}

// find wraps goquery.Find, turning its panic on an uncompilable selector
// into an empty selection.
func (a *Arena) find(selector string) (sel *goquery.Selection) {
	defer func() {
		if recover() != nil {
			sel = a.doc.Selection.Slice(0, 0)
		}
	}()
	return a.doc.Find(selector)
}

// Resolve finds the tracked node matching a CSS selector.
func (a *Arena) Resolve(selector string) (*Node, error) {
	sel := a.find(selector)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%q: %w", selector, ErrNodeNotFound)
	}
	n, ok := a.byRaw[sel.Get(0)]
	if !ok {
		return nil, fmt.Errorf("%q: %w", selector, ErrNodeNotFound)
	}
	return n, nil
}

// ResolveXPath finds the tracked node matching an XPath expression. Highlight
// requests from tooling use XPath when no stable CSS selector exists.
func (a *Arena) ResolveXPath(expr string) (*Node, error) {
	raw, err := htmlquery.Query(a.root.raw, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath %q: %w", expr, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("xpath %q: %w", expr, ErrNodeNotFound)
	}
	n, ok := a.byRaw[raw]
	if !ok {
		return nil, fmt.Errorf("xpath %q: %w", expr, ErrNodeNotFound)
	}
	return n, nil
}

// IsSelectorFor reports whether selector uniquely resolves to the node.
func (a *Arena) IsSelectorFor(selector string, n *Node) bool {
	sel := a.find(selector)
	return sel.Length() == 1 && sel.Get(0) == n.raw
}

// textContent returns the node's trimmed, whitespace-normalized inner text.
func textContent(n *Node) string {
	var sb strings.Builder
	var walk func(raw *html.Node)
	walk = func(raw *html.Node) {
		if raw.Type == html.TextNode {
			sb.WriteString(raw.Data)
			sb.WriteString(" ")
		}
		for c := raw.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n.raw)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// HasText reports whether the node contains any rendered text of its own.
// Used to pick the text minimum-size rule during resize.
func (n *Node) HasText() bool {
	for c := n.raw.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
			return true
		}
	}
	return false
}
