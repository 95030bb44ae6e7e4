package dom

import (
	"fmt"
	"strings"
)

const (
	// maxSelectorClasses caps how many classes a generated selector uses.
	maxSelectorClasses = 3
	// maxSelectorDepth caps how many ancestors a generated selector walks.
	maxSelectorDepth = 3
)

// Selector generates a stable CSS selector for the node. An id always wins
// outright. Otherwise the selector is tag + up to three classes +
// :nth-child(n), prefixed with ancestor segments (bounded depth) until it
// resolves uniquely. A non-unique selector at max depth is still returned;
// resolution takes the first match.
func (a *Arena) Selector(n *Node) string {
	if n.ID != "" {
		return "#" + n.ID
	}

	segment := segmentFor(n)
	selector := segment
	ancestor := n.parent
	for depth := 0; depth < maxSelectorDepth && ancestor != nil; depth++ {
		if a.IsSelectorFor(selector, n) {
			return selector
		}
		if ancestor.ID != "" {
			return "#" + ancestor.ID + " > " + selector
		}
		selector = segmentFor(ancestor) + " > " + selector
		ancestor = ancestor.parent
	}
	return selector
}

// segmentFor builds one selector segment: tag, classes, nth-child.
func segmentFor(n *Node) string {
	var sb strings.Builder
	sb.WriteString(n.Tag)
	for i, c := range n.Classes {
		if i >= maxSelectorClasses {
			break
		}
		sb.WriteString(".")
		sb.WriteString(escapeClass(c))
	}
	if idx := n.Index(); idx > 0 {
		fmt.Fprintf(&sb, ":nth-child(%d)", idx)
	}
	return sb.String()
}

// escapeClass escapes characters CSS class selectors cannot carry verbatim.
// Utility-CSS class names routinely contain colons and slashes.
func escapeClass(class string) string {
	var sb strings.Builder
	for _, r := range class {
		switch r {
		case ':', '/', '.', '[', ']', '(', ')', '%', '#':
			sb.WriteString("\\")
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
