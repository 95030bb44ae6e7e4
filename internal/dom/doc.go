// Package dom maintains the arena of tracked nodes standing in for the live
// page DOM.
//
// The arena is built from a page snapshot: the raw HTML (charset-detected and
// parsed) plus a layout report of measured rects and a computed-style subset
// supplied by the browser bridge. Node identity is an opaque NodeID key;
// everything derived from a node (selector, bounds, text, markup) is computed
// fresh on each request and never persisted.
//
// Built on specialized libraries:
//   - goquery: CSS selector resolution and uniqueness checks
//   - htmlquery: XPath resolution for highlight requests
//   - chardet + x/net/html/charset: encoding detection for arbitrary pages
//   - bluemonday: sanitization of captured outer markup
//
// Editor overlay subtrees (marked with the data-layrr-ui attribute) are
// tracked but flagged, so hit-testing and sibling snapshots can skip them.
package dom
