// Package selection turns raw pointer sequences into element selections.
//
// One Engine per session consumes pointer-down/move/up events and produces
// either a committed element (click), a marquee selection (drag), or a picked
// color, depending on the active mode. Click vs. drag is decided by fixed
// travel and duration thresholds; everything else flows from that split.
//
// Hit-testing walks upward from the deepest node under the pointer, skipping
// the editor's own overlay subtree and rejecting undersized candidates, up to
// a bounded depth. When nothing qualifies the selection fails silently.
package selection
