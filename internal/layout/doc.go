// Package layout holds the pure layout-semantics functions: flow-context
// detection, sibling-arrangement snapshots, reorder-target resolution,
// HTML nesting compatibility, and content-derived minimum sizes.
//
// Everything here is stateless. The gesture state machine snapshots a
// Context and an Arrangement once at gesture start so semantics stay stable
// mid-gesture even if the page reflows underneath.
//
// The nesting compatibility table ships as embedded YAML (rules.yaml) so a
// deployment can extend it without a rebuild.
package layout
