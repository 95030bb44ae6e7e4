// Package gesture implements the direct-manipulation state machine.
//
// One Machine per session moves through Idle → {DraggingFree, Resizing,
// DraggingFromHandle} → Idle. Reorder mode is a sub-state entered only from a
// drag when the layout qualifies, and leaves whenever the drag ends, commit
// or not. Starting a new gesture supersedes whatever stale state a previous,
// improperly terminated gesture left behind.
//
// Layout context and the sibling arrangement are snapshotted once at gesture
// start; every pointer move re-evaluates reorder qualification and the drop
// candidate against those snapshots. Commit emits exactly one edit intent;
// cancel emits nothing.
package gesture
