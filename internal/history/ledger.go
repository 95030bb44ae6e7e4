// Package history keeps the append-only change ledger with undo/redo stacks.
//
// The ledger records confirmed backend completions only, never speculative
// edits. Undo and redo manage stack discipline and emit a notification; the
// actual file reversal is the backend's responsibility.
package history

import (
	"sync"
	"time"

	"github.com/thetronjohnson/layrr/internal/shared/id"
)

// FileChange summarizes one file touched by a change.
type FileChange struct {
	File    string `json:"file"`
	Changes string `json:"changes"`
}

// Item is one immutable ledger entry.
type Item struct {
	ID          id.ChangeID  `json:"id"`
	Seq         uint64       `json:"seq"`
	Timestamp   time.Time    `json:"timestamp"`
	Description string       `json:"description"`
	FileChanges []FileChange `json:"fileChanges,omitempty"`
}

// Op tags a ledger notification.
type Op string

const (
	OpAppend Op = "append"
	OpUndo   Op = "undo"
	OpRedo   Op = "redo"
)

// Notify receives ledger operations as they commit. Undo/redo notifications
// are the signal for the backend to reverse or re-apply the change.
type Notify func(op Op, item Item)

// Ledger is the session change history. It is safe for concurrent use; HTTP
// handlers read it off the dispatch goroutine.
type Ledger struct {
	mu     sync.RWMutex
	items  []Item
	undo   []int
	redo   []int
	seq    uint64
	notify Notify
}

// New creates an empty ledger. notify may be nil.
func New(notify Notify) *Ledger {
	return &Ledger{notify: notify}
}

// Append records a confirmed change, pushes it on the undo stack, and clears
// the redo stack.
func (l *Ledger) Append(description string, fileChanges []FileChange) Item {
	l.mu.Lock()
	l.seq++
	item := Item{
		ID:          id.NewChangeID(),
		Seq:         l.seq,
		Timestamp:   time.Now(),
		Description: description,
		FileChanges: fileChanges,
	}
	l.items = append(l.items, item)
	l.undo = append(l.undo, len(l.items)-1)
	l.redo = nil
	l.mu.Unlock()

	l.emit(OpAppend, item)
	return item
}

// Undo pops the newest undoable change onto the redo stack and signals for
// its reversal. No-op on an empty stack.
func (l *Ledger) Undo() (Item, bool) {
	l.mu.Lock()
	if len(l.undo) == 0 {
		l.mu.Unlock()
		return Item{}, false
	}
	idx := l.undo[len(l.undo)-1]
	l.undo = l.undo[:len(l.undo)-1]
	l.redo = append(l.redo, idx)
	item := l.items[idx]
	l.mu.Unlock()

	l.emit(OpUndo, item)
	return item, true
}

// Redo is symmetric to Undo.
func (l *Ledger) Redo() (Item, bool) {
	l.mu.Lock()
	if len(l.redo) == 0 {
		l.mu.Unlock()
		return Item{}, false
	}
	idx := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]
	l.undo = append(l.undo, idx)
	item := l.items[idx]
	l.mu.Unlock()

	l.emit(OpRedo, item)
	return item, true
}

// Items returns the display list, oldest first.
func (l *Ledger) Items() []Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

// Depths returns the undo and redo stack depths.
func (l *Ledger) Depths() (undo, redo int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.undo), len(l.redo)
}

// Top returns the item on top of the undo stack.
func (l *Ledger) Top() (Item, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.undo) == 0 {
		return Item{}, false
	}
	return l.items[l.undo[len(l.undo)-1]], true
}

func (l *Ledger) emit(op Op, item Item) {
	if l.notify != nil {
		l.notify(op, item)
	}
}
