package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendGrowsUndoAndClearsRedo(t *testing.T) {
	l := New(nil)

	for i := 0; i < 3; i++ {
		l.Append("change", nil)
	}
	undo, redo := l.Depths()
	assert.Equal(t, 3, undo)
	assert.Equal(t, 0, redo, "appends alone never populate redo")

	_, ok := l.Undo()
	require.True(t, ok)
	undo, redo = l.Depths()
	assert.Equal(t, 2, undo)
	assert.Equal(t, 1, redo)

	// A fresh append clears the redo stack.
	l.Append("newer change", nil)
	undo, redo = l.Depths()
	assert.Equal(t, 3, undo)
	assert.Equal(t, 0, redo)
}

func TestUndoRedoRoundTrip(t *testing.T) {
	l := New(nil)

	appended := l.Append("Changed button color", []FileChange{
		{File: "App.tsx", Changes: "bg-blue→bg-red"},
	})

	undone, ok := l.Undo()
	require.True(t, ok)
	assert.Equal(t, appended.ID, undone.ID)

	redone, ok := l.Redo()
	require.True(t, ok)
	assert.Equal(t, appended.ID, redone.ID)

	top, ok := l.Top()
	require.True(t, ok)
	assert.Equal(t, appended.ID, top.ID, "redo restores the item at the top of the undo stack")
}

func TestUndoEmptyIsNoop(t *testing.T) {
	l := New(nil)

	_, ok := l.Undo()
	assert.False(t, ok)
	_, ok = l.Redo()
	assert.False(t, ok)
}

func TestItemsImmutableAndOrdered(t *testing.T) {
	l := New(nil)
	a := l.Append("first", nil)
	b := l.Append("second", nil)

	assert.Less(t, a.Seq, b.Seq)

	items := l.Items()
	require.Len(t, items, 2)
	items[0].Description = "mutated copy"
	assert.Equal(t, "first", l.Items()[0].Description)

	// Undo removes nothing from the display list.
	l.Undo()
	assert.Len(t, l.Items(), 2)
}

func TestNotifications(t *testing.T) {
	var ops []Op
	l := New(func(op Op, item Item) { ops = append(ops, op) })

	l.Append("change", nil)
	l.Undo()
	l.Redo()

	assert.Equal(t, []Op{OpAppend, OpUndo, OpRedo}, ops)
}
