package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thetronjohnson/layrr/internal/dom"
	"github.com/thetronjohnson/layrr/internal/geometry"
)

const listPage = `<html><body>
	<ul id="menu">
		<li class="item">one</li>
		<li class="item">two</li>
		<li class="item">three</li>
		<li class="item">four</li>
	</ul>
	<div id="lone"><img class="photo" src="p.jpg"></div>
	<div id="cells"><li class="stray">x</li><div class="a">a</div><div class="b">b</div></div>
</body></html>`

func listArena(t *testing.T) *dom.Arena {
	t.Helper()
	a, err := dom.Load([]byte(listPage))
	require.NoError(t, err)
	a.ApplyLayout([]dom.LayoutEntry{
		{Selector: "#menu", Rect: geometry.Rect{X: 0, Y: 0, W: 200, H: 210}, Style: dom.Style{Display: "block"}},
		{Selector: "#menu li:nth-child(1)", Rect: geometry.Rect{X: 0, Y: 0, W: 200, H: 40}, Style: dom.Style{Display: "list-item"}},
		{Selector: "#menu li:nth-child(2)", Rect: geometry.Rect{X: 0, Y: 50, W: 200, H: 40}, Style: dom.Style{Display: "list-item"}},
		{Selector: "#menu li:nth-child(3)", Rect: geometry.Rect{X: 0, Y: 100, W: 200, H: 40}, Style: dom.Style{Display: "list-item"}},
		{Selector: "#menu li:nth-child(4)", Rect: geometry.Rect{X: 0, Y: 150, W: 200, H: 40}, Style: dom.Style{Display: "list-item"}},
		{Selector: ".photo", Rect: geometry.Rect{X: 300, Y: 0, W: 400, H: 300}, Style: dom.Style{Display: "inline"}},
		{Selector: "#cells", Rect: geometry.Rect{X: 0, Y: 400, W: 600, H: 60}, Style: dom.Style{Display: "block"}},
		{Selector: ".stray", Rect: geometry.Rect{X: 0, Y: 400, W: 200, H: 60}, Style: dom.Style{Display: "block"}},
		{Selector: ".a", Rect: geometry.Rect{X: 200, Y: 400, W: 200, H: 60}, Style: dom.Style{Display: "block"}},
		{Selector: ".b", Rect: geometry.Rect{X: 400, Y: 400, W: 200, H: 60}, Style: dom.Style{Display: "block"}},
	})
	return a
}

func machineOver(t *testing.T, a *dom.Arena) *Machine {
	t.Helper()
	return NewMachine(a, DefaultConfig(), zap.NewNop())
}

func TestDragEntersReorderAfterAxisTravel(t *testing.T) {
	a := listArena(t)
	m := machineOver(t, a)
	li, _ := a.Resolve("#menu li:nth-child(1)")

	m.StartDrag(li, geometry.Point{X: 100, Y: 20}, false)
	assert.Equal(t, DraggingFree, m.State())

	// 8px of vertical travel: under the threshold, still a free drag.
	u := m.Move(geometry.Point{X: 100, Y: 28}, false)
	assert.False(t, u.ReorderActive)

	// Further travel crosses it; the candidate and side come from
	// vertical-center comparison against the sibling under the center.
	u = m.Move(geometry.Point{X: 100, Y: 60}, false)
	require.True(t, u.ReorderActive)
	require.NotNil(t, u.Candidate)
	assert.Equal(t, "li.item:nth-child(2)", u.Candidate.Target.Selector)
	assert.True(t, u.Candidate.Before, "dragged center 60 is above target center 70")
	assert.Nil(t, u.Violation)
}

func TestModifierHeldNeverReorders(t *testing.T) {
	a := listArena(t)
	m := machineOver(t, a)
	li, _ := a.Resolve("#menu li:nth-child(1)")

	m.StartDrag(li, geometry.Point{X: 100, Y: 20}, false)
	u := m.Move(geometry.Point{X: 100, Y: 120}, true)
	assert.False(t, u.ReorderActive)

	intent, ok := m.End(geometry.Point{X: 100, Y: 120})
	require.True(t, ok)
	assert.Equal(t, IntentReposition, intent.Kind)
}

func TestTooFewSiblingsNeverReorders(t *testing.T) {
	a := listArena(t)
	m := machineOver(t, a)
	img, _ := a.Resolve(".photo")

	m.StartDrag(img, geometry.Point{X: 350, Y: 50}, false)
	u := m.Move(geometry.Point{X: 350, Y: 250}, false)
	assert.False(t, u.ReorderActive, "an only child has nothing to reorder against")
}

func TestReorderCommitEmitsIntent(t *testing.T) {
	a := listArena(t)
	m := machineOver(t, a)
	li, _ := a.Resolve("#menu li:nth-child(1)")

	m.StartDrag(li, geometry.Point{X: 100, Y: 20}, false)
	m.Move(geometry.Point{X: 100, Y: 100}, false) // center lands in li #3

	intent, ok := m.End(geometry.Point{X: 100, Y: 100})
	require.True(t, ok)
	assert.Equal(t, IntentReorder, intent.Kind)
	assert.Equal(t, "li.item:nth-child(1)", intent.Selector)
	assert.Equal(t, "li.item:nth-child(3)", intent.TargetSelector)
	assert.Equal(t, Idle, m.State())
	assert.False(t, m.ReorderActive(), "sub-state clears with the drag")
}

func TestReorderOverGapCancels(t *testing.T) {
	a := listArena(t)
	m := machineOver(t, a)
	li, _ := a.Resolve("#menu li:nth-child(1)")

	m.StartDrag(li, geometry.Point{X: 100, Y: 20}, false)
	// Enough travel to activate reorder, but the center ends in the gap
	// between siblings.
	m.Move(geometry.Point{X: 100, Y: 45}, false)

	_, ok := m.End(geometry.Point{X: 100, Y: 45})
	assert.False(t, ok, "no target under center cancels rather than commits")
	assert.Equal(t, Idle, m.State())
}

func TestInvalidDropTargetBlocksCommit(t *testing.T) {
	a := listArena(t)
	m := machineOver(t, a)
	stray, _ := a.Resolve(".stray")

	m.StartDrag(stray, geometry.Point{X: 100, Y: 430}, false)
	u := m.Move(geometry.Point{X: 300, Y: 430}, false)

	require.True(t, u.ReorderActive)
	require.NotNil(t, u.Candidate)
	require.NotNil(t, u.Violation, "an li cannot be reordered among divs")
	assert.Equal(t, []string{"ul", "ol", "menu"}, u.Violation.ValidParents)

	_, ok := m.End(geometry.Point{X: 300, Y: 430})
	assert.False(t, ok, "invalid target blocks the commit")
}

func TestResizeClampsAndCommits(t *testing.T) {
	a := listArena(t)
	m := machineOver(t, a)
	img, _ := a.Resolve(".photo")

	m.StartResize(img, geometry.SouthEast, geometry.Point{X: 700, Y: 300})
	u := m.Move(geometry.Point{X: 300, Y: 50}, false)

	// Images clamp at 100x100 no matter how far the handle travels.
	assert.Equal(t, float64(100), u.Box.W)
	assert.Equal(t, float64(100), u.Box.H)

	intent, ok := m.End(geometry.Point{X: 300, Y: 50})
	require.True(t, ok)
	assert.Equal(t, IntentResize, intent.Kind)
	assert.Equal(t, float64(100), intent.Box.W)
}

func TestCancelRevertsWithoutIntent(t *testing.T) {
	a := listArena(t)
	m := machineOver(t, a)
	li, _ := a.Resolve("#menu li:nth-child(2)")

	m.StartDrag(li, geometry.Point{X: 100, Y: 70}, false)
	m.Move(geometry.Point{X: 100, Y: 160}, false)
	m.Cancel()

	assert.Equal(t, Idle, m.State())
	_, ok := m.End(geometry.Point{X: 100, Y: 160})
	assert.False(t, ok)
}

func TestNewGestureSupersedesStale(t *testing.T) {
	a := listArena(t)
	m := machineOver(t, a)
	li1, _ := a.Resolve("#menu li:nth-child(1)")
	li2, _ := a.Resolve("#menu li:nth-child(2)")

	m.StartDrag(li1, geometry.Point{X: 100, Y: 20}, false)
	m.Move(geometry.Point{X: 100, Y: 100}, false)
	assert.True(t, m.ReorderActive())

	// A resize starting mid-drag implies the up event was lost.
	m.StartResize(li2, geometry.East, geometry.Point{X: 200, Y: 70})
	assert.Equal(t, Resizing, m.State())
	assert.False(t, m.ReorderActive())
}

func TestDragFromHandleSharesSemantics(t *testing.T) {
	a := listArena(t)
	m := machineOver(t, a)
	li, _ := a.Resolve("#menu li:nth-child(1)")

	m.StartDrag(li, geometry.Point{X: 100, Y: 20}, true)
	assert.Equal(t, DraggingFromHandle, m.State())

	u := m.Move(geometry.Point{X: 100, Y: 100}, false)
	assert.True(t, u.ReorderActive)
}
