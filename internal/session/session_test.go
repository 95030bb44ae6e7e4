package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thetronjohnson/layrr/internal/channel"
	"github.com/thetronjohnson/layrr/internal/dom"
	"github.com/thetronjohnson/layrr/internal/geometry"
	"github.com/thetronjohnson/layrr/internal/selection"
)

const testPage = `<html><body>
	<div id="hero">hello</div>
	<ul id="menu">
		<li class="item">one</li>
		<li class="item">two</li>
		<li class="item">three</li>
	</ul>
</body></html>`

func testLayout() []dom.LayoutEntry {
	return []dom.LayoutEntry{
		{Selector: "#hero", Rect: geometry.Rect{X: 0, Y: 0, W: 400, H: 80},
			Style: dom.Style{Display: "block", BackgroundColor: "rgb(20, 20, 20)", Color: "#ffffff"}},
		{Selector: "#menu", Rect: geometry.Rect{X: 0, Y: 100, W: 200, H: 160}, Style: dom.Style{Display: "block"}},
		{Selector: "#menu li:nth-child(1)", Rect: geometry.Rect{X: 0, Y: 100, W: 200, H: 40}, Style: dom.Style{Display: "list-item"}},
		{Selector: "#menu li:nth-child(2)", Rect: geometry.Rect{X: 0, Y: 150, W: 200, H: 40}, Style: dom.Style{Display: "list-item"}},
		{Selector: "#menu li:nth-child(3)", Rect: geometry.Rect{X: 0, Y: 200, W: 200, H: 40}, Style: dom.Style{Display: "list-item"}},
	}
}

// capture is a threadsafe emitter that records everything the session sends
// to the bridge.
type capture struct {
	mu     sync.Mutex
	events []any
}

func (c *capture) Emit(v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, v)
}

func (c *capture) all() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.events...)
}

func newTestSession(t *testing.T) (*Session, *capture) {
	t.Helper()
	out := &capture{}
	s := New(Config{}, out, nil, zap.NewNop())
	// The client is never dialed; sends fail fast with a synthetic error.
	c := channel.NewClient(channel.Config{
		ReloadURL:  "ws://unused/reload",
		MessageURL: "ws://unused/message",
	}, s.ChannelHandlers(), zap.NewNop())
	s.AttachClient(c)
	s.handle(PageSnapshot{HTML: []byte(testPage), Layout: testLayout()})
	return s, out
}

// drain runs queued events (channel callbacks dispatch asynchronously).
func drain(s *Session) {
	for {
		select {
		case ev := <-s.events:
			s.handle(ev)
		default:
			return
		}
	}
}

func find[T any](events []any) (T, bool) {
	var zero T
	for _, ev := range events {
		if v, ok := ev.(T); ok {
			return v, true
		}
	}
	return zero, false
}

func click(s *Session, p geometry.Point) {
	base := time.Now()
	s.handle(PointerDown{Point: p, At: base})
	s.handle(PointerUp{Point: p, At: base.Add(100 * time.Millisecond)})
}

func TestClickSelectsElement(t *testing.T) {
	s, out := newTestSession(t)
	s.handle(SetMode{Mode: selection.ModeSelect})

	click(s, geometry.Point{X: 100, Y: 120})

	sel, ok := find[ElementSelected](out.all())
	require.True(t, ok)
	assert.Equal(t, "li.item:nth-child(1)", sel.Element.Selector)
}

func TestHoverEmitsOnlyOnChange(t *testing.T) {
	s, out := newTestSession(t)
	s.handle(SetMode{Mode: selection.ModeSelect})

	s.handle(PointerMove{Point: geometry.Point{X: 100, Y: 120}, At: time.Now()})
	s.handle(PointerMove{Point: geometry.Point{X: 110, Y: 125}, At: time.Now()})
	s.handle(PointerMove{Point: geometry.Point{X: 100, Y: 170}, At: time.Now()})

	var hovers []HoverChanged
	for _, ev := range out.all() {
		if h, ok := ev.(HoverChanged); ok {
			hovers = append(hovers, h)
		}
	}
	require.Len(t, hovers, 2, "same hit node does not re-emit")
	assert.Equal(t, "li.item:nth-child(1)", hovers[0].Element.Selector)
	assert.Equal(t, "li.item:nth-child(2)", hovers[1].Element.Selector)
}

func TestDragOnSelectedCommitsInstruction(t *testing.T) {
	s, out := newTestSession(t)
	s.handle(SetMode{Mode: selection.ModeSelect})
	click(s, geometry.Point{X: 100, Y: 120})

	// Drag the selected item down past the second sibling.
	base := time.Now()
	s.handle(PointerDown{Point: geometry.Point{X: 100, Y: 120}, At: base})
	s.handle(PointerMove{Point: geometry.Point{X: 100, Y: 165}, At: base.Add(50 * time.Millisecond)})
	s.handle(PointerUp{Point: geometry.Point{X: 100, Y: 165}, At: base.Add(400 * time.Millisecond)})

	upd, ok := find[GestureUpdate](out.all())
	require.True(t, ok, "moves emit gesture updates")
	assert.NotEqual(t, "", string(upd.State))

	// The send fails fast (no backend); the synthetic error response settles
	// the instruction.
	require.Len(t, s.inflight, 1)
	drain(s)
	assert.Empty(t, s.inflight)

	resp, ok := find[MessageResponse](out.all())
	require.True(t, ok)
	assert.Equal(t, channel.StatusError, resp.Status)
	assert.Equal(t, channel.FailedCopy, resp.UserMessage)

	undo, _ := s.ledger.Depths()
	assert.Zero(t, undo, "failed instructions never reach the ledger")
}

func TestResizeCommitCarriesNewBox(t *testing.T) {
	s, _ := newTestSession(t)
	s.handle(SetMode{Mode: selection.ModeSelect})
	click(s, geometry.Point{X: 300, Y: 40})

	// Grab the south-east handle and shrink the hero from 400x80 to 300x60.
	base := time.Now()
	s.handle(PointerDown{Point: geometry.Point{X: 400, Y: 80}, At: base, Handle: "se"})
	s.handle(PointerMove{Point: geometry.Point{X: 300, Y: 60}, At: base.Add(50 * time.Millisecond)})
	s.handle(PointerUp{Point: geometry.Point{X: 300, Y: 60}, At: base.Add(400 * time.Millisecond)})

	require.Len(t, s.inflight, 1)
	for _, instruction := range s.inflight {
		assert.Equal(t, "Resized #hero to 300x60 at (0, 0)", instruction,
			"the committed box travels in the instruction text")
	}
}

func TestQuickReleaseOnSelectedIsReselect(t *testing.T) {
	s, out := newTestSession(t)
	s.handle(SetMode{Mode: selection.ModeSelect})
	click(s, geometry.Point{X: 100, Y: 120})

	// Press and release within the click envelope: no edit is sent.
	click(s, geometry.Point{X: 101, Y: 121})

	drain(s)
	assert.Empty(t, s.inflight)
	_, sentResponse := find[MessageResponse](out.all())
	assert.False(t, sentResponse)
}

func TestCompletedInstructionAppendsHistory(t *testing.T) {
	s, out := newTestSession(t)

	s.handle(SubmitMessage{
		Kind:        MessageElement,
		Selector:    "#hero",
		Instruction: "Changed button color",
	})
	require.Len(t, s.inflight, 1)
	var msgID string
	for k := range s.inflight {
		msgID = k
	}
	drain(s) // settles the synthetic send error for the disconnected client

	// Simulate a confirmed completion arriving for a fresh submission.
	s.inflight[msgID] = "Changed button color"
	s.handle(ChannelResponse{Response: channel.Response{ID: msgID, Status: channel.StatusComplete}})

	undo, redo := s.ledger.Depths()
	assert.Equal(t, 1, undo)
	assert.Zero(t, redo)

	hist, ok := find[HistoryChanged](out.all())
	require.True(t, ok)
	assert.Equal(t, "Changed button color", hist.Description)
}

func TestEscapeCancelsEverything(t *testing.T) {
	s, out := newTestSession(t)
	s.handle(SetMode{Mode: selection.ModeSelect})
	click(s, geometry.Point{X: 100, Y: 120})

	base := time.Now()
	s.handle(PointerDown{Point: geometry.Point{X: 100, Y: 120}, At: base})
	s.handle(PointerMove{Point: geometry.Point{X: 100, Y: 180}, At: base})
	s.handle(KeyPress{Key: "Escape"})

	_, cancelled := find[EditCancelled](out.all())
	assert.True(t, cancelled)
	assert.False(t, s.gest.Active())

	// The release after the cancel commits nothing.
	s.handle(PointerUp{Point: geometry.Point{X: 100, Y: 180}, At: base.Add(time.Second)})
	drain(s)
	assert.Empty(t, s.inflight)
}

func TestHighlightSelectsBySelector(t *testing.T) {
	s, out := newTestSession(t)

	s.handle(Highlight{Selector: "#hero"})

	sel, ok := find[ElementSelected](out.all())
	require.True(t, ok)
	assert.Equal(t, "#hero", sel.Element.Selector)
	assert.Equal(t, "div", sel.Element.Tag)
}

func TestColorPickEmitsNormalizedColors(t *testing.T) {
	s, out := newTestSession(t)
	s.handle(SetMode{Mode: selection.ModeColorPick})

	click(s, geometry.Point{X: 50, Y: 40})

	picked, ok := find[ColorPicked](out.all())
	require.True(t, ok)
	assert.Equal(t, "#141414", picked.Background)
	assert.Equal(t, "#ffffff", picked.Text)
}

func TestReloadForwardedToBridge(t *testing.T) {
	s, out := newTestSession(t)

	s.handle(ChannelReload{})

	reload, ok := find[Reload](out.all())
	require.True(t, ok)
	assert.Equal(t, TypeReload, reload.Type)
}

func TestPointerEventsBeforeSnapshotIgnored(t *testing.T) {
	out := &capture{}
	s := New(Config{}, out, nil, zap.NewNop())

	click(s, geometry.Point{X: 100, Y: 120})
	assert.Empty(t, out.all())
}
