package selection

import (
	"time"

	"go.uber.org/zap"

	"github.com/thetronjohnson/layrr/internal/dom"
	"github.com/thetronjohnson/layrr/internal/geometry"
)

// Mode is the engine's input interpretation mode.
type Mode string

const (
	ModeBrowse    Mode = "browse"
	ModeSelect    Mode = "select"
	ModeColorPick Mode = "color-pick"
)

// Config holds the selection thresholds. Values come from the service
// configuration; zero values are replaced by the defaults below.
type Config struct {
	ClickTravel   float64
	ClickDuration time.Duration
	MinHitSize    float64
	MaxHitDepth   int
}

// DefaultConfig returns the stock selection thresholds.
func DefaultConfig() Config {
	return Config{
		ClickTravel:   5,
		ClickDuration: 300 * time.Millisecond,
		MinHitSize:    8,
		MaxHitDepth:   10,
	}
}

// WithDefaults replaces zero-valued thresholds with the defaults.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.ClickTravel <= 0 {
		c.ClickTravel = d.ClickTravel
	}
	if c.ClickDuration <= 0 {
		c.ClickDuration = d.ClickDuration
	}
	if c.MinHitSize <= 0 {
		c.MinHitSize = d.MinHitSize
	}
	if c.MaxHitDepth <= 0 {
		c.MaxHitDepth = d.MaxHitDepth
	}
	return c
}

// OutcomeKind tags what a completed pointer sequence produced.
type OutcomeKind string

const (
	OutcomeNone    OutcomeKind = "none"
	OutcomeClick   OutcomeKind = "click"
	OutcomeMarquee OutcomeKind = "marquee"
	OutcomeColor   OutcomeKind = "color"
)

// Outcome is the result of a pointer-up.
type Outcome struct {
	Kind  OutcomeKind
	Node  *dom.Node   // click target, when Kind == OutcomeClick
	Set   []*dom.Node // marquee result, when Kind == OutcomeMarquee
	Color Colors      // picked colors, when Kind == OutcomeColor
}

// Colors carries the picked background and text colors, hex-normalized.
type Colors struct {
	Background string `json:"backgroundColor"`
	Text       string `json:"textColor"`
}

// Engine is the per-session selection state machine. All methods are called
// from the session's single dispatch goroutine.
type Engine struct {
	arena *dom.Arena
	cfg   Config
	log   *zap.Logger

	mode Mode

	pressed    bool
	pressPoint geometry.Point
	pressTime  time.Time
	maxTravel  float64
	marquee    bool

	primary *dom.Node
	set     []*dom.Node

	hover         *dom.Node
	gestureActive bool
}

// NewEngine creates a selection engine over an arena.
func NewEngine(arena *dom.Arena, cfg Config, log *zap.Logger) *Engine {
	return &Engine{
		arena: arena,
		cfg:   cfg.WithDefaults(),
		log:   log,
		mode:  ModeBrowse,
	}
}

// SetArena swaps the tracked page after a new snapshot. All selection state
// refers to dead nodes at that point and is dropped.
func (e *Engine) SetArena(arena *dom.Arena) {
	e.arena = arena
	e.Reset()
}

// Reset clears all transient pointer and selection state.
func (e *Engine) Reset() {
	e.pressed = false
	e.marquee = false
	e.maxTravel = 0
	e.primary = nil
	e.set = nil
	e.hover = nil
}

// SetMode switches the interpretation mode. Switching clears any in-progress
// pointer sequence.
func (e *Engine) SetMode(m Mode) {
	e.mode = m
	e.pressed = false
	e.marquee = false
}

// Mode returns the active mode.
func (e *Engine) Mode() Mode { return e.mode }

// Primary returns the committed primary selection, or nil.
func (e *Engine) Primary() *dom.Node { return e.primary }

// Select sets the primary selection directly, bypassing hit-testing. Used
// when an external caller highlights an element by selector.
func (e *Engine) Select(n *dom.Node) {
	e.primary = n
	e.set = nil
}

// Set returns the marquee selection set.
func (e *Engine) Set() []*dom.Node { return e.set }

// SetGestureActive tells the engine a manipulation gesture owns the pointer;
// hover recomputation is suppressed for its duration.
func (e *Engine) SetGestureActive(active bool) {
	e.gestureActive = active
	if active {
		e.hover = nil
	}
}

// PointerDown starts a pointer sequence.
func (e *Engine) PointerDown(p geometry.Point, at time.Time) {
	e.pressed = true
	e.pressPoint = p
	e.pressTime = at
	e.maxTravel = 0
	e.marquee = false
}

// PointerMove advances an in-progress sequence. Once travel exceeds the click
// threshold the sequence becomes a marquee drag; the returned rect is the
// live marquee for overlay rendering, valid only when active is true.
func (e *Engine) PointerMove(p geometry.Point, at time.Time) (rect geometry.Rect, active bool) {
	if !e.pressed {
		return geometry.Rect{}, false
	}
	if d := geometry.Distance(e.pressPoint, p); d > e.maxTravel {
		e.maxTravel = d
	}
	if e.maxTravel > e.cfg.ClickTravel || at.Sub(e.pressTime) > e.cfg.ClickDuration {
		// Only select mode has a drag interpretation.
		if e.mode == ModeSelect {
			e.marquee = true
		}
	}
	if !e.marquee {
		return geometry.Rect{}, false
	}
	return geometry.FromCorners(e.pressPoint, p), true
}

// PointerUp finishes the sequence and commits its outcome.
func (e *Engine) PointerUp(p geometry.Point, at time.Time) Outcome {
	if !e.pressed {
		return Outcome{Kind: OutcomeNone}
	}
	e.pressed = false

	isClick := e.maxTravel <= e.cfg.ClickTravel && at.Sub(e.pressTime) <= e.cfg.ClickDuration

	if e.marquee && !isClick {
		e.marquee = false
		e.set = e.qualifyAll(e.arena.Intersecting(geometry.FromCorners(e.pressPoint, p)))
		return Outcome{Kind: OutcomeMarquee, Set: e.set}
	}
	e.marquee = false

	if !isClick {
		return Outcome{Kind: OutcomeNone}
	}

	target := e.HitTest(p)
	if target == nil {
		return Outcome{Kind: OutcomeNone}
	}

	switch e.mode {
	case ModeColorPick:
		colors := pickColors(target)
		// One pick per activation.
		e.mode = ModeSelect
		return Outcome{Kind: OutcomeColor, Node: target, Color: colors}
	case ModeSelect:
		e.primary = target
		e.set = nil
		return Outcome{Kind: OutcomeClick, Node: target}
	}

	// Browse mode: clicks pass through to the page.
	return Outcome{Kind: OutcomeNone}
}

// HitTest resolves the selectable element at a point: the deepest qualifying
// node, walking parents past undersized candidates up to the bounded depth.
func (e *Engine) HitTest(p geometry.Point) *dom.Node {
	n := e.arena.NodeAt(p)
	for depth := 0; n != nil && depth < e.cfg.MaxHitDepth; depth++ {
		if e.qualifies(n) {
			return n
		}
		n = n.Parent()
	}
	return nil
}

func (e *Engine) qualifies(n *dom.Node) bool {
	return !n.EditorUI && n.Visible() &&
		n.Rect.W >= e.cfg.MinHitSize && n.Rect.H >= e.cfg.MinHitSize
}

func (e *Engine) qualifyAll(nodes []*dom.Node) []*dom.Node {
	out := nodes[:0]
	for _, n := range nodes {
		if e.qualifies(n) {
			out = append(out, n)
		}
	}
	return out
}

// Hover recomputes the hovered element, reporting a change only when the hit
// node differs from the previous frame. Suppressed while a gesture is active.
func (e *Engine) Hover(p geometry.Point) (n *dom.Node, changed bool) {
	if e.gestureActive {
		return nil, false
	}
	hit := e.HitTest(p)
	if hit == e.hover {
		return e.hover, false
	}
	e.hover = hit
	return hit, true
}
