package gesture

import (
	"math"

	"go.uber.org/zap"

	"github.com/thetronjohnson/layrr/internal/dom"
	"github.com/thetronjohnson/layrr/internal/geometry"
	"github.com/thetronjohnson/layrr/internal/layout"
)

// State names the machine's top-level state.
type State string

const (
	Idle               State = "idle"
	DraggingFree       State = "dragging-free"
	Resizing           State = "resizing"
	DraggingFromHandle State = "dragging-from-handle"
)

// Config holds the gesture thresholds. The tie-break tolerance is
// deliberately configurable rather than a constant.
type Config struct {
	ReorderThreshold  float64
	TieBreakTolerance float64
}

// DefaultConfig returns the stock gesture thresholds.
func DefaultConfig() Config {
	return Config{ReorderThreshold: 10, TieBreakTolerance: 5}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ReorderThreshold <= 0 {
		c.ReorderThreshold = d.ReorderThreshold
	}
	if c.TieBreakTolerance <= 0 {
		c.TieBreakTolerance = d.TieBreakTolerance
	}
	return c
}

// Update is the per-move feedback consumed by the overlay renderer.
type Update struct {
	State         State                 `json:"state"`
	Box           geometry.Rect         `json:"box"`
	ReorderActive bool                  `json:"reorderActive"`
	Candidate     *layout.Candidate     `json:"candidate,omitempty"`
	Violation     *layout.DropViolation `json:"violation,omitempty"`
}

// Machine is the per-session direct-manipulation state machine. All methods
// run on the session's single dispatch goroutine.
type Machine struct {
	arena *dom.Arena
	cfg   Config
	log   *zap.Logger

	state  State
	node   *dom.Node
	anchor geometry.Point
	start  geometry.Rect
	live   geometry.Rect
	min    geometry.Size
	dir    geometry.Direction

	// Snapshotted once at drag start.
	flow        layout.Context
	arrangement layout.Arrangement
	origIndex   int

	axis          layout.Axis
	axisTravel    float64
	lastPoint     geometry.Point
	reorderActive bool
	candidate     *layout.Candidate
	violation     *layout.DropViolation
}

// NewMachine creates a gesture machine over an arena.
func NewMachine(arena *dom.Arena, cfg Config, log *zap.Logger) *Machine {
	return &Machine{arena: arena, cfg: cfg.withDefaults(), log: log, state: Idle}
}

// SetArena swaps the tracked page. Any in-flight gesture refers to dead
// nodes and is dropped.
func (m *Machine) SetArena(arena *dom.Arena) {
	m.arena = arena
	m.reset()
}

// State returns the machine's current top-level state.
func (m *Machine) State() State { return m.state }

// Active reports whether any gesture is in progress.
func (m *Machine) Active() bool { return m.state != Idle }

// ReorderActive reports whether the reorder sub-state is engaged.
func (m *Machine) ReorderActive() bool { return m.reorderActive }

// StartDrag begins a free drag on a node. fromHandle distinguishes a grab on
// the move handle from a grab on the element body; the semantics are shared.
func (m *Machine) StartDrag(n *dom.Node, anchor geometry.Point, fromHandle bool) {
	m.supersede()
	m.state = DraggingFree
	if fromHandle {
		m.state = DraggingFromHandle
	}
	m.node = n
	m.anchor = anchor
	m.lastPoint = anchor
	m.start = n.Rect
	m.live = n.Rect

	if parent := n.Parent(); parent != nil {
		m.flow = layout.Detect(parent.Style)
	} else {
		m.flow = layout.Context{Mode: layout.FlowBlock, Axis: layout.AxisVertical}
	}
	m.arrangement = layout.Snapshot(m.arena, n)
	m.origIndex = m.arrangement.IndexOf(n.Ref)
	m.axis = layout.AxisFor(m.flow, m.arrangement)
}

// StartResize begins a resize on a node from one of the eight handles.
func (m *Machine) StartResize(n *dom.Node, dir geometry.Direction, anchor geometry.Point) {
	m.supersede()
	m.state = Resizing
	m.node = n
	m.dir = dir
	m.anchor = anchor
	m.start = n.Rect
	m.live = n.Rect
	m.min = layout.MinSize(n)
}

// Move advances the active gesture. Reorder qualification is re-evaluated on
// every move; the returned update carries everything the overlay needs.
func (m *Machine) Move(p geometry.Point, modifierHeld bool) Update {
	switch m.state {
	case Idle:
		return Update{State: Idle}
	case Resizing:
		m.live = geometry.Resize(m.start, m.anchor, p, m.dir, m.min)
		return Update{State: m.state, Box: m.live}
	}

	// Drag states.
	m.live = m.start.Translate(p.X-m.anchor.X, p.Y-m.anchor.Y)

	if !layout.Qualifies(m.arrangement, m.node.Ref, modifierHeld) {
		m.clearReorder()
		m.lastPoint = p
		return Update{State: m.state, Box: m.live}
	}

	delta := p.Y - m.lastPoint.Y
	if m.axis == layout.AxisHorizontal {
		delta = p.X - m.lastPoint.X
	}
	m.axisTravel += math.Abs(delta)
	m.lastPoint = p

	if !m.reorderActive && m.axisTravel > m.cfg.ReorderThreshold {
		m.reorderActive = true
	}
	if !m.reorderActive {
		return Update{State: m.state, Box: m.live}
	}

	m.resolveCandidate()
	return Update{
		State:         m.state,
		Box:           m.live,
		ReorderActive: true,
		Candidate:     m.candidate,
		Violation:     m.violation,
	}
}

// resolveCandidate locates the drop target under the dragged element's
// center and validates the would-be parent/child pairing.
func (m *Machine) resolveCandidate() {
	c, ok := layout.ResolveTarget(m.arrangement, m.node.Ref, m.live.Center(), m.axis, m.cfg.TieBreakTolerance)
	if !ok {
		m.candidate = nil
		m.violation = nil
		return
	}
	m.candidate = &c
	m.violation = m.validateDrop(c)
}

func (m *Machine) validateDrop(c layout.Candidate) *layout.DropViolation {
	parentTag := ""
	if target, ok := m.arena.Get(c.Target.Ref); ok && target.Parent() != nil {
		parentTag = target.Parent().Tag
	}
	if parentTag == "" {
		return nil
	}
	return layout.ValidateDrop(m.node.Tag, parentTag)
}

// End commits the gesture at the release point. The returned intent is valid
// only when ok is true; a reorder over an invalid or absent target cancels
// instead of committing. The machine is Idle afterwards either way.
func (m *Machine) End(p geometry.Point) (Intent, bool) {
	defer m.reset()

	switch m.state {
	case Idle:
		return Intent{}, false

	case Resizing:
		return Intent{
			Kind:     IntentResize,
			Selector: m.arena.Selector(m.node),
			Box:      m.live,
		}, true
	}

	if m.reorderActive {
		if m.candidate == nil || m.violation != nil {
			return Intent{}, false
		}
		return Intent{
			Kind:           IntentReorder,
			Selector:       m.arena.Selector(m.node),
			TargetSelector: m.candidate.Target.Selector,
			Before:         m.candidate.Before,
		}, true
	}

	return Intent{
		Kind:     IntentReposition,
		Selector: m.arena.Selector(m.node),
		Position: geometry.Point{X: m.live.X, Y: m.live.Y},
	}, true
}

// Cancel reverts all transient state without emitting an intent.
func (m *Machine) Cancel() {
	m.reset()
}

// supersede clears stale state when a new gesture starts over an old one.
func (m *Machine) supersede() {
	if m.state != Idle {
		m.log.Debug("gesture superseded", zap.String("state", string(m.state)))
	}
	m.reset()
}

func (m *Machine) reset() {
	m.state = Idle
	m.node = nil
	m.axisTravel = 0
	m.clearReorder()
}

func (m *Machine) clearReorder() {
	m.reorderActive = false
	m.candidate = nil
	m.violation = nil
}
