package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/thetronjohnson/layrr/internal/channel"
	"github.com/thetronjohnson/layrr/internal/dom"
	"github.com/thetronjohnson/layrr/internal/geometry"
	"github.com/thetronjohnson/layrr/internal/gesture"
	"github.com/thetronjohnson/layrr/internal/history"
	"github.com/thetronjohnson/layrr/internal/infrastructure/monitoring"
	"github.com/thetronjohnson/layrr/internal/selection"
	"github.com/thetronjohnson/layrr/internal/shared/id"
)

// eventBuffer bounds the dispatch queue. Pointer moves are high-rate; a full
// queue drops the event rather than blocking the bridge reader.
const eventBuffer = 256

// Config bundles the per-session tuning.
type Config struct {
	Selection selection.Config
	Gesture   gesture.Config
}

// Session owns all editing state for one connected bridge: the tracked-node
// arena, the selection and gesture machines, the history ledger, and the
// command channel bookkeeping. All state transitions happen on the single
// dispatch goroutine run by Run; inputs arrive only through Dispatch.
type Session struct {
	ID id.SessionID

	log     *zap.Logger
	metrics *monitoring.Metrics
	emitter Emitter

	arena  *dom.Arena
	sel    *selection.Engine
	gest   *gesture.Machine
	ledger *history.Ledger
	client *channel.Client

	events chan Event
	cfg    Config

	pointerDown bool
	// selTracking marks a body drag that may still resolve to a click. The
	// session tracks the click envelope itself so the selection engine never
	// sees pointer traffic owned by a gesture.
	selTracking bool
	downPoint   geometry.Point
	downTime    time.Time
	dragTravel  float64

	// inflight maps instruction ids to ledger descriptions, written on send
	// and consumed on confirmed completion.
	inflight map[string]string
}

// New creates a session. AttachClient must be called before instruction
// submissions are dispatched.
func New(cfg Config, emitter Emitter, metrics *monitoring.Metrics, log *zap.Logger) *Session {
	cfg.Selection = cfg.Selection.WithDefaults()
	s := &Session{
		ID:       id.NewSessionID(),
		cfg:      cfg,
		log:      log,
		metrics:  metrics,
		emitter:  emitter,
		sel:      selection.NewEngine(nil, cfg.Selection, log),
		gest:     gesture.NewMachine(nil, cfg.Gesture, log),
		events:   make(chan Event, eventBuffer),
		inflight: make(map[string]string),
	}
	s.ledger = history.New(s.onHistory)
	return s
}

// AttachClient wires the command channel client used for sends. The client's
// callbacks are expected to come from ChannelHandlers.
func (s *Session) AttachClient(c *channel.Client) {
	s.client = c
}

// ChannelHandlers funnels the channel client's callbacks onto the event
// stream, keeping the dispatch loop the only writer of session state.
func (s *Session) ChannelHandlers() channel.Handlers {
	return channel.Handlers{
		OnReload: func() { s.Dispatch(ChannelReload{}) },
		OnResponse: func(r channel.Response) {
			s.Dispatch(ChannelResponse{Response: r})
		},
		OnStatus: func(ch string, st channel.ConnStatus) {
			s.Dispatch(ChannelStatusChanged{Channel: ch, Status: st})
		},
	}
}

// Ledger exposes the history ledger for the HTTP surface. The ledger is
// internally locked; reads off the dispatch loop are safe.
func (s *Session) Ledger() *history.Ledger { return s.ledger }

// Dispatch queues an event for the dispatch loop. Never blocks; a full queue
// drops the event.
func (s *Session) Dispatch(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.log.Warn("event queue full, dropping", zap.Any("event", ev))
	}
}

// Run consumes events until ctx ends.
func (s *Session) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			s.handle(ev)
		}
	}
}

func (s *Session) handle(ev Event) {
	switch e := ev.(type) {
	case PageSnapshot:
		s.loadSnapshot(e)
	case PointerDown:
		s.pointerDownEvent(e)
	case PointerMove:
		s.pointerMoveEvent(e)
	case PointerUp:
		s.pointerUpEvent(e)
	case KeyPress:
		s.keyEvent(e)
	case SetMode:
		s.sel.SetMode(e.Mode)
		s.gest.Cancel()
		s.sel.SetGestureActive(false)
	case Highlight:
		s.highlight(e)
	case SubmitMessage:
		s.submit(e)
	case ChannelResponse:
		s.channelResponse(e.Response)
	case ChannelReload:
		s.emit(Reload{Type: TypeReload})
	case ChannelStatusChanged:
		s.channelStatus(e)
	case BatchSettled:
		s.emit(BatchNotice{
			Type:        TypeBatchSettled,
			BatchNumber: e.Ack.BatchNumber,
			MessageID:   e.Ack.MessageID,
		})
	}
}

func (s *Session) loadSnapshot(e PageSnapshot) {
	arena, err := dom.Load(e.HTML)
	if err != nil {
		s.log.Warn("snapshot rejected", zap.Error(err))
		return
	}
	applied := arena.ApplyLayout(e.Layout)
	s.arena = arena
	s.sel.SetArena(arena)
	s.gest.SetArena(arena)
	if s.metrics != nil {
		s.metrics.SnapshotNodes.Set(float64(arena.Len()))
	}
	s.log.Debug("snapshot loaded",
		zap.Int("nodes", arena.Len()),
		zap.Int("measured", applied))
}

func (s *Session) pointerDownEvent(e PointerDown) {
	if s.arena == nil {
		return
	}
	s.pointerDown = true
	s.selTracking = false

	if e.Handle != "" {
		target := s.sel.Primary()
		if target == nil {
			s.log.Debug("handle press without selection", zap.String("handle", e.Handle))
			return
		}
		if e.Handle == HandleMove {
			s.gest.StartDrag(target, e.Point, true)
		} else {
			s.gest.StartResize(target, geometry.Direction(e.Handle), e.Point)
		}
		s.sel.SetGestureActive(true)
		return
	}

	// A press on the already-selected element starts a tentative drag; the
	// release decides between reselect-click and commit.
	if s.sel.Mode() == selection.ModeSelect {
		if hit := s.sel.HitTest(e.Point); hit != nil && hit == s.sel.Primary() {
			s.gest.StartDrag(hit, e.Point, false)
			s.sel.SetGestureActive(true)
			s.selTracking = true
			s.downPoint = e.Point
			s.downTime = e.At
			s.dragTravel = 0
			return
		}
	}

	s.sel.PointerDown(e.Point, e.At)
}

func (s *Session) pointerMoveEvent(e PointerMove) {
	if s.arena == nil {
		return
	}

	if s.gest.Active() {
		if s.selTracking {
			if d := geometry.Distance(s.downPoint, e.Point); d > s.dragTravel {
				s.dragTravel = d
			}
		}
		upd := s.gest.Move(e.Point, e.Modifier)
		s.emit(GestureUpdate{Type: TypeGestureUpdate, Update: upd})
		return
	}

	if rect, active := s.sel.PointerMove(e.Point, e.At); active {
		s.emit(Marquee{Type: TypeMarquee, Rect: rect})
		return
	}

	if !s.pointerDown {
		if n, changed := s.sel.Hover(e.Point); changed {
			s.emit(HoverChanged{Type: TypeHoverChanged, Element: s.infoPtr(n)})
		}
	}
}

func (s *Session) pointerUpEvent(e PointerUp) {
	if s.arena == nil {
		return
	}
	s.pointerDown = false

	if s.gest.Active() {
		s.finishGesture(e)
		return
	}

	switch oc := s.sel.PointerUp(e.Point, e.At); oc.Kind {
	case selection.OutcomeClick:
		s.recordSelection("click")
		s.emit(ElementSelected{Type: TypeElementSelected, Element: s.arena.Info(oc.Node)})
	case selection.OutcomeMarquee:
		s.recordSelection("marquee")
		s.emit(SelectionChanged{Type: TypeSelectionChanged, Elements: s.infos(oc.Set)})
	case selection.OutcomeColor:
		s.recordSelection("color")
		s.emit(ColorPicked{Type: TypeColorPicked, Colors: oc.Color})
	}
}

func (s *Session) finishGesture(e PointerUp) {
	kind := gestureKind(s.gest)

	// A body drag that never left the click envelope is a reselect, not an
	// edit.
	if s.selTracking {
		isClick := s.dragTravel <= s.cfg.Selection.ClickTravel &&
			e.At.Sub(s.downTime) <= s.cfg.Selection.ClickDuration
		if isClick {
			s.gest.Cancel()
			s.sel.SetGestureActive(false)
			s.selTracking = false
			s.emit(GestureUpdate{Type: TypeGestureUpdate, Update: gesture.Update{State: gesture.Idle}})
			if primary := s.sel.Primary(); primary != nil {
				s.emit(ElementSelected{Type: TypeElementSelected, Element: s.arena.Info(primary)})
			}
			return
		}
	}
	s.selTracking = false

	intent, ok := s.gest.End(e.Point)
	s.sel.SetGestureActive(false)
	s.emit(GestureUpdate{Type: TypeGestureUpdate, Update: gesture.Update{State: gesture.Idle}})

	if !ok {
		s.recordGesture(kind, "cancelled")
		return
	}
	s.recordGesture(string(intent.Kind), "committed")
	s.sendIntent(intent)
}

func (s *Session) keyEvent(e KeyPress) {
	if e.Key != "Escape" {
		return
	}
	s.gest.Cancel()
	s.sel.SetGestureActive(false)
	s.sel.Reset()
	s.selTracking = false
	s.pointerDown = false
	s.emit(GestureUpdate{Type: TypeGestureUpdate, Update: gesture.Update{State: gesture.Idle}})
	s.emit(HoverChanged{Type: TypeHoverChanged})
	s.emit(EditCancelled{Type: TypeEditCancelled})
}

func (s *Session) highlight(e Highlight) {
	if s.arena == nil {
		return
	}
	n, err := s.arena.Resolve(e.Selector)
	if err != nil {
		s.log.Warn("highlight target not found", zap.String("selector", e.Selector))
		return
	}
	s.sel.Select(n)
	s.emit(ElementSelected{Type: TypeElementSelected, Element: s.arena.Info(n)})
}

// sendIntent converts a committed gesture into an instruction envelope.
func (s *Session) sendIntent(intent gesture.Intent) {
	s.submit(SubmitMessage{
		Kind:        MessageElement,
		Selector:    intent.Selector,
		Instruction: intent.Describe(),
	})
}

func (s *Session) submit(e SubmitMessage) {
	if s.client == nil {
		s.log.Error("submission dropped, no channel client")
		return
	}

	inst := channel.Instruction{
		ID:          id.NewMessageID().String(),
		Selector:    e.Selector,
		Instruction: e.Instruction,
		ImagePath:   e.ImagePath,
	}
	if e.Selector != "" && s.arena != nil {
		if n, err := s.arena.Resolve(e.Selector); err == nil {
			info := s.arena.Info(n)
			inst.Element = &info
		}
	}
	if len(e.Screenshot) > 0 {
		inst.Screenshot, inst.Encoding = channel.EncodeScreenshot(e.Screenshot)
	}
	if e.BatchNumber != nil {
		n := *e.BatchNumber
		inst.BatchNumber = &n
		s.client.RegisterBatch(n, func(ack channel.BatchComplete) {
			s.Dispatch(BatchSettled{Ack: ack})
		})
		if s.metrics != nil {
			s.metrics.PendingBatches.Set(float64(s.client.PendingBatchCount()))
		}
	}

	s.inflight[inst.ID] = e.Instruction
	if err := s.client.Send(inst); err != nil {
		// The synthetic error response settles the entry via channelResponse.
		s.log.Warn("instruction send failed", zap.String("id", inst.ID), zap.Error(err))
	}
}

func (s *Session) channelResponse(r channel.Response) {
	if s.metrics != nil {
		s.metrics.RecordMessage(r.Status)
	}

	out := MessageResponse{
		Type:   TypeMessageResponse,
		ID:     r.ID,
		Status: r.Status,
		Error:  r.Error,
	}

	switch r.Status {
	case channel.StatusComplete:
		if desc, ok := s.inflight[r.ID]; ok {
			delete(s.inflight, r.ID)
			s.ledger.Append(desc, nil)
		}
	case channel.StatusError:
		delete(s.inflight, r.ID)
		out.UserMessage = channel.ClassifyError(r.Error).UserCopy()
	}

	s.emit(out)
}

func (s *Session) channelStatus(e ChannelStatusChanged) {
	if s.metrics != nil {
		s.metrics.SetChannelConnected(e.Channel, e.Status == channel.StatusConnected)
		if e.Status == channel.StatusReconnecting {
			s.metrics.ChannelReconnects.WithLabelValues(e.Channel).Inc()
		}
	}
	s.emit(ChannelNotice{Type: TypeChannelStatus, Channel: e.Channel, Status: e.Status})
}

// onHistory is the ledger's notification hook. It may run off the dispatch
// loop when undo/redo arrive over HTTP; it only touches locked state.
func (s *Session) onHistory(op history.Op, item history.Item) {
	undo, redo := s.ledger.Depths()
	if s.metrics != nil {
		s.metrics.SetLedgerDepth(undo, redo)
	}
	s.emit(HistoryChanged{
		Type:        TypeHistoryChanged,
		Undo:        undo,
		Redo:        redo,
		Description: item.Description,
	})
}

func (s *Session) emit(v any) {
	if s.emitter != nil {
		s.emitter.Emit(v)
	}
}

func (s *Session) infos(nodes []*dom.Node) []dom.NodeInfo {
	out := make([]dom.NodeInfo, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, s.arena.Info(n))
	}
	return out
}

func (s *Session) infoPtr(n *dom.Node) *dom.NodeInfo {
	if n == nil {
		return nil
	}
	info := s.arena.Info(n)
	return &info
}

func (s *Session) recordGesture(kind, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordGesture(kind, outcome)
	}
}

func (s *Session) recordSelection(kind string) {
	if s.metrics != nil {
		s.metrics.SelectionsMade.WithLabelValues(kind).Inc()
	}
}

// gestureKind names the in-progress gesture for metrics before End resets it.
func gestureKind(m *gesture.Machine) string {
	switch {
	case m.State() == gesture.Resizing:
		return string(gesture.IntentResize)
	case m.ReorderActive():
		return string(gesture.IntentReorder)
	default:
		return string(gesture.IntentReposition)
	}
}
