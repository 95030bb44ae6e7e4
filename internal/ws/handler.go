package ws

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/thetronjohnson/layrr/internal/channel"
	"github.com/thetronjohnson/layrr/internal/dom"
	"github.com/thetronjohnson/layrr/internal/geometry"
	"github.com/thetronjohnson/layrr/internal/infrastructure/monitoring"
	"github.com/thetronjohnson/layrr/internal/selection"
	"github.com/thetronjohnson/layrr/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // bridge runs on the edited page's origin
	},
}

// Frame is the envelope of every inbound bridge frame. Unknown fields are
// ignored; each type reads the fields it needs.
type Frame struct {
	Type     string  `json:"type"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Modifier bool    `json:"modifier"`
	Handle   string  `json:"handle"`
	Key      string  `json:"key"`
	Selector string  `json:"selector"`

	HTML   string            `json:"html"`
	Layout []dom.LayoutEntry `json:"layout"`

	Payload MessagePayload `json:"payload"`
}

// MessagePayload is the body of the SEND_*_MESSAGE frames.
type MessagePayload struct {
	Selector    string `json:"selector"`
	Instruction string `json:"instruction"`
	Screenshot  string `json:"screenshot"` // base64
	ImagePath   string `json:"imagePath"`
	BatchNumber *int   `json:"batchNumber"`
}

// Handler manages bridge WebSocket connections. Each connection gets its own
// session, dispatch goroutine, and command channel client.
type Handler struct {
	sessionCfg session.Config
	channelCfg channel.Config
	registry   *Registry
	metrics    *monitoring.Metrics
	log        *zap.Logger
}

// NewHandler creates a bridge handler.
func NewHandler(sessionCfg session.Config, channelCfg channel.Config, registry *Registry, metrics *monitoring.Metrics, log *zap.Logger) *Handler {
	return &Handler{
		sessionCfg: sessionCfg,
		channelCfg: channelCfg,
		registry:   registry,
		metrics:    metrics,
		log:        log,
	}
}

// HandleConnection upgrades the bridge socket and pumps frames into a fresh
// session until the connection drops.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("bridge upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	emitter := newEmitter(conn, h.metrics, h.log)
	sess := session.New(h.sessionCfg, emitter, h.metrics, h.log)
	client := channel.NewClient(h.channelCfg, sess.ChannelHandlers(), h.log)
	sess.AttachClient(client)

	ctx := c.Request.Context()
	go sess.Run(ctx)
	go client.Run(ctx)

	h.registry.Register(sess)
	defer h.registry.Unregister(sess)

	if h.metrics != nil {
		h.metrics.BridgeConnections.Inc()
		defer h.metrics.BridgeConnections.Dec()
	}
	h.log.Info("bridge connected", zap.String("session", sess.ID.String()))

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			h.log.Debug("bridge read ended", zap.Error(err))
			return
		}
		h.dispatch(sess, emitter, raw)
	}
}

func (h *Handler) dispatch(sess *session.Session, emitter *emitter, raw []byte) {
	var frame Frame
	if err := sonic.Unmarshal(raw, &frame); err != nil {
		h.log.Warn("malformed bridge frame dropped", zap.Error(err))
		return
	}
	if h.metrics != nil {
		h.metrics.BridgeFrames.WithLabelValues("in", frame.Type).Inc()
	}

	now := time.Now()
	point := geometry.Point{X: frame.X, Y: frame.Y}

	switch frame.Type {
	case "pointer_down":
		sess.Dispatch(session.PointerDown{Point: point, At: now, Modifier: frame.Modifier, Handle: frame.Handle})
	case "pointer_move":
		sess.Dispatch(session.PointerMove{Point: point, At: now, Modifier: frame.Modifier})
	case "pointer_up":
		sess.Dispatch(session.PointerUp{Point: point, At: now})
	case "key":
		sess.Dispatch(session.KeyPress{Key: frame.Key})
	case "page_snapshot":
		sess.Dispatch(session.PageSnapshot{HTML: []byte(frame.HTML), Layout: frame.Layout})
	case "ENABLE_SELECTION_MODE":
		sess.Dispatch(session.SetMode{Mode: selection.ModeSelect})
	case "DISABLE_SELECTION_MODE":
		sess.Dispatch(session.SetMode{Mode: selection.ModeBrowse})
	case "ENABLE_COLOR_PICKER_MODE":
		sess.Dispatch(session.SetMode{Mode: selection.ModeColorPick})
	case "DISABLE_COLOR_PICKER_MODE":
		sess.Dispatch(session.SetMode{Mode: selection.ModeSelect})
	case "HIGHLIGHT_ELEMENT":
		sess.Dispatch(session.Highlight{Selector: frame.Selector})
	case "SEND_ELEMENT_MESSAGE":
		sess.Dispatch(h.submission(session.MessageElement, frame.Payload))
	case "SEND_VISION_MESSAGE":
		sess.Dispatch(h.submission(session.MessageVision, frame.Payload))
	case "SEND_ATTACHMENT_MESSAGE":
		sess.Dispatch(h.submission(session.MessageAttachment, frame.Payload))
	case "ping":
		emitter.Emit(gin.H{"type": "pong"})
	default:
		h.log.Warn("unknown bridge frame type", zap.String("type", frame.Type))
	}
}

func (h *Handler) submission(kind session.MessageKind, p MessagePayload) session.SubmitMessage {
	msg := session.SubmitMessage{
		Kind:        kind,
		Selector:    p.Selector,
		Instruction: p.Instruction,
		ImagePath:   p.ImagePath,
		BatchNumber: p.BatchNumber,
	}
	if p.Screenshot != "" {
		shot, err := base64.StdEncoding.DecodeString(p.Screenshot)
		if err != nil {
			h.log.Warn("screenshot payload not base64, dropping it", zap.Error(err))
		} else {
			msg.Screenshot = shot
		}
	}
	return msg
}
