package channel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ConnStatus is the lifecycle state of one connection.
type ConnStatus string

const (
	StatusConnecting   ConnStatus = "connecting"
	StatusConnected    ConnStatus = "connected"
	StatusDisconnected ConnStatus = "disconnected"
	StatusReconnecting ConnStatus = "reconnecting"
)

// ErrNotConnected is returned by Send while the connection is not open.
var ErrNotConnected = errors.New("channel: connection not open")

// conn is one self-healing WebSocket connection. It dials, pumps frames to
// its handler, and on any close or error schedules a reconnect with backoff,
// forever, until the context ends.
type conn struct {
	name    string
	url     string
	backoff Backoff
	log     *zap.Logger

	onFrame  func([]byte)
	onStatus func(ConnStatus)

	mu       sync.Mutex
	ws       *websocket.Conn
	status   ConnStatus
	attempts int
}

func newConn(name, url string, backoff Backoff, log *zap.Logger, onFrame func([]byte), onStatus func(ConnStatus)) *conn {
	return &conn{
		name:     name,
		url:      url,
		backoff:  backoff.withDefaults(),
		log:      log.With(zap.String("channel", name)),
		onFrame:  onFrame,
		onStatus: onStatus,
		status:   StatusDisconnected,
	}
}

// Run drives the connect/read/reconnect loop until ctx ends. Attempts are
// unbounded; only the per-attempt delay is capped.
func (c *conn) Run(ctx context.Context) {
	// One watcher for the whole run. It closes whichever socket is live when
	// the context ends, unblocking the read; reconnect cycles must not stack
	// up goroutines.
	go func() {
		<-ctx.Done()
		c.closeCurrent()
	}()

	for {
		c.setStatus(StatusConnecting)

		ws, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
		if err != nil {
			c.log.Warn("dial failed", zap.Error(err), zap.Int("attempt", c.attempt()))
			c.setStatus(StatusDisconnected)
			if !c.wait(ctx) {
				return
			}
			continue
		}

		c.mu.Lock()
		c.ws = ws
		c.attempts = 0
		c.mu.Unlock()
		// The watcher may have fired before ws was stored.
		if ctx.Err() != nil {
			ws.Close()
			return
		}
		c.setStatus(StatusConnected)
		c.log.Info("connected")

		c.readLoop(ws)

		c.mu.Lock()
		c.ws = nil
		c.mu.Unlock()
		c.setStatus(StatusDisconnected)

		select {
		case <-ctx.Done():
			return
		default:
		}
		if !c.wait(ctx) {
			return
		}
	}
}

func (c *conn) readLoop(ws *websocket.Conn) {
	defer ws.Close()
	for {
		_, frame, err := ws.ReadMessage()
		if err != nil {
			c.log.Warn("read error", zap.Error(err))
			return
		}
		c.onFrame(frame)
	}
}

// closeCurrent closes the live socket, if any.
func (c *conn) closeCurrent() {
	c.mu.Lock()
	ws := c.ws
	c.mu.Unlock()
	if ws != nil {
		ws.Close()
	}
}

// wait sleeps out the backoff delay for the current attempt. Returns false
// when the context ended first.
func (c *conn) wait(ctx context.Context) bool {
	c.mu.Lock()
	delay := c.backoff.Delay(c.attempts)
	c.attempts++
	c.mu.Unlock()

	c.setStatus(StatusReconnecting)
	c.log.Info("reconnecting", zap.Duration("delay", delay))

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Send writes v as JSON. Fails fast with ErrNotConnected while the
// connection is anything but open; nothing is queued.
func (c *conn) Send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ws == nil || c.status != StatusConnected {
		return ErrNotConnected
	}
	return c.ws.WriteJSON(v)
}

// Status returns the connection's current lifecycle state.
func (c *conn) Status() ConnStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *conn) attempt() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

func (c *conn) setStatus(s ConnStatus) {
	c.mu.Lock()
	changed := c.status != s
	c.status = s
	c.mu.Unlock()
	if changed && c.onStatus != nil {
		c.onStatus(s)
	}
}
