package channel

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Names of the two connections, used in status callbacks and metrics.
const (
	ReloadChannel  = "reload"
	MessageChannel = "message"
)

// Config locates the backend and tunes reconnection.
type Config struct {
	ReloadURL  string
	MessageURL string
	Backoff    Backoff
}

// Handlers are the client's upward callbacks. They are invoked from the
// connection read goroutines; consumers funnel them onto their own loop.
type Handlers struct {
	// OnReload fires when a reload should apply, after deferral rules.
	OnReload func()
	// OnResponse fires for every instruction status frame, including the
	// synthetic error produced by a failed-fast send.
	OnResponse func(Response)
	// OnStatus fires on connection state changes.
	OnStatus func(channel string, status ConnStatus)
}

// Client owns the reload and message connections plus the cross-connection
// bookkeeping: the busy flag, the deferred-reload rule, and pending batches.
type Client struct {
	log      *zap.Logger
	handlers Handlers

	reload  *conn
	message *conn
	pending *PendingBatches

	mu             sync.Mutex
	processing     bool
	deferredReload bool
}

// NewClient builds a client. Run must be called to open the connections.
func NewClient(cfg Config, handlers Handlers, log *zap.Logger) *Client {
	c := &Client{
		log:      log,
		handlers: handlers,
		pending:  NewPendingBatches(),
	}
	c.reload = newConn(ReloadChannel, cfg.ReloadURL, cfg.Backoff, log,
		c.handleReloadFrame, c.statusFunc(ReloadChannel))
	c.message = newConn(MessageChannel, cfg.MessageURL, cfg.Backoff, log,
		c.handleMessageFrame, c.statusFunc(MessageChannel))
	return c
}

// Run opens both connections and blocks until ctx ends.
func (c *Client) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); c.reload.Run(ctx) }()
	go func() { defer wg.Done(); c.message.Run(ctx) }()
	wg.Wait()
}

// Send transmits an instruction envelope. While the message connection is
// not open it fails fast: the caller gets the error and a synthetic error
// response carrying the original request id flows through OnResponse, so the
// UI settles the same way a backend rejection would.
func (c *Client) Send(inst Instruction) error {
	if err := c.message.Send(inst); err != nil {
		c.log.Warn("send while disconnected", zap.String("id", inst.ID))
		c.emitResponse(Response{
			ID:     inst.ID,
			Status: StatusError,
			Error:  "message channel not connected",
		})
		return err
	}
	return nil
}

// RegisterBatch installs a resolver for a batch number before its
// instructions are sent.
func (c *Client) RegisterBatch(batchNumber int, resolve BatchResolver) {
	c.pending.Register(batchNumber, resolve)
}

// PendingBatchCount reports unresolved batch resolvers.
func (c *Client) PendingBatchCount() int {
	return c.pending.Len()
}

// Processing reports whether an instruction is currently in flight.
func (c *Client) Processing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processing
}

// Status returns the lifecycle state of one connection by name.
func (c *Client) Status(channel string) ConnStatus {
	if channel == ReloadChannel {
		return c.reload.Status()
	}
	return c.message.Status()
}

// handleReloadFrame applies or defers a server-pushed reload. A reload
// arriving while an instruction is in flight waits for its completion;
// otherwise the two channels give no ordering and the reload could observe a
// half-applied edit.
func (c *Client) handleReloadFrame(frame []byte) {
	var msg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(frame, &msg); err != nil {
		c.log.Warn("malformed reload frame dropped", zap.Error(err))
		return
	}
	if msg.Type != TypeReload {
		return
	}

	c.mu.Lock()
	if c.processing {
		c.deferredReload = true
		c.mu.Unlock()
		c.log.Debug("reload deferred until instruction completes")
		return
	}
	c.mu.Unlock()
	c.emitReload()
}

// handleMessageFrame routes status frames and batch acknowledgments.
func (c *Client) handleMessageFrame(frame []byte) {
	var probe struct {
		Type   string `json:"type"`
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(frame, &probe); err != nil {
		c.log.Warn("malformed message frame dropped", zap.Error(err))
		return
	}

	if probe.Type == TypeBatchComplete {
		var ack BatchComplete
		if err := json.Unmarshal(frame, &ack); err != nil {
			c.log.Warn("malformed batch ack dropped", zap.Error(err))
			return
		}
		if !c.pending.Resolve(ack) {
			c.log.Warn("unmatched batch ack dropped", zap.Int("batch", ack.BatchNumber))
		}
		return
	}

	var resp Response
	if err := json.Unmarshal(frame, &resp); err != nil {
		c.log.Warn("malformed response frame dropped", zap.Error(err))
		return
	}

	switch resp.Status {
	case StatusReceived:
		c.mu.Lock()
		c.processing = true
		c.mu.Unlock()
	case StatusComplete, StatusError:
		c.mu.Lock()
		c.processing = false
		deferred := c.deferredReload
		c.deferredReload = false
		c.mu.Unlock()
		c.emitResponse(resp)
		// The held reload applies only after the instruction settles.
		if deferred {
			c.emitReload()
		}
		return
	default:
		c.log.Warn("unknown response status dropped", zap.String("status", resp.Status))
		return
	}
	c.emitResponse(resp)
}

func (c *Client) emitReload() {
	if c.handlers.OnReload != nil {
		c.handlers.OnReload()
	}
}

func (c *Client) emitResponse(resp Response) {
	if c.handlers.OnResponse != nil {
		c.handlers.OnResponse(resp)
	}
}

func (c *Client) statusFunc(channel string) func(ConnStatus) {
	return func(s ConnStatus) {
		if c.handlers.OnStatus != nil {
			c.handlers.OnStatus(channel, s)
		}
	}
}
