package ws

import (
	"reflect"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/thetronjohnson/layrr/internal/infrastructure/monitoring"
)

// emitter serializes session events onto the bridge socket. Writes are
// mutex-guarded; history notifications arrive off the dispatch goroutine.
type emitter struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	metrics *monitoring.Metrics
	log     *zap.Logger
}

func newEmitter(conn *websocket.Conn, metrics *monitoring.Metrics, log *zap.Logger) *emitter {
	return &emitter{conn: conn, metrics: metrics, log: log}
}

// Emit implements session.Emitter.
func (e *emitter) Emit(v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		e.log.Error("event marshal failed", zap.Error(err))
		return
	}

	e.mu.Lock()
	err = e.conn.WriteMessage(websocket.TextMessage, data)
	e.mu.Unlock()
	if err != nil {
		e.log.Debug("bridge write failed", zap.Error(err))
		return
	}
	if e.metrics != nil {
		e.metrics.BridgeFrames.WithLabelValues("out", reflect.TypeOf(v).Name()).Inc()
	}
}
