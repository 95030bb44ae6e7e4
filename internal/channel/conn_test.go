package channel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// dropServer accepts websocket connections and closes them immediately,
// pushing the client through its reconnect path on every cycle.
func dropServer(t *testing.T, connects *atomic.Int32) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		connects.Add(1)
		ws.Close()
	}))
}

func waitForConnects(t *testing.T, connects *atomic.Int32, n int32) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for connects.Load() < n {
		select {
		case <-deadline:
			t.Fatalf("saw %d connects, want %d", connects.Load(), n)
		case <-time.After(2 * time.Millisecond):
		}
	}
}

func TestRunReconnectCyclesDoNotAccumulateGoroutines(t *testing.T) {
	var connects atomic.Int32
	srv := dropServer(t, &connects)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	backoff := Backoff{Base: time.Millisecond, Cap: time.Millisecond, Jitter: time.Millisecond}
	c := newConn("test", url, backoff, zap.NewNop(), func([]byte) {}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	waitForConnects(t, &connects, 5)
	time.Sleep(50 * time.Millisecond)
	before := runtime.NumGoroutine()

	waitForConnects(t, &connects, 30)
	time.Sleep(50 * time.Millisecond)
	after := runtime.NumGoroutine()
	assert.LessOrEqual(t, after, before+5, "reconnect cycles must not stack goroutines")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on context cancel")
	}
}
