package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Bridge WebSocket metrics
	BridgeConnections prometheus.Gauge
	BridgeFrames      *prometheus.CounterVec

	// Command channel metrics
	ChannelState      *prometheus.GaugeVec
	ChannelReconnects *prometheus.CounterVec
	MessagesTotal     *prometheus.CounterVec
	PendingBatches    prometheus.Gauge

	// Editing metrics
	GesturesTotal  *prometheus.CounterVec
	SelectionsMade *prometheus.CounterVec
	SnapshotNodes  prometheus.Gauge
	LedgerDepth    *prometheus.GaugeVec

	// Upload metrics
	UploadsTotal *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates the metrics collector. Call once per process; the
// collectors register against the default registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "layrr_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "layrr_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		BridgeConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "layrr_bridge_connections",
				Help: "Number of active bridge WebSocket connections",
			},
		),
		BridgeFrames: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "layrr_bridge_frames_total",
				Help: "Total number of bridge frames",
			},
			[]string{"direction", "type"},
		),

		ChannelState: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "layrr_channel_connected",
				Help: "Command channel connection state (1 connected, 0 not)",
			},
			[]string{"channel"},
		),
		ChannelReconnects: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "layrr_channel_reconnects_total",
				Help: "Total number of command channel reconnect attempts",
			},
			[]string{"channel"},
		),
		MessagesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "layrr_messages_total",
				Help: "Total number of instruction responses by status",
			},
			[]string{"status"},
		),
		PendingBatches: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "layrr_pending_batches",
				Help: "Number of unresolved instruction batches",
			},
		),

		GesturesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "layrr_gestures_total",
				Help: "Total number of manipulation gestures",
			},
			[]string{"kind", "outcome"},
		),
		SelectionsMade: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "layrr_selections_total",
				Help: "Total number of selections by kind",
			},
			[]string{"kind"},
		),
		SnapshotNodes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "layrr_snapshot_nodes",
				Help: "Tracked node count of the current page snapshot",
			},
		),
		LedgerDepth: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "layrr_ledger_depth",
				Help: "History ledger stack depth",
			},
			[]string{"stack"},
		),

		UploadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "layrr_uploads_total",
				Help: "Total number of image uploads",
			},
			[]string{"source", "status"},
		),

		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "layrr_uptime_seconds",
				Help: "Engine uptime in seconds",
			},
		),
	}

	go m.updateUptime()

	return m
}

func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordGesture records a completed gesture by kind and outcome.
func (m *Metrics) RecordGesture(kind, outcome string) {
	m.GesturesTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordMessage records an instruction response status.
func (m *Metrics) RecordMessage(status string) {
	m.MessagesTotal.WithLabelValues(status).Inc()
}

// SetChannelConnected flips the connection gauge for one channel.
func (m *Metrics) SetChannelConnected(channel string, connected bool) {
	v := 0.0
	if connected {
		v = 1.0
	}
	m.ChannelState.WithLabelValues(channel).Set(v)
}

// SetLedgerDepth publishes the ledger's stack depths.
func (m *Metrics) SetLedgerDepth(undo, redo int) {
	m.LedgerDepth.WithLabelValues("undo").Set(float64(undo))
	m.LedgerDepth.WithLabelValues("redo").Set(float64(redo))
}
