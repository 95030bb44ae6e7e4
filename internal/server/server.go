package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	api "github.com/thetronjohnson/layrr/internal/api/http"
	"github.com/thetronjohnson/layrr/internal/api/middleware"
	"github.com/thetronjohnson/layrr/internal/channel"
	"github.com/thetronjohnson/layrr/internal/gesture"
	"github.com/thetronjohnson/layrr/internal/images"
	"github.com/thetronjohnson/layrr/internal/infrastructure/config"
	"github.com/thetronjohnson/layrr/internal/infrastructure/logging"
	"github.com/thetronjohnson/layrr/internal/infrastructure/monitoring"
	"github.com/thetronjohnson/layrr/internal/selection"
	"github.com/thetronjohnson/layrr/internal/session"
	"github.com/thetronjohnson/layrr/internal/ws"
)

// Server wraps the HTTP router and its dependencies.
type Server struct {
	router   *gin.Engine
	log      *logging.Logger
	registry *ws.Registry
}

// NewServer assembles the engine: the bridge WebSocket endpoint, the REST
// surface, metrics, and middleware.
func NewServer(cfg *config.Config, log *logging.Logger) *Server {
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := monitoring.NewMetrics()
	registry := ws.NewRegistry()
	store := images.NewStore(cfg.Uploads.Dir, cfg.Uploads.MaxBytes, log.Logger)

	sessionCfg := session.Config{
		Selection: selection.Config{
			ClickTravel:   cfg.Selection.ClickTravel,
			ClickDuration: cfg.Selection.ClickDuration,
			MinHitSize:    cfg.Selection.MinHitSize,
			MaxHitDepth:   cfg.Selection.MaxHitDepth,
		},
		Gesture: gesture.Config{
			ReorderThreshold:  cfg.Gesture.ReorderThreshold,
			TieBreakTolerance: cfg.Gesture.TieBreakTolerance,
		},
	}
	channelCfg := channel.Config{
		ReloadURL:  cfg.Backend.ReloadURL,
		MessageURL: cfg.Backend.MessageURL,
		Backoff: channel.Backoff{
			Base:   cfg.Backend.BackoffBase,
			Cap:    cfg.Backend.BackoffCap,
			Jitter: cfg.Backend.Jitter,
		},
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := api.NewHandlers(registry, store, metrics, log.Logger)
	bridge := ws.NewHandler(sessionCfg, channelCfg, registry, metrics, log.Logger)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/images", handlers.UploadImage)
	router.POST("/images/fetch", handlers.FetchImage)
	router.GET("/images", handlers.ListImages)

	router.GET("/history", handlers.History)
	router.POST("/history/undo", handlers.Undo)
	router.POST("/history/redo", handlers.Redo)

	router.GET("/bridge", bridge.HandleConnection)

	return &Server{
		router:   router,
		log:      log,
		registry: registry,
	}
}

// Run starts the server on addr and blocks.
func (s *Server) Run(addr string) error {
	s.log.Info("edit engine listening", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close flushes buffered log entries.
func (s *Server) Close() error {
	return s.log.Sync()
}
