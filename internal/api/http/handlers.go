package http

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thetronjohnson/layrr/internal/images"
	"github.com/thetronjohnson/layrr/internal/infrastructure/monitoring"
	"github.com/thetronjohnson/layrr/internal/ws"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	registry *ws.Registry
	store    *images.Store
	metrics  *monitoring.Metrics
	log      *zap.Logger
}

// NewHandlers creates a new handler set.
func NewHandlers(registry *ws.Registry, store *images.Store, metrics *monitoring.Metrics, log *zap.Logger) *Handlers {
	return &Handlers{
		registry: registry,
		store:    store,
		metrics:  metrics,
		log:      log,
	}
}

// Root reports basic liveness.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Layrr Edit Engine",
		"version": "0.3.0",
	})
}

// Health reports detailed health.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"sessions": h.registry.Len(),
		"bridge":   gin.H{"connected": h.registry.Current() != nil},
	})
}

type uploadRequest struct {
	Image     string `json:"image" binding:"required"`
	ImageType string `json:"imageType"`
}

// UploadImage accepts a base64 image payload and stores it.
func (h *Handlers) UploadImage(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image field required"})
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is not valid base64"})
		return
	}

	path, err := h.store.Save(data, req.ImageType)
	if err != nil {
		h.uploadError(c, "upload", err)
		return
	}

	h.recordUpload("upload", "ok")
	c.JSON(http.StatusOK, gin.H{"path": path})
}

type fetchRequest struct {
	URL string `json:"url" binding:"required"`
}

// FetchImage downloads a remote image server-side and stores it.
func (h *Handlers) FetchImage(c *gin.Context) {
	var req fetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url field required"})
		return
	}

	path, err := h.store.Fetch(c.Request.Context(), req.URL)
	if err != nil {
		h.uploadError(c, "fetch", err)
		return
	}

	h.recordUpload("fetch", "ok")
	c.JSON(http.StatusOK, gin.H{"path": path})
}

// ListImages returns the stored image files.
func (h *Handlers) ListImages(c *gin.Context) {
	files, err := h.store.List()
	if err != nil {
		h.log.Error("image listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": files})
}

// History returns the change ledger's display list and stack depths.
func (h *Handlers) History(c *gin.Context) {
	sess := h.registry.Current()
	if sess == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no bridge connected"})
		return
	}

	undo, redo := sess.Ledger().Depths()
	c.JSON(http.StatusOK, gin.H{
		"items": sess.Ledger().Items(),
		"undo":  undo,
		"redo":  redo,
	})
}

// Undo pops the newest change onto the redo stack.
func (h *Handlers) Undo(c *gin.Context) {
	sess := h.registry.Current()
	if sess == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no bridge connected"})
		return
	}

	item, ok := sess.Ledger().Undo()
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "nothing to undo"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"undone": item})
}

// Redo reapplies the newest undone change.
func (h *Handlers) Redo(c *gin.Context) {
	sess := h.registry.Current()
	if sess == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no bridge connected"})
		return
	}

	item, ok := sess.Ledger().Redo()
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "nothing to redo"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"redone": item})
}

func (h *Handlers) uploadError(c *gin.Context, source string, err error) {
	h.recordUpload(source, "rejected")
	switch {
	case errors.Is(err, images.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds size limit"})
	case errors.Is(err, images.ErrNotImage):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "payload is not an image"})
	default:
		h.log.Error("image store failed", zap.String("source", source), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "image could not be stored"})
	}
}

func (h *Handlers) recordUpload(source, status string) {
	if h.metrics != nil {
		h.metrics.UploadsTotal.WithLabelValues(source, status).Inc()
	}
}
