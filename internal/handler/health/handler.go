package health

import (
	"net/http"

	"github.com/TomasB/geoip/pkg/geoip"
	"github.com/gin-gonic/gin"
)

// Handler manages health check endpoints
type Handler struct {
	readyFn func() error
	infoFn  func() (geoip.DatabaseInfo, bool)
}

// NewHandler creates a new health check handler. Either function may be
// nil.
func NewHandler(readyFn func() error, infoFn func() (geoip.DatabaseInfo, bool)) *Handler {
	return &Handler{readyFn: readyFn, infoFn: infoFn}
}

// Health is the liveness probe endpoint
// GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready is the readiness probe endpoint. It reports the loaded database
// when one is available.
// GET /ready
func (h *Handler) Ready(c *gin.Context) {
	if h.readyFn != nil {
		if err := h.readyFn(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
	}

	resp := gin.H{"status": "ready"}
	if h.infoFn != nil {
		if info, ok := h.infoFn(); ok {
			resp["database"] = info
		}
	}
	c.JSON(http.StatusOK, resp)
}
