package lookup

import (
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/TomasB/geoip/internal/data"
	"github.com/TomasB/geoip/pkg/geoip"
	"github.com/gin-gonic/gin"
)

// LookupResponse represents the JSON response for a single lookup.
type LookupResponse struct {
	IP    string         `json:"ip,omitempty"`
	Geo   *geoip.GeoData `json:"geo,omitempty"`
	Error string         `json:"error,omitempty"`
}

// BatchRequest represents the JSON body for a batch lookup.
type BatchRequest struct {
	IPs []string `json:"ips" binding:"required,min=1,max=100"`
}

// BatchResponse represents the JSON response for a batch lookup.
type BatchResponse struct {
	Results []LookupResponse `json:"results,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// Handler manages IP geolocation lookup endpoints.
type Handler struct {
	resolver geoip.Resolver
}

// NewHandler creates a new lookup handler with the given Resolver.
func NewHandler(resolver geoip.Resolver) *Handler {
	return &Handler{resolver: resolver}
}

// Lookup handles GET /api/v1/lookup/:ip
func (h *Handler) Lookup(c *gin.Context) {
	raw := c.Param("ip")
	slog.Debug("lookup request received", "ip", raw)

	ip := net.ParseIP(raw)
	if ip == nil {
		c.JSON(http.StatusBadRequest, LookupResponse{
			Error: "invalid IP address",
		})
		return
	}

	gd, err := h.resolver.LookupGeoData(ip)
	if err != nil {
		slog.Error("geo data lookup failed", "ip", raw, "error", err)
		c.JSON(statusFor(err), LookupResponse{
			Error: "lookup failed",
		})
		return
	}

	c.JSON(http.StatusOK, LookupResponse{
		IP:  ip.String(),
		Geo: &gd,
	})
}

// Batch handles POST /api/v1/lookup
func (h *Handler) Batch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, BatchResponse{
			Error: "invalid request: " + err.Error(),
		})
		return
	}

	slog.Debug("batch lookup request received", "count", len(req.IPs))

	results := make([]LookupResponse, 0, len(req.IPs))
	for _, raw := range req.IPs {
		ip := net.ParseIP(raw)
		if ip == nil {
			results = append(results, LookupResponse{IP: raw, Error: "invalid IP address"})
			continue
		}

		gd, err := h.resolver.LookupGeoData(ip)
		if err != nil {
			slog.Error("geo data lookup failed", "ip", raw, "error", err)
			c.JSON(statusFor(err), BatchResponse{
				Error: "lookup failed",
			})
			return
		}
		results = append(results, LookupResponse{IP: ip.String(), Geo: &gd})
	}

	c.JSON(http.StatusOK, BatchResponse{Results: results})
}

func statusFor(err error) int {
	if errors.Is(err, data.ErrNotReady) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
