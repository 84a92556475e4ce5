package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Healthz godoc
// @Summary Liveness and store reachability
// @Tags ops
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /api/health [get]
func (h *Handler) Healthz(c *gin.Context) {
	if h.Store != nil {
		if err := h.Store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "success": false, "message": "Store unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "success": true, "message": "Server is running"})
}

// JWKS serves the public signing keys when tokens are RS256 signed.
func (h *Handler) JWKS(c *gin.Context) {
	if h.Tokens == nil || h.Tokens.Keys() == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no public keys"})
		return
	}
	c.Header("Cache-Control", "public, max-age=300")
	c.JSON(http.StatusOK, h.Tokens.Keys().JWKS())
}
