package http

import "github.com/gin-gonic/gin"

// RegisterRoutes maps the sync endpoint.
func RegisterRoutes(rg *gin.RouterGroup, h *handler) {
	rg.POST("/sync", h.Sync)
}
