package http

import "github.com/gin-gonic/gin"

// RegisterRoutes maps the conversation endpoints.
func RegisterRoutes(rg *gin.RouterGroup, h *handler) {
	conversations := rg.Group("/conversations")
	{
		conversations.POST("/:id/commands", h.Dispatch)
		conversations.DELETE("/:id", h.Reset)
	}
}
