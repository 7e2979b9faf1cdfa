package http

import "github.com/gin-gonic/gin"

// RegisterRoutes maps the read-only week endpoints.
func RegisterRoutes(rg *gin.RouterGroup, h *handler) {
	rg.GET("/week", h.GetWeek)
	rg.GET("/week.ics", h.ExportICS)
	rg.GET("/week/days/:day", h.GetDay)
}
