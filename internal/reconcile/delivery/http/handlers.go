package http

import (
	"github.com/gin-gonic/gin"

	"weekly-scheduler/pkg/response"
)

// Sync godoc
// @Summary     Run a reconciliation cycle
// @Description Pulls the external calendars, merges them into the current week, places open tasks and pushes local changes.
// @Tags        Sync
// @Produce     json
// @Success     200 {object} reconcile.Report
// @Failure     409 {object} response.Resp "A cycle is already running"
// @Failure     502 {object} response.Resp "External calendar failed"
// @Failure     503 {object} response.Resp "Week busy, retry"
// @Failure     500 {object} response.Resp "Internal Server Error"
// @Router      /api/v1/sync [POST]
func (h *handler) Sync(c *gin.Context) {
	ctx := c.Request.Context()

	rep, err := h.uc.Run(ctx)
	if err != nil {
		h.l.Warnf(ctx, "uc.Run: %v", err)
		response.Error(c, h.mapError(err), map[string]interface{}{"report": rep})
		return
	}

	response.OK(c, rep)
}
