package http

import (
	"github.com/gin-gonic/gin"

	"weekly-scheduler/pkg/response"
)

// Dispatch godoc
// @Summary     Run a command in a conversation
// @Description Applies one structured command. Missing fields start a clarification, conflicts return a recommendation that a later confirm command commits.
// @Tags        Conversations
// @Accept      json
// @Produce     json
// @Param       id   path string     true "Conversation ID"
// @Param       body body commandReq true "Command"
// @Success     200 {object} compose.Result
// @Failure     400 {object} response.Resp "Bad Request"
// @Failure     503 {object} response.Resp "Week busy, retry"
// @Failure     500 {object} response.Resp "Internal Server Error"
// @Router      /api/v1/conversations/{id}/commands [POST]
func (h *handler) Dispatch(c *gin.Context) {
	ctx := c.Request.Context()

	req, err := h.processCommandReq(c)
	if err != nil {
		response.Error(c, err, nil)
		return
	}
	in, err := req.toInput()
	if err != nil {
		response.Error(c, err, nil)
		return
	}

	out, err := h.uc.Dispatch(ctx, in)
	if err != nil {
		h.l.Errorf(ctx, "uc.Dispatch: %v", err)
		response.Error(c, h.mapError(err), nil)
		return
	}

	response.OK(c, out)
}

// Reset godoc
// @Summary     Reset a conversation
// @Description Drops any pending clarification or recommendation.
// @Tags        Conversations
// @Produce     json
// @Param       id path string true "Conversation ID"
// @Success     200 {object} response.Resp "OK"
// @Router      /api/v1/conversations/{id} [DELETE]
func (h *handler) Reset(c *gin.Context) {
	h.uc.Reset(c.Request.Context(), c.Param("id"))
	response.OK(c, nil)
}
