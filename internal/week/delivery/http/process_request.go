package http

import (
	"github.com/gin-gonic/gin"

	"weekly-scheduler/internal/model"
)

// processDayReq binds the day path parameter.
func (h *handler) processDayReq(c *gin.Context) (model.Weekday, error) {
	var req dayReq
	if err := c.ShouldBindUri(&req); err != nil {
		return "", err
	}
	return req.toInput()
}
