package http

import (
	"github.com/gin-gonic/gin"

	"weekly-scheduler/internal/model"
)

// processCommandReq binds the command body and the conversation path parameter.
func (h *handler) processCommandReq(c *gin.Context) (commandReq, error) {
	var req commandReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return req, err
	}
	req.ConversationID = c.Param("id")
	if req.ConversationID == "" {
		return req, &model.ValidationError{Field: "id", Reason: "conversation id is required"}
	}
	return req, req.validate()
}
