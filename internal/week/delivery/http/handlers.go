package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"weekly-scheduler/pkg/response"
)

const icsContentType = "text/calendar; charset=utf-8"

// GetWeek godoc
// @Summary     Get the current week
// @Description Returns every day of the current week with its events and the open tasks.
// @Tags        Week
// @Produce     json
// @Success     200 {object} compose.WeekSummary
// @Failure     503 {object} response.Resp "Week busy"
// @Failure     500 {object} response.Resp "Internal Server Error"
// @Router      /api/v1/week [GET]
func (h *handler) GetWeek(c *gin.Context) {
	ctx := c.Request.Context()

	w, err := h.uc.GetWeek(ctx)
	if err != nil {
		h.l.Errorf(ctx, "uc.GetWeek: %v", err)
		response.Error(c, h.mapError(err), nil)
		return
	}

	response.OK(c, h.newWeekResp(w))
}

// GetDay godoc
// @Summary     Get one day
// @Description Returns the events of one day of the current week.
// @Tags        Week
// @Produce     json
// @Param       day path string true "Day name, e.g. monday"
// @Success     200 {object} dayResp
// @Failure     400 {object} response.Resp "Unknown day"
// @Failure     500 {object} response.Resp "Internal Server Error"
// @Router      /api/v1/week/days/{day} [GET]
func (h *handler) GetDay(c *gin.Context) {
	ctx := c.Request.Context()

	day, err := h.processDayReq(c)
	if err != nil {
		response.Error(c, err, nil)
		return
	}

	d, err := h.uc.GetDay(ctx, day)
	if err != nil {
		h.l.Errorf(ctx, "uc.GetDay: %v", err)
		response.Error(c, h.mapError(err), nil)
		return
	}

	response.OK(c, h.newDayResp(d))
}

// ExportICS godoc
// @Summary     Export the week as iCalendar
// @Description Renders the current week as a text/calendar document.
// @Tags        Week
// @Produce     text/calendar
// @Success     200 {string} string "iCalendar document"
// @Failure     500 {object} response.Resp "Internal Server Error"
// @Router      /api/v1/week.ics [GET]
func (h *handler) ExportICS(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := h.uc.ExportICS(ctx)
	if err != nil {
		h.l.Errorf(ctx, "uc.ExportICS: %v", err)
		response.Error(c, h.mapError(err), nil)
		return
	}

	c.Data(http.StatusOK, icsContentType, []byte(body))
}
