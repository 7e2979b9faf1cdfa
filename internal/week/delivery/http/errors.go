package http

import (
	"errors"
	"net/http"

	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/week"
	pkgErrors "weekly-scheduler/pkg/errors"
)

// mapError translates week errors into HTTP errors.
func (h *handler) mapError(err error) error {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return pkgErrors.NewHTTPError(http.StatusBadRequest, verr.Error())
	case errors.Is(err, week.ErrBusy):
		return pkgErrors.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, week.ErrOutsideWeek):
		return pkgErrors.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return pkgErrors.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
