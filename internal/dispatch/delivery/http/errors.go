package http

import (
	"errors"
	"net/http"

	"weekly-scheduler/internal/week"
	pkgErrors "weekly-scheduler/pkg/errors"
)

func (h *handler) mapError(err error) error {
	switch {
	case errors.Is(err, week.ErrBusy):
		return pkgErrors.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return pkgErrors.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
