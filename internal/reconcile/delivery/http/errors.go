package http

import (
	"errors"
	"net/http"

	"weekly-scheduler/internal/reconcile"
	"weekly-scheduler/internal/week"
	pkgErrors "weekly-scheduler/pkg/errors"
)

func (h *handler) mapError(err error) error {
	var se *reconcile.SyncError
	switch {
	case errors.Is(err, reconcile.ErrInProgress):
		return pkgErrors.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, week.ErrBusy):
		return pkgErrors.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &se):
		return pkgErrors.NewHTTPError(http.StatusBadGateway, se.Error())
	default:
		return pkgErrors.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
