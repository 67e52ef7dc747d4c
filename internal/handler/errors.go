package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Jvictorio09/fluentory-booking/internal/service"
	"github.com/labstack/echo/v4"
)

// toHTTPError maps the service error taxonomy onto status codes. Unknown
// errors become 500s.
func toHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrBookingNotFound),
		errors.Is(err, service.ErrWindowNotFound),
		errors.Is(err, service.ErrEntryNotFound),
		errors.Is(err, service.ErrSeriesNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrInvalidCapacity),
		errors.Is(err, service.ErrInvalidWindow),
		errors.Is(err, service.ErrInvalidRule):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())

	case service.IsConflict(err),
		errors.Is(err, service.ErrCapacityLocked),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrNotPending),
		errors.Is(err, service.ErrNotConfirmed),
		errors.Is(err, service.ErrSessionNotOpen):
		return echo.NewHTTPError(http.StatusConflict, err.Error())

	case service.IsPolicyViolation(err):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, service.ErrNotStarted):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())

	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func parseID(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(v), nil
}
