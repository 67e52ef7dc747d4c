package handler

import (
	"net/http"
	"time"

	"github.com/Jvictorio09/fluentory-booking/internal/dto"
	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"github.com/Jvictorio09/fluentory-booking/internal/service"
	"github.com/labstack/echo/v4"
)

type AvailabilityHandler struct {
	svc service.AvailabilityService
}

func NewAvailabilityHandler(svc service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

func (h *AvailabilityHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/hosts/:hostID/windows/recurring", h.CreateRecurring)
	g.POST("/hosts/:hostID/windows/one-off", h.CreateOneOff)
	g.GET("/hosts/:hostID/windows", h.ListWindows)
	g.GET("/hosts/:hostID/occurrences", h.ListHostOccurrences)
	g.GET("/windows/:id/occurrences", h.ListWindowOccurrences)
	g.POST("/windows/:id/block", h.Block)
	g.POST("/windows/:id/unblock", h.Unblock)
}

func (h *AvailabilityHandler) CreateRecurring(c echo.Context) error {
	var req dto.CreateRecurringWindowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	window := &models.AvailabilityWindow{
		HostID:           c.Param("hostID"),
		CourseID:         req.CourseID,
		DayOfWeek:        req.DayOfWeek,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		TimezoneSnapshot: req.TimezoneSnapshot,
		ValidFrom:        req.ValidFrom,
		ValidUntil:       req.ValidUntil,
	}
	if err := h.svc.CreateRecurringWindow(c.Request().Context(), window); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToWindowResponse(window))
}

func (h *AvailabilityHandler) CreateOneOff(c echo.Context) error {
	var req dto.CreateOneOffWindowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	window := &models.AvailabilityWindow{
		HostID:           c.Param("hostID"),
		CourseID:         req.CourseID,
		StartAtUTC:       req.StartAtUTC,
		EndAtUTC:         req.EndAtUTC,
		TimezoneSnapshot: req.TimezoneSnapshot,
	}
	if err := h.svc.CreateOneOffWindow(c.Request().Context(), window); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToWindowResponse(window))
}

func (h *AvailabilityHandler) ListWindows(c echo.Context) error {
	windows, err := h.svc.ListWindows(c.Request().Context(), c.Param("hostID"))
	if err != nil {
		return toHTTPError(err)
	}
	resp := make([]dto.WindowResponse, len(windows))
	for i := range windows {
		resp[i] = dto.ToWindowResponse(&windows[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AvailabilityHandler) ListHostOccurrences(c echo.Context) error {
	from, to, err := parseRange(c)
	if err != nil {
		return err
	}
	slots, err := h.svc.ResolveOccurrences(c.Request().Context(), c.Param("hostID"), from, to)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *AvailabilityHandler) ListWindowOccurrences(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	from, to, err := parseRange(c)
	if err != nil {
		return err
	}
	slots, err := h.svc.ResolveWindowOccurrences(c.Request().Context(), id, from, to)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *AvailabilityHandler) Block(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.BlockWindowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	window, err := h.svc.Block(c.Request().Context(), id, req.Reason)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToWindowResponse(window))
}

func (h *AvailabilityHandler) Unblock(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	window, err := h.svc.Unblock(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToWindowResponse(window))
}

func parseRange(c echo.Context) (time.Time, time.Time, error) {
	from, err := time.Parse(time.RFC3339, c.QueryParam("from"))
	if err != nil {
		return time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "invalid from")
	}
	to, err := time.Parse(time.RFC3339, c.QueryParam("to"))
	if err != nil {
		return time.Time{}, time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "invalid to")
	}
	return from.UTC(), to.UTC(), nil
}
