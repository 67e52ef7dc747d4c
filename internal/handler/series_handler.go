package handler

import (
	"net/http"
	"time"

	"github.com/Jvictorio09/fluentory-booking/internal/dto"
	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"github.com/Jvictorio09/fluentory-booking/internal/service"
	"github.com/labstack/echo/v4"
)

type SeriesHandler struct {
	svc service.SeriesService
}

func NewSeriesHandler(svc service.SeriesService) *SeriesHandler {
	return &SeriesHandler{svc: svc}
}

func (h *SeriesHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/series", h.CreateSeries)
	g.GET("/series/:id", h.GetSeries)
	g.POST("/series/:id/cancel", h.CancelSeries)
}

func (h *SeriesHandler) CreateSeries(c echo.Context) error {
	var req dto.CreateSeriesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.RequesterID == "" || req.HostID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "requester_id and host_id are required")
	}

	var until *time.Time
	if req.Until != nil {
		u := req.Until.UTC()
		until = &u
	}
	series, err := h.svc.CreateSeries(c.Request().Context(), service.CreateSeriesRequest{
		RequesterID:      req.RequesterID,
		HostID:           req.HostID,
		CourseID:         req.CourseID,
		Kind:             models.BookingKind(req.Kind),
		Frequency:        models.SeriesFrequency(req.Frequency),
		Interval:         req.Interval,
		DaysOfWeek:       req.DaysOfWeek,
		Count:            req.Count,
		Until:            until,
		AnchorStartAtUTC: req.AnchorStartAtUTC.UTC(),
		DurationMinutes:  req.DurationMinutes,
		Note:             req.Note,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToSeriesResponse(series))
}

func (h *SeriesHandler) GetSeries(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	series, err := h.svc.GetSeries(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToSeriesResponse(series))
}

func (h *SeriesHandler) CancelSeries(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CancelSeriesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ActorID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "actor_id is required")
	}

	series, err := h.svc.CancelSeries(c.Request().Context(), id, req.ActorID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToSeriesResponse(series))
}
