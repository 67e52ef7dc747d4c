package handler

import (
	"context"
	"net/http"

	"github.com/Jvictorio09/fluentory-booking/internal/dto"
	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"github.com/Jvictorio09/fluentory-booking/internal/service"
	"github.com/labstack/echo/v4"
)

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/sessions/:id/bookings", h.CreateGroupBooking)
	g.GET("/sessions/:id/bookings", h.ListSessionBookings)
	g.POST("/bookings/one-on-one", h.CreateOneOnOneBooking)
	g.GET("/bookings/:id", h.GetBooking)
	g.GET("/requesters/:requesterID/bookings", h.ListRequesterBookings)
	g.POST("/bookings/:id/approve", h.Approve)
	g.POST("/bookings/:id/decline", h.Decline)
	g.POST("/bookings/:id/cancel", h.Cancel)
	g.POST("/bookings/:id/reschedule", h.Reschedule)
	g.POST("/bookings/:id/attendance", h.MarkAttendance)
}

func (h *BookingHandler) CreateGroupBooking(c echo.Context) error {
	sessionID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateGroupBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.RequesterID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "requester_id is required")
	}

	result, err := h.svc.RequestGroupBooking(c.Request().Context(), service.GroupBookingRequest{
		SessionID:   sessionID,
		RequesterID: req.RequesterID,
		Note:        req.Note,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToGroupBookingResponse(result))
}

func (h *BookingHandler) CreateOneOnOneBooking(c echo.Context) error {
	var req dto.CreateOneOnOneBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.RequesterID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "requester_id is required")
	}
	if req.WindowID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "window_id is required")
	}

	booking, err := h.svc.RequestOneOnOneBooking(c.Request().Context(), service.OneOnOneBookingRequest{
		WindowID:    req.WindowID,
		RequesterID: req.RequesterID,
		StartAtUTC:  req.StartAtUTC.UTC(),
		EndAtUTC:    req.EndAtUTC.UTC(),
		Note:        req.Note,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	booking, err := h.svc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListSessionBookings(c echo.Context) error {
	sessionID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var status *models.BookingStatus
	if s := c.QueryParam("status"); s != "" {
		bs := models.BookingStatus(s)
		status = &bs
	}

	bookings, err := h.svc.ListBySession(c.Request().Context(), sessionID, status)
	if err != nil {
		return toHTTPError(err)
	}
	resp := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		resp[i] = dto.ToBookingResponse(&bookings[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) ListRequesterBookings(c echo.Context) error {
	bookings, err := h.svc.ListByRequester(c.Request().Context(), c.Param("requesterID"))
	if err != nil {
		return toHTTPError(err)
	}
	resp := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		resp[i] = dto.ToBookingResponse(&bookings[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) Approve(c echo.Context) error {
	return h.decide(c, h.svc.Approve)
}

func (h *BookingHandler) Decline(c echo.Context) error {
	return h.decide(c, h.svc.Decline)
}

func (h *BookingHandler) decide(c echo.Context, fn func(ctx context.Context, id uint, hostID, note string) (*models.Booking, error)) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.DecisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.HostID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "host_id is required")
	}

	booking, err := fn(c.Request().Context(), id, req.HostID, req.Note)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) Cancel(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CancelBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ActorID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "actor_id is required")
	}

	booking, err := h.svc.Cancel(c.Request().Context(), id, req.ActorID, req.Reason)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) Reschedule(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.RescheduleBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ActorID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "actor_id is required")
	}

	booking, err := h.svc.Reschedule(c.Request().Context(), id, service.RescheduleRequest{
		NewSessionID: req.NewSessionID,
		NewWindowID:  req.NewWindowID,
		StartAtUTC:   req.StartAtUTC.UTC(),
		EndAtUTC:     req.EndAtUTC.UTC(),
		ActorID:      req.ActorID,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) MarkAttendance(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.AttendanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.HostID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "host_id is required")
	}

	booking, err := h.svc.MarkAttendance(c.Request().Context(), id, req.HostID, req.Attended)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}
