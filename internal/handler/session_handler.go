package handler

import (
	"net/http"

	"github.com/Jvictorio09/fluentory-booking/internal/dto"
	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"github.com/Jvictorio09/fluentory-booking/internal/service"
	"github.com/labstack/echo/v4"
)

type SessionHandler struct {
	svc service.SessionService
}

func NewSessionHandler(svc service.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func (h *SessionHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/sessions", h.CreateSession)
	g.GET("/sessions/:id", h.GetSession)
	g.GET("/sessions/:id/status", h.GetStatus)
	g.POST("/sessions/:id/close-if-full", h.CloseIfFull)
	g.POST("/sessions/:id/advance", h.Advance)
	g.PATCH("/sessions/:id/capacity", h.UpdateCapacity)
	g.GET("/hosts/:hostID/sessions", h.ListByHost)
}

func (h *SessionHandler) CreateSession(c echo.Context) error {
	var req dto.CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.HostID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "host_id is required")
	}

	session := &models.Session{
		HostID:           req.HostID,
		CourseID:         req.CourseID,
		Title:            req.Title,
		Description:      req.Description,
		StartAtUTC:       req.StartAtUTC.UTC(),
		EndAtUTC:         req.EndAtUTC.UTC(),
		TimezoneSnapshot: req.TimezoneSnapshot,
		Capacity:         req.Capacity,
		WaitlistEnabled:  req.WaitlistEnabled,
		MeetingLink:      req.MeetingLink,
		MeetingID:        req.MeetingID,
		MeetingPasscode:  req.MeetingPasscode,
	}
	if err := h.svc.CreateSession(c.Request().Context(), session); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToSessionResponse(session))
}

func (h *SessionHandler) GetSession(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	session, err := h.svc.GetSession(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

func (h *SessionHandler) GetStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	view, err := h.svc.Status(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToSessionStatusResponse(view))
}

func (h *SessionHandler) CloseIfFull(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	session, err := h.svc.CloseIfFull(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

func (h *SessionHandler) Advance(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.AdvanceSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	session, err := h.svc.AdvanceStatus(c.Request().Context(), id, models.SessionStatus(req.Status))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

func (h *SessionHandler) UpdateCapacity(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateCapacityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	session, err := h.svc.UpdateCapacity(c.Request().Context(), id, req.Capacity)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

func (h *SessionHandler) ListByHost(c echo.Context) error {
	sessions, err := h.svc.ListByHost(c.Request().Context(), c.Param("hostID"))
	if err != nil {
		return toHTTPError(err)
	}
	resp := make([]dto.SessionResponse, len(sessions))
	for i := range sessions {
		resp[i] = dto.ToSessionResponse(&sessions[i])
	}
	return c.JSON(http.StatusOK, resp)
}
