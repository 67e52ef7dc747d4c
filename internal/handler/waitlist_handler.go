package handler

import (
	"net/http"

	"github.com/Jvictorio09/fluentory-booking/internal/dto"
	"github.com/Jvictorio09/fluentory-booking/internal/service"
	"github.com/labstack/echo/v4"
)

type WaitlistHandler struct {
	svc service.WaitlistService
}

func NewWaitlistHandler(svc service.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{svc: svc}
}

func (h *WaitlistHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/sessions/:id/waitlist", h.ListBySession)
	g.POST("/waitlist/:id/accept", h.AcceptOffer)
	g.POST("/waitlist/sweep", h.Sweep)
}

func (h *WaitlistHandler) ListBySession(c echo.Context) error {
	sessionID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	entries, err := h.svc.ListBySession(c.Request().Context(), sessionID)
	if err != nil {
		return toHTTPError(err)
	}
	resp := make([]dto.WaitlistResponse, len(entries))
	for i := range entries {
		resp[i] = dto.ToWaitlistResponse(&entries[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *WaitlistHandler) AcceptOffer(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.AcceptOfferRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.RequesterID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "requester_id is required")
	}

	booking, err := h.svc.AcceptOffer(c.Request().Context(), id, req.RequesterID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *WaitlistHandler) Sweep(c echo.Context) error {
	expired, err := h.svc.ExpireSweep(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.SweepResponse{Expired: expired})
}
