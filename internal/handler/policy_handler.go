package handler

import (
	"net/http"

	"github.com/Jvictorio09/fluentory-booking/internal/dto"
	"github.com/Jvictorio09/fluentory-booking/internal/models"
	"github.com/Jvictorio09/fluentory-booking/internal/service"
	"github.com/labstack/echo/v4"
)

type PolicyHandler struct {
	svc service.PolicyService
}

func NewPolicyHandler(svc service.PolicyService) *PolicyHandler {
	return &PolicyHandler{svc: svc}
}

func (h *PolicyHandler) RegisterRoutes(g *echo.Group) {
	g.PUT("/hosts/:hostID/policy", h.Upsert)
	g.GET("/hosts/:hostID/policy/effective", h.GetEffective)
}

func (h *PolicyHandler) Upsert(c echo.Context) error {
	var req dto.UpsertPolicyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	policy := &models.BookingPolicy{
		HostID:                   c.Param("hostID"),
		CourseID:                 req.CourseID,
		RequiresApprovalGroup:    req.RequiresApprovalGroup,
		RequiresApprovalOneOnOne: req.RequiresApprovalOneOnOne,
		MinNoticeHours:           req.MinNoticeHours,
		CancelWindowHours:        req.CancelWindowHours,
		BufferBeforeMinutes:      req.BufferBeforeMinutes,
		BufferAfterMinutes:       req.BufferAfterMinutes,
		MaxBookingsPerDay:        req.MaxBookingsPerDay,
		OfferWindowHours:         req.OfferWindowHours,
		HostBypassesCancelWindow: true,
	}
	if req.HostBypassesCancelWindow != nil {
		policy.HostBypassesCancelWindow = *req.HostBypassesCancelWindow
	}

	if err := h.svc.UpsertPolicy(c.Request().Context(), policy); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToPolicyResponse(policy))
}

// GetEffective resolves the policy as the booking flow would see it, with
// course overrides and engine defaults applied.
func (h *PolicyHandler) GetEffective(c echo.Context) error {
	policy, err := h.svc.EffectivePolicy(c.Request().Context(), c.Param("hostID"), c.QueryParam("course_id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToPolicyResponse(policy))
}
