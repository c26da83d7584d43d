package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/plazamkt/storefront-backend/internal/model"
	"github.com/plazamkt/storefront-backend/internal/service"
)

type ClaimHandler struct {
	svc service.ClaimService
}

func NewClaimHandler(svc service.ClaimService) *ClaimHandler {
	return &ClaimHandler{svc: svc}
}

type FileClaimRequest struct {
	Reason string `json:"reason"`
}

type ResolveClaimRequest struct {
	Approve bool `json:"approve"`
}

type ClaimResponse struct {
	ID          uint64            `json:"id"`
	OrderID     uint64            `json:"orderId"`
	ClaimantUID string            `json:"claimantUid"`
	Reason      string            `json:"reason"`
	Status      model.ClaimStatus `json:"status"`
	ResolvedAt  *string           `json:"resolvedAt,omitempty"`
	CreatedAt   string            `json:"createdAt"`
}

func toClaimResponse(cl *model.ProtectionClaim) ClaimResponse {
	return ClaimResponse{
		ID:          cl.ID,
		OrderID:     cl.OrderID,
		ClaimantUID: cl.ClaimantUID,
		Reason:      cl.Reason,
		Status:      cl.Status,
		ResolvedAt:  formatTimePtr(cl.ResolvedAt),
		CreatedAt:   cl.CreatedAt.Format(time.RFC3339),
	}
}

func (h *ClaimHandler) File(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid order id"))
	}
	var req FileClaimRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	cl, err := h.svc.File(c.Request().Context(), orderID, uid, req.Reason)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "order not found"))
		}
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not the buyer"))
		}
		if errors.Is(err, service.ErrAlreadyClaimed) {
			// The existing claim is the useful answer here.
			return c.JSON(http.StatusOK, toClaimResponse(cl))
		}
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusCreated, toClaimResponse(cl))
}

func (h *ClaimHandler) ListOpen(c echo.Context) error {
	claims, err := h.svc.ListOpen(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch claims"))
	}
	resp := make([]ClaimResponse, 0, len(claims))
	for i := range claims {
		resp = append(resp, toClaimResponse(&claims[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ClaimHandler) Resolve(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	claimID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid claim id"))
	}
	var req ResolveClaimRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	cl, err := h.svc.Resolve(c.Request().Context(), claimID, uid, req.Approve)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "claim not found"))
		}
		if errors.Is(err, service.ErrAlreadyResolved) {
			return c.JSON(http.StatusConflict, NewErrorResponse("already_resolved", "claim already resolved"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to resolve claim"))
	}
	return c.JSON(http.StatusOK, toClaimResponse(cl))
}
