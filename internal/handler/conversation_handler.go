package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/plazamkt/storefront-backend/internal/closure"
	"github.com/plazamkt/storefront-backend/internal/service"
)

type ConversationHandler struct {
	svc service.ConversationService
}

func NewConversationHandler(svc service.ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

type ConversationResponse struct {
	ConversationID          uint64  `json:"conversationId"`
	ProductID               *uint64 `json:"productId,omitempty"`
	CustomerUID             string  `json:"customerUid"`
	VendorUID               string  `json:"vendorUid"`
	IsSupport               bool    `json:"isSupport"`
	IsClosed                bool    `json:"isClosed"`
	CanSend                 bool    `json:"canSend"`
	ClosedAt                *string `json:"closedAt,omitempty"`
	ClosedReason            string  `json:"closedReason,omitempty"`
	ParticipantVisibleUntil *string `json:"participantVisibleUntil,omitempty"`
	AdminRetentionUntil     *string `json:"adminRetentionUntil,omitempty"`
	ParticipantNotice       string  `json:"participantNotice,omitempty"`
}

type MessageRequest struct {
	Body string `json:"body"`
}

type CloseConversationRequest struct {
	Reason string `json:"reason"`
}

func viewerFrom(c echo.Context) closure.Viewer {
	uid, _ := c.Get("uid").(string)
	isAdmin, _ := c.Get("isAdmin").(bool)
	return closure.Viewer{UID: uid, IsAdmin: isAdmin}
}

func toConversationResponse(v service.ConversationView) ConversationResponse {
	cv := v.Conversation
	resp := ConversationResponse{
		ConversationID:          cv.ID,
		ProductID:               cv.ProductID,
		CustomerUID:             cv.CustomerUID,
		VendorUID:               cv.VendorUID,
		IsSupport:               cv.IsSupport(),
		IsClosed:                v.State.IsClosed,
		CanSend:                 v.State.CanSend,
		ClosedAt:                formatTimePtr(cv.ClosedAt),
		ClosedReason:            cv.ClosedReason,
		ParticipantVisibleUntil: formatTimePtr(v.State.ParticipantVisibleUntil),
		AdminRetentionUntil:     formatTimePtr(v.State.AdminRetentionUntil),
		ParticipantNotice:       v.State.ParticipantNotice,
	}
	return resp
}

func (h *ConversationHandler) OpenForProduct(c echo.Context) error {
	viewer := viewerFrom(c)
	if viewer.UID == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid product id"))
	}
	cv, err := h.svc.OpenForProduct(c.Request().Context(), productID, viewer.UID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "product not found"))
		}
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusOK, toConversationResponse(service.ConversationView{
		Conversation: *cv,
		State:        closure.State{CanView: true, CanSend: true},
	}))
}

func (h *ConversationHandler) OpenSupport(c echo.Context) error {
	viewer := viewerFrom(c)
	if viewer.UID == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	cv, err := h.svc.OpenSupport(c.Request().Context(), viewer.UID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to open support conversation"))
	}
	return c.JSON(http.StatusOK, toConversationResponse(service.ConversationView{
		Conversation: *cv,
		State:        closure.State{CanView: true, CanSend: true},
	}))
}

func (h *ConversationHandler) List(c echo.Context) error {
	viewer := viewerFrom(c)
	if viewer.UID == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	views, err := h.svc.ListByUser(c.Request().Context(), viewer)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch conversations"))
	}
	resp := make([]ConversationResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, toConversationResponse(v))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ConversationHandler) Get(c echo.Context) error {
	viewer := viewerFrom(c)
	if viewer.UID == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	view, err := h.svc.Get(c.Request().Context(), convID, viewer)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "conversation not found"))
		}
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not a participant"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch conversation"))
	}
	return c.JSON(http.StatusOK, toConversationResponse(*view))
}

func (h *ConversationHandler) ListMessages(c echo.Context) error {
	viewer := viewerFrom(c)
	if viewer.UID == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	msgs, err := h.svc.ListMessages(c.Request().Context(), convID, viewer)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "conversation not found"))
		}
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not a participant"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch messages"))
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *ConversationHandler) CreateMessage(c echo.Context) error {
	viewer := viewerFrom(c)
	if viewer.UID == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	var req MessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := h.svc.CreateMessage(c.Request().Context(), convID, viewer, req.Body); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "conversation not found"))
		}
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not a participant"))
		}
		if errors.Is(err, service.ErrConversationClosed) {
			return c.JSON(http.StatusForbidden, NewErrorResponse("conversation_closed", "conversation is closed and read-only"))
		}
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusCreated, map[string]string{"status": "ok"})
}

func (h *ConversationHandler) Close(c echo.Context) error {
	viewer := viewerFrom(c)
	if viewer.UID == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	var req CloseConversationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	cv, err := h.svc.Close(c.Request().Context(), convID, viewer.UID, req.Reason, viewer.IsAdmin)
	if err != nil && !errors.Is(err, service.ErrAlreadyClosed) {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "conversation not found"))
		}
		if errors.Is(err, service.ErrSupportNotClosable) {
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "support conversations cannot be closed"))
		}
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not allowed"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to close conversation"))
	}
	// AlreadyClosed falls through: the second closer sees the existing
	// closure stamp as a success.
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"closedAt": formatTimePtr(cv.ClosedAt),
	})
}

func (h *ConversationHandler) Clear(c echo.Context) error {
	viewer := viewerFrom(c)
	if viewer.UID == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	convID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid conversation id"))
	}
	if err := h.svc.Clear(c.Request().Context(), convID, viewer.UID, viewer.IsAdmin); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "conversation not found"))
		}
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not a participant"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to clear conversation"))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ConversationHandler) ListClosedForAdmin(c echo.Context) error {
	views, err := h.svc.ListClosedForAdmin(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch conversations"))
	}
	resp := make([]ConversationResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, toConversationResponse(v))
	}
	return c.JSON(http.StatusOK, resp)
}
