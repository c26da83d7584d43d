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

type OrderHandler struct {
	svc service.OrderService
}

func NewOrderHandler(svc service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type OrderItemResponse struct {
	ProductID uint64 `json:"productId"`
	Title     string `json:"title"`
	PriceYen  int64  `json:"priceYen"`
	Quantity  int    `json:"quantity"`
}

type OrderResponse struct {
	ID               uint64              `json:"id"`
	BuyerUID         string              `json:"buyerUid"`
	VendorUID        string              `json:"vendorUid"`
	ConversationID   uint64              `json:"conversationId,omitempty"`
	Status           model.OrderStatus   `json:"status"`
	SubtotalYen      int64               `json:"subtotalYen"`
	ProtectionFeeYen int64               `json:"protectionFeeYen"`
	TotalYen         int64               `json:"totalYen"`
	ShippedAt        *string             `json:"shippedAt,omitempty"`
	DeliveredAt      *string             `json:"deliveredAt,omitempty"`
	CreatedAt        string              `json:"createdAt"`
	Items            []OrderItemResponse `json:"items"`
}

type CheckoutRequest struct {
	Protection bool `json:"protection"`
}

type CheckoutResponse struct {
	Orders []OrderResponse `json:"orders"`
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func toOrderResponse(o *model.Order) OrderResponse {
	resp := OrderResponse{
		ID:               o.ID,
		BuyerUID:         o.BuyerUID,
		VendorUID:        o.VendorUID,
		ConversationID:   o.ConversationID,
		Status:           o.Status,
		SubtotalYen:      o.SubtotalYen,
		ProtectionFeeYen: o.ProtectionFeeYen,
		TotalYen:         o.TotalYen,
		ShippedAt:        formatTimePtr(o.ShippedAt),
		DeliveredAt:      formatTimePtr(o.DeliveredAt),
		CreatedAt:        o.CreatedAt.Format(time.RFC3339),
		Items:            make([]OrderItemResponse, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID: it.ProductID,
			Title:     it.Title,
			PriceYen:  it.PriceYen,
			Quantity:  it.Quantity,
		})
	}
	return resp
}

func (h *OrderHandler) Checkout(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	orders, err := h.svc.Checkout(c.Request().Context(), uid, req.Protection)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	resp := CheckoutResponse{Orders: make([]OrderResponse, 0, len(orders))}
	for i := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(&orders[i]))
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *OrderHandler) Get(c echo.Context) error {
	return h.transition(c, func(c echo.Context, orderID uint64, uid string) (*model.Order, error) {
		return h.svc.Get(c.Request().Context(), orderID, uid)
	})
}

func (h *OrderHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	orders, err := h.svc.ListByBuyer(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch orders"))
	}
	return c.JSON(http.StatusOK, toOrderListResponse(orders))
}

func (h *OrderHandler) ListSales(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	orders, err := h.svc.ListByVendor(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch sales"))
	}
	return c.JSON(http.StatusOK, toOrderListResponse(orders))
}

func toOrderListResponse(orders []model.Order) []OrderResponse {
	resp := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}
	return resp
}

func (h *OrderHandler) transition(c echo.Context, fn func(ctx echo.Context, orderID uint64, uid string) (*model.Order, error)) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid order id"))
	}
	o, err := fn(c, orderID, uid)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "order not found"))
		}
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not allowed"))
		}
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) MarkShipped(c echo.Context) error {
	return h.transition(c, func(c echo.Context, orderID uint64, uid string) (*model.Order, error) {
		return h.svc.MarkShipped(c.Request().Context(), orderID, uid)
	})
}

func (h *OrderHandler) MarkDelivered(c echo.Context) error {
	return h.transition(c, func(c echo.Context, orderID uint64, uid string) (*model.Order, error) {
		return h.svc.MarkDelivered(c.Request().Context(), orderID, uid)
	})
}

func (h *OrderHandler) Cancel(c echo.Context) error {
	return h.transition(c, func(c echo.Context, orderID uint64, uid string) (*model.Order, error) {
		return h.svc.Cancel(c.Request().Context(), orderID, uid)
	})
}
