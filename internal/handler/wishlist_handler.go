package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/plazamkt/storefront-backend/internal/model"
	"github.com/plazamkt/storefront-backend/internal/service"
)

type WishlistHandler struct {
	svc service.WishlistService
}

func NewWishlistHandler(svc service.WishlistService) *WishlistHandler {
	return &WishlistHandler{svc: svc}
}

type CreateWishlistRequest struct {
	Title string `json:"title"`
}

type AddWishlistItemRequest struct {
	ProductID uint64 `json:"productId"`
}

type SharedWishlistResponse struct {
	Wishlist model.Wishlist    `json:"wishlist"`
	Products []ProductResponse `json:"products"`
}

func (h *WishlistHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req CreateWishlistRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	w, err := h.svc.Create(c.Request().Context(), uid, req.Title)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusCreated, w)
}

func (h *WishlistHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	lists, err := h.svc.ListByOwner(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch wishlists"))
	}
	return c.JSON(http.StatusOK, lists)
}

func (h *WishlistHandler) AddItem(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	wishlistID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid wishlist id"))
	}
	var req AddWishlistItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := h.svc.AddItem(c.Request().Context(), wishlistID, uid, req.ProductID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "wishlist or product not found"))
		}
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not the owner"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to add item"))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *WishlistHandler) RemoveItem(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	wishlistID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid wishlist id"))
	}
	productID, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid product id"))
	}
	if err := h.svc.RemoveItem(c.Request().Context(), wishlistID, uid, productID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "item not found"))
		}
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not the owner"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to remove item"))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *WishlistHandler) GetShared(c echo.Context) error {
	token := c.Param("token")
	w, products, err := h.svc.GetShared(c.Request().Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "wishlist not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch wishlist"))
	}
	resp := SharedWishlistResponse{
		Wishlist: *w,
		Products: make([]ProductResponse, 0, len(products)),
	}
	for i := range products {
		resp.Products = append(resp.Products, toProductResponse(&products[i]))
	}
	return c.JSON(http.StatusOK, resp)
}
