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

type ProductHandler struct {
	svc service.CatalogService
}

func NewProductHandler(svc service.CatalogService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

type ProductResponse struct {
	ID           uint64  `json:"id"`
	VendorUID    string  `json:"vendorUid"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Price        uint    `json:"price"`
	ImageURL     *string `json:"imageUrl,omitempty"`
	CategorySlug string  `json:"categorySlug"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int64             `json:"total"`
}

type UpsertProductRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Price        uint    `json:"price"`
	ImageURL     *string `json:"imageUrl"`
	CategorySlug string  `json:"categorySlug"`
}

func toProductResponse(p *model.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		VendorUID:    p.VendorUID,
		Title:        p.Title,
		Description:  p.Description,
		Price:        p.Price,
		ImageURL:     p.ImageURL,
		CategorySlug: p.CategorySlug,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    p.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *ProductHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req UpsertProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	p, err := h.svc.CreateProduct(c.Request().Context(), uid, req.Title, req.Description, req.Price, req.ImageURL, req.CategorySlug)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusCreated, toProductResponse(p))
}

func (h *ProductHandler) Update(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	var req UpsertProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	p, err := h.svc.UpdateProduct(c.Request().Context(), id, uid, req.Title, req.Description, req.Price, req.ImageURL, req.CategorySlug)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "product not found"))
		}
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not the vendor"))
		}
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	p, err := h.svc.GetProduct(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "product not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch product"))
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

func (h *ProductHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	products, total, err := h.svc.ListProducts(c.Request().Context(), limit, offset, c.QueryParam("category"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch products"))
	}
	resp := ProductListResponse{
		Products: make([]ProductResponse, 0, len(products)),
		Total:    total,
	}
	for i := range products {
		resp.Products = append(resp.Products, toProductResponse(&products[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	products, err := h.svc.ListVendorProducts(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch products"))
	}
	resp := make([]ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, toProductResponse(&products[i]))
	}
	return c.JSON(http.StatusOK, resp)
}
