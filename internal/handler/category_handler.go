package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/plazamkt/storefront-backend/internal/service"
)

type CategoryHandler struct {
	svc service.CatalogService
}

func NewCategoryHandler(svc service.CatalogService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

func (h *CategoryHandler) Tree(c echo.Context) error {
	tree, err := h.svc.CategoryTree(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch categories"))
	}
	return c.JSON(http.StatusOK, tree)
}
