package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/plazamkt/storefront-backend/internal/storage"
)

const maxUploadBytes = 8 << 20

type UploadHandler struct {
	uploader *storage.Uploader
}

func NewUploadHandler(uploader *storage.Uploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

type UploadResponse struct {
	URL string `json:"url"`
}

func (h *UploadHandler) Upload(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	if h.uploader == nil {
		return c.JSON(http.StatusServiceUnavailable, NewErrorResponse("unavailable", "uploads are not configured"))
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "file is required"))
	}
	if fh.Size > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, NewErrorResponse("too_large", "file exceeds 8MB"))
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "only images are accepted"))
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to read file"))
	}
	defer src.Close()

	url, err := h.uploader.Upload(c.Request().Context(), fh.Filename, contentType, src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to store file"))
	}
	return c.JSON(http.StatusCreated, UploadResponse{URL: url})
}
