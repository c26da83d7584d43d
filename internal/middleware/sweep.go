package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/plazamkt/storefront-backend/internal/service"
)

// LazyPurge runs the conversation retention sweep before chat endpoints.
// The sweep swallows its own errors, so a failing sweep never fails the
// request it piggybacks on; it just runs again on the next one.
func LazyPurge(svc service.ConversationService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			svc.PurgeExpiredClosed(c.Request().Context())
			return next(c)
		}
	}
}
