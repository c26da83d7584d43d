package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/plazamkt/storefront-backend/internal/clock"
	"github.com/plazamkt/storefront-backend/internal/closure"
	"github.com/plazamkt/storefront-backend/internal/config"
	"github.com/plazamkt/storefront-backend/internal/handler"
	appmw "github.com/plazamkt/storefront-backend/internal/middleware"
	"github.com/plazamkt/storefront-backend/internal/protection"
	"github.com/plazamkt/storefront-backend/internal/repository"
	"github.com/plazamkt/storefront-backend/internal/service"
	"github.com/plazamkt/storefront-backend/internal/storage"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Server struct {
	e *echo.Echo
}

func New(db *gorm.DB, cfg *config.Config, sha, buildTime string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			if strings.HasSuffix(u.Hostname(), "vercel.app") {
				return true, nil
			}
			return false, nil
		},
	}))

	clk := clock.System(cfg.TimeOffset)
	windows := closure.Windows{
		ParticipantGrace: time24h(cfg.ParticipantGraceDays),
		AdminRetention:   time24h(cfg.AdminRetentionDays),
	}
	fees := protection.FeeSchedule{
		RateBasisPoints: cfg.ProtectionRateBasisPoints,
		MinFeeYen:       cfg.ProtectionMinFeeYen,
		MaxFeeYen:       cfg.ProtectionMaxFeeYen,
	}

	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)
	claimRepo := repository.NewClaimRepository(db)
	convRepo := repository.NewConversationRepository(db)

	catalogSvc := service.NewCatalogService(productRepo, categoryRepo)
	cartSvc := service.NewCartService(cartRepo, productRepo, fees)
	orderSvc := service.NewOrderService(orderRepo, cartRepo, productRepo, convRepo, fees, clk)
	wishlistSvc := service.NewWishlistService(wishlistRepo, productRepo)
	claimSvc := service.NewClaimService(claimRepo, orderRepo, clk)
	convSvc := service.NewConversationService(convRepo, productRepo, windows, clk)

	productHandler := handler.NewProductHandler(catalogSvc)
	categoryHandler := handler.NewCategoryHandler(catalogSvc)
	cartHandler := handler.NewCartHandler(cartSvc)
	orderHandler := handler.NewOrderHandler(orderSvc)
	wishlistHandler := handler.NewWishlistHandler(wishlistSvc)
	claimHandler := handler.NewClaimHandler(claimSvc)
	convHandler := handler.NewConversationHandler(convSvc)

	var uploadHandler *handler.UploadHandler
	if cfg.StorageBucket != "" {
		uploader, err := storage.NewUploader(context.Background(), cfg.StorageBucket)
		if err != nil {
			log.WithError(err).Warn("storage uploader unavailable; uploads disabled")
		} else {
			uploadHandler = handler.NewUploadHandler(uploader)
		}
	}

	requireAuth := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	requireAdmin := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	if cfg.FirebaseProjectID != "" {
		authMw, err := appmw.NewAuthMiddleware(context.Background())
		if err != nil {
			e.Logger.Fatalf("failed to init firebase auth: %v", err)
		}
		requireAuth = authMw.RequireAuth
		requireAdmin = authMw.RequireAdmin
	} else {
		log.Warn("FIREBASE_PROJECT_ID not set; running without authentication")
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	api := e.Group("/api")

	api.GET("/products", productHandler.List)
	api.GET("/products/:id", productHandler.Get)
	api.POST("/products", productHandler.Create, requireAuth)
	api.PUT("/products/:id", productHandler.Update, requireAuth)
	api.GET("/me/products", productHandler.ListMine, requireAuth)
	api.GET("/categories/tree", categoryHandler.Tree)

	api.GET("/cart", cartHandler.Get, requireAuth)
	api.POST("/cart/items", cartHandler.Add, requireAuth)
	api.PATCH("/cart/items/:productId", cartHandler.UpdateQuantity, requireAuth)
	api.DELETE("/cart/items/:productId", cartHandler.Remove, requireAuth)
	api.POST("/checkout", orderHandler.Checkout, requireAuth)

	api.GET("/me/orders", orderHandler.ListMine, requireAuth)
	api.GET("/me/sales", orderHandler.ListSales, requireAuth)
	api.GET("/orders/:id", orderHandler.Get, requireAuth)
	api.POST("/orders/:id/ship", orderHandler.MarkShipped, requireAuth)
	api.POST("/orders/:id/receive", orderHandler.MarkDelivered, requireAuth)
	api.POST("/orders/:id/cancel", orderHandler.Cancel, requireAuth)
	api.POST("/orders/:id/claims", claimHandler.File, requireAuth)

	api.POST("/wishlists", wishlistHandler.Create, requireAuth)
	api.GET("/me/wishlists", wishlistHandler.ListMine, requireAuth)
	api.POST("/wishlists/:id/items", wishlistHandler.AddItem, requireAuth)
	api.DELETE("/wishlists/:id/items/:productId", wishlistHandler.RemoveItem, requireAuth)
	api.GET("/wishlists/shared/:token", wishlistHandler.GetShared)

	// Chat routes share the lazy retention sweep: every request through
	// this group first purges conversations past the admin window.
	chat := api.Group("", appmw.LazyPurge(convSvc))
	chat.POST("/products/:id/conversations", convHandler.OpenForProduct, requireAuth)
	chat.POST("/support/conversations", convHandler.OpenSupport, requireAuth)
	chat.GET("/conversations", convHandler.List, requireAuth)
	chat.GET("/conversations/:id", convHandler.Get, requireAuth)
	chat.GET("/conversations/:id/messages", convHandler.ListMessages, requireAuth)
	chat.POST("/conversations/:id/messages", convHandler.CreateMessage, requireAuth)
	chat.POST("/conversations/:id/close", convHandler.Close, requireAuth)
	chat.POST("/conversations/:id/clear", convHandler.Clear, requireAuth)

	admin := api.Group("/admin", requireAuth, requireAdmin)
	admin.GET("/claims", claimHandler.ListOpen)
	admin.POST("/claims/:id/resolve", claimHandler.Resolve)
	adminChat := admin.Group("", appmw.LazyPurge(convSvc))
	adminChat.GET("/conversations", convHandler.ListClosedForAdmin)

	if uploadHandler != nil {
		api.POST("/uploads", uploadHandler.Upload, requireAuth)
	}

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func time24h(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}
