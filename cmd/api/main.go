package main

import (
	"github.com/joho/godotenv"
	"github.com/plazamkt/storefront-backend/internal/config"
	"github.com/plazamkt/storefront-backend/internal/db"
	"github.com/plazamkt/storefront-backend/internal/model"
	"github.com/plazamkt/storefront-backend/internal/server"
	log "github.com/sirupsen/logrus"
)

// Set via -ldflags at build time.
var (
	gitSHA    = "dev"
	buildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config load failed")
	}

	conn, err := db.Connect(cfg)
	if err != nil {
		log.WithError(err).Fatal("db connect failed")
	}
	if err := conn.AutoMigrate(
		&model.Category{},
		&model.Product{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Wishlist{},
		&model.WishlistItem{},
		&model.ProtectionClaim{},
		&model.Conversation{},
		&model.Message{},
	); err != nil {
		log.WithError(err).Fatal("auto migrate failed")
	}

	srv := server.New(conn, cfg, gitSHA, buildTime)

	addr := ":" + cfg.Port
	log.WithField("addr", addr).Info("starting server")
	if err := srv.Start(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
