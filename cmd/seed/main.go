package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/plazamkt/storefront-backend/internal/config"
	"github.com/plazamkt/storefront-backend/internal/db"
	"github.com/plazamkt/storefront-backend/internal/model"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type seedCategory struct {
	Slug       string
	Name       string
	ParentSlug string
	SortOrder  int
}

type seedProduct struct {
	Title        string
	Description  string
	Price        uint
	CategorySlug string
	VendorUID    string
}

func main() {
	if err := run(); err != nil {
		log.WithError(err).Fatal("seed failed")
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}

	var count int64
	if err := gdb.WithContext(ctx).Model(&model.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 && os.Getenv("FORCE_SEED") != "true" {
		log.Info("products already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	if err := seedCategories(ctx, gdb); err != nil {
		return err
	}
	if err := seedProducts(ctx, gdb); err != nil {
		return err
	}
	log.Info("seed complete")
	return nil
}

func seedCategories(ctx context.Context, gdb *gorm.DB) error {
	cats := []seedCategory{
		{Slug: "electronics", Name: "Electronics", SortOrder: 0},
		{Slug: "phones", Name: "Phones", ParentSlug: "electronics", SortOrder: 0},
		{Slug: "laptops", Name: "Laptops", ParentSlug: "electronics", SortOrder: 1},
		{Slug: "home", Name: "Home & Kitchen", SortOrder: 1},
		{Slug: "cookware", Name: "Cookware", ParentSlug: "home", SortOrder: 0},
		{Slug: "fashion", Name: "Fashion", SortOrder: 2},
	}
	bySlug := map[string]uint64{}
	for _, sc := range cats {
		c := model.Category{Slug: sc.Slug, Name: sc.Name, SortOrder: sc.SortOrder}
		if sc.ParentSlug != "" {
			parentID, ok := bySlug[sc.ParentSlug]
			if !ok {
				return fmt.Errorf("seed category %s references unknown parent %s", sc.Slug, sc.ParentSlug)
			}
			c.ParentID = &parentID
		}
		if err := gdb.WithContext(ctx).
			Where("slug = ?", sc.Slug).
			FirstOrCreate(&c).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", sc.Slug, err)
		}
		bySlug[sc.Slug] = c.ID
	}
	return nil
}

func seedProducts(ctx context.Context, gdb *gorm.DB) error {
	products := []seedProduct{
		{Title: "Refurbished smartphone", Description: "Lightly used, unlocked, 128GB.", Price: 24800, CategorySlug: "phones", VendorUID: "seed-vendor-1"},
		{Title: "13-inch ultrabook", Description: "2023 model, 16GB RAM, small scratch on lid.", Price: 79800, CategorySlug: "laptops", VendorUID: "seed-vendor-1"},
		{Title: "Cast iron skillet", Description: "26cm, seasoned and ready to cook.", Price: 3200, CategorySlug: "cookware", VendorUID: "seed-vendor-2"},
		{Title: "Wool winter coat", Description: "Size M, worn one season.", Price: 5600, CategorySlug: "fashion", VendorUID: "seed-vendor-2"},
	}
	for _, sp := range products {
		p := model.Product{
			Title:        sp.Title,
			Description:  sp.Description,
			Price:        sp.Price,
			CategorySlug: sp.CategorySlug,
			VendorUID:    sp.VendorUID,
		}
		if err := gdb.WithContext(ctx).
			Where("title = ? AND vendor_uid = ?", sp.Title, sp.VendorUID).
			FirstOrCreate(&p).Error; err != nil {
			return fmt.Errorf("seed product %q: %w", sp.Title, err)
		}
	}
	return nil
}
