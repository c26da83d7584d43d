package service

import (
	"context"
	"errors"
	"strings"

	"github.com/plazamkt/storefront-backend/internal/catalog"
	"github.com/plazamkt/storefront-backend/internal/model"
	"github.com/plazamkt/storefront-backend/internal/repository"
	"gorm.io/gorm"
)

type CatalogService interface {
	CreateProduct(ctx context.Context, vendorUID, title, description string, price uint, imageURL *string, categorySlug string) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uint64, vendorUID, title, description string, price uint, imageURL *string, categorySlug string) (*model.Product, error)
	GetProduct(ctx context.Context, id uint64) (*model.Product, error)
	ListProducts(ctx context.Context, limit, offset int, categorySlug string) ([]model.Product, int64, error)
	ListVendorProducts(ctx context.Context, vendorUID string) ([]model.Product, error)
	CategoryTree(ctx context.Context) ([]*catalog.Node, error)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

func NewCatalogService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) CatalogService {
	return &catalogService{productRepo: productRepo, categoryRepo: categoryRepo}
}

func (s *catalogService) validate(ctx context.Context, title, description, categorySlug string, imageURL *string) error {
	if title == "" || len(title) > 120 {
		return errors.New("invalid title")
	}
	if description == "" {
		return errors.New("invalid description")
	}
	if categorySlug == "" {
		return errors.New("category is required")
	}
	if imageURL != nil && strings.HasPrefix(strings.TrimSpace(*imageURL), "data:") {
		return errors.New("imageUrl must be a URL, not data URI")
	}
	if _, err := s.categoryRepo.FindBySlug(ctx, categorySlug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("unknown category")
		}
		return err
	}
	return nil
}

func (s *catalogService) CreateProduct(ctx context.Context, vendorUID, title, description string, price uint, imageURL *string, categorySlug string) (*model.Product, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	categorySlug = strings.TrimSpace(categorySlug)
	if vendorUID == "" {
		return nil, errors.New("vendor is required")
	}
	if err := s.validate(ctx, title, description, categorySlug, imageURL); err != nil {
		return nil, err
	}

	p := &model.Product{
		VendorUID:    vendorUID,
		Title:        title,
		Description:  description,
		Price:        price,
		ImageURL:     imageURL,
		CategorySlug: categorySlug,
	}
	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uint64, vendorUID, title, description string, price uint, imageURL *string, categorySlug string) (*model.Product, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.VendorUID != vendorUID {
		return nil, ErrForbidden
	}
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	categorySlug = strings.TrimSpace(categorySlug)
	if err := s.validate(ctx, title, description, categorySlug, imageURL); err != nil {
		return nil, err
	}
	p.Title = title
	p.Description = description
	p.Price = price
	p.ImageURL = imageURL
	p.CategorySlug = categorySlug
	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uint64) (*model.Product, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *catalogService) ListProducts(ctx context.Context, limit, offset int, categorySlug string) ([]model.Product, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.productRepo.List(ctx, limit, offset, strings.TrimSpace(categorySlug))
}

func (s *catalogService) ListVendorProducts(ctx context.Context, vendorUID string) ([]model.Product, error) {
	return s.productRepo.ListByVendor(ctx, vendorUID)
}

func (s *catalogService) CategoryTree(ctx context.Context) ([]*catalog.Node, error) {
	cats, err := s.categoryRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.BuildTree(cats), nil
}
