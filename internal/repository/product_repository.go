package repository

import (
	"context"

	"github.com/plazamkt/storefront-backend/internal/model"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uint64) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]model.Product, error)
	List(ctx context.Context, limit, offset int, categorySlug string) ([]model.Product, int64, error)
	ListByVendor(ctx context.Context, vendorUID string) ([]model.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepository) FindByID(ctx context.Context, id uint64) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []uint64) ([]model.Product, error) {
	var list []model.Product
	if len(ids) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *productRepository) List(ctx context.Context, limit, offset int, categorySlug string) ([]model.Product, int64, error) {
	var (
		list  []model.Product
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.Product{})
	if categorySlug != "" {
		q = q.Where("category_slug = ?", categorySlug)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *productRepository) ListByVendor(ctx context.Context, vendorUID string) ([]model.Product, error) {
	var list []model.Product
	if err := r.db.WithContext(ctx).
		Where("vendor_uid = ?", vendorUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
