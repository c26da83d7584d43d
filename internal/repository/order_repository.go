package repository

import (
	"context"

	"github.com/plazamkt/storefront-backend/internal/model"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id uint64) (*model.Order, error)
	Update(ctx context.Context, o *model.Order) error
	ListByBuyer(ctx context.Context, buyerUID string) ([]model.Order, error)
	ListByVendor(ctx context.Context, vendorUID string) ([]model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	// Items are created in the same insert through the association.
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uint64) (*model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) Update(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Omit("Items").Save(o).Error
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyerUID string) ([]model.Order, error) {
	var list []model.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("buyer_uid = ?", buyerUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) ListByVendor(ctx context.Context, vendorUID string) ([]model.Order, error) {
	var list []model.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("vendor_uid = ?", vendorUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
