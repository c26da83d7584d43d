package repository

import (
	"context"

	"github.com/plazamkt/storefront-backend/internal/model"
	"gorm.io/gorm"
)

type ClaimRepository interface {
	Create(ctx context.Context, c *model.ProtectionClaim) error
	FindByID(ctx context.Context, id uint64) (*model.ProtectionClaim, error)
	FindByOrder(ctx context.Context, orderID uint64) (*model.ProtectionClaim, error)
	Update(ctx context.Context, c *model.ProtectionClaim) error
	ListOpen(ctx context.Context) ([]model.ProtectionClaim, error)
}

type claimRepository struct {
	db *gorm.DB
}

func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &claimRepository{db: db}
}

func (r *claimRepository) Create(ctx context.Context, c *model.ProtectionClaim) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *claimRepository) FindByID(ctx context.Context, id uint64) (*model.ProtectionClaim, error) {
	var c model.ProtectionClaim
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *claimRepository) FindByOrder(ctx context.Context, orderID uint64) (*model.ProtectionClaim, error) {
	var c model.ProtectionClaim
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *claimRepository) Update(ctx context.Context, c *model.ProtectionClaim) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *claimRepository) ListOpen(ctx context.Context) ([]model.ProtectionClaim, error) {
	var list []model.ProtectionClaim
	if err := r.db.WithContext(ctx).
		Where("status = ?", model.ClaimStatusOpen).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
