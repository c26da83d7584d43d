package repository

import (
	"context"

	"github.com/plazamkt/storefront-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	Upsert(ctx context.Context, item *model.CartItem) error
	FindByUser(ctx context.Context, uid string) ([]model.CartItem, error)
	Remove(ctx context.Context, uid string, productID uint64) (int64, error)
	Empty(ctx context.Context, uid string) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Upsert(ctx context.Context, item *model.CartItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity"}),
		}).
		Create(item).Error
}

func (r *cartRepository) FindByUser(ctx context.Context, uid string) ([]model.CartItem, error) {
	var list []model.CartItem
	if err := r.db.WithContext(ctx).
		Where("uid = ?", uid).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *cartRepository) Remove(ctx context.Context, uid string, productID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("uid = ? AND product_id = ?", uid, productID).
		Delete(&model.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *cartRepository) Empty(ctx context.Context, uid string) error {
	return r.db.WithContext(ctx).
		Where("uid = ?", uid).
		Delete(&model.CartItem{}).Error
}
