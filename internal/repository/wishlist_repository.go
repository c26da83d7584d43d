package repository

import (
	"context"

	"github.com/plazamkt/storefront-backend/internal/model"
	"gorm.io/gorm"
)

type WishlistRepository interface {
	Create(ctx context.Context, w *model.Wishlist) error
	FindByID(ctx context.Context, id uint64) (*model.Wishlist, error)
	FindByToken(ctx context.Context, token string) (*model.Wishlist, error)
	ListByOwner(ctx context.Context, ownerUID string) ([]model.Wishlist, error)
	AddItem(ctx context.Context, item *model.WishlistItem) error
	RemoveItem(ctx context.Context, wishlistID, productID uint64) (int64, error)
	ListItems(ctx context.Context, wishlistID uint64) ([]model.WishlistItem, error)
}

type wishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) Create(ctx context.Context, w *model.Wishlist) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *wishlistRepository) FindByID(ctx context.Context, id uint64) (*model.Wishlist, error) {
	var w model.Wishlist
	if err := r.db.WithContext(ctx).First(&w, id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *wishlistRepository) FindByToken(ctx context.Context, token string) (*model.Wishlist, error) {
	var w model.Wishlist
	if err := r.db.WithContext(ctx).Where("share_token = ?", token).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *wishlistRepository) ListByOwner(ctx context.Context, ownerUID string) ([]model.Wishlist, error) {
	var list []model.Wishlist
	if err := r.db.WithContext(ctx).
		Where("owner_uid = ?", ownerUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *wishlistRepository) AddItem(ctx context.Context, item *model.WishlistItem) error {
	return r.db.WithContext(ctx).
		Where("wishlist_id = ? AND product_id = ?", item.WishlistID, item.ProductID).
		FirstOrCreate(item).Error
}

func (r *wishlistRepository) RemoveItem(ctx context.Context, wishlistID, productID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Delete(&model.WishlistItem{})
	return res.RowsAffected, res.Error
}

func (r *wishlistRepository) ListItems(ctx context.Context, wishlistID uint64) ([]model.WishlistItem, error) {
	var list []model.WishlistItem
	if err := r.db.WithContext(ctx).
		Where("wishlist_id = ?", wishlistID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
