package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/plazamkt/storefront-backend/internal/model"
	"github.com/plazamkt/storefront-backend/internal/repository"
	"gorm.io/gorm"
)

type WishlistService interface {
	Create(ctx context.Context, ownerUID, title string) (*model.Wishlist, error)
	ListByOwner(ctx context.Context, ownerUID string) ([]model.Wishlist, error)
	AddItem(ctx context.Context, wishlistID uint64, ownerUID string, productID uint64) error
	RemoveItem(ctx context.Context, wishlistID uint64, ownerUID string, productID uint64) error
	GetShared(ctx context.Context, token string) (*model.Wishlist, []model.Product, error)
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

func NewWishlistService(wishlistRepo repository.WishlistRepository, productRepo repository.ProductRepository) WishlistService {
	return &wishlistService{wishlistRepo: wishlistRepo, productRepo: productRepo}
}

func (s *wishlistService) Create(ctx context.Context, ownerUID, title string) (*model.Wishlist, error) {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > 120 {
		return nil, errors.New("invalid title")
	}
	w := &model.Wishlist{
		OwnerUID:   ownerUID,
		Title:      title,
		ShareToken: uuid.NewString(),
	}
	if err := s.wishlistRepo.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *wishlistService) ListByOwner(ctx context.Context, ownerUID string) ([]model.Wishlist, error) {
	return s.wishlistRepo.ListByOwner(ctx, ownerUID)
}

func (s *wishlistService) owned(ctx context.Context, wishlistID uint64, ownerUID string) (*model.Wishlist, error) {
	w, err := s.wishlistRepo.FindByID(ctx, wishlistID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if w.OwnerUID != ownerUID {
		return nil, ErrForbidden
	}
	return w, nil
}

func (s *wishlistService) AddItem(ctx context.Context, wishlistID uint64, ownerUID string, productID uint64) error {
	w, err := s.owned(ctx, wishlistID, ownerUID)
	if err != nil {
		return err
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.wishlistRepo.AddItem(ctx, &model.WishlistItem{WishlistID: w.ID, ProductID: productID})
}

func (s *wishlistService) RemoveItem(ctx context.Context, wishlistID uint64, ownerUID string, productID uint64) error {
	w, err := s.owned(ctx, wishlistID, ownerUID)
	if err != nil {
		return err
	}
	affected, err := s.wishlistRepo.RemoveItem(ctx, w.ID, productID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetShared resolves a wishlist by its share token. Anyone holding the
// link may read it; there is no owner check here on purpose.
func (s *wishlistService) GetShared(ctx context.Context, token string) (*model.Wishlist, []model.Product, error) {
	w, err := s.wishlistRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	items, err := s.wishlistRepo.ListItems(ctx, w.ID)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]uint64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return w, products, nil
}
