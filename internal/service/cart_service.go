package service

import (
	"context"
	"errors"

	"github.com/plazamkt/storefront-backend/internal/model"
	"github.com/plazamkt/storefront-backend/internal/protection"
	"github.com/plazamkt/storefront-backend/internal/repository"
	"gorm.io/gorm"
)

const maxQuantityPerLine = 9

type CartLine struct {
	Product      model.Product `json:"product"`
	Quantity     int           `json:"quantity"`
	LineTotalYen int64         `json:"lineTotalYen"`
}

type CartView struct {
	Lines            []CartLine `json:"lines"`
	SubtotalYen      int64      `json:"subtotalYen"`
	ProtectionFeeYen int64      `json:"protectionFeeYen"`
}

type CartService interface {
	Add(ctx context.Context, uid string, productID uint64, quantity int) error
	Remove(ctx context.Context, uid string, productID uint64) error
	Get(ctx context.Context, uid string) (*CartView, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	fees        protection.FeeSchedule
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, fees protection.FeeSchedule) CartService {
	return &cartService{cartRepo: cartRepo, productRepo: productRepo, fees: fees}
}

func (s *cartService) Add(ctx context.Context, uid string, productID uint64, quantity int) error {
	if quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	if quantity > maxQuantityPerLine {
		quantity = maxQuantityPerLine
	}
	p, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if p.VendorUID == uid {
		return errors.New("cannot add your own product")
	}
	return s.cartRepo.Upsert(ctx, &model.CartItem{UID: uid, ProductID: productID, Quantity: quantity})
}

func (s *cartService) Remove(ctx context.Context, uid string, productID uint64) error {
	affected, err := s.cartRepo.Remove(ctx, uid, productID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *cartService) Get(ctx context.Context, uid string) (*CartView, error) {
	items, err := s.cartRepo.FindByUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	view := &CartView{Lines: make([]CartLine, 0, len(items))}
	// Fee is quoted per vendor since checkout splits the cart into one
	// order per vendor.
	vendorSubtotals := map[string]int64{}
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			// Product was delisted after being carted; skip it.
			continue
		}
		lineTotal := int64(p.Price) * int64(it.Quantity)
		view.Lines = append(view.Lines, CartLine{Product: p, Quantity: it.Quantity, LineTotalYen: lineTotal})
		view.SubtotalYen += lineTotal
		vendorSubtotals[p.VendorUID] += lineTotal
	}
	for _, sub := range vendorSubtotals {
		view.ProtectionFeeYen += s.fees.Fee(sub)
	}
	return view, nil
}
