package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/plazamkt/storefront-backend/internal/clock"
	"github.com/plazamkt/storefront-backend/internal/model"
	"github.com/plazamkt/storefront-backend/internal/protection"
	"github.com/plazamkt/storefront-backend/internal/repository"
	"gorm.io/gorm"
)

type OrderService interface {
	Checkout(ctx context.Context, buyerUID string, withProtection bool) ([]model.Order, error)
	Get(ctx context.Context, orderID uint64, uid string) (*model.Order, error)
	ListByBuyer(ctx context.Context, buyerUID string) ([]model.Order, error)
	ListByVendor(ctx context.Context, vendorUID string) ([]model.Order, error)
	MarkShipped(ctx context.Context, orderID uint64, vendorUID string) (*model.Order, error)
	MarkDelivered(ctx context.Context, orderID uint64, buyerUID string) (*model.Order, error)
	Cancel(ctx context.Context, orderID uint64, buyerUID string) (*model.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	convRepo    repository.ConversationRepository
	fees        protection.FeeSchedule
	clk         clock.Clock
}

func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, productRepo repository.ProductRepository, convRepo repository.ConversationRepository, fees protection.FeeSchedule, clk clock.Clock) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		convRepo:    convRepo,
		fees:        fees,
		clk:         clk,
	}
}

// Checkout converts the buyer's cart into orders, one per vendor. The
// protection fee is priced per order against that order's subtotal.
func (s *orderService) Checkout(ctx context.Context, buyerUID string, withProtection bool) ([]model.Order, error) {
	if buyerUID == "" {
		return nil, errors.New("buyer is required")
	}
	items, err := s.cartRepo.FindByUser(ctx, buyerUID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.New("cart is empty")
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

	type vendorGroup struct {
		vendorUID      string
		firstProductID uint64
		lines          []model.OrderItem
		subtotal       int64
	}
	groups := map[string]*vendorGroup{}
	order := []string{}
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %d no longer available", it.ProductID)
		}
		g, ok := groups[p.VendorUID]
		if !ok {
			g = &vendorGroup{vendorUID: p.VendorUID, firstProductID: p.ID}
			groups[p.VendorUID] = g
			order = append(order, p.VendorUID)
		}
		g.lines = append(g.lines, model.OrderItem{
			ProductID: p.ID,
			Title:     p.Title,
			PriceYen:  int64(p.Price),
			Quantity:  it.Quantity,
		})
		g.subtotal += int64(p.Price) * int64(it.Quantity)
	}

	orders := make([]model.Order, 0, len(groups))
	for _, vendorUID := range order {
		g := groups[vendorUID]
		var fee int64
		if withProtection {
			fee = s.fees.Fee(g.subtotal)
		}

		cv, err := s.convRepo.FindOrCreateForProduct(ctx, g.firstProductID, g.vendorUID, buyerUID)
		if err != nil {
			return nil, err
		}

		o := model.Order{
			BuyerUID:         buyerUID,
			VendorUID:        g.vendorUID,
			ConversationID:   cv.ID,
			Status:           model.OrderStatusPendingShipment,
			SubtotalYen:      g.subtotal,
			ProtectionFeeYen: fee,
			TotalYen:         g.subtotal + fee,
			Items:            g.lines,
		}
		if err := s.orderRepo.Create(ctx, &o); err != nil {
			return nil, err
		}
		_ = s.convRepo.CreateMessage(ctx, &model.Message{
			ConversationID: cv.ID,
			SenderUID:      buyerUID,
			Body:           fmt.Sprintf("Order #%d placed (%d yen). Please arrange shipment.", o.ID, o.TotalYen),
		})
		orders = append(orders, o)
	}

	if err := s.cartRepo.Empty(ctx, buyerUID); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *orderService) Get(ctx context.Context, orderID uint64, uid string) (*model.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if uid != "" && uid != o.BuyerUID && uid != o.VendorUID {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *orderService) ListByBuyer(ctx context.Context, buyerUID string) ([]model.Order, error) {
	return s.orderRepo.ListByBuyer(ctx, buyerUID)
}

func (s *orderService) ListByVendor(ctx context.Context, vendorUID string) ([]model.Order, error) {
	return s.orderRepo.ListByVendor(ctx, vendorUID)
}

func (s *orderService) MarkShipped(ctx context.Context, orderID uint64, vendorUID string) (*model.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if o.VendorUID != vendorUID {
		return nil, ErrForbidden
	}
	if o.Status != model.OrderStatusPendingShipment {
		return nil, fmt.Errorf("cannot ship order in status %s", o.Status)
	}
	now := s.clk.Now()
	o.Status = model.OrderStatusShipped
	o.ShippedAt = &now
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	if o.ConversationID != 0 {
		_ = s.convRepo.CreateMessage(ctx, &model.Message{
			ConversationID: o.ConversationID,
			SenderUID:      vendorUID,
			Body:           fmt.Sprintf("Order #%d has been shipped.", o.ID),
		})
	}
	return o, nil
}

func (s *orderService) MarkDelivered(ctx context.Context, orderID uint64, buyerUID string) (*model.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if o.BuyerUID != buyerUID {
		return nil, ErrForbidden
	}
	if o.Status == model.OrderStatusDelivered {
		return o, nil
	}
	if o.Status != model.OrderStatusShipped {
		return nil, fmt.Errorf("cannot receive order in status %s", o.Status)
	}
	now := s.clk.Now()
	o.Status = model.OrderStatusDelivered
	o.DeliveredAt = &now
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	if o.ConversationID != 0 {
		_ = s.convRepo.CreateMessage(ctx, &model.Message{
			ConversationID: o.ConversationID,
			SenderUID:      buyerUID,
			Body:           fmt.Sprintf("Order #%d was received. Thank you!", o.ID),
		})
	}
	return o, nil
}

func (s *orderService) Cancel(ctx context.Context, orderID uint64, buyerUID string) (*model.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if o.BuyerUID != buyerUID {
		return nil, ErrForbidden
	}
	if o.Status == model.OrderStatusCanceled {
		return o, nil
	}
	if o.Status != model.OrderStatusPendingShipment {
		return nil, errors.New("cannot cancel after shipment")
	}
	o.Status = model.OrderStatusCanceled
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}
