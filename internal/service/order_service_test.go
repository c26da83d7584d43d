package service

import (
	"context"
	"testing"
	"time"

	"github.com/plazamkt/storefront-backend/internal/model"
	"github.com/plazamkt/storefront-backend/internal/protection"
	"github.com/plazamkt/storefront-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderFixture struct {
	db       *gorm.DB
	clk      *testClock
	orders   OrderService
	claims   ClaimService
	cartRepo repository.CartRepository
	convRepo repository.ConversationRepository
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	db := newTestDB(t)
	clk := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	fees := protection.FeeSchedule{RateBasisPoints: 200, MinFeeYen: 100, MaxFeeYen: 2500}
	cartRepo := repository.NewCartRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	convRepo := repository.NewConversationRepository(db)
	claimRepo := repository.NewClaimRepository(db)
	return &orderFixture{
		db:       db,
		clk:      clk,
		orders:   NewOrderService(orderRepo, cartRepo, productRepo, convRepo, fees, clk),
		claims:   NewClaimService(claimRepo, orderRepo, clk),
		cartRepo: cartRepo,
		convRepo: convRepo,
	}
}

func (f *orderFixture) seedProduct(t *testing.T, vendor, title string, price uint) *model.Product {
	t.Helper()
	p := model.Product{VendorUID: vendor, Title: title, Description: "test listing", Price: price, CategorySlug: "electronics"}
	require.NoError(t, f.db.Create(&p).Error)
	return &p
}

func (f *orderFixture) addToCart(t *testing.T, productID uint64, qty int) {
	t.Helper()
	require.NoError(t, f.cartRepo.Upsert(context.Background(), &model.CartItem{UID: buyerUID, ProductID: productID, Quantity: qty}))
}

func TestCheckoutSplitsByVendor(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	camera := f.seedProduct(t, "vendor-1", "old camera", 4000)
	lens := f.seedProduct(t, "vendor-1", "spare lens", 2000)
	piano := f.seedProduct(t, "vendor-2", "upright piano", 200000)
	f.addToCart(t, camera.ID, 2)
	f.addToCart(t, lens.ID, 1)
	f.addToCart(t, piano.ID, 1)

	orders, err := f.orders.Checkout(ctx, buyerUID, true)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	byVendor := map[string]model.Order{}
	for _, o := range orders {
		byVendor[o.VendorUID] = o
	}

	// vendor-1: 2*4000 + 2000 = 10000, fee 2% = 200.
	o1 := byVendor["vendor-1"]
	assert.Equal(t, int64(10000), o1.SubtotalYen)
	assert.Equal(t, int64(200), o1.ProtectionFeeYen)
	assert.Equal(t, int64(10200), o1.TotalYen)
	assert.Equal(t, model.OrderStatusPendingShipment, o1.Status)
	assert.Len(t, o1.Items, 2)

	// vendor-2: 200000, 2% = 4000 but capped at 2500.
	o2 := byVendor["vendor-2"]
	assert.Equal(t, int64(200000), o2.SubtotalYen)
	assert.Equal(t, int64(2500), o2.ProtectionFeeYen)
	assert.Equal(t, int64(202500), o2.TotalYen)

	// Cart is emptied and each order opened a conversation with a
	// system message.
	left, err := f.cartRepo.FindByUser(ctx, buyerUID)
	require.NoError(t, err)
	assert.Empty(t, left)
	require.NotZero(t, o1.ConversationID)
	msgs, err := f.convRepo.ListMessages(ctx, o1.ConversationID)
	require.NoError(t, err)
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[0].Body, "placed")
}

func TestCheckoutWithoutProtection(t *testing.T) {
	f := newOrderFixture(t)
	p := f.seedProduct(t, "vendor-1", "old camera", 4000)
	f.addToCart(t, p.ID, 1)

	orders, err := f.orders.Checkout(context.Background(), buyerUID, false)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Zero(t, orders[0].ProtectionFeeYen)
	assert.Equal(t, orders[0].SubtotalYen, orders[0].TotalYen)
	assert.False(t, orders[0].Protected())
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.orders.Checkout(context.Background(), buyerUID, true)
	assert.EqualError(t, err, "cart is empty")
}

func TestOrderLifecycle(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "vendor-1", "old camera", 4000)
	f.addToCart(t, p.ID, 1)
	orders, err := f.orders.Checkout(ctx, buyerUID, true)
	require.NoError(t, err)
	id := orders[0].ID

	_, err = f.orders.MarkShipped(ctx, id, "vendor-2")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.orders.MarkDelivered(ctx, id, buyerUID)
	assert.Error(t, err, "cannot receive before shipment")

	shipped, err := f.orders.MarkShipped(ctx, id, "vendor-1")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, shipped.Status)
	assert.NotNil(t, shipped.ShippedAt)

	_, err = f.orders.Cancel(ctx, id, buyerUID)
	assert.EqualError(t, err, "cannot cancel after shipment")

	f.clk.Advance(48 * time.Hour)
	delivered, err := f.orders.MarkDelivered(ctx, id, buyerUID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, delivered.Status)
	require.NotNil(t, delivered.DeliveredAt)

	// Receiving again is a harmless no-op.
	again, err := f.orders.MarkDelivered(ctx, id, buyerUID)
	require.NoError(t, err)
	assert.True(t, again.DeliveredAt.Equal(*delivered.DeliveredAt))
}

func TestCancelBeforeShipment(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "vendor-1", "old camera", 4000)
	f.addToCart(t, p.ID, 1)
	orders, err := f.orders.Checkout(ctx, buyerUID, false)
	require.NoError(t, err)
	id := orders[0].ID

	_, err = f.orders.Cancel(ctx, id, "vendor-1")
	assert.ErrorIs(t, err, ErrForbidden)

	canceled, err := f.orders.Cancel(ctx, id, buyerUID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCanceled, canceled.Status)

	// Canceling twice stays canceled.
	again, err := f.orders.Cancel(ctx, id, buyerUID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCanceled, again.Status)
}

func TestFileClaim(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "vendor-1", "old camera", 4000)
	f.addToCart(t, p.ID, 1)
	orders, err := f.orders.Checkout(ctx, buyerUID, true)
	require.NoError(t, err)
	id := orders[0].ID

	_, err = f.claims.File(ctx, id, "vendor-1", "never paid")
	assert.ErrorIs(t, err, ErrForbidden, "only the buyer may claim")

	c, err := f.claims.File(ctx, id, buyerUID, "item arrived broken")
	require.NoError(t, err)
	assert.Equal(t, model.ClaimStatusOpen, c.Status)

	// Filing again surfaces the existing claim, not a second row.
	dup, err := f.claims.File(ctx, id, buyerUID, "still broken")
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	assert.Equal(t, c.ID, dup.ID)

	open, err := f.claims.ListOpen(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestFileClaimOnUnprotectedOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "vendor-1", "old camera", 4000)
	f.addToCart(t, p.ID, 1)
	orders, err := f.orders.Checkout(ctx, buyerUID, false)
	require.NoError(t, err)

	_, err = f.claims.File(ctx, orders[0].ID, buyerUID, "item arrived broken")
	assert.EqualError(t, err, "order is not protected")
}

func TestResolveClaim(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "vendor-1", "old camera", 4000)
	f.addToCart(t, p.ID, 1)
	orders, err := f.orders.Checkout(ctx, buyerUID, true)
	require.NoError(t, err)
	c, err := f.claims.File(ctx, orders[0].ID, buyerUID, "item arrived broken")
	require.NoError(t, err)

	resolved, err := f.claims.Resolve(ctx, c.ID, "staff-1", true)
	require.NoError(t, err)
	assert.Equal(t, model.ClaimStatusApproved, resolved.Status)
	require.NotNil(t, resolved.ResolvedByUID)
	assert.Equal(t, "staff-1", *resolved.ResolvedByUID)
	assert.NotNil(t, resolved.ResolvedAt)

	_, err = f.claims.Resolve(ctx, c.ID, "staff-2", false)
	assert.ErrorIs(t, err, ErrAlreadyResolved)

	open, err := f.claims.ListOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	_, err = f.claims.Resolve(ctx, 999, "staff-1", true)
	assert.ErrorIs(t, err, ErrNotFound)
}
