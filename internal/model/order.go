package model

import "time"

type OrderStatus string

const (
	OrderStatusPendingShipment OrderStatus = "pending_shipment"
	OrderStatusShipped         OrderStatus = "shipped"
	OrderStatusDelivered       OrderStatus = "delivered"
	OrderStatusCanceled        OrderStatus = "canceled"
)

type Order struct {
	ID               uint64      `gorm:"primaryKey;autoIncrement"`
	BuyerUID         string      `gorm:"column:buyer_uid;size:128;index;not null"`
	VendorUID        string      `gorm:"column:vendor_uid;size:128;index;not null"`
	ConversationID   uint64      `gorm:"column:conversation_id;index"`
	Status           OrderStatus `gorm:"column:status;size:32;not null"`
	SubtotalYen      int64       `gorm:"column:subtotal_yen;not null"`
	ProtectionFeeYen int64       `gorm:"column:protection_fee_yen;not null;default:0"`
	TotalYen         int64       `gorm:"column:total_yen;not null"`
	ShippedAt        *time.Time  `gorm:"column:shipped_at"`
	DeliveredAt      *time.Time  `gorm:"column:delivered_at"`
	CreatedAt        time.Time   `gorm:"autoCreateTime"`
	UpdatedAt        time.Time   `gorm:"autoUpdateTime"`

	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

// Protected reports whether the buyer paid the order-protection fee.
func (o *Order) Protected() bool {
	return o.ProtectionFeeYen > 0
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	OrderID   uint64 `gorm:"column:order_id;index;not null"`
	ProductID uint64 `gorm:"column:product_id;index;not null"`
	// Title and price are copied from the product at checkout so later
	// edits by the vendor do not rewrite order history.
	Title     string    `gorm:"size:120;not null"`
	PriceYen  int64     `gorm:"column:price_yen;not null"`
	Quantity  int       `gorm:"column:quantity;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
