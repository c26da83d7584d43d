package model

import "time"

type CartItem struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UID       string    `gorm:"column:uid;size:128;uniqueIndex:uniq_cart_uid_product"`
	ProductID uint64    `gorm:"column:product_id;uniqueIndex:uniq_cart_uid_product"`
	Quantity  int       `gorm:"column:quantity;not null;default:1"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
