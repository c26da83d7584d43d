package model

import "time"

type Wishlist struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerUID   string    `gorm:"column:owner_uid;size:128;index;not null" json:"ownerUid"`
	Title      string    `gorm:"size:120;not null" json:"title"`
	ShareToken string    `gorm:"column:share_token;size:36;uniqueIndex:uk_wishlists_token" json:"shareToken"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Wishlist) TableName() string {
	return "wishlists"
}

type WishlistItem struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	WishlistID uint64    `gorm:"column:wishlist_id;uniqueIndex:uniq_wishlist_product"`
	ProductID  uint64    `gorm:"column:product_id;uniqueIndex:uniq_wishlist_product"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (WishlistItem) TableName() string {
	return "wishlist_items"
}
