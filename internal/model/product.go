package model

import "time"

type Product struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	VendorUID    string    `gorm:"column:vendor_uid;size:128;index;not null" json:"vendorUid"`
	Title        string    `gorm:"size:120;not null" json:"title"`
	Description  string    `gorm:"type:text;not null" json:"description"`
	Price        uint      `gorm:"not null" json:"price"`
	ImageURL     *string   `gorm:"size:512" json:"imageUrl,omitempty"`
	CategorySlug string    `gorm:"column:category_slug;size:64;index" json:"categorySlug"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}
