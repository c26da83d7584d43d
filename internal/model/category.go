package model

import "time"

type Category struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Slug      string    `gorm:"size:64;not null;uniqueIndex:uk_categories_slug"`
	Name      string    `gorm:"size:120;not null"`
	ParentID  *uint64   `gorm:"column:parent_id;index"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Category) TableName() string {
	return "categories"
}
