package model

import "time"

// SupportUID is the reserved identity on the vendor side of Help Center
// conversations. It is not a real account.
const SupportUID = "help-center"

type Conversation struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID   *uint64 `gorm:"column:product_id;index:idx_product_customer,unique" json:"productId,omitempty"`
	CustomerUID string  `gorm:"column:customer_uid;size:128;index:idx_product_customer,unique" json:"customerUid"`
	VendorUID   string  `gorm:"column:vendor_uid;size:128;index" json:"vendorUid"`

	ClosedAt     *time.Time `gorm:"column:closed_at;index" json:"closedAt,omitempty"`
	ClosedByUID  *string    `gorm:"column:closed_by_uid;size:128" json:"closedByUid,omitempty"`
	ClosedReason string     `gorm:"column:closed_reason;size:64" json:"closedReason,omitempty"`
	ClearedAt    *time.Time `gorm:"column:cleared_at" json:"clearedAt,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// IsSupport reports whether this is a Help Center conversation. Support
// conversations can be cleared but never closed.
func (c *Conversation) IsSupport() bool {
	return c.VendorUID == SupportUID
}

// HasParticipant reports whether uid is one of the two parties.
func (c *Conversation) HasParticipant(uid string) bool {
	return uid != "" && (uid == c.CustomerUID || uid == c.VendorUID)
}

func (Conversation) TableName() string {
	return "conversations"
}
