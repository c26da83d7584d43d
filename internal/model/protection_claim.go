package model

import "time"

type ClaimStatus string

const (
	ClaimStatusOpen     ClaimStatus = "open"
	ClaimStatusApproved ClaimStatus = "approved"
	ClaimStatusDenied   ClaimStatus = "denied"
)

type ProtectionClaim struct {
	ID            uint64      `gorm:"primaryKey;autoIncrement"`
	OrderID       uint64      `gorm:"column:order_id;uniqueIndex:uk_claims_order"`
	ClaimantUID   string      `gorm:"column:claimant_uid;size:128;index;not null"`
	Reason        string      `gorm:"type:text;not null"`
	Status        ClaimStatus `gorm:"column:status;size:32;not null"`
	ResolvedByUID *string     `gorm:"column:resolved_by_uid;size:128"`
	ResolvedAt    *time.Time  `gorm:"column:resolved_at"`
	CreatedAt     time.Time   `gorm:"autoCreateTime"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime"`
}

func (ProtectionClaim) TableName() string {
	return "protection_claims"
}
