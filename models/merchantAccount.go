package models

import (
	"time"
)

// MerchantAccount mirrors a Salesforce Account.
type MerchantAccount struct {
	ID           string           `gorm:"primaryKey;size:64" json:"id"`
	Name         string           `gorm:"size:255;not null" json:"name"`
	BusinessType string           `gorm:"size:100" json:"business_type"`
	Location     string           `gorm:"size:255" json:"location"`
	Potential    AccountPotential `gorm:"type:enum('high','mid','low');not null;default:'low'" json:"potential"`
	OwnerID      *string          `gorm:"size:64;index" json:"owner_id"`
	ParentID     *string          `gorm:"size:64;index" json:"parent_id"`
	// Denormalized; recomputed at the end of every sync run.
	DealCount int       `gorm:"not null;default:0" json:"deal_count"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
