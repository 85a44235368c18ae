package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deal mirrors a Salesforce Opportunity.
type Deal struct {
	ID            string          `gorm:"primaryKey;size:64" json:"id"`
	Title         string          `gorm:"size:255;not null" json:"title"`
	CampaignStage CampaignStage   `gorm:"type:enum('draft','won','lost');not null;default:'draft'" json:"campaign_stage"`
	SubStage      SubStage        `gorm:"size:30;not null;default:'prospecting'" json:"sub_stage"`
	Status        string          `gorm:"size:50" json:"status"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	StartDate     *time.Time      `json:"start_date"`
	EndDate       *time.Time      `json:"end_date"`
	AccountID     *string         `gorm:"size:64;index" json:"account_id"`
	// OwnerID is the account-owner employee; OpportunityOwnerID owns the deal itself.
	OwnerID            *string   `gorm:"size:64;index" json:"owner_id"`
	OpportunityOwnerID *string   `gorm:"size:64;index" json:"opportunity_owner_id"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
