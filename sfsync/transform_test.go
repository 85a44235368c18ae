package sfsync

import (
	"testing"

	"github.com/dealdesk/deals_backend/models"
	"github.com/shopspring/decimal"
)

func TestTransformOpportunity_WonLive(t *testing.T) {
	opp := sfOpportunity{
		Id:         "006A",
		Name:       "Spring Campaign",
		StageName:  "Closed Won",
		DealStatus: "Live",
		Amount:     "1250.50",
		AccountId:  "001B",
		OwnerId:    "005C",
		StartDate:  "2026-01-15",
		EndDate:    "2026-06-15",
	}
	deal := transformOpportunity(opp, map[string]string{"001B": "005D"})

	if deal.ID != "sf-006A" {
		t.Fatalf("ID = %q", deal.ID)
	}
	if deal.CampaignStage != models.CampaignStageWon {
		t.Errorf("CampaignStage = %q, want won", deal.CampaignStage)
	}
	if deal.SubStage != models.SubStageLive {
		t.Errorf("SubStage = %q, want live", deal.SubStage)
	}
	if deal.Status != "Live" {
		t.Errorf("Status = %q, want Live", deal.Status)
	}
	if !deal.Amount.Equal(decimal.RequireFromString("1250.50")) {
		t.Errorf("Amount = %s", deal.Amount)
	}
	if deal.AccountID == nil || *deal.AccountID != "sf-001B" {
		t.Errorf("AccountID = %v", deal.AccountID)
	}
	if deal.OwnerID == nil || *deal.OwnerID != "sf-005D" {
		t.Errorf("OwnerID (account owner) = %v", deal.OwnerID)
	}
	if deal.OpportunityOwnerID == nil || *deal.OpportunityOwnerID != "sf-005C" {
		t.Errorf("OpportunityOwnerID = %v", deal.OpportunityOwnerID)
	}
	if deal.StartDate == nil || deal.StartDate.Format("2006-01-02") != "2026-01-15" {
		t.Errorf("StartDate = %v", deal.StartDate)
	}
}

func TestTransformOpportunity_WonWithoutDealStatusIsEnded(t *testing.T) {
	opp := sfOpportunity{Id: "006A", StageName: "Closed Won"}
	deal := transformOpportunity(opp, nil)
	if deal.CampaignStage != models.CampaignStageWon {
		t.Fatalf("CampaignStage = %q", deal.CampaignStage)
	}
	if deal.SubStage != models.SubStageEnded {
		t.Fatalf("SubStage = %q, want ended", deal.SubStage)
	}
}

func TestTransformOpportunity_DraftKeepsTableSubStage(t *testing.T) {
	opp := sfOpportunity{Id: "006B", StageName: "Negotiation/Review", DealStatus: "Live"}
	deal := transformOpportunity(opp, nil)
	if deal.CampaignStage != models.CampaignStageDraft {
		t.Fatalf("CampaignStage = %q", deal.CampaignStage)
	}
	// Deal_Status__c only refines won deals.
	if deal.SubStage != models.SubStageNegotiation {
		t.Fatalf("SubStage = %q, want negotiation", deal.SubStage)
	}
}

func TestTransformOpportunity_MissingOptionalFields(t *testing.T) {
	deal := transformOpportunity(sfOpportunity{Id: "006C", StageName: "Prospecting"}, nil)
	if deal.AccountID != nil || deal.OwnerID != nil || deal.OpportunityOwnerID != nil {
		t.Fatalf("empty references should be nil: %+v", deal)
	}
	if !deal.Amount.IsZero() {
		t.Fatalf("Amount = %s, want 0", deal.Amount)
	}
	if deal.StartDate != nil || deal.EndDate != nil {
		t.Fatalf("empty dates should be nil")
	}
}

func TestTransformOpportunity_CloseDateBackfillsEndDate(t *testing.T) {
	opp := sfOpportunity{Id: "006D", StageName: "Closed Won", CloseDate: "2025-11-30"}
	deal := transformOpportunity(opp, nil)
	if deal.EndDate == nil || deal.EndDate.Format("2006-01-02") != "2025-11-30" {
		t.Fatalf("EndDate = %v, want CloseDate fallback", deal.EndDate)
	}

	// The campaign end date wins when present.
	opp.EndDate = "2025-12-15"
	deal = transformOpportunity(opp, nil)
	if deal.EndDate == nil || deal.EndDate.Format("2006-01-02") != "2025-12-15" {
		t.Fatalf("EndDate = %v, want campaign end date", deal.EndDate)
	}
}

func TestTransformUser(t *testing.T) {
	user := sfUser{
		Id:         "005A",
		Name:       "Jordan Smith",
		Email:      "Jordan.Smith@Example.com",
		ManagerId:  "005B",
		City:       "Austin",
		State:      "TX",
		Department: "Sales",
		IsActive:   true,
		UserRole:   sfUserRole{Name: "Market Manager"},
	}
	emp := transformUser(user)

	if emp.ID != "sf-005A" {
		t.Fatalf("ID = %q", emp.ID)
	}
	if emp.Email != "jordan.smith@example.com" {
		t.Errorf("Email not lowercased: %q", emp.Email)
	}
	if emp.Role != models.EmployeeRoleMarketManager {
		t.Errorf("Role = %q", emp.Role)
	}
	if emp.ManagerID == nil || *emp.ManagerID != "sf-005B" {
		t.Errorf("ManagerID = %v", emp.ManagerID)
	}
	if emp.Division != models.DivisionCentral {
		t.Errorf("Division = %q, want central", emp.Division)
	}
	if emp.IsActive == nil || !*emp.IsActive {
		t.Errorf("IsActive = %v", emp.IsActive)
	}
}

func TestTransformAccount(t *testing.T) {
	acc := sfAccount{
		Id:                "001A",
		Name:              "Blue Bistro Group",
		Industry:          "Fine Dining Restaurant",
		BillingCity:       "Chicago",
		BillingState:      "IL",
		NumberOfEmployees: "620",
		OwnerId:           "005A",
		ParentId:          "001P",
	}
	ma := transformAccount(acc)

	if ma.ID != "sf-001A" {
		t.Fatalf("ID = %q", ma.ID)
	}
	if ma.BusinessType != "Restaurant" {
		t.Errorf("BusinessType = %q, want Restaurant", ma.BusinessType)
	}
	if ma.Location != "Chicago, IL" {
		t.Errorf("Location = %q", ma.Location)
	}
	if ma.Potential != models.AccountPotentialHigh {
		t.Errorf("Potential = %q, want high", ma.Potential)
	}
	if ma.OwnerID == nil || *ma.OwnerID != "sf-005A" {
		t.Errorf("OwnerID = %v", ma.OwnerID)
	}
	if ma.ParentID == nil || *ma.ParentID != "sf-001P" {
		t.Errorf("ParentID = %v", ma.ParentID)
	}
}

func TestTransformAccount_EmptyEmployeeCount(t *testing.T) {
	ma := transformAccount(sfAccount{Id: "001B", Name: "Corner Cafe"})
	if ma.Potential != models.AccountPotentialLow {
		t.Fatalf("Potential = %q, want low", ma.Potential)
	}
	if ma.OwnerID != nil || ma.ParentID != nil {
		t.Fatalf("empty references should be nil")
	}
}
