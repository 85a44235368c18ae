package sfsync

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/dealdesk/deals_backend/models"
	"github.com/shopspring/decimal"
)

// Transformers are total: any input record produces a valid output record,
// unknown values degrade to documented defaults and never to an error.

func transformUser(u sfUser) models.Employee {
	role := GetMappedRole(u.UserRole.Name)
	isActive := u.IsActive
	return models.Employee{
		ID:         NamespacedID(u.Id),
		Name:       strings.TrimSpace(u.Name),
		Email:      strings.ToLower(strings.TrimSpace(u.Email)),
		Role:       role.Role,
		RoleTitle:  role.RoleTitle,
		ManagerID:  namespacedRef(u.ManagerId),
		Location:   strings.TrimSpace(u.City),
		Division:   DivisionForState(u.State),
		Department: strings.TrimSpace(u.Department),
		IsActive:   &isActive,
	}
}

func transformAccount(a sfAccount) models.MerchantAccount {
	employees := 0
	if n, err := a.NumberOfEmployees.Int64(); err == nil {
		employees = int(n)
	}
	return models.MerchantAccount{
		ID:           NamespacedID(a.Id),
		Name:         strings.TrimSpace(a.Name),
		BusinessType: GetBusinessType(a.Industry),
		Location:     joinLocation(a.BillingCity, a.BillingState),
		Potential:    PotentialForEmployeeCount(employees),
		OwnerID:      namespacedRef(a.OwnerId),
		ParentID:     namespacedRef(a.ParentId),
	}
}

// transformOpportunity derives the deal's account-owner reference from the
// cached account, since opportunities only carry their own owner.
func transformOpportunity(o sfOpportunity, accountOwners map[string]string) models.Deal {
	stage := GetMappedStage(o.StageName)
	subStage := stage.SubStage
	status := stage.Status
	if stage.CampaignStage == models.CampaignStageWon {
		subStage, status = RefineWonSubStage(o.DealStatus)
	}

	var ownerID *string
	if accountOwner := accountOwners[o.AccountId]; accountOwner != "" {
		ownerID = namespacedRef(accountOwner)
	}

	// Older opportunities predate the campaign date fields; CloseDate is the
	// best available end date for those.
	endDate := parseDate(o.EndDate)
	if endDate == nil {
		endDate = parseDate(o.CloseDate)
	}

	return models.Deal{
		ID:                 NamespacedID(o.Id),
		Title:              strings.TrimSpace(o.Name),
		CampaignStage:      stage.CampaignStage,
		SubStage:           subStage,
		Status:             status,
		Amount:             decimalFromNumber(o.Amount),
		StartDate:          parseDate(o.StartDate),
		EndDate:            endDate,
		AccountID:          namespacedRef(o.AccountId),
		OwnerID:            ownerID,
		OpportunityOwnerID: namespacedRef(o.OwnerId),
	}
}

func namespacedRef(externalID string) *string {
	if strings.TrimSpace(externalID) == "" {
		return nil
	}
	id := NamespacedID(externalID)
	return &id
}

func joinLocation(city string, state string) string {
	city = strings.TrimSpace(city)
	state = strings.TrimSpace(state)
	switch {
	case city == "":
		return state
	case state == "":
		return city
	default:
		return city + ", " + state
	}
}

func decimalFromNumber(num json.Number) decimal.Decimal {
	if num.String() == "" {
		return decimal.Zero
	}
	if d, err := decimal.NewFromString(num.String()); err == nil {
		return d
	}
	return decimal.Zero
}

func parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t
	}
	return nil
}
