package sfsync

import (
	"os"
	"strings"

	"github.com/dealdesk/deals_backend/config"
	"github.com/dealdesk/deals_backend/models"
)

// IDPrefix namespaces every synced record so re-runs are idempotent and
// Salesforce-originated rows are distinguishable from manually-entered ones.
const IDPrefix = "sf-"

func NamespacedID(externalID string) string {
	return IDPrefix + strings.TrimSpace(externalID)
}

type StageMapping struct {
	CampaignStage models.CampaignStage
	SubStage      models.SubStage
	Status        string
}

var defaultStageMapping = StageMapping{
	CampaignStage: models.CampaignStageDraft,
	SubStage:      models.SubStageProspecting,
	Status:        "Draft",
}

var stageMap = map[string]StageMapping{
	"Prospecting":          {models.CampaignStageDraft, models.SubStageProspecting, "Draft"},
	"Qualification":        {models.CampaignStageDraft, models.SubStageQualified, "Draft"},
	"Needs Analysis":       {models.CampaignStageDraft, models.SubStageQualified, "Draft"},
	"Value Proposition":    {models.CampaignStageDraft, models.SubStageProposalSent, "Draft"},
	"Proposal/Price Quote": {models.CampaignStageDraft, models.SubStageProposalSent, "Draft"},
	"Negotiation/Review":   {models.CampaignStageDraft, models.SubStageNegotiation, "Draft"},
	"Contract Sent":        {models.CampaignStageDraft, models.SubStageApproved, "Draft"},
	"Closed Won":           {models.CampaignStageWon, models.SubStageScheduled, "Won"},
	"Closed Lost":          {models.CampaignStageLost, models.SubStageClosedLost, "Lost"},
}

// StageKnown reports whether a stage name resolves without the fallback
// default, so callers can count fallbacks without changing the lookup result.
func StageKnown(stageName string) bool {
	name := strings.TrimSpace(stageName)
	if _, ok := stageMap[name]; ok {
		return true
	}
	for k := range stageMap {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// GetMappedStage resolves a Salesforce stage name: exact match, then
// case-insensitive, then the prospecting default with a warning. Never errors.
func GetMappedStage(stageName string) StageMapping {
	name := strings.TrimSpace(stageName)
	if m, ok := stageMap[name]; ok {
		return m
	}
	for k, m := range stageMap {
		if strings.EqualFold(k, name) {
			return m
		}
	}
	config.LogWarn(config.GetLogger(), "sfsync", "GetMappedStage", stageName,
		"unrecognized stage name, falling back to draft/prospecting")
	return defaultStageMapping
}

// RefineWonSubStage narrows a won deal using the Deal_Status__c custom field;
// the coarse stage name cannot tell a currently-live deal from an ended one.
func RefineWonSubStage(dealStatus string) (models.SubStage, string) {
	switch strings.ToLower(strings.TrimSpace(dealStatus)) {
	case "live":
		return models.SubStageLive, "Live"
	case "paused":
		return models.SubStagePaused, "Paused"
	default:
		return models.SubStageEnded, "Ended"
	}
}

type RoleMapping struct {
	Role      models.EmployeeRole
	RoleTitle string
}

var defaultRoleMapping = RoleMapping{
	Role:      models.EmployeeRoleBD,
	RoleTitle: "Business Development",
}

var roleMap = map[string]RoleMapping{
	"System Administrator":       {models.EmployeeRoleAdmin, "Admin"},
	"Business Development":       {models.EmployeeRoleBD, "Business Development"},
	"Merchant Development":       {models.EmployeeRoleMD, "Merchant Development"},
	"Market Manager":             {models.EmployeeRoleMarketManager, "Market Manager"},
	"Divisional Sales Manager":   {models.EmployeeRoleDSM, "Divisional Sales Manager"},
	"Executive":                  {models.EmployeeRoleExecutive, "Executive"},
	"Content Operations Manager": {models.EmployeeRoleContentOpsManager, "Content Operations Manager"},
	"Content Operations":         {models.EmployeeRoleContentOpsStaff, "Content Operations"},
}

// Substring fallback is checked in this order; more specific names first so
// "Content Operations Manager" does not resolve to the staff role.
var roleFallbackOrder = []string{
	"Content Operations Manager",
	"Divisional Sales Manager",
	"System Administrator",
	"Business Development",
	"Merchant Development",
	"Content Operations",
	"Market Manager",
	"Executive",
}

// RoleKnown reports whether a role name resolves without the bd fallback.
// Empty names resolve silently to the default and are not counted.
func RoleKnown(roleName string) bool {
	name := strings.TrimSpace(roleName)
	if name == "" {
		return true
	}
	if _, ok := roleMap[name]; ok {
		return true
	}
	lower := strings.ToLower(name)
	for _, k := range roleFallbackOrder {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// GetMappedRole never returns an undefined role; unmapped names fall back to bd.
func GetMappedRole(roleName string) RoleMapping {
	name := strings.TrimSpace(roleName)
	if m, ok := roleMap[name]; ok {
		return m
	}
	lower := strings.ToLower(name)
	for _, k := range roleFallbackOrder {
		if lower != "" && strings.Contains(lower, strings.ToLower(k)) {
			return roleMap[k]
		}
	}
	if name != "" {
		config.LogWarn(config.GetLogger(), "sfsync", "GetMappedRole", roleName,
			"unrecognized role name, falling back to bd")
	}
	return defaultRoleMapping
}

var businessTypeMap = map[string]string{
	"Restaurant":            "Restaurant",
	"Food & Beverage":       "Restaurant",
	"Retail":                "Retail",
	"Apparel":               "Retail",
	"Health & Beauty":       "Health & Beauty",
	"Cosmetics":             "Health & Beauty",
	"Entertainment":         "Activities & Entertainment",
	"Recreation":            "Activities & Entertainment",
	"Hospitality":           "Travel & Hotel",
	"Travel":                "Travel & Hotel",
	"Automotive":            "Automotive",
	"Home Services":         "Home Services",
	"Professional Services": "Services",
}

var businessTypeFallbackOrder = []string{
	"Food & Beverage",
	"Health & Beauty",
	"Home Services",
	"Restaurant",
	"Hospitality",
	"Entertainment",
	"Recreation",
	"Cosmetics",
	"Automotive",
	"Apparel",
	"Retail",
	"Travel",
}

// BusinessTypeKnown reports whether an industry resolves through the mapping
// rather than passing through verbatim; empty industries are not counted.
func BusinessTypeKnown(industry string) bool {
	name := strings.TrimSpace(industry)
	if name == "" {
		return true
	}
	if _, ok := businessTypeMap[name]; ok {
		return true
	}
	lower := strings.ToLower(name)
	for _, k := range businessTypeFallbackOrder {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// GetBusinessType maps a free-text industry to a normalized tag. Unmatched
// values pass through unchanged; nothing unrelated is ever fabricated.
func GetBusinessType(industry string) string {
	name := strings.TrimSpace(industry)
	if name == "" {
		return ""
	}
	if t, ok := businessTypeMap[name]; ok {
		return t
	}
	lower := strings.ToLower(name)
	for _, k := range businessTypeFallbackOrder {
		if strings.Contains(lower, strings.ToLower(k)) {
			return businessTypeMap[k]
		}
	}
	return name
}

var eastStates = []string{
	"CT", "DC", "DE", "FL", "GA", "MA", "MD", "ME", "NC", "NH",
	"NJ", "NY", "PA", "RI", "SC", "VA", "VT", "WV",
}

var centralStates = []string{
	"AL", "AR", "IA", "IL", "IN", "KS", "KY", "LA", "MI", "MN",
	"MO", "MS", "ND", "NE", "OH", "OK", "SD", "TN", "TX", "WI",
}

// Everything else (west list plus unknown/absent) defaults to east.
func DivisionForState(state string) models.Division {
	st := strings.ToUpper(strings.TrimSpace(state))
	if st == "" {
		return models.DivisionEast
	}
	for _, s := range eastStates {
		if s == st {
			return models.DivisionEast
		}
	}
	for _, s := range centralStates {
		if s == st {
			return models.DivisionCentral
		}
	}
	for _, s := range westStates {
		if s == st {
			return models.DivisionWest
		}
	}
	return models.DivisionEast
}

var westStates = []string{
	"AK", "AZ", "CA", "CO", "HI", "ID", "MT", "NM", "NV", "OR",
	"UT", "WA", "WY",
}

// PotentialForEmployeeCount is a crude size heuristic carried over as-is.
func PotentialForEmployeeCount(employees int) models.AccountPotential {
	switch {
	case employees >= 500:
		return models.AccountPotentialHigh
	case employees >= 50:
		return models.AccountPotentialMid
	default:
		return models.AccountPotentialLow
	}
}

var defaultMarkets = []string{"United States", "USA", "US"}

// Markets returns the billing-country allow-list, overridable via SF_MARKETS
// (comma-separated).
func Markets() []string {
	raw := strings.TrimSpace(os.Getenv("SF_MARKETS"))
	if raw == "" {
		return defaultMarkets
	}
	var markets []string
	for _, m := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(m); v != "" {
			markets = append(markets, v)
		}
	}
	if len(markets) == 0 {
		return defaultMarkets
	}
	return markets
}
