package sfsync

import (
	"testing"

	"github.com/dealdesk/deals_backend/models"
)

func TestGetMappedStage_KnownAndCaseInsensitive(t *testing.T) {
	m := GetMappedStage("Closed Won")
	if m.CampaignStage != models.CampaignStageWon || m.SubStage != models.SubStageScheduled || m.Status != "Won" {
		t.Fatalf("Closed Won mapped to %+v", m)
	}

	m = GetMappedStage("closed lost")
	if m.CampaignStage != models.CampaignStageLost || m.SubStage != models.SubStageClosedLost {
		t.Fatalf("case-insensitive lookup failed: %+v", m)
	}
}

func TestGetMappedStage_UnknownFallsBackToDefault(t *testing.T) {
	for _, name := range []string{"", "Totally Made Up Stage", "12 - Legacy"} {
		m := GetMappedStage(name)
		if m.CampaignStage != models.CampaignStageDraft {
			t.Errorf("GetMappedStage(%q).CampaignStage = %q, want draft", name, m.CampaignStage)
		}
		if m.SubStage != models.SubStageProspecting {
			t.Errorf("GetMappedStage(%q).SubStage = %q, want prospecting", name, m.SubStage)
		}
		if m.Status != "Draft" {
			t.Errorf("GetMappedStage(%q).Status = %q, want Draft", name, m.Status)
		}
	}
}

func TestStageKnown(t *testing.T) {
	if !StageKnown("Prospecting") {
		t.Error("Prospecting should be known")
	}
	if !StageKnown("closed won") {
		t.Error("case-insensitive match should be known")
	}
	if StageKnown("Nonsense Stage") {
		t.Error("unknown stage reported as known")
	}
}

func TestRefineWonSubStage(t *testing.T) {
	tests := []struct {
		dealStatus string
		subStage   models.SubStage
		status     string
	}{
		{"Live", models.SubStageLive, "Live"},
		{"live", models.SubStageLive, "Live"},
		{"Paused", models.SubStagePaused, "Paused"},
		{"", models.SubStageEnded, "Ended"},
		{"Completed", models.SubStageEnded, "Ended"},
	}
	for _, tt := range tests {
		sub, status := RefineWonSubStage(tt.dealStatus)
		if sub != tt.subStage || status != tt.status {
			t.Errorf("RefineWonSubStage(%q) = %q/%q, want %q/%q",
				tt.dealStatus, sub, status, tt.subStage, tt.status)
		}
	}
}

func TestGetMappedRole_NeverUndefined(t *testing.T) {
	tests := []struct {
		name string
		role models.EmployeeRole
	}{
		{"Market Manager", models.EmployeeRoleMarketManager},
		{"Senior Market Manager - West", models.EmployeeRoleMarketManager},
		{"Content Operations Manager", models.EmployeeRoleContentOpsManager},
		{"Content Operations", models.EmployeeRoleContentOpsStaff},
		{"Divisional Sales Manager", models.EmployeeRoleDSM},
		{"Some Unknown Role", models.EmployeeRoleBD},
		{"", models.EmployeeRoleBD},
	}
	for _, tt := range tests {
		got := GetMappedRole(tt.name)
		if got.Role == "" {
			t.Fatalf("GetMappedRole(%q) returned empty role", tt.name)
		}
		if got.Role != tt.role {
			t.Errorf("GetMappedRole(%q).Role = %q, want %q", tt.name, got.Role, tt.role)
		}
	}
}

func TestGetBusinessType(t *testing.T) {
	tests := []struct {
		industry string
		want     string
	}{
		{"Restaurant", "Restaurant"},
		{"Fine Dining Restaurant", "Restaurant"},
		{"Health & Beauty", "Health & Beauty"},
		{"Luxury Travel Agency", "Travel & Hotel"},
		// Unmatched values pass through unchanged.
		{"Underwater Basket Weaving", "Underwater Basket Weaving"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := GetBusinessType(tt.industry); got != tt.want {
			t.Errorf("GetBusinessType(%q) = %q, want %q", tt.industry, got, tt.want)
		}
	}
}

func TestRoleKnown(t *testing.T) {
	for _, name := range []string{"Business Development", "Senior Market Manager - West", ""} {
		if !RoleKnown(name) {
			t.Errorf("RoleKnown(%q) = false, want true", name)
		}
	}
	if RoleKnown("Chief Vibes Officer") {
		t.Error("unmapped role should not be known")
	}
}

func TestBusinessTypeKnown(t *testing.T) {
	for _, industry := range []string{"Retail", "Fine Dining Restaurant", ""} {
		if !BusinessTypeKnown(industry) {
			t.Errorf("BusinessTypeKnown(%q) = false, want true", industry)
		}
	}
	if BusinessTypeKnown("Quantum Computing") {
		t.Error("pass-through industry should not be known")
	}
}

func TestDivisionForState(t *testing.T) {
	tests := []struct {
		state string
		want  models.Division
	}{
		{"NY", models.DivisionEast},
		{"fl", models.DivisionEast},
		{"TX", models.DivisionCentral},
		{"CA", models.DivisionWest},
		{"", models.DivisionEast},
		{"ZZ", models.DivisionEast},
	}
	for _, tt := range tests {
		if got := DivisionForState(tt.state); got != tt.want {
			t.Errorf("DivisionForState(%q) = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestPotentialForEmployeeCount(t *testing.T) {
	tests := []struct {
		employees int
		want      models.AccountPotential
	}{
		{1000, models.AccountPotentialHigh},
		{500, models.AccountPotentialHigh},
		{499, models.AccountPotentialMid},
		{50, models.AccountPotentialMid},
		{49, models.AccountPotentialLow},
		{0, models.AccountPotentialLow},
	}
	for _, tt := range tests {
		if got := PotentialForEmployeeCount(tt.employees); got != tt.want {
			t.Errorf("PotentialForEmployeeCount(%d) = %q, want %q", tt.employees, got, tt.want)
		}
	}
}

func TestNamespacedID(t *testing.T) {
	if got := NamespacedID("0065g00000abcXYZ"); got != "sf-0065g00000abcXYZ" {
		t.Fatalf("NamespacedID = %q", got)
	}
	if got := NamespacedID("  001abc  "); got != "sf-001abc" {
		t.Fatalf("NamespacedID should trim: %q", got)
	}
}

func TestMarkets_Override(t *testing.T) {
	t.Setenv("SF_MARKETS", "Canada, United States")
	got := Markets()
	if len(got) != 2 || got[0] != "Canada" || got[1] != "United States" {
		t.Fatalf("Markets() = %v", got)
	}

	t.Setenv("SF_MARKETS", "")
	got = Markets()
	if len(got) != len(defaultMarkets) {
		t.Fatalf("Markets() default = %v", got)
	}
}
