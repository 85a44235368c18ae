package models

type CampaignStage string

const (
	CampaignStageDraft CampaignStage = "draft"
	CampaignStageWon   CampaignStage = "won"
	CampaignStageLost  CampaignStage = "lost"
)

// Sub-stages refine the coarse campaign stage. Each value is only valid
// under the stage it belongs to.
type SubStage string

const (
	// draft
	SubStageProspecting  SubStage = "prospecting"
	SubStageQualified    SubStage = "qualified"
	SubStageProposalSent SubStage = "proposal_sent"
	SubStageNegotiation  SubStage = "negotiation"
	SubStageApproved     SubStage = "approved"

	// won
	SubStageScheduled SubStage = "scheduled"
	SubStageLive      SubStage = "live"
	SubStagePaused    SubStage = "paused"
	SubStageSoldOut   SubStage = "sold_out"
	SubStageEnded     SubStage = "ended"

	// lost
	SubStageClosedLost SubStage = "closed_lost"
)

type EmployeeRole string

const (
	EmployeeRoleAdmin             EmployeeRole = "admin"
	EmployeeRoleBD                EmployeeRole = "bd"
	EmployeeRoleMD                EmployeeRole = "md"
	EmployeeRoleMarketManager     EmployeeRole = "mm"
	EmployeeRoleDSM               EmployeeRole = "dsm"
	EmployeeRoleExecutive         EmployeeRole = "executive"
	EmployeeRoleContentOpsStaff   EmployeeRole = "content_ops_staff"
	EmployeeRoleContentOpsManager EmployeeRole = "content_ops_manager"
)

type AccountPotential string

const (
	AccountPotentialHigh AccountPotential = "high"
	AccountPotentialMid  AccountPotential = "mid"
	AccountPotentialLow  AccountPotential = "low"
)

type Division string

const (
	DivisionEast    Division = "east"
	DivisionCentral Division = "central"
	DivisionWest    Division = "west"
)

const (
	SyncRunStatusQueued  = "queued"
	SyncRunStatusRunning = "running"
	SyncRunStatusSuccess = "success"
	SyncRunStatusFailed  = "failed"
)

const (
	SyncTriggeredManual = "manual"
	SyncTriggeredSystem = "system"
	SyncTriggeredCLI    = "cli"
)
