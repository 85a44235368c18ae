package sfsync

import "encoding/json"

// Raw Salesforce records as returned by the REST query endpoint.

type sfUser struct {
	Id         string     `json:"Id"`
	Name       string     `json:"Name"`
	Email      string     `json:"Email"`
	ManagerId  string     `json:"ManagerId"`
	City       string     `json:"City"`
	State      string     `json:"State"`
	Department string     `json:"Department"`
	IsActive   bool       `json:"IsActive"`
	UserRole   sfUserRole `json:"UserRole"`
}

type sfUserRole struct {
	Name string `json:"Name"`
}

type sfAccount struct {
	Id                string      `json:"Id"`
	Name              string      `json:"Name"`
	Industry          string      `json:"Industry"`
	BillingCity       string      `json:"BillingCity"`
	BillingState      string      `json:"BillingState"`
	BillingCountry    string      `json:"BillingCountry"`
	NumberOfEmployees json.Number `json:"NumberOfEmployees"`
	OwnerId           string      `json:"OwnerId"`
	ParentId          string      `json:"ParentId"`
}

type sfOpportunity struct {
	Id         string      `json:"Id"`
	Name       string      `json:"Name"`
	StageName  string      `json:"StageName"`
	Amount     json.Number `json:"Amount"`
	AccountId  string      `json:"AccountId"`
	OwnerId    string      `json:"OwnerId"`
	DealStatus string      `json:"Deal_Status__c"`
	StartDate  string      `json:"Campaign_Start_Date__c"`
	EndDate    string      `json:"Campaign_End_Date__c"`
	CloseDate  string      `json:"CloseDate"`
}

// Options control one sync invocation.
type Options struct {
	DryRun   bool
	FullSync bool
	Reset    bool

	// Caps for the bounded extraction queries; zero means the defaults
	// (live deals are always fetched uncapped).
	MaxAccounts      int
	MaxOpportunities int

	TriggeredBy string
}

// Stats counts upserted records per entity kind.
type Stats map[string]int

func (s Stats) total() int {
	n := 0
	for _, v := range s {
		n += v
	}
	return n
}

// API payloads for the sync service.

type TriggerSyncRequest struct {
	DryRun   bool `json:"dryRun"`
	FullSync bool `json:"fullSync"`
}

type StatusResponse struct {
	Employees   int64            `json:"employees"`
	Accounts    int64            `json:"accounts"`
	Deals       int64            `json:"deals"`
	LastRun     *SyncRunResponse `json:"lastRun"`
	LastSuccess *SyncRunResponse `json:"lastSuccess"`
}

type SyncHistoryResponse struct {
	Items []SyncRunResponse `json:"items"`
}

type SyncRunResponse struct {
	ID            uint    `json:"id"`
	Status        string  `json:"status"`
	TriggeredBy   string  `json:"triggeredBy"`
	DryRun        bool    `json:"dryRun"`
	FullSync      bool    `json:"fullSync"`
	StartedAt     *string `json:"startedAt"`
	FinishedAt    *string `json:"finishedAt"`
	DurationMs    int64   `json:"durationMs"`
	RecordsSynced int     `json:"recordsSynced"`
	WarningCount  int     `json:"warningCount"`
	Message       string  `json:"message,omitempty"`
}

type SyncRunDetailResponse struct {
	SyncRunResponse
	Stats  map[string]int      `json:"stats"`
	Errors []SyncErrorResponse `json:"errors"`
}

type SyncErrorResponse struct {
	EntityType string `json:"entityType"`
	ExternalId string `json:"externalId"`
	ErrorCode  string `json:"errorCode"`
	Message    string `json:"message"`
}

type SyncPubSubPayload struct {
	RunId uint `json:"runId"`
}

type PubSubPushEnvelope struct {
	Message struct {
		Data []byte `json:"data"`
	} `json:"message"`
}
