// internal/models/deal.go
package models

import "time"

// Pipeline stages.
const (
	StageInbox         = "Inbox"
	StageInitialCall   = "Initial Call"
	StageDD            = "DD"
	StagePartnerReview = "Partner Review"
	StageDecision      = "Decision"
	StagePassed        = "Passed"
)

// Deal statuses.
const (
	DealStatusActive   = "active"
	DealStatusPassed   = "passed"
	DealStatusInvested = "invested"
)

const (
	DefaultDealPriority = 3
	DefaultDealSector   = "Unknown"
)

// Deal is a tracked company. At most one active deal exists per company name.
type Deal struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"companyName"`
	Website     *string   `json:"website,omitempty"`
	Stage       string    `json:"stage"`
	Sector      *string   `json:"sector,omitempty"`
	CheckSize   *float64  `json:"checkSize,omitempty"`
	Priority    int       `json:"priority"`
	Status      string    `json:"status"`
	PassReason  *string   `json:"passReason,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DealFilter narrows a deal search. Zero values are ignored.
type DealFilter struct {
	Query    string `json:"query,omitempty"`
	Stage    string `json:"stage,omitempty"`
	Sector   string `json:"sector,omitempty"`
	Priority int    `json:"priority,omitempty"`
	Status   string `json:"status,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// Contact is a person keyed by email address.
type Contact struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
