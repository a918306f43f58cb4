package domain

import "time"

// DisputeStatus enumerates lifecycle states for disputes.
type DisputeStatus string

const (
	DisputeStatusOpen     DisputeStatus = "Open"
	DisputeStatusResolved DisputeStatus = "Resolved"
)

// Priority enumerates SLA urgency tiers. L0 is the most urgent;
// PriorityResolved is the terminal pseudo-tier.
type Priority string

const (
	PriorityL0       Priority = "L0"
	PriorityL1       Priority = "L1"
	PriorityL2       Priority = "L2"
	PriorityL3       Priority = "L3"
	PriorityResolved Priority = "Resolved"
)

// StageNew is the workflow stage assigned to every freshly lodged dispute.
const StageNew = "Stage 1 - New"

// Dispute is the aggregate for customer payment disputes.
type Dispute struct {
	ID                 string
	TicketID           string
	UserID             string
	Amount             float64
	IssueCategory      string
	Channel            string
	Status             DisputeStatus
	Priority           Priority
	Stage              string
	PresentStage       string
	DaysOpen           int
	DaysInPresentStage int
	RecommendedAction  string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
