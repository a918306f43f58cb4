package events

import (
	"time"

	"github.com/spec-kit/dispute-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDisputeCreated   EventType = "dispute_created"
	EventDisputeUpdated   EventType = "dispute_updated"
	EventBatchIngested    EventType = "batch_ingested"
	EventKnowledgeIndexed EventType = "knowledge_indexed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// DisputeCreatedPayload payload.
type DisputeCreatedPayload struct {
	UserID        string          `json:"user_id"`
	Amount        float64         `json:"amount"`
	IssueCategory string          `json:"issue_category"`
	Channel       string          `json:"channel"`
	Priority      domain.Priority `json:"priority"`
}

// DisputeUpdatedPayload payload.
type DisputeUpdatedPayload struct {
	OldStatus   domain.DisputeStatus `json:"old_status"`
	NewStatus   domain.DisputeStatus `json:"new_status"`
	OldPriority domain.Priority      `json:"old_priority"`
	NewPriority domain.Priority      `json:"new_priority"`
	OldStage    string               `json:"old_stage"`
	NewStage    string               `json:"new_stage"`
	Action      string               `json:"action"`
}

// BatchIngestedPayload payload.
type BatchIngestedPayload struct {
	FileName string `json:"file_name"`
	Parsed   int    `json:"parsed"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
}

// KnowledgeIndexedPayload payload.
type KnowledgeIndexedPayload struct {
	FileName string `json:"file_name"`
	Chunks   int    `json:"chunks"`
}
