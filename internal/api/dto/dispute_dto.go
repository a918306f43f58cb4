package dto

import (
	"time"

	"github.com/spec-kit/dispute-service/internal/domain"
)

// CreateDisputeRequest is the customer submission payload.
type CreateDisputeRequest struct {
	UserID        string  `json:"userId"`
	Amount        float64 `json:"amount"`
	IssueCategory string  `json:"issueCategory"`
	Channel       string  `json:"channel"`
}

// UpdateDisputeRequest carries staff field updates. Absent fields stay
// unchanged; recommendedAction is derived server-side and not accepted.
type UpdateDisputeRequest struct {
	Status   *string `json:"status"`
	Stage    *string `json:"stage"`
	Priority *string `json:"priority"`
}

// DisputeResponse is the wire form of one dispute.
type DisputeResponse struct {
	TicketID           string    `json:"ticketId"`
	UserID             string    `json:"userId"`
	Amount             float64   `json:"amount"`
	IssueCategory      string    `json:"issueCategory"`
	Channel            string    `json:"channel"`
	Status             string    `json:"status"`
	Priority           string    `json:"priority"`
	Stage              string    `json:"stage"`
	PresentStage       string    `json:"presentStage,omitempty"`
	DaysOpen           int       `json:"daysOpen"`
	DaysInPresentStage int       `json:"daysInPresentStage"`
	RecommendedAction  string    `json:"recommendedAction"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// FromDispute maps the domain aggregate to its wire form.
func FromDispute(d *domain.Dispute) DisputeResponse {
	return DisputeResponse{
		TicketID:           d.TicketID,
		UserID:             d.UserID,
		Amount:             d.Amount,
		IssueCategory:      d.IssueCategory,
		Channel:            d.Channel,
		Status:             string(d.Status),
		Priority:           string(d.Priority),
		Stage:              d.Stage,
		PresentStage:       d.PresentStage,
		DaysOpen:           d.DaysOpen,
		DaysInPresentStage: d.DaysInPresentStage,
		RecommendedAction:  d.RecommendedAction,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

// UploadResponse reports batch ingestion counts.
type UploadResponse struct {
	Message  string `json:"message"`
	Rows     int    `json:"rows"`
	Parsed   int    `json:"parsed"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
	Dropped  int    `json:"dropped"`
}

// SummaryResponse carries dashboard counters.
type SummaryResponse struct {
	Total      int64            `json:"total"`
	Open       int64            `json:"open"`
	Resolved   int64            `json:"resolved"`
	ByPriority map[string]int64 `json:"byPriority"`
}

// ChatMessage is one turn of assistant conversation on the wire.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the assistant invocation payload.
type ChatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history"`
}

// ChatResponse is the assistant reply.
type ChatResponse struct {
	Role           string `json:"role"`
	Content        string `json:"content"`
	ShouldEscalate bool   `json:"shouldEscalate"`
	UsedRAG        bool   `json:"usedRAG"`
}

// ExtractRequest asks for dispute fields from a chat transcript.
type ExtractRequest struct {
	History []ChatMessage `json:"history"`
}

// ExtractResponse returns the extracted fields; amount is null when the
// conversation never named one.
type ExtractResponse struct {
	Amount        *float64 `json:"amount"`
	IssueCategory string   `json:"issueCategory"`
	Channel       string   `json:"channel"`
	Priority      string   `json:"priority"`
}

// KnowledgeIngestResponse reports document indexing.
type KnowledgeIngestResponse struct {
	Message         string `json:"message"`
	ChunksProcessed int    `json:"chunksProcessed"`
}
