package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/dispute-service/internal/domain"
	"github.com/spec-kit/dispute-service/internal/events"
	"github.com/spec-kit/dispute-service/internal/persistence"
	"github.com/spec-kit/dispute-service/internal/repository"
	"github.com/spec-kit/dispute-service/internal/triage"
	apperrors "github.com/spec-kit/dispute-service/pkg/util"
)

const (
	summaryCacheKey = "disputes:summary"
	summaryCacheTTL = 30 * time.Second
)

// DisputeService coordinates dispute workflows.
type DisputeService struct {
	disputes   repository.DisputeRepository
	cache      *persistence.Redis
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// DisputeDependencies bundles collaborators for the dispute service.
type DisputeDependencies struct {
	DisputeRepo repository.DisputeRepository
	Cache       *persistence.Redis
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// DisputeCreateInput describes a direct customer submission.
type DisputeCreateInput struct {
	UserID        string
	Amount        float64
	IssueCategory string
	Channel       string
}

// DisputeUpdateInput carries staff-driven field updates. Nil means
// "leave unchanged".
type DisputeUpdateInput struct {
	Status   *domain.DisputeStatus
	Stage    *string
	Priority *domain.Priority
}

// DisputeListFilter describes dashboard listing filters.
type DisputeListFilter struct {
	UserID     *string
	Statuses   []domain.DisputeStatus
	Priorities []domain.Priority
	SearchTerm *string
	Limit      int
	Offset     int
}

// NewDisputeService constructs the service.
func NewDisputeService(deps DisputeDependencies) *DisputeService {
	return &DisputeService{
		disputes:   deps.DisputeRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// CreateDispute lodges a fresh dispute. New disputes start at day zero in
// stage 1, so the tier comes from amount alone.
func (s *DisputeService) CreateDispute(ctx context.Context, input DisputeCreateInput) (*domain.Dispute, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, apperrors.NewValidationError("userId required", nil)
	}
	if input.Amount < 0 {
		return nil, apperrors.NewValidationError("amount must be non-negative", nil)
	}
	if strings.TrimSpace(input.IssueCategory) == "" || strings.TrimSpace(input.Channel) == "" {
		return nil, apperrors.NewValidationError("issueCategory and channel required", nil)
	}

	priority := triage.Classify(0, input.Amount)
	dispute := &domain.Dispute{
		TicketID:          generateTicketID(),
		UserID:            strings.TrimSpace(input.UserID),
		Amount:            input.Amount,
		IssueCategory:     strings.TrimSpace(input.IssueCategory),
		Channel:           strings.TrimSpace(input.Channel),
		Status:            domain.DisputeStatusOpen,
		Priority:          priority,
		Stage:             domain.StageNew,
		RecommendedAction: triage.Recommend(domain.StageNew, priority),
	}

	if err := s.disputes.Create(ctx, dispute); err != nil {
		return nil, err
	}
	s.invalidateSummary(ctx)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventDisputeCreated,
		TicketID: dispute.TicketID,
		Payload: events.DisputeCreatedPayload{
			UserID:        dispute.UserID,
			Amount:        dispute.Amount,
			IssueCategory: dispute.IssueCategory,
			Channel:       dispute.Channel,
			Priority:      dispute.Priority,
		},
	})
	return dispute, nil
}

// GetDispute fetches one dispute by ticket id.
func (s *DisputeService) GetDispute(ctx context.Context, ticketID string) (*domain.Dispute, error) {
	return s.disputes.GetByTicketID(ctx, ticketID)
}

// ListDisputes returns disputes matching the filter, newest first.
func (s *DisputeService) ListDisputes(ctx context.Context, filter DisputeListFilter) ([]domain.Dispute, error) {
	repoFilter := repository.DisputeFilter{
		UserID:     filter.UserID,
		Statuses:   filter.Statuses,
		Priorities: filter.Priorities,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}
	return s.disputes.ListWithFilter(ctx, repoFilter)
}

// UpdateDispute applies staff field updates. Any change to stage or
// priority re-derives the recommended action; the stored action is never
// hand-edited independently of those two fields.
func (s *DisputeService) UpdateDispute(ctx context.Context, ticketID string, input DisputeUpdateInput) (*domain.Dispute, error) {
	dispute, err := s.disputes.GetByTicketID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus, oldStage, oldPriority := dispute.Status, dispute.Stage, dispute.Priority

	if input.Status != nil {
		dispute.Status = *input.Status
	}
	if input.Stage != nil {
		dispute.Stage = *input.Stage
	}
	if input.Priority != nil {
		dispute.Priority = *input.Priority
	}

	if dispute.Stage != oldStage || dispute.Priority != oldPriority {
		dispute.RecommendedAction = triage.Recommend(dispute.Stage, dispute.Priority)
	}

	if err := s.disputes.Update(ctx, dispute); err != nil {
		return nil, err
	}
	s.invalidateSummary(ctx)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventDisputeUpdated,
		TicketID: dispute.TicketID,
		Payload: events.DisputeUpdatedPayload{
			OldStatus:   oldStatus,
			NewStatus:   dispute.Status,
			OldPriority: oldPriority,
			NewPriority: dispute.Priority,
			OldStage:    oldStage,
			NewStage:    dispute.Stage,
			Action:      dispute.RecommendedAction,
		},
	})
	return dispute, nil
}

// Summary returns dashboard counters, served from cache when fresh.
func (s *DisputeService) Summary(ctx context.Context) (*repository.DisputeSummary, error) {
	if cached := s.cachedSummary(ctx); cached != nil {
		return cached, nil
	}

	summary, err := s.disputes.Summary(ctx)
	if err != nil {
		return nil, err
	}
	s.storeSummary(ctx, summary)
	return summary, nil
}

// Seed inserts the sample dispute corpus. Re-seeding is harmless: the
// conflict-skip insert leaves existing tickets untouched.
func (s *DisputeService) Seed(ctx context.Context) (int, error) {
	inserted, err := s.disputes.InsertMany(ctx, sampleDisputes())
	if err != nil {
		return 0, err
	}
	s.invalidateSummary(ctx)
	return inserted, nil
}

func (s *DisputeService) cachedSummary(ctx context.Context) *repository.DisputeSummary {
	if s.cache == nil || s.cache.Client == nil {
		return nil
	}
	data, err := s.cache.Client.Get(ctx, summaryCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var summary repository.DisputeSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil
	}
	return &summary
}

func (s *DisputeService) storeSummary(ctx context.Context, summary *repository.DisputeSummary) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, summaryCacheKey, data, summaryCacheTTL).Err(); err != nil && s.logger != nil {
		s.logger.Debug("summary cache write failed", zap.Error(err))
	}
}

func (s *DisputeService) invalidateSummary(ctx context.Context) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	_ = s.cache.Client.Del(ctx, summaryCacheKey).Err()
}

func (s *DisputeService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketID() string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("WEB-%d-%s", time.Now().UnixMilli(), fragment)
}

func sampleDisputes() []domain.Dispute {
	return []domain.Dispute{
		{
			TicketID: "WEB-1717123456", UserID: "CUST-001", Amount: 15000,
			IssueCategory: "Amount Deducted but not Credited", Channel: "UPI",
			Status: domain.DisputeStatusOpen, Priority: domain.PriorityL2,
			Stage: domain.StageNew, RecommendedAction: triage.ActionStandardReview,
		},
		{
			TicketID: "WEB-1717123457", UserID: "CUST-002", Amount: 75000,
			IssueCategory: "Fraudulent Transaction", Channel: "Card",
			Status: domain.DisputeStatusOpen, Priority: domain.PriorityL0,
			Stage: domain.StageNew, RecommendedAction: triage.ActionUrgent,
		},
		{
			TicketID: "WEB-1717123458", UserID: "CUST-003", Amount: 500,
			IssueCategory: "Transaction Failed", Channel: "NetBanking",
			Status: domain.DisputeStatusOpen, Priority: domain.PriorityL3,
			Stage: "Stage 3 - Customer Info Needed", RecommendedAction: triage.ActionCustomerInfo,
		},
		{
			TicketID: "WEB-1717123459", UserID: "CUST-004", Amount: 120000,
			IssueCategory: "Double Debit", Channel: "Card",
			Status: domain.DisputeStatusOpen, Priority: domain.PriorityL0,
			Stage: "Stage 2 - Investigating", RecommendedAction: triage.ActionUrgent,
		},
		{
			TicketID: "WEB-1717123460", UserID: "CUST-005", Amount: 2500,
			IssueCategory: "Wrong Beneficiary", Channel: "UPI",
			Status: domain.DisputeStatusOpen, Priority: domain.PriorityL3,
			Stage: "Stage 4 - Reversal Pending", RecommendedAction: triage.ActionMonitorRevert,
		},
	}
}
