package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dispute-service/internal/api/dto"
	"github.com/spec-kit/dispute-service/internal/domain"
	"github.com/spec-kit/dispute-service/internal/service"
	apperrors "github.com/spec-kit/dispute-service/pkg/util"
)

// DisputesHandler manages dispute CRUD endpoints.
type DisputesHandler struct {
	service *service.DisputeService
}

// NewDisputesHandler constructs handler.
func NewDisputesHandler(disputeService *service.DisputeService) *DisputesHandler {
	return &DisputesHandler{service: disputeService}
}

// CreateDispute POST /api/disputes.
func (h *DisputesHandler) CreateDispute(c *fiber.Ctx) error {
	var req dto.CreateDisputeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dispute, err := h.service.CreateDispute(c.UserContext(), service.DisputeCreateInput{
		UserID:        req.UserID,
		Amount:        req.Amount,
		IssueCategory: req.IssueCategory,
		Channel:       req.Channel,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromDispute(dispute))
}

// ListDisputes GET /api/disputes.
func (h *DisputesHandler) ListDisputes(c *fiber.Ctx) error {
	disputes, err := h.service.ListDisputes(c.UserContext(), parseDisputeQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.DisputeResponse, 0, len(disputes))
	for i := range disputes {
		items = append(items, dto.FromDispute(&disputes[i]))
	}
	return c.JSON(items)
}

// GetDispute GET /api/disputes/:ticketId.
func (h *DisputesHandler) GetDispute(c *fiber.Ctx) error {
	dispute, err := h.service.GetDispute(c.UserContext(), c.Params("ticketId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.FromDispute(dispute))
}

// UpdateDispute PATCH /api/disputes/:ticketId.
func (h *DisputesHandler) UpdateDispute(c *fiber.Ctx) error {
	var req dto.UpdateDisputeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.DisputeUpdateInput{}
	if req.Status != nil {
		status := domain.DisputeStatus(strings.TrimSpace(*req.Status))
		if status != domain.DisputeStatusOpen && status != domain.DisputeStatusResolved {
			return apperrors.NewValidationError("invalid status", map[string]any{"status": *req.Status})
		}
		input.Status = &status
	}
	if req.Stage != nil {
		stage := strings.TrimSpace(*req.Stage)
		if stage == "" {
			return apperrors.NewValidationError("stage cannot be empty", nil)
		}
		input.Stage = &stage
	}
	if req.Priority != nil {
		priority := domain.Priority(strings.TrimSpace(*req.Priority))
		if !validPriority(priority) {
			return apperrors.NewValidationError("invalid priority", map[string]any{"priority": *req.Priority})
		}
		input.Priority = &priority
	}

	dispute, err := h.service.UpdateDispute(c.UserContext(), c.Params("ticketId"), input)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromDispute(dispute))
}

// Summary GET /api/disputes/summary.
func (h *DisputesHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext())
	if err != nil {
		return err
	}
	byPriority := make(map[string]int64, len(summary.ByPriority))
	for priority, count := range summary.ByPriority {
		byPriority[string(priority)] = count
	}
	return c.JSON(dto.SummaryResponse{
		Total:      summary.Total,
		Open:       summary.Open,
		Resolved:   summary.Resolved,
		ByPriority: byPriority,
	})
}

// Seed POST /api/seed.
func (h *DisputesHandler) Seed(c *fiber.Ctx) error {
	inserted, err := h.service.Seed(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":  "Database seeded successfully",
		"inserted": inserted,
	})
}

func parseDisputeQuery(c *fiber.Ctx) service.DisputeListFilter {
	filter := service.DisputeListFilter{}
	if userID := c.Query("userId"); userID != "" {
		filter.UserID = &userID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.DisputeStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.Priority(strings.TrimSpace(part)))
		}
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func validPriority(p domain.Priority) bool {
	switch p {
	case domain.PriorityL0, domain.PriorityL1, domain.PriorityL2, domain.PriorityL3, domain.PriorityResolved:
		return true
	default:
		return false
	}
}
