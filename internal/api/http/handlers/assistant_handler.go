package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dispute-service/internal/api/dto"
	"github.com/spec-kit/dispute-service/internal/llm"
	"github.com/spec-kit/dispute-service/internal/service"
	apperrors "github.com/spec-kit/dispute-service/pkg/util"
)

// AssistantHandler exposes the chat assistant endpoints.
type AssistantHandler struct {
	service *service.AssistantService
}

// NewAssistantHandler constructs handler.
func NewAssistantHandler(assistantService *service.AssistantService) *AssistantHandler {
	return &AssistantHandler{service: assistantService}
}

// Chat POST /api/chat.
func (h *AssistantHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	reply, err := h.service.Chat(c.UserContext(), req.Message, toLLMMessages(req.History))
	if err != nil {
		return err
	}
	return c.JSON(dto.ChatResponse{
		Role:           "assistant",
		Content:        reply.Content,
		ShouldEscalate: reply.ShouldEscalate,
		UsedRAG:        reply.UsedRetrieval,
	})
}

// ExtractDisputeDetails POST /api/extract-dispute-details.
func (h *AssistantHandler) ExtractDisputeDetails(c *fiber.Ctx) error {
	var req dto.ExtractRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	details, err := h.service.ExtractDisputeDetails(c.UserContext(), toLLMMessages(req.History))
	if err != nil {
		return err
	}
	return c.JSON(dto.ExtractResponse{
		Amount:        details.Amount,
		IssueCategory: details.IssueCategory,
		Channel:       details.Channel,
		Priority:      details.Priority,
	})
}

func toLLMMessages(history []dto.ChatMessage) []llm.Message {
	msgs := make([]llm.Message, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
	}
	return msgs
}
