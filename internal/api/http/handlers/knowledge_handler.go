package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dispute-service/internal/api/dto"
	"github.com/spec-kit/dispute-service/internal/service"
	apperrors "github.com/spec-kit/dispute-service/pkg/util"
)

// KnowledgeHandler accepts policy documents for the retrieval index.
type KnowledgeHandler struct {
	service  *service.KnowledgeService
	maxBytes int64
}

// NewKnowledgeHandler constructs handler.
func NewKnowledgeHandler(knowledgeService *service.KnowledgeService, maxBytes int64) *KnowledgeHandler {
	return &KnowledgeHandler{service: knowledgeService, maxBytes: maxBytes}
}

// IngestDocument POST /api/rag-ingest.
func (h *KnowledgeHandler) IngestDocument(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("no file uploaded", nil)
	}
	if h.maxBytes > 0 && header.Size > h.maxBytes {
		return apperrors.NewValidationError("file too large", map[string]any{"max_bytes": h.maxBytes})
	}

	file, err := header.Open()
	if err != nil {
		return apperrors.NewValidationError("could not read uploaded file", nil)
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	chunks, err := h.service.IngestDocument(c.UserContext(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		return err
	}
	return c.JSON(dto.KnowledgeIngestResponse{
		Message:         "Ingestion successful",
		ChunksProcessed: chunks,
	})
}
