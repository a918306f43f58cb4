package handlers

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dispute-service/internal/api/dto"
	"github.com/spec-kit/dispute-service/internal/service"
	apperrors "github.com/spec-kit/dispute-service/pkg/util"
)

// UploadHandler accepts bulk dispute spreadsheets.
type UploadHandler struct {
	service  *service.IngestService
	maxBytes int64
}

// NewUploadHandler constructs handler.
func NewUploadHandler(ingestService *service.IngestService, maxBytes int64) *UploadHandler {
	return &UploadHandler{service: ingestService, maxBytes: maxBytes}
}

// UploadWorkbook POST /api/upload.
func (h *UploadHandler) UploadWorkbook(c *fiber.Ctx) error {
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

	result, err := h.service.IngestWorkbook(c.UserContext(), header.Filename, data)
	if err != nil {
		return err
	}
	if result.Parsed == 0 {
		return apperrors.NewValidationError("no valid disputes found in file", map[string]any{"rows": result.Rows})
	}

	return c.JSON(dto.UploadResponse{
		Message:  fmt.Sprintf("Successfully uploaded. Added %d new disputes.", result.Inserted),
		Rows:     result.Rows,
		Parsed:   result.Parsed,
		Inserted: result.Inserted,
		Skipped:  result.Skipped,
		Dropped:  result.Dropped,
	})
}
