package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/spec-kit/dispute-service/internal/events"
	"github.com/spec-kit/dispute-service/internal/llm"
	"github.com/spec-kit/dispute-service/internal/vector"
	apperrors "github.com/spec-kit/dispute-service/pkg/util"
)

const (
	chunkSize       = 1000
	upsertBatchSize = 50
)

// KnowledgeService indexes policy documents for retrieval-augmented chat.
type KnowledgeService struct {
	model      llm.Client
	index      vector.Index
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewKnowledgeService constructs the service.
func NewKnowledgeService(model llm.Client, index vector.Index, dispatcher events.Dispatcher, logger *zap.Logger) *KnowledgeService {
	return &KnowledgeService{model: model, index: index, dispatcher: dispatcher, logger: logger}
}

// IngestDocument extracts text from a PDF or plain-text upload, chunks
// it, embeds every chunk and upserts the vectors. Returns the number of
// chunks processed.
func (s *KnowledgeService) IngestDocument(ctx context.Context, fileName, contentType string, data []byte) (int, error) {
	if s.index == nil {
		return 0, apperrors.NewDomainError("RETRIEVAL_DISABLED", "vector index not configured", 503, nil)
	}

	var text string
	switch {
	case contentType == "application/pdf" || strings.HasSuffix(strings.ToLower(fileName), ".pdf"):
		extracted, err := extractPDFText(data)
		if err != nil {
			return 0, apperrors.NewValidationError("could not read PDF", map[string]any{"file": fileName})
		}
		text = extracted
	case strings.HasPrefix(contentType, "text/") || strings.HasSuffix(strings.ToLower(fileName), ".txt"):
		text = string(data)
	default:
		return 0, apperrors.NewValidationError("unsupported file type, only PDF and TXT are supported", map[string]any{"file": fileName})
	}

	chunks := chunkText(text, chunkSize)
	if len(chunks) == 0 {
		return 0, apperrors.NewValidationError("document contains no text", map[string]any{"file": fileName})
	}

	points := make([]vector.Point, 0, len(chunks))
	for i, chunk := range chunks {
		embedding, err := s.model.Embed(ctx, chunk)
		if err != nil {
			return 0, err
		}
		points = append(points, vector.Point{
			ID:     fmt.Sprintf("%s-%d", fileName, i),
			Values: embedding,
			Metadata: map[string]string{
				"text":       chunk,
				"filename":   fileName,
				"chunkIndex": fmt.Sprintf("%d", i),
			},
		})
	}

	for start := 0; start < len(points); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(points) {
			end = len(points)
		}
		if err := s.index.Upsert(ctx, points[start:end]); err != nil {
			return 0, err
		}
	}

	if s.logger != nil {
		s.logger.Info("knowledge document indexed",
			zap.String("file", fileName),
			zap.Int("chunks", len(chunks)))
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventKnowledgeIndexed,
			Timestamp: time.Now(),
			Payload:   events.KnowledgeIndexedPayload{FileName: fileName, Chunks: len(chunks)},
		})
	}
	return len(chunks), nil
}

func chunkText(text string, size int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	chunks := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var out strings.Builder
	for page := 1; page <= reader.NumPage(); page++ {
		p := reader.Page(page)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		out.WriteString(content)
		out.WriteString("\n")
	}
	return out.String(), nil
}
