package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/dispute-service/internal/domain"
	"github.com/spec-kit/dispute-service/internal/events"
	"github.com/spec-kit/dispute-service/internal/ingest"
	"github.com/spec-kit/dispute-service/internal/persistence"
	"github.com/spec-kit/dispute-service/internal/repository"
	apperrors "github.com/spec-kit/dispute-service/pkg/util"
)

// IngestService turns bulk uploads into stored dispute records.
type IngestService struct {
	disputes   repository.DisputeRepository
	cache      *persistence.Redis
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// IngestDependencies bundles collaborators for the ingest service.
type IngestDependencies struct {
	DisputeRepo repository.DisputeRepository
	Cache       *persistence.Redis
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// BatchResult reports what happened to an uploaded batch. Skipped counts
// tickets already present in the store; dropped counts rows the
// normalizer rejected or in-batch duplicates.
type BatchResult struct {
	Rows     int
	Parsed   int
	Inserted int
	Skipped  int
	Dropped  int
}

// NewIngestService constructs the service.
func NewIngestService(deps IngestDependencies) *IngestService {
	return &IngestService{
		disputes:   deps.DisputeRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// IngestWorkbook decodes an XLSX payload and ingests its rows.
func (s *IngestService) IngestWorkbook(ctx context.Context, fileName string, data []byte) (*BatchResult, error) {
	rows, err := ingest.ParseWorkbook(data)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid spreadsheet file", map[string]any{"file": fileName})
	}
	return s.IngestRows(ctx, fileName, rows)
}

// IngestRows normalizes and persists a batch of loosely typed rows.
// Uploads never overwrite existing tickets: the store is probed for known
// ids first and the insert itself skips on conflict, so re-ingesting the
// same file inserts nothing.
func (s *IngestService) IngestRows(ctx context.Context, fileName string, rows []ingest.Row) (*BatchResult, error) {
	disputes := ingest.NormalizeBatch(rows)

	result := &BatchResult{
		Rows:    len(rows),
		Parsed:  len(disputes),
		Dropped: len(rows) - len(disputes),
	}
	if len(disputes) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(disputes))
	for _, d := range disputes {
		ids = append(ids, d.TicketID)
	}
	existing, err := s.disputes.ExistingTicketIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	fresh := make([]domain.Dispute, 0, len(disputes))
	for _, d := range disputes {
		if _, ok := existing[d.TicketID]; ok {
			result.Skipped++
			continue
		}
		fresh = append(fresh, d)
	}

	inserted, err := s.disputes.InsertMany(ctx, fresh)
	if err != nil {
		return nil, err
	}
	result.Inserted = inserted
	// Conflict-skipped rows from a racing batch surface here as a
	// shortfall between the filtered batch and the inserted count.
	result.Skipped += len(fresh) - inserted

	s.invalidate(ctx)
	if s.logger != nil {
		s.logger.Info("batch ingested",
			zap.String("file", fileName),
			zap.Int("rows", result.Rows),
			zap.Int("parsed", result.Parsed),
			zap.Int("inserted", result.Inserted),
			zap.Int("skipped", result.Skipped))
	}
	s.publish(ctx, events.Event{
		Type: events.EventBatchIngested,
		Payload: events.BatchIngestedPayload{
			FileName: fileName,
			Parsed:   result.Parsed,
			Inserted: result.Inserted,
			Skipped:  result.Skipped,
		},
	})
	return result, nil
}

func (s *IngestService) invalidate(ctx context.Context) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	_ = s.cache.Client.Del(ctx, summaryCacheKey).Err()
}

func (s *IngestService) publish(ctx context.Context, event events.Event) {
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
