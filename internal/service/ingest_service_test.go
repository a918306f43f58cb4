package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/dispute-service/internal/domain"
	"github.com/spec-kit/dispute-service/internal/ingest"
)

func newIngestService(repo *fakeDisputeRepository) *IngestService {
	return NewIngestService(IngestDependencies{DisputeRepo: repo})
}

func TestIngestRowsInsertsNormalizedBatch(t *testing.T) {
	repo := newFakeDisputeRepository()
	svc := newIngestService(repo)

	rows := []ingest.Row{
		{"Ticket ID": "TKT-100", "Amount (in INR)": "15,000", "Days Open": "5"},
		{"Ticket ID": "TKT-101", "Amount": "75000", "Days Open": "30"},
		{},
	}
	result, err := svc.IngestRows(context.Background(), "export.xlsx", rows)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Rows)
	assert.Equal(t, 2, result.Parsed)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 1, result.Dropped)
	assert.Zero(t, result.Skipped)

	stored, err := repo.GetByTicketID(context.Background(), "TKT-101")
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityL0, stored.Priority)
	assert.Equal(t, "UNKNOWN", stored.UserID)
}

func TestIngestRowsReuploadInsertsNothing(t *testing.T) {
	repo := newFakeDisputeRepository()
	svc := newIngestService(repo)

	rows := []ingest.Row{
		{"Ticket ID": "TKT-200", "Amount": "100"},
		{"Ticket ID": "TKT-201", "Amount": "200"},
	}
	first, err := svc.IngestRows(context.Background(), "export.xlsx", rows)
	require.NoError(t, err)
	require.Equal(t, 2, first.Inserted)

	second, err := svc.IngestRows(context.Background(), "export.xlsx", rows)
	require.NoError(t, err)
	assert.Zero(t, second.Inserted, "first write wins")
	assert.Equal(t, 2, second.Skipped)
}

func TestIngestRowsExistingTicketsUntouched(t *testing.T) {
	repo := newFakeDisputeRepository()
	disputeSvc := newDisputeService(repo)
	ingestSvc := newIngestService(repo)

	created, err := disputeSvc.CreateDispute(context.Background(), DisputeCreateInput{
		UserID: "CUST-1", Amount: 300, IssueCategory: "Fraudulent Transaction", Channel: "Card",
	})
	require.NoError(t, err)

	result, err := ingestSvc.IngestRows(context.Background(), "export.xlsx", []ingest.Row{
		{"Ticket ID": created.TicketID, "Amount": "999999"},
		{"Ticket ID": "TKT-300", "Amount": "50"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, result.Skipped)

	stored, err := repo.GetByTicketID(context.Background(), created.TicketID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, stored.Amount, "upload never overwrites an existing ticket")
	assert.Equal(t, "CUST-1", stored.UserID)
}

func TestIngestRowsAllEmptyBatch(t *testing.T) {
	svc := newIngestService(newFakeDisputeRepository())

	result, err := svc.IngestRows(context.Background(), "blank.xlsx", []ingest.Row{{}, {"  ": ""}})
	require.NoError(t, err)
	assert.Zero(t, result.Parsed)
	assert.Zero(t, result.Inserted)
	assert.Equal(t, 2, result.Dropped)
}

func TestIngestWorkbookRejectsGarbage(t *testing.T) {
	svc := newIngestService(newFakeDisputeRepository())
	_, err := svc.IngestWorkbook(context.Background(), "bad.xlsx", []byte("not a workbook"))
	assert.Error(t, err)
}
