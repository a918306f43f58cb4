package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/dispute-service/internal/domain"
	"github.com/spec-kit/dispute-service/internal/triage"
)

func TestNormalizeDefaultsMissingFields(t *testing.T) {
	dispute, ok := Normalize(Row{"Amount (in INR)": "15,000"}, 0)
	require.True(t, ok)

	assert.NotEmpty(t, dispute.TicketID, "ticket id must be synthesized")
	assert.Equal(t, "UNKNOWN", dispute.UserID)
	assert.Equal(t, 15000.0, dispute.Amount)
	assert.Equal(t, "Unspecified", dispute.IssueCategory)
	assert.Equal(t, "Web", dispute.Channel)
	assert.Equal(t, domain.DisputeStatusOpen, dispute.Status)
	assert.Equal(t, domain.StageNew, dispute.Stage)
	assert.Equal(t, 0, dispute.DaysOpen)
	assert.Equal(t, triage.Classify(0, 15000), dispute.Priority)
	assert.Equal(t, triage.Recommend(dispute.Stage, dispute.Priority), dispute.RecommendedAction)
}

func TestNormalizeAliasFallback(t *testing.T) {
	// Trailing whitespace and case drift across the three match tiers.
	row := Row{
		"Ticket ID ":  "TKT-9",
		"amount":      "600",
		" days open ": "14",
		"CHANNEL":     "UPI",
	}
	dispute, ok := Normalize(row, 3)
	require.True(t, ok)

	assert.Equal(t, "TKT-9", dispute.TicketID)
	assert.Equal(t, 600.0, dispute.Amount)
	assert.Equal(t, 14, dispute.DaysOpen)
	assert.Equal(t, "UPI", dispute.Channel)
	assert.Equal(t, domain.PriorityL1, dispute.Priority)
}

func TestNormalizeExplicitPriorityWins(t *testing.T) {
	row := Row{
		"Ticket ID":    "TKT-1",
		"SLA Priority": "L1",
		"Days Open":    "1",
	}
	dispute, ok := Normalize(row, 0)
	require.True(t, ok)
	assert.Equal(t, domain.PriorityL1, dispute.Priority)
	assert.Equal(t, triage.ActionStandardReview, dispute.RecommendedAction)
}

func TestNormalizeUnknownPriorityReclassified(t *testing.T) {
	row := Row{
		"Ticket ID":    "TKT-10",
		"SLA Priority": "HIGH",
		"Days Open":    "14",
	}
	dispute, ok := Normalize(row, 0)
	require.True(t, ok)
	assert.Equal(t, domain.PriorityL1, dispute.Priority, "unrecognized tier falls back to age-based classification")
}

func TestNormalizeUnparseableNumbersDefaultToZero(t *testing.T) {
	row := Row{
		"Ticket ID": "TKT-2",
		"Amount":    "not a number",
		"Days Open": "??",
	}
	dispute, ok := Normalize(row, 0)
	require.True(t, ok)
	assert.Zero(t, dispute.Amount)
	assert.Zero(t, dispute.DaysOpen)
	assert.Equal(t, domain.PriorityL3, dispute.Priority)
}

func TestNormalizeNegativeInputsClampToZero(t *testing.T) {
	row := Row{
		"Ticket ID": "TKT-3",
		"Amount":    "-500",
		"Days Open": "-4",
	}
	dispute, ok := Normalize(row, 0)
	require.True(t, ok)
	assert.Zero(t, dispute.Amount)
	assert.Zero(t, dispute.DaysOpen)
}

func TestNormalizeDropsEmptyRows(t *testing.T) {
	_, ok := Normalize(Row{}, 0)
	assert.False(t, ok)

	_, ok = Normalize(Row{"Amount": "", " ": "x", "Stage": "   "}, 1)
	assert.False(t, ok)
}

func TestNormalizeIgnoresSuppliedAction(t *testing.T) {
	row := Row{
		"Ticket ID":          "TKT-4",
		"Stage":              "Stage 3 - Customer Info Needed",
		"Days Open":          "5",
		"Recommended Action": "hand edited",
	}
	dispute, ok := Normalize(row, 0)
	require.True(t, ok)
	assert.Equal(t, triage.ActionCustomerInfo, dispute.RecommendedAction)
}

func TestNormalizeActionIdempotent(t *testing.T) {
	row := Row{
		"Ticket ID": "TKT-5",
		"Stage":     "Stage 4 - Reversal Pending",
		"Days Open": "8",
		"Amount":    "900",
	}
	first, ok := Normalize(row, 0)
	require.True(t, ok)

	// Re-normalizing the already-normalized record with unchanged
	// stage/priority must yield the same action string.
	again := Row{
		"Ticket ID": first.TicketID,
		"Stage":     first.Stage,
		"Priority":  string(first.Priority),
		"Days Open": "8",
		"Amount":    "900",
	}
	second, ok := Normalize(again, 0)
	require.True(t, ok)
	assert.Equal(t, first.RecommendedAction, second.RecommendedAction)
}

func TestNormalizeSynthesizedIDsUniqueWithinBatch(t *testing.T) {
	rows := make([]Row, 50)
	for i := range rows {
		rows[i] = Row{"Amount": "10"}
	}
	disputes := NormalizeBatch(rows)
	require.Len(t, disputes, 50)

	seen := map[string]struct{}{}
	for _, d := range disputes {
		_, dup := seen[d.TicketID]
		assert.False(t, dup, "duplicate synthesized id %s", d.TicketID)
		seen[d.TicketID] = struct{}{}
	}
}

func TestNormalizeBatchDropsInBatchDuplicates(t *testing.T) {
	rows := []Row{
		{"Ticket ID": "TKT-7", "Amount": "100"},
		{"Ticket ID": "TKT-7", "Amount": "999"},
		{},
		{"Ticket ID": "TKT-8", "Amount": "200"},
	}
	disputes := NormalizeBatch(rows)
	require.Len(t, disputes, 2)
	assert.Equal(t, "TKT-7", disputes[0].TicketID)
	assert.Equal(t, 100.0, disputes[0].Amount, "first write wins")
	assert.Equal(t, "TKT-8", disputes[1].TicketID)
}
