package ingest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	file := excelize.NewFile()
	sheet := file.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, file.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	return buf.Bytes()
}

func TestParseWorkbookFirstRowHeader(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"Ticket ID", "Amount (in INR)", "Days Open"},
		{"TKT-1", "15,000", "5"},
		{"TKT-2", "200", "1"},
	})

	rows, err := ParseWorkbook(data)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "TKT-1", rows[0]["Ticket ID"])
	assert.Equal(t, "15,000", rows[0]["Amount (in INR)"])
}

func TestParseWorkbookSkipsBannerRows(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"Dispute Export - Q3"},
		{"Generated", "2024-09-01"},
		{"Ticket ID", "Amount", "Days Open", "Stage"},
		{"TKT-9", "75000", "30", "Stage 2 - Investigating"},
	})

	rows, err := ParseWorkbook(data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "TKT-9", rows[0]["Ticket ID"])
	assert.Equal(t, "Stage 2 - Investigating", rows[0]["Stage"])
}

func TestParseWorkbookRejectsGarbage(t *testing.T) {
	_, err := ParseWorkbook([]byte("definitely not a zip archive"))
	assert.Error(t, err)
}
