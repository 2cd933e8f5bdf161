package core

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteVisitReport(t *testing.T) {
	rows := []VisitCount{
		{Date: "2024-03-04", UserID: "u3", FullName: "Meena", Email: "meena@example.com", Region: "Karnataka", Visits: 1},
		{Date: "2024-03-05", UserID: "u1", FullName: "Asha", Email: "asha@example.com", Region: "Karnataka", Visits: 2},
		{Date: "2024-03-06", UserID: "u1", FullName: "Asha", Email: "asha@example.com", Region: "Karnataka", Visits: 3},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteVisitReport(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{VisitsSheet, SummarySheet}, f.GetSheetList())

	visits, err := f.GetRows(VisitsSheet)
	require.NoError(t, err)
	require.Len(t, visits, 4)
	assert.Equal(t, []string{"Date", "Name", "Email", "Region", "Visits"}, visits[0])
	assert.Equal(t, []string{"2024-03-05", "Asha", "asha@example.com", "Karnataka", "2"}, visits[2])

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"Asha", "asha@example.com", "Karnataka", "2", "5"}, summary[1])
	assert.Equal(t, []string{"Meena", "meena@example.com", "Karnataka", "1", "1"}, summary[2])
}

func TestWriteVisitReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVisitReport(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	visits, err := f.GetRows(VisitsSheet)
	require.NoError(t, err)
	assert.Len(t, visits, 1)
}
