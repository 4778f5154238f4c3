package export

import (
	"bytes"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mbodj/packhouse/internal/domain/models"
	"github.com/mbodj/packhouse/internal/service/reporting"
)

func sampleEntries() []models.PackingLogEntry {
	date := time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)
	created := time.Date(2025, 11, 3, 16, 30, 0, 0, time.UTC)
	return []models.PackingLogEntry{
		{
			ID: "entry-000001", Date: date, CreatedAt: created,
			Minutes: 120, People: 2, FinishedPunnets: 200, WasteOrDowntime: 5, Note: "line 3",
			HourlyRate: 20, LabourHours: 4, PunnetsPerLabourHour: 50, LabourCostPerPunnet: 0.4,
		},
		{
			ID: "entry-000002", Date: date, CreatedAt: created,
			Minutes: 60, People: 1, FinishedPunnets: 80, WasteOrDowntime: 0,
			HourlyRate: 20, LabourHours: 1, PunnetsPerLabourHour: 80, LabourCostPerPunnet: 0.25,
		},
		{
			ID: "entry-000003", Date: date, CreatedAt: created,
			Minutes: 30, People: 4, FinishedPunnets: 120, WasteOrDowntime: 1.5,
			HourlyRate: 20, LabourHours: 2, PunnetsPerLabourHour: 60, LabourCostPerPunnet: 0.3333,
		},
	}
}

func TestWorkbookSheetsAndRowCount(t *testing.T) {
	entries := sampleEntries()
	data, err := Workbook(entries, reporting.BuildSummary(entries))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{RawLogSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(RawLogSheet)
	require.NoError(t, err)
	require.Len(t, rows, len(entries)+1, "header plus one row per entry")
	assert.Equal(t, RawLogHeader, rows[0])

	// Insertion order is preserved.
	assert.Equal(t, "entry-000001", rows[1][0])
	assert.Equal(t, "entry-000002", rows[2][0])
	assert.Equal(t, "entry-000003", rows[3][0])
	assert.Equal(t, "2025-11-03", rows[1][1])
	assert.Equal(t, "line 3", rows[1][6])
}

func TestWorkbookSummaryMatchesHandComputedAggregates(t *testing.T) {
	entries := sampleEntries()
	data, err := Workbook(entries, reporting.BuildSummary(entries))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 7)

	values := map[string]string{}
	for _, row := range rows[1:] {
		require.Len(t, row, 2)
		values[row[0]] = row[1]
	}

	assert.Equal(t, "3", values["entries"])
	assertCell(t, values, "total_labour_hours", 7)          // 4 + 1 + 2
	assertCell(t, values, "total_finished_punnets", 400)    // 200 + 80 + 120
	assertCell(t, values, "total_waste_or_downtime", 6.5)   // 5 + 0 + 1.5
	assertCell(t, values, "overall_punnets_per_labour_hour", 400.0/7)
	assertCell(t, values, "avg_labour_cost_per_punnet", (0.4+0.25+0.3333)/3)
}

func TestWorkbookZeroEntries(t *testing.T) {
	data, err := Workbook(nil, reporting.BuildSummary(nil))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(RawLogSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1, "headers only")
	assert.Equal(t, RawLogHeader, rows[0])

	summaryRows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.NotEmpty(t, summaryRows)

	for _, row := range summaryRows[1:] {
		switch row[0] {
		case "entries", "total_labour_hours", "total_finished_punnets", "total_waste_or_downtime":
			assert.Equal(t, "0", row[1])
		case "overall_punnets_per_labour_hour", "avg_labour_cost_per_punnet":
			// Undefined aggregates stay blank.
			if len(row) > 1 {
				assert.Empty(t, row[1])
			}
		}
	}
}

func assertCell(t *testing.T, values map[string]string, key string, want float64) {
	t.Helper()
	got, err := strconv.ParseFloat(values[key], 64)
	require.NoError(t, err, "summary metric %s", key)
	assert.InDelta(t, want, got, 1e-3, "summary metric %s", key)
}
