package export

import (
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mbodj/packhouse/internal/domain/models"
)

// ErrExport flags a failure while producing the workbook.
var ErrExport = errors.New("export failed")

const (
	// Sheet names are part of the export contract.
	RawLogSheet  = "Raw_Log"
	SummarySheet = "Summary"

	dateLayout = "2006-01-02"
)

// RawLogHeader lists the Raw_Log columns; names match the entry fields.
var RawLogHeader = []string{
	"id",
	"date",
	"minutes",
	"people",
	"finished_punnets",
	"waste_or_downtime",
	"note",
	"hourly_rate",
	"labour_hours",
	"punnets_per_labour_hour",
	"labour_cost_per_punnet",
	"created_at",
}

// SummaryHeader labels the two columns of the Summary sheet.
var SummaryHeader = []string{"metric", "value"}

// Workbook renders the packing log as a two-sheet xlsx file. Raw_Log holds
// one row per entry in insertion order; Summary holds the aggregates. With
// zero entries the sheets still carry their headers, the sums are zero and
// the undefined ratios are left blank.
func Workbook(entries []models.PackingLogEntry, summary models.Summary) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(RawLogSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: create sheet: %v", ErrExport, err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: create sheet: %v", ErrExport, err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: drop default sheet: %v", ErrExport, err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: create header style: %v", ErrExport, err)
	}

	if err := writeRawLog(f, headerStyle, entries); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSummary(f, headerStyle, summary); err != nil {
		f.Close()
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: serialize workbook: %v", ErrExport, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("%w: close workbook: %v", ErrExport, err)
	}

	return buf.Bytes(), nil
}

func writeRawLog(f *excelize.File, headerStyle int, entries []models.PackingLogEntry) error {
	if err := writeHeader(f, RawLogSheet, headerStyle, RawLogHeader); err != nil {
		return err
	}

	widths := []float64{16, 12, 10, 8, 16, 16, 28, 12, 12, 20, 20, 22}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("%w: column name: %v", ErrExport, err)
		}
		if err := f.SetColWidth(RawLogSheet, col, col, width); err != nil {
			return fmt.Errorf("%w: set column width: %v", ErrExport, err)
		}
	}

	for i, e := range entries {
		row := []interface{}{
			e.ID,
			e.Date.Format(dateLayout),
			e.Minutes,
			e.People,
			e.FinishedPunnets,
			e.WasteOrDowntime,
			e.Note,
			e.HourlyRate,
			e.LabourHours,
			e.PunnetsPerLabourHour,
			e.LabourCostPerPunnet,
			e.CreatedAt.Format(time.RFC3339),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%w: cell name: %v", ErrExport, err)
		}
		if err := f.SetSheetRow(RawLogSheet, cell, &row); err != nil {
			return fmt.Errorf("%w: write row %d: %v", ErrExport, i+2, err)
		}
	}

	return nil
}

func writeSummary(f *excelize.File, headerStyle int, summary models.Summary) error {
	if err := writeHeader(f, SummarySheet, headerStyle, SummaryHeader); err != nil {
		return err
	}

	if err := f.SetColWidth(SummarySheet, "A", "A", 32); err != nil {
		return fmt.Errorf("%w: set column width: %v", ErrExport, err)
	}
	if err := f.SetColWidth(SummarySheet, "B", "B", 18); err != nil {
		return fmt.Errorf("%w: set column width: %v", ErrExport, err)
	}

	// Undefined ratios render as blanks, not zeros.
	var overall, avgCost interface{}
	if summary.Entries > 0 && summary.OverallPunnetsPerLabourHour > 0 {
		overall = summary.OverallPunnetsPerLabourHour
	} else {
		overall = ""
	}
	if summary.Entries > 0 && summary.AvgLabourCostPerPunnet > 0 {
		avgCost = summary.AvgLabourCostPerPunnet
	} else {
		avgCost = ""
	}

	rows := [][]interface{}{
		{"entries", summary.Entries},
		{"total_labour_hours", summary.TotalLabourHours},
		{"total_finished_punnets", summary.TotalFinishedPunnets},
		{"total_waste_or_downtime", summary.TotalWasteOrDowntime},
		{"overall_punnets_per_labour_hour", overall},
		{"avg_labour_cost_per_punnet", avgCost},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%w: cell name: %v", ErrExport, err)
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("%w: write summary row %d: %v", ErrExport, i+2, err)
		}
	}

	return nil
}

func writeHeader(f *excelize.File, sheet string, style int, header []string) error {
	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("%w: cell name: %v", ErrExport, err)
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("%w: set header cell %s: %v", ErrExport, cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("%w: set header style: %v", ErrExport, err)
		}
	}
	return nil
}
