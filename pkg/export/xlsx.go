package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/charflow/charflow/pkg/scan"
)

const sheetName = "Scan"

// writeXLSX writes the report as a spreadsheet with a verdict sheet and a
// summary sheet of per-label counts.
func writeXLSX(report *scan.Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, res := range report.Results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		values := row(res)
		out := make([]interface{}, len(values))
		for j, v := range values {
			out[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &out); err != nil {
			return fmt.Errorf("write xlsx row: %w", err)
		}
	}

	if err := writeSummarySheet(f, report); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save xlsx export: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, report *scan.Report) error {
	const summary = "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	rows := [][]interface{}{
		{"scan id", report.ID},
		{"started", report.StartedAt.Format("2006-01-02 15:04:05")},
		{"duration", report.Duration().String()},
		{"files", len(report.Results)},
		{},
		{"label", "count"},
	}
	counts := report.Counts()
	for _, label := range report.Labels() {
		rows = append(rows, []interface{}{label, counts[label]})
	}
	if n := counts["error"]; n > 0 {
		rows = append(rows, []interface{}{"error", n})
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(summary, cell, &rows[i]); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	return nil
}
