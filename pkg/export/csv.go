package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/charflow/charflow/pkg/scan"
)

// writeCSV writes the report as a flat CSV table.
func writeCSV(report *scan.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, res := range report.Results {
		if err := w.Write(row(res)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv export: %w", err)
	}
	return nil
}
