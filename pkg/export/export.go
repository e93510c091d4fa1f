// Package export writes scan reports to files for downstream tooling:
// CSV for scripts, XLSX for spreadsheets, Parquet for analytics.
package export

import (
	"fmt"
	"strings"

	"github.com/charflow/charflow/pkg/scan"
)

// Format selects an output format.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatXLSX
	FormatParquet
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatXLSX:
		return "xlsx"
	case FormatParquet:
		return "parquet"
	default:
		return "unknown"
	}
}

// ParseFormat parses a format string.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "csv":
		return FormatCSV
	case "xlsx", "excel":
		return FormatXLSX
	case "parquet", "pq":
		return FormatParquet
	default:
		return FormatUnknown
	}
}

// Columns shared by all exporters, in output order.
var columns = []string{"path", "label", "size", "duration_ms", "skipped", "error"}

// row flattens one result.
func row(res scan.Result) []string {
	errText := ""
	if res.Err != nil {
		errText = res.Err.Error()
	}
	return []string{
		res.Path,
		res.Label,
		fmt.Sprintf("%d", res.Size),
		fmt.Sprintf("%d", res.Duration.Milliseconds()),
		fmt.Sprintf("%t", res.Skipped),
		errText,
	}
}

// Write exports report to path in the given format.
func Write(report *scan.Report, format Format, path string) error {
	switch format {
	case FormatCSV:
		return writeCSV(report, path)
	case FormatXLSX:
		return writeXLSX(report, path)
	case FormatParquet:
		return writeParquet(report, path)
	default:
		return fmt.Errorf("export: unsupported format %q", format)
	}
}
