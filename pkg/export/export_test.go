package export

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charflow/charflow/pkg/scan"
)

func sampleReport() *scan.Report {
	now := time.Now()
	return &scan.Report{
		ID:         "test-run",
		StartedAt:  now.Add(-time.Second),
		FinishedAt: now,
		Results: []scan.Result{
			{Path: "/data/a.srt", Label: "utf-8", Size: 1024, Duration: 3 * time.Millisecond},
			{Path: "/data/b.srt", Label: "utf-16le", Size: 2048, Duration: 2 * time.Millisecond, Skipped: true},
			{Path: "/data/c.bin", Label: "binary", Size: 9000, Duration: time.Millisecond},
			{Path: "/data/gone.srt", Duration: time.Millisecond, Err: errors.New("no such file")},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"csv":     FormatCSV,
		"xlsx":    FormatXLSX,
		"excel":   FormatXLSX,
		"parquet": FormatParquet,
		"pq":      FormatParquet,
		"tsv":     FormatUnknown,
	}
	for in, want := range tests {
		if got := ParseFormat(in); got != want {
			t.Errorf("ParseFormat(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	if err := Write(sampleReport(), FormatCSV, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected header + 4 rows, got %d", len(rows))
	}
	if rows[0][0] != "path" || rows[0][1] != "label" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[2][1] != "utf-16le" || rows[2][4] != "true" {
		t.Errorf("unexpected skipped row: %v", rows[2])
	}
	if rows[4][5] == "" {
		t.Errorf("errored file lost its message: %v", rows[4])
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := Write(sampleReport(), FormatXLSX, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	assertNonEmpty(t, path)
}

func TestWriteParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.parquet")
	if err := Write(sampleReport(), FormatParquet, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	assertNonEmpty(t, path)

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after successful export")
	}
}

func assertNonEmpty(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat export: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("export file is empty")
	}
}
