package scan

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/charflow/charflow/pkg/checkpoint"
	"github.com/charflow/charflow/pkg/detect"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func testFiles(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	return []string{
		writeFile(t, dir, "ascii.txt", []byte("plain text\n")),
		writeFile(t, dir, "bom.txt", []byte("\xEF\xBB\xBFwith bom\n")),
		writeFile(t, dir, "utf16.srt", []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00}),
		writeFile(t, dir, "blob.bin", append([]byte{0x1A, 0x45, 0xDF, 0xA3}, bytes.Repeat([]byte{0x00}, 64)...)),
	}
}

func TestScannerRun(t *testing.T) {
	paths := testFiles(t)

	var seen atomic.Int64
	s := New(detect.New(), Options{
		Workers:  2,
		OnResult: func(Result) { seen.Add(1) },
	})

	report, err := s.Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.ID == "" {
		t.Error("missing run ID")
	}
	if got := seen.Load(); got != int64(len(paths)) {
		t.Errorf("OnResult called %d times, want %d", got, len(paths))
	}

	want := map[string]string{
		"ascii.txt": detect.LabelUTF8,
		"bom.txt":   detect.LabelUTF8,
		"utf16.srt": detect.LabelUTF16LE,
		"blob.bin":  detect.LabelBinary,
	}
	for _, res := range report.Results {
		if res.Err != nil {
			t.Errorf("%s: unexpected error %v", res.Path, res.Err)
			continue
		}
		if want[filepath.Base(res.Path)] != res.Label {
			t.Errorf("%s: got %q, want %q", res.Path, res.Label, want[filepath.Base(res.Path)])
		}
	}

	counts := report.Counts()
	if counts[detect.LabelUTF8] != 2 || counts[detect.LabelUTF16LE] != 1 || counts[detect.LabelBinary] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestScannerRecordsMissingFiles(t *testing.T) {
	paths := append(testFiles(t), filepath.Join(t.TempDir(), "gone.txt"))

	report, err := New(detect.New(), Options{}).Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Counts()["error"] != 1 {
		t.Errorf("expected 1 errored file, got %v", report.Counts())
	}
}

func TestScannerCheckpointSkip(t *testing.T) {
	paths := testFiles(t)

	backend, err := checkpoint.NewFileBackend(filepath.Join(t.TempDir(), "cp.json"))
	if err != nil {
		t.Fatalf("NewFileBackend failed: %v", err)
	}
	cp, err := checkpoint.NewManager(context.Background(), backend)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	s := New(detect.New(), Options{Checkpoint: cp})
	first, err := s.Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	for _, res := range first.Results {
		if res.Skipped {
			t.Errorf("%s: skipped on a cold checkpoint", res.Path)
		}
	}

	second, err := s.Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	for _, res := range second.Results {
		if !res.Skipped {
			t.Errorf("%s: expected checkpoint hit on unchanged file", res.Path)
		}
		if res.Label == "" {
			t.Errorf("%s: checkpoint hit lost its label", res.Path)
		}
	}
}
