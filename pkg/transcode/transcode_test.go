package transcode

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/charflow/charflow/pkg/detect"
)

func decode(t *testing.T, label string, data []byte) string {
	t.Helper()
	r, err := Reader(label, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Reader(%q) failed: %v", label, err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("decode as %q failed: %v", label, err)
	}
	return string(out)
}

func TestReaderUTF8PassThrough(t *testing.T) {
	if got := decode(t, detect.LabelUTF8, []byte("héllo")); got != "héllo" {
		t.Errorf("got %q", got)
	}
}

func TestReaderStripsUTF8BOM(t *testing.T) {
	if got := decode(t, detect.LabelUTF8, []byte("\xEF\xBB\xBFhi")); got != "hi" {
		t.Errorf("got %q, want %q", got, "hi")
	}
}

func TestReaderUTF16LE(t *testing.T) {
	data := []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00}
	if got := decode(t, detect.LabelUTF16LE, data); got != "hi" {
		t.Errorf("got %q, want %q", got, "hi")
	}
}

func TestReaderUTF32BE(t *testing.T) {
	data := []byte{
		0x00, 0x00, 0xFE, 0xFF,
		0x00, 0x00, 0x00, 'o',
		0x00, 0x00, 0x00, 'k',
	}
	if got := decode(t, detect.LabelUTF32BE, data); got != "ok" {
		t.Errorf("got %q, want %q", got, "ok")
	}
}

func TestReaderIANALabel(t *testing.T) {
	if got := decode(t, "windows-1252", []byte{'c', 'a', 'f', 0xE9}); got != "café" {
		t.Errorf("got %q, want %q", got, "café")
	}
}

func TestReaderBinaryRefused(t *testing.T) {
	_, err := Reader(detect.LabelBinary, bytes.NewReader(nil))
	if !errors.Is(err, ErrBinary) {
		t.Errorf("got %v, want ErrBinary", err)
	}
}

func TestReaderUnknownLabel(t *testing.T) {
	if _, err := Reader("no-such-charset", bytes.NewReader(nil)); err == nil {
		t.Error("expected error for unknown charset")
	}
}
