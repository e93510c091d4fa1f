package detect

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charflow/charflow/pkg/sources"
)

// trackingSource wraps a source and records the furthest byte requested,
// so tests can prove short-circuits stop reading.
type trackingSource struct {
	src     Source
	maxByte int64
}

func (t *trackingSource) Size() int64 { return t.src.Size() }

func (t *trackingSource) ReadAt(p []byte, off int64) (int, error) {
	if end := off + int64(len(p)); end > t.maxByte {
		t.maxByte = end
	}
	return t.src.ReadAt(p, off)
}

// hugeSource pretends to be far larger than the scan cap. Only the
// 4-byte header is readable; anything further fails the test.
type hugeSource struct {
	t *testing.T
}

func (h hugeSource) Size() int64 { return 200 * 1024 * 1024 }

func (h hugeSource) ReadAt(p []byte, off int64) (int, error) {
	if off != 0 || len(p) > 4 {
		h.t.Fatalf("unexpected read of %d bytes at %d on oversized source", len(p), off)
	}
	for i := range p {
		p[i] = 'x'
	}
	return len(p), nil
}

type failSource struct{}

func (failSource) Size() int64                      { return 10 }
func (failSource) ReadAt([]byte, int64) (int, error) { return 0, errors.New("mapping torn down") }

// stubFallback records what it was fed and returns a fixed label.
type stubFallback struct {
	fed    bytes.Buffer
	label  string
	closed bool
}

func (s *stubFallback) Feed(p []byte) { s.fed.Write(p) }

func (s *stubFallback) Close() string {
	s.closed = true
	return s.label
}

func withStub(stub *stubFallback) *Detector {
	return &Detector{newFallback: func() StatisticalDetector { return stub }}
}

func detectBytes(t *testing.T, d *Detector, data []byte) string {
	t.Helper()
	label, err := d.Detect(sources.NewMemorySource("test", data))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	return label
}

func TestDetectBOMWinsOverContent(t *testing.T) {
	// Invalid UTF-8 after the BOM must not matter.
	data := append([]byte{0xEF, 0xBB, 0xBF}, 0xFF, 0xFF, 0x80, 0x80)
	if got := detectBytes(t, New(), data); got != LabelUTF8 {
		t.Errorf("got %q, want %q", got, LabelUTF8)
	}
}

func TestDetectUTF32LENotUTF16LE(t *testing.T) {
	data := []byte{0xFF, 0xFE, 0x00, 0x00, 'a', 0x00, 0x00, 0x00}
	if got := detectBytes(t, New(), data); got != LabelUTF32LE {
		t.Errorf("got %q, want %q", got, LabelUTF32LE)
	}
}

func TestDetectOversizedIsBinary(t *testing.T) {
	label, err := New().Detect(hugeSource{t})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if label != LabelBinary {
		t.Errorf("got %q, want %q", label, LabelBinary)
	}
}

func TestDetectASCII(t *testing.T) {
	for _, n := range []int{0, 1, 3, windowSize, windowSize + 1, 3 * windowSize} {
		data := bytes.Repeat([]byte{'a'}, n)
		if got := detectBytes(t, New(), data); got != LabelUTF8 {
			t.Errorf("len %d: got %q, want %q", n, got, LabelUTF8)
		}
	}
}

func TestDetectSingleTruncatedLeadByte(t *testing.T) {
	// One structural error is well under the tolerance.
	if got := detectBytes(t, New(), []byte{0xE2}); got != LabelUTF8 {
		t.Errorf("got %q, want %q", got, LabelUTF8)
	}
}

func TestDetectIdempotent(t *testing.T) {
	src := sources.NewMemorySource("test", []byte("r\xC3\xA9sum\xC3\xA9\n"))
	d := New()
	first, err := d.Detect(src)
	if err != nil {
		t.Fatalf("first Detect failed: %v", err)
	}
	second, err := d.Detect(src)
	if err != nil {
		t.Fatalf("second Detect failed: %v", err)
	}
	if first != second {
		t.Errorf("verdict changed between calls: %q then %q", first, second)
	}
}

func TestDetectBinaryPrefixShortCircuits(t *testing.T) {
	// More than 1/8 of the first window is control bytes; the valid text
	// after it must never be read.
	data := append(bytes.Repeat([]byte{'a'}, windowSize-600), bytes.Repeat([]byte{0x00}, 600)...)
	data = append(data, bytes.Repeat([]byte{'b'}, 100*1024)...)

	tracked := &trackingSource{src: sources.NewMemorySource("test", data)}
	label, err := New().Detect(tracked)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if label != LabelBinary {
		t.Errorf("got %q, want %q", label, LabelBinary)
	}
	if tracked.maxByte > windowSize {
		t.Errorf("read %d bytes, short-circuit should stop after %d", tracked.maxByte, windowSize)
	}
}

func TestDetectMultibyteAcrossWindows(t *testing.T) {
	data := append(bytes.Repeat([]byte{'a'}, windowSize-1), 0xE2, 0x82, 0xAC)
	data = append(data, bytes.Repeat([]byte{'b'}, windowSize)...)

	stub := &stubFallback{label: "should-not-be-used"}
	if got := detectBytes(t, withStub(stub), data); got != LabelUTF8 {
		t.Errorf("got %q, want %q", got, LabelUTF8)
	}
	if stub.closed {
		t.Error("fallback finalized although UTF-8 validation passed")
	}
}

func TestDetectConsultsFallbackAfterTolerance(t *testing.T) {
	data := append([]byte("hello "), bytes.Repeat([]byte{0x80}, 6)...)

	stub := &stubFallback{label: "windows-1252"}
	if got := detectBytes(t, withStub(stub), data); got != "windows-1252" {
		t.Errorf("got %q, want fallback label", got)
	}
	if !bytes.Equal(stub.fed.Bytes(), data) {
		t.Error("fallback did not receive the scanned bytes in order")
	}
}

func TestDetectBelowToleranceStaysUTF8(t *testing.T) {
	data := append([]byte("hello "), bytes.Repeat([]byte{0x80}, 4)...)

	stub := &stubFallback{label: "never"}
	if got := detectBytes(t, withStub(stub), data); got != LabelUTF8 {
		t.Errorf("got %q, want %q", got, LabelUTF8)
	}
	if stub.closed {
		t.Error("fallback finalized below the error tolerance")
	}
}

func TestDetectLatin1FallsBack(t *testing.T) {
	// Enough bare 0xE9 lead bytes to blow the tolerance: the statistical
	// guess takes over and must name some non-UTF-8 charset.
	data := bytes.Repeat([]byte("caf\xE9 au lait, d\xE9j\xE0 vu. "), 200)
	got := detectBytes(t, New(), data)
	if got == LabelUTF8 {
		t.Errorf("got %q despite %d+ structural errors", got, utf8ErrorTolerance)
	}
	if got != strings.ToLower(got) {
		t.Errorf("fallback label %q not lower-cased", got)
	}
}

func TestDetectReadFailureIsFatal(t *testing.T) {
	if _, err := New().Detect(failSource{}); err == nil {
		t.Fatal("expected error from unreadable source")
	}
}

func TestMinimalDetectorDefaultsToUTF8(t *testing.T) {
	// The degraded pipeline runs no UTF-8 automaton: even hopeless bytes
	// pass as utf-8 when the control-byte check does not trip.
	data := append([]byte("hello "), bytes.Repeat([]byte{0x80}, 20)...)
	if got := detectBytes(t, NewMinimal(), data); got != LabelUTF8 {
		t.Errorf("got %q, want %q", got, LabelUTF8)
	}
}

func TestMinimalDetectorScansOnlyFirstWindow(t *testing.T) {
	// Control bytes past the first window are invisible in degraded mode.
	data := append(bytes.Repeat([]byte{'a'}, windowSize), bytes.Repeat([]byte{0x00}, 4*windowSize)...)

	tracked := &trackingSource{src: sources.NewMemorySource("test", data)}
	label, err := NewMinimal().Detect(tracked)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if label != LabelUTF8 {
		t.Errorf("got %q, want %q", label, LabelUTF8)
	}
	if tracked.maxByte > windowSize {
		t.Errorf("degraded mode read %d bytes, want at most %d", tracked.maxByte, windowSize)
	}
}

func TestMinimalDetectorBinaryFirstWindow(t *testing.T) {
	data := append(bytes.Repeat([]byte{0x01}, 600), bytes.Repeat([]byte{'a'}, windowSize)...)
	if got := detectBytes(t, NewMinimal(), data); got != LabelBinary {
		t.Errorf("got %q, want %q", got, LabelBinary)
	}
}

func TestMinimalDetectorStillSniffsSignatures(t *testing.T) {
	data := []byte{0xFE, 0xFF, 0x00, 'a'}
	if got := detectBytes(t, NewMinimal(), data); got != LabelUTF16BE {
		t.Errorf("got %q, want %q", got, LabelUTF16BE)
	}
}
