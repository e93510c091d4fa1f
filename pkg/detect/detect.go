package detect

import "fmt"

// Verdict labels for the fixed outcomes. The statistical fallback may
// additionally return arbitrary lower-cased charset names, which callers
// should treat as opaque.
const (
	LabelUTF8    = "utf-8"
	LabelUTF16LE = "utf-16le"
	LabelUTF16BE = "utf-16be"
	LabelUTF32LE = "utf-32le"
	LabelUTF32BE = "utf-32be"
	LabelBinary  = "binary"
)

const (
	// windowSize is how many bytes each scan step reads.
	windowSize = 4096

	// maxScanSize caps the scan. Anything larger is either genuinely
	// binary or too big to be worth reprocessing byte by byte.
	maxScanSize = 100 * 1024 * 1024

	// utf8ErrorTolerance is the absolute number of structural UTF-8
	// violations below which content still counts as UTF-8. The slack
	// absorbs occasional corrupted bytes in otherwise valid text.
	utf8ErrorTolerance = 5

	// binaryRatioDivisor: more than 1/8 control bytes means binary.
	binaryRatioDivisor = 8
)

// Detector classifies a Source. It holds no per-call state, so a single
// Detector is safe for concurrent use across independent sources.
type Detector struct {
	newFallback func() StatisticalDetector
}

// New returns a detector running the full pipeline: signature check, size
// cap, control-byte heuristic, UTF-8 automaton, and statistical fallback.
// Built with the nofallback tag it is equivalent to NewMinimal.
func New() *Detector {
	return &Detector{newFallback: defaultFallback}
}

// NewMinimal returns the degraded variant used when no statistical
// fallback is available: after the signature and size checks only the
// first window is tested for control-byte density, and everything that
// passes is reported as UTF-8. The weaker guarantees are intentional.
func NewMinimal() *Detector {
	return &Detector{}
}

// Detect returns the verdict label for src. Read failures are fatal for
// the call and are returned wrapped; no partial verdict is produced.
func Detect(src Source) (string, error) {
	return New().Detect(src)
}

// Detect classifies src as one of the fixed labels or a fallback-supplied
// charset name.
func (d *Detector) Detect(src Source) (string, error) {
	size := src.Size()

	if size >= 4 {
		var header [4]byte
		if _, err := src.ReadAt(header[:], 0); err != nil {
			return "", fmt.Errorf("detect: read header: %w", err)
		}
		if label := sniffSignature(header[:]); label != "" {
			return label, nil
		}
	}

	if size > maxScanSize {
		return LabelBinary, nil
	}

	var fallback StatisticalDetector
	if d.newFallback != nil {
		fallback = d.newFallback()
	}
	if fallback == nil {
		return d.scanFirstWindow(src, size)
	}
	return d.scanAll(src, size, fallback)
}

// scanAll is the full scan loop: sequential windows from offset 0 feeding
// the control-byte counter, the UTF-8 automaton, and the fallback, with
// the binary-ratio check applied after every window.
func (d *Detector) scanAll(src Source, size int64, fallback StatisticalDetector) (string, error) {
	var (
		state       utf8State
		binaryCount uint64
		buf         = make([]byte, windowSize)
	)

	for offset := int64(0); offset < size; {
		window := buf
		if remaining := size - offset; remaining < windowSize {
			window = buf[:remaining]
		}
		if _, err := src.ReadAt(window, offset); err != nil {
			return "", fmt.Errorf("detect: read %d bytes at %d: %w", len(window), offset, err)
		}
		offset += int64(len(window))

		fallback.Feed(window)
		binaryCount += countBinaryish(window)
		state = state.scan(window)

		// Checked per window so a binary prefix stops the scan early.
		if binaryCount > uint64(offset)/binaryRatioDivisor {
			return LabelBinary, nil
		}
	}

	state = state.finish()
	if state.errors < utf8ErrorTolerance {
		return LabelUTF8, nil
	}
	return fallback.Close(), nil
}

// scanFirstWindow is the degraded pipeline: a single window's control-byte
// density decides between binary and an unconditional UTF-8 default.
func (d *Detector) scanFirstWindow(src Source, size int64) (string, error) {
	n := int64(windowSize)
	if size < n {
		n = size
	}
	if n == 0 {
		return LabelUTF8, nil
	}

	buf := make([]byte, n)
	if _, err := src.ReadAt(buf, 0); err != nil {
		return "", fmt.Errorf("detect: read %d bytes at 0: %w", n, err)
	}
	if countBinaryish(buf) > uint64(n)/binaryRatioDivisor {
		return LabelBinary, nil
	}
	return LabelUTF8, nil
}
