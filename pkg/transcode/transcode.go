// Package transcode maps detection verdicts onto golang.org/x/text
// decoders, so callers can read a detected file as UTF-8. This sits
// outside the detection core: detection never decodes anything.
package transcode

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"

	"github.com/charflow/charflow/pkg/detect"
)

// ErrBinary is returned for the binary verdict, which has no text decoding.
var ErrBinary = errors.New("transcode: binary content cannot be decoded")

// Encoding resolves a verdict label to an encoding. The fixed labels map
// to the Unicode schemes (consuming a leading BOM when present); fallback
// labels are resolved through the IANA registry.
func Encoding(label string) (encoding.Encoding, error) {
	switch label {
	case detect.LabelBinary:
		return nil, ErrBinary
	case detect.LabelUTF8:
		return unicode.UTF8BOM, nil
	case detect.LabelUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case detect.LabelUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	case detect.LabelUTF32LE:
		return utf32.UTF32(utf32.LittleEndian, utf32.UseBOM), nil
	case detect.LabelUTF32BE:
		return utf32.UTF32(utf32.BigEndian, utf32.UseBOM), nil
	}

	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("transcode: no decoder for charset %q", label)
	}
	return enc, nil
}

// Reader wraps r with a decoder for label, yielding UTF-8.
func Reader(label string, r io.Reader) (io.Reader, error) {
	enc, err := Encoding(label)
	if err != nil {
		return nil, err
	}
	return enc.NewDecoder().Reader(r), nil
}
