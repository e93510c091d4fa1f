package detect

import "bytes"

// signature maps a leading magic byte sequence to its verdict label.
type signature struct {
	magic []byte
	label string
}

// Signatures are checked in order and the first match wins. The 4-byte
// UTF-32LE mark must come before the 2-byte UTF-16LE mark: FF FE 00 00
// begins with FF FE, so the reverse order would misread UTF-32LE input.
var signatures = []signature{
	{[]byte{0xEF, 0xBB, 0xBF}, LabelUTF8},
	{[]byte{0x00, 0x00, 0xFE, 0xFF}, LabelUTF32BE},
	{[]byte{0xFF, 0xFE, 0x00, 0x00}, LabelUTF32LE},
	{[]byte{0xFE, 0xFF}, LabelUTF16BE},
	{[]byte{0xFF, 0xFE}, LabelUTF16LE},
	{[]byte{0x1A, 0x45, 0xDF, 0xA3}, LabelBinary}, // EBML/Matroska container
}

// sniffSignature returns the label for a recognized byte-order mark or
// container magic at the start of header, or "" when nothing matches.
// header must hold the first 4 bytes of the source.
func sniffSignature(header []byte) string {
	for _, sig := range signatures {
		if bytes.HasPrefix(header, sig.magic) {
			return sig.label
		}
	}
	return ""
}
