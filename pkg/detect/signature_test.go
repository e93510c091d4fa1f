package detect

import "testing"

func TestSniffSignature(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		want   string
	}{
		{"utf-8 BOM", []byte{0xEF, 0xBB, 0xBF, 'a'}, LabelUTF8},
		{"utf-32be BOM", []byte{0x00, 0x00, 0xFE, 0xFF}, LabelUTF32BE},
		{"utf-32le BOM", []byte{0xFF, 0xFE, 0x00, 0x00}, LabelUTF32LE},
		{"utf-16be BOM", []byte{0xFE, 0xFF, 0x00, 'a'}, LabelUTF16BE},
		{"utf-16le BOM", []byte{0xFF, 0xFE, 'a', 0x00}, LabelUTF16LE},
		{"ebml magic", []byte{0x1A, 0x45, 0xDF, 0xA3}, LabelBinary},
		{"no match", []byte{'h', 'e', 'l', 'l'}, ""},
		{"partial utf-32le is utf-16le", []byte{0xFF, 0xFE, 0x00, 'a'}, LabelUTF16LE},
	}

	for _, tt := range tests {
		if got := sniffSignature(tt.header); got != tt.want {
			t.Errorf("%s: sniffSignature(% x) = %q, want %q", tt.name, tt.header, got, tt.want)
		}
	}
}

// The 4-byte UTF-32LE mark shares its prefix with the 2-byte UTF-16LE
// mark and must win.
func TestSniffSignatureOrdering(t *testing.T) {
	if got := sniffSignature([]byte{0xFF, 0xFE, 0x00, 0x00}); got != LabelUTF32LE {
		t.Errorf("FF FE 00 00 = %q, want %q", got, LabelUTF32LE)
	}
}
