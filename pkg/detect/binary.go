package detect

// binaryish reports whether b is a control byte that text files rarely
// contain: anything below 0x20 except CR, LF, and TAB.
func binaryish(b byte) bool {
	return b < 0x20 && b != '\r' && b != '\n' && b != '\t'
}

// countBinaryish counts the binaryish bytes in p.
func countBinaryish(p []byte) uint64 {
	var n uint64
	for _, b := range p {
		if binaryish(b) {
			n++
		}
	}
	return n
}
