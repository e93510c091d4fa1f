// Package detect classifies byte sources as binary data or text, and for
// text guesses the character encoding. Detection combines a signature
// check, a control-byte density heuristic, an incremental UTF-8 validity
// automaton, and an optional statistical fallback.
package detect

// Source is the byte-access contract the detector runs against: random
// reads by offset and length plus a total-size query. Local files, memory
// buffers, and ranged S3 reads all satisfy it (see the sources package).
type Source interface {
	// Size returns the total number of bytes available.
	Size() int64

	// ReadAt reads len(p) bytes starting at offset off, following the
	// io.ReaderAt contract. Reads never extend past Size.
	ReadAt(p []byte, off int64) (int, error)
}
