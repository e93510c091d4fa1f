package sources

import "bytes"

// MemorySource exposes a byte slice as a source. Used for tests and for
// stdin input, which has to be slurped before random access is possible.
type MemorySource struct {
	id     string
	reader *bytes.Reader
}

// NewMemorySource creates a source over data. id is a display name.
func NewMemorySource(id string, data []byte) *MemorySource {
	return &MemorySource{id: id, reader: bytes.NewReader(data)}
}

// Path returns the display name given at construction.
func (m *MemorySource) Path() string { return m.id }

// Size returns the length of the underlying data.
func (m *MemorySource) Size() int64 { return m.reader.Size() }

// ReadAt reads len(p) bytes starting at off.
func (m *MemorySource) ReadAt(p []byte, off int64) (int, error) {
	return m.reader.ReadAt(p, off)
}
