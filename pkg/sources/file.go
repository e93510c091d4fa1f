// Package sources provides detect.Source implementations for local files,
// in-memory buffers, and S3 objects.
package sources

import (
	"fmt"
	"os"
)

// FileSource exposes a local file as a random-access byte source.
type FileSource struct {
	path string
	file *os.File
	size int64
}

// NewFileSource opens path for reading. The caller must Close it.
func NewFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat source: %w", err)
	}

	return &FileSource{path: path, file: f, size: info.Size()}, nil
}

// Path returns the file path the source was opened from.
func (s *FileSource) Path() string { return s.path }

// Size returns the file size at open time.
func (s *FileSource) Size() int64 { return s.size }

// ReadAt reads len(p) bytes starting at off.
func (s *FileSource) ReadAt(p []byte, off int64) (int, error) {
	return s.file.ReadAt(p, off)
}

// Close releases the underlying file.
func (s *FileSource) Close() error {
	return s.file.Close()
}
