package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileBackend persists entries as a single JSON document. Good enough for
// one scanning host; use RedisBackend when runs move between machines.
type FileBackend struct {
	mu   sync.Mutex
	path string
}

// NewFileBackend stores checkpoint state at path, creating the parent
// directory if needed.
func NewFileBackend(path string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create checkpoint directory: %w", err)
	}
	return &FileBackend{path: path}, nil
}

// Load reads the stored entries. A missing file is an empty state.
func (b *FileBackend) Load(ctx context.Context) (map[string]Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return map[string]Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint file: %w", err)
	}

	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode checkpoint file: %w", err)
	}
	return entries, nil
}

// Save rewrites the document with e merged in.
func (b *FileBackend) Save(ctx context.Context, e Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.loadLocked()
	if err != nil {
		return err
	}
	entries[e.Path] = e

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode checkpoint file: %w", err)
	}

	// Write to temp file, rename on success
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write checkpoint file: %w", err)
	}
	return os.Rename(tmp, b.path)
}

// Clear removes the document.
func (b *FileBackend) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Remove(b.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove checkpoint file: %w", err)
	}
	return nil
}

func (b *FileBackend) loadLocked() (map[string]Entry, error) {
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return map[string]Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint file: %w", err)
	}
	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode checkpoint file: %w", err)
	}
	return entries, nil
}
