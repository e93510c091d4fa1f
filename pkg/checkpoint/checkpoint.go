// Package checkpoint lets interrupted scans resume without re-detecting
// files whose content has not changed. Entries are keyed by path and
// invalidated when size or modification time moves.
package checkpoint

import (
	"context"
	"sync"
	"time"
)

// Entry records one finished detection.
type Entry struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"mod_time"`
	Label     string    `json:"label"`
	ScannedAt time.Time `json:"scanned_at"`
}

// Backend persists entries. Implementations: FileBackend, RedisBackend.
type Backend interface {
	// Load returns all persisted entries keyed by path.
	Load(ctx context.Context) (map[string]Entry, error)

	// Save persists one entry.
	Save(ctx context.Context, e Entry) error

	// Clear drops all persisted entries.
	Clear(ctx context.Context) error
}

// Manager fronts a Backend with an in-memory view.
type Manager struct {
	backend Backend

	mu      sync.RWMutex
	entries map[string]Entry
}

// NewManager loads the backend's current state.
func NewManager(ctx context.Context, backend Backend) (*Manager, error) {
	entries, err := backend.Load(ctx)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = make(map[string]Entry)
	}
	return &Manager{backend: backend, entries: entries}, nil
}

// Lookup returns the recorded entry for path when it still matches the
// file's current size and mtime. ok is false for unknown or stale files.
func (m *Manager) Lookup(path string, size int64, modTime time.Time) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[path]
	if !ok || e.Size != size || !e.ModTime.Equal(modTime) {
		return Entry{}, false
	}
	return e, true
}

// Record stores a finished detection in memory and in the backend.
func (m *Manager) Record(ctx context.Context, e Entry) error {
	m.mu.Lock()
	m.entries[e.Path] = e
	m.mu.Unlock()

	return m.backend.Save(ctx, e)
}

// Reset drops all recorded entries.
func (m *Manager) Reset(ctx context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]Entry)
	m.mu.Unlock()

	return m.backend.Clear(ctx)
}

// Len returns the number of known entries.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
