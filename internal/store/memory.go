package store

import (
	"context"
	"sync"

	"internship-scraper/internal/fingerprint"
)

// MemoryBackend keeps entries for the lifetime of the process only.
type MemoryBackend struct {
	mu      sync.Mutex
	seen    map[fingerprint.Digest]struct{}
	entries []Entry
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{seen: make(map[fingerprint.Digest]struct{})}
}

func (m *MemoryBackend) Load(ctx context.Context) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *MemoryBackend) Insert(ctx context.Context, e Entry) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[e.Fingerprint]; ok {
		return false, nil
	}
	m.seen[e.Fingerprint] = struct{}{}
	m.entries = append(m.entries, e)
	return true, nil
}

func (m *MemoryBackend) Close() error { return nil }
