package fetchcache

import (
	"context"
	"sync"
)

// MemoryConfig configures the in-memory store.
type MemoryConfig struct {
	// Size is how many records survive a Trim. When zero, DefaultSize
	// is used.
	Size int
}

// Memory is an insertion-ordered capped map. Reinserting an existing
// key re-dates it, so Trim always drops the least recently written
// records first. The mutex covers both mutation and the iteration Trim
// performs.
type Memory struct {
	mu      sync.Mutex
	size    int
	records map[string]*Record
	order   []string
}

// NewMemory returns an empty in-memory store.
func NewMemory(cfg MemoryConfig) *Memory {
	size := cfg.Size
	if size <= 0 {
		size = DefaultSize
	}
	return &Memory{
		size:    size,
		records: make(map[string]*Record),
	}
}

// Get returns a copy of the record for url, or ErrNotFound.
func (m *Memory) Get(_ context.Context, url string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[url]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.clone(), nil
}

// Set upserts the record for url, moving it to the newest position.
func (m *Memory) Set(_ context.Context, url string, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[url]; ok {
		m.remove(url)
	}
	m.records[url] = rec.clone()
	m.order = append(m.order, url)
	return nil
}

// Trim drops the oldest records until at most the configured size
// remain.
func (m *Memory) Trim(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.order) > m.size {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.records, oldest)
	}
	return nil
}

// Close is a no-op; it exists to satisfy Store.
func (m *Memory) Close() error {
	return nil
}

// Len reports how many records the store currently holds.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *Memory) remove(url string) {
	delete(m.records, url)
	for i, u := range m.order {
		if u == url {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}
