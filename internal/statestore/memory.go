package statestore

import (
	"context"
	"sync"

	"soulbound/pkg/platform/sentinel"
)

type memoryEntry struct {
	data    []byte
	version uint64
}

// MemoryBlob keeps blobs in process memory.
type MemoryBlob struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemoryBlob() *MemoryBlob {
	return &MemoryBlob{entries: make(map[string]memoryEntry)}
}

func (m *MemoryBlob) Load(_ context.Context, key string) ([]byte, uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, 0, nil
	}
	return append([]byte(nil), e.data...), e.version, nil
}

func (m *MemoryBlob) CompareAndSwap(_ context.Context, key string, version uint64, data []byte) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries[key].version != version {
		return 0, sentinel.ErrConflict
	}
	next := version + 1
	m.entries[key] = memoryEntry{data: append([]byte(nil), data...), version: next}
	return next, nil
}
