package repository

import (
	"context"
	"sync"

	"github.com/shariqkhan335/RFI-PROJ/internal/inventory"
)

// MemoryRepo keeps collections in process memory. Used by tests and by
// STORAGE_BACKEND=memory for throwaway runs.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string][]inventory.Record
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string][]inventory.Record)}
}

func (m *MemoryRepo) List(ctx context.Context, entity string) ([]inventory.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs, ok := m.store[entity]
	if !ok {
		return nil, ErrNoCollection
	}
	out := make([]inventory.Record, len(recs))
	for i, r := range recs {
		out[i] = r.Clone()
	}
	return out, nil
}

func (m *MemoryRepo) Get(ctx context.Context, entity, id string) (inventory.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs := m.store[entity]
	if i := find(recs, id); i >= 0 {
		return recs[i].Clone(), nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) Insert(ctx context.Context, entity string, rec inventory.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := m.store[entity]
	if find(recs, rec.ID()) >= 0 {
		return ErrDuplicateID
	}
	m.store[entity] = append(recs, rec.Clone())
	return nil
}

func (m *MemoryRepo) Replace(ctx context.Context, entity, id string, rec inventory.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	recs := m.store[entity]
	i := find(recs, id)
	if i < 0 {
		return ErrNotFound
	}
	recs[i] = rec.Clone()
	return nil
}

func (m *MemoryRepo) Ping(ctx context.Context) error { return nil }

func (m *MemoryRepo) Close() error { return nil }
