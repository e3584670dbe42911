package store

import (
	"context"
	"sync"

	"github.com/DoyleJ11/worldcup-draw-backend/internal/engine"
)

type MemoryStore struct {
	mu    sync.RWMutex
	draws map[string][]engine.Group
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{draws: make(map[string][]engine.Group)}
}

func (m *MemoryStore) Save(ctx context.Context, groups []engine.Group) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		id, err := NewID()
		if err != nil {
			return "", err
		}
		if _, taken := m.draws[id]; taken {
			continue
		}
		m.draws[id] = engine.CloneGroups(groups)
		return id, nil
	}
}

func (m *MemoryStore) Fetch(ctx context.Context, id string) ([]engine.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	groups, ok := m.draws[id]
	if !ok {
		return nil, ErrNotFound
	}
	return engine.CloneGroups(groups), nil
}

func (m *MemoryStore) Close() error { return nil }
