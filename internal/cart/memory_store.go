package cart

import (
	"context"
	"sync"
)

// プロセス内メモリのSnapshotStore。テストと開発用。
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: map[string]Cart{}}
}

func (m *MemoryStore) Save(ctx context.Context, sessionID string, c Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[sessionID] = c.Snapshot()
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, sessionID string) (Cart, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[sessionID]
	if !ok {
		return Cart{}, false, nil
	}
	return c.Snapshot(), true, nil
}

func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}
