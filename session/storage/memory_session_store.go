package storage

import (
	"sync"

	"github.com/pkg/errors"
)

var ErrSessionNotFound = errors.New("session store: session not found")

const MemorySessionStoreName = "memory"

// MemorySessionStore keeps sessions for the lifetime of the process.
type MemorySessionStore struct {
	mu   sync.RWMutex
	data map[string]map[string]any
}

func NewMemorySessionStore() SessionStore {
	return &MemorySessionStore{
		data: make(map[string]map[string]any),
	}
}

func (m *MemorySessionStore) Close() error {
	m.mu.Lock()
	m.data = make(map[string]map[string]any)
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) Has(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, found := m.data[id]
	return found
}

func (m *MemorySessionStore) Get(id string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, found := m.data[id]
	if !found {
		return nil, errors.Wrapf(ErrSessionNotFound, "id %s", id)
	}

	return snapshot(data), nil
}

func (m *MemorySessionStore) Save(id string, attributes map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[id] = snapshot(attributes)
	return nil
}

func (m *MemorySessionStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, id)
	return nil
}
