package docstore

import (
	"context"
	"sync"
)

// Memory keeps documents in process memory. It is the default backend and the test double.
type Memory struct {
	mu   sync.RWMutex
	docs map[string][]byte
	// FailSave, when set, is returned by Save. Lets callers exercise persistence failures.
	FailSave error
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	body, ok := m.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
}

func (m *Memory) Save(_ context.Context, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSave != nil {
		return m.FailSave
	}
	stored := make([]byte, len(body))
	copy(stored, body)
	m.docs[key] = stored
	return nil
}
