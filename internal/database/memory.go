package database

import (
	"context"
	"strconv"
	"sync"
)

// MemoryKV keeps slots in process memory. Data is lost on restart.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte // userID -> slot -> value
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, userID, slot string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[userID][slot]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryKV) Put(_ context.Context, userID, slot string, value []byte) error {
	// Copy so callers can reuse their buffer.
	buf := make([]byte, len(value))
	copy(buf, value)

	m.mu.Lock()
	defer m.mu.Unlock()

	slots, ok := m.data[userID]
	if !ok {
		slots = make(map[string][]byte)
		m.data[userID] = slots
	}
	slots[slot] = buf
	return nil
}

func (m *MemoryKV) Health() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return map[string]string{
		"status": "up",
		"driver": "memory",
		"users":  strconv.Itoa(len(m.data)),
	}
}

func (m *MemoryKV) Close() {}
