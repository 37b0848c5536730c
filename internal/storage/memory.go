package storage

import (
	"context"
	"os"
	"sync"
)

// Memory keeps slots in process memory. Nothing survives a restart; it is
// used for tests and the `memory` backend.
type Memory struct {
	mu    sync.Mutex
	slots map[string][]byte
	puts  int
}

func NewMemory() *Memory {
	return &Memory{slots: make(map[string][]byte)}
}

// NewMemoryFromFile seeds key with the contents of path. A missing or
// unreadable file leaves the slot empty.
func NewMemoryFromFile(path, key string) *Memory {
	m := NewMemory()
	b, err := os.ReadFile(path)
	if err != nil || len(b) == 0 {
		return m
	}
	m.slots[key] = b
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.slots[key]
	if !ok {
		return nil, ErrNoValue
	}
	return append([]byte(nil), b...), nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[key] = append([]byte(nil), value...)
	m.puts++
	return nil
}

// Puts returns how many writes the store has accepted.
func (m *Memory) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

func (m *Memory) Close() error {
	return nil
}
