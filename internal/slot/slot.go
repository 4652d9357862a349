// Package slot provides durable key/value records that hold the board's
// serialized state.
//
// A slot stores one opaque blob per key. The store rewrites the whole blob
// after every mutation and reads it back whole at startup, so
// implementations only need whole-record load and save.
package slot

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Load when no record exists for the key.
var ErrNotFound = errors.New("slot record not found")

// Slot is a durable key/value record store.
type Slot interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Memory is a Slot held in process memory. It backs tests and ephemeral
// sessions.
type Memory struct {
	mu      sync.Mutex
	records map[string][]byte

	// FailSaves makes every Save return this error when set.
	FailSaves error
}

// NewMemory creates an empty in-memory slot.
func NewMemory() *Memory {
	return &Memory{records: make(map[string][]byte)}
}

// Load returns a copy of the record stored under key.
func (m *Memory) Load(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Save replaces the record stored under key.
func (m *Memory) Save(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves != nil {
		return m.FailSaves
	}
	m.records[key] = append([]byte(nil), data...)
	return nil
}
