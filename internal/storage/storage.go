// Package storage persists the small amount of client-side state the
// portal keeps between runs: the bearer token and the serialized identity.
package storage

import (
	"sync"
)

// Fixed keys for durable session state.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// KV is a string key/value store. Implementations must be safe for
// concurrent use.
type KV interface {
	// Get returns the value and whether the key exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(keys ...string) error
	Close() error
}

// Memory is an in-process KV, used by tests and ephemeral sessions.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.data, k)
	}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
